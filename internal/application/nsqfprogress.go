package application

import (
	"sort"
	"strings"
	"time"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

// ComputeNSQFProgress maps a credential set onto the 10-level NSQF catalog.
// The returned Levels always hold every catalog entry in ascending order.
// Credentials that violate data invariants (including an out-of-range level)
// are excluded and returned in Anomalies.
func ComputeNSQFProgress(credentials []model.Credential, now time.Time) model.NSQFProgress {
	counts := make([]int, model.MaxNSQFLevel+1)
	skillSets := make([]map[string]struct{}, model.MaxNSQFLevel+1)

	progress := model.NSQFProgress{}
	highest := 0

	for _, c := range credentials {
		if anomaly, bad := screenCredential(c, now); bad {
			progress.Anomalies = append(progress.Anomalies, anomaly)
			continue
		}
		if c.NSQFLevel == nil || !c.IsActiveAt(now) {
			continue
		}

		lvl := *c.NSQFLevel
		counts[lvl]++
		if skillSets[lvl] == nil {
			skillSets[lvl] = make(map[string]struct{})
		}
		for _, s := range c.Skills {
			if s = strings.TrimSpace(s); s != "" {
				skillSets[lvl][s] = struct{}{}
			}
		}
		highest = max(highest, lvl)
	}

	progress.Levels = make([]model.NSQFLevelProgress, 0, len(model.NSQFCatalog))
	for _, entry := range model.NSQFCatalog {
		skills := make([]string, 0, len(skillSets[entry.Level]))
		for s := range skillSets[entry.Level] {
			skills = append(skills, s)
		}
		sort.Strings(skills)

		progress.Levels = append(progress.Levels, model.NSQFLevelProgress{
			Level:         entry.Level,
			Name:          entry.Name,
			Description:   entry.Description,
			AchievedCount: counts[entry.Level],
			SkillsAtLevel: skills,
		})
	}

	progress.HighestAchievedLevel = highest
	if highest < model.MaxNSQFLevel {
		progress.NextTarget = highest + 1
	} else {
		progress.MaxLevelReached = true
	}

	return progress
}
