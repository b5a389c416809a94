package application

import (
	"sort"
	"strings"
	"time"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

// NSQF thresholds that earn bonus stars.
const (
	bonusTwoLevel = 8
	bonusOneLevel = 6
)

// StarsFor computes a skill's star rating from the number of contributing
// credentials and the highest NSQF level among them. The result is in [0,5].
func StarsFor(credentialCount, maxNSQFLevel int) int {
	stars := min(max(credentialCount, 0), model.MaxStars)

	switch {
	case maxNSQFLevel >= bonusTwoLevel:
		stars += 2
	case maxNSQFLevel >= bonusOneLevel:
		stars++
	}

	return min(stars, model.MaxStars)
}

// ComputeSkillRatings converts a learner's credential set into per-skill star
// ratings, ranked by stars, then credential count, then skill name. Only
// credentials that are issued at now contribute. The input is not modified.
func ComputeSkillRatings(credentials []model.Credential, now time.Time) []model.SkillRating {
	ratings, _ := ComputeSkillRatingsReport(credentials, now)
	return ratings
}

// ComputeSkillRatingsReport is ComputeSkillRatings that also returns the
// credentials excluded for data-integrity violations.
func ComputeSkillRatingsReport(credentials []model.Credential, now time.Time) ([]model.SkillRating, []model.DataAnomaly) {
	var anomalies []model.DataAnomaly
	buckets := make(map[string]*model.SkillRating)

	for _, c := range credentials {
		if anomaly, bad := screenCredential(c, now); bad {
			anomalies = append(anomalies, anomaly)
			continue
		}
		if !c.IsActiveAt(now) {
			continue
		}

		seen := make(map[string]bool, len(c.Skills))
		for _, raw := range c.Skills {
			skill := strings.TrimSpace(raw)
			if skill == "" || seen[skill] {
				continue
			}
			seen[skill] = true

			b, ok := buckets[skill]
			if !ok {
				b = &model.SkillRating{Skill: skill}
				buckets[skill] = b
			}
			b.CredentialCount++
			b.ContributingCredentials = append(b.ContributingCredentials, c.ID)
			if lvl := c.Level(); lvl > b.MaxNSQFLevel {
				b.MaxNSQFLevel = lvl
			}
		}
	}

	ratings := make([]model.SkillRating, 0, len(buckets))
	for _, b := range buckets {
		sort.Strings(b.ContributingCredentials)
		b.Stars = StarsFor(b.CredentialCount, b.MaxNSQFLevel)
		ratings = append(ratings, *b)
	}

	sort.Slice(ratings, func(i, j int) bool {
		if ratings[i].Stars != ratings[j].Stars {
			return ratings[i].Stars > ratings[j].Stars
		}
		if ratings[i].CredentialCount != ratings[j].CredentialCount {
			return ratings[i].CredentialCount > ratings[j].CredentialCount
		}
		return ratings[i].Skill < ratings[j].Skill
	})

	return ratings, anomalies
}

// screenCredential reports whether c must be excluded from aggregation, and
// why. Exclusion does not depend on lifecycle status.
func screenCredential(c model.Credential, now time.Time) (model.DataAnomaly, bool) {
	err := c.ValidateAt(now)
	if err == nil {
		return model.DataAnomaly{}, false
	}

	kind := model.AnomalyInvalidRecord
	if c.NSQFLevel != nil && !c.HasValidLevel() {
		kind = model.AnomalyLevelOutOfRange
	}

	return model.DataAnomaly{
		CredentialID: c.ID,
		Kind:         kind,
		Detail:       err.Error(),
	}, true
}
