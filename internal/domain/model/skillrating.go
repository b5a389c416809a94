package model

// MaxStars is the upper bound of a skill star rating.
const MaxStars = 5

// SkillRating is a derived, never-persisted summary of a learner's demonstrated
// strength in one skill.
type SkillRating struct {
	Skill                   string
	Stars                   int
	CredentialCount         int
	ContributingCredentials []string // credential IDs, non-owning.
	MaxNSQFLevel            int      // 0 when no contributing credential has a level.
}

// AnomalyKind classifies a data-integrity problem found during aggregation.
type AnomalyKind string

const (
	AnomalyLevelOutOfRange AnomalyKind = "nsqf_level_out_of_range"
	AnomalyInvalidRecord   AnomalyKind = "invalid_record"
)

// DataAnomaly records a credential excluded from an aggregate because its data
// violates an invariant.
type DataAnomaly struct {
	CredentialID string
	Kind         AnomalyKind
	Detail       string
}
