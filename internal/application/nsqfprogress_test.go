package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/credtrust/internal/application"
	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

func TestComputeNSQFProgress_Empty(t *testing.T) {
	p := application.ComputeNSQFProgress(nil, testNow)

	require.Len(t, p.Levels, 10)
	for i, lvl := range p.Levels {
		assert.Equal(t, i+1, lvl.Level)
		assert.Equal(t, model.NSQFCatalog[i].Name, lvl.Name)
		assert.Equal(t, model.NSQFCatalog[i].Description, lvl.Description)
		assert.Zero(t, lvl.AchievedCount)
		assert.Empty(t, lvl.SkillsAtLevel)
	}
	assert.Equal(t, 0, p.HighestAchievedLevel)
	assert.Equal(t, 1, p.NextTarget)
	assert.False(t, p.MaxLevelReached)
	assert.Empty(t, p.Anomalies)
}

func TestComputeNSQFProgress_CountsAndSkillUnion(t *testing.T) {
	creds := []model.Credential{
		newCred("a", withLevel(5), withSkills("Python", "SQL")),
		newCred("b", withLevel(5), withSkills("SQL", "Tableau")),
		newCred("c", withLevel(3), withSkills("Excel")),
		newCred("d", withSkills("Unlevelled")),
	}

	p := application.ComputeNSQFProgress(creds, testNow)

	assert.Equal(t, 2, p.Levels[4].AchievedCount)
	assert.Equal(t, []string{"Python", "SQL", "Tableau"}, p.Levels[4].SkillsAtLevel)
	assert.Equal(t, 1, p.Levels[2].AchievedCount)
	assert.Equal(t, []string{"Excel"}, p.Levels[2].SkillsAtLevel)
	assert.Equal(t, 5, p.HighestAchievedLevel)
	assert.Equal(t, 6, p.NextTarget)

	total := 0
	for _, lvl := range p.Levels {
		total += lvl.AchievedCount
	}
	assert.Equal(t, 3, total)
}

func TestComputeNSQFProgress_MaximumReached(t *testing.T) {
	p := application.ComputeNSQFProgress([]model.Credential{newCred("phd", withLevel(10))}, testNow)

	assert.Equal(t, 10, p.HighestAchievedLevel)
	assert.Equal(t, 0, p.NextTarget)
	assert.True(t, p.MaxLevelReached)
}

func TestComputeNSQFProgress_IgnoresInactive(t *testing.T) {
	creds := []model.Credential{
		newCred("revoked", withLevel(9), withStatus(model.CredentialStatusRevoked)),
		newCred("expired", withLevel(8), withExpiry(testNow.AddDate(0, 0, -1))),
		newCred("active", withLevel(4)),
	}

	p := application.ComputeNSQFProgress(creds, testNow)

	assert.Equal(t, 4, p.HighestAchievedLevel)
	assert.Zero(t, p.Levels[8].AchievedCount)
	assert.Zero(t, p.Levels[7].AchievedCount)
	assert.Empty(t, p.Anomalies)
}

func TestComputeNSQFProgress_OutOfRangeFlagged(t *testing.T) {
	creds := []model.Credential{
		newCred("zero", withLevel(0)),
		newCred("eleven", withLevel(11), withSkills("Ghost")),
		newCred("ok", withLevel(2)),
	}

	p := application.ComputeNSQFProgress(creds, testNow)

	require.Len(t, p.Anomalies, 2)
	for _, a := range p.Anomalies {
		assert.Equal(t, model.AnomalyLevelOutOfRange, a.Kind)
	}
	assert.Equal(t, 2, p.HighestAchievedLevel)
	for _, lvl := range p.Levels {
		assert.NotContains(t, lvl.SkillsAtLevel, "Ghost")
	}
}

func TestComputeNSQFProgress_MonotonicInAddedCredential(t *testing.T) {
	base := []model.Credential{
		newCred("a", withLevel(6)),
		newCred("b", withLevel(3)),
	}
	before := application.ComputeNSQFProgress(base, testNow)

	for lvl := 1; lvl <= 10; lvl++ {
		extended := append(append([]model.Credential(nil), base...), newCred("extra", withLevel(lvl)))
		after := application.ComputeNSQFProgress(extended, testNow)

		assert.GreaterOrEqual(t, after.Levels[lvl-1].AchievedCount, before.Levels[lvl-1].AchievedCount+1, "level %d", lvl)
		assert.GreaterOrEqual(t, after.HighestAchievedLevel, before.HighestAchievedLevel, "level %d", lvl)
	}
}

func TestComputeNSQFProgress_Deterministic(t *testing.T) {
	creds := []model.Credential{
		newCred("a", withLevel(7), withSkills("Go", "K8s")),
		newCred("b", withLevel(7), withSkills("Terraform", "Go")),
	}
	reversed := []model.Credential{creds[1], creds[0]}

	first := application.ComputeNSQFProgress(creds, testNow)
	assert.Equal(t, first, application.ComputeNSQFProgress(creds, testNow))
	assert.Equal(t, first, application.ComputeNSQFProgress(reversed, testNow))
}
