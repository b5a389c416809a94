package application_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/credtrust/internal/application"
	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

func TestProgressService_SkillRatingsForLearner(t *testing.T) {
	other := newCred("other", withSkills("Go"))
	other.RecipientID = "learner-2"
	store := &mockCredentialStore{creds: []model.Credential{
		newCred("a", withSkills("Go", "SQL"), withLevel(6)),
		newCred("b", withSkills("Go")),
		other,
	}}
	svc := application.NewProgressService(store, slog.Default()).WithClock(fixedClock)

	ratings, err := svc.SkillRatingsForLearner(context.Background(), "learner-1")

	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, "Go", ratings[0].Skill)
	assert.Equal(t, 3, ratings[0].Stars)
	assert.Equal(t, "SQL", ratings[1].Skill)
	assert.Equal(t, 2, ratings[1].Stars)
}

func TestProgressService_UnknownLearnerIsEmpty(t *testing.T) {
	svc := application.NewProgressService(&mockCredentialStore{}, slog.Default()).WithClock(fixedClock)

	ratings, err := svc.SkillRatingsForLearner(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, ratings)

	progress, err := svc.NSQFProgressForLearner(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Len(t, progress.Levels, 10)
	assert.Equal(t, 1, progress.NextTarget)
}

func TestProgressService_LogsAnomalies(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	store := &mockCredentialStore{creds: []model.Credential{
		newCred("bad", withLevel(14)),
		newCred("good", withLevel(3)),
	}}
	svc := application.NewProgressService(store, logger).WithClock(fixedClock)

	progress, err := svc.NSQFProgressForLearner(context.Background(), "learner-1")

	require.NoError(t, err)
	assert.Equal(t, 3, progress.HighestAchievedLevel)
	require.Len(t, progress.Anomalies, 1)
	assert.Contains(t, buf.String(), "credential excluded from aggregation")
	assert.Contains(t, buf.String(), "credential_id=bad")
}

func TestProgressService_StoreFailure(t *testing.T) {
	svc := application.NewProgressService(&mockCredentialStore{err: errStoreDown}, slog.Default())

	_, err := svc.SkillRatingsForLearner(context.Background(), "learner-1")
	assert.ErrorIs(t, err, errStoreDown)

	_, err = svc.NSQFProgressForLearner(context.Background(), "learner-1")
	assert.ErrorIs(t, err, errStoreDown)
}
