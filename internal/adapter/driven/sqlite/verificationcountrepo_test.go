package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

func TestVerificationCountRepo_RecordAndStats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVerificationCountRepo(db)
	ctx := context.Background()

	base := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	events := []model.VerificationEvent{
		{CredentialID: "c1", Method: model.VerificationMethodCode, Outcome: "valid", At: base},
		{CredentialID: "c1", Method: model.VerificationMethodCode, Outcome: "valid", At: base.Add(2 * time.Hour)},
		{CredentialID: "c1", Method: model.VerificationMethodURL, Outcome: "revoked", At: base.Add(time.Hour)},
		{CredentialID: "c2", Method: model.VerificationMethodHash, Outcome: "valid", At: base.Add(5 * time.Hour)},
		{Method: model.VerificationMethodCode, Outcome: "not_found", At: base},
	}
	for _, e := range events {
		require.NoError(t, repo.RecordVerification(ctx, e))
	}

	stats, err := repo.StatsForCredential(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", stats.CredentialID)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, map[string]int{"valid": 2, "revoked": 1}, stats.ByOutcome)
	assert.Equal(t, map[model.VerificationMethod]int{
		model.VerificationMethodCode: 2,
		model.VerificationMethodURL:  1,
	}, stats.ByMethod)
	require.NotNil(t, stats.LastVerified)
	assert.Equal(t, base.Add(2*time.Hour), *stats.LastVerified)

	unresolved, err := repo.StatsForCredential(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, unresolved.ByOutcome["not_found"])
}

func TestVerificationCountRepo_UnknownCredential(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVerificationCountRepo(db)

	stats, err := repo.StatsForCredential(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Empty(t, stats.ByOutcome)
	assert.Nil(t, stats.LastVerified)
}
