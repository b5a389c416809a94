package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
	"github.com/ericfisherdev/credtrust/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.VerificationCounter     = (*VerificationCountRepo)(nil)
	_ driven.VerificationStatsReader = (*VerificationCountRepo)(nil)
)

// VerificationCountRepo keeps per-credential verification counters keyed by
// method and outcome. Lookups that found no credential are counted under an
// empty credential ID.
type VerificationCountRepo struct {
	db *DB
}

// NewVerificationCountRepo creates a new VerificationCountRepo backed by the given DB.
func NewVerificationCountRepo(db *DB) *VerificationCountRepo {
	return &VerificationCountRepo{db: db}
}

// RecordVerification increments the counter for the event's credential,
// method, and outcome.
func (r *VerificationCountRepo) RecordVerification(ctx context.Context, event model.VerificationEvent) error {
	const query = `
		INSERT INTO verification_counts (credential_id, method, outcome, count, last_verified_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(credential_id, method, outcome) DO UPDATE SET
			count = count + 1,
			last_verified_at = MAX(last_verified_at, excluded.last_verified_at)
	`

	at := event.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		event.CredentialID, string(event.Method), event.Outcome, formatTime(at),
	)
	if err != nil {
		return fmt.Errorf("record verification for %q: %w", event.CredentialID, err)
	}

	return nil
}

// StatsForCredential sums the recorded counters for one credential. An
// unknown credential yields zero counts and a nil LastVerified.
func (r *VerificationCountRepo) StatsForCredential(ctx context.Context, credentialID string) (model.VerificationStats, error) {
	const query = `
		SELECT method, outcome, count, last_verified_at
		FROM verification_counts
		WHERE credential_id = ?
	`

	stats := model.VerificationStats{
		CredentialID: credentialID,
		ByOutcome:    make(map[string]int),
		ByMethod:     make(map[model.VerificationMethod]int),
	}

	rows, err := r.db.Reader.QueryContext(ctx, query, credentialID)
	if err != nil {
		return model.VerificationStats{}, fmt.Errorf("query verification counts for %q: %w", credentialID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var method, outcome, lastVerified string
		var count int
		if err := rows.Scan(&method, &outcome, &count, &lastVerified); err != nil {
			return model.VerificationStats{}, fmt.Errorf("scan verification count: %w", err)
		}

		stats.Total += count
		stats.ByOutcome[outcome] += count
		stats.ByMethod[model.VerificationMethod(method)] += count

		at, err := parseTime(lastVerified)
		if err != nil {
			return model.VerificationStats{}, fmt.Errorf("parse last_verified_at: %w", err)
		}
		if stats.LastVerified == nil || at.After(*stats.LastVerified) {
			stats.LastVerified = &at
		}
	}
	if err := rows.Err(); err != nil {
		return model.VerificationStats{}, fmt.Errorf("iterate verification counts: %w", err)
	}

	return stats, nil
}
