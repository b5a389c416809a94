package driven

import (
	"context"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

// VerificationCounter defines the driven port for non-authoritative
// verification analytics. Implementations may drop events; failures never
// change a verification result.
type VerificationCounter interface {
	RecordVerification(ctx context.Context, event model.VerificationEvent) error
}

// VerificationStatsReader exposes aggregated counts recorded by a VerificationCounter.
type VerificationStatsReader interface {
	StatsForCredential(ctx context.Context, credentialID string) (model.VerificationStats, error)
}
