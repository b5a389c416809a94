package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

// CredentialReader defines the driven port for credential lookups. Every
// single-record lookup returns (nil, nil) when no credential matches.
type CredentialReader interface {
	GetByID(ctx context.Context, id string) (*model.Credential, error)
	GetByCode(ctx context.Context, code string) (*model.Credential, error)
	GetByHash(ctx context.Context, hash string) (*model.Credential, error)
	ListByLearner(ctx context.Context, learnerID string) ([]model.Credential, error)
}

// CredentialStore extends CredentialReader with the writes needed for issuance,
// revocation, and persisting computed expiry.
type CredentialStore interface {
	CredentialReader

	// Create persists a newly issued credential. Returns ErrDuplicateCode when
	// the verification code is already taken.
	Create(ctx context.Context, c model.Credential) error

	// UpdateStatus moves the stored status from `from` to `to` in a single
	// write. Returns an error wrapping ErrNotFound when no credential has the
	// given ID, or ErrStatusConflict when its stored status is not `from`.
	UpdateStatus(ctx context.Context, id string, from, to model.CredentialStatus) error

	// ExpireDue marks every issued credential whose expiry is before now as
	// expired and returns how many rows changed.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}
