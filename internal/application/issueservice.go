package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
	"github.com/ericfisherdev/credtrust/internal/domain/port/driven"
)

// Sentinel errors returned by IssuanceService.
var (
	ErrCredentialNotFound  = errors.New("credential not found")
	ErrAlreadyRevoked      = errors.New("credential already revoked")
	ErrCredentialExpired   = errors.New("credential expired")
	ErrInvalidIssueRequest = errors.New("invalid issue request")
)

const (
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength      = 8
	maxCodeAttempts = 5
)

// IssueRequest carries the issuer-supplied fields of a new credential.
type IssueRequest struct {
	Title         string
	Description   string
	IssuerID      string
	IssuerName    string
	RecipientID   string
	RecipientName string
	ExpiryDate    *time.Time
	Skills        []string
	NSQFLevel     *int
}

// IssuanceService issues and revokes credentials. It is the only writer of
// verification codes and hashes.
type IssuanceService struct {
	store   driven.CredentialStore
	now     func() time.Time
	newCode func() (string, error)
	logger  *slog.Logger
}

// NewIssuanceService creates an IssuanceService backed by store.
func NewIssuanceService(store driven.CredentialStore, logger *slog.Logger) *IssuanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IssuanceService{
		store:   store,
		now:     time.Now,
		newCode: GenerateVerificationCode,
		logger:  logger,
	}
}

// WithClock replaces the time source.
func (s *IssuanceService) WithClock(now func() time.Time) *IssuanceService {
	s.now = now
	return s
}

// WithCodeGenerator replaces the verification code generator.
func (s *IssuanceService) WithCodeGenerator(gen func() (string, error)) *IssuanceService {
	s.newCode = gen
	return s
}

// Issue validates req, assigns an ID, verification code, and fingerprint, and
// persists the credential. A colliding code is regenerated a bounded number
// of times.
func (s *IssuanceService) Issue(ctx context.Context, req IssueRequest) (model.Credential, error) {
	now := s.now().UTC()
	if err := validateIssueRequest(req, now); err != nil {
		return model.Credential{}, err
	}

	cred := model.Credential{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		IssuerID:      strings.TrimSpace(req.IssuerID),
		IssuerName:    strings.TrimSpace(req.IssuerName),
		RecipientID:   strings.TrimSpace(req.RecipientID),
		RecipientName: strings.TrimSpace(req.RecipientName),
		IssueDate:     now,
		Status:        model.CredentialStatusIssued,
		Skills:        normalizeSkills(req.Skills),
	}
	if req.ExpiryDate != nil {
		expiry := req.ExpiryDate.UTC()
		cred.ExpiryDate = &expiry
	}
	if req.NSQFLevel != nil {
		lvl := *req.NSQFLevel
		cred.NSQFLevel = &lvl
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return model.Credential{}, fmt.Errorf("generate verification code: %w", err)
		}
		cred.VerificationCode = code
		cred.VerificationHash = model.ComputeVerificationHash(cred)

		err = s.store.Create(ctx, cred)
		if errors.Is(err, driven.ErrDuplicateCode) {
			s.logger.Debug("verification code collision, regenerating", "attempt", attempt)
			continue
		}
		if err != nil {
			return model.Credential{}, fmt.Errorf("create credential: %w", err)
		}

		s.logger.Info("credential issued",
			"credential_id", cred.ID,
			"issuer_id", cred.IssuerID,
			"recipient_id", cred.RecipientID,
		)
		return cred, nil
	}

	return model.Credential{}, fmt.Errorf("create credential: no unique verification code after %d attempts", maxCodeAttempts)
}

// Get returns the stored credential together with its effective status.
func (s *IssuanceService) Get(ctx context.Context, id string) (model.Credential, model.CredentialStatus, error) {
	cred, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Credential{}, "", fmt.Errorf("get credential %q: %w", id, err)
	}
	if cred == nil {
		return model.Credential{}, "", ErrCredentialNotFound
	}
	return *cred, cred.EffectiveStatus(s.now()), nil
}

// Revoke marks an issued credential revoked. Revoked and expired are both
// terminal, so revoking either returns ErrAlreadyRevoked or
// ErrCredentialExpired. Of two concurrent revokes exactly one succeeds.
func (s *IssuanceService) Revoke(ctx context.Context, id string) (model.Credential, error) {
	cred, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Credential{}, fmt.Errorf("get credential %q: %w", id, err)
	}
	if cred == nil {
		return model.Credential{}, ErrCredentialNotFound
	}
	if err := terminalError(cred.EffectiveStatus(s.now())); err != nil {
		return model.Credential{}, err
	}

	err = s.store.UpdateStatus(ctx, id, model.CredentialStatusIssued, model.CredentialStatusRevoked)
	switch {
	case errors.Is(err, driven.ErrNotFound):
		return model.Credential{}, ErrCredentialNotFound
	case errors.Is(err, driven.ErrStatusConflict):
		return model.Credential{}, s.revokeConflict(ctx, id)
	case err != nil:
		return model.Credential{}, fmt.Errorf("revoke credential %q: %w", id, err)
	}

	cred.Status = model.CredentialStatusRevoked
	s.logger.Info("credential revoked", "credential_id", id)
	return *cred, nil
}

// revokeConflict re-reads a credential whose status changed between lookup
// and write and reports which terminal state it reached.
func (s *IssuanceService) revokeConflict(ctx context.Context, id string) error {
	cred, err := s.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get credential %q: %w", id, err)
	}
	if cred == nil {
		return ErrCredentialNotFound
	}
	if err := terminalError(cred.EffectiveStatus(s.now())); err != nil {
		return err
	}
	return ErrAlreadyRevoked
}

func terminalError(status model.CredentialStatus) error {
	switch status {
	case model.CredentialStatusRevoked:
		return ErrAlreadyRevoked
	case model.CredentialStatusExpired:
		return ErrCredentialExpired
	}
	return nil
}

// GenerateVerificationCode returns a random 8-character code drawn from [A-Z0-9].
func GenerateVerificationCode() (string, error) {
	limit := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.Grow(codeLength)
	for range codeLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func validateIssueRequest(req IssueRequest, now time.Time) error {
	var problems []string
	if strings.TrimSpace(req.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(req.IssuerID) == "" {
		problems = append(problems, "issuer_id is required")
	}
	if strings.TrimSpace(req.RecipientID) == "" {
		problems = append(problems, "recipient_id is required")
	}
	if req.ExpiryDate != nil && !req.ExpiryDate.After(now) {
		problems = append(problems, "expiry_date must be after the issue date")
	}
	if req.NSQFLevel != nil && (*req.NSQFLevel < model.MinNSQFLevel || *req.NSQFLevel > model.MaxNSQFLevel) {
		problems = append(problems, fmt.Sprintf("nsqf_level must be between %d and %d", model.MinNSQFLevel, model.MaxNSQFLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidIssueRequest, strings.Join(problems, "; "))
	}
	return nil
}

// normalizeSkills trims names, drops empties, and removes duplicates while
// keeping first-seen order.
func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
