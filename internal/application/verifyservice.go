// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
	"github.com/ericfisherdev/credtrust/internal/domain/port/driven"
)

// lookupKey is the normalized store key derived from a verification input.
type lookupKey struct {
	byHash bool
	value  string
}

// VerificationService resolves verification requests into trust decisions.
// It reads credentials through the CredentialReader port and reports every
// resolution to the configured counters.
type VerificationService struct {
	store    driven.CredentialReader
	counters []driven.VerificationCounter
	now      func() time.Time
	logger   *slog.Logger
}

// NewVerificationService creates a VerificationService. Counters are optional.
func NewVerificationService(store driven.CredentialReader, logger *slog.Logger, counters ...driven.VerificationCounter) *VerificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VerificationService{
		store:    store,
		counters: counters,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source. Intended for tests and the CLI.
func (s *VerificationService) WithClock(now func() time.Time) *VerificationService {
	s.now = now
	return s
}

// Verify resolves input to a VerificationResult. Not-found, revoked, tampered,
// and malformed inputs are reported in the result; only store failures are
// returned as errors.
func (s *VerificationService) Verify(ctx context.Context, input model.VerificationInput) (model.VerificationResult, error) {
	now := s.now().UTC()
	result := model.VerificationResult{VerifiedAt: now}

	if input == nil {
		result.Reason = model.ReasonInvalidInput
		return result, nil
	}
	result.Method = input.Method()

	key, ok := lookupFor(input)
	if !ok {
		result.Reason = model.ReasonInvalidInput
		s.record(ctx, result)
		return result, nil
	}

	cred, err := s.lookup(ctx, key)
	if err != nil {
		return model.VerificationResult{}, err
	}
	if cred == nil {
		result.Reason = model.ReasonNotFound
		s.record(ctx, result)
		return result, nil
	}

	status := cred.EffectiveStatus(now)
	result.Credential = cred.Snapshot()
	result.EffectiveStatus = status

	// The fingerprint check runs for every status; a tampered record is
	// reported as tampered even when it is also revoked.
	integrityErr := cred.ValidateAt(now)
	switch {
	case !cred.HashMatches():
		result.Reason = model.ReasonTampered
		s.logger.Warn("credential hash mismatch",
			"credential_id", cred.ID,
			"method", result.Method,
			"status", status,
		)
	case integrityErr != nil:
		result.Reason = model.ReasonTampered
		s.logger.Warn("credential record failed integrity check",
			"credential_id", cred.ID,
			"method", result.Method,
			"error", integrityErr,
		)
	case status == model.CredentialStatusRevoked:
		result.Reason = model.ReasonRevoked
	default:
		result.IsValid = true
	}

	s.record(ctx, result)
	return result, nil
}

func (s *VerificationService) lookup(ctx context.Context, key lookupKey) (*model.Credential, error) {
	if key.byHash {
		cred, err := s.store.GetByHash(ctx, key.value)
		if err != nil {
			return nil, fmt.Errorf("lookup credential by hash: %w", err)
		}
		return cred, nil
	}

	cred, err := s.store.GetByCode(ctx, key.value)
	if err != nil {
		return nil, fmt.Errorf("lookup credential by code: %w", err)
	}
	return cred, nil
}

// record forwards the resolution to every counter. Counter errors are logged
// and otherwise ignored.
func (s *VerificationService) record(ctx context.Context, result model.VerificationResult) {
	if len(s.counters) == 0 {
		return
	}

	event := model.VerificationEvent{
		Method:  result.Method,
		Outcome: result.Outcome(),
		At:      result.VerifiedAt,
	}
	if result.Credential != nil {
		event.CredentialID = result.Credential.ID
	}

	for _, c := range s.counters {
		if err := c.RecordVerification(ctx, event); err != nil {
			s.logger.Warn("failed to record verification", "method", event.Method, "error", err)
		}
	}
}

// lookupFor normalizes input into a store key. It returns false when nothing
// usable remains after normalization.
func lookupFor(input model.VerificationInput) (lookupKey, bool) {
	switch in := input.(type) {
	case model.CodeInput:
		code := normalizeCode(in.Code)
		return lookupKey{value: code}, code != ""
	case model.HashInput:
		hash := normalizeHash(in.Hash)
		return lookupKey{byHash: true, value: hash}, hash != ""
	case model.URLInput:
		return keyFromURL(in.URL)
	default:
		return lookupKey{}, false
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeHash(hash string) string {
	return strings.ToLower(strings.TrimSpace(hash))
}

// keyFromURL extracts the lookup key from a verification URL. A "code" or
// "hash" query parameter wins; otherwise the trailing path segment is used,
// and it is treated as a hash when the preceding segment is "hash".
func keyFromURL(raw string) (lookupKey, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return lookupKey{}, false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return lookupKey{}, false
	}

	q := u.Query()
	if code := normalizeCode(q.Get("code")); code != "" {
		return lookupKey{value: code}, true
	}
	if hash := normalizeHash(q.Get("hash")); hash != "" {
		return lookupKey{byHash: true, value: hash}, true
	}

	var segments []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}
	// A bare host such as "verify.example.org" carries no key.
	if len(segments) == 0 || (u.Host == "" && u.Scheme == "" && len(segments) == 1 && strings.Contains(segments[0], ".")) {
		return lookupKey{}, false
	}

	last := segments[len(segments)-1]
	if len(segments) > 1 && strings.EqualFold(segments[len(segments)-2], "hash") {
		return lookupKey{byHash: true, value: normalizeHash(last)}, true
	}
	return lookupKey{value: normalizeCode(last)}, true
}
