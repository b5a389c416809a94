package model

import (
	"fmt"
	"strings"
	"time"
)

// VerificationInput is the caller's declared lookup: exactly one of CodeInput,
// URLInput, or HashInput. The set is closed; consumers switch on the concrete type.
type VerificationInput interface {
	Method() VerificationMethod
	Raw() string
	isVerificationInput()
}

// CodeInput requests lookup by human-entered verification code.
type CodeInput struct{ Code string }

// URLInput requests lookup through a full verification URL that embeds a code or hash.
type URLInput struct{ URL string }

// HashInput requests lookup by raw verification hash.
type HashInput struct{ Hash string }

func (CodeInput) Method() VerificationMethod { return VerificationMethodCode }
func (URLInput) Method() VerificationMethod  { return VerificationMethodURL }
func (HashInput) Method() VerificationMethod { return VerificationMethodHash }

func (i CodeInput) Raw() string { return i.Code }
func (i URLInput) Raw() string  { return i.URL }
func (i HashInput) Raw() string { return i.Hash }

func (CodeInput) isVerificationInput() {}
func (URLInput) isVerificationInput()  {}
func (HashInput) isVerificationInput() {}

// NewVerificationInput builds the tagged input from a wire method name and value.
// The value is not validated here; the resolver rejects empty input itself.
func NewVerificationInput(method, value string) (VerificationInput, error) {
	switch VerificationMethod(strings.ToLower(strings.TrimSpace(method))) {
	case VerificationMethodCode:
		return CodeInput{Code: value}, nil
	case VerificationMethodURL:
		return URLInput{URL: value}, nil
	case VerificationMethodHash:
		return HashInput{Hash: value}, nil
	default:
		return nil, fmt.Errorf("unknown verification method %q", method)
	}
}

// VerificationResult is the trust decision for one verification request. It is
// built fresh for every request and never cached.
type VerificationResult struct {
	IsValid         bool
	Reason          FailureReason
	Credential      *CredentialSnapshot // nil when nothing was found.
	EffectiveStatus CredentialStatus    // empty when nothing was found.
	VerifiedAt      time.Time
	Method          VerificationMethod
}

// Outcome is the short label used by verification counters.
func (r VerificationResult) Outcome() string {
	if r.IsValid {
		if r.EffectiveStatus == CredentialStatusExpired {
			return "valid_expired"
		}
		return "valid"
	}
	return strings.ReplaceAll(string(r.Reason), " ", "_")
}

// VerificationEvent is the analytics record emitted for each resolution. It is
// non-authoritative and never feeds back into trust decisions.
type VerificationEvent struct {
	CredentialID string // empty when the lookup found nothing.
	Method       VerificationMethod
	Outcome      string
	At           time.Time
}

// VerificationStats summarizes recorded verification events for one credential.
type VerificationStats struct {
	CredentialID string
	Total        int
	ByOutcome    map[string]int
	ByMethod     map[VerificationMethod]int
	LastVerified *time.Time
}
