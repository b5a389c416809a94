package model

import (
	"fmt"
	"strings"
)

// CredentialStatus represents the lifecycle state of a credential.
type CredentialStatus string

const (
	CredentialStatusIssued  CredentialStatus = "issued"
	CredentialStatusExpired CredentialStatus = "expired"
	CredentialStatusRevoked CredentialStatus = "revoked"
)

// IsKnown reports whether s is one of the lifecycle states.
func (s CredentialStatus) IsKnown() bool {
	switch s {
	case CredentialStatusIssued, CredentialStatusExpired, CredentialStatusRevoked:
		return true
	}
	return false
}

// ParseCredentialStatus converts a stored or wire value into a CredentialStatus.
// "active" is accepted as an alias of "issued".
func ParseCredentialStatus(s string) (CredentialStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "issued", "active":
		return CredentialStatusIssued, nil
	case "expired":
		return CredentialStatusExpired, nil
	case "revoked":
		return CredentialStatusRevoked, nil
	default:
		return "", fmt.Errorf("unknown credential status %q", s)
	}
}

// VerificationMethod identifies which lookup path a verification request used.
type VerificationMethod string

const (
	VerificationMethodCode VerificationMethod = "code"
	VerificationMethodURL  VerificationMethod = "url"
	VerificationMethodHash VerificationMethod = "hash"
)

// FailureReason explains why a verification did not produce a valid result.
// The empty reason accompanies a valid result.
type FailureReason string

const (
	ReasonNone         FailureReason = ""
	ReasonNotFound     FailureReason = "not found"
	ReasonRevoked      FailureReason = "revoked"
	ReasonTampered     FailureReason = "tampered"
	ReasonInvalidInput FailureReason = "invalid input"
)
