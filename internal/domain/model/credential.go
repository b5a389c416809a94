package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDataIntegrity marks a credential record that violates a structural invariant
// and must be excluded from aggregation.
var ErrDataIntegrity = errors.New("credential data integrity violation")

// Minimum and maximum NSQF levels.
const (
	MinNSQFLevel = 1
	MaxNSQFLevel = 10
)

// Credential is a digital credential issued to a learner. Everything except
// Status is fixed at issuance and covered by VerificationHash.
type Credential struct {
	ID            string
	Title         string
	Description   string
	IssuerID      string
	IssuerName    string
	RecipientID   string
	RecipientName string
	IssueDate     time.Time
	ExpiryDate    *time.Time // nil means the credential never expires.
	Status        CredentialStatus

	VerificationCode string
	VerificationHash string

	Skills    []string
	NSQFLevel *int // nil when the credential carries no NSQF classification.
}

// EffectiveStatus returns the lifecycle state of c at the given instant.
// Revocation is terminal and dominates expiry; expiry is time-triggered and
// also terminal.
func (c Credential) EffectiveStatus(now time.Time) CredentialStatus {
	switch c.Status {
	case CredentialStatusRevoked:
		return CredentialStatusRevoked
	case CredentialStatusExpired:
		return CredentialStatusExpired
	}
	if c.ExpiryDate != nil && now.After(*c.ExpiryDate) {
		return CredentialStatusExpired
	}
	return CredentialStatusIssued
}

// IsActiveAt reports whether c counts as an issued credential at now.
func (c Credential) IsActiveAt(now time.Time) bool {
	return c.EffectiveStatus(now) == CredentialStatusIssued
}

// Level returns the NSQF level, or 0 when none is set.
func (c Credential) Level() int {
	if c.NSQFLevel == nil {
		return 0
	}
	return *c.NSQFLevel
}

// HasValidLevel reports whether the credential carries an NSQF level inside [1,10].
func (c Credential) HasValidLevel() bool {
	return c.NSQFLevel != nil && *c.NSQFLevel >= MinNSQFLevel && *c.NSQFLevel <= MaxNSQFLevel
}

// Validate checks the structural invariants of a persisted credential. The
// returned error wraps ErrDataIntegrity.
func (c Credential) Validate() error {
	if !c.Status.IsKnown() {
		return fmt.Errorf("%w: unknown status %q", ErrDataIntegrity, string(c.Status))
	}

	var missing []string
	if strings.TrimSpace(c.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(c.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(c.IssuerID) == "" {
		missing = append(missing, "issuer_id")
	}
	if strings.TrimSpace(c.RecipientID) == "" {
		missing = append(missing, "recipient_id")
	}
	if c.IssueDate.IsZero() {
		missing = append(missing, "issue_date")
	}
	if c.VerificationCode == "" {
		missing = append(missing, "verification_code")
	}
	if c.VerificationHash == "" {
		missing = append(missing, "verification_hash")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrDataIntegrity, strings.Join(missing, ", "))
	}

	if c.ExpiryDate != nil && !c.ExpiryDate.After(c.IssueDate) {
		return fmt.Errorf("%w: expiry_date %s is not after issue_date %s",
			ErrDataIntegrity, c.ExpiryDate.UTC().Format(time.RFC3339), c.IssueDate.UTC().Format(time.RFC3339))
	}
	if c.NSQFLevel != nil && !c.HasValidLevel() {
		return fmt.Errorf("%w: nsqf_level %d outside [%d,%d]", ErrDataIntegrity, *c.NSQFLevel, MinNSQFLevel, MaxNSQFLevel)
	}
	return nil
}

// ValidateAt is Validate plus the checks that depend on the current instant:
// a credential cannot be issued after now.
func (c Credential) ValidateAt(now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.IssueDate.After(now) {
		return fmt.Errorf("%w: issue_date %s is in the future",
			ErrDataIntegrity, c.IssueDate.UTC().Format(time.RFC3339))
	}
	return nil
}

// Snapshot returns a read-only copy of the fields needed to display c.
func (c Credential) Snapshot() *CredentialSnapshot {
	skills := make([]string, len(c.Skills))
	copy(skills, c.Skills)

	var expiry *time.Time
	if c.ExpiryDate != nil {
		e := *c.ExpiryDate
		expiry = &e
	}

	return &CredentialSnapshot{
		ID:               c.ID,
		Title:            c.Title,
		Description:      c.Description,
		IssuerName:       c.IssuerName,
		RecipientName:    c.RecipientName,
		IssueDate:        c.IssueDate,
		ExpiryDate:       expiry,
		Status:           c.Status,
		VerificationCode: c.VerificationCode,
		Skills:           skills,
		NSQFLevel:        c.Level(),
	}
}

// CredentialSnapshot is the display copy of a credential carried by a
// VerificationResult. It is detached from the stored record.
type CredentialSnapshot struct {
	ID               string
	Title            string
	Description      string
	IssuerName       string
	RecipientName    string
	IssueDate        time.Time
	ExpiryDate       *time.Time
	Status           CredentialStatus // Stored status, before lifecycle evaluation.
	VerificationCode string
	Skills           []string
	NSQFLevel        int // 0 when unset.
}
