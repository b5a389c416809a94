package backend

import (
	"fmt"
	"time"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

// credentialDTO is the backend's JSON representation of a credential.
type credentialDTO struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	IssuerID         string   `json:"issuer_id"`
	IssuerName       string   `json:"issuer_name"`
	RecipientID      string   `json:"recipient_id"`
	RecipientName    string   `json:"recipient_name"`
	IssueDate        string   `json:"issue_date"`
	ExpiryDate       *string  `json:"expiry_date"`
	Status           string   `json:"status"`
	VerificationCode string   `json:"verification_code"`
	VerificationHash string   `json:"verification_hash"`
	Skills           []string `json:"skills"`
	NSQFLevel        *int     `json:"nsqf_level"`
}

func (d credentialDTO) toModel() (model.Credential, error) {
	c, err := d.decode()
	if err != nil {
		return model.Credential{}, err
	}
	return c, nil
}

// decode converts d field by field. Fields that fail to parse are left in a
// state that fails model.Credential.Validate: an unknown status is kept
// verbatim and an unparseable date becomes the zero time. The first parse
// error is returned alongside the partial credential.
func (d credentialDTO) decode() (model.Credential, error) {
	var firstErr error

	c := model.Credential{
		ID:               d.ID,
		Title:            d.Title,
		Description:      d.Description,
		IssuerID:         d.IssuerID,
		IssuerName:       d.IssuerName,
		RecipientID:      d.RecipientID,
		RecipientName:    d.RecipientName,
		VerificationCode: d.VerificationCode,
		VerificationHash: d.VerificationHash,
		Skills:           d.Skills,
		NSQFLevel:        d.NSQFLevel,
	}

	status, err := model.ParseCredentialStatus(d.Status)
	if err != nil {
		firstErr = err
		status = model.CredentialStatus(d.Status)
	}
	c.Status = status

	if issued, err := time.Parse(time.RFC3339Nano, d.IssueDate); err == nil {
		c.IssueDate = issued.UTC()
	} else if firstErr == nil {
		firstErr = fmt.Errorf("parse issue_date: %w", err)
	}

	if d.ExpiryDate != nil && *d.ExpiryDate != "" {
		expiry, err := time.Parse(time.RFC3339Nano, *d.ExpiryDate)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("parse expiry_date: %w", err)
		}
		expiry = expiry.UTC()
		c.ExpiryDate = &expiry
	}

	return c, firstErr
}
