package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
	"github.com/ericfisherdev/credtrust/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

const credentialColumns = `
	id, title, description, issuer_id, issuer_name, recipient_id, recipient_name,
	issue_date, expiry_date, status, verification_code, verification_hash, skills, nsqf_level`

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
// Skills are stored as a JSON array in a TEXT column.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// Create inserts a new credential. A verification code that is already in use
// yields driven.ErrDuplicateCode.
func (r *CredentialRepo) Create(ctx context.Context, c model.Credential) error {
	const query = `
		INSERT INTO credentials (` + credentialColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	skills := c.Skills
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("marshal skills: %w", err)
	}

	var expiry, level any
	if c.ExpiryDate != nil {
		expiry = formatTime(*c.ExpiryDate)
	}
	if c.NSQFLevel != nil {
		level = *c.NSQFLevel
	}

	_, err = r.db.Writer.ExecContext(ctx, query,
		c.ID, c.Title, c.Description, c.IssuerID, c.IssuerName, c.RecipientID, c.RecipientName,
		formatTime(c.IssueDate), expiry, string(c.Status), c.VerificationCode, c.VerificationHash,
		string(skillsJSON), level,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: credentials.verification_code") {
			return fmt.Errorf("create credential %s: %w", c.ID, driven.ErrDuplicateCode)
		}
		return fmt.Errorf("create credential %s: %w", c.ID, err)
	}

	return nil
}

// GetByID retrieves a credential by ID. Returns nil, nil if it does not exist.
func (r *CredentialRepo) GetByID(ctx context.Context, id string) (*model.Credential, error) {
	return r.getOne(ctx, "id", id)
}

// GetByCode retrieves a credential by its verification code.
// Returns nil, nil if no credential carries the code.
func (r *CredentialRepo) GetByCode(ctx context.Context, code string) (*model.Credential, error) {
	return r.getOne(ctx, "verification_code", code)
}

// GetByHash retrieves a credential by its stored verification hash.
// Returns nil, nil if no credential carries the hash.
func (r *CredentialRepo) GetByHash(ctx context.Context, hash string) (*model.Credential, error) {
	return r.getOne(ctx, "verification_hash", hash)
}

// ListByLearner returns every credential held by the learner, ordered by
// issue date then ID.
func (r *CredentialRepo) ListByLearner(ctx context.Context, learnerID string) ([]model.Credential, error) {
	const query = `SELECT ` + credentialColumns + `
		FROM credentials
		WHERE recipient_id = ?
		ORDER BY issue_date, id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("query credentials for learner %s: %w", learnerID, err)
	}
	defer rows.Close()

	creds := []model.Credential{}
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return creds, nil
}

// UpdateStatus moves a credential from status `from` to `to`. Returns
// driven.ErrNotFound if the credential does not exist and
// driven.ErrStatusConflict if its stored status is not `from`.
func (r *CredentialRepo) UpdateStatus(ctx context.Context, id string, from, to model.CredentialStatus) error {
	const query = `
		UPDATE credentials
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.Writer.ExecContext(ctx, query, string(to), formatTime(time.Now()), id, string(from))
	if err != nil {
		return fmt.Errorf("update status of credential %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists int
	err = r.db.Writer.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check credential %s: %w", id, err)
	}
	if exists == 0 {
		return fmt.Errorf("credential %s: %w", id, driven.ErrNotFound)
	}
	return fmt.Errorf("credential %s is not %s: %w", id, from, driven.ErrStatusConflict)
}

// ExpireDue marks every issued credential whose expiry date is before now as
// expired and returns the number of rows changed.
func (r *CredentialRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		UPDATE credentials
		SET status = 'expired', updated_at = ?
		WHERE status = 'issued' AND expiry_date IS NOT NULL AND expiry_date < ?
	`

	stamp := formatTime(now)
	result, err := r.db.Writer.ExecContext(ctx, query, stamp, stamp)
	if err != nil {
		return 0, fmt.Errorf("expire due credentials: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}
	return rows, nil
}

// getOne looks a credential up by a single indexed column. column is never
// user input.
func (r *CredentialRepo) getOne(ctx context.Context, column, value string) (*model.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE ` + column + ` = ?`

	c, err := scanCredential(r.db.Reader.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential by %s: %w", column, err)
	}

	return c, nil
}

func scanCredential(s scanner) (*model.Credential, error) {
	var c model.Credential
	var status, issueDate, skillsJSON string
	var expiry sql.NullString
	var level sql.NullInt64

	err := s.Scan(
		&c.ID, &c.Title, &c.Description, &c.IssuerID, &c.IssuerName, &c.RecipientID, &c.RecipientName,
		&issueDate, &expiry, &status, &c.VerificationCode, &c.VerificationHash, &skillsJSON, &level,
	)
	if err != nil {
		return nil, err
	}

	c.Status = model.CredentialStatus(status)

	c.IssueDate, err = parseTime(issueDate)
	if err != nil {
		return nil, fmt.Errorf("parse issue_date: %w", err)
	}

	if expiry.Valid {
		t, err := parseTime(expiry.String)
		if err != nil {
			return nil, fmt.Errorf("parse expiry_date: %w", err)
		}
		c.ExpiryDate = &t
	}

	if level.Valid {
		lvl := int(level.Int64)
		c.NSQFLevel = &lvl
	}

	if err := json.Unmarshal([]byte(skillsJSON), &c.Skills); err != nil {
		return nil, fmt.Errorf("unmarshal skills: %w", err)
	}

	return &c, nil
}
