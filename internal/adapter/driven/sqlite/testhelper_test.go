package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

// setupTestDB creates a named shared in-memory SQLite database with all
// migrations applied. The name is derived from t.Name() so parallel tests
// never share state.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it cannot be read as DSN query parameters.
	safeName := url.PathEscape(t.Name())
	// WAL does not apply to in-memory databases.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		safeName,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("create test db writer: %v", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(context.Background()); err != nil {
		_ = writer.Close()
		t.Fatalf("ping test db writer: %v", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("create test db reader: %v", err)
	}
	reader.SetMaxOpenConns(4)
	if err := reader.PingContext(context.Background()); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		t.Fatalf("ping test db reader: %v", err)
	}

	db := &DB{Writer: writer, Reader: reader, path: dsn}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

var testIssued = time.Date(2024, time.March, 15, 9, 30, 0, 123456789, time.UTC)

// testCredential returns a sealed credential with the given ID and code.
func testCredential(id, code string) model.Credential {
	lvl := 5
	expiry := testIssued.AddDate(2, 0, 0)
	c := model.Credential{
		ID:               id,
		Title:            "Data Analytics " + id,
		Description:      "Covers *SQL* and dashboards",
		IssuerID:         "issuer-1",
		IssuerName:       "Skill Academy",
		RecipientID:      "learner-1",
		RecipientName:    "Asha Rao",
		IssueDate:        testIssued,
		ExpiryDate:       &expiry,
		Status:           model.CredentialStatusIssued,
		VerificationCode: code,
		Skills:           []string{"SQL", "Tableau"},
		NSQFLevel:        &lvl,
	}
	c.VerificationHash = model.ComputeVerificationHash(c)
	return c
}
