package application_test

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
	"github.com/ericfisherdev/credtrust/internal/domain/port/driven"
)

var testNow = time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func ptrInt(i int) *int { return &i }

func ptrTime(t time.Time) *time.Time { return &t }

// credOpt mutates a credential before it is sealed.
type credOpt func(c *model.Credential)

func withSkills(skills ...string) credOpt {
	return func(c *model.Credential) { c.Skills = skills }
}

func withLevel(lvl int) credOpt {
	return func(c *model.Credential) { c.NSQFLevel = ptrInt(lvl) }
}

func withStatus(s model.CredentialStatus) credOpt {
	return func(c *model.Credential) { c.Status = s }
}

func withExpiry(t time.Time) credOpt {
	return func(c *model.Credential) { c.ExpiryDate = ptrTime(t) }
}

func withCode(code string) credOpt {
	return func(c *model.Credential) { c.VerificationCode = code }
}

// newCred builds a structurally valid issued credential with a matching hash.
// Options run before the hash is computed.
func newCred(id string, opts ...credOpt) model.Credential {
	c := model.Credential{
		ID:               id,
		Title:            "Credential " + id,
		IssuerID:         "issuer-1",
		IssuerName:       "Skill Academy",
		RecipientID:      "learner-1",
		RecipientName:    "Asha Rao",
		IssueDate:        testNow.AddDate(-1, 0, 0),
		Status:           model.CredentialStatusIssued,
		VerificationCode: "CODE-" + id,
	}
	for _, opt := range opts {
		opt(&c)
	}
	c.VerificationHash = model.ComputeVerificationHash(c)
	return c
}

// --- Mock implementations ---

type mockCredentialStore struct {
	creds        []model.Credential
	err          error
	createErrs   []error // consumed one per Create call
	created      []model.Credential
	statusCalls  map[string]model.CredentialStatus
	codeLookups  int
	hashLookups  int
	expireCalls  []time.Time
	expireResult int64

	// racedStatus, when set, is written by a competing caller just before
	// UpdateStatus compares the stored status.
	racedStatus model.CredentialStatus
}

var _ driven.CredentialStore = (*mockCredentialStore)(nil)

func (m *mockCredentialStore) find(match func(model.Credential) bool) *model.Credential {
	for _, c := range m.creds {
		if match(c) {
			found := c
			return &found
		}
	}
	return nil
}

func (m *mockCredentialStore) GetByID(_ context.Context, id string) (*model.Credential, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.find(func(c model.Credential) bool { return c.ID == id }), nil
}

func (m *mockCredentialStore) GetByCode(_ context.Context, code string) (*model.Credential, error) {
	m.codeLookups++
	if m.err != nil {
		return nil, m.err
	}
	return m.find(func(c model.Credential) bool { return c.VerificationCode == code }), nil
}

func (m *mockCredentialStore) GetByHash(_ context.Context, hash string) (*model.Credential, error) {
	m.hashLookups++
	if m.err != nil {
		return nil, m.err
	}
	return m.find(func(c model.Credential) bool { return c.VerificationHash == hash }), nil
}

func (m *mockCredentialStore) ListByLearner(_ context.Context, learnerID string) ([]model.Credential, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Credential
	for _, c := range m.creds {
		if c.RecipientID == learnerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCredentialStore) Create(_ context.Context, c model.Credential) error {
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return err
		}
	}
	m.created = append(m.created, c)
	m.creds = append(m.creds, c)
	return nil
}

func (m *mockCredentialStore) UpdateStatus(_ context.Context, id string, from, to model.CredentialStatus) error {
	if m.statusCalls == nil {
		m.statusCalls = make(map[string]model.CredentialStatus)
	}
	for i := range m.creds {
		if m.creds[i].ID != id {
			continue
		}
		if m.racedStatus != "" {
			m.creds[i].Status = m.racedStatus
		}
		if m.creds[i].Status != from {
			return driven.ErrStatusConflict
		}
		m.creds[i].Status = to
		m.statusCalls[id] = to
		return nil
	}
	return driven.ErrNotFound
}

func (m *mockCredentialStore) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	m.expireCalls = append(m.expireCalls, now)
	if m.err != nil {
		return 0, m.err
	}
	return m.expireResult, nil
}

type mockCounter struct {
	events []model.VerificationEvent
	err    error
}

func (m *mockCounter) RecordVerification(_ context.Context, e model.VerificationEvent) error {
	m.events = append(m.events, e)
	return m.err
}

var errStoreDown = errors.New("store unreachable")
