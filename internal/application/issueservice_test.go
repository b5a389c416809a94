package application_test

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/credtrust/internal/application"
	"github.com/ericfisherdev/credtrust/internal/domain/model"
	"github.com/ericfisherdev/credtrust/internal/domain/port/driven"
)

func sequenceCodes(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		code := codes[i%len(codes)]
		i++
		return code, nil
	}
}

func validRequest() application.IssueRequest {
	return application.IssueRequest{
		Title:         "  Data Analytics Fundamentals ",
		Description:   "Intro to **SQL** and dashboards",
		IssuerID:      "issuer-1",
		IssuerName:    "Skill Academy",
		RecipientID:   "learner-1",
		RecipientName: "Asha Rao",
		Skills:        []string{"SQL", " Tableau ", "SQL", ""},
		NSQFLevel:     ptrInt(5),
	}
}

func TestIssue_PersistsSealedCredential(t *testing.T) {
	store := &mockCredentialStore{}
	svc := application.NewIssuanceService(store, slog.Default()).
		WithClock(fixedClock).
		WithCodeGenerator(sequenceCodes("AB12CD34"))

	cred, err := svc.Issue(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Equal(t, cred, store.created[0])

	_, err = uuid.Parse(cred.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Data Analytics Fundamentals", cred.Title)
	assert.Equal(t, testNow, cred.IssueDate)
	assert.Equal(t, model.CredentialStatusIssued, cred.Status)
	assert.Equal(t, "AB12CD34", cred.VerificationCode)
	assert.Equal(t, []string{"SQL", "Tableau"}, cred.Skills)
	assert.Equal(t, 5, cred.Level())
	assert.True(t, cred.HashMatches())
	assert.NoError(t, cred.Validate())
}

func TestIssue_RetriesOnCodeCollision(t *testing.T) {
	store := &mockCredentialStore{createErrs: []error{driven.ErrDuplicateCode, driven.ErrDuplicateCode}}
	svc := application.NewIssuanceService(store, slog.Default()).
		WithClock(fixedClock).
		WithCodeGenerator(sequenceCodes("TAKEN001", "TAKEN002", "FREE0003"))

	cred, err := svc.Issue(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "FREE0003", cred.VerificationCode)
	assert.True(t, cred.HashMatches())
}

func TestIssue_GivesUpAfterRepeatedCollisions(t *testing.T) {
	errs := make([]error, 10)
	for i := range errs {
		errs[i] = driven.ErrDuplicateCode
	}
	store := &mockCredentialStore{createErrs: errs}
	svc := application.NewIssuanceService(store, slog.Default()).WithCodeGenerator(sequenceCodes("SAMECODE"))

	_, err := svc.Issue(context.Background(), validRequest())

	require.Error(t, err)
	assert.Empty(t, store.created)
	assert.Len(t, store.createErrs, 5)
}

func TestIssue_StoreFailure(t *testing.T) {
	store := &mockCredentialStore{createErrs: []error{errStoreDown}}
	svc := application.NewIssuanceService(store, slog.Default())

	_, err := svc.Issue(context.Background(), validRequest())

	assert.ErrorIs(t, err, errStoreDown)
}

func TestIssue_RejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *application.IssueRequest)
	}{
		{name: "missing title", mutate: func(r *application.IssueRequest) { r.Title = " " }},
		{name: "missing issuer", mutate: func(r *application.IssueRequest) { r.IssuerID = "" }},
		{name: "missing recipient", mutate: func(r *application.IssueRequest) { r.RecipientID = "" }},
		{name: "expiry in the past", mutate: func(r *application.IssueRequest) { r.ExpiryDate = ptrTime(testNow.AddDate(0, 0, -1)) }},
		{name: "expiry equals issue", mutate: func(r *application.IssueRequest) { r.ExpiryDate = ptrTime(testNow) }},
		{name: "level zero", mutate: func(r *application.IssueRequest) { r.NSQFLevel = ptrInt(0) }},
		{name: "level eleven", mutate: func(r *application.IssueRequest) { r.NSQFLevel = ptrInt(11) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockCredentialStore{}
			svc := application.NewIssuanceService(store, slog.Default()).WithClock(fixedClock)
			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Issue(context.Background(), req)

			assert.ErrorIs(t, err, application.ErrInvalidIssueRequest)
			assert.Empty(t, store.created)
		})
	}
}

func TestGenerateVerificationCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	seen := make(map[string]bool)
	for range 50 {
		code, err := application.GenerateVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestGet(t *testing.T) {
	store := &mockCredentialStore{creds: []model.Credential{
		newCred("live"),
		newCred("old", withExpiry(testNow.AddDate(0, 0, -1))),
	}}
	svc := application.NewIssuanceService(store, slog.Default()).WithClock(fixedClock)

	cred, status, err := svc.Get(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, "live", cred.ID)
	assert.Equal(t, model.CredentialStatusIssued, status)

	_, status, err = svc.Get(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, model.CredentialStatusExpired, status)

	_, _, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, application.ErrCredentialNotFound)
}

func TestRevoke(t *testing.T) {
	t.Run("issued becomes revoked", func(t *testing.T) {
		store := &mockCredentialStore{creds: []model.Credential{newCred("c1")}}
		svc := application.NewIssuanceService(store, slog.Default())

		cred, err := svc.Revoke(context.Background(), "c1")

		require.NoError(t, err)
		assert.Equal(t, model.CredentialStatusRevoked, cred.Status)
		assert.Equal(t, model.CredentialStatusRevoked, store.statusCalls["c1"])
		assert.True(t, cred.HashMatches(), "status is not part of the fingerprint")
	})

	t.Run("expired is terminal", func(t *testing.T) {
		tests := []struct {
			name string
			cred model.Credential
		}{
			{name: "stored expired", cred: newCred("c1", withStatus(model.CredentialStatusExpired))},
			{name: "past expiry before sweep", cred: newCred("c1", withExpiry(testNow.AddDate(0, -1, 0)))},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := &mockCredentialStore{creds: []model.Credential{tt.cred}}
				svc := application.NewIssuanceService(store, slog.Default()).WithClock(fixedClock)

				_, err := svc.Revoke(context.Background(), "c1")

				assert.ErrorIs(t, err, application.ErrCredentialExpired)
				assert.Empty(t, store.statusCalls)
			})
		}
	})

	t.Run("concurrent revoke loses", func(t *testing.T) {
		store := &mockCredentialStore{
			creds:       []model.Credential{newCred("c1")},
			racedStatus: model.CredentialStatusRevoked,
		}
		svc := application.NewIssuanceService(store, slog.Default()).WithClock(fixedClock)

		_, err := svc.Revoke(context.Background(), "c1")

		assert.ErrorIs(t, err, application.ErrAlreadyRevoked)
		assert.Empty(t, store.statusCalls)
	})

	t.Run("sweep wins the race", func(t *testing.T) {
		store := &mockCredentialStore{
			creds:       []model.Credential{newCred("c1")},
			racedStatus: model.CredentialStatusExpired,
		}
		svc := application.NewIssuanceService(store, slog.Default()).WithClock(fixedClock)

		_, err := svc.Revoke(context.Background(), "c1")

		assert.ErrorIs(t, err, application.ErrCredentialExpired)
	})

	t.Run("already revoked", func(t *testing.T) {
		store := &mockCredentialStore{creds: []model.Credential{newCred("c1", withStatus(model.CredentialStatusRevoked))}}
		svc := application.NewIssuanceService(store, slog.Default())

		_, err := svc.Revoke(context.Background(), "c1")

		assert.ErrorIs(t, err, application.ErrAlreadyRevoked)
		assert.Empty(t, store.statusCalls)
	})

	t.Run("missing", func(t *testing.T) {
		svc := application.NewIssuanceService(&mockCredentialStore{}, slog.Default())

		_, err := svc.Revoke(context.Background(), "nope")

		assert.ErrorIs(t, err, application.ErrCredentialNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		svc := application.NewIssuanceService(&mockCredentialStore{err: errStoreDown}, slog.Default())

		_, err := svc.Revoke(context.Background(), "c1")

		assert.True(t, errors.Is(err, errStoreDown))
	})
}
