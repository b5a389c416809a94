package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

func TestRecorder_RecordVerification(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	require.NoError(t, r.RecordVerification(ctx, model.VerificationEvent{Method: model.VerificationMethodCode, Outcome: "valid"}))
	require.NoError(t, r.RecordVerification(ctx, model.VerificationEvent{Method: model.VerificationMethodCode, Outcome: "valid"}))
	require.NoError(t, r.RecordVerification(ctx, model.VerificationEvent{Method: model.VerificationMethodHash, Outcome: "tampered"}))
	require.NoError(t, r.RecordVerification(ctx, model.VerificationEvent{Outcome: "invalid_input"}))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.verifications.WithLabelValues("code", "valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.verifications.WithLabelValues("hash", "tampered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.verifications.WithLabelValues("unknown", "invalid_input")))
}

func TestRecorder_RecordSweep(t *testing.T) {
	r := NewRecorder()

	r.RecordSweep(0)
	r.RecordSweep(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.sweepRuns))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.sweepExpired))
}

func TestRecorder_ObserveHTTPRequest(t *testing.T) {
	r := NewRecorder()

	r.ObserveHTTPRequest(http.MethodGet, "GET /api/v1/health", http.StatusOK, 3*time.Millisecond)
	r.ObserveHTTPRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("GET", "GET /api/v1/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.RecordVerification(context.Background(), model.VerificationEvent{Method: model.VerificationMethodURL, Outcome: "not_found"}))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `credtrust_verifications_total{method="url",outcome="not_found"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRecorders_AreIndependent(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	require.NoError(t, a.RecordVerification(context.Background(), model.VerificationEvent{Method: model.VerificationMethodCode, Outcome: "valid"}))

	assert.Equal(t, 0.0, testutil.ToFloat64(b.verifications.WithLabelValues("code", "valid")))
}
