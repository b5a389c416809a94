// Package httphandler implements the JSON REST API driving adapter.
package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/credtrust/internal/application"
	"github.com/ericfisherdev/credtrust/internal/domain/model"
	"github.com/ericfisherdev/credtrust/internal/domain/port/driven"
)

const maxBodyBytes = 64 << 10

// Pinger reports whether the credential store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries the Handler's collaborators. Issuer, Sweeper, Stats, and
// Pinger are optional; endpoints that need a missing one answer 503.
type Deps struct {
	Store    driven.CredentialReader
	Verifier *application.VerificationService
	Progress *application.ProgressService
	Issuer   *application.IssuanceService
	Sweeper  *application.SweepService
	Stats    driven.VerificationStatsReader
	Pinger   Pinger

	// StoreKind names the active credential store in health output.
	StoreKind string
	// PublicBaseURL prefixes verification links handed back to issuers.
	PublicBaseURL string
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	deps   Deps
	now    func() time.Time
	logger *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(deps Deps, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	deps.PublicBaseURL = strings.TrimRight(deps.PublicBaseURL, "/")
	return &Handler{deps: deps, now: time.Now, logger: logger}
}

// RegisterAPIRoutes registers every /api/v1 route on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("POST /api/v1/verify", h.Verify)
	mux.HandleFunc("GET /api/v1/verify/{method}", h.VerifyPath)
	mux.HandleFunc("GET /api/v1/verify/{method}/{value...}", h.VerifyPath)

	mux.HandleFunc("GET /api/v1/learners/{id}/skills", h.LearnerSkills)
	mux.HandleFunc("GET /api/v1/learners/{id}/nsqf", h.LearnerNSQF)
	mux.HandleFunc("GET /api/v1/nsqf/levels", h.NSQFLevels)

	mux.HandleFunc("POST /api/v1/credentials", h.IssueCredential)
	mux.HandleFunc("GET /api/v1/credentials/{id}", h.GetCredential)
	mux.HandleFunc("POST /api/v1/credentials/{id}/revoke", h.RevokeCredential)
	mux.HandleFunc("GET /api/v1/credentials/{id}/stats", h.CredentialStats)

	mux.HandleFunc("POST /api/v1/admin/sweep", h.Sweep)
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with the standard middleware. Used by tests and API-only setups.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger, nil)
}

// Health reports liveness and, when a Pinger is configured, store reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Store:  h.deps.StoreKind,
		Time:   h.now().UTC().Format(time.RFC3339),
	}

	if h.deps.Pinger != nil {
		if err := h.deps.Pinger.Ping(r.Context()); err != nil {
			h.logger.Warn("health check failed", "error", err)
			resp.Status = "degraded"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// NSQFLevels returns the fixed ten-level NSQF catalog.
func (h *Handler) NSQFLevels(w http.ResponseWriter, _ *http.Request) {
	resp := make([]NSQFCatalogEntryResponse, 0, len(model.NSQFCatalog))
	for _, l := range model.NSQFCatalog {
		resp = append(resp, NSQFCatalogEntryResponse{Level: l.Level, Name: l.Name, Description: l.Description})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeUnavailable(w http.ResponseWriter, feature string) {
	writeError(w, http.StatusServiceUnavailable, feature+" is unavailable on a read-only credential store")
}
