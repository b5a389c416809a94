package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ericfisherdev/credtrust/internal/application"
	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

// IssueCredential issues a new credential.
func (h *Handler) IssueCredential(w http.ResponseWriter, r *http.Request) {
	if h.deps.Issuer == nil {
		writeUnavailable(w, "credential issuance")
		return
	}

	var req IssueCredentialRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	issueReq := application.IssueRequest{
		Title:         req.Title,
		Description:   req.Description,
		IssuerID:      req.IssuerID,
		IssuerName:    req.IssuerName,
		RecipientID:   req.RecipientID,
		RecipientName: req.RecipientName,
		Skills:        req.Skills,
		NSQFLevel:     req.NSQFLevel,
	}
	if req.ExpiryDate != nil && *req.ExpiryDate != "" {
		expiry, err := parseDate(*req.ExpiryDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid expiry_date: expected RFC 3339 or YYYY-MM-DD")
			return
		}
		issueReq.ExpiryDate = &expiry
	}

	cred, err := h.deps.Issuer.Issue(r.Context(), issueReq)
	if err != nil {
		if errors.Is(err, application.ErrInvalidIssueRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to issue credential", "recipient_id", req.RecipientID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toCredentialResponse(cred, cred.EffectiveStatus(h.now()), h.verificationURL(cred.VerificationCode)))
}

// GetCredential returns the full stored record with its effective status.
func (h *Handler) GetCredential(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	cred, err := h.deps.Store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get credential", "credential_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if cred == nil {
		writeError(w, http.StatusNotFound, "credential not found")
		return
	}

	writeJSON(w, http.StatusOK, toCredentialResponse(*cred, cred.EffectiveStatus(h.now()), h.verificationURL(cred.VerificationCode)))
}

// RevokeCredential revokes a credential. Revocation is terminal.
func (h *Handler) RevokeCredential(w http.ResponseWriter, r *http.Request) {
	if h.deps.Issuer == nil {
		writeUnavailable(w, "credential revocation")
		return
	}

	id := r.PathValue("id")
	cred, err := h.deps.Issuer.Revoke(r.Context(), id)
	switch {
	case errors.Is(err, application.ErrCredentialNotFound):
		writeError(w, http.StatusNotFound, "credential not found")
		return
	case errors.Is(err, application.ErrAlreadyRevoked):
		writeError(w, http.StatusConflict, "credential already revoked")
		return
	case errors.Is(err, application.ErrCredentialExpired):
		writeError(w, http.StatusConflict, "credential expired")
		return
	case err != nil:
		h.logger.Error("failed to revoke credential", "credential_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toCredentialResponse(cred, model.CredentialStatusRevoked, h.verificationURL(cred.VerificationCode)))
}

// CredentialStats returns recorded verification counts for a credential.
func (h *Handler) CredentialStats(w http.ResponseWriter, r *http.Request) {
	if h.deps.Stats == nil {
		writeUnavailable(w, "verification statistics")
		return
	}

	id := r.PathValue("id")
	cred, err := h.deps.Store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get credential", "credential_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if cred == nil {
		writeError(w, http.StatusNotFound, "credential not found")
		return
	}

	stats, err := h.deps.Stats.StatsForCredential(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to read verification stats", "credential_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toVerificationStatsResponse(stats))
}

// Sweep runs an expiry sweep immediately.
func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	if h.deps.Sweeper == nil {
		writeUnavailable(w, "expiry sweep")
		return
	}

	n, err := h.deps.Sweeper.SweepNow(r.Context())
	if err != nil {
		h.logger.Error("manual sweep failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, SweepResponse{Expired: n})
}

// verificationURL builds the public verification page link for code, or ""
// when no public base URL is configured.
func (h *Handler) verificationURL(code string) string {
	if h.deps.PublicBaseURL == "" || code == "" {
		return ""
	}
	return fmt.Sprintf("%s/verify/%s", h.deps.PublicBaseURL, url.PathEscape(code))
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}
