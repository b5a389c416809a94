// Package web implements the public HTML verification page using templ components.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/credtrust/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/credtrust/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/credtrust/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

//go:generate go tool templ generate -path templates

const pageTitle = "Verify a credential | CredTrust"

// Verifier resolves verification input to a trust decision.
type Verifier interface {
	Verify(ctx context.Context, input model.VerificationInput) (model.VerificationResult, error)
}

// Handler is the web driving adapter that serves the verification pages.
type Handler struct {
	verifier Verifier
	logger   *slog.Logger
}

// NewHandler creates a Handler backed by verifier.
func NewHandler(verifier Verifier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{verifier: verifier, logger: logger}
}

// Index sends visitors to the verification form.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/verify", http.StatusSeeOther)
}

// VerifyForm renders the empty verification form.
func (h *Handler) VerifyForm(w http.ResponseWriter, r *http.Request) {
	page := vm.VerifyPageViewModel{
		Form: toVerifyFormViewModel(r.URL.Query().Get("method"), r.URL.Query().Get("value"), csrfToken(w, r)),
	}
	h.render(w, r, http.StatusOK, page)
}

// VerifySubmit handles the form post.
func (h *Handler) VerifySubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 16<<10)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !validateCSRF(r) {
		h.logger.Warn("rejected verification form without valid csrf token", "remote_addr", r.RemoteAddr)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	method := r.PostFormValue("method")
	value := r.PostFormValue("value")
	form := toVerifyFormViewModel(method, value, csrfToken(w, r))

	input, err := model.NewVerificationInput(method, value)
	if err != nil {
		page := vm.VerifyPageViewModel{Form: form, Notice: "Choose code, link, or hash."}
		h.render(w, r, http.StatusBadRequest, page)
		return
	}

	h.verifyAndRender(w, r, form, input)
}

// VerifyCode verifies the code in the path. This is the target of printed
// and shared verification links.
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	form := toVerifyFormViewModel(string(model.VerificationMethodCode), code, csrfToken(w, r))
	h.verifyAndRender(w, r, form, model.CodeInput{Code: code})
}

func (h *Handler) verifyAndRender(w http.ResponseWriter, r *http.Request, form vm.VerifyFormViewModel, input model.VerificationInput) {
	res, err := h.verifier.Verify(r.Context(), input)
	if err != nil {
		h.logger.Error("verification failed", "method", input.Method(), "error", err)
		page := vm.VerifyPageViewModel{Form: form, Notice: "Verification is temporarily unavailable. Please try again shortly."}
		h.render(w, r, http.StatusServiceUnavailable, page)
		return
	}

	status := http.StatusOK
	if res.Reason == model.ReasonInvalidInput {
		status = http.StatusBadRequest
	}
	result := toVerificationResultViewModel(res)
	h.render(w, r, status, vm.VerifyPageViewModel{Form: form, Result: &result})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page vm.VerifyPageViewModel) {
	layout := templates.Layout(pageTitle, pages.Verify(page))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render verification page", "error", err)
	}
}
