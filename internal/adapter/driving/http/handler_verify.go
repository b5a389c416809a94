package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

// Verify resolves a verification request given as a JSON body.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeInvalidInput(w, "")
		return
	}

	h.verify(w, r, req.Method, req.Value)
}

// VerifyPath resolves a verification request given in the path. The value
// may also come from the "value" query parameter, which is the only safe
// carrier for full URLs.
func (h *Handler) VerifyPath(w http.ResponseWriter, r *http.Request) {
	value := r.PathValue("value")
	if value == "" {
		value = r.URL.Query().Get("value")
	}

	h.verify(w, r, r.PathValue("method"), value)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request, method, value string) {
	input, err := model.NewVerificationInput(method, value)
	if err != nil {
		h.writeInvalidInput(w, "")
		return
	}

	res, err := h.deps.Verifier.Verify(r.Context(), input)
	if err != nil {
		h.logger.Error("verification failed", "method", input.Method(), "error", err)
		writeError(w, http.StatusInternalServerError, "verification temporarily unavailable")
		return
	}

	status := http.StatusOK
	if res.Reason == model.ReasonInvalidInput {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, toVerificationResponse(res))
}

// writeInvalidInput answers 400 with the verification body shape.
func (h *Handler) writeInvalidInput(w http.ResponseWriter, method model.VerificationMethod) {
	writeJSON(w, http.StatusBadRequest, toVerificationResponse(model.VerificationResult{
		Reason:     model.ReasonInvalidInput,
		Method:     method,
		VerifiedAt: h.now(),
	}))
}
