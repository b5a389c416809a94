package httphandler

import (
	"net/http"
	"strings"
)

// LearnerSkills returns the learner's star-rated skills.
func (h *Handler) LearnerSkills(w http.ResponseWriter, r *http.Request) {
	learnerID := strings.TrimSpace(r.PathValue("id"))
	if learnerID == "" {
		writeError(w, http.StatusBadRequest, "learner id is required")
		return
	}

	ratings, err := h.deps.Progress.SkillRatingsForLearner(r.Context(), learnerID)
	if err != nil {
		h.logger.Error("failed to compute skill ratings", "learner_id", learnerID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := SkillRatingsResponse{
		LearnerID: learnerID,
		Skills:    make([]SkillRatingResponse, 0, len(ratings)),
	}
	for _, rating := range ratings {
		resp.Skills = append(resp.Skills, toSkillRatingResponse(rating))
	}

	writeJSON(w, http.StatusOK, resp)
}

// LearnerNSQF returns the learner's progress across the NSQF levels.
func (h *Handler) LearnerNSQF(w http.ResponseWriter, r *http.Request) {
	learnerID := strings.TrimSpace(r.PathValue("id"))
	if learnerID == "" {
		writeError(w, http.StatusBadRequest, "learner id is required")
		return
	}

	progress, err := h.deps.Progress.NSQFProgressForLearner(r.Context(), learnerID)
	if err != nil {
		h.logger.Error("failed to compute NSQF progress", "learner_id", learnerID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toNSQFProgressResponse(learnerID, progress))
}
