package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// VerifyRequest is the JSON body for POST /api/v1/verify.
type VerifyRequest struct {
	Method string `json:"method"`
	Value  string `json:"value"`
}

// VerificationResponse is the JSON representation of a verification result.
type VerificationResponse struct {
	IsValid         bool                        `json:"is_valid"`
	Reason          string                      `json:"reason,omitempty"`
	Method          string                      `json:"method,omitempty"`
	EffectiveStatus string                      `json:"effective_status,omitempty"`
	VerifiedAt      string                      `json:"verified_at"`
	Credential      *CredentialSnapshotResponse `json:"credential"`
}

// CredentialSnapshotResponse is the public view of a verified credential.
type CredentialSnapshotResponse struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	IssuerName       string   `json:"issuer_name"`
	RecipientName    string   `json:"recipient_name"`
	IssueDate        string   `json:"issue_date"`
	ExpiryDate       *string  `json:"expiry_date"`
	Status           string   `json:"status"`
	VerificationCode string   `json:"verification_code"`
	Skills           []string `json:"skills"`
	NSQFLevel        int      `json:"nsqf_level"`
}

// CredentialResponse is the full stored record returned to issuers.
type CredentialResponse struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	IssuerID         string   `json:"issuer_id"`
	IssuerName       string   `json:"issuer_name"`
	RecipientID      string   `json:"recipient_id"`
	RecipientName    string   `json:"recipient_name"`
	IssueDate        string   `json:"issue_date"`
	ExpiryDate       *string  `json:"expiry_date"`
	Status           string   `json:"status"`
	EffectiveStatus  string   `json:"effective_status,omitempty"`
	VerificationCode string   `json:"verification_code"`
	VerificationHash string   `json:"verification_hash"`
	VerificationURL  string   `json:"verification_url,omitempty"`
	Skills           []string `json:"skills"`
	NSQFLevel        *int     `json:"nsqf_level"`
}

// IssueCredentialRequest is the JSON body for POST /api/v1/credentials.
type IssueCredentialRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	IssuerID      string   `json:"issuer_id"`
	IssuerName    string   `json:"issuer_name"`
	RecipientID   string   `json:"recipient_id"`
	RecipientName string   `json:"recipient_name"`
	ExpiryDate    *string  `json:"expiry_date"`
	Skills        []string `json:"skills"`
	NSQFLevel     *int     `json:"nsqf_level"`
}

// SkillRatingResponse is the JSON representation of one skill rating.
type SkillRatingResponse struct {
	Skill                   string   `json:"skill"`
	Stars                   int      `json:"stars"`
	CredentialCount         int      `json:"credential_count"`
	MaxNSQFLevel            int      `json:"max_nsqf_level"`
	ContributingCredentials []string `json:"contributing_credentials"`
}

// NSQFLevelResponse is one catalog entry, optionally with the learner's progress.
type NSQFLevelResponse struct {
	Level         int      `json:"level"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	AchievedCount int      `json:"achieved_count"`
	SkillsAtLevel []string `json:"skills_at_level"`
}

// NSQFProgressResponse is the JSON representation of a learner's NSQF progress.
type NSQFProgressResponse struct {
	LearnerID            string              `json:"learner_id"`
	Levels               []NSQFLevelResponse `json:"levels"`
	HighestAchievedLevel int                 `json:"highest_achieved_level"`
	NextTarget           int                 `json:"next_target"`
	MaxLevelReached      bool                `json:"max_level_reached"`
	ExcludedCredentials  int                 `json:"excluded_credentials"`
}

// VerificationStatsResponse is the JSON representation of recorded verification counts.
type VerificationStatsResponse struct {
	CredentialID string         `json:"credential_id"`
	Total        int            `json:"total"`
	ByOutcome    map[string]int `json:"by_outcome"`
	ByMethod     map[string]int `json:"by_method"`
	LastVerified *string        `json:"last_verified"`
}

// SweepResponse reports the result of a manual expiry sweep.
type SweepResponse struct {
	Expired int64 `json:"expired"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Time   string `json:"time"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// toVerificationResponse converts a domain VerificationResult to its JSON representation.
func toVerificationResponse(res model.VerificationResult) VerificationResponse {
	resp := VerificationResponse{
		IsValid:         res.IsValid,
		Reason:          string(res.Reason),
		Method:          string(res.Method),
		EffectiveStatus: string(res.EffectiveStatus),
		VerifiedAt:      formatTime(res.VerifiedAt),
	}
	if s := res.Credential; s != nil {
		resp.Credential = &CredentialSnapshotResponse{
			ID:               s.ID,
			Title:            s.Title,
			Description:      s.Description,
			IssuerName:       s.IssuerName,
			RecipientName:    s.RecipientName,
			IssueDate:        formatTime(s.IssueDate),
			ExpiryDate:       formatOptionalTime(s.ExpiryDate),
			Status:           string(s.Status),
			VerificationCode: s.VerificationCode,
			Skills:           nonNilStrings(s.Skills),
			NSQFLevel:        s.NSQFLevel,
		}
	}
	return resp
}

// toCredentialResponse converts a stored credential to its JSON representation.
// effective may be empty when the caller has not evaluated the lifecycle.
func toCredentialResponse(c model.Credential, effective model.CredentialStatus, verifyURL string) CredentialResponse {
	return CredentialResponse{
		ID:               c.ID,
		Title:            c.Title,
		Description:      c.Description,
		IssuerID:         c.IssuerID,
		IssuerName:       c.IssuerName,
		RecipientID:      c.RecipientID,
		RecipientName:    c.RecipientName,
		IssueDate:        formatTime(c.IssueDate),
		ExpiryDate:       formatOptionalTime(c.ExpiryDate),
		Status:           string(c.Status),
		EffectiveStatus:  string(effective),
		VerificationCode: c.VerificationCode,
		VerificationHash: c.VerificationHash,
		VerificationURL:  verifyURL,
		Skills:           nonNilStrings(c.Skills),
		NSQFLevel:        c.NSQFLevel,
	}
}

// toSkillRatingResponse converts a domain SkillRating to its JSON representation.
func toSkillRatingResponse(r model.SkillRating) SkillRatingResponse {
	return SkillRatingResponse{
		Skill:                   r.Skill,
		Stars:                   r.Stars,
		CredentialCount:         r.CredentialCount,
		MaxNSQFLevel:            r.MaxNSQFLevel,
		ContributingCredentials: nonNilStrings(r.ContributingCredentials),
	}
}

// toNSQFProgressResponse converts domain NSQF progress to its JSON representation.
func toNSQFProgressResponse(learnerID string, p model.NSQFProgress) NSQFProgressResponse {
	levels := make([]NSQFLevelResponse, 0, len(p.Levels))
	for _, l := range p.Levels {
		levels = append(levels, NSQFLevelResponse{
			Level:         l.Level,
			Name:          l.Name,
			Description:   l.Description,
			AchievedCount: l.AchievedCount,
			SkillsAtLevel: nonNilStrings(l.SkillsAtLevel),
		})
	}

	return NSQFProgressResponse{
		LearnerID:            learnerID,
		Levels:               levels,
		HighestAchievedLevel: p.HighestAchievedLevel,
		NextTarget:           p.NextTarget,
		MaxLevelReached:      p.MaxLevelReached,
		ExcludedCredentials:  len(p.Anomalies),
	}
}

// toVerificationStatsResponse converts domain stats to their JSON representation.
func toVerificationStatsResponse(s model.VerificationStats) VerificationStatsResponse {
	byMethod := make(map[string]int, len(s.ByMethod))
	for m, n := range s.ByMethod {
		byMethod[string(m)] = n
	}
	byOutcome := s.ByOutcome
	if byOutcome == nil {
		byOutcome = map[string]int{}
	}

	return VerificationStatsResponse{
		CredentialID: s.CredentialID,
		Total:        s.Total,
		ByOutcome:    byOutcome,
		ByMethod:     byMethod,
		LastVerified: formatOptionalTime(s.LastVerified),
	}
}

// SkillRatingsResponse is the JSON representation of a learner's skill ratings.
type SkillRatingsResponse struct {
	LearnerID string                `json:"learner_id"`
	Skills    []SkillRatingResponse `json:"skills"`
}

// NSQFCatalogEntryResponse is one entry of the fixed NSQF level catalog.
type NSQFCatalogEntryResponse struct {
	Level       int    `json:"level"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
