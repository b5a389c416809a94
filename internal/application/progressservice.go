package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
	"github.com/ericfisherdev/credtrust/internal/domain/port/driven"
)

// ProgressService fetches a learner's credentials and derives skill ratings
// and NSQF progress from the snapshot. Aggregation itself is pure; this
// service owns the fetch and the anomaly logging.
type ProgressService struct {
	store  driven.CredentialReader
	now    func() time.Time
	logger *slog.Logger
}

// NewProgressService creates a ProgressService.
func NewProgressService(store driven.CredentialReader, logger *slog.Logger) *ProgressService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressService{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source.
func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	s.now = now
	return s
}

// SkillRatingsForLearner returns the ranked skill ratings for a learner.
func (s *ProgressService) SkillRatingsForLearner(ctx context.Context, learnerID string) ([]model.SkillRating, error) {
	creds, err := s.fetch(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	ratings, anomalies := ComputeSkillRatingsReport(creds, s.now())
	s.logAnomalies(learnerID, "skill_ratings", anomalies)
	return ratings, nil
}

// NSQFProgressForLearner returns the learner's NSQF framework progress.
func (s *ProgressService) NSQFProgressForLearner(ctx context.Context, learnerID string) (model.NSQFProgress, error) {
	creds, err := s.fetch(ctx, learnerID)
	if err != nil {
		return model.NSQFProgress{}, err
	}

	progress := ComputeNSQFProgress(creds, s.now())
	s.logAnomalies(learnerID, "nsqf_progress", progress.Anomalies)
	return progress, nil
}

func (s *ProgressService) fetch(ctx context.Context, learnerID string) ([]model.Credential, error) {
	creds, err := s.store.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list credentials for learner %q: %w", learnerID, err)
	}
	return creds, nil
}

func (s *ProgressService) logAnomalies(learnerID, report string, anomalies []model.DataAnomaly) {
	for _, a := range anomalies {
		s.logger.Warn("credential excluded from aggregation",
			"learner_id", learnerID,
			"report", report,
			"credential_id", a.CredentialID,
			"kind", a.Kind,
			"detail", a.Detail,
		)
	}
}
