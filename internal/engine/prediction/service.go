// internal/engine/prediction/service.go

// Package prediction selects the appropriate trained model for a scholarship,
// computes the approval probability from the applicant's feature vector and
// adjusts it for the applicant's own application history.
package prediction

import (
	"context"
	"time"

	"scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/common/metrics"
	"scholarship-engine/internal/engine/features"
	"scholarship-engine/internal/engine/training"
	"scholarship-engine/internal/models"
)

// History-adjustment constants: each prior approval nudges the probability
// up, each prior rejection nudges it down, and the result is clamped so the
// engine never claims certainty.
const (
	approvalNudge  = 0.02
	rejectionNudge = 0.01
	probabilityMin = 0.10
	probabilityMax = 0.90
)

// ModelProvider supplies the active model for a scope. Absence is signalled
// with a nil model, not an error.
type ModelProvider interface {
	ActiveModel(ctx context.Context, scope models.Scope) (*models.TrainedModel, error)
}

// HistoryProvider supplies an applicant's prior terminal outcome counts.
type HistoryProvider interface {
	ApplicantHistory(ctx context.Context, applicantID string) (models.ApplicantHistory, error)
}

// Service is the prediction entry point. It is read-only and safe for
// unlimited concurrent use.
type Service struct {
	store     ModelProvider
	history   HistoryProvider
	extractor *features.Extractor
	logger    logger.Logger
}

func NewService(store ModelProvider, history HistoryProvider, extractor *features.Extractor, log logger.Logger) *Service {
	return &Service{
		store:     store,
		history:   history,
		extractor: extractor,
		logger:    log.WithFields(map[string]interface{}{"component": "prediction"}),
	}
}

// Predict estimates the approval probability of one applicant for one
// scholarship. Model selection is two-tier: the scholarship's own active
// model when it has one, otherwise the active global model; with neither the
// prediction fails rather than inventing a probability.
func (s *Service) Predict(ctx context.Context, applicant models.ApplicantProfile, criteria models.ScholarshipCriteria) (*models.PredictionResult, error) {
	start := time.Now()

	model, err := s.selectModel(ctx, criteria.ScholarshipID)
	if err != nil {
		return nil, err
	}

	vector, elig := s.extractor.Extract(applicant, criteria, nil)

	z := model.Bias
	contributions := make([]models.FactorContribution, 0, len(features.Names))
	for _, name := range features.Names {
		weight := model.Weights[name]
		value := vector[name]
		z += weight * value
		contributions = append(contributions, models.FactorContribution{
			Feature:      name,
			Value:        value,
			Weight:       weight,
			Contribution: weight * value,
		})
	}

	base := training.Sigmoid(z)

	history := s.lookupHistory(ctx, applicant.ID)
	delta := approvalNudge*float64(history.Approvals) - rejectionNudge*float64(history.Rejections)
	probability := clampProbability(base + delta)

	result := &models.PredictionResult{
		Probability:     probability,
		BaseProbability: base,
		Approved:        probability >= 0.5,
		Confidence:      confidenceBucket(probability),
		Recommendation:  recommendationTier(probability),
		ModelID:         model.ID,
		ModelScope:      scopeLabel(model.Scope),
		Contributions:   contributions,
		History: models.HistoryAdjustment{
			PriorApprovals:  history.Approvals,
			PriorRejections: history.Rejections,
			Delta:           delta,
		},
		Eligibility: &elig,
	}

	metrics.PredictionsTotal.WithLabelValues(result.ModelScope).Inc()
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	s.logger.Debug("prediction computed", map[string]interface{}{
		"applicantId":   applicant.ID,
		"scholarshipId": criteria.ScholarshipID,
		"modelScope":    result.ModelScope,
		"probability":   result.Probability,
		"confidence":    result.Confidence,
	})

	return result, nil
}

// selectModel implements the two-tier fallback: scholarship-specific first,
// then global.
func (s *Service) selectModel(ctx context.Context, scholarshipID string) (*models.TrainedModel, error) {
	if scholarshipID != "" {
		model, err := s.store.ActiveModel(ctx, models.ScholarshipScope(scholarshipID))
		if err != nil {
			return nil, err
		}
		if model != nil {
			return model, nil
		}
	}

	model, err := s.store.ActiveModel(ctx, models.GlobalScope())
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, errors.NewModelUnavailableError(scholarshipID)
	}
	return model, nil
}

// lookupHistory degrades to an empty history on storage failure; the
// adjustment is an enhancement, not a requirement for answering.
func (s *Service) lookupHistory(ctx context.Context, applicantID string) models.ApplicantHistory {
	if applicantID == "" {
		return models.ApplicantHistory{}
	}

	history, err := s.history.ApplicantHistory(ctx, applicantID)
	if err != nil {
		s.logger.Warn("applicant history unavailable", map[string]interface{}{
			"applicantId": applicantID,
			"error":       err,
		})
		return models.ApplicantHistory{}
	}
	return history
}

func clampProbability(p float64) float64 {
	if p < probabilityMin {
		return probabilityMin
	}
	if p > probabilityMax {
		return probabilityMax
	}
	return p
}

func confidenceBucket(p float64) string {
	distance := p - 0.5
	if distance < 0 {
		distance = -distance
	}
	switch {
	case distance >= 0.30:
		return models.ConfidenceHigh
	case distance >= 0.10:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func recommendationTier(p float64) string {
	switch {
	case p >= 0.75:
		return models.RecommendationStrong
	case p >= 0.60:
		return models.RecommendationGood
	case p >= 0.45:
		return models.RecommendationModerate
	case p >= 0.30:
		return models.RecommendationWeak
	default:
		return models.RecommendationPoor
	}
}

func scopeLabel(scope models.Scope) string {
	if scope.IsGlobal() {
		return "global"
	}
	return "scholarship"
}
