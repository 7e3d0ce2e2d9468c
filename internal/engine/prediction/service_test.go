// internal/engine/prediction/service_test.go
package prediction

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/engine/eligibility"
	"scholarship-engine/internal/engine/features"
	"scholarship-engine/internal/engine/training"
	"scholarship-engine/internal/models"
)

// stubModels serves active models by scope key.
type stubModels struct {
	byScope map[string]*models.TrainedModel
	err     error
}

func (s *stubModels) ActiveModel(_ context.Context, scope models.Scope) (*models.TrainedModel, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byScope[scope.Key()], nil
}

// stubHistory serves fixed history counts and records lookups.
type stubHistory struct {
	history models.ApplicantHistory
	err     error
	calls   int
}

func (s *stubHistory) ApplicantHistory(_ context.Context, _ string) (models.ApplicantHistory, error) {
	s.calls++
	if s.err != nil {
		return models.ApplicantHistory{}, s.err
	}
	return s.history, nil
}

func zeroWeightModel(id string, scope models.Scope, bias float64) *models.TrainedModel {
	weights := make(map[string]float64, len(features.Names))
	for _, name := range features.Names {
		weights[name] = 0
	}
	return &models.TrainedModel{
		ID:       id,
		Scope:    scope,
		Weights:  weights,
		Bias:     bias,
		IsActive: true,
	}
}

func newService(t *testing.T, store ModelProvider, history HistoryProvider) *Service {
	t.Helper()
	extractor := features.NewExtractor(eligibility.NewEngine(logger.NewNoOpLogger()))
	return NewService(store, history, extractor, logger.NewTestLogger(t))
}

func TestPredict_UsesScholarshipModelFirst(t *testing.T) {
	scoped := zeroWeightModel("scoped", models.ScholarshipScope("sch-1"), 0)
	global := zeroWeightModel("global", models.GlobalScope(), 0)
	store := &stubModels{byScope: map[string]*models.TrainedModel{
		"scholarship:sch-1": scoped,
		"global":            global,
	}}
	svc := newService(t, store, &stubHistory{})

	result, err := svc.Predict(context.Background(), models.ApplicantProfile{ID: "a"},
		models.ScholarshipCriteria{ScholarshipID: "sch-1"})
	require.NoError(t, err)

	assert.Equal(t, "scoped", result.ModelID)
	assert.Equal(t, "scholarship", result.ModelScope)
}

func TestPredict_FallsBackToGlobalModel(t *testing.T) {
	global := zeroWeightModel("global", models.GlobalScope(), 0)
	store := &stubModels{byScope: map[string]*models.TrainedModel{"global": global}}
	svc := newService(t, store, &stubHistory{})

	result, err := svc.Predict(context.Background(), models.ApplicantProfile{ID: "a"},
		models.ScholarshipCriteria{ScholarshipID: "sch-without-model"})
	require.NoError(t, err)

	assert.Equal(t, "global", result.ModelID)
	assert.Equal(t, "global", result.ModelScope)
}

func TestPredict_NoModelAnywhere(t *testing.T) {
	svc := newService(t, &stubModels{byScope: map[string]*models.TrainedModel{}}, &stubHistory{})

	_, err := svc.Predict(context.Background(), models.ApplicantProfile{ID: "a"},
		models.ScholarshipCriteria{ScholarshipID: "sch-1"})
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeModelUnavailable))
}

func TestPredict_HistoryAdjustment(t *testing.T) {
	global := zeroWeightModel("global", models.GlobalScope(), 0) // base 0.5
	store := &stubModels{byScope: map[string]*models.TrainedModel{"global": global}}
	history := &stubHistory{history: models.ApplicantHistory{Approvals: 3, Rejections: 1}}
	svc := newService(t, store, history)

	result, err := svc.Predict(context.Background(), models.ApplicantProfile{ID: "a"},
		models.ScholarshipCriteria{})
	require.NoError(t, err)

	// +0.02 per approval, -0.01 per rejection.
	assert.InDelta(t, 0.5, result.BaseProbability, 1e-9)
	assert.InDelta(t, 0.05, result.History.Delta, 1e-9)
	assert.InDelta(t, 0.55, result.Probability, 1e-9)
	assert.Equal(t, 3, result.History.PriorApprovals)
	assert.Equal(t, 1, result.History.PriorRejections)
	assert.True(t, result.Approved)
}

func TestPredict_HistoryFailureDegradesGracefully(t *testing.T) {
	global := zeroWeightModel("global", models.GlobalScope(), 0)
	store := &stubModels{byScope: map[string]*models.TrainedModel{"global": global}}
	history := &stubHistory{err: fmt.Errorf("connection refused")}
	svc := newService(t, store, history)

	result, err := svc.Predict(context.Background(), models.ApplicantProfile{ID: "a"},
		models.ScholarshipCriteria{})
	require.NoError(t, err)

	assert.Zero(t, result.History.Delta)
	assert.InDelta(t, result.BaseProbability, result.Probability, 1e-9)
}

func TestPredict_AnonymousApplicantSkipsHistoryLookup(t *testing.T) {
	global := zeroWeightModel("global", models.GlobalScope(), 0)
	store := &stubModels{byScope: map[string]*models.TrainedModel{"global": global}}
	history := &stubHistory{history: models.ApplicantHistory{Approvals: 10}}
	svc := newService(t, store, history)

	result, err := svc.Predict(context.Background(), models.ApplicantProfile{},
		models.ScholarshipCriteria{})
	require.NoError(t, err)

	assert.Zero(t, history.calls)
	assert.Zero(t, result.History.Delta)
}

func TestPredict_ProbabilityClamped(t *testing.T) {
	tests := []struct {
		name     string
		bias     float64
		expected float64
		approved bool
	}{
		{"high bias clamps to ceiling", 10, 0.90, true},
		{"low bias clamps to floor", -10, 0.10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			global := zeroWeightModel("global", models.GlobalScope(), tt.bias)
			store := &stubModels{byScope: map[string]*models.TrainedModel{"global": global}}
			svc := newService(t, store, &stubHistory{})

			result, err := svc.Predict(context.Background(), models.ApplicantProfile{ID: "a"},
				models.ScholarshipCriteria{})
			require.NoError(t, err)

			assert.InDelta(t, tt.expected, result.Probability, 1e-9)
			assert.Equal(t, tt.approved, result.Approved)
			// The unclamped base is still reported for transparency.
			assert.InDelta(t, training.Sigmoid(tt.bias), result.BaseProbability, 1e-9)
		})
	}
}

func TestPredict_Contributions(t *testing.T) {
	global := zeroWeightModel("global", models.GlobalScope(), 0)
	global.Weights[features.FeatureGWAScore] = 2.0
	store := &stubModels{byScope: map[string]*models.TrainedModel{"global": global}}
	svc := newService(t, store, &stubHistory{})

	// Missing GWA maps to the neutral 0.5 feature value.
	result, err := svc.Predict(context.Background(), models.ApplicantProfile{ID: "a"},
		models.ScholarshipCriteria{})
	require.NoError(t, err)

	require.Len(t, result.Contributions, len(features.Names))

	var gwa *models.FactorContribution
	for i := range result.Contributions {
		if result.Contributions[i].Feature == features.FeatureGWAScore {
			gwa = &result.Contributions[i]
		}
	}
	require.NotNil(t, gwa)
	assert.InDelta(t, 0.5, gwa.Value, 1e-9)
	assert.InDelta(t, 2.0, gwa.Weight, 1e-9)
	assert.InDelta(t, 1.0, gwa.Contribution, 1e-9)
	assert.InDelta(t, training.Sigmoid(1.0), result.BaseProbability, 1e-9)
}

func TestPredict_IncludesEligibility(t *testing.T) {
	global := zeroWeightModel("global", models.GlobalScope(), 0)
	store := &stubModels{byScope: map[string]*models.TrainedModel{"global": global}}
	svc := newService(t, store, &stubHistory{})

	maxGWA := 2.0
	result, err := svc.Predict(context.Background(), models.ApplicantProfile{ID: "a"},
		models.ScholarshipCriteria{MaxGWA: &maxGWA})
	require.NoError(t, err)

	require.NotNil(t, result.Eligibility)
	assert.False(t, result.Eligibility.Passed) // GWA missing on a required check
}

// ==========================
// Bucketing
// ==========================

func TestConfidenceBucket(t *testing.T) {
	tests := []struct {
		p        float64
		expected string
	}{
		{0.90, models.ConfidenceHigh},
		{0.80, models.ConfidenceHigh},
		{0.15, models.ConfidenceHigh},
		{0.65, models.ConfidenceMedium},
		{0.38, models.ConfidenceMedium},
		{0.55, models.ConfidenceLow},
		{0.50, models.ConfidenceLow},
		{0.45, models.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("p=%.2f", tt.p), func(t *testing.T) {
			assert.Equal(t, tt.expected, confidenceBucket(tt.p))
		})
	}
}

func TestRecommendationTier(t *testing.T) {
	tests := []struct {
		p        float64
		expected string
	}{
		{0.90, models.RecommendationStrong},
		{0.75, models.RecommendationStrong},
		{0.70, models.RecommendationGood},
		{0.60, models.RecommendationGood},
		{0.50, models.RecommendationModerate},
		{0.45, models.RecommendationModerate},
		{0.35, models.RecommendationWeak},
		{0.30, models.RecommendationWeak},
		{0.10, models.RecommendationPoor},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("p=%.2f", tt.p), func(t *testing.T) {
			assert.Equal(t, tt.expected, recommendationTier(tt.p))
		})
	}
}

func TestClampProbability(t *testing.T) {
	assert.Equal(t, 0.10, clampProbability(0.01))
	assert.Equal(t, 0.90, clampProbability(0.99))
	assert.Equal(t, 0.55, clampProbability(0.55))
}
