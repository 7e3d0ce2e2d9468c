// internal/engine/engine.go

// Package engine wires the eligibility, training and prediction components
// into the three operation groups the surrounding system consumes. All
// collaborators are injected through the constructor; nothing is looked up
// ambiently.
package engine

import (
	"context"

	"scholarship-engine/internal/common/config"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/engine/eligibility"
	"scholarship-engine/internal/engine/features"
	"scholarship-engine/internal/engine/prediction"
	"scholarship-engine/internal/engine/training"
	"scholarship-engine/internal/models"
)

// OutcomeSource supplies terminal-labeled historical applications per scope.
type OutcomeSource interface {
	TerminalOutcomes(ctx context.Context) ([]models.ApplicationOutcome, error)
	TerminalOutcomesForScholarship(ctx context.Context, scholarshipID string) ([]models.ApplicationOutcome, error)
}

// ModelStore is the activation/storage mechanism for trained models. The
// production implementation is modelstore.CachedStore; activation must
// atomically swap the active model for a scope.
type ModelStore interface {
	Activate(ctx context.Context, model *models.TrainedModel) error
	ActiveModel(ctx context.Context, scope models.Scope) (*models.TrainedModel, error)
	Deactivate(ctx context.Context, modelID string) error
	ListByScope(ctx context.Context, scope models.Scope) ([]models.TrainedModel, error)
}

// Engine is the facade over the core. Eligibility and prediction are
// read-only and safe for unlimited concurrent use; training is a batch
// operation invoked as an isolated unit of work.
type Engine struct {
	eligibility *eligibility.Engine
	extractor   *features.Extractor
	trainer     *training.Trainer
	store       ModelStore
	outcomes    OutcomeSource
	prediction  *prediction.Service
	logger      logger.Logger
}

func New(
	cfg config.TrainingConfig,
	store ModelStore,
	outcomes OutcomeSource,
	history prediction.HistoryProvider,
	log logger.Logger,
) *Engine {
	elig := eligibility.NewEngine(log)
	extractor := features.NewExtractor(elig)

	return &Engine{
		eligibility: elig,
		extractor:   extractor,
		trainer:     training.NewTrainer(cfg, extractor, log),
		store:       store,
		outcomes:    outcomes,
		prediction:  prediction.NewService(store, history, extractor, log),
		logger:      log,
	}
}

// CheckEligibility evaluates one applicant against one scholarship's
// criteria.
func (e *Engine) CheckEligibility(applicant models.ApplicantProfile, criteria models.ScholarshipCriteria) models.EligibilityResult {
	return e.eligibility.Check(applicant, criteria)
}

// TrainGlobalModel trains a model over all terminal applications and
// activates it, deactivating the previous global model. Scholarship-specific
// models are untouched.
func (e *Engine) TrainGlobalModel(ctx context.Context) (*models.TrainedModel, error) {
	outcomes, err := e.outcomes.TerminalOutcomes(ctx)
	if err != nil {
		return nil, err
	}
	return e.trainAndActivate(ctx, func() (*models.TrainedModel, error) {
		return e.trainer.TrainGlobal(outcomes)
	})
}

// TrainScholarshipModel trains and activates a model for one scholarship.
func (e *Engine) TrainScholarshipModel(ctx context.Context, scholarshipID string) (*models.TrainedModel, error) {
	outcomes, err := e.outcomes.TerminalOutcomesForScholarship(ctx, scholarshipID)
	if err != nil {
		return nil, err
	}
	return e.trainAndActivate(ctx, func() (*models.TrainedModel, error) {
		return e.trainer.TrainScholarship(scholarshipID, outcomes)
	})
}

func (e *Engine) trainAndActivate(ctx context.Context, train func() (*models.TrainedModel, error)) (*models.TrainedModel, error) {
	model, err := train()
	if err != nil {
		return nil, err
	}
	if err := e.store.Activate(ctx, model); err != nil {
		return nil, err
	}
	return model, nil
}

// Predict estimates the approval probability of one applicant for one
// scholarship using the active scholarship-specific model, falling back to
// the active global model.
func (e *Engine) Predict(ctx context.Context, applicant models.ApplicantProfile, criteria models.ScholarshipCriteria) (*models.PredictionResult, error) {
	return e.prediction.Predict(ctx, applicant, criteria)
}

// DeactivateModel administratively deactivates one stored model.
func (e *Engine) DeactivateModel(ctx context.Context, modelID string) error {
	return e.store.Deactivate(ctx, modelID)
}

// ListModels returns the stored models of a scope, newest first.
func (e *Engine) ListModels(ctx context.Context, scope models.Scope) ([]models.TrainedModel, error) {
	return e.store.ListByScope(ctx, scope)
}
