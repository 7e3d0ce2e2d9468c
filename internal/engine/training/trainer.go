// internal/engine/training/trainer.go

// Package training implements the mini-batch gradient-descent logistic
// regression trainer with class weighting, L2 regularization, early stopping
// and k-fold cross-validation. Training runs are deterministic: a fresh PRNG
// is seeded at the start of every run and threaded through every shuffle, so
// identical data and configuration produce bit-identical weights.
package training

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"scholarship-engine/internal/common/config"
	stderrors "scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/common/metrics"
	"scholarship-engine/internal/engine/features"
	"scholarship-engine/internal/models"
)

// Sample is one labeled training example.
type Sample struct {
	Features features.Vector
	Label    float64 // 1 approved, 0 rejected
}

// Trainer builds models from historical application outcomes.
type Trainer struct {
	cfg       config.TrainingConfig
	extractor *features.Extractor
	logger    logger.Logger
}

func NewTrainer(cfg config.TrainingConfig, extractor *features.Extractor, log logger.Logger) *Trainer {
	config.ApplyTrainingDefaults(&cfg)
	return &Trainer{
		cfg:       cfg,
		extractor: extractor,
		logger:    log.WithFields(map[string]interface{}{"component": "training"}),
	}
}

// TrainGlobal trains a model over all terminal outcomes across scholarships.
func (t *Trainer) TrainGlobal(outcomes []models.ApplicationOutcome) (*models.TrainedModel, error) {
	return t.train(models.GlobalScope(), outcomes, t.cfg.MinSamplesGlobal)
}

// TrainScholarship trains a model over the terminal outcomes of one
// scholarship only.
func (t *Trainer) TrainScholarship(scholarshipID string, outcomes []models.ApplicationOutcome) (*models.TrainedModel, error) {
	scoped := make([]models.ApplicationOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.ScholarshipID == scholarshipID {
			scoped = append(scoped, o)
		}
	}
	return t.train(models.ScholarshipScope(scholarshipID), scoped, t.cfg.MinSamplesScoped)
}

func (t *Trainer) train(scope models.Scope, outcomes []models.ApplicationOutcome, minSamples int) (*models.TrainedModel, error) {
	start := time.Now()

	samples := t.buildSamples(outcomes)
	if len(samples) < minSamples {
		metrics.TrainingRunsTotal.WithLabelValues(scope.Key(), "insufficient_data").Inc()
		return nil, stderrors.NewInsufficientDataError(scope.Key(), len(samples), minSamples)
	}

	positives := 0
	for _, s := range samples {
		if s.Label == 1 {
			positives++
		}
	}

	t.logger.Info("training run started", map[string]interface{}{
		"scope":     scope.Key(),
		"samples":   len(samples),
		"positives": positives,
		"negatives": len(samples) - positives,
		"folds":     t.cfg.Folds,
	})

	// One PRNG per run, reset to the configured seed, threaded through every
	// shuffle. Never the process-wide generator.
	rng := rand.New(rand.NewSource(t.cfg.Seed))

	cv := t.crossValidate(samples, rng)

	model := &models.TrainedModel{
		ID:      uuid.NewString(),
		Scope:   scope,
		Weights: cv.weights,
		Bias:    cv.bias,
		Metrics: cv.metrics,
		Stats: models.TrainingStats{
			SampleCount: len(samples),
			Positives:   positives,
			Negatives:   len(samples) - positives,
			Epochs:      cv.epochs,
			FinalLoss:   cv.loss,
			Duration:    time.Since(start),
		},
		CreatedAt: time.Now().UTC(),
	}

	metrics.TrainingRunsTotal.WithLabelValues(scope.Key(), "success").Inc()
	metrics.TrainingDuration.WithLabelValues(scope.Key()).Observe(time.Since(start).Seconds())

	t.logger.Info("training run finished", map[string]interface{}{
		"scope":          scope.Key(),
		"modelId":        model.ID,
		"accuracy":       model.Metrics.Accuracy,
		"f1":             model.Metrics.F1,
		"accuracyStdDev": model.Metrics.AccuracyStdDev,
		"duration":       model.Stats.Duration.String(),
	})

	return model, nil
}

// buildSamples turns terminal outcomes into feature vectors. Outcomes without
// a terminal label never become training data.
func (t *Trainer) buildSamples(outcomes []models.ApplicationOutcome) []Sample {
	samples := make([]Sample, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Terminal() {
			continue
		}

		criteria := models.ScholarshipCriteria{ScholarshipID: o.ScholarshipID}
		if o.Criteria != nil {
			criteria = *o.Criteria
		}

		vector, _ := t.extractor.Extract(o.Profile, criteria, o.Context)

		label := 0.0
		if o.Approved() {
			label = 1.0
		}
		samples = append(samples, Sample{Features: vector, Label: label})
	}
	return samples
}

// ==========================
// Logistic regression core
// ==========================

// fitResult is the outcome of one gradient-descent fit: the lowest-loss
// snapshot seen during training.
type fitResult struct {
	weights map[string]float64
	bias    float64
	loss    float64
	epochs  int
}

// fit runs mini-batch gradient descent over the samples. Weights start at an
// equal small constant so importance is learned purely from data. The
// lowest-loss snapshot is retained as the result; training halts after
// cfg.Patience epochs without improvement or once the loss reaches the
// convergence threshold.
func (t *Trainer) fit(samples []Sample, rng *rand.Rand) fitResult {
	weights := make(map[string]float64, len(features.Names))
	for _, name := range features.Names {
		weights[name] = t.cfg.InitialWeight
	}
	bias := 0.0

	posWeight, negWeight := classWeights(samples)

	best := fitResult{
		weights: copyWeights(weights),
		bias:    bias,
		loss:    math.Inf(1),
	}
	sinceImprovement := 0

	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		lr := t.cfg.LearningRate / (1 + t.cfg.LearningRateDecay*float64(epoch))

		// Reshuffle every epoch through the run's seeded PRNG.
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		for batchStart := 0; batchStart < len(order); batchStart += t.cfg.BatchSize {
			batchEnd := batchStart + t.cfg.BatchSize
			if batchEnd > len(order) {
				batchEnd = len(order)
			}
			t.updateBatch(samples, order[batchStart:batchEnd], weights, &bias, lr, posWeight, negWeight)
		}

		loss := t.loss(samples, weights, bias, posWeight, negWeight)
		if loss < best.loss {
			best.weights = copyWeights(weights)
			best.bias = bias
			best.loss = loss
			sinceImprovement = 0
		} else {
			sinceImprovement++
		}
		best.epochs = epoch + 1

		if loss <= t.cfg.ConvergenceLoss || sinceImprovement >= t.cfg.Patience {
			break
		}
	}

	return best
}

// updateBatch applies one gradient step. The class weight of each sample
// scales its gradient contribution; the L2 term is added per weight; weights
// and bias are clipped after every update to bound extremes.
func (t *Trainer) updateBatch(samples []Sample, batch []int, weights map[string]float64, bias *float64, lr, posWeight, negWeight float64) {
	grad := make(map[string]float64, len(features.Names))
	gradBias := 0.0

	for _, idx := range batch {
		s := samples[idx]
		p := sigmoid(predictRaw(s.Features, weights, *bias))
		err := (p - s.Label) * sampleWeight(s.Label, posWeight, negWeight)

		for _, name := range features.Names {
			grad[name] += err * s.Features[name]
		}
		gradBias += err
	}

	n := float64(len(batch))
	for _, name := range features.Names {
		g := grad[name]/n + t.cfg.Regularization*weights[name]
		weights[name] = clip(weights[name]-lr*g, t.cfg.MaxAbsoluteWeight)
	}
	*bias = clip(*bias-lr*gradBias/n, t.cfg.MaxAbsoluteBias)
}

// loss is the class-weighted mean cross-entropy plus the L2 penalty.
func (t *Trainer) loss(samples []Sample, weights map[string]float64, bias, posWeight, negWeight float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	const eps = 1e-15
	total := 0.0
	for _, s := range samples {
		p := sigmoid(predictRaw(s.Features, weights, bias))
		p = math.Min(math.Max(p, eps), 1-eps)
		total += sampleWeight(s.Label, posWeight, negWeight) *
			-(s.Label*math.Log(p) + (1-s.Label)*math.Log(1-p))
	}
	loss := total / float64(len(samples))

	l2 := 0.0
	for _, w := range weights {
		l2 += w * w
	}
	return loss + t.cfg.Regularization/2*l2
}

// classWeights computes inverse-frequency weights total/(2*count) to correct
// approved/rejected imbalance.
func classWeights(samples []Sample) (posWeight, negWeight float64) {
	pos, neg := 0, 0
	for _, s := range samples {
		if s.Label == 1 {
			pos++
		} else {
			neg++
		}
	}

	total := float64(len(samples))
	posWeight, negWeight = 1.0, 1.0
	if pos > 0 {
		posWeight = total / (2 * float64(pos))
	}
	if neg > 0 {
		negWeight = total / (2 * float64(neg))
	}
	return posWeight, negWeight
}

func sampleWeight(label, posWeight, negWeight float64) float64 {
	if label == 1 {
		return posWeight
	}
	return negWeight
}

// predictRaw computes z = bias + Σ weight_i * feature_i.
func predictRaw(v features.Vector, weights map[string]float64, bias float64) float64 {
	z := bias
	for _, name := range features.Names {
		z += weights[name] * v[name]
	}
	return z
}

// sigmoid with the argument clipped to ±500 for numeric stability.
func sigmoid(z float64) float64 {
	if z > 500 {
		z = 500
	} else if z < -500 {
		z = -500
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

// Sigmoid exposes the stabilized sigmoid for the prediction service.
func Sigmoid(z float64) float64 {
	return sigmoid(z)
}

func clip(v, bound float64) float64 {
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}

func copyWeights(weights map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(weights))
	for k, v := range weights {
		out[k] = v
	}
	return out
}
