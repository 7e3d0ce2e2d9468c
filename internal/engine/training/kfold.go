// internal/engine/training/kfold.go
package training

import (
	"math"
	"math/rand"

	"scholarship-engine/internal/engine/features"
	"scholarship-engine/internal/models"
)

// cvResult aggregates a k-fold cross-validation run: the element-wise average
// of the fold-trained models plus the mean metrics across folds.
type cvResult struct {
	weights map[string]float64
	bias    float64
	metrics models.TrainingMetrics
	epochs  int
	loss    float64
}

// foldMetrics are the evaluation results on one held-out fold.
type foldMetrics struct {
	accuracy  float64
	precision float64
	recall    float64
	f1        float64
	confusion models.ConfusionCounts
}

// crossValidate shuffles the samples once through the run's PRNG, partitions
// them into contiguous folds, trains on each k-1 subset and evaluates on the
// held-out fold. The final weights and bias are the element-wise mean across
// the fold models; reported metrics are fold means plus the standard
// deviation of accuracy.
func (t *Trainer) crossValidate(samples []Sample, rng *rand.Rand) cvResult {
	k := t.cfg.Folds
	if k > len(samples) {
		k = len(samples)
	}

	shuffled := make([]Sample, len(samples))
	copy(shuffled, samples)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	avgWeights := make(map[string]float64, len(features.Names))
	avgBias := 0.0
	folds := make([]foldMetrics, 0, k)

	maxEpochs := 0
	totalLoss := 0.0

	foldSize := len(shuffled) / k
	for fold := 0; fold < k; fold++ {
		lo := fold * foldSize
		hi := lo + foldSize
		if fold == k-1 {
			hi = len(shuffled)
		}

		holdout := shuffled[lo:hi]
		train := make([]Sample, 0, len(shuffled)-len(holdout))
		train = append(train, shuffled[:lo]...)
		train = append(train, shuffled[hi:]...)

		result := t.fit(train, rng)
		fm := evaluate(holdout, result.weights, result.bias)
		folds = append(folds, fm)

		for _, name := range features.Names {
			avgWeights[name] += result.weights[name]
		}
		avgBias += result.bias
		totalLoss += result.loss
		if result.epochs > maxEpochs {
			maxEpochs = result.epochs
		}

		t.logger.Debug("fold evaluated", map[string]interface{}{
			"fold":      fold,
			"train":     len(train),
			"holdout":   len(holdout),
			"accuracy":  fm.accuracy,
			"precision": fm.precision,
			"recall":    fm.recall,
			"f1":        fm.f1,
		})
	}

	for _, name := range features.Names {
		avgWeights[name] /= float64(k)
	}
	avgBias /= float64(k)

	return cvResult{
		weights: avgWeights,
		bias:    avgBias,
		metrics: summarize(folds),
		epochs:  maxEpochs,
		loss:    totalLoss / float64(k),
	}
}

// evaluate computes classification metrics on a held-out fold with the 0.5
// decision threshold.
func evaluate(holdout []Sample, weights map[string]float64, bias float64) foldMetrics {
	var fm foldMetrics

	for _, s := range holdout {
		p := sigmoid(predictRaw(s.Features, weights, bias))
		predicted := p >= 0.5
		actual := s.Label == 1

		switch {
		case predicted && actual:
			fm.confusion.TruePositives++
		case predicted && !actual:
			fm.confusion.FalsePositives++
		case !predicted && !actual:
			fm.confusion.TrueNegatives++
		default:
			fm.confusion.FalseNegatives++
		}
	}

	c := fm.confusion
	total := c.TruePositives + c.FalsePositives + c.TrueNegatives + c.FalseNegatives
	if total > 0 {
		fm.accuracy = float64(c.TruePositives+c.TrueNegatives) / float64(total)
	}
	if c.TruePositives+c.FalsePositives > 0 {
		fm.precision = float64(c.TruePositives) / float64(c.TruePositives+c.FalsePositives)
	}
	if c.TruePositives+c.FalseNegatives > 0 {
		fm.recall = float64(c.TruePositives) / float64(c.TruePositives+c.FalseNegatives)
	}
	if fm.precision+fm.recall > 0 {
		fm.f1 = 2 * fm.precision * fm.recall / (fm.precision + fm.recall)
	}

	return fm
}

// summarize averages the fold metrics and computes the standard deviation of
// accuracy, so reported numbers are honest about cross-fold variance.
func summarize(folds []foldMetrics) models.TrainingMetrics {
	k := float64(len(folds))
	var m models.TrainingMetrics
	m.Folds = len(folds)

	for _, f := range folds {
		m.Accuracy += f.accuracy
		m.Precision += f.precision
		m.Recall += f.recall
		m.F1 += f.f1
		m.Confusion.TruePositives += f.confusion.TruePositives
		m.Confusion.FalsePositives += f.confusion.FalsePositives
		m.Confusion.TrueNegatives += f.confusion.TrueNegatives
		m.Confusion.FalseNegatives += f.confusion.FalseNegatives
	}
	m.Accuracy /= k
	m.Precision /= k
	m.Recall /= k
	m.F1 /= k

	variance := 0.0
	for _, f := range folds {
		d := f.accuracy - m.Accuracy
		variance += d * d
	}
	m.AccuracyStdDev = math.Sqrt(variance / k)

	return m
}
