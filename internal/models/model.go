// internal/models/model.go
package models

import "time"

// Scope is the granularity a trained model applies at: global (all
// scholarships) or specific to one scholarship. The zero value is global.
type Scope struct {
	ScholarshipID string `json:"scholarshipId,omitempty"`
}

// GlobalScope returns the scope shared by all scholarships.
func GlobalScope() Scope {
	return Scope{}
}

// ScholarshipScope returns the scope tied to one scholarship.
func ScholarshipScope(scholarshipID string) Scope {
	return Scope{ScholarshipID: scholarshipID}
}

// IsGlobal reports whether the scope covers all scholarships.
func (s Scope) IsGlobal() bool {
	return s.ScholarshipID == ""
}

// Key returns a stable string key for the scope, used for cache keys and
// storage lookups.
func (s Scope) Key() string {
	if s.IsGlobal() {
		return "global"
	}
	return "scholarship:" + s.ScholarshipID
}

func (s Scope) String() string {
	return s.Key()
}

// ConfusionCounts are the summed confusion-matrix counts across CV folds.
type ConfusionCounts struct {
	TruePositives  int `json:"truePositives"`
	FalsePositives int `json:"falsePositives"`
	TrueNegatives  int `json:"trueNegatives"`
	FalseNegatives int `json:"falseNegatives"`
}

// TrainingMetrics are the cross-validated evaluation metrics of a model:
// means across folds plus the standard deviation of accuracy.
type TrainingMetrics struct {
	Accuracy       float64         `json:"accuracy"`
	Precision      float64         `json:"precision"`
	Recall         float64         `json:"recall"`
	F1             float64         `json:"f1"`
	AccuracyStdDev float64         `json:"accuracyStdDev"`
	Folds          int             `json:"folds"`
	Confusion      ConfusionCounts `json:"confusion"`
}

// TrainingStats describe the run that produced a model.
type TrainingStats struct {
	SampleCount int           `json:"sampleCount"`
	Positives   int           `json:"positives"`
	Negatives   int           `json:"negatives"`
	Epochs      int           `json:"epochs"`
	FinalLoss   float64       `json:"finalLoss"`
	Duration    time.Duration `json:"duration"`
}

// TrainedModel is one immutable training result. Re-training always creates a
// new record; at most one model per scope is active at any time.
type TrainedModel struct {
	ID        string             `json:"id"`
	Scope     Scope              `json:"scope"`
	Weights   map[string]float64 `json:"weights"`
	Bias      float64            `json:"bias"`
	Metrics   TrainingMetrics    `json:"metrics"`
	Stats     TrainingStats      `json:"stats"`
	IsActive  bool               `json:"isActive"`
	CreatedAt time.Time          `json:"createdAt"`
}
