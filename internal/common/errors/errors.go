// internal/common/errors/errors.go

// Package errors provides standardized error handling for the eligibility and
// prediction engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInsufficientData       ErrorCode = "INSUFFICIENT_DATA"
	ErrCodeModelUnavailable       ErrorCode = "MODEL_UNAVAILABLE"
	ErrCodeModelSaveFailed        ErrorCode = "MODEL_SAVE_FAILED"
	ErrCodeModelQueryFailed       ErrorCode = "MODEL_QUERY_FAILED"
	ErrCodeModelNotFound          ErrorCode = "MODEL_NOT_FOUND"
	ErrCodeOutcomeQueryFailed     ErrorCode = "OUTCOME_QUERY_FAILED"
	ErrCodeHistoryQueryFailed     ErrorCode = "HISTORY_QUERY_FAILED"
	ErrCodeInvalidCustomCondition ErrorCode = "INVALID_CUSTOM_CONDITION"
	ErrCodeTrainingFailed         ErrorCode = "TRAINING_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// IsCode reports whether err is a StandardError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInsufficientDataError reports a training request below the minimum
// sample threshold for its scope. Not retryable until more terminal
// applications accumulate.
func NewInsufficientDataError(scope string, got, required int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsufficientData,
		Message:   "Not enough terminal applications to train a model",
		Details:   fmt.Sprintf("scope: %s, samples: %d, required: %d", scope, got, required),
		Retryable: false,
		Metadata: map[string]interface{}{
			"scope":    scope,
			"samples":  got,
			"required": required,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewModelUnavailableError reports a prediction request for a scholarship with
// neither a scholarship-specific nor a global active model.
func NewModelUnavailableError(scholarshipID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelUnavailable,
		Message:   "No active model for scholarship and no global fallback; train a global model first",
		Details:   fmt.Sprintf("scholarshipId: %s", scholarshipID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelSaveFailedError wraps a storage failure while persisting or
// activating a trained model.
func NewModelSaveFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelSaveFailed,
		Message:   "Failed to persist trained model",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelQueryFailedError wraps a storage failure while reading models.
func NewModelQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelQueryFailed,
		Message:   "Failed to query trained models",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelNotFoundError reports a lookup for a model ID that does not exist.
func NewModelNotFoundError(modelID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelNotFound,
		Message:   "Trained model not found",
		Details:   fmt.Sprintf("modelId: %s", modelID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOutcomeQueryFailedError wraps a storage failure while loading historical
// application outcomes.
func NewOutcomeQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOutcomeQueryFailed,
		Message:   "Failed to load historical application outcomes",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryQueryFailedError wraps a storage failure while loading an
// applicant's prior outcome counts.
func NewHistoryQueryFailedError(applicantID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryQueryFailed,
		Message:   "Failed to load applicant history",
		Details:   fmt.Sprintf("applicantId: %s, error: %s", applicantID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCustomConditionError reports a malformed administrator-defined
// condition. Evaluation of the remaining conditions continues.
func NewInvalidCustomConditionError(name, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCustomCondition,
		Message:   "Custom condition failed validation",
		Details:   fmt.Sprintf("condition: %s, %s", name, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTrainingFailedError wraps an unexpected failure inside a training run.
func NewTrainingFailedError(scope string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTrainingFailed,
		Message:   "Training run failed",
		Details:   fmt.Sprintf("scope: %s, error: %s", scope, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
