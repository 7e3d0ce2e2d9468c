// internal/repository/outcomes.go

// Package repository loads historical application outcomes and applicant
// history from PostgreSQL for the training and prediction pipelines.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/models"
)

// OutcomeRepository reads terminal-labeled applications. The terminal filter
// lives in SQL so a record without a terminal label can never reach training.
type OutcomeRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewOutcomeRepository(db *sql.DB, log logger.Logger) *OutcomeRepository {
	return &OutcomeRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "outcomes"}),
	}
}

const outcomeColumns = `
	id, applicant_id, scholarship_id, status, profile, criteria, context, decided_at`

// TerminalOutcomes returns every approved/rejected application across all
// scholarships, for global training.
func (r *OutcomeRepository) TerminalOutcomes(ctx context.Context) ([]models.ApplicationOutcome, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+outcomeColumns+`
		FROM application_outcomes
		WHERE status IN ('approved', 'rejected')
		ORDER BY decided_at`)
	if err != nil {
		return nil, errors.NewOutcomeQueryFailedError(err)
	}
	return r.collect(rows)
}

// TerminalOutcomesForScholarship returns the approved/rejected applications
// of one scholarship, for scholarship-specific training.
func (r *OutcomeRepository) TerminalOutcomesForScholarship(ctx context.Context, scholarshipID string) ([]models.ApplicationOutcome, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+outcomeColumns+`
		FROM application_outcomes
		WHERE status IN ('approved', 'rejected') AND scholarship_id = $1
		ORDER BY decided_at`, scholarshipID)
	if err != nil {
		return nil, errors.NewOutcomeQueryFailedError(err)
	}
	return r.collect(rows)
}

// ApplicantHistory counts an applicant's own prior terminal outcomes for the
// prediction-time history adjustment.
func (r *OutcomeRepository) ApplicantHistory(ctx context.Context, applicantID string) (models.ApplicantHistory, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected')
		FROM application_outcomes
		WHERE applicant_id = $1`, applicantID)

	var history models.ApplicantHistory
	if err := row.Scan(&history.Approvals, &history.Rejections); err != nil {
		return models.ApplicantHistory{}, errors.NewHistoryQueryFailedError(applicantID, err)
	}
	return history, nil
}

func (r *OutcomeRepository) collect(rows *sql.Rows) ([]models.ApplicationOutcome, error) {
	defer rows.Close()

	var out []models.ApplicationOutcome
	for rows.Next() {
		var (
			o            models.ApplicationOutcome
			profileJSON  []byte
			criteriaJSON []byte
			contextJSON  []byte
		)
		if err := rows.Scan(
			&o.ID,
			&o.ApplicantID,
			&o.ScholarshipID,
			&o.Status,
			&profileJSON,
			&criteriaJSON,
			&contextJSON,
			&o.DecidedAt,
		); err != nil {
			return nil, errors.NewOutcomeQueryFailedError(err)
		}

		if err := json.Unmarshal(profileJSON, &o.Profile); err != nil {
			return nil, errors.NewOutcomeQueryFailedError(err)
		}
		if len(criteriaJSON) > 0 {
			var criteria models.ScholarshipCriteria
			if err := json.Unmarshal(criteriaJSON, &criteria); err != nil {
				return nil, errors.NewOutcomeQueryFailedError(err)
			}
			o.Criteria = &criteria
		}
		if len(contextJSON) > 0 {
			var appCtx models.ApplicationContext
			if err := json.Unmarshal(contextJSON, &appCtx); err != nil {
				return nil, errors.NewOutcomeQueryFailedError(err)
			}
			o.Context = &appCtx
		}

		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewOutcomeQueryFailedError(err)
	}

	r.logger.Debug("outcomes loaded", map[string]interface{}{"count": len(out)})
	return out, nil
}
