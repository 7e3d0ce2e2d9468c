// internal/engine/modelstore/store.go

// Package modelstore persists trained models with an exclusive-active-model
// invariant per scope, and caches the active weights behind a read-through
// Redis cache whose write path is the only path that can activate a model.
package modelstore

import (
	"context"
	"database/sql"
	"encoding/json"

	"scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/models"
)

// Store is the persistence contract for trained models. Activation must be
// atomic: persisting a model deactivates every other model of the same scope
// in the same transaction.
type Store interface {
	SaveAndActivate(ctx context.Context, model *models.TrainedModel) error
	ActiveModel(ctx context.Context, scope models.Scope) (*models.TrainedModel, error)
	Deactivate(ctx context.Context, modelID string) (models.Scope, error)
	ListByScope(ctx context.Context, scope models.Scope) ([]models.TrainedModel, error)
}

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "modelstore"}),
	}
}

// SaveAndActivate deactivates every active model sharing the scope and
// inserts the new model as active, in one transaction. A global model only
// deactivates other global models; a scholarship-specific model only touches
// models tied to the same scholarship ID.
func (s *PostgresStore) SaveAndActivate(ctx context.Context, model *models.TrainedModel) error {
	weights, err := json.Marshal(model.Weights)
	if err != nil {
		return errors.NewModelSaveFailedError(err)
	}
	metricsJSON, err := json.Marshal(model.Metrics)
	if err != nil {
		return errors.NewModelSaveFailedError(err)
	}
	statsJSON, err := json.Marshal(model.Stats)
	if err != nil {
		return errors.NewModelSaveFailedError(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewModelSaveFailedError(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE trained_models SET is_active = FALSE
		WHERE scope_key = $1 AND is_active = TRUE`, model.Scope.Key()); err != nil {
		return errors.NewModelSaveFailedError(err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO trained_models
			(id, scope_key, scholarship_id, weights, bias, metrics, stats, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)`,
		model.ID,
		model.Scope.Key(),
		nullableID(model.Scope.ScholarshipID),
		weights,
		model.Bias,
		metricsJSON,
		statsJSON,
		model.CreatedAt,
	); err != nil {
		return errors.NewModelSaveFailedError(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewModelSaveFailedError(err)
	}

	model.IsActive = true

	s.logger.Info("model activated", map[string]interface{}{
		"modelId": model.ID,
		"scope":   model.Scope.Key(),
	})

	return nil
}

// ActiveModel returns the active model for the scope, or nil when the scope
// has none. Absence is a valid state, not an error.
func (s *PostgresStore) ActiveModel(ctx context.Context, scope models.Scope) (*models.TrainedModel, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, scope_key, scholarship_id, weights, bias, metrics, stats, is_active, created_at
		FROM trained_models
		WHERE scope_key = $1 AND is_active = TRUE`, scope.Key())

	model, err := scanModel(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewModelQueryFailedError(err)
	}
	return model, nil
}

// Deactivate administratively deactivates one model and returns its scope so
// the caller can evict the cached weights.
func (s *PostgresStore) Deactivate(ctx context.Context, modelID string) (models.Scope, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE trained_models SET is_active = FALSE
		WHERE id = $1
		RETURNING scholarship_id`, modelID)

	var scholarshipID sql.NullString
	if err := row.Scan(&scholarshipID); err != nil {
		if err == sql.ErrNoRows {
			return models.Scope{}, errors.NewModelNotFoundError(modelID)
		}
		return models.Scope{}, errors.NewModelQueryFailedError(err)
	}

	scope := models.GlobalScope()
	if scholarshipID.Valid {
		scope = models.ScholarshipScope(scholarshipID.String)
	}

	s.logger.Info("model deactivated", map[string]interface{}{
		"modelId": modelID,
		"scope":   scope.Key(),
	})

	return scope, nil
}

// ListByScope returns every stored model of a scope, newest first, for
// administrative display.
func (s *PostgresStore) ListByScope(ctx context.Context, scope models.Scope) ([]models.TrainedModel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scope_key, scholarship_id, weights, bias, metrics, stats, is_active, created_at
		FROM trained_models
		WHERE scope_key = $1
		ORDER BY created_at DESC`, scope.Key())
	if err != nil {
		return nil, errors.NewModelQueryFailedError(err)
	}
	defer rows.Close()

	var out []models.TrainedModel
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, errors.NewModelQueryFailedError(err)
		}
		out = append(out, *model)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewModelQueryFailedError(err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanModel(row rowScanner) (*models.TrainedModel, error) {
	var (
		model         models.TrainedModel
		scopeKey      string
		scholarshipID sql.NullString
		weights       []byte
		metricsJSON   []byte
		statsJSON     []byte
	)

	if err := row.Scan(
		&model.ID,
		&scopeKey,
		&scholarshipID,
		&weights,
		&model.Bias,
		&metricsJSON,
		&statsJSON,
		&model.IsActive,
		&model.CreatedAt,
	); err != nil {
		return nil, err
	}

	if scholarshipID.Valid {
		model.Scope = models.ScholarshipScope(scholarshipID.String)
	} else {
		model.Scope = models.GlobalScope()
	}

	if err := json.Unmarshal(weights, &model.Weights); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metricsJSON, &model.Metrics); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(statsJSON, &model.Stats); err != nil {
		return nil, err
	}

	return &model, nil
}

func nullableID(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}

// Schema is the table definition the store expects; the surrounding system
// owns migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS trained_models (
	id             UUID PRIMARY KEY,
	scope_key      TEXT NOT NULL,
	scholarship_id TEXT,
	weights        JSONB NOT NULL,
	bias           DOUBLE PRECISION NOT NULL,
	metrics        JSONB NOT NULL,
	stats          JSONB NOT NULL,
	is_active      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS trained_models_scope_active
	ON trained_models (scope_key) WHERE is_active;
`
