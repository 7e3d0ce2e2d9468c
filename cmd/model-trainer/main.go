// cmd/model-trainer/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"scholarship-engine/internal/common/config"
	"scholarship-engine/internal/common/database"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/engine"
	"scholarship-engine/internal/engine/modelstore"
	"scholarship-engine/internal/models"
	"scholarship-engine/internal/repository"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	scholarshipID := flag.String("scholarship", "", "train a scholarship-specific model instead of the global one")
	configPath := flag.String("config", "", "explicit config file path")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting model trainer...")

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Init Postgres with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Postgres initialization")
	if err != nil {
		zapLog.Fatal("postgres unavailable", zap.Error(err))
	}
	defer pg.Close()

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Redis initialization")
	if err != nil {
		zapLog.Fatal("redis unavailable", zap.Error(err))
	}
	defer rdb.Close()

	// --- Metrics endpoint for the duration of the run ---
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				zapLog.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	// --- Wire the engine ---
	outcomes := repository.NewOutcomeRepository(pg.GetDB(), log)
	store := modelstore.NewCachedStore(
		modelstore.NewPostgresStore(pg.GetDB(), log),
		rdb.GetClient(),
		cfg.Prediction.CacheTTL,
		log,
	)
	eng := engine.New(cfg.Training, store, outcomes, outcomes, log)

	// --- Run the training job ---
	start := time.Now()
	model, err := trainOnce(ctx, eng, *scholarshipID)
	if err != nil {
		zapLog.Fatal("training failed", zap.Error(err))
	}

	zapLog.Info("model trained and activated",
		zap.String("modelId", model.ID),
		zap.String("scope", model.Scope.Key()),
		zap.Int("samples", model.Stats.SampleCount),
		zap.Float64("accuracy", model.Metrics.Accuracy),
		zap.Float64("f1", model.Metrics.F1),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func trainOnce(ctx context.Context, eng *engine.Engine, scholarshipID string) (*models.TrainedModel, error) {
	if scholarshipID != "" {
		return eng.TrainScholarshipModel(ctx, scholarshipID)
	}
	return eng.TrainGlobalModel(ctx)
}
