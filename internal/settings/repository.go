package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/database"
	"github.com/vistalabs/vista/pkg/logger"
)

// Setting keys.
const (
	keyWeights          = "indicator_weights"
	keySignalThresholds = "signal_thresholds"
	keyRiskThresholds   = "risk_thresholds"
)

// Repository is the PostgreSQL implementation of contracts.SettingsStore.
// Configuration invariants are enforced here, at write time; the engines
// trust every snapshot they are handed.
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRepository creates a settings repository.
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

// Load returns the current configuration snapshot. Missing keys fall back
// to the defaults, so a fresh database is immediately usable.
func (r *Repository) Load(ctx context.Context) (contracts.AnalysisConfig, error) {
	cfg := contracts.DefaultAnalysisConfig()

	rows, err := r.db.Pool.Query(ctx, `SELECT key, value FROM analysis_settings`)
	if err != nil {
		return cfg, fmt.Errorf("query analysis settings failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return cfg, fmt.Errorf("scan analysis setting failed: %w", err)
		}
		if err := applySetting(&cfg, key, value); err != nil {
			r.logger.WithError(err).WithField("key", key).Warn("Ignoring malformed setting row")
		}
	}
	if err := rows.Err(); err != nil {
		return cfg, fmt.Errorf("read analysis settings failed: %w", err)
	}

	return cfg, nil
}

// Save validates and persists a configuration, recording who changed it.
// An invalid configuration is rejected before anything is written.
func (r *Repository) Save(ctx context.Context, cfg contracts.AnalysisConfig, changedBy string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid analysis configuration: %w", err)
	}

	entries := map[string]interface{}{
		keyWeights:          cfg.Weights,
		keySignalThresholds: cfg.SignalThresholds,
		keyRiskThresholds:   cfg.RiskThresholds,
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	upsert := `
		INSERT INTO analysis_settings (key, value, updated_by, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
	`
	audit := `
		INSERT INTO analysis_settings_audit (key, value, changed_by, changed_at)
		VALUES ($1, $2, $3, NOW())
	`

	for key, entry := range entries {
		value, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal setting failed: key=%s: %w", key, err)
		}
		if _, err := tx.Exec(ctx, upsert, key, value, changedBy); err != nil {
			return fmt.Errorf("upsert setting failed: key=%s: %w", key, err)
		}
		if _, err := tx.Exec(ctx, audit, key, value, changedBy); err != nil {
			return fmt.Errorf("audit setting failed: key=%s: %w", key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction failed: %w", err)
	}

	r.logger.WithField("changed_by", changedBy).Info("Analysis configuration updated")
	return nil
}

// applySetting merges one stored row into the snapshot.
func applySetting(cfg *contracts.AnalysisConfig, key string, value []byte) error {
	switch key {
	case keyWeights:
		return json.Unmarshal(value, &cfg.Weights)
	case keySignalThresholds:
		return json.Unmarshal(value, &cfg.SignalThresholds)
	case keyRiskThresholds:
		return json.Unmarshal(value, &cfg.RiskThresholds)
	default:
		return fmt.Errorf("unknown setting key: %s", key)
	}
}
