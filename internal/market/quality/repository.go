package quality

import (
	"context"
	"fmt"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/database"
)

// Repository is the PostgreSQL implementation of contracts.AssessmentStore.
type Repository struct {
	db *database.DB
}

// NewRepository creates an assessment repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Save appends an audit record. Assessments are never updated.
func (r *Repository) Save(ctx context.Context, a *contracts.QualityAssessment) error {
	query := `
		INSERT INTO quality_assessments (
			stock_code, mode, score, completeness_rate, outlier_score,
			can_publish, anomalies, evaluated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		a.StockCode, a.Mode, a.Score, a.CompletenessRate, a.OutlierScore,
		a.CanPublish, a.Anomalies, a.EvaluatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert quality assessment failed: %w", err)
	}
	return nil
}

// Latest returns the most recent assessments, newest first.
func (r *Repository) Latest(ctx context.Context, limit int) ([]contracts.QualityAssessment, error) {
	query := `
		SELECT id, stock_code, mode, score, completeness_rate, outlier_score,
		       can_publish, anomalies, evaluated_at
		FROM quality_assessments
		ORDER BY evaluated_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query quality assessments failed: %w", err)
	}
	defer rows.Close()

	var assessments []contracts.QualityAssessment
	for rows.Next() {
		var a contracts.QualityAssessment
		if err := rows.Scan(
			&a.ID, &a.StockCode, &a.Mode, &a.Score,
			&a.CompletenessRate, &a.OutlierScore,
			&a.CanPublish, &a.Anomalies, &a.EvaluatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quality assessment failed: %w", err)
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}
