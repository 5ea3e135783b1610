package repository

import (
	"context"
	"fmt"

	"github.com/yourorg/stock-chat-service/internal/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// HistoryRepository handles database operations for the interaction log when
// the Postgres history backend is selected
type HistoryRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sqlx.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Configured reports whether a database connection is available
func (r *HistoryRepository) Configured() bool {
	return r.db != nil
}

// Save inserts one interaction record
func (r *HistoryRepository) Save(ctx context.Context, interaction *model.Interaction) error {
	query := `
		INSERT INTO interactions (question, ticker, chart_type, answer, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		interaction.Question,
		interaction.Ticker,
		interaction.ChartType,
		interaction.Answer,
		interaction.CreatedAt,
	).Scan(&interaction.ID)

	if err != nil {
		r.logger.Error("Failed to insert interaction",
			zap.Error(err),
			zap.String("ticker", interaction.Ticker))
		return fmt.Errorf("failed to insert interaction: %w", err)
	}

	return nil
}

// List retrieves the most recent interactions, newest first
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]model.Interaction, error) {
	query := `
		SELECT id, question, ticker, chart_type, answer, created_at
		FROM interactions
		ORDER BY created_at DESC
		LIMIT $1
	`

	var interactions []model.Interaction
	err := r.db.SelectContext(ctx, &interactions, query, limit)
	if err != nil {
		r.logger.Error("Failed to list interactions", zap.Error(err))
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}

	return interactions, nil
}
