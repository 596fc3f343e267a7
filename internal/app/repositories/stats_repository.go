package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/logger"
)

// StatsRepository computes the public portal counters
type StatsRepository struct {
	db *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// Counts returns all counters in one round trip. Only approved institutions
// and the countries they are located in are counted.
func (r *StatsRepository) Counts(ctx context.Context) (*models.PortalStats, error) {
	stats := &models.PortalStats{}
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM programs),
			(SELECT COUNT(*) FROM institutions i JOIN accounts a ON a.institution_id = i.id
				WHERE a.role = 'institution' AND a.approval_status = 'approved'),
			(SELECT COUNT(*) FROM accounts WHERE role = 'student'),
			(SELECT COUNT(DISTINCT LOWER(i.country)) FROM institutions i JOIN accounts a ON a.institution_id = i.id
				WHERE a.role = 'institution' AND a.approval_status = 'approved' AND i.country IS NOT NULL AND i.country <> '')`,
	).Scan(&stats.Programs, &stats.Institutions, &stats.Students, &stats.Countries)
	if err != nil {
		logger.Error().Err(err).Msg("Error computing portal counters")
		return nil, fmt.Errorf("error computing portal counters: %w", err)
	}
	return stats, nil
}
