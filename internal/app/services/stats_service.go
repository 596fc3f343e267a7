package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/cache"
)

const statsCacheKey = "cc:stats"

// StatsService serves the public landing-page counters
type StatsService struct {
	repo   statsStore
	cache  cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewStatsService creates a new StatsService; a nil cache disables caching
func NewStatsService(repo statsStore, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *StatsService {
	if c == nil {
		c = cache.Nop{}
	}
	return &StatsService{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// Counts returns all counters, cached for the configured TTL
func (s *StatsService) Counts(ctx context.Context) (*models.PortalStats, error) {
	var cached models.PortalStats
	err := cache.GetJSON(ctx, s.cache, statsCacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Err(err).Msg("Stats cache read failed")
	}

	stats, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, s.cache, statsCacheKey, stats, s.ttl); err != nil {
		s.logger.Warn().Err(err).Msg("Stats cache fill failed")
	}
	return stats, nil
}
