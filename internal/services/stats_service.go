package services

import (
	"context"
	"time"

	"fleetrent/internal/caching"
	"fleetrent/internal/models"
	"fleetrent/internal/repositories"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

type StatsService interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error)
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

type statsService struct {
	repo   repositories.StatsRepository
	cache  caching.CacheService
	ttl    time.Duration
	logger hclog.Logger
	now    func() time.Time
}

// NewStatsService caches aggregates for ttl. A nil cache disables caching.
func NewStatsService(repo repositories.StatsRepository, cache caching.CacheService, ttl time.Duration, logger hclog.Logger) StatsService {
	return &statsService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("stats"),
		now:    time.Now,
	}
}

func (s *statsService) Get(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error) {
	if s.cache != nil {
		cached, err := s.cache.GetStats(ctx, tenantID)
		if err != nil {
			s.logger.Warn("stats cache read failed", "tenant", tenantID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	stats, err := s.repo.Aggregate(ctx, tenantID, monthStart)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.SetStats(ctx, tenantID, stats, s.ttl); err != nil {
			s.logger.Warn("stats cache write failed", "tenant", tenantID, "error", err)
		}
	}
	return stats, nil
}

func (s *statsService) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteStats(ctx, tenantID); err != nil {
		s.logger.Warn("stats cache invalidation failed", "tenant", tenantID, "error", err)
	}
}
