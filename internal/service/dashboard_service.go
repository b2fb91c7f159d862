package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kotoba-labs/kotoba-api/internal/models"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
)

type learningLogReader interface {
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]models.LearningLog, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Dashboard is the student landing payload.
type Dashboard struct {
	RecentLogs []models.LearningLog `json:"recent_logs"`
}

// DashboardConfig tunes the dashboard cache.
type DashboardConfig struct {
	CacheTTL   time.Duration
	RecentLogs int
}

// DashboardService assembles the per-user dashboard, cached in Redis and
// invalidated whenever a new quiz result lands.
type DashboardService struct {
	logs   learningLogReader
	cache  dashboardCache
	logger *zap.Logger
	config DashboardConfig
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(logs learningLogReader, cache dashboardCache, logger *zap.Logger, config DashboardConfig) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RecentLogs <= 0 {
		config.RecentLogs = 10
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	return &DashboardService{logs: logs, cache: cache, logger: logger, config: config}
}

// Load returns the user's dashboard. The second return value reports whether
// the payload came from cache.
func (s *DashboardService) Load(ctx context.Context, userID string) (*Dashboard, bool, error) {
	key := dashboardCacheKey(userID)

	if s.cache != nil {
		var cached Dashboard
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, true, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	logs, err := s.logs.ListRecentByUser(ctx, userID, s.config.RecentLogs)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent activity")
	}
	dashboard := &Dashboard{RecentLogs: logs}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, dashboard, s.config.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return dashboard, false, nil
}

func dashboardCacheKey(userID string) string {
	return fmt.Sprintf("dashboard:recent:%s", userID)
}
