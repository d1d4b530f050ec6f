// Package settings fronts the records service configuration endpoints
// with a short-lived read cache, so the settings screen does not hit
// the remote service on every render.
package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/clinrec/console/internal/model"
	"github.com/clinrec/console/internal/remote"
	"github.com/clinrec/console/pkg/logger"
)

const (
	settingsCacheKey = "settings"

	// DefaultCacheTTL bounds how stale a settings read may be. Writes
	// invalidate immediately, so this only covers out-of-band changes.
	DefaultCacheTTL = 30 * time.Second
)

type SettingsService interface {
	Get(ctx context.Context) (model.Settings, error)
	Update(ctx context.Context, key, value string) error
	TestExtraction(ctx context.Context) (string, error)
}

type Service struct {
	client *remote.Client
	cache  *cache.Cache
	logger *logger.Logger
}

func NewService(client *remote.Client, ttl time.Duration, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		client: client,
		cache:  cache.New(ttl, 2*ttl),
		logger: log.WithComponent("settings_service"),
	}
}

// Get returns the records service configuration, served from cache
// when a fresh copy exists.
func (s *Service) Get(ctx context.Context) (model.Settings, error) {
	if cached, found := s.cache.Get(settingsCacheKey); found {
		return cached.(model.Settings), nil
	}

	settings, err := s.client.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}

	s.cache.SetDefault(settingsCacheKey, settings)
	return settings, nil
}

// Update writes one configuration entry and drops the cached copy, so
// the next read observes the new value.
func (s *Service) Update(ctx context.Context, key, value string) error {
	if err := s.client.UpdateSetting(ctx, key, value); err != nil {
		return fmt.Errorf("failed to update setting %s: %w", key, err)
	}

	s.cache.Delete(settingsCacheKey)
	s.logger.Info("setting updated", "key", key)
	return nil
}

// TestExtraction verifies the extraction backend credentials on the
// records service. Never cached.
func (s *Service) TestExtraction(ctx context.Context) (string, error) {
	message, err := s.client.TestExtraction(ctx)
	if err != nil {
		return "", fmt.Errorf("extraction connectivity test failed: %w", err)
	}
	return message, nil
}
