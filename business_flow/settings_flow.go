// Package businessflow contains the core business logic and use cases for settings workflows
package businessflow

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/realtyreach/realtyreach/app/dto"
	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/repository"
	"github.com/realtyreach/realtyreach/utils"
)

// SettingsFlow handles the per-user scraper credential store
type SettingsFlow interface {
	GetSettings(ctx context.Context, userID uuid.UUID) (*dto.GetRapidAPISettingsResponse, error)
	UpdateSettings(ctx context.Context, req *dto.UpdateRapidAPISettingsRequest, metadata *ClientMetadata) error
}

// SettingsFlowImpl implements the settings business flow
type SettingsFlowImpl struct {
	settingsRepo repository.RapidAPISettingsRepository
	rc           *redis.Client
}

// NewSettingsFlow creates a new settings flow instance
func NewSettingsFlow(settingsRepo repository.RapidAPISettingsRepository, rc *redis.Client) SettingsFlow {
	return &SettingsFlowImpl{settingsRepo: settingsRepo, rc: rc}
}

// GetSettings returns the stored upstream credentials without the key itself
func (s *SettingsFlowImpl) GetSettings(ctx context.Context, userID uuid.UUID) (*dto.GetRapidAPISettingsResponse, error) {
	settings, err := getSettings(ctx, s.settingsRepo, userID)
	if err != nil {
		return nil, NewBusinessError("SETTINGS_LOOKUP_FAILED", "Failed to lookup settings", err)
	}

	return &dto.GetRapidAPISettingsResponse{
		APIHost:   settings.APIHost,
		HasAPIKey: settings.APIKey != "",
		MaxPages:  settings.MaxPages,
	}, nil
}

// UpdateSettings stores the upstream credentials and drops the cached copy
func (s *SettingsFlowImpl) UpdateSettings(ctx context.Context, req *dto.UpdateRapidAPISettingsRequest, metadata *ClientMetadata) error {
	settings := &models.RapidAPISettings{
		UserID:  req.UserID,
		APIKey:  req.APIKey,
		APIHost: req.APIHost,
	}
	if req.MaxPages != nil {
		settings.MaxPages = *req.MaxPages
	}
	if err := settings.BeforeCreate(); err != nil {
		return NewBusinessError("SETTINGS_UPDATE_FAILED", "Failed to store settings", err)
	}

	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return NewBusinessError("SETTINGS_UPDATE_FAILED", "Failed to store settings", err)
	}

	if s.rc != nil {
		_ = s.rc.Del(ctx, utils.SettingsCacheKeyPrefix+req.UserID.String()).Err()
	}

	return nil
}

// cachedCredentials is the redis representation of a user's credentials
type cachedCredentials struct {
	APIKey   string `json:"api_key"`
	APIHost  string `json:"api_host"`
	MaxPages int    `json:"max_pages"`
}

// loadCredentials resolves a user's scraper credentials through the redis
// cache, falling back to the settings store on miss.
func loadCredentials(ctx context.Context, repo repository.RapidAPISettingsRepository, rc *redis.Client, userID uuid.UUID) (*cachedCredentials, error) {
	key := utils.SettingsCacheKeyPrefix + userID.String()

	if rc != nil {
		raw, err := rc.Get(ctx, key).Result()
		if err == nil {
			var creds cachedCredentials
			if jsonErr := json.Unmarshal([]byte(raw), &creds); jsonErr == nil {
				return &creds, nil
			}
		}
	}

	settings, err := getSettings(ctx, repo, userID)
	if err != nil {
		return nil, err
	}

	creds := &cachedCredentials{
		APIKey:   settings.APIKey,
		APIHost:  settings.APIHost,
		MaxPages: settings.MaxPages,
	}

	if rc != nil {
		if raw, err := json.Marshal(creds); err == nil {
			_ = rc.Set(ctx, key, raw, utils.SettingsCacheTTL).Err()
		}
	}

	return creds, nil
}
