// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/realtyreach/realtyreach/app/dto"
	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/repository"
	"github.com/realtyreach/realtyreach/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for logging and tracing
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// getCampaign loads a campaign by UUID and enforces ownership.
func getCampaign(ctx context.Context, repo repository.CampaignRepository, uuidStr string, userID uuid.UUID) (*models.Campaign, error) {
	if uuidStr == "" {
		return nil, ErrCampaignUUIDRequired
	}
	if _, err := utils.ParseUUID(uuidStr); err != nil {
		return nil, ErrCampaignNotFound
	}

	campaign, err := repo.ByUUID(ctx, uuidStr)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if campaign.UserID != userID {
		return nil, ErrCampaignAccessDenied
	}

	return campaign, nil
}

// getTemplate loads a template by UUID and enforces ownership.
func getTemplate(ctx context.Context, repo repository.TemplateRepository, uuidStr string, userID uuid.UUID) (*models.Template, error) {
	if _, err := utils.ParseUUID(uuidStr); err != nil {
		return nil, ErrTemplateNotFound
	}

	template, err := repo.ByUUID(ctx, uuidStr)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	if template.UserID != userID {
		return nil, ErrTemplateAccessDenied
	}

	return template, nil
}

// getSettings loads a user's scraper credentials, failing with
// ErrSettingsNotFound when none are stored.
func getSettings(ctx context.Context, repo repository.RapidAPISettingsRepository, userID uuid.UUID) (*models.RapidAPISettings, error) {
	settings, err := repo.ByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, ErrSettingsNotFound
	}
	return settings, nil
}

// acquireLock takes a redis lock with SETNX semantics. The returned release
// function must be deferred by the caller. A nil client disables locking so
// flows remain usable in tests without redis.
func acquireLock(ctx context.Context, rc *redis.Client, key string, ttl time.Duration) (func(), error) {
	if rc == nil {
		return func() {}, nil
	}

	ok, err := rc.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return nil, NewBusinessError("CACHE_UNAVAILABLE", "Failed to acquire lock", err)
	}
	if !ok {
		return nil, ErrLockBusy
	}

	return func() {
		// Release must survive request cancellation.
		_ = rc.Del(context.Background(), key).Err()
	}, nil
}

// toCampaignDTO converts a campaign model (with loaded relations) to its response shape
func toCampaignDTO(c *models.Campaign) dto.GetCampaignResponse {
	senders := make([]string, 0, len(c.Emails))
	for _, e := range c.Emails {
		senders = append(senders, e.EmailAddress)
	}

	templates := make([]dto.CampaignTemplateDTO, 0, len(c.Templates))
	for _, ct := range c.Templates {
		item := dto.CampaignTemplateDTO{Type: ct.TemplateType.String()}
		if ct.Template != nil {
			item.UUID = ct.Template.UUID.String()
			item.Name = ct.Template.Name
		}
		templates = append(templates, item)
	}

	return dto.GetCampaignResponse{
		UUID:          c.UUID.String(),
		Name:          c.Name,
		City:          c.City,
		IsActive:      c.IsActive,
		SenderEmails:  senders,
		SubjectLines:  []string(c.SubjectLines),
		Templates:     templates,
		SenderName:    c.SenderName,
		SenderPhone:   c.SenderPhone,
		SenderCity:    c.SenderCity,
		SenderState:   c.SenderState,
		DaysTillClose: c.DaysTillClose,
		EMD:           c.EMD,
		OptionPeriod:  c.OptionPeriod,
		TitleCompany:  c.TitleCompany,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// toTemplateDTO converts a template model to its response shape
func toTemplateDTO(t *models.Template) dto.GetTemplateResponse {
	return dto.GetTemplateResponse{
		UUID:      t.UUID.String(),
		Name:      t.Name,
		Format:    t.Format,
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// nilIfEmpty maps empty strings to nil pointers for optional response fields
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
