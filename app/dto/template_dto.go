package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTemplateRequest represents the request to create a template
type CreateTemplateRequest struct {
	UserID  uuid.UUID `json:"-"`
	Name    string    `json:"name" validate:"required,max=255"`
	Format  string    `json:"format" validate:"required,oneof=html text"`
	Content string    `json:"content" validate:"required"`
}

// CreateTemplateResponse represents the response to create a template
type CreateTemplateResponse struct {
	Message   string `json:"message"`
	UUID      string `json:"uuid"`
	CreatedAt string `json:"created_at"`
}

// UpdateTemplateRequest represents the request to update a template
type UpdateTemplateRequest struct {
	UUID    string    `json:"-"`
	UserID  uuid.UUID `json:"-"`
	Name    *string   `json:"name,omitempty" validate:"omitempty,max=255"`
	Format  *string   `json:"format,omitempty" validate:"omitempty,oneof=html text"`
	Content *string   `json:"content,omitempty"`
}

// UpdateTemplateResponse represents the response to update a template
type UpdateTemplateResponse struct {
	Message string `json:"message"`
}

// GetTemplateResponse represents a template as returned to clients
type GetTemplateResponse struct {
	UUID      string     `json:"uuid"`
	Name      string     `json:"name"`
	Format    string     `json:"format"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ListTemplatesResponse represents the response to list a user's templates
type ListTemplatesResponse struct {
	Items []GetTemplateResponse `json:"items"`
	Total int                   `json:"total"`
}

// UpdateRapidAPISettingsRequest represents the request to store upstream API credentials
type UpdateRapidAPISettingsRequest struct {
	UserID   uuid.UUID `json:"-"`
	APIKey   string    `json:"api_key" validate:"required,max=255"`
	APIHost  string    `json:"api_host" validate:"required,max=255"`
	MaxPages *int      `json:"max_pages,omitempty" validate:"omitempty,gt=0,lte=100"`
}

// GetRapidAPISettingsResponse represents stored upstream API settings.
// The key itself is never echoed back, only its presence.
type GetRapidAPISettingsResponse struct {
	APIHost   string `json:"api_host"`
	HasAPIKey bool   `json:"has_api_key"`
	MaxPages  int    `json:"max_pages"`
}
