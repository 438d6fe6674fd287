// Package businessflow contains the core business logic and use cases for template workflows
package businessflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/realtyreach/realtyreach/app/dto"
	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/repository"
	"github.com/realtyreach/realtyreach/utils"
)

// TemplateFlow handles the template business logic
type TemplateFlow interface {
	CreateTemplate(ctx context.Context, req *dto.CreateTemplateRequest, metadata *ClientMetadata) (*dto.CreateTemplateResponse, error)
	UpdateTemplate(ctx context.Context, req *dto.UpdateTemplateRequest, metadata *ClientMetadata) (*dto.UpdateTemplateResponse, error)
	GetTemplate(ctx context.Context, uuidStr string, userID uuid.UUID) (*dto.GetTemplateResponse, error)
	ListTemplates(ctx context.Context, userID uuid.UUID, limit, offset int) (*dto.ListTemplatesResponse, error)
	DeleteTemplate(ctx context.Context, uuidStr string, userID uuid.UUID) error
	ReplaceTemplateVariables(ctx context.Context, req *dto.ReplaceTemplateVariablesRequest) (*dto.ReplaceTemplateVariablesResponse, error)
}

// TemplateFlowImpl implements the template business flow
type TemplateFlowImpl struct {
	templateRepo repository.TemplateRepository
}

// NewTemplateFlow creates a new template flow instance
func NewTemplateFlow(templateRepo repository.TemplateRepository) TemplateFlow {
	return &TemplateFlowImpl{templateRepo: templateRepo}
}

// CreateTemplate stores a new template for the caller
func (s *TemplateFlowImpl) CreateTemplate(ctx context.Context, req *dto.CreateTemplateRequest, metadata *ClientMetadata) (*dto.CreateTemplateResponse, error) {
	template := &models.Template{
		UserID:  req.UserID,
		Name:    req.Name,
		Content: req.Content,
		Format:  req.Format,
	}
	if err := template.BeforeCreate(); err != nil {
		return nil, NewBusinessError("TEMPLATE_CREATION_FAILED", "Template creation failed", err)
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, NewBusinessError("TEMPLATE_CREATION_FAILED", "Template creation failed", err)
	}

	return &dto.CreateTemplateResponse{
		Message:   "Template created successfully",
		UUID:      template.UUID.String(),
		CreatedAt: template.CreatedAt.Format(time.RFC3339),
	}, nil
}

// UpdateTemplate mutates an existing template owned by the caller
func (s *TemplateFlowImpl) UpdateTemplate(ctx context.Context, req *dto.UpdateTemplateRequest, metadata *ClientMetadata) (*dto.UpdateTemplateResponse, error) {
	template, err := getTemplate(ctx, s.templateRepo, req.UUID, req.UserID)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LOOKUP_FAILED", "Failed to lookup template", err)
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Format != nil {
		template.Format = *req.Format
	}
	if req.Content != nil {
		template.Content = *req.Content
	}
	template.UpdatedAt = utils.UTCNowPtr()

	if err := s.templateRepo.Update(ctx, *template); err != nil {
		return nil, NewBusinessError("TEMPLATE_UPDATE_FAILED", "Template update failed", err)
	}

	return &dto.UpdateTemplateResponse{Message: "Template updated successfully"}, nil
}

// GetTemplate returns a single template owned by the caller
func (s *TemplateFlowImpl) GetTemplate(ctx context.Context, uuidStr string, userID uuid.UUID) (*dto.GetTemplateResponse, error) {
	template, err := getTemplate(ctx, s.templateRepo, uuidStr, userID)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LOOKUP_FAILED", "Failed to lookup template", err)
	}

	resp := toTemplateDTO(template)
	return &resp, nil
}

// ListTemplates returns the caller's templates, newest first
func (s *TemplateFlowImpl) ListTemplates(ctx context.Context, userID uuid.UUID, limit, offset int) (*dto.ListTemplatesResponse, error) {
	if limit <= 0 {
		limit = 50
	}

	templates, err := s.templateRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LIST_FAILED", "Failed to list templates", err)
	}

	total, err := s.templateRepo.Count(ctx, models.TemplateFilter{UserID: &userID})
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LIST_FAILED", "Failed to count templates", err)
	}

	items := make([]dto.GetTemplateResponse, 0, len(templates))
	for _, t := range templates {
		items = append(items, toTemplateDTO(t))
	}

	return &dto.ListTemplatesResponse{Items: items, Total: int(total)}, nil
}

// DeleteTemplate removes a template owned by the caller
func (s *TemplateFlowImpl) DeleteTemplate(ctx context.Context, uuidStr string, userID uuid.UUID) error {
	template, err := getTemplate(ctx, s.templateRepo, uuidStr, userID)
	if err != nil {
		return NewBusinessError("TEMPLATE_LOOKUP_FAILED", "Failed to lookup template", err)
	}

	if err := s.templateRepo.Delete(ctx, template.ID); err != nil {
		return NewBusinessError("TEMPLATE_DELETE_FAILED", "Template delete failed", err)
	}

	return nil
}

// ReplaceTemplateVariables renders a stored template with caller-supplied
// variables. Markers without a matching variable pass through untouched.
func (s *TemplateFlowImpl) ReplaceTemplateVariables(ctx context.Context, req *dto.ReplaceTemplateVariablesRequest) (*dto.ReplaceTemplateVariablesResponse, error) {
	template, err := getTemplate(ctx, s.templateRepo, req.TemplateID, req.UserID)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LOOKUP_FAILED", "Failed to lookup template", err)
	}

	return &dto.ReplaceTemplateVariablesResponse{
		Content: utils.RenderTemplate(template.Content, req.Variables),
		Format:  template.Format,
		Name:    template.Name,
	}, nil
}
