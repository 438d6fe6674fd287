// Package businessflow contains the core business logic and use cases for campaign workflows
package businessflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/realtyreach/realtyreach/app/dto"
	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/repository"
	"github.com/realtyreach/realtyreach/utils"
)

// CampaignFlow handles the campaign lifecycle business logic
type CampaignFlow interface {
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error)
	UpdateCampaign(ctx context.Context, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*dto.UpdateCampaignResponse, error)
	GetCampaign(ctx context.Context, req *dto.GetCampaignRequest) (*dto.GetCampaignResponse, error)
	ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error)
	SetCampaignActive(ctx context.Context, req *dto.SetCampaignActiveRequest, metadata *ClientMetadata) (*dto.UpdateCampaignResponse, error)
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	campaignRepo repository.CampaignRepository
	templateRepo repository.TemplateRepository
	db           *gorm.DB
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	templateRepo repository.TemplateRepository,
	db *gorm.DB,
) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo: campaignRepo,
		templateRepo: templateRepo,
		db:           db,
	}
}

// CreateCampaign handles the complete campaign creation process. Campaigns
// are created inactive; activation runs the validation gate.
func (s *CampaignFlowImpl) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error) {
	if req.Name == "" {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", ErrCampaignNameRequired)
	}
	if req.City == "" {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", ErrCampaignLocationRequired)
	}

	templates, err := s.resolveTemplateRefs(ctx, req.Templates, req.UserID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_TEMPLATE_LOOKUP_FAILED", "Failed to lookup campaign templates", err)
	}

	provider := "smtp"
	if req.EmailProvider != nil {
		provider = *req.EmailProvider
	}

	campaign := &models.Campaign{
		UserID:        req.UserID,
		Name:          req.Name,
		City:          req.City,
		IsActive:      false,
		SubjectLines:  pq.StringArray(req.SubjectLines),
		SenderName:    req.SenderName,
		SenderPhone:   req.SenderPhone,
		SenderCity:    req.SenderCity,
		SenderState:   req.SenderState,
		DaysTillClose: req.DaysTillClose,
		EMD:           req.EMD,
		OptionPeriod:  req.OptionPeriod,
		TitleCompany:  req.TitleCompany,
	}
	if err := campaign.BeforeCreate(); err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATION_FAILED", "Campaign creation failed", err)
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.campaignRepo.Save(txCtx, campaign); err != nil {
			return err
		}

		emails := make([]models.CampaignEmail, 0, len(req.SenderEmails))
		for _, addr := range req.SenderEmails {
			emails = append(emails, models.CampaignEmail{
				CampaignID:   campaign.ID,
				UserID:       req.UserID,
				EmailAddress: addr,
				Provider:     provider,
			})
		}
		if len(emails) > 0 {
			if err := s.campaignRepo.ReplaceEmails(txCtx, campaign.ID, emails); err != nil {
				return err
			}
		}

		if len(templates) > 0 {
			for i := range templates {
				templates[i].CampaignID = campaign.ID
			}
			if err := s.campaignRepo.ReplaceTemplates(txCtx, campaign.ID, templates); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATION_FAILED", "Campaign creation failed", err)
	}

	return &dto.CreateCampaignResponse{
		Message:   "Campaign created successfully",
		UUID:      campaign.UUID.String(),
		IsActive:  campaign.IsActive,
		CreatedAt: campaign.CreatedAt.Format(time.RFC3339),
	}, nil
}

// UpdateCampaign handles the campaign update process. Active campaigns
// are read-only for their owner.
func (s *CampaignFlowImpl) UpdateCampaign(ctx context.Context, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*dto.UpdateCampaignResponse, error) {
	if !hasCampaignUpdates(req) {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_VALIDATION_FAILED", "Campaign update validation failed", ErrCampaignUpdateRequired)
	}

	campaign, err := getCampaign(ctx, s.campaignRepo, req.UUID, req.UserID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	if !campaign.IsEditable() {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_NOT_ALLOWED", "Campaign cannot be updated while active", ErrCampaignNotEditable)
	}

	var templates []models.CampaignTemplate
	if req.Templates != nil {
		templates, err = s.resolveTemplateRefs(ctx, req.Templates, req.UserID)
		if err != nil {
			return nil, NewBusinessError("CAMPAIGN_TEMPLATE_LOOKUP_FAILED", "Failed to lookup campaign templates", err)
		}
	}

	applyCampaignUpdates(campaign, req)
	campaign.UpdatedAt = utils.UTCNowPtr()

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.campaignRepo.Update(txCtx, *campaign); err != nil {
			return err
		}

		if req.SenderEmails != nil {
			provider := "smtp"
			if req.EmailProvider != nil {
				provider = *req.EmailProvider
			} else if len(campaign.Emails) > 0 {
				provider = campaign.Emails[0].Provider
			}

			emails := make([]models.CampaignEmail, 0, len(req.SenderEmails))
			for _, addr := range req.SenderEmails {
				emails = append(emails, models.CampaignEmail{
					CampaignID:   campaign.ID,
					UserID:       req.UserID,
					EmailAddress: addr,
					Provider:     provider,
				})
			}
			if err := s.campaignRepo.ReplaceEmails(txCtx, campaign.ID, emails); err != nil {
				return err
			}
		}

		if req.Templates != nil {
			for i := range templates {
				templates[i].CampaignID = campaign.ID
			}
			if err := s.campaignRepo.ReplaceTemplates(txCtx, campaign.ID, templates); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Campaign update failed", err)
	}

	return &dto.UpdateCampaignResponse{Message: "Campaign updated successfully"}, nil
}

// GetCampaign returns a single campaign with its sender and template relations
func (s *CampaignFlowImpl) GetCampaign(ctx context.Context, req *dto.GetCampaignRequest) (*dto.GetCampaignResponse, error) {
	campaign, err := getCampaign(ctx, s.campaignRepo, req.UUID, req.UserID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	resp := toCampaignDTO(campaign)
	return &resp, nil
}

// ListCampaigns returns the caller's campaigns, newest first
func (s *CampaignFlowImpl) ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	filter := models.CampaignFilter{
		UserID:   &req.UserID,
		Name:     req.Name,
		IsActive: req.Active,
	}

	campaigns, err := s.campaignRepo.ByFilter(ctx, filter, "created_at DESC", limit, req.Offset)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}

	total, err := s.campaignRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to count campaigns", err)
	}

	items := make([]dto.GetCampaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		items = append(items, toCampaignDTO(c))
	}

	return &dto.ListCampaignsResponse{Items: items, Total: int(total)}, nil
}

// SetCampaignActive toggles the active flag. Activation runs the validation
// gate: a location, at least one subject line, at least one sender email,
// and exactly one body template.
func (s *CampaignFlowImpl) SetCampaignActive(ctx context.Context, req *dto.SetCampaignActiveRequest, metadata *ClientMetadata) (*dto.UpdateCampaignResponse, error) {
	campaign, err := getCampaign(ctx, s.campaignRepo, req.UUID, req.UserID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	if req.Active {
		if err := campaign.Validate(); err != nil {
			return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign cannot be activated", err)
		}
	}

	if err := s.campaignRepo.SetActive(ctx, campaign.ID, req.Active); err != nil {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Failed to update campaign status", err)
	}

	msg := "Campaign deactivated successfully"
	if req.Active {
		msg = "Campaign activated successfully"
	}
	return &dto.UpdateCampaignResponse{Message: msg}, nil
}

// resolveTemplateRefs maps template UUID references to association rows,
// enforcing ownership of every referenced template.
func (s *CampaignFlowImpl) resolveTemplateRefs(ctx context.Context, refs []dto.CampaignTemplateRef, userID uuid.UUID) ([]models.CampaignTemplate, error) {
	templates := make([]models.CampaignTemplate, 0, len(refs))
	for _, ref := range refs {
		template, err := getTemplate(ctx, s.templateRepo, ref.UUID, userID)
		if err != nil {
			return nil, err
		}
		templates = append(templates, models.CampaignTemplate{
			TemplateID:   template.ID,
			UserID:       userID,
			TemplateType: models.TemplateType(ref.Type),
		})
	}
	return templates, nil
}

func hasCampaignUpdates(req *dto.UpdateCampaignRequest) bool {
	return req.Name != nil || req.City != nil || req.SenderEmails != nil ||
		req.SubjectLines != nil || req.Templates != nil || req.SenderName != nil ||
		req.SenderPhone != nil || req.SenderCity != nil || req.SenderState != nil ||
		req.DaysTillClose != nil || req.EMD != nil || req.OptionPeriod != nil ||
		req.TitleCompany != nil || req.EmailProvider != nil
}

func applyCampaignUpdates(campaign *models.Campaign, req *dto.UpdateCampaignRequest) {
	if req.Name != nil {
		campaign.Name = *req.Name
	}
	if req.City != nil {
		campaign.City = *req.City
	}
	if req.SubjectLines != nil {
		campaign.SubjectLines = pq.StringArray(req.SubjectLines)
	}
	if req.SenderName != nil {
		campaign.SenderName = *req.SenderName
	}
	if req.SenderPhone != nil {
		campaign.SenderPhone = *req.SenderPhone
	}
	if req.SenderCity != nil {
		campaign.SenderCity = *req.SenderCity
	}
	if req.SenderState != nil {
		campaign.SenderState = *req.SenderState
	}
	if req.DaysTillClose != nil {
		campaign.DaysTillClose = *req.DaysTillClose
	}
	if req.EMD != nil {
		campaign.EMD = *req.EMD
	}
	if req.OptionPeriod != nil {
		campaign.OptionPeriod = *req.OptionPeriod
	}
	if req.TitleCompany != nil {
		campaign.TitleCompany = *req.TitleCompany
	}
}
