// Package businessflow contains the core business logic and use cases for email generation workflows
package businessflow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"gorm.io/gorm"

	"github.com/realtyreach/realtyreach/app/dto"
	"github.com/realtyreach/realtyreach/config"
	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/repository"
	"github.com/realtyreach/realtyreach/utils"
)

// GeneratorFlow turns a campaign's pending contacts into rendered outbox emails
type GeneratorFlow interface {
	ProcessCampaign(ctx context.Context, req *dto.ProcessCampaignRequest, metadata *ClientMetadata) (*dto.ProcessCampaignResponse, error)
}

// GeneratorFlowImpl implements the email generation business flow
type GeneratorFlowImpl struct {
	campaignRepo repository.CampaignRepository
	contactRepo  repository.ContactRepository
	outboxRepo   repository.OutboxEmailRepository
	scrapeFlow   ScrapeFlow
	db           *gorm.DB
	pipelineCfg  config.PipelineConfig
}

// NewGeneratorFlow creates a new generator flow instance
func NewGeneratorFlow(
	campaignRepo repository.CampaignRepository,
	contactRepo repository.ContactRepository,
	outboxRepo repository.OutboxEmailRepository,
	scrapeFlow ScrapeFlow,
	db *gorm.DB,
	pipelineCfg config.PipelineConfig,
) GeneratorFlow {
	return &GeneratorFlowImpl{
		campaignRepo: campaignRepo,
		contactRepo:  contactRepo,
		outboxRepo:   outboxRepo,
		scrapeFlow:   scrapeFlow,
		db:           db,
		pipelineCfg:  pipelineCfg,
	}
}

// ProcessCampaign renders one batch of pending contacts into outbox emails.
// Sender addresses are assigned round-robin, the subject line is drawn
// uniformly at random per email, and a per-contact failure marks only that
// contact failed. Re-running on a fully processed campaign is a no-op.
func (s *GeneratorFlowImpl) ProcessCampaign(ctx context.Context, req *dto.ProcessCampaignRequest, metadata *ClientMetadata) (*dto.ProcessCampaignResponse, error) {
	campaign, err := getCampaign(ctx, s.campaignRepo, req.CampaignID, req.UserID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if !campaign.IsActive {
		return nil, NewBusinessError("CAMPAIGN_NOT_ACTIVE", "Campaign must be active to generate emails", ErrCampaignNotActive)
	}

	bodyTemplate, attachmentTemplates, err := splitTemplates(campaign)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign template configuration is invalid", err)
	}
	if len(campaign.Emails) == 0 {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign has no sender emails", ErrNoSenderEmails)
	}

	// Bootstrap: a campaign that has never been scraped gets one synchronous
	// scrape before generation. A rate-limited partial scrape still leaves
	// usable contacts behind, so only hard failures abort.
	total, err := s.contactRepo.CountByCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CONTACT_LOOKUP_FAILED", "Failed to count contacts", err)
	}
	if total == 0 {
		_, scrapeErr := s.scrapeFlow.ScrapeAgents(ctx, &dto.ScrapeAgentsRequest{
			CampaignID: req.CampaignID,
			UserID:     req.UserID,
		}, metadata)
		if scrapeErr != nil && !errors.Is(scrapeErr, ErrRateLimited) {
			return nil, NewBusinessError("SCRAPE_BOOTSTRAP_FAILED", "Bootstrap scrape failed", scrapeErr)
		}
	}

	batchSize := s.pipelineCfg.GenerationBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	contacts, err := s.contactRepo.ListPendingByCampaign(ctx, campaign.ID, batchSize)
	if err != nil {
		return nil, NewBusinessError("CONTACT_LOOKUP_FAILED", "Failed to load pending contacts", err)
	}

	var (
		emails       []*models.OutboxEmail
		processedIDs []uint
		failed       = map[uint]string{}
	)

	for i, contact := range contacts {
		sender := campaign.Emails[i%len(campaign.Emails)]

		email, err := buildOutboxEmail(campaign, contact, sender, bodyTemplate, attachmentTemplates)
		if err != nil {
			failed[contact.ID] = err.Error()
			continue
		}

		emails = append(emails, email)
		processedIDs = append(processedIDs, contact.ID)
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if len(emails) > 0 {
			if err := s.outboxRepo.SaveBatch(txCtx, emails); err != nil {
				return err
			}
		}
		for _, id := range processedIDs {
			if err := s.contactRepo.UpdateStatus(txCtx, id, models.ContactStatusProcessed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("GENERATION_FAILED", "Failed to store generated emails", err)
	}

	for id := range failed {
		_ = s.contactRepo.UpdateStatus(ctx, id, models.ContactStatusFailed)
	}

	return &dto.ProcessCampaignResponse{
		Success:       true,
		Processed:     len(processedIDs),
		EmailsCreated: len(emails),
	}, nil
}

// splitTemplates separates a campaign's template associations into the single
// required body template and the optional attachment templates.
func splitTemplates(campaign *models.Campaign) (*models.Template, []*models.Template, error) {
	var body *models.Template
	var attachments []*models.Template

	for _, ct := range campaign.Templates {
		if ct.Template == nil {
			continue
		}
		switch ct.TemplateType {
		case models.TemplateTypeBody:
			if body != nil {
				return nil, nil, models.ErrCampaignBodyTemplateRequired
			}
			body = ct.Template
		case models.TemplateTypeAttachment:
			attachments = append(attachments, ct.Template)
		}
	}

	if body == nil {
		return nil, nil, models.ErrCampaignBodyTemplateRequired
	}
	return body, attachments, nil
}

// buildOutboxEmail renders one contact's email against the campaign templates
func buildOutboxEmail(campaign *models.Campaign, contact *models.Contact, sender models.CampaignEmail, body *models.Template, attachmentTemplates []*models.Template) (*models.OutboxEmail, error) {
	if contact.Email == "" {
		return nil, fmt.Errorf("contact %s has no email address", contact.ScreenName)
	}

	vars := utils.MergeVariables(campaign.MergeFields(), contact.MergeFields())

	subject := utils.DefaultSubject
	if len(campaign.SubjectLines) > 0 {
		subject = utils.RenderTemplate(campaign.SubjectLines[rand.Intn(len(campaign.SubjectLines))], vars)
	}

	var attachmentsJSON json.RawMessage
	if len(attachmentTemplates) > 0 {
		attachments := make([]models.EmailAttachment, 0, len(attachmentTemplates))
		for _, t := range attachmentTemplates {
			rendered := utils.RenderTemplate(t.Content, vars)
			attachments = append(attachments, models.EmailAttachment{
				Filename:    t.Name + attachmentExtension(t.Format),
				ContentType: attachmentContentType(t.Format),
				Content:     base64.StdEncoding.EncodeToString([]byte(rendered)),
			})
		}
		raw, err := json.Marshal(attachments)
		if err != nil {
			return nil, fmt.Errorf("failed to encode attachments: %w", err)
		}
		attachmentsJSON = raw
	}

	email := &models.OutboxEmail{
		UserID:      campaign.UserID,
		CampaignID:  campaign.ID,
		ContactID:   contact.ID,
		FromEmail:   sender.EmailAddress,
		ToEmail:     contact.Email,
		Subject:     subject,
		Body:        utils.RenderTemplate(body.Content, vars),
		Provider:    sender.Provider,
		Attachments: attachmentsJSON,
		Status:      models.OutboxStatusPending,
	}
	if err := email.BeforeCreate(); err != nil {
		return nil, err
	}

	return email, nil
}

func attachmentExtension(format string) string {
	if format == "text" {
		return ".txt"
	}
	return ".html"
}

func attachmentContentType(format string) string {
	if format == "text" {
		return "text/plain"
	}
	return "text/html"
}
