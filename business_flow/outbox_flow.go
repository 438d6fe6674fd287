// Package businessflow contains the core business logic and use cases for email dispatch workflows
package businessflow

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/realtyreach/realtyreach/app/dto"
	"github.com/realtyreach/realtyreach/app/services"
	"github.com/realtyreach/realtyreach/config"
	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/repository"
	"github.com/realtyreach/realtyreach/utils"
)

// OutboxFlow handles outbound email dispatch
type OutboxFlow interface {
	ProcessOutbox(ctx context.Context, req *dto.ProcessOutboxRequest, metadata *ClientMetadata) (*dto.ProcessOutboxResponse, error)
	SendEmail(ctx context.Context, req *dto.SendEmailRequest, metadata *ClientMetadata) (*dto.SendEmailResponse, error)
}

// OutboxFlowImpl implements the dispatch business flow
type OutboxFlowImpl struct {
	outboxRepo  repository.OutboxEmailRepository
	sentRepo    repository.SentEmailRepository
	registry    *services.EmailSenderRegistry
	rc          *redis.Client
	db          *gorm.DB
	emailCfg    config.EmailConfig
	pipelineCfg config.PipelineConfig
}

// NewOutboxFlow creates a new outbox flow instance
func NewOutboxFlow(
	outboxRepo repository.OutboxEmailRepository,
	sentRepo repository.SentEmailRepository,
	registry *services.EmailSenderRegistry,
	rc *redis.Client,
	db *gorm.DB,
	emailCfg config.EmailConfig,
	pipelineCfg config.PipelineConfig,
) OutboxFlow {
	return &OutboxFlowImpl{
		outboxRepo:  outboxRepo,
		sentRepo:    sentRepo,
		registry:    registry,
		rc:          rc,
		db:          db,
		emailCfg:    emailCfg,
		pipelineCfg: pipelineCfg,
	}
}

// ProcessOutbox drains one batch of a user's pending outbox rows, oldest
// first. Each row is claimed with a conditional status update before the
// send; rows claimed by a concurrent run are skipped. A successful send
// moves the row to the sent archive and deletes it from the outbox in one
// transaction, so a dispatched email exists in exactly one of the two
// tables. Failures keep the row with status failed; there is no implicit
// retry.
func (s *OutboxFlowImpl) ProcessOutbox(ctx context.Context, req *dto.ProcessOutboxRequest, metadata *ClientMetadata) (*dto.ProcessOutboxResponse, error) {
	release, err := acquireLock(ctx, s.rc, utils.DispatchLockKeyPrefix+req.UserID.String(), utils.DispatchLockTTL)
	if err != nil {
		if IsLockBusy(err) {
			return nil, NewBusinessError("DISPATCH_LOCK_BUSY", "Another dispatch run is in progress", err)
		}
		return nil, err
	}
	defer release()

	limit := req.Limit
	if limit <= 0 {
		limit = s.pipelineCfg.DispatchBatchSize
	}
	if limit <= 0 {
		limit = utils.MaxEmailsPerDispatch
	}

	rows, err := s.outboxRepo.ListPending(ctx, req.UserID, limit)
	if err != nil {
		return nil, NewBusinessError("OUTBOX_LOOKUP_FAILED", "Failed to load pending emails", err)
	}

	resp := &dto.ProcessOutboxResponse{Success: true}
	for i, row := range rows {
		if i > 0 {
			if err := sleepCtx(ctx, s.pipelineCfg.DispatchDelay); err != nil {
				return resp, err
			}
		}

		claimed, err := s.outboxRepo.ClaimSending(ctx, row.ID)
		if err != nil {
			return resp, NewBusinessError("OUTBOX_CLAIM_FAILED", "Failed to claim outbox email", err)
		}
		if !claimed {
			continue
		}
		resp.Processed++

		if err := s.dispatchOne(ctx, row); err != nil {
			resp.Failed++
			_ = s.outboxRepo.MarkFailed(ctx, row.ID, err.Error())
			continue
		}
		resp.Successful++
	}

	return resp, nil
}

// dispatchOne sends a claimed outbox row and archives it on success
func (s *OutboxFlowImpl) dispatchOne(ctx context.Context, row *models.OutboxEmail) error {
	sender, err := s.registry.Resolve(s.providerOf(row))
	if err != nil {
		return err
	}

	attachments, err := row.DecodeAttachments()
	if err != nil {
		return err
	}

	messageID, err := sender.Send(ctx, services.EmailMessage{
		From:        row.FromEmail,
		To:          row.ToEmail,
		Subject:     row.Subject,
		HTMLBody:    row.Body,
		ReplyToID:   row.ReplyToID,
		Attachments: attachments,
	})
	if err != nil {
		return err
	}

	sent := &models.SentEmail{
		UserID:      row.UserID,
		CampaignID:  row.CampaignID,
		ContactID:   row.ContactID,
		FromEmail:   row.FromEmail,
		ToEmail:     row.ToEmail,
		Subject:     row.Subject,
		Body:        row.Body,
		Provider:    s.providerOf(row),
		ReplyToID:   row.ReplyToID,
		MessageID:   messageID,
		Attachments: row.Attachments,
		SentAt:      utils.UTCNow(),
	}
	if err := sent.BeforeCreate(); err != nil {
		return err
	}

	return repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.sentRepo.Save(txCtx, sent); err != nil {
			return err
		}
		return s.outboxRepo.Delete(txCtx, row.ID)
	})
}

// SendEmail delivers a single email immediately, bypassing the outbox
func (s *OutboxFlowImpl) SendEmail(ctx context.Context, req *dto.SendEmailRequest, metadata *ClientMetadata) (*dto.SendEmailResponse, error) {
	provider := s.emailCfg.DefaultProvider
	if req.Provider != nil {
		provider = *req.Provider
	}

	sender, err := s.registry.Resolve(provider)
	if err != nil {
		return nil, NewBusinessError("EMAIL_PROVIDER_UNKNOWN", "Unknown email provider", err)
	}

	replyTo := ""
	if req.ReplyToID != nil {
		replyTo = *req.ReplyToID
	}

	messageID, err := sender.Send(ctx, services.EmailMessage{
		From:        req.From,
		To:          req.To,
		Subject:     req.Subject,
		HTMLBody:    req.HTML,
		ReplyToID:   replyTo,
		Attachments: req.Attachments,
	})
	if err != nil {
		return nil, NewBusinessError("EMAIL_SEND_FAILED", "Failed to send email", err)
	}

	return &dto.SendEmailResponse{Success: true, MessageID: messageID}, nil
}

func (s *OutboxFlowImpl) providerOf(row *models.OutboxEmail) string {
	if row.Provider != "" {
		return row.Provider
	}
	return s.emailCfg.DefaultProvider
}
