// Package businessflow contains the core business logic and use cases for job queue workflows
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/realtyreach/realtyreach/app/dto"
	"github.com/realtyreach/realtyreach/config"
	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/repository"
	"github.com/realtyreach/realtyreach/utils"
)

// JobQueueFlow executes queued pipeline jobs and reconciles stale rows
type JobQueueFlow interface {
	ProcessJobQueue(ctx context.Context, req *dto.ProcessJobQueueRequest, metadata *ClientMetadata) (*dto.ProcessJobQueueResponse, error)
	ReconcileStale(ctx context.Context) (outboxRequeued, jobsRequeued int64, err error)
}

// JobQueueFlowImpl implements the job queue business flow
type JobQueueFlowImpl struct {
	jobRepo      repository.JobRepository
	outboxRepo   repository.OutboxEmailRepository
	campaignRepo repository.CampaignRepository
	scrapeFlow   ScrapeFlow
	generator    GeneratorFlow
	outboxFlow   OutboxFlow
	pipelineCfg  config.PipelineConfig
}

// NewJobQueueFlow creates a new job queue flow instance
func NewJobQueueFlow(
	jobRepo repository.JobRepository,
	outboxRepo repository.OutboxEmailRepository,
	campaignRepo repository.CampaignRepository,
	scrapeFlow ScrapeFlow,
	generator GeneratorFlow,
	outboxFlow OutboxFlow,
	pipelineCfg config.PipelineConfig,
) JobQueueFlow {
	return &JobQueueFlowImpl{
		jobRepo:      jobRepo,
		outboxRepo:   outboxRepo,
		campaignRepo: campaignRepo,
		scrapeFlow:   scrapeFlow,
		generator:    generator,
		outboxFlow:   outboxFlow,
		pipelineCfg:  pipelineCfg,
	}
}

// ProcessJobQueue executes one batch of pending jobs, oldest first. Each job
// is claimed with a conditional status update; jobs claimed by a concurrent
// run are skipped. A job failure, including an unknown job type, marks that
// job failed and the batch continues.
func (s *JobQueueFlowImpl) ProcessJobQueue(ctx context.Context, req *dto.ProcessJobQueueRequest, metadata *ClientMetadata) (*dto.ProcessJobQueueResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = s.pipelineCfg.JobBatchSize
	}
	if limit <= 0 {
		limit = utils.MaxJobsPerRun
	}

	jobs, err := s.loadPending(ctx, req, limit)
	if err != nil {
		return nil, NewBusinessError("JOB_LOOKUP_FAILED", "Failed to load pending jobs", err)
	}

	resp := &dto.ProcessJobQueueResponse{Success: true}
	for i, job := range jobs {
		if i > 0 {
			if err := sleepCtx(ctx, s.pipelineCfg.JobDelay); err != nil {
				return resp, err
			}
		}

		claimed, err := s.jobRepo.ClaimProcessing(ctx, job.ID)
		if err != nil {
			return resp, NewBusinessError("JOB_CLAIM_FAILED", "Failed to claim job", err)
		}
		if !claimed {
			continue
		}
		resp.Processed++

		if err := s.executeJob(ctx, job, metadata); err != nil {
			resp.Failed++
			_ = s.jobRepo.MarkFailed(ctx, job.ID, err.Error())
			continue
		}

		if err := s.jobRepo.MarkCompleted(ctx, job.ID); err != nil {
			return resp, NewBusinessError("JOB_UPDATE_FAILED", "Failed to complete job", err)
		}
		resp.Successful++
	}

	return resp, nil
}

func (s *JobQueueFlowImpl) loadPending(ctx context.Context, req *dto.ProcessJobQueueRequest, limit int) ([]*models.Job, error) {
	if req.UserID == nil {
		return s.jobRepo.ListPending(ctx, limit)
	}

	filter := models.JobFilter{UserID: req.UserID, Status: utils.ToPtr(models.JobStatusPending)}
	return s.jobRepo.ByFilter(ctx, filter, "created_at ASC", limit, 0)
}

// executeJob dispatches a claimed job to the flow its type names
func (s *JobQueueFlowImpl) executeJob(ctx context.Context, job *models.Job, metadata *ClientMetadata) error {
	switch job.Type {
	case models.JobTypeScrapeAgents:
		var payload models.ScrapeAgentsPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("invalid scrape payload: %w", err)
		}
		campaignUUID, err := s.campaignUUID(ctx, payload.CampaignID)
		if err != nil {
			return err
		}
		_, err = s.scrapeFlow.ScrapeAgents(ctx, &dto.ScrapeAgentsRequest{
			CampaignID: campaignUUID,
			UserID:     job.UserID,
		}, metadata)
		return err

	case models.JobTypeProcessCampaign:
		var payload models.ProcessCampaignPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("invalid campaign payload: %w", err)
		}
		campaignUUID, err := s.campaignUUID(ctx, payload.CampaignID)
		if err != nil {
			return err
		}
		_, err = s.generator.ProcessCampaign(ctx, &dto.ProcessCampaignRequest{
			CampaignID: campaignUUID,
			UserID:     job.UserID,
		}, metadata)
		return err

	case models.JobTypeProcessOutbox:
		_, err := s.outboxFlow.ProcessOutbox(ctx, &dto.ProcessOutboxRequest{
			UserID: job.UserID,
		}, metadata)
		return err

	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobType, job.Type)
	}
}

func (s *JobQueueFlowImpl) campaignUUID(ctx context.Context, campaignID uint) (string, error) {
	campaign, err := s.campaignRepo.ByID(ctx, campaignID)
	if err != nil {
		return "", err
	}
	if campaign == nil {
		return "", ErrCampaignNotFound
	}
	return campaign.UUID.String(), nil
}

// ReconcileStale requeues outbox rows stuck in sending and jobs stuck in
// processing past their age limits, returning how many of each were reset.
func (s *JobQueueFlowImpl) ReconcileStale(ctx context.Context) (int64, int64, error) {
	sendingAge := s.pipelineCfg.StaleSendingAge
	if sendingAge <= 0 {
		sendingAge = utils.StaleSendingAge
	}
	processingAge := s.pipelineCfg.StaleProcessingAge
	if processingAge <= 0 {
		processingAge = utils.StaleProcessingAge
	}

	outboxRequeued, err := s.outboxRepo.RequeueStaleSending(ctx, utils.UTCNow().Add(-sendingAge))
	if err != nil {
		return 0, 0, NewBusinessError("RECONCILE_FAILED", "Failed to requeue stale outbox rows", err)
	}

	jobsRequeued, err := s.jobRepo.RequeueStaleProcessing(ctx, utils.UTCNow().Add(-processingAge))
	if err != nil {
		return outboxRequeued, 0, NewBusinessError("RECONCILE_FAILED", "Failed to requeue stale jobs", err)
	}

	return outboxRequeued, jobsRequeued, nil
}
