package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/realtyreach/realtyreach/app/dto"
	businessflow "github.com/realtyreach/realtyreach/business_flow"
	"github.com/realtyreach/realtyreach/utils"
)

// FunctionHandlerInterface defines the contract for the pipeline function endpoints
type FunctionHandlerInterface interface {
	ScrapeAgents(c fiber.Ctx) error
	ProcessCampaign(c fiber.Ctx) error
	ProcessOutbox(c fiber.Ctx) error
	ProcessJobQueue(c fiber.Ctx) error
	SendEmail(c fiber.Ctx) error
	ReplaceTemplateVariables(c fiber.Ctx) error
	FetchAgentDetails(c fiber.Ctx) error
	ExportContacts(c fiber.Ctx) error
}

// FunctionHandler handles the pipeline function endpoints. Each endpoint is a
// single synchronous unit of work; batching and scheduling live in the job queue.
type FunctionHandler struct {
	scrapeFlow    businessflow.ScrapeFlow
	generatorFlow businessflow.GeneratorFlow
	outboxFlow    businessflow.OutboxFlow
	jobQueueFlow  businessflow.JobQueueFlow
	templateFlow  businessflow.TemplateFlow
	contactFlow   businessflow.ContactFlow
	validator     *validator.Validate
}

// NewFunctionHandler creates a new pipeline function handler
func NewFunctionHandler(
	scrapeFlow businessflow.ScrapeFlow,
	generatorFlow businessflow.GeneratorFlow,
	outboxFlow businessflow.OutboxFlow,
	jobQueueFlow businessflow.JobQueueFlow,
	templateFlow businessflow.TemplateFlow,
	contactFlow businessflow.ContactFlow,
) *FunctionHandler {
	return &FunctionHandler{
		scrapeFlow:    scrapeFlow,
		generatorFlow: generatorFlow,
		outboxFlow:    outboxFlow,
		jobQueueFlow:  jobQueueFlow,
		templateFlow:  templateFlow,
		contactFlow:   contactFlow,
		validator:     validator.New(),
	}
}

// ScrapeAgents handles POST /functions/v1/scrape-agents
func (h *FunctionHandler) ScrapeAgents(c fiber.Ctx) error {
	var req dto.ScrapeAgentsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if !validateStruct(c, h.validator, &req) {
		return nil
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}
	req.UserID = userID

	metadata := clientMetadata(c)

	// Scrapes page through an external API; give them more room than the default.
	ctx := createRequestContextWithTimeout(c, "/functions/v1/scrape-agents", utils.ScrapeRequestTimeout)
	result, err := h.scrapeFlow.ScrapeAgents(ctx, &req, metadata)
	if err != nil {
		if businessflow.IsRateLimited(err) && result != nil {
			// Partial progress is preserved; the caller retries later for the rest.
			return successResponse(c, fiber.StatusOK, "Scrape stopped early: upstream rate limit", result)
		}
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Agent scrape failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Agent scrape failed", "SCRAPE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Agents scraped successfully", result)
}

// ProcessCampaign handles POST /functions/v1/process-campaign
func (h *FunctionHandler) ProcessCampaign(c fiber.Ctx) error {
	var req dto.ProcessCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if !validateStruct(c, h.validator, &req) {
		return nil
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}
	req.UserID = userID

	metadata := clientMetadata(c)

	ctx := createRequestContextWithTimeout(c, "/functions/v1/process-campaign", utils.ScrapeRequestTimeout)
	result, err := h.generatorFlow.ProcessCampaign(ctx, &req, metadata)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Campaign processing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Campaign processing failed", "PROCESS_CAMPAIGN_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Campaign processed successfully", result)
}

// ProcessOutbox handles POST /functions/v1/process-outbox
func (h *FunctionHandler) ProcessOutbox(c fiber.Ctx) error {
	var req dto.ProcessOutboxRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if !validateStruct(c, h.validator, &req) {
		return nil
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}
	req.UserID = userID

	metadata := clientMetadata(c)

	ctx := createRequestContextWithTimeout(c, "/functions/v1/process-outbox", utils.DispatchRequestTimeout)
	result, err := h.outboxFlow.ProcessOutbox(ctx, &req, metadata)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Outbox processing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Outbox processing failed", "PROCESS_OUTBOX_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Outbox processed successfully", result)
}

// ProcessJobQueue handles POST /functions/v1/process-job-queue
func (h *FunctionHandler) ProcessJobQueue(c fiber.Ctx) error {
	var req dto.ProcessJobQueueRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if !validateStruct(c, h.validator, &req) {
		return nil
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}
	// Over HTTP the queue is always drained for the caller only; the
	// unscoped path is reserved for the background runner.
	req.UserID = &userID

	metadata := clientMetadata(c)

	ctx := createRequestContextWithTimeout(c, "/functions/v1/process-job-queue", utils.ScrapeRequestTimeout)
	result, err := h.jobQueueFlow.ProcessJobQueue(ctx, &req, metadata)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Job queue processing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Job queue processing failed", "PROCESS_JOB_QUEUE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Job queue processed successfully", result)
}

// SendEmail handles POST /functions/v1/send-email
func (h *FunctionHandler) SendEmail(c fiber.Ctx) error {
	var req dto.SendEmailRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if !validateStruct(c, h.validator, &req) {
		return nil
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}
	req.UserID = userID

	metadata := clientMetadata(c)

	result, err := h.outboxFlow.SendEmail(createRequestContext(c, "/functions/v1/send-email"), &req, metadata)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Email send failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Email send failed", "SEND_EMAIL_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Email sent successfully", result)
}

// ReplaceTemplateVariables handles POST /functions/v1/replace-template-variables
func (h *FunctionHandler) ReplaceTemplateVariables(c fiber.Ctx) error {
	var req dto.ReplaceTemplateVariablesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if !validateStruct(c, h.validator, &req) {
		return nil
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}
	req.UserID = userID

	result, err := h.templateFlow.ReplaceTemplateVariables(createRequestContext(c, "/functions/v1/replace-template-variables"), &req)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Template rendering failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Template rendering failed", "RENDER_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Template rendered successfully", result)
}

// FetchAgentDetails handles POST /functions/v1/fetch-agent-details
func (h *FunctionHandler) FetchAgentDetails(c fiber.Ctx) error {
	var req dto.FetchAgentDetailsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if !validateStruct(c, h.validator, &req) {
		return nil
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}
	req.UserID = userID

	result, err := h.scrapeFlow.FetchAgentDetails(createRequestContext(c, "/functions/v1/fetch-agent-details"), &req)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Agent details fetch failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Agent details fetch failed", "FETCH_AGENT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Agent details fetched successfully", result)
}

// ExportContacts handles GET /functions/v1/export-contacts/:uuid and streams
// a spreadsheet instead of the usual JSON envelope.
func (h *FunctionHandler) ExportContacts(c fiber.Ctx) error {
	req := dto.ExportContactsRequest{CampaignID: c.Params("uuid")}
	if !validateStruct(c, h.validator, &req) {
		return nil
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}
	req.UserID = userID

	buf, filename, err := h.contactFlow.ExportContacts(createRequestContext(c, "/functions/v1/export-contacts"), &req)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Contact export failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Contact export failed", "EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
