package handlers

import (
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/realtyreach/realtyreach/app/dto"
	businessflow "github.com/realtyreach/realtyreach/business_flow"
)

// CampaignHandlerInterface defines the contract for campaign handlers
type CampaignHandlerInterface interface {
	CreateCampaign(c fiber.Ctx) error
	UpdateCampaign(c fiber.Ctx) error
	GetCampaign(c fiber.Ctx) error
	ListCampaigns(c fiber.Ctx) error
	ActivateCampaign(c fiber.Ctx) error
	DeactivateCampaign(c fiber.Ctx) error
	ListCampaignContacts(c fiber.Ctx) error
}

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	campaignFlow businessflow.CampaignFlow
	contactFlow  businessflow.ContactFlow
	validator    *validator.Validate
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignFlow businessflow.CampaignFlow, contactFlow businessflow.ContactFlow) *CampaignHandler {
	return &CampaignHandler{
		campaignFlow: campaignFlow,
		contactFlow:  contactFlow,
		validator:    validator.New(),
	}
}

// CreateCampaign handles POST /api/v1/campaigns
func (h *CampaignHandler) CreateCampaign(c fiber.Ctx) error {
	var req dto.CreateCampaignRequest
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

	result, err := h.campaignFlow.CreateCampaign(createRequestContext(c, "/api/v1/campaigns"), &req, metadata)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Campaign creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Campaign creation failed", "CAMPAIGN_CREATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Campaign created successfully", result)
}

// UpdateCampaign handles PUT /api/v1/campaigns/:uuid
func (h *CampaignHandler) UpdateCampaign(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	var req dto.UpdateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = campaignUUID

	if !validateStruct(c, h.validator, &req) {
		return nil
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}
	req.UserID = userID

	metadata := clientMetadata(c)

	result, err := h.campaignFlow.UpdateCampaign(createRequestContext(c, "/api/v1/campaigns/"+campaignUUID), &req, metadata)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Campaign update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Campaign update failed", "CAMPAIGN_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Campaign updated successfully", result)
}

// GetCampaign handles GET /api/v1/campaigns/:uuid
func (h *CampaignHandler) GetCampaign(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}

	req := dto.GetCampaignRequest{UUID: campaignUUID, UserID: userID}

	result, err := h.campaignFlow.GetCampaign(createRequestContext(c, "/api/v1/campaigns/"+campaignUUID), &req)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Campaign retrieval failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Campaign retrieval failed", "CAMPAIGN_RETRIEVAL_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Campaign retrieved successfully", result)
}

// ListCampaigns handles GET /api/v1/campaigns
func (h *CampaignHandler) ListCampaigns(c fiber.Ctx) error {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}

	req := dto.ListCampaignsRequest{UserID: userID}
	if name := c.Query("name"); name != "" {
		req.Name = &name
	}
	if activeStr := c.Query("active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid active filter", "INVALID_QUERY", nil)
		}
		req.Active = &active
	}
	req.Limit = queryInt(c, "limit", 0)
	req.Offset = queryInt(c, "offset", 0)

	if !validateStruct(c, h.validator, &req) {
		return nil
	}

	result, err := h.campaignFlow.ListCampaigns(createRequestContext(c, "/api/v1/campaigns"), &req)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Campaign listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Campaign listing failed", "CAMPAIGN_LISTING_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", result)
}

// ActivateCampaign handles POST /api/v1/campaigns/:uuid/activate
func (h *CampaignHandler) ActivateCampaign(c fiber.Ctx) error {
	return h.setActive(c, true)
}

// DeactivateCampaign handles POST /api/v1/campaigns/:uuid/deactivate
func (h *CampaignHandler) DeactivateCampaign(c fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *CampaignHandler) setActive(c fiber.Ctx, active bool) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}

	req := dto.SetCampaignActiveRequest{UUID: campaignUUID, UserID: userID, Active: active}
	metadata := clientMetadata(c)

	result, err := h.campaignFlow.SetCampaignActive(createRequestContext(c, "/api/v1/campaigns/"+campaignUUID), &req, metadata)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Campaign activation change failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Campaign activation change failed", "CAMPAIGN_ACTIVATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// ListCampaignContacts handles GET /api/v1/campaigns/:uuid/contacts
func (h *CampaignHandler) ListCampaignContacts(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}

	req := dto.ListCampaignContactsRequest{
		UUID:   campaignUUID,
		UserID: userID,
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}

	if !validateStruct(c, h.validator, &req) {
		return nil
	}

	result, err := h.contactFlow.ListCampaignContacts(createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/contacts"), &req)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Contact listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Contact listing failed", "CONTACT_LISTING_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Contacts retrieved successfully", result)
}
