package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/realtyreach/realtyreach/app/dto"
	businessflow "github.com/realtyreach/realtyreach/business_flow"
)

// TemplateHandlerInterface defines the contract for template handlers
type TemplateHandlerInterface interface {
	CreateTemplate(c fiber.Ctx) error
	UpdateTemplate(c fiber.Ctx) error
	GetTemplate(c fiber.Ctx) error
	ListTemplates(c fiber.Ctx) error
	DeleteTemplate(c fiber.Ctx) error
}

// TemplateHandler handles template-related HTTP requests
type TemplateHandler struct {
	templateFlow businessflow.TemplateFlow
	validator    *validator.Validate
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateFlow businessflow.TemplateFlow) *TemplateHandler {
	return &TemplateHandler{
		templateFlow: templateFlow,
		validator:    validator.New(),
	}
}

// CreateTemplate handles POST /api/v1/templates
func (h *TemplateHandler) CreateTemplate(c fiber.Ctx) error {
	var req dto.CreateTemplateRequest
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

	result, err := h.templateFlow.CreateTemplate(createRequestContext(c, "/api/v1/templates"), &req, metadata)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Template creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Template creation failed", "TEMPLATE_CREATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Template created successfully", result)
}

// UpdateTemplate handles PUT /api/v1/templates/:uuid
func (h *TemplateHandler) UpdateTemplate(c fiber.Ctx) error {
	templateUUID := c.Params("uuid")
	if templateUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Template UUID is required", "MISSING_TEMPLATE_UUID", nil)
	}

	var req dto.UpdateTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = templateUUID

	if !validateStruct(c, h.validator, &req) {
		return nil
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}
	req.UserID = userID

	metadata := clientMetadata(c)

	result, err := h.templateFlow.UpdateTemplate(createRequestContext(c, "/api/v1/templates/"+templateUUID), &req, metadata)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Template update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Template update failed", "TEMPLATE_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Template updated successfully", result)
}

// GetTemplate handles GET /api/v1/templates/:uuid
func (h *TemplateHandler) GetTemplate(c fiber.Ctx) error {
	templateUUID := c.Params("uuid")
	if templateUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Template UUID is required", "MISSING_TEMPLATE_UUID", nil)
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}

	result, err := h.templateFlow.GetTemplate(createRequestContext(c, "/api/v1/templates/"+templateUUID), templateUUID, userID)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Template retrieval failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Template retrieval failed", "TEMPLATE_RETRIEVAL_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Template retrieved successfully", result)
}

// ListTemplates handles GET /api/v1/templates
func (h *TemplateHandler) ListTemplates(c fiber.Ctx) error {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}

	limit := queryInt(c, "limit", 0)
	offset := queryInt(c, "offset", 0)

	result, err := h.templateFlow.ListTemplates(createRequestContext(c, "/api/v1/templates"), userID, limit, offset)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Template listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Template listing failed", "TEMPLATE_LISTING_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Templates retrieved successfully", result)
}

// DeleteTemplate handles DELETE /api/v1/templates/:uuid
func (h *TemplateHandler) DeleteTemplate(c fiber.Ctx) error {
	templateUUID := c.Params("uuid")
	if templateUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Template UUID is required", "MISSING_TEMPLATE_UUID", nil)
	}

	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}

	if err := h.templateFlow.DeleteTemplate(createRequestContext(c, "/api/v1/templates/"+templateUUID), templateUUID, userID); err != nil {
		if businessflow.IsTemplateInUse(err) {
			return errorResponse(c, fiber.StatusConflict, "Template is attached to a campaign", "TEMPLATE_IN_USE", nil)
		}
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Template deletion failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Template deletion failed", "TEMPLATE_DELETION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Template deleted successfully", nil)
}
