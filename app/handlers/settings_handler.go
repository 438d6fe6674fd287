package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/realtyreach/realtyreach/app/dto"
	businessflow "github.com/realtyreach/realtyreach/business_flow"
)

// SettingsHandlerInterface defines the contract for settings handlers
type SettingsHandlerInterface interface {
	GetRapidAPISettings(c fiber.Ctx) error
	UpdateRapidAPISettings(c fiber.Ctx) error
}

// SettingsHandler handles scraper credential settings requests
type SettingsHandler struct {
	settingsFlow businessflow.SettingsFlow
	validator    *validator.Validate
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsFlow businessflow.SettingsFlow) *SettingsHandler {
	return &SettingsHandler{
		settingsFlow: settingsFlow,
		validator:    validator.New(),
	}
}

// GetRapidAPISettings handles GET /api/v1/settings/rapidapi
func (h *SettingsHandler) GetRapidAPISettings(c fiber.Ctx) error {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return nil
	}

	result, err := h.settingsFlow.GetSettings(createRequestContext(c, "/api/v1/settings/rapidapi"), userID)
	if err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Settings retrieval failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Settings retrieval failed", "SETTINGS_RETRIEVAL_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Settings retrieved successfully", result)
}

// UpdateRapidAPISettings handles PUT /api/v1/settings/rapidapi
func (h *SettingsHandler) UpdateRapidAPISettings(c fiber.Ctx) error {
	var req dto.UpdateRapidAPISettingsRequest
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

	if err := h.settingsFlow.UpdateSettings(createRequestContext(c, "/api/v1/settings/rapidapi"), &req, metadata); err != nil {
		if status, code := mapBusinessError(err); status != 0 {
			return errorResponse(c, status, err.Error(), code, nil)
		}

		log.Println("Settings update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Settings update failed", "SETTINGS_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Settings updated successfully", nil)
}
