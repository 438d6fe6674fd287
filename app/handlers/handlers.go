// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/realtyreach/realtyreach/app/dto"
	businessflow "github.com/realtyreach/realtyreach/business_flow"
	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/utils"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "uuid4":
		return err.Field() + " must be a valid UUID"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

func errorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func successResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// validateStruct runs request validation and writes the error response itself.
// Returns false when the request was rejected.
func validateStruct(c fiber.Ctx, v *validator.Validate, req any) bool {
	if err := v.Struct(req); err != nil {
		var validationErrors []string
		for _, fieldErr := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(fieldErr))
		}
		_ = errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
		return false
	}
	return true
}

// authenticatedUserID pulls the user ID the auth middleware stored in Locals.
// Returns uuid.Nil and writes the response when the request is unauthenticated.
func authenticatedUserID(c fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok || userID == uuid.Nil {
		_ = errorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
		return uuid.Nil, false
	}
	return userID, true
}

// queryInt parses an integer query parameter, falling back on absence or garbage
func queryInt(c fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// clientMetadata builds flow metadata from the request
func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		metadata.SetRequestID(requestID)
	}
	return metadata
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}

// mapBusinessError translates flow errors to HTTP status and code
func mapBusinessError(err error) (int, string) {
	switch {
	case businessflow.IsCampaignNotFound(err),
		businessflow.IsTemplateNotFound(err),
		businessflow.IsContactNotFound(err),
		businessflow.IsSettingsNotFound(err):
		return fiber.StatusNotFound, "NOT_FOUND"
	case businessflow.IsCampaignAccessDenied(err), businessflow.IsTemplateAccessDenied(err):
		return fiber.StatusForbidden, "ACCESS_DENIED"
	case businessflow.IsLockBusy(err):
		return fiber.StatusConflict, "LOCK_BUSY"
	case businessflow.IsCampaignNotEditable(err),
		businessflow.IsRateLimited(err),
		businessflow.IsNoSenderEmails(err),
		businessflow.IsCampaignUpdateRequired(err),
		errors.Is(err, businessflow.ErrCampaignNotActive),
		errors.Is(err, businessflow.ErrCampaignNameRequired),
		errors.Is(err, businessflow.ErrCampaignLocationRequired),
		errors.Is(err, models.ErrCampaignCityRequired),
		errors.Is(err, models.ErrCampaignSubjectLinesRequired),
		errors.Is(err, models.ErrCampaignSenderEmailRequired),
		errors.Is(err, models.ErrCampaignBodyTemplateRequired):
		return fiber.StatusBadRequest, "PRECONDITION_FAILED"
	default:
		return 0, ""
	}
}
