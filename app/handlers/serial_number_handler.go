package handlers

import (
	"errors"

	"github.com/amirphl/taskserial/app/dto"
	businessflow "github.com/amirphl/taskserial/business_flow"
	"github.com/amirphl/taskserial/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// SerialNumberHandlerInterface defines the contract for serial number handlers
type SerialNumberHandlerInterface interface {
	Generate(c fiber.Ctx) error
	Validate(c fiber.Ctx) error
	CheckPrefixUniqueness(c fiber.Ctx) error
	SuggestPrefix(c fiber.Ctx) error
}

// SerialNumberHandler serves serial number allocation and prefix lookups
type SerialNumberHandler struct {
	serialFlow businessflow.SerialNumberFlow
	registry   businessflow.PrefixRegistry
	validator  *validator.Validate
	logger     logrus.FieldLogger
}

// NewSerialNumberHandler creates a new serial number handler
func NewSerialNumberHandler(serialFlow businessflow.SerialNumberFlow, registry businessflow.PrefixRegistry, logger logrus.FieldLogger) *SerialNumberHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SerialNumberHandler{
		serialFlow: serialFlow,
		registry:   registry,
		validator:  newValidator(),
		logger:     logger,
	}
}

func (h *SerialNumberHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *SerialNumberHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *SerialNumberHandler) flowError(c fiber.Ctx, err error) error {
	status, code, message := flowErrorStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.Path()).Error("Serial number request failed")
	}
	setRetryAfter(c, err)
	return h.ErrorResponse(c, status, message, code, nil)
}

// Generate allocates the next serial number for a prefix or for a category's prefix
// @Summary Generate Serial Number
// @Description Allocate the next PREFIX-NNNNN serial number. Send exactly one of prefix and category_id.
// @Tags Serial Numbers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenerateSerialNumberRequest true "Prefix or category"
// @Success 201 {object} dto.APIResponse{data=dto.GenerateSerialNumberResponse} "Serial number allocated"
// @Failure 400 {object} dto.APIResponse "Invalid prefix or request"
// @Failure 404 {object} dto.APIResponse "Category not found"
// @Failure 409 {object} dto.APIResponse "Allocation conflict, retry later"
// @Failure 422 {object} dto.APIResponse "Category has no prefix"
// @Failure 503 {object} dto.APIResponse "Sequence store unavailable"
// @Router /api/v1/serial-numbers [post]
func (h *SerialNumberHandler) Generate(c fiber.Ctx) error {
	var req dto.GenerateSerialNumberRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.validationError(c, err)
	}

	if (req.Prefix == nil) == (req.CategoryID == nil) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Exactly one of prefix and category_id is required", "VALIDATION_ERROR", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/serial-numbers")
	defer cancel()

	var (
		serial string
		err    error
	)
	if req.Prefix != nil {
		serial, err = h.serialFlow.GenerateSerialNumber(ctx, *req.Prefix)
	} else {
		serial, err = h.serialFlow.GenerateForCategory(ctx, *req.CategoryID)
	}
	if err != nil {
		return h.flowError(c, err)
	}

	sn, _ := utils.ParseSerialNumber(serial)
	return h.SuccessResponse(c, fiber.StatusCreated, "Serial number generated", dto.GenerateSerialNumberResponse{
		SerialNumber: serial,
		Prefix:       sn.Prefix,
		Number:       sn.Number,
	})
}

// Validate checks whether a string is a well-formed serial number
// @Summary Validate Serial Number
// @Tags Serial Numbers
// @Accept json
// @Produce json
// @Param request body dto.ValidateSerialNumberRequest true "Serial number"
// @Success 200 {object} dto.APIResponse{data=dto.ValidateSerialNumberResponse} "Validation result"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Router /api/v1/serial-numbers/validate [post]
func (h *SerialNumberHandler) Validate(c fiber.Ctx) error {
	var req dto.ValidateSerialNumberRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.validationError(c, err)
	}

	res := dto.ValidateSerialNumberResponse{SerialNumber: req.SerialNumber}
	if sn, ok := utils.ParseSerialNumber(req.SerialNumber); ok {
		res.Valid = true
		res.Prefix = utils.ToPtr(sn.Prefix)
		res.Number = utils.ToPtr(sn.Number)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Serial number checked", res)
}

// CheckPrefixUniqueness reports whether a prefix is still free
// @Summary Check Prefix Uniqueness
// @Tags Prefixes
// @Produce json
// @Param prefix path string true "Candidate prefix"
// @Success 200 {object} dto.APIResponse{data=dto.PrefixUniquenessResponse} "Uniqueness result"
// @Failure 400 {object} dto.APIResponse "Invalid prefix"
// @Failure 503 {object} dto.APIResponse "Store unavailable"
// @Router /api/v1/prefixes/{prefix}/uniqueness [get]
func (h *SerialNumberHandler) CheckPrefixUniqueness(c fiber.Ctx) error {
	prefix := utils.NormalizePrefix(c.Params("prefix"))
	if !utils.IsValidPrefix(prefix) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Prefix must be 1-5 characters of A-Z and 0-9", businessflow.KindInvalidFormat.String(), nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/prefixes/:prefix/uniqueness")
	defer cancel()

	unique, err := h.serialFlow.CheckPrefixUniqueness(ctx, prefix)
	if err != nil {
		return h.flowError(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Prefix checked", dto.PrefixUniquenessResponse{
		Prefix:   prefix,
		IsUnique: unique,
	})
}

// SuggestPrefix proposes a free prefix for a category
// @Summary Suggest Category Prefix
// @Tags Prefixes
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} dto.APIResponse{data=dto.PrefixSuggestionResponse} "Suggested prefix"
// @Failure 404 {object} dto.APIResponse "Category not found"
// @Failure 503 {object} dto.APIResponse "Store unavailable"
// @Router /api/v1/categories/{id}/prefix-suggestion [get]
func (h *SerialNumberHandler) SuggestPrefix(c fiber.Ctx) error {
	categoryID := c.Params("id")

	ctx, cancel := createRequestContext(c, "/api/v1/categories/:id/prefix-suggestion")
	defer cancel()

	suggestion, err := h.registry.SuggestPrefix(ctx, categoryID)
	if err != nil {
		return h.flowError(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Prefix suggested", dto.PrefixSuggestionResponse{
		CategoryID:   categoryID,
		CategoryName: suggestion.CategoryName,
		Prefix:       suggestion.Prefix,
		IsUnique:     suggestion.IsUnique,
	})
}

func (h *SerialNumberHandler) validationError(c fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			details = append(details, getValidationErrorMessage(fieldErr))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", details)
	}
	return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
}
