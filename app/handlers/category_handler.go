package handlers

import (
	"errors"

	"github.com/amirphl/taskserial/app/dto"
	businessflow "github.com/amirphl/taskserial/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// CategoryHandlerInterface defines the contract for task category handlers
type CategoryHandlerInterface interface {
	Create(c fiber.Ctx) error
	AssignPrefix(c fiber.Ctx) error
}

// CategoryHandler handles task category writes
type CategoryHandler struct {
	categoryFlow businessflow.CategoryFlow
	validator    *validator.Validate
	logger       logrus.FieldLogger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryFlow businessflow.CategoryFlow, logger logrus.FieldLogger) *CategoryHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CategoryHandler{
		categoryFlow: categoryFlow,
		validator:    newValidator(),
		logger:       logger,
	}
}

func (h *CategoryHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CategoryHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create stores a new task category
// @Summary Create Task Category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCategoryRequest true "Category"
// @Success 201 {object} dto.APIResponse{data=dto.CategoryDTO} "Category created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Prefix already taken"
// @Failure 503 {object} dto.APIResponse "Store unavailable"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.validationError(c, err)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/categories")
	defer cancel()

	category, err := h.categoryFlow.CreateCategory(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Category created", category)
}

// AssignPrefix sets or replaces the prefix of a category
// @Summary Assign Category Prefix
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body dto.AssignPrefixRequest true "Prefix"
// @Success 200 {object} dto.APIResponse{data=dto.CategoryDTO} "Prefix assigned"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Category not found"
// @Failure 409 {object} dto.APIResponse "Prefix already taken"
// @Failure 503 {object} dto.APIResponse "Store unavailable"
// @Router /api/v1/categories/{id}/prefix [put]
func (h *CategoryHandler) AssignPrefix(c fiber.Ctx) error {
	var req dto.AssignPrefixRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.validationError(c, err)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/categories/:id/prefix")
	defer cancel()

	category, err := h.categoryFlow.AssignPrefix(ctx, c.Params("id"), &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Prefix assigned", category)
}

func (h *CategoryHandler) flowError(c fiber.Ctx, err error) error {
	status, code, message := flowErrorStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.Path()).Error("Category request failed")
	}
	setRetryAfter(c, err)
	return h.ErrorResponse(c, status, message, code, nil)
}

func (h *CategoryHandler) validationError(c fiber.Ctx, err error) error {
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
