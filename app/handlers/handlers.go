// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	businessflow "github.com/amirphl/taskserial/business_flow"
	"github.com/amirphl/taskserial/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// requestTimeout leaves room for the allocation transaction and the retries around it
const requestTimeout = 30 * time.Second

// conflictRetryAfterSeconds is sent with 409 responses caused by a lost allocation race
const conflictRetryAfterSeconds = 1

// newValidator builds the request validator shared by all handlers
func newValidator() *validator.Validate {
	v := validator.New()
	setupCustomValidations(v)
	return v
}

func setupCustomValidations(v *validator.Validate) {
	// Prefixes are accepted in any case and with surrounding spaces; the flows normalize them
	_ = v.RegisterValidation("serial_prefix", func(fl validator.FieldLevel) bool {
		return utils.IsValidPrefix(utils.NormalizePrefix(fl.Field().String()))
	})
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "uuid":
		return err.Field() + " must be a valid UUID"
	case "serial_prefix":
		return fmt.Sprintf("%s must be 1-%d characters of A-Z and 0-9", err.Field(), utils.PrefixMaxLength)
	default:
		return err.Field() + " is invalid"
	}
}

// flowErrorStatus maps a business flow error onto an HTTP status, an error code and a message
func flowErrorStatus(err error) (int, string, string) {
	kind := businessflow.KindOf(err)
	switch kind {
	case businessflow.KindInvalidFormat:
		return fiber.StatusBadRequest, kind.String(), err.Error()
	case businessflow.KindNotFound:
		if businessflow.IsInvalidCategoryID(err) {
			return fiber.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found: malformed category ID"
		}
		return fiber.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found"
	case businessflow.KindPrefixNotAssigned:
		return fiber.StatusUnprocessableEntity, kind.String(), "Category has no prefix assigned"
	case businessflow.KindPrefixTaken:
		return fiber.StatusConflict, kind.String(), "Prefix is already assigned to another category"
	case businessflow.KindSerializationConflict:
		return fiber.StatusConflict, kind.String(), "Concurrent allocation conflict, please retry"
	case businessflow.KindStoreUnavailable:
		return fiber.StatusServiceUnavailable, kind.String(), "Sequence store is unavailable"
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR", "An internal server error occurred"
	}
}

// setRetryAfter advertises a retry delay for conflicts the client is expected to retry
func setRetryAfter(c fiber.Ctx, err error) {
	if businessflow.IsSerializationConflict(err) {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(conflictRetryAfterSeconds))
	}
}

// clientMetadata collects the caller details passed down to the flows
func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(requestid.FromContext(c))
	if subject, ok := c.Locals("subject").(string); ok {
		metadata.SetSubject(subject)
	}
	return metadata
}

func createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	return createRequestContextWithTimeout(c, endpoint, requestTimeout)
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestid.FromContext(c))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx, cancel
}
