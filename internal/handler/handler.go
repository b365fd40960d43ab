package handler

import (
	"errors"
	"strings"
	"time"

	pkgerrors "go-inventory-po/pkg/errors"
	"go-inventory-po/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ErrorHandler renders service errors as {"message", "code", "details"}.
// 5xx responses hide the cause from the client and log the full chain.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			// Bodies over the server limit are rejected before routing.
			if fe.Code == fiber.StatusRequestEntityTooLarge {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"message": "request body exceeds the upload limit",
					"code":    pkgerrors.CodeValidation,
				})
			}
			return c.Status(fe.Code).JSON(fiber.Map{
				"message": fe.Message,
				"code":    fiberErrorCode(fe.Code),
			})
		}

		typed := pkgerrors.As(err)
		if typed == nil {
			typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
		}
		meta := pkgerrors.MetadataFor(typed.Code())

		message := meta.PublicMessage
		if meta.ExposeMessage && typed.Message() != "" {
			message = typed.Message()
		}
		body := fiber.Map{"message": message, "code": typed.Code()}
		if meta.DetailsAllowed && typed.Details() != nil {
			body["details"] = typed.Details()
		}

		if meta.HTTPStatus >= fiber.StatusInternalServerError {
			log.ErrorFields(c.UserContext(), "request failed", err, map[string]any{
				"status": meta.HTTPStatus,
				"chain":  pkgerrors.Chain(err),
			})
		}
		return c.Status(meta.HTTPStatus).JSON(body)
	}
}

func fiberErrorCode(status int) pkgerrors.Code {
	switch {
	case status == fiber.StatusNotFound:
		return pkgerrors.CodeNotFound
	case status < fiber.StatusInternalServerError:
		return pkgerrors.CodeValidation
	default:
		return pkgerrors.CodeInternal
	}
}

// Helper untuk parse UUID dari path param
func parseID(c *fiber.Ctx, param, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, pkgerrors.Newf(pkgerrors.CodeValidation, "Invalid %s ID", entity)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid JSON")
	}
	return nil
}

// parseTimeQuery accepts RFC 3339 timestamps or plain dates. A plain date used
// as an upper bound covers the whole day.
func parseTimeQuery(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "'%s' must be a date (YYYY-MM-DD) or an RFC 3339 timestamp", key)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}
