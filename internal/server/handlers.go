package server

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"yashubustudio/symptomcheck/internal/logger"
)

type diagnoseRequest struct {
	Symptoms string `json:"symptoms" form:"symptoms"`
}

// Health answers GET /api/health.
func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Diagnose answers POST /api/diagnose with a JSON array of at most three results.
func (handler *Handler) Diagnose(c *fiber.Ctx) error {
	req, err := decodeDiagnoseRequest(c)
	if err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_request", err)
	}
	return c.JSON(handler.service.Diagnose(req.Symptoms))
}

// Explain answers POST /api/diagnose/explain with every intermediate score.
func (handler *Handler) Explain(c *fiber.Ctx) error {
	req, err := decodeDiagnoseRequest(c)
	if err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "error.invalid_request", err)
	}
	return c.JSON(handler.service.Explain(req.Symptoms))
}

// Knowledge answers GET /api/knowledge with the synonym table and condition catalog.
func (handler *Handler) Knowledge(c *fiber.Ctx) error {
	return c.JSON(handler.service.KnowledgeBase().Document())
}

func (handler *Handler) apiError(c *fiber.Ctx, status int, key string, cause error) error {
	if cause != nil {
		handler.logger.Debugw("rejected request",
			logger.FieldRequestID, requestID(c),
			logger.FieldError, cause.Error())
	}
	return c.Status(status).JSON(fiber.Map{"error": handler.i18n.Translate(currentLanguage(c), key)})
}

func (handler *Handler) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch {
		case fiberErr.Code == fiber.StatusNotFound:
			return handler.apiError(c, fiberErr.Code, "error.not_found", nil)
		case fiberErr.Code < fiber.StatusInternalServerError:
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}
	}
	handler.logger.Errorw("unhandled error",
		logger.FieldRequestID, requestID(c),
		logger.FieldError, err.Error())
	return handler.apiError(c, fiber.StatusInternalServerError, "error.internal", nil)
}

func decodeDiagnoseRequest(c *fiber.Ctx) (diagnoseRequest, error) {
	var req diagnoseRequest
	if err := c.BodyParser(&req); err != nil {
		return req, errors.Wrap(err, "decode diagnose request")
	}
	return req, nil
}
