package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"yashubustudio/symptomcheck/internal/logger"
)

const (
	headerRequestID    = "X-Request-ID"
	contextRequestID   = "request_id"
	contextLanguageKey = "current_language"
	maxRequestIDLength = 128
)

// RequestID propagates a caller supplied X-Request-ID or assigns a new UUID.
func (handler *Handler) RequestID(c *fiber.Ctx) error {
	id := c.Get(headerRequestID)
	if id == "" || len(id) > maxRequestIDLength {
		id = uuid.NewString()
	}
	c.Locals(contextRequestID, id)
	c.Set(headerRequestID, id)
	return c.Next()
}

// AccessLog writes one structured entry per request once the response status is known.
func (handler *Handler) AccessLog(c *fiber.Ctx) error {
	start := time.Now()
	if chainErr := c.Next(); chainErr != nil {
		if err := c.App().ErrorHandler(c, chainErr); err != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	status := c.Response().StatusCode()
	fields := []any{
		logger.FieldRequestID, requestID(c),
		logger.FieldMethod, c.Method(),
		logger.FieldPath, c.Path(),
		logger.FieldStatus, status,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	}
	if status >= fiber.StatusInternalServerError {
		handler.logger.Errorw("request failed", fields...)
	} else {
		handler.logger.Infow("request", fields...)
	}
	return nil
}

// LanguageMiddleware resolves the response language from ?lang= or Accept-Language.
func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	language := handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
	if query := c.Query("lang"); query != "" {
		language = handler.i18n.NormalizeLanguage(query)
	}
	c.Locals(contextLanguageKey, language)
	return c.Next()
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(contextRequestID).(string)
	return id
}

func currentLanguage(c *fiber.Ctx) string {
	language, _ := c.Locals(contextLanguageKey).(string)
	return language
}
