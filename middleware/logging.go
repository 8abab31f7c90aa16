package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/lizet96/hospital-appointments/models"
	"github.com/rs/zerolog"
)

const LocalRequestID = "request_id"

// LogSink persists audit entries
type LogSink interface {
	SaveLog(ctx context.Context, entry models.CreateLogRequest) error
}

// Auditor records every HTTP request and selected domain events. Entries
// are written in the background so a slow log table never delays a
// response.
type Auditor struct {
	sink        LogSink
	logger      zerolog.Logger
	environment string
}

// NewAuditor builds an auditor. A nil sink only logs through zerolog.
func NewAuditor(sink LogSink, logger zerolog.Logger, environment string) *Auditor {
	if environment == "" {
		environment = models.EnvironmentDevelopment
	}
	return &Auditor{sink: sink, logger: logger, environment: environment}
}

// Middleware tags the request with an id and logs it once it completes
func (a *Auditor) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := utils.CopyString(c.Get(fiber.HeaderXRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(LocalRequestID, requestID)
		c.Set(fiber.HeaderXRequestID, requestID)

		err := c.Next()

		entry := a.createLogEntry(c, requestID, int(time.Since(start).Milliseconds()))
		a.save(entry)
		return err
	}
}

// createLogEntry must run inside the handler goroutine: fiber reuses the
// context once the handler returns.
func (a *Auditor) createLogEntry(c *fiber.Ctx, requestID string, responseTime int) models.CreateLogRequest {
	entry := models.CreateLogRequest{
		RequestID:    requestID,
		Method:       utils.CopyString(c.Method()),
		Path:         utils.CopyString(c.Path()),
		StatusCode:   c.Response().StatusCode(),
		ResponseTime: &responseTime,
		IP:           clientIP(c),
		LogLevel:     determineLogLevel(c.Response().StatusCode()),
		Environment:  a.environment,
	}

	if email := Email(c); email != "" {
		entry.Email = &email
	}
	if role := Role(c); role != "" {
		entry.Role = &role
	}
	if ua := utils.CopyString(c.Get(fiber.HeaderUserAgent)); ua != "" {
		entry.UserAgent = &ua
	}

	switch c.Method() {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		if body := string(c.Body()); body != "" {
			body = filterSensitiveData(body)
			entry.Body = &body
		}
	}

	if params := c.AllParams(); len(params) > 0 {
		paramsJSON, _ := json.Marshal(params)
		s := string(paramsJSON)
		entry.Params = &s
	}
	if q := string(c.Request().URI().QueryString()); q != "" {
		entry.Query = &q
	}
	return entry
}

func clientIP(c *fiber.Ctx) string {
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return utils.CopyString(realIP)
	}
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		return utils.CopyString(strings.TrimSpace(strings.Split(forwarded, ",")[0]))
	}
	return c.IP()
}

var sensitiveFields = []string{"password", "mfa_code", "code", "secret", "token"}

// filterSensitiveData masks credentials in a JSON body and truncates it
func filterSensitiveData(body string) string {
	const maxLen = 1000

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		if len(body) > maxLen {
			return body[:maxLen] + "...[truncated]"
		}
		return body
	}

	for _, field := range sensitiveFields {
		if _, exists := data[field]; exists {
			data[field] = "[FILTERED]"
		}
	}

	filtered, _ := json.Marshal(data)
	if len(filtered) > maxLen {
		return string(filtered[:maxLen]) + "...[truncated]"
	}
	return string(filtered)
}

func determineLogLevel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return models.LogLevelSuccess
	case statusCode >= 300 && statusCode < 400:
		return models.LogLevelInfo
	case statusCode >= 400 && statusCode < 500:
		return models.LogLevelWarning
	case statusCode >= 500:
		return models.LogLevelError
	default:
		return models.LogLevelInfo
	}
}

// Event records a domain event for the authenticated caller
func (a *Auditor) Event(c *fiber.Ctx, level, message string, data map[string]interface{}) {
	if a == nil {
		return
	}
	payload := map[string]interface{}{"message": message}
	for k, v := range data {
		payload[k] = v
	}
	bodyJSON, _ := json.Marshal(payload)
	body := string(bodyJSON)

	entry := models.CreateLogRequest{
		Method:      "EVENT",
		Path:        utils.CopyString(c.Path()),
		StatusCode:  fiber.StatusOK,
		IP:          clientIP(c),
		Body:        &body,
		LogLevel:    level,
		Environment: a.environment,
	}
	if id, ok := c.Locals(LocalRequestID).(string); ok {
		entry.RequestID = id
	}
	if email := Email(c); email != "" {
		entry.Email = &email
	}
	if role := Role(c); role != "" {
		entry.Role = &role
	}

	a.logger.Info().Str("request_id", entry.RequestID).Str("level", level).
		Fields(data).Msg(message)
	a.save(entry)
}

func (a *Auditor) save(entry models.CreateLogRequest) {
	if a.sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.sink.SaveLog(ctx, entry); err != nil {
			a.logger.Error().Err(err).Str("path", entry.Path).Msg("failed to save audit log")
		}
	}()
}
