// Package handlers implements the HTTP endpoints. Every handler translates
// storage errors through apperr so the status code and intCode of a
// response depend only on the error kind.
package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/hospital-appointments/apperr"
	"github.com/lizet96/hospital-appointments/mailer"
	"github.com/lizet96/hospital-appointments/middleware"
	"github.com/lizet96/hospital-appointments/models"
	"github.com/lizet96/hospital-appointments/repository"
	"github.com/rs/zerolog"
)

// Handler carries the dependencies shared by all endpoints
type Handler struct {
	store    repository.Store
	tokens   *middleware.TokenIssuer
	audit    *middleware.Auditor
	mail     mailer.Sender
	logger   zerolog.Logger
	validate *validator.Validate
}

// New builds a Handler. audit and mail may be nil.
func New(store repository.Store, tokens *middleware.TokenIssuer, audit *middleware.Auditor, mail mailer.Sender, logger zerolog.Logger) *Handler {
	return &Handler{
		store:    store,
		tokens:   tokens,
		audit:    audit,
		mail:     mail,
		logger:   logger,
		validate: newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind parses the JSON body into out and validates its tags
func (h *Handler) bind(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation("invalid request body: " + err.Error())
	}
	if err := h.validate.Struct(out); err != nil {
		return apperr.Validation(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, field+" must be one of: "+fe.Param())
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		case "min":
			if fe.Kind() == reflect.Slice {
				msgs = append(msgs, field+" must contain at least "+fe.Param()+" item(s)")
			} else {
				msgs = append(msgs, field+" must be at least "+fe.Param()+" characters")
			}
		case "max":
			msgs = append(msgs, field+" must be at most "+fe.Param()+" characters")
		case "len":
			msgs = append(msgs, field+" must be exactly "+fe.Param()+" characters")
		case "gte":
			msgs = append(msgs, field+" must be greater than or equal to "+fe.Param())
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

// paramID reads a positive integer path parameter
func paramID(c *fiber.Ctx, name string) (int, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(name + " must be a positive integer")
	}
	return id, nil
}

// ownStaffID rejects a doctor or nurse acting on another staff member's
// records. Admins may act on anyone.
func ownStaffID(c *fiber.Ctx, requested int) error {
	if middleware.Role(c) == models.RoleAdmin {
		return nil
	}
	if middleware.StaffID(c) != requested {
		return fmt.Errorf("%w: records belong to another staff member", apperr.ErrForbidden)
	}
	return nil
}

// fail writes the error response for err. Storage failures are logged and
// reported without their cause.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	message := err.Error()
	if kind.IntCode == "F99" && kind.Status >= fiber.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		message = "internal server error"
	}
	if kind.IntCode == "F50" {
		h.logger.Error().Err(err).Str("path", c.Path()).Msg("sequence rolled back")
	}
	return c.Status(kind.Status).JSON(ErrorResponse{
		Error:   true,
		Message: message,
		IntCode: kind.IntCode,
	})
}

// ErrorHandler renders errors that escape a handler, including fiber's own
// 404 and 405 errors, in the same JSON shape.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		kind := apperr.KindOf(err)
		message := err.Error()
		var fe *fiber.Error
		if !errors.As(err, &fe) && kind.Status >= fiber.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			message = "internal server error"
		}
		return c.Status(kind.Status).JSON(ErrorResponse{
			Error:   true,
			Message: message,
			IntCode: kind.IntCode,
		})
	}
}
