package handlers

import (
	"errors"
	"fmt"
	"regexp"

	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	usernamePattern   = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	givenNamePattern  = regexp.MustCompile(`^\p{L}+$`)
	familyNamePattern = regexp.MustCompile(`^[\p{L} ]+$`)
)

// newValidator returns a validator that also knows the "username",
// "givenname" and "familyname" tags.
func newValidator() *validator.Validate {
	v := validator.New()
	// The tags and functions are static; registration cannot fail.
	for tag, pattern := range map[string]*regexp.Regexp{
		"username":   usernamePattern,
		"givenname":  givenNamePattern,
		"familyname": familyNamePattern,
	} {
		pattern := pattern
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return pattern.MatchString(fl.Field().String())
		})
	}
	return v
}

// bind parses the JSON body into dst and validates it. When it returns false
// the error response has already been written.
func bind(c *fiber.Ctx, validate *validator.Validate, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := validate.Struct(dst); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed"})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.MessageResponse{Message: msg})
}

// statusFor maps a service error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// fail writes the error response for a service error.
func fail(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError || errors.Is(err, services.ErrConflict) {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err))
	}
	return c.Status(status).JSON(models.MessageResponse{Message: services.Message(err)})
}

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(models.MessageResponse{Message: msg})
}

func currentUser(c *fiber.Ctx) *models.User {
	return middleware.CurrentUser(c)
}
