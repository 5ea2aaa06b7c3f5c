package handlers

import (
	"fintrack/internal/models"
	"fintrack/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user profiles.
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
	log         *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, validate: newValidator(), log: log}
}

// RegisterRoutes registers the user routes, guarded by requireAuth.
func (h *UserHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	users := router.Group("/users", requireAuth)
	users.Get("/:id", h.HandleGet)
	users.Patch("/:id", h.HandleUpdate)
}

// UpdateUserRequest represents the request body for a profile update.
type UpdateUserRequest struct {
	Username   *string `json:"username" validate:"omitempty,min=8,max=255,username"`
	FirstName  *string `json:"firstName" validate:"omitempty,max=20,givenname"`
	LastName   *string `json:"lastName" validate:"omitempty,max=40,familyname"`
	MiddleName *string `json:"middleName" validate:"omitempty,max=40,familyname"`
}

// HandleGet returns the profile of the current user.
func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	caller := currentUser(c)
	if c.Params("id") != caller.ID {
		return message(c, fiber.StatusForbidden, "you can only view your own profile")
	}
	user, err := h.userService.Profile(c.UserContext(), caller.ID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.NewUserResponse(user))
}

// HandleUpdate updates the profile of the current user.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	user, err := h.userService.Update(c.UserContext(), currentUser(c).ID, c.Params("id"), services.ProfileUpdate{
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.NewUserResponse(user))
}
