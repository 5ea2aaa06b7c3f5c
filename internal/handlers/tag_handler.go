package handlers

import (
	"fintrack/internal/models"
	"fintrack/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TagHandler handles HTTP requests for transaction tags.
type TagHandler struct {
	tagService *services.TagService
	validate   *validator.Validate
	log        *zap.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService *services.TagService, log *zap.Logger) *TagHandler {
	return &TagHandler{tagService: tagService, validate: newValidator(), log: log}
}

// RegisterRoutes registers the tag routes, guarded by requireAuth.
func (h *TagHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	tags := router.Group("/transaction-tags", requireAuth)
	tags.Get("/", h.HandleList)
	tags.Post("/", h.HandleCreate)
	tags.Get("/:id", h.HandleGet)
	tags.Patch("/:id", h.HandleUpdate)
	tags.Delete("/:id", h.HandleDelete)
}

// CreateTagRequest represents the request body for a new tag.
type CreateTagRequest struct {
	Title string `json:"title" validate:"required,min=4,max=255"`
	Color string `json:"color" validate:"required,hexcolor"`
}

// UpdateTagRequest represents the request body for a tag update.
type UpdateTagRequest struct {
	Title *string `json:"title" validate:"omitempty,min=4,max=255"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

// HandleList lists the tags of the current user.
func (h *TagHandler) HandleList(c *fiber.Ctx) error {
	tags, err := h.tagService.List(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, h.log, err)
	}
	out := make([]models.TransactionTagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, models.NewTransactionTagResponse(&tags[i]))
	}
	return c.JSON(out)
}

// HandleGet returns one tag.
func (h *TagHandler) HandleGet(c *fiber.Ctx) error {
	tag, err := h.tagService.Get(c.UserContext(), currentUser(c).ID, c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.NewTransactionTagResponse(tag))
}

// HandleCreate creates a tag.
func (h *TagHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateTagRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	tag, err := h.tagService.Create(c.UserContext(), currentUser(c).ID, req.Title, req.Color)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewTransactionTagResponse(tag))
}

// HandleUpdate changes a tag.
func (h *TagHandler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateTagRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	tag, err := h.tagService.Update(c.UserContext(), currentUser(c).ID, c.Params("id"), services.TagUpdate{
		Title: req.Title,
		Color: req.Color,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.NewTransactionTagResponse(tag))
}

// HandleDelete deletes a tag and detaches it from its transactions.
func (h *TagHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.tagService.Delete(c.UserContext(), currentUser(c).ID, c.Params("id")); err != nil {
		return fail(c, h.log, err)
	}
	return message(c, fiber.StatusOK, "tag deleted")
}
