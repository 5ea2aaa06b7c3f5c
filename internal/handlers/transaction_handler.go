package handlers

import (
	"fintrack/internal/models"
	"fintrack/internal/repositories"
	"fintrack/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionHandler handles HTTP requests for transactions.
type TransactionHandler struct {
	transactionService *services.TransactionService
	validate           *validator.Validate
	log                *zap.Logger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService *services.TransactionService, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, validate: newValidator(), log: log}
}

// RegisterRoutes registers the transaction routes, guarded by requireAuth.
func (h *TransactionHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	transactions := router.Group("/transactions", requireAuth)
	transactions.Get("/", h.HandleList)
	transactions.Post("/", h.HandleCreate)
	transactions.Get("/:id", h.HandleGet)
	transactions.Patch("/:id", h.HandleUpdate)
	transactions.Delete("/:id", h.HandleDelete)
}

// CreateTransactionRequest represents the request body for a new transaction.
type CreateTransactionRequest struct {
	Title            string                 `json:"title" validate:"required,min=4,max=255"`
	Type             models.TransactionType `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Amount           decimal.Decimal        `json:"amount"`
	WalletID         string                 `json:"walletId" validate:"required"`
	TransactionTagID *string                `json:"transactionTagId"`
}

// UpdateTransactionRequest represents the request body for a transaction
// update. An empty transactionTagId removes the tag.
type UpdateTransactionRequest struct {
	Title            *string                 `json:"title" validate:"omitempty,min=4,max=255"`
	Type             *models.TransactionType `json:"type" validate:"omitempty,oneof=INCOME EXPENSE"`
	Amount           *decimal.Decimal        `json:"amount"`
	WalletID         *string                 `json:"walletId" validate:"omitempty,min=1"`
	TransactionTagID *string                 `json:"transactionTagId"`
}

// HandleList lists the transactions of a wallet, filtered by type and tag.
func (h *TransactionHandler) HandleList(c *fiber.Ctx) error {
	filter := repositories.TransactionFilter{
		WalletID: c.Query("wallet"),
		Type:     models.TransactionType(c.Query("type")),
		TagID:    c.Query("tag"),
	}
	if filter.WalletID == "" {
		return badRequest(c, "wallet is required")
	}
	if filter.Type != "" && filter.Type != models.TransactionIncome && filter.Type != models.TransactionExpense {
		return badRequest(c, "type must be INCOME or EXPENSE")
	}

	list, err := h.transactionService.List(c.UserContext(), currentUser(c).ID, filter)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.NewTransactionResponses(list))
}

// HandleGet returns one transaction.
func (h *TransactionHandler) HandleGet(c *fiber.Ctx) error {
	transaction, err := h.transactionService.Get(c.UserContext(), currentUser(c).ID, c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.NewTransactionResponse(transaction))
}

// HandleCreate books a new transaction.
func (h *TransactionHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateTransactionRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	transaction, err := h.transactionService.Create(c.UserContext(), currentUser(c).ID, services.TransactionInput{
		Title:    req.Title,
		Type:     req.Type,
		Amount:   req.Amount,
		WalletID: req.WalletID,
		TagID:    req.TransactionTagID,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewTransactionResponse(transaction))
}

// HandleUpdate changes a transaction.
func (h *TransactionHandler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateTransactionRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	transaction, err := h.transactionService.Update(c.UserContext(), currentUser(c).ID, c.Params("id"), services.TransactionUpdate{
		Title:    req.Title,
		Type:     req.Type,
		Amount:   req.Amount,
		WalletID: req.WalletID,
		TagID:    req.TransactionTagID,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.NewTransactionResponse(transaction))
}

// HandleDelete deletes a transaction.
func (h *TransactionHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.transactionService.Delete(c.UserContext(), currentUser(c).ID, c.Params("id")); err != nil {
		return fail(c, h.log, err)
	}
	return message(c, fiber.StatusOK, "transaction deleted")
}
