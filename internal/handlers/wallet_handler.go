package handlers

import (
	"strconv"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// WalletHandler handles HTTP requests for wallets.
type WalletHandler struct {
	walletService *services.WalletService
	validate      *validator.Validate
	log           *zap.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService *services.WalletService, log *zap.Logger) *WalletHandler {
	return &WalletHandler{walletService: walletService, validate: newValidator(), log: log}
}

// RegisterRoutes registers the wallet routes, guarded by requireAuth.
func (h *WalletHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	wallets := router.Group("/wallets", requireAuth)
	wallets.Get("/", h.HandleList)
	wallets.Post("/", h.HandleCreate)
	wallets.Get("/:id", h.HandleGet)
	wallets.Patch("/:id", h.HandleUpdate)
	wallets.Delete("/:id", h.HandleDelete)
	wallets.Get("/:id/transactions/recent", h.HandleRecent)
	wallets.Get("/:id/transactions/last-day", h.HandleLastDay)
	wallets.Get("/:id/summary", h.HandleSummary)
	wallets.Get("/:id/calendar", h.HandleCalendar)
	wallets.Get("/:id/tags", h.HandleTagSummary)
}

// WalletRequest represents the request body for creating or renaming a wallet.
type WalletRequest struct {
	Title string `json:"title" validate:"required,min=4,max=48"`
}

// HandleList lists the wallets of the current user with balances.
func (h *WalletHandler) HandleList(c *fiber.Ctx) error {
	wallets, err := h.walletService.List(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, h.log, err)
	}
	out := make([]models.WalletResponse, 0, len(wallets))
	for i := range wallets {
		out = append(out, models.NewWalletResponse(&wallets[i]))
	}
	return c.JSON(out)
}

// HandleGet returns one wallet with its balance.
func (h *WalletHandler) HandleGet(c *fiber.Ctx) error {
	wallet, err := h.walletService.Get(c.UserContext(), currentUser(c).ID, c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.NewWalletResponse(wallet))
}

// HandleCreate creates a wallet.
func (h *WalletHandler) HandleCreate(c *fiber.Ctx) error {
	var req WalletRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	wallet, err := h.walletService.Create(c.UserContext(), currentUser(c).ID, req.Title)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewWalletResponse(wallet))
}

// HandleUpdate renames a wallet.
func (h *WalletHandler) HandleUpdate(c *fiber.Ctx) error {
	var req WalletRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	wallet, err := h.walletService.Update(c.UserContext(), currentUser(c).ID, c.Params("id"), req.Title)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.NewWalletResponse(wallet))
}

// HandleDelete deletes a wallet and its transactions.
func (h *WalletHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.walletService.Delete(c.UserContext(), currentUser(c).ID, c.Params("id")); err != nil {
		return fail(c, h.log, err)
	}
	return message(c, fiber.StatusOK, "wallet deleted")
}

// HandleRecent returns the newest transactions of a wallet.
func (h *WalletHandler) HandleRecent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	list, err := h.walletService.RecentTransactions(c.UserContext(), currentUser(c).ID, c.Params("id"), limit)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.NewTransactionResponses(list))
}

// HandleLastDay returns the transactions of the wallet's most recent day.
func (h *WalletHandler) HandleLastDay(c *fiber.Ctx) error {
	list, err := h.walletService.LastDayTransactions(c.UserContext(), currentUser(c).ID, c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.NewTransactionResponses(list))
}

// HandleSummary returns the income and expense totals of one month. Year and
// month default to the current UTC month.
func (h *WalletHandler) HandleSummary(c *fiber.Ctx) error {
	now := time.Now().UTC()
	year, err := strconv.Atoi(c.Query("year", strconv.Itoa(now.Year())))
	if err != nil {
		return badRequest(c, "year must be a number")
	}
	month, err := strconv.Atoi(c.Query("month", strconv.Itoa(int(now.Month()))))
	if err != nil {
		return badRequest(c, "month must be a number")
	}

	sums, err := h.walletService.MonthlySummary(c.UserContext(), currentUser(c).ID, c.Params("id"), year, month)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(sums)
}

// HandleCalendar returns the net amount per day between from and to. Both are
// dates (YYYY-MM-DD) and to is inclusive.
func (h *WalletHandler) HandleCalendar(c *fiber.Ctx) error {
	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		return badRequest(c, "from must be a date (YYYY-MM-DD)")
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		return badRequest(c, "to must be a date (YYYY-MM-DD)")
	}

	days, err := h.walletService.Calendar(c.UserContext(), currentUser(c).ID, c.Params("id"), from, to.AddDate(0, 0, 1))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(days)
}

// HandleTagSummary returns the expense total per tag of a wallet.
func (h *WalletHandler) HandleTagSummary(c *fiber.Ctx) error {
	tags, err := h.walletService.TagSummary(c.UserContext(), currentUser(c).ID, c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(tags)
}
