package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"github.com/rom1247/ntf-market/internal/auction/pricing"
	"github.com/rom1247/ntf-market/internal/custody"
	"github.com/rom1247/ntf-market/internal/fees"
	"github.com/shopspring/decimal"
)

// AdminHandler exposes the operator surfaces around the core: feed and
// currency registration, price posting, asset onboarding and fee
// withdrawal. These mirror the chain-level operations (token deployment,
// oracle updates, approvals) that exist outside the settlement engine.
type AdminHandler struct {
	catalog    *pricing.Catalog
	bank       *custody.Bank
	vault      *custody.AssetVault
	accountant *fees.Accountant
	engineAcct uuid.UUID
}

func NewAdminHandler(catalog *pricing.Catalog, bank *custody.Bank, vault *custody.AssetVault,
	accountant *fees.Accountant, engineAcct uuid.UUID) *AdminHandler {
	return &AdminHandler{
		catalog:    catalog,
		bank:       bank,
		vault:      vault,
		accountant: accountant,
		engineAcct: engineAcct,
	}
}

func (h *AdminHandler) Register(app *fiber.App) {
	app.Post("/feeds", h.createFeed)
	app.Post("/feeds/:symbol/price", h.postPrice)
	app.Post("/currencies", h.registerCurrency)
	app.Post("/assets", h.registerAsset)
	app.Post("/assets/approve", h.approveAsset)
	app.Post("/bank/credit", h.credit)
	app.Post("/bank/approve", h.approve)
	app.Post("/fees/withdraw", h.withdraw)
}

func (h *AdminHandler) createFeed(c *fiber.Ctx) error {
	var req struct {
		Symbol   string `json:"symbol"`
		Decimals uint32 `json:"decimals"`
	}
	if err := c.BodyParser(&req); err != nil || req.Symbol == "" {
		return badRequest(c, "invalid request body")
	}
	if _, err := h.catalog.Create(req.Symbol, req.Decimals); err != nil {
		return c.Status(fiber.StatusConflict).JSON(errorResponse{Error: err.Error()})
	}
	return c.SendStatus(fiber.StatusCreated)
}

func (h *AdminHandler) postPrice(c *fiber.Ctx) error {
	var req struct {
		Price string `json:"price"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return badRequest(c, "invalid price")
	}
	feed, ok := h.catalog.Get(c.Params("symbol"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "unknown feed symbol"})
	}
	feed.SetPrice(price)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) registerCurrency(c *fiber.Ctx) error {
	var req struct {
		Symbol   string `json:"symbol"`
		Decimals uint32 `json:"decimals"`
	}
	if err := c.BodyParser(&req); err != nil || req.Symbol == "" {
		return badRequest(c, "invalid request body")
	}
	if err := h.bank.RegisterCurrency(domain.Currency(req.Symbol), req.Decimals); err != nil {
		return c.Status(fiber.StatusConflict).JSON(errorResponse{Error: err.Error()})
	}
	return c.SendStatus(fiber.StatusCreated)
}

func (h *AdminHandler) registerAsset(c *fiber.Ctx) error {
	var req struct {
		Collection string    `json:"collection"`
		TokenID    string    `json:"token_id"`
		Holder     uuid.UUID `json:"holder"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	asset := domain.AssetRef{Collection: req.Collection, TokenID: req.TokenID}
	if err := h.vault.Register(asset, req.Holder); err != nil {
		return c.Status(fiber.StatusConflict).JSON(errorResponse{Error: err.Error()})
	}
	return c.SendStatus(fiber.StatusCreated)
}

// approveAsset lets a holder authorize the engine to take custody, the
// precondition for listing the asset in an auction.
func (h *AdminHandler) approveAsset(c *fiber.Ctx) error {
	var req struct {
		Collection string    `json:"collection"`
		TokenID    string    `json:"token_id"`
		Holder     uuid.UUID `json:"holder"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	asset := domain.AssetRef{Collection: req.Collection, TokenID: req.TokenID}
	if err := h.vault.Approve(asset, req.Holder, h.engineAcct); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) credit(c *fiber.Ctx) error {
	var req struct {
		Account  uuid.UUID `json:"account"`
		Currency string    `json:"currency"`
		Amount   string    `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	amount, ok := parseAmount(req.Amount)
	if !ok || !amount.IsPositive() {
		return badRequest(c, "invalid amount")
	}
	h.bank.Credit(req.Account, parseCurrency(req.Currency), amount)
	return c.SendStatus(fiber.StatusNoContent)
}

// approve grants the engine a pull allowance, the precondition for bidding
// in a token currency.
func (h *AdminHandler) approve(c *fiber.Ctx) error {
	var req struct {
		Owner    uuid.UUID `json:"owner"`
		Currency string    `json:"currency"`
		Amount   string    `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		return badRequest(c, "invalid amount")
	}
	h.bank.Approve(req.Owner, h.engineAcct, parseCurrency(req.Currency), amount)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) withdraw(c *fiber.Ctx) error {
	var req struct {
		Caller   uuid.UUID `json:"caller"`
		Currency string    `json:"currency"`
		To       uuid.UUID `json:"to"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	amount, err := h.accountant.Withdraw(c.Context(), req.Caller, parseCurrency(req.Currency), req.To)
	if err != nil {
		if err == fees.ErrUnauthorized {
			return c.Status(fiber.StatusForbidden).JSON(errorResponse{Error: err.Error()})
		}
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"withdrawn": amount.String()})
}
