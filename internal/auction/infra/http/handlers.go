package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rom1247/ntf-market/internal/auction/application"
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"github.com/rom1247/ntf-market/internal/auction/pricing"
	"github.com/rom1247/ntf-market/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionHandler exposes the auction module over HTTP.
type AuctionHandler struct {
	service application.AuctionService
	catalog *pricing.Catalog
}

func NewAuctionHandler(service application.AuctionService, catalog *pricing.Catalog) *AuctionHandler {
	return &AuctionHandler{service: service, catalog: catalog}
}

// Register mounts the auction routes.
func (h *AuctionHandler) Register(app *fiber.App) {
	app.Post("/auctions", h.createAuction)
	app.Get("/auctions", h.listAuctions)
	app.Get("/auctions/:id", h.getAuction)
	app.Post("/auctions/:id/bids", h.placeBid)
	app.Post("/auctions/:id/end", h.endAuction)
}

func (h *AuctionHandler) createAuction(c *fiber.Ctx) error {
	var req createAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	startingPrice, ok := parseAmount(req.StartingPrice)
	if !ok {
		return badRequest(c, "invalid starting_price")
	}

	feed, ok := h.catalog.Get(req.FeedSymbol)
	if !ok {
		return badRequest(c, "unknown feed symbol")
	}

	accepted := make([]domain.Currency, len(req.AcceptedCurrencies))
	for i, s := range req.AcceptedCurrencies {
		accepted[i] = parseCurrency(s)
	}

	id, err := h.service.CreateAuction(c.Context(), application.CreateAuctionDTO{
		Name:               req.Name,
		Asset:              domain.AssetRef{Collection: req.Collection, TokenID: req.TokenID},
		Seller:             req.Seller,
		StartingPrice:      startingPrice,
		StartingCurrency:   parseCurrency(req.StartingCurrency),
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		AcceptedCurrencies: accepted,
		Feed:               feed,
	})
	if err != nil {
		return domainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(createAuctionResponse{AuctionID: id})
}

func (h *AuctionHandler) placeBid(c *fiber.Ctx) error {
	auctionID, err := parseAuctionID(c)
	if err != nil {
		return badRequest(c, "invalid auction id")
	}

	var req placeBidRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	amount, ok := parseAmount(req.Amount)
	if !ok {
		return badRequest(c, "invalid amount")
	}
	nativeValue, ok := parseAmount(req.NativeValue)
	if !ok {
		return badRequest(c, "invalid native_value")
	}

	bid, err := h.service.PlaceBid(c.Context(), application.PlaceBidDTO{
		AuctionID:   auctionID,
		Bidder:      req.Bidder,
		Currency:    parseCurrency(req.Currency),
		Amount:      amount,
		NativeValue: nativeValue,
	})
	if err != nil {
		return domainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(placeBidResponse{
		BidID:    bid.ID,
		USDValue: bid.USDValue.String(),
	})
}

func (h *AuctionHandler) endAuction(c *fiber.Ctx) error {
	auctionID, err := parseAuctionID(c)
	if err != nil {
		return badRequest(c, "invalid auction id")
	}
	if err := h.service.EndAuction(c.Context(), auctionID); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuctionHandler) getAuction(c *fiber.Ctx) error {
	auctionID, err := parseAuctionID(c)
	if err != nil {
		return badRequest(c, "invalid auction id")
	}
	a, err := h.service.GetAuction(auctionID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toAuctionResponse(a))
}

func (h *AuctionHandler) listAuctions(c *fiber.Ctx) error {
	auctions := h.service.ListAuctions()
	out := make([]auctionResponse, len(auctions))
	for i, a := range auctions {
		out[i] = toAuctionResponse(a)
	}
	return c.JSON(out)
}

func parseAuctionID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: msg})
}

// domainError maps the error taxonomy to HTTP statuses: not-found to 404,
// precondition violations to 409/400, everything else to 500.
func domainError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrBidTooLow),
		errors.Is(err, domain.ErrAuctionEnded),
		errors.Is(err, domain.ErrAlreadyEnded),
		errors.Is(err, domain.ErrAuctionNotStarted),
		errors.Is(err, domain.ErrAuctionExpired),
		errors.Is(err, domain.ErrAuctionStillOpen),
		errors.Is(err, domain.ErrFeeExceedsBid):
		status = fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidWindow),
		errors.Is(err, domain.ErrUnsupportedCurrency),
		errors.Is(err, domain.ErrInvalidPriceFeed),
		errors.Is(err, domain.ErrValueMismatch),
		errors.Is(err, domain.ErrInsufficientAllowance),
		errors.Is(err, domain.ErrInsufficientFunds):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrTransferFailed):
		status = fiber.StatusBadGateway
	default:
		log.Error("unclassified handler error", zap.Error(err))
	}
	return c.Status(status).JSON(errorResponse{Error: err.Error()})
}
