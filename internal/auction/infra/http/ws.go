package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	ws "github.com/rom1247/ntf-market/internal/shared/websocket"
)

// RegisterEventStream mounts the per-auction websocket event stream. Clients
// connect to /ws/auctions/:id and receive this auction's lifecycle events
// as they are emitted.
func RegisterEventStream(app *fiber.App, hub *ws.Hub) {
	app.Use("/ws/auctions/:id", func(c *fiber.Ctx) error {
		if !fiberws.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		auctionID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return fiber.ErrBadRequest
		}
		c.Locals("auctionID", auctionID)
		return c.Next()
	})

	app.Get("/ws/auctions/:id", fiberws.New(func(conn *fiberws.Conn) {
		auctionID, _ := conn.Locals("auctionID").(uint64)
		hub.Serve(conn, auctionID)
	}))
}
