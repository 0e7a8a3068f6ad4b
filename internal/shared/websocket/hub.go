package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rom1247/ntf-market/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Hub keeps the registry of clients subscribed per auction and fans
// outbound event messages out to them.
type Hub struct {
	// Registered clients grouped by auction id.
	clients map[uint64]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
}

// Client is one websocket subscriber, bound to a single auction.
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	AuctionID uint64
	ID        string
}

// Message is an outbound payload addressed to one auction's subscribers.
type Message struct {
	AuctionID uint64
	Data      []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint64]map[*Client]bool),
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register/unregister/broadcast requests until the channels
// close. Start it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.AuctionID] == nil {
				h.clients[client.AuctionID] = make(map[*Client]bool)
			}
			h.clients[client.AuctionID][client] = true
			log.Info("ws client registered",
				zap.String("clientID", client.ID),
				zap.Uint64("auctionID", client.AuctionID),
			)

		case client := <-h.unregister:
			if subs, ok := h.clients[client.AuctionID]; ok {
				if _, ok := subs[client]; ok {
					delete(subs, client)
					close(client.Send)
				}
			}

		case msg := <-h.broadcast:
			for client := range h.clients[msg.AuctionID] {
				select {
				case client.Send <- msg.Data:
				default:
					// slow consumer, drop it
					delete(h.clients[msg.AuctionID], client)
					close(client.Send)
				}
			}
		}
	}
}

// Broadcast queues data for every subscriber of an auction.
func (h *Hub) Broadcast(auctionID uint64, data []byte) {
	h.broadcast <- &Message{AuctionID: auctionID, Data: data}
}

// Serve registers a connection for an auction and pumps messages until the
// peer disconnects. Runs on the fiber websocket handler's goroutine.
func (h *Hub) Serve(conn *websocket.Conn, auctionID uint64) {
	client := &Client{
		Hub:       h,
		Conn:      conn,
		Send:      make(chan []byte, 16),
		AuctionID: auctionID,
		ID:        uuid.NewString(),
	}
	h.register <- client

	go client.writePump()
	client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// subscribers are read-only; any inbound payload is discarded
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
