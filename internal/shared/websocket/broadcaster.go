package websocket

import (
	"encoding/json"

	"github.com/rom1247/ntf-market/internal/auction/domain"
	"go.uber.org/zap"
)

// Envelope is the wire shape of one broadcast event.
type Envelope struct {
	Type    string       `json:"type"`
	Payload domain.Event `json:"payload"`
}

// EventBroadcaster adapts the hub to the engine's Notifier interface,
// serializing each lifecycle event to JSON and fanning it out to the
// auction's subscribers.
type EventBroadcaster struct {
	hub *Hub
}

func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// Notify implements domain.Notifier.
func (b *EventBroadcaster) Notify(event domain.Event) {
	data, err := json.Marshal(Envelope{Type: event.EventType(), Payload: event})
	if err != nil {
		log.Error("failed to marshal event",
			zap.String("type", event.EventType()),
			zap.Uint64("auctionID", event.AuctionID()),
			zap.Error(err),
		)
		return
	}
	b.hub.Broadcast(event.AuctionID(), data)
}
