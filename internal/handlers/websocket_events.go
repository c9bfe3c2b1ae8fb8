package handlers

import (
	"context"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/interfaces"
)

// SubscribeToSessionEvents wires the hub to the event bus. Update events
// are throttled; log and terminal events always go out, so the frame that
// carries the final stage can never be dropped by the limiter.
func (h *WebSocketHandler) SubscribeToSessionEvents() {
	h.eventService.Subscribe(interfaces.EventDemoUpdated, func(ctx context.Context, event interfaces.Event) error {
		if h.demoUpdateThrottler != nil && !h.demoUpdateThrottler.Allow() {
			return nil
		}
		h.BroadcastDemoUpdate(event.Payload)
		return nil
	})

	h.eventService.Subscribe(interfaces.EventDemoLog, func(ctx context.Context, event interfaces.Event) error {
		h.BroadcastDemoLog(event.Payload)
		return nil
	})

	h.eventService.Subscribe(interfaces.EventDemoTerminal, func(ctx context.Context, event interfaces.Event) error {
		h.BroadcastDemoTerminal(event.Payload)
		return nil
	})

	h.logger.Debug().Msg("WebSocket handler subscribed to session events")
}
