package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/common"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/interfaces"
)

// RealtimeFeed subscribes to the generation service's row-change stream
// over a websocket. One connection per subscription; there is no
// reconnection - when the stream drops the change channel closes and the
// caller's polling path remains the source of truth.
type RealtimeFeed struct {
	url    string
	dialer *websocket.Dialer
	logger arbor.ILogger
}

// NewRealtimeFeed creates a change feed client from config
func NewRealtimeFeed(cfg common.BackendConfig, logger arbor.ILogger) *RealtimeFeed {
	return &RealtimeFeed{
		url: cfg.RealtimeURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type subscribeMessage struct {
	Type   string `json:"type"`
	Table  string `json:"table"`
	DemoID string `json:"demo_id"`
}

// Subscribe opens the stream for one demo's row changes. The returned
// channel closes when the connection drops or the context is cancelled.
func (f *RealtimeFeed) Subscribe(ctx context.Context, demoID string) (<-chan interfaces.RowChange, error) {
	conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial realtime feed: %w", err)
	}

	if err := conn.WriteJSON(subscribeMessage{
		Type:   "subscribe",
		Table:  "demos",
		DemoID: demoID,
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe to demo changes: %w", err)
	}

	changes := make(chan interfaces.RowChange, 8)

	// Reader owns the connection; cancellation closes the socket to
	// unblock ReadMessage.
	common.SafeGo(f.logger, "realtime-closer:"+demoID, func() {
		<-ctx.Done()
		conn.Close()
	})

	common.SafeGo(f.logger, "realtime-reader:"+demoID, func() {
		defer close(changes)
		defer conn.Close()

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					f.logger.Debug().Err(err).Str("demo_id", demoID).Msg("Realtime stream closed")
				}
				return
			}

			var change interfaces.RowChange
			if err := json.Unmarshal(payload, &change); err != nil {
				f.logger.Debug().Err(err).Msg("Skipping malformed realtime frame")
				continue
			}
			if change.New.Status == "" {
				continue
			}

			select {
			case changes <- change:
			case <-ctx.Done():
				return
			}
		}
	})

	return changes, nil
}
