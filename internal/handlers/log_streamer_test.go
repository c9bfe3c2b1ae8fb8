package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/common"
)

func newTestStreamer(cfg *common.WebSocketConfig) *LogStreamer {
	hub := NewWebSocketHandler(nil, arbor.NewLogger(), cfg)
	return NewLogStreamer(hub, cfg, arbor.NewLogger())
}

func TestParseServiceLogLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		levelTag  string
		timestamp string
		message   string
		ok        bool
	}{
		{"info line", "INF | Oct  2 16:27:13 | Demo generation job accepted", "INF", "16:27:13", "Demo generation job accepted", true},
		{"error line", "ERR | Oct  2 16:27:14 | Generation failed: sandbox error", "ERR", "16:27:14", "Generation failed: sandbox error", true},
		{"message containing pipes", "WRN | Oct  2 16:27:15 | ratio was 10|20", "WRN", "16:27:15", "ratio was 10|20", true},
		{"no separators", "plain text without structure", "", "", "", false},
		{"one separator only", "INF | no message part", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levelTag, timestamp, message, ok := parseServiceLogLine(tt.line)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.levelTag, levelTag)
			assert.Equal(t, tt.timestamp, timestamp)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestLogStreamer_PrepareMapsLevels(t *testing.T) {
	s := newTestStreamer(&common.WebSocketConfig{MinLevel: "debug"})

	tests := []struct {
		tag  string
		want string
	}{
		{"ERR", "error"},
		{"FATAL", "error"},
		{"WRN", "warn"},
		{"INF", "info"},
		{"DBG", "debug"},
		{"???", "info"},
	}

	for _, tt := range tests {
		entry, ok := s.prepare(tt.tag + " | Oct  2 16:27:13 | Session reached terminal stage")
		require.True(t, ok, tt.tag)
		assert.Equal(t, tt.want, entry.Level, tt.tag)
	}
}

func TestLogStreamer_PrepareHonorsMinLevel(t *testing.T) {
	s := newTestStreamer(&common.WebSocketConfig{MinLevel: "warn"})

	_, ok := s.prepare("INF | Oct  2 16:27:13 | Demo generation job accepted")
	assert.False(t, ok, "lines below the minimum level are not broadcast")

	entry, ok := s.prepare("ERR | Oct  2 16:27:14 | Generation failed")
	require.True(t, ok)
	assert.Equal(t, "error", entry.Level)
	assert.Equal(t, "Generation failed", entry.Message)
	assert.Equal(t, "16:27:14", entry.Timestamp)
}

func TestLogStreamer_PrepareExcludesInfrastructureChatter(t *testing.T) {
	// nil config falls back to the default exclude patterns
	s := newTestStreamer(nil)

	_, ok := s.prepare("INF | Oct  2 16:27:13 | WebSocket client connected (total: 1)")
	assert.False(t, ok)

	_, ok = s.prepare("INF | Oct  2 16:27:13 | Session reached terminal stage")
	assert.True(t, ok)
}

func TestLogStreamer_PrepareCustomExcludePatterns(t *testing.T) {
	s := newTestStreamer(&common.WebSocketConfig{
		MinLevel:        "info",
		ExcludePatterns: []string{"heartbeat"},
	})

	_, ok := s.prepare("INF | Oct  2 16:27:13 | poller heartbeat tick")
	assert.False(t, ok)

	// Custom patterns replace the defaults entirely
	_, ok = s.prepare("INF | Oct  2 16:27:13 | WebSocket client connected (total: 1)")
	assert.True(t, ok)
}

func TestLogStreamer_StartAndClose(t *testing.T) {
	s := newTestStreamer(nil)
	s.Start()
	assert.NoError(t, s.Close())
}
