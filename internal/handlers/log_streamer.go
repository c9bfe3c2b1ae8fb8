// -----------------------------------------------------------------------
// Log Streamer - Forwards service log lines to connected UI clients
// -----------------------------------------------------------------------

package handlers

import (
	"sort"
	"strings"
	"time"

	plog "github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/levels"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/common"
)

const (
	// How often new memory-writer entries are picked up for broadcasting
	defaultStreamInterval = time.Second
	// How many recent entries are fetched per sweep
	streamFetchLimit = 100
)

// defaultExcludePatterns drops chatty infrastructure messages from the UI
// log stream. Broadcasting them would feed the stream that produced them.
var defaultExcludePatterns = []string{
	"WebSocket client connected",
	"WebSocket client disconnected",
	"HTTP request",
	"HTTP response",
	"Publishing event",
}

// LogStreamer tails arbor's registered memory writer and broadcasts new
// service log lines to websocket clients. The memory writer has no
// subscription API, so the streamer sweeps it on a fixed interval and
// tracks the last forwarded key (keys are timestamps, so string order is
// chronological).
type LogStreamer struct {
	handler         *WebSocketHandler
	minLevel        levels.LogLevel
	excludePatterns []string
	interval        time.Duration
	logger          arbor.ILogger

	lastKey string
	stop    chan struct{}
	done    chan struct{}
}

// NewLogStreamer creates a log streamer feeding the given websocket hub.
// Level and pattern filtering come from the websocket config section.
func NewLogStreamer(handler *WebSocketHandler, wsConfig *common.WebSocketConfig, logger arbor.ILogger) *LogStreamer {
	minLevel := levels.InfoLevel
	excludePatterns := defaultExcludePatterns

	if wsConfig != nil {
		minLevel = parseLogLevel(wsConfig.MinLevel)
		if len(wsConfig.ExcludePatterns) > 0 {
			excludePatterns = wsConfig.ExcludePatterns
		}
	}

	return &LogStreamer{
		handler:         handler,
		minLevel:        minLevel,
		excludePatterns: excludePatterns,
		interval:        defaultStreamInterval,
		logger:          logger,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// Start launches the streaming loop
func (s *LogStreamer) Start() {
	common.SafeGo(s.logger, "log-streamer", s.run)
}

// Close stops the streaming loop and waits for it to exit
func (s *LogStreamer) Close() error {
	close(s.stop)
	select {
	case <-s.done:
	case <-time.After(2 * s.interval):
	}
	return nil
}

func (s *LogStreamer) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep forwards memory-writer entries newer than the last forwarded key
func (s *LogStreamer) sweep() {
	memWriter := arbor.GetRegisteredMemoryWriter(arbor.WRITER_MEMORY)
	if memWriter == nil {
		return
	}

	entries, err := memWriter.GetEntriesWithLimit(streamFetchLimit)
	if err != nil {
		return
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		if key > s.lastKey {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		s.lastKey = key
		if entry, ok := s.prepare(entries[key]); ok {
			s.handler.BroadcastLog(entry)
		}
	}
}

// prepare parses a formatted log line and applies the level and pattern
// filters. Returns ok=false for lines that should not reach the UI.
func (s *LogStreamer) prepare(line string) (LogEntry, bool) {
	levelTag, timestamp, message, ok := parseServiceLogLine(line)
	if !ok {
		return LogEntry{}, false
	}

	arborLevel := plogToArborLevel(levelFromTag(levelTag))
	if arborLevel < s.minLevel {
		return LogEntry{}, false
	}

	for _, pattern := range s.excludePatterns {
		if strings.Contains(message, pattern) {
			return LogEntry{}, false
		}
	}

	return LogEntry{
		Timestamp: timestamp,
		Level:     mapLevel(arborLevel),
		Message:   message,
	}, true
}

// parseServiceLogLine splits a memory-writer line into its level tag,
// wall-clock timestamp and message. Lines are "LEVEL | datetime | message";
// the datetime's last field is the time of day ("Oct  2 16:27:13").
func parseServiceLogLine(line string) (levelTag, timestamp, message string, ok bool) {
	parts := strings.SplitN(line, "|", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}

	levelTag = strings.TrimSpace(parts[0])
	message = strings.TrimSpace(parts[2])

	timeParts := strings.Fields(strings.TrimSpace(parts[1]))
	if len(timeParts) >= 3 {
		timestamp = timeParts[len(timeParts)-1]
	} else {
		timestamp = time.Now().Format("15:04:05")
	}

	return levelTag, timestamp, message, true
}

// levelFromTag maps a formatted level tag back to a phuslu log level
func levelFromTag(tag string) plog.Level {
	switch tag {
	case "ERR", "ERROR", "FATAL", "PANIC":
		return plog.ErrorLevel
	case "WRN", "WARN":
		return plog.WarnLevel
	case "DBG", "DEBUG", "TRC", "TRACE":
		return plog.DebugLevel
	default:
		return plog.InfoLevel
	}
}

// plogToArborLevel converts phuslu/log.Level to arbor levels.LogLevel
func plogToArborLevel(level plog.Level) levels.LogLevel {
	switch level {
	case plog.ErrorLevel:
		return levels.ErrorLevel
	case plog.WarnLevel:
		return levels.WarnLevel
	case plog.InfoLevel:
		return levels.InfoLevel
	case plog.DebugLevel:
		return levels.DebugLevel
	default:
		return levels.InfoLevel
	}
}

// parseLogLevel converts string log level to arbor levels.LogLevel
func parseLogLevel(level string) levels.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return levels.ErrorLevel
	case "warn", "warning":
		return levels.WarnLevel
	case "info":
		return levels.InfoLevel
	case "debug":
		return levels.DebugLevel
	default:
		return levels.InfoLevel
	}
}

// mapLevel maps arbor log levels to UI strings
func mapLevel(level levels.LogLevel) string {
	switch level {
	case levels.ErrorLevel:
		return "error"
	case levels.WarnLevel:
		return "warn"
	case levels.InfoLevel:
		return "info"
	case levels.DebugLevel:
		return "debug"
	default:
		return "info"
	}
}
