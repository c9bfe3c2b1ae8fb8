package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
)

// RecentLogEntry is one service log line returned by the recent-logs endpoint
type RecentLogEntry struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// GetRecentLogsHandler handles GET /api/logs, returning recent service log
// lines from arbor's registered memory writer. Infrastructure chatter is
// filtered with the same patterns as the websocket log stream.
func (h *WebSocketHandler) GetRecentLogsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	memWriter := arbor.GetRegisteredMemoryWriter(arbor.WRITER_MEMORY)
	logs := []RecentLogEntry{}

	if memWriter != nil {
		entries, err := memWriter.GetEntriesWithLimit(100)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to get log entries")
			WriteError(w, http.StatusInternalServerError, "Failed to retrieve logs")
			return
		}

		// Keys are timestamps; sorting gives chronological order
		keys := make([]string, 0, len(entries))
		for key := range entries {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			logLine := entries[key]
			if excludeLogLine(logLine) {
				continue
			}

			levelTag, timestamp, message, ok := parseServiceLogLine(logLine)
			if !ok {
				continue
			}

			// Map level tags to the 3-letter form the UI expects
			level := "INF"
			switch levelTag {
			case "ERR", "ERROR", "FATAL", "PANIC":
				level = "ERR"
			case "WRN", "WARN":
				level = "WRN"
			case "DBG", "DEBUG":
				level = "DBG"
			}

			logs = append(logs, RecentLogEntry{
				Index:     len(logs),
				Timestamp: timestamp,
				Level:     level,
				Message:   message,
			})
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}

// excludeLogLine reports whether a service log line is infrastructure
// chatter that should not reach the UI
func excludeLogLine(line string) bool {
	for _, pattern := range defaultExcludePatterns {
		if strings.Contains(line, pattern) {
			return true
		}
	}
	return false
}
