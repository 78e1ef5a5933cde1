package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// ConsoleMessage is one renderer log line shown in the browser console
type ConsoleMessage struct {
	Session   string    `json:"session"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by sending messages to a session's console channel
type WebLogger struct {
	sessionID   string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific session
func NewWebLogger(sessionID string, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		sessionID:   sessionID,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	// Also write to stdout for server logs
	fmt.Print(message)

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Session:   wl.sessionID,
			Message:   message,
			Timestamp: time.Now(),
			Level:     levelOf(message),
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}

// levelOf classifies a log line by its leading word
func levelOf(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))
	switch {
	case strings.HasPrefix(lower, "error"), strings.HasPrefix(lower, "failed"):
		return "error"
	case strings.HasPrefix(lower, "warning"):
		return "warning"
	default:
		return "info"
	}
}
