package capture

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// StatusLogger forwards log lines and records each one as a "status" event
// stamped with the current frame
type StatusLogger struct {
	next     core.Logger
	recorder *Recorder
	frame    atomic.Int64
}

// NewStatusLogger wraps next so its lines also land in recorder
func NewStatusLogger(next core.Logger, recorder *Recorder) *StatusLogger {
	return &StatusLogger{next: next, recorder: recorder}
}

// SetFrame sets the frame number attached to subsequent events
func (l *StatusLogger) SetFrame(frame int) {
	l.frame.Store(int64(frame))
}

// Printf implements core.Logger
func (l *StatusLogger) Printf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	l.next.Printf("%s", line)
	// A failed event write must not break rendering
	_ = l.recorder.AppendEvent(int(l.frame.Load()), "status", strings.TrimRight(line, "\n"))
}
