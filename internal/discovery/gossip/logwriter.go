package gossip

import (
	"io"
	"strings"
	"time"

	"github.com/gridforge/jobtracker/pkg/logger"
)

// logWriter adapts pkg/logger to the io.Writer memberlist.Config wants
// for its own diagnostic output (connection churn, probe failures).
type logWriter struct {
	log *logger.Logger
}

func newLogWriter(log *logger.Logger) io.Writer {
	return &logWriter{log: log}
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.log.Debug("memberlist", "line", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func durationMs(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
