package meshskin

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// loggerPtr stores the package logger. Accessed atomically so SetLogger can
// run concurrently with extractions.
var loggerPtr atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.Nop()
	loggerPtr.Store(&l)
}

// SetLogger configures the logger used by extractions that do not pass
// WithLogger. By default meshskin produces no log output.
//
// Levels used:
//   - debug: selected path, id width, per-phase timings and sizes
//   - warn: aborted extractions
func SetLogger(l zerolog.Logger) {
	loggerPtr.Store(&l)
}

// Logger returns the current package logger.
func Logger() zerolog.Logger {
	return *loggerPtr.Load()
}

func (c *config) log() *zerolog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return loggerPtr.Load()
}
