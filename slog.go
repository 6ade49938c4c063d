package spotted

import (
	"fmt"
	"log"
)

// SLogger is the spotted internal logging interface. The standard library
// logger implements the Printf part of this interface
type SLogger interface {
	Printf(format string, v ...interface{})

	Debugf(format string, v ...interface{})
}

type sLogger struct {
	logger *log.Logger
	debug  bool
}

// NewSLogger creates a new spotted logger writing to the provided logger with
// debug lines gated by the debug flag
func NewSLogger(logger *log.Logger, debug bool) (sl *sLogger) {
	sl = new(sLogger)
	sl.logger = logger
	sl.debug = debug

	return sl
}

// Debugf logs a debug line if the logger is in debug mode
func (sl *sLogger) Debugf(format string, v ...interface{}) {
	if sl.debug {
		sl.Printf(format, v...)
	}
}

// Printf logs a line by delegating the call to Output
func (sl *sLogger) Printf(format string, v ...interface{}) {
	sl.logger.Output(2, fmt.Sprintf(format, v...))
}
