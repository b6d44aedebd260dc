package cli

import (
	"fmt"
	"io"
	"log"
)

// logger writes to the command's stderr. Debug lines only appear with --verbose.
type logger struct {
	*log.Logger
	verbose bool
}

func newLogger(w io.Writer, verbose bool) *logger {
	if w == nil {
		w = io.Discard
	}
	return &logger{Logger: log.New(w, "openapi2md: ", 0), verbose: verbose}
}

func (l *logger) Debugf(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.Output(2, fmt.Sprintf(format, args...))
}

func (l *logger) Warnf(format string, args ...any) {
	l.Output(2, "warning: "+fmt.Sprintf(format, args...))
}
