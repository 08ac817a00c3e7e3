package utils

import (
	"fmt"
	"io"
)

// Logger receives per-asset decode diagnostics. A nil *Logger drops everything,
// so parsers take one without checking.
type Logger struct {
	io.Writer
}

func NewLogger(w io.Writer) *Logger {
	if w == nil {
		return nil
	}
	return &Logger{w}
}

func (l *Logger) Printf(format string, a ...interface{}) {
	if l != nil && l.Writer != nil {
		fmt.Fprintf(l, format+"\n", a...)
	}
}
