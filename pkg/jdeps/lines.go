package jdeps

import (
	"strings"

	"github.com/ritzau/jdeps-cycles/pkg/logging"
)

// LineWriter is an io.Writer that splits its input into lines and hands
// each one to a callback. Carriage returns are dropped.
type LineWriter struct {
	buf  []byte
	line func(string)
}

// NewLineWriter creates a LineWriter calling fn once per complete line
func NewLineWriter(fn func(line string)) *LineWriter {
	return &LineWriter{line: fn}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		switch b {
		case '\n':
			w.line(string(w.buf))
			w.buf = w.buf[:0]
		case '\r':
		default:
			w.buf = append(w.buf, b)
		}
	}
	return len(p), nil
}

// Close emits a trailing line that was not terminated by a newline
func (w *LineWriter) Close() error {
	if len(w.buf) > 0 {
		w.line(string(w.buf))
		w.buf = w.buf[:0]
	}
	return nil
}

// Diagnostics routes jdeps diagnostic lines to the log: lines starting with
// "error: " are logged as errors, "warning: " as warnings (prefix matched
// case-insensitively and stripped). Everything else goes to passThru.
func Diagnostics(passThru func(line string)) func(string) {
	return func(line string) {
		switch {
		case hasPrefixFold(line, "error: "):
			logging.Error(line[len("error: "):])
		case hasPrefixFold(line, "warning: "):
			logging.Warn(line[len("warning: "):])
		default:
			passThru(line)
		}
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
