// Package log builds the zerolog loggers used by the pwmguard binary.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	pkglog "github.com/bft-labs/pwmguard/pkg/log"
)

// LineTimeFormat is the timestamp layout of every log line.
const LineTimeFormat = "15:04:05.000"

// AppendWriter appends each Write to a file as an independent operation.
// It never reports failure: several respawned processes may append to the
// same file without coordination, and a lost line is acceptable.
type AppendWriter struct {
	path string
}

// NewAppendWriter returns a writer appending to path. The parent directory
// is created on demand.
func NewAppendWriter(path string) *AppendWriter {
	return &AppendWriter{path: path}
}

// Write appends p to the file and always returns len(p), nil.
func (w *AppendWriter) Write(p []byte) (int, error) {
	if w.path == "" {
		return len(p), nil
	}
	if dir := filepath.Dir(w.path); dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return len(p), nil
	}
	_, _ = f.Write(p)
	_ = f.Close()
	return len(p), nil
}

// Path returns the file the writer appends to.
func (w *AppendWriter) Path() string { return w.path }

// Options controls logger construction.
type Options struct {
	// FilePath is the boot log. Empty disables file output.
	FilePath string

	// Console mirrors every line to this writer (stderr in interactive mode).
	Console io.Writer

	// Level is the minimum level written. The zero value is debug.
	Level zerolog.Level

	// Now overrides the clock used for line timestamps.
	Now func() time.Time
}

// New returns a Logger writing "HH:MM:SS.mmm - [tag] message key=value" lines.
func New(opts Options) *pkglog.ZerologAdapter {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var writers []io.Writer
	if opts.FilePath != "" {
		writers = append(writers, lineWriter(NewAppendWriter(opts.FilePath)))
	}
	if opts.Console != nil {
		writers = append(writers, lineWriter(opts.Console))
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).
		Level(opts.Level).
		Hook(zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
			e.Str(zerolog.TimestampFieldName, now().Format(LineTimeFormat))
		}))
	return pkglog.NewZerologAdapter(logger)
}

func lineWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.MessageFieldName},
		FormatTimestamp: func(i interface{}) string {
			return fmt.Sprintf("%v -", i)
		},
	}
}
