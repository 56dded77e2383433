package log

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ZerologAdapter implements Logger using zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates an adapter wrapping an existing zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Debug logs a debug-level message.
func (z *ZerologAdapter) Debug(msg string, fields ...Field) {
	z.emit(z.logger.Debug(), msg, fields)
}

// Info logs an info-level message.
func (z *ZerologAdapter) Info(msg string, fields ...Field) {
	z.emit(z.logger.Info(), msg, fields)
}

// Warn logs a warning-level message.
func (z *ZerologAdapter) Warn(msg string, fields ...Field) {
	z.emit(z.logger.Warn(), msg, fields)
}

// Error logs an error-level message.
func (z *ZerologAdapter) Error(msg string, fields ...Field) {
	z.emit(z.logger.Error(), msg, fields)
}

// emit moves the tag field in front of the message and appends the rest as
// structured fields. A nil event means the level is disabled.
func (z *ZerologAdapter) emit(event *zerolog.Event, msg string, fields []Field) {
	if event == nil {
		return
	}
	for _, f := range fields {
		if f.Key == TagKey {
			msg = fmt.Sprintf("[%v] %s", f.Value, msg)
			continue
		}
		event = addField(event, f)
	}
	event.Msg(msg)
}

// addField adds a Field to a zerolog.Event.
func addField(event *zerolog.Event, f Field) *zerolog.Event {
	switch v := f.Value.(type) {
	case string:
		return event.Str(f.Key, v)
	case int:
		return event.Int(f.Key, v)
	case bool:
		return event.Bool(f.Key, v)
	case time.Duration:
		return event.Dur(f.Key, v)
	case error:
		return event.Err(v)
	case fmt.Stringer:
		return event.Stringer(f.Key, v)
	default:
		return event.Interface(f.Key, v)
	}
}

// Logger returns the underlying zerolog.Logger.
func (z *ZerologAdapter) Logger() zerolog.Logger {
	return z.logger
}
