package log

import "time"

// Logger provides structured logging capabilities.
// Implementations must never fail the caller: logging is diagnostics only.
type Logger interface {
	// Debug logs a debug-level message with fields.
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with fields.
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with fields.
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with fields.
	Error(msg string, fields ...Field)
}

// TagKey is the field key rendered as the bracketed line tag.
const TagKey = "tag"

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// Tag creates the field that prefixes a line with "[name]".
func Tag(name string) Field {
	return Field{Key: TagKey, Value: name}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error".
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field with any value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
