// Package log provides the logging abstraction used by pwmguard components.
//
// Components depend on the Logger interface only. A zerolog adapter renders
// events as one line each:
//
//	08:01:02.123 - [probe] driver responded current=800 base=24000
//
// where the bracketed part comes from the [Tag] field. Use the no-op logger
// in tests:
//
//	logger := log.NewNoopLogger()
package log
