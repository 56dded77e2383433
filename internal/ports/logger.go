package ports

import "github.com/bft-labs/pwmguard/pkg/log"

// Logger is the structured logging port. See package pkg/log.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors, re-exported so the application layer only imports ports.
var (
	Tag      = log.Tag
	String   = log.String
	Int      = log.Int
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
