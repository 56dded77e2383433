// Package invocation holds the command-line contract between pwmguard
// processes: the login entry and every respawned watchdog run as
//
//	pwmguard -silent -retry:<N>
package invocation

import (
	"strconv"
	"strings"
)

const (
	// SilentFlag selects the boot watchdog.
	SilentFlag = "-silent"

	// RetryPrefix carries the attempt index, as in "-retry:3".
	RetryPrefix = "-retry:"
)

// Invocation is what a process learns from its arguments.
type Invocation struct {
	Silent  bool
	Attempt int
}

// Parse reads the legacy tokens from args. An absent, malformed or negative
// retry index yields 0.
func Parse(args []string) Invocation {
	var inv Invocation
	for _, a := range args {
		switch {
		case a == SilentFlag || a == "--silent":
			inv.Silent = true
		case strings.HasPrefix(a, RetryPrefix):
			inv.Attempt = parseAttempt(strings.TrimPrefix(a, RetryPrefix))
		}
	}
	return inv
}

func parseAttempt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// RespawnArgs returns the arguments for the watchdog with the given index.
func RespawnArgs(attempt int) []string {
	if attempt < 0 {
		attempt = 0
	}
	return []string{SilentFlag, RetryPrefix + strconv.Itoa(attempt)}
}

// AutostartArgs returns the arguments a login registration must pass.
func AutostartArgs() []string {
	return RespawnArgs(0)
}

// Normalize rewrites the legacy tokens into flags cobra understands:
// "-silent" becomes "--silent" and "-retry:N" becomes "--retry=N", with a
// malformed N replaced by 0. Other arguments pass through unchanged.
func Normalize(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		switch {
		case a == SilentFlag:
			out = append(out, "--silent")
		case strings.HasPrefix(a, RetryPrefix):
			out = append(out, "--retry="+strconv.Itoa(parseAttempt(strings.TrimPrefix(a, RetryPrefix))))
		default:
			out = append(out, a)
		}
	}
	return out
}
