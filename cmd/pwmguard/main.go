package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/bft-labs/pwmguard/internal/invocation"
)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cmd := newRootCommand()
	// The login entry and respawned watchdogs pass "-silent -retry:N",
	// which pflag cannot parse as is.
	cmd.SetArgs(invocation.Normalize(os.Args[1:]))
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "pwmguard:", err)
		}
		os.Exit(1)
	}
}
