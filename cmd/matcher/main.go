package main

import (
	"fmt"
	"os"

	"gnucash-payment-matcher/cmd/matcher/cmd"
	"gnucash-payment-matcher/pkg/errors"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if merr, ok := errors.As(err); ok && len(merr.Context) > 0 {
			for key, value := range merr.Context {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
			}
		}
		os.Exit(errors.ExitCode(err))
	}
}
