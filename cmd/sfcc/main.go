// Package main is the entry point for the sfcc CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sfckit/sfcc/internal/cmd"
	oerrors "github.com/sfckit/sfcc/internal/errors"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		var exitErr *oerrors.ExitError
		if errors.As(err, &exitErr) {
			// The command layer may have reported it already.
			if !exitErr.Printed {
				fmt.Fprintln(os.Stderr, err)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(oerrors.ExitCodeFromError(err))
	}
}
