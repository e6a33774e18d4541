package cmd

import (
	"fmt"
	"os"
	"strconv"

	gosourcemap "github.com/go-sourcemap/sourcemap"
	"github.com/spf13/cobra"

	"github.com/sfckit/sfcc/internal/cmdtypes"
	oerrors "github.com/sfckit/sfcc/internal/errors"
	"github.com/sfckit/sfcc/internal/output"
	"github.com/sfckit/sfcc/internal/sourcemap"
)

// NewTraceCmd creates the trace command.
func NewTraceCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "trace <map> <line> <column>",
		Short: "Find the original position of a generated position",
		Long: `Look up a generated position in a source map.

Line is 1-based and column is 0-based, as reported by browsers. With
--verbose every mapping of the file is listed as well.

Examples:
  sfcc trace dist/App.vue.js.map 12 4`,
		Args: cobra.ExactArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			return runTrace(c, args, g.Verbose)
		},
	}
}

func runTrace(c *cobra.Command, args []string, verbose bool) error {
	line, err := strconv.Atoi(args[1])
	if err != nil || line < 1 {
		return &oerrors.ExitError{Err: fmt.Errorf("invalid line %q", args[1]), Code: oerrors.ExitGeneralError}
	}
	column, err := strconv.Atoi(args[2])
	if err != nil || column < 0 {
		return &oerrors.ExitError{Err: fmt.Errorf("invalid column %q", args[2]), Code: oerrors.ExitGeneralError}
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		if os.IsNotExist(err) {
			return oerrors.NewNotFoundError("source map not found", args[0], "")
		}
		return err
	}

	consumer, err := gosourcemap.Parse(args[0], data)
	if err != nil {
		return oerrors.NewValidationError(err.Error(), args[0], "", "The file is not a version 3 source map.")
	}

	if verbose {
		m, err := sourcemap.Parse(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.OutOrStdout(), sourcemap.Describe(m))
	}

	source, name, origLine, origColumn, ok := consumer.Source(line, column)
	if !ok {
		return oerrors.NewNotFoundError(fmt.Sprintf("no mapping at %d:%d", line, column), args[0], "")
	}

	out := fmt.Sprintf("%s:%d:%d", output.StyleNoun.Render(source), origLine, origColumn)
	if name != "" {
		out += " " + output.StyleDim.Render("("+name+")")
	}
	fmt.Fprintln(c.OutOrStdout(), out)
	return nil
}
