package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/intentlab-dev/iopc/pkg/compiler"
	"github.com/intentlab-dev/iopc/pkg/diag"
	"github.com/intentlab-dev/iopc/pkg/intent"
	"github.com/intentlab-dev/iopc/pkg/logger"
	"github.com/urfave/cli/v2"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Check a spec file without generating code",
	ArgsUsage: "<spec-file>",
	Description: `Parse and validate an intent definition. Every finding is
collected; the command never stops at the first problem.

Exit codes:
  0  no errors (warnings allowed)
  2  syntax or validation errors

Examples:
  iopc validate shop.iop
  iopc --verbose validate shop.iop`,
	Action: runValidate,
}

func runValidate(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one spec file is required")
	}
	setupLogging(c)
	defer logger.Close()

	specPath := c.Args().First()
	systems, err := intent.ParseFile(specPath)
	if err != nil {
		var serr *intent.SyntaxError
		if errors.As(err, &serr) {
			printDiag(os.Stderr, specPath, diag.Syntax(serr))
			return cli.Exit("", 2)
		}
		return err
	}
	logger.Info("Parsed %d system(s) from %s", len(systems), specPath)

	analysis := compiler.New(compiler.Config{}).Check(systems)
	diags := analysis.Diags()
	for _, d := range diags {
		printDiag(os.Stderr, specPath, d)
	}

	if analysis.HasErrors() {
		fmt.Printf("%s: %s\n", specPath, diagSummary(diags))
		return cli.Exit("", 2)
	}

	for _, u := range analysis.Units {
		fmt.Printf("  %s✓%s %s: %d component(s), %d flow(s)\n",
			color(colorGreen), color(colorReset),
			u.System.Name, len(u.System.UniqueComponents()), len(u.System.Flows))
	}
	if len(diags.Warnings()) > 0 {
		fmt.Printf("%s: %s\n", specPath, diagSummary(diags))
	}
	logger.Info("Validation passed: %d system(s)", len(analysis.Units))
	return nil
}
