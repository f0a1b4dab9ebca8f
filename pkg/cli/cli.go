// Package cli provides the command-line interface for iopc.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/intentlab-dev/iopc/pkg/config"
	"github.com/intentlab-dev/iopc/pkg/diag"
	"github.com/intentlab-dev/iopc/pkg/logger"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Echo log messages to stderr",
		EnvVars: []string{"IOPC_VERBOSE"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write a log file at the given path",
		EnvVars: []string{"IOPC_LOG_FILE"},
	},
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to workspace iopc.yaml",
		EnvVars: []string{"IOPC_CONFIG"},
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "iopc",
		Usage:   "Compile intent definitions into component code",
		Version: Version,
		Description: `iopc parses intent definitions, validates them, and generates
component scaffolds for a target language.

Examples:
  iopc validate shop.iop
  iopc compile shop.iop --target go --out ./generated
  iopc graph shop.iop --json`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			validateCommand,
			compileCommand,
			graphCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging applies the global --verbose and --log-file flags.
func setupLogging(c *cli.Context) {
	if c.Bool("verbose") {
		logger.SetVerbose(true)
	}
	if logPath := c.String("log-file"); logPath != "" {
		if err := logger.Init(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to initialize logger: %v\n", err)
		}
	}
}

// loadWorkspaceConfig loads --config when given, otherwise looks for
// iopc.yaml in the working directory.
func loadWorkspaceConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	return config.LoadFromDir(".")
}

// printDiag writes one finding in file:line:col form.
func printDiag(w io.Writer, path string, d diag.Diagnostic) {
	sevColor := colorYellow
	if d.IsError() {
		sevColor = colorRed
	}
	sev := color(sevColor) + string(d.Severity) + color(colorReset)
	if d.Pos != nil {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", path, d.Pos.Line, d.Pos.Column, sev, d.Message)
		return
	}
	fmt.Fprintf(w, "%s: %s: %s\n", path, sev, d.Message)
}

// diagSummary renders the error/warning counts of a run.
func diagSummary(l diag.List) string {
	return fmt.Sprintf("%d error(s), %d warning(s)", len(l.Errors()), len(l.Warnings()))
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// colorsEnabled determines if ANSI colors should be used
var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

// formatDuration formats milliseconds to a human-readable string.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}
