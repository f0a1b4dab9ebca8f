package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/intentlab-dev/iopc/pkg/compiler"
	"github.com/intentlab-dev/iopc/pkg/config"
	"github.com/intentlab-dev/iopc/pkg/generator"
	"github.com/intentlab-dev/iopc/pkg/intent"
	"github.com/intentlab-dev/iopc/pkg/logger"
	"github.com/intentlab-dev/iopc/pkg/registry"
	"github.com/intentlab-dev/iopc/pkg/report"
	"github.com/urfave/cli/v2"
)

var compileCommand = &cli.Command{
	Name:      "compile",
	Usage:     "Generate component code for a target language",
	ArgsUsage: "<spec-file>",
	Description: `Validate an intent definition and generate one artifact per
component under <out>/<language>/. A machine-readable report.json is always
written to the output directory.

Exit codes:
  0  every artifact generated
  1  parse failure
  2  validation errors
  3  partial, failed, or cancelled generation

Examples:
  iopc compile shop.iop --target go
  iopc compile shop.iop --target python --out ./build --html
  iopc compile shop.iop --target go --maps team-patterns.yaml`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "target",
			Aliases: []string{"t"},
			Usage:   "Target language (go, python, typescript, ...)",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output directory (default: ./generated)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Generation worker pool size (0 = number of CPUs)",
		},
		&cli.StringSliceFlag{
			Name:  "maps",
			Usage: "Extra implementation-map YAML files",
		},
		&cli.BoolFlag{
			Name:  "html",
			Usage: "Also write report.html",
		},
	},
	Action: runCompile,
}

func runCompile(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one spec file is required")
	}
	setupLogging(c)
	defer logger.Close()

	cfg, err := loadWorkspaceConfig(c)
	if err != nil {
		return err
	}

	target := resolveTarget(c.String("target"), cfg)
	if target == "" {
		return fmt.Errorf("--target is required (or set target in iopc.yaml)")
	}
	outDir := resolveOutDir(c.String("out"), cfg)
	workers := c.Int("workers")
	if workers == 0 {
		workers = cfg.Workers
	}
	html := c.Bool("html") || cfg.HTML

	specPath := c.Args().First()
	systems, err := intent.ParseFile(specPath)
	if err != nil {
		return err
	}

	reg, err := buildRegistry(append(cfg.Maps, c.StringSlice("maps")...))
	if err != nil {
		return err
	}

	// Ctrl+C cancels the run; in-flight artifacts finish, the rest are
	// marked cancelled and the report is still written.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Compiling %s for %s into %s", specPath, target, outDir)
	comp := compiler.New(compiler.Config{Registry: reg, Workers: workers, ToolVersion: Version})
	outcome, err := comp.Compile(ctx, systems, compiler.Options{Target: target, OutDir: outDir, HTML: html})
	if err != nil {
		return err
	}

	printCompileSummary(specPath, outDir, html, outcome.Report)
	logger.Info("Compile finished: %s (%d generated, %d failed, %d cancelled)",
		outcome.Report.Status, outcome.Report.Summary.Generated,
		outcome.Report.Summary.Failed, outcome.Report.Summary.Cancelled)

	if code := exitCode(outcome); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

// resolveTarget picks the target language from the flag or workspace config.
func resolveTarget(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.Target
}

// resolveOutDir picks the output directory, defaulting to ./generated.
func resolveOutDir(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.Output != "" {
		return cfg.Output
	}
	return "./generated"
}

// buildRegistry layers pattern sources over the builtins: installed packs
// from <home>/maps first, then explicitly passed files. Later sources win.
func buildRegistry(mapFiles []string) (*registry.Registry, error) {
	var files []*registry.File

	installed, err := filepath.Glob(filepath.Join(config.GetMapsDir(), "*.yaml"))
	if err == nil {
		sort.Strings(installed)
		for _, p := range installed {
			f, err := registry.Load(p)
			if err != nil {
				return nil, fmt.Errorf("failed to load installed maps %s: %w", p, err)
			}
			files = append(files, f)
		}
	}
	for _, p := range mapFiles {
		f, err := registry.Load(p)
		if err != nil {
			return nil, fmt.Errorf("failed to load maps file %s: %w", p, err)
		}
		files = append(files, f)
	}
	return registry.Builtin().Merge(files...), nil
}

// exitCode maps a compile outcome to the process exit code.
func exitCode(out *compiler.Outcome) int {
	if out.Analysis.HasErrors() {
		return 2
	}
	if out.Report.Status != report.StatusSuccess {
		return 3
	}
	return 0
}

func printCompileSummary(specPath, outDir string, html bool, rep *report.Report) {
	for _, d := range rep.Diagnostics {
		printDiag(os.Stderr, specPath, d)
	}
	for _, s := range rep.Systems {
		for _, d := range s.Diagnostics {
			printDiag(os.Stderr, specPath, d)
		}
	}

	for _, s := range rep.Systems {
		fmt.Printf("\n  %s%s%s (%s)\n", color(colorBold), s.Name, color(colorReset), s.Status)
		for _, a := range s.Artifacts {
			switch a.Status {
			case generator.StatusGenerated:
				fmt.Printf("    %s✓%s %s\n", color(colorGreen), color(colorReset), filepath.Join(outDir, a.Path))
			case generator.StatusCancelled:
				fmt.Printf("    %s-%s %s (cancelled)\n", color(colorCyan), color(colorReset), a.Component)
			default:
				fmt.Printf("    %s✗%s %s: %s\n", color(colorRed), color(colorReset), a.Component, a.Error)
			}
		}
	}

	sum := rep.Summary
	fmt.Printf("\n%d generated, %d failed, %d cancelled (%s)\n",
		sum.Generated, sum.Failed, sum.Cancelled, formatDuration(rep.DurationMs))
	fmt.Printf("Report: %s\n", filepath.Join(outDir, "report.json"))
	if html {
		fmt.Printf("        %s\n", filepath.Join(outDir, "report.html"))
	}
}
