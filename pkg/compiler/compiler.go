// Package compiler drives the compilation pipeline, connecting parsed
// systems to graphs, validation, machines, and code generation.
package compiler

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/intentlab-dev/iopc/pkg/diag"
	"github.com/intentlab-dev/iopc/pkg/errtable"
	"github.com/intentlab-dev/iopc/pkg/generator"
	"github.com/intentlab-dev/iopc/pkg/graph"
	"github.com/intentlab-dev/iopc/pkg/intent"
	"github.com/intentlab-dev/iopc/pkg/machine"
	"github.com/intentlab-dev/iopc/pkg/registry"
	"github.com/intentlab-dev/iopc/pkg/report"
	"github.com/intentlab-dev/iopc/pkg/validator"
)

// Config configures a Compiler. Registry defaults to the embedded builtins.
type Config struct {
	Registry    *registry.Registry
	Workers     int // generation pool size per system
	ToolVersion string
}

// Compiler runs the pipeline over parsed system definitions. One instance
// serves any number of runs.
type Compiler struct {
	config Config
	base   *registry.Registry
}

// New creates a Compiler.
func New(cfg Config) *Compiler {
	base := cfg.Registry
	if base == nil {
		base = registry.Builtin()
	}
	return &Compiler{config: cfg, base: base}
}

// Unit is one system prepared for compilation.
type Unit struct {
	System *intent.SystemSpec
	Graph  *graph.Graph
	Order  []string // topological, nil when cyclic
	Diags  diag.List
}

// Analysis is the validation outcome across all units of one input.
type Analysis struct {
	Units []Unit
	Run   diag.List // findings not owned by a single unit
}

// HasErrors reports whether any finding has error severity.
func (a *Analysis) HasErrors() bool {
	if a.Run.HasErrors() {
		return true
	}
	for _, u := range a.Units {
		if u.Diags.HasErrors() {
			return true
		}
	}
	return false
}

// Diags flattens run-level findings and every unit's findings in order.
func (a *Analysis) Diags() diag.List {
	out := make(diag.List, 0, len(a.Run))
	out = append(out, a.Run...)
	for _, u := range a.Units {
		out = append(out, u.Diags...)
	}
	return out
}

// Check validates every system: graph construction, semantic checks, and
// cross-system name collisions. It never stops early; the full diagnostic
// set comes back on every call.
func (c *Compiler) Check(systems []*intent.SystemSpec) *Analysis {
	a := &Analysis{Run: validator.DuplicateSystems(systems)}
	v := validator.New(c.base)
	for _, sys := range systems {
		g := graph.Build(sys)
		u := Unit{System: sys, Graph: g, Diags: v.Validate(sys, g)}
		if order, ok := g.TopologicalOrder(); ok {
			u.Order = order
		}
		a.Units = append(a.Units, u)
	}
	return a
}

// Options are per-invocation compile settings.
type Options struct {
	Target string
	OutDir string
	HTML   bool
}

// Outcome bundles the analysis and the assembled report of one compile run.
type Outcome struct {
	Analysis *Analysis
	Report   *report.Report
}

// Compile validates every unit, compiles the clean ones (machines, error
// table, generated artifacts), and writes report.json plus artifacts under
// opts.OutDir. Units gate independently: a validation error in one system
// never blocks a clean sibling, though run-level errors such as artifact
// path conflicts block everything. The returned error covers infrastructure
// failures only; compilation problems are diagnostics in the report.
func (c *Compiler) Compile(ctx context.Context, systems []*intent.SystemSpec, opts Options) (*Outcome, error) {
	start := time.Now()

	analysis := c.Check(systems)
	analysis.Run = append(analysis.Run, c.pathConflicts(systems, opts.Target)...)
	runBlocked := analysis.Run.HasErrors()

	results := make([]report.SystemReport, len(analysis.Units))
	errs := make([]error, len(analysis.Units))
	var wg sync.WaitGroup
	for i := range analysis.Units {
		u := analysis.Units[i]
		if runBlocked || u.Diags.HasErrors() {
			results[i] = describe(u)
			continue
		}
		wg.Add(1)
		go func(idx int, u Unit) {
			defer wg.Done()
			results[idx], errs[idx] = c.compileUnit(ctx, u, opts)
		}(i, u)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	rep := report.Build(report.BuildConfig{
		ToolName:    "iopc",
		ToolVersion: c.config.ToolVersion,
		Target:      opts.Target,
		StartTime:   start,
		EndTime:     time.Now(),
	}, results, analysis.Run)

	if err := report.Write(opts.OutDir, rep); err != nil {
		return nil, err
	}
	if opts.HTML {
		if err := report.WriteHTML(opts.OutDir, rep, report.HTMLConfig{}); err != nil {
			return nil, err
		}
	}
	return &Outcome{Analysis: analysis, Report: rep}, nil
}

// compileUnit lowers one validated system. Machines and the error table are
// independent and build concurrently; generation then fans out over the
// worker pool.
func (c *Compiler) compileUnit(ctx context.Context, u Unit, opts Options) (report.SystemReport, error) {
	sr := describe(u)

	var machines []*machine.Machine
	var table *errtable.Table
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		machines = make([]*machine.Machine, 0, len(u.System.Flows))
		for _, f := range u.System.Flows {
			machines = append(machines, machine.Compile(f))
		}
	}()
	go func() {
		defer wg.Done()
		table = errtable.Build(u.System.ErrorRules)
	}()
	wg.Wait()
	sr.Machines = machines

	res, err := generator.Run(ctx, generator.Request{
		System:   u.System,
		View:     registry.NewView(c.base, u.System.Maps),
		Errors:   table,
		Language: opts.Target,
		OutDir:   opts.OutDir,
		Workers:  c.config.Workers,
	})
	if err != nil {
		return sr, err
	}
	sr.Artifacts = res.Artifacts
	sr.Diagnostics = append(sr.Diagnostics, res.Diags...)
	return sr, nil
}

// describe captures the validation-stage view of a unit for the report.
func describe(u Unit) report.SystemReport {
	return report.SystemReport{
		Name:        u.System.Name,
		Components:  len(u.System.UniqueComponents()),
		Order:       u.Order,
		Edges:       u.Graph.Edges(),
		Diagnostics: u.Diags,
	}
}

// pathConflicts reports cross-system artifact path collisions for the
// target language. Collisions inside one system surface as duplicate
// component names instead.
func (c *Compiler) pathConflicts(systems []*intent.SystemSpec, target string) diag.List {
	var list diag.List
	ext := c.base.Extension(target)
	owner := make(map[string]string)
	for _, sys := range systems {
		for _, comp := range sys.UniqueComponents() {
			p := path.Join(target, comp.Name+ext)
			if prev, ok := owner[p]; ok {
				if prev != sys.Name {
					list = append(list, diag.ArtifactPathConflict(p, prev, sys.Name))
				}
				continue
			}
			owner[p] = sys.Name
		}
	}
	return list
}
