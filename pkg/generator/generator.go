// Package generator renders implementation templates into code artifacts.
//
// Each component of a system becomes one artifact in the target language,
// written under <out>/<language>/. Artifacts are independent: a missing
// template or an unbound placeholder fails that artifact alone and the
// remaining components still generate.
package generator

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/intentlab-dev/iopc/pkg/diag"
	"github.com/intentlab-dev/iopc/pkg/errtable"
	"github.com/intentlab-dev/iopc/pkg/intent"
	"github.com/intentlab-dev/iopc/pkg/registry"
)

// Status is the per-artifact outcome.
type Status string

// Artifact statuses.
const (
	StatusGenerated Status = "generated"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Artifact records the outcome of generating one component.
type Artifact struct {
	Component string `json:"component"`
	Language  string `json:"language"`
	Path      string `json:"path,omitempty"` // relative to the output root
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
	Size      int    `json:"size,omitempty"`
}

// Request describes one generation run for a single system.
type Request struct {
	System   *intent.SystemSpec
	View     *registry.View
	Errors   *errtable.Table
	Language string
	OutDir   string
	Workers  int
}

// Result holds the artifacts of a run in component declaration order plus
// the diagnostics derived from failures.
type Result struct {
	Artifacts []Artifact
	Diags     diag.List
}

// Count returns the number of artifacts with the given status.
func (r *Result) Count(s Status) int {
	n := 0
	for _, a := range r.Artifacts {
		if a.Status == s {
			n++
		}
	}
	return n
}

// Complete reports whether every artifact generated.
func (r *Result) Complete() bool {
	return r.Count(StatusGenerated) == len(r.Artifacts)
}

// UnknownMapError reports a component type with no template for the target
// language.
type UnknownMapError struct {
	ComponentType string
	Language      string
}

func (e *UnknownMapError) Error() string {
	return fmt.Sprintf("no implementation map for type %q targeting %q", e.ComponentType, e.Language)
}

// UnboundPlaceholderError reports a template placeholder that no binding
// could fill for the component being rendered.
type UnboundPlaceholderError struct {
	Template    string
	Placeholder string
}

func (e *UnboundPlaceholderError) Error() string {
	return fmt.Sprintf("template %s references unbound placeholder {%s}", e.Template, e.Placeholder)
}

// Run renders every component of the request's system across a bounded
// worker pool. An error is returned only when the output directory cannot
// be created; per-component failures are recorded on their artifact so one
// bad template never blocks the rest. Cancelling the context marks the
// components not yet rendered as cancelled.
func Run(ctx context.Context, req Request) (*Result, error) {
	components := req.System.UniqueComponents()
	if err := os.MkdirAll(filepath.Join(req.OutDir, req.Language), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	table := req.Errors
	if table == nil {
		table = errtable.Build(nil)
	}

	workers := req.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(components) {
		workers = len(components)
	}

	type workItem struct {
		index int
		comp  *intent.Component
	}
	queue := make(chan workItem, len(components))
	for i, c := range components {
		queue <- workItem{index: i, comp: c}
	}
	close(queue)

	artifacts := make([]Artifact, len(components))
	failures := make([]error, len(components))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range queue {
				art, err := renderOne(ctx, req, table, item.comp)
				resultsMu.Lock()
				artifacts[item.index] = art
				failures[item.index] = err
				resultsMu.Unlock()
			}
		}()
	}
	wg.Wait()

	return &Result{Artifacts: artifacts, Diags: failureDiags(failures)}, nil
}

// renderOne produces the artifact for a single component. The returned error
// mirrors a failed status and feeds diagnostic folding.
func renderOne(ctx context.Context, req Request, table *errtable.Table, comp *intent.Component) (Artifact, error) {
	art := Artifact{Component: comp.Name, Language: req.Language}

	select {
	case <-ctx.Done():
		art.Status = StatusCancelled
		art.Error = ctx.Err().Error()
		return art, nil
	default:
	}

	tmpl, ok := req.View.Lookup(comp.TypeTag(), req.Language)
	if !ok {
		err := &UnknownMapError{ComponentType: comp.TypeTag(), Language: req.Language}
		art.Status = StatusFailed
		art.Error = err.Error()
		return art, err
	}

	b := &bindings{sys: req.System, comp: comp, language: req.Language, errors: table}
	content, unbound := renderTemplate(tmpl, b.bind)
	if unbound != "" {
		err := &UnboundPlaceholderError{
			Template:    comp.TypeTag() + "/" + req.Language,
			Placeholder: unbound,
		}
		art.Status = StatusFailed
		art.Error = err.Error()
		return art, err
	}

	rel := path.Join(req.Language, comp.Name+req.View.Extension(req.Language))
	if err := os.WriteFile(filepath.Join(req.OutDir, filepath.FromSlash(rel)), []byte(content), 0o644); err != nil {
		art.Status = StatusFailed
		art.Error = err.Error()
		return art, nil
	}

	art.Status = StatusGenerated
	art.Path = rel
	art.Size = len(content)
	return art, nil
}

// failureDiags folds per-artifact errors into diagnostics: one per distinct
// missing map key and one per distinct unbound placeholder, in artifact
// order.
func failureDiags(failures []error) diag.List {
	var list diag.List
	seen := make(map[string]bool)
	for _, err := range failures {
		switch e := err.(type) {
		case *UnknownMapError:
			k := "map:" + e.ComponentType + "/" + e.Language
			if !seen[k] {
				seen[k] = true
				list = append(list, diag.UnknownMap(e.ComponentType, e.Language))
			}
		case *UnboundPlaceholderError:
			k := "placeholder:" + e.Template + "#" + e.Placeholder
			if !seen[k] {
				seen[k] = true
				list = append(list, diag.UnboundPlaceholder(e.Template, e.Placeholder))
			}
		}
	}
	return list
}
