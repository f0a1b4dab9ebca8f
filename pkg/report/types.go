// Package report assembles and writes the compilation report.
//
// A compile run produces two files in the output directory:
//   - report.json: machine-readable run record (statuses, artifacts, diagnostics)
//   - report.html: self-contained page rendered from the same data
//
// The JSON file is written atomically so a consumer polling the output
// directory never observes a half-written report.
package report

import (
	"time"

	"github.com/intentlab-dev/iopc/pkg/diag"
	"github.com/intentlab-dev/iopc/pkg/generator"
	"github.com/intentlab-dev/iopc/pkg/graph"
	"github.com/intentlab-dev/iopc/pkg/machine"
)

// Version is the report schema version.
const Version = "1.0.0"

// Status summarizes a run or a single system.
type Status string

// Status values. Cancelled marks a run or system whose generation was
// interrupted; files written before the interruption remain valid.
const (
	StatusSuccess   Status = "success"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Report is the root of report.json.
type Report struct {
	Version     string         `json:"version"`
	Tool        Tool           `json:"tool"`
	Target      string         `json:"target,omitempty"`
	Status      Status         `json:"status"`
	StartTime   time.Time      `json:"startTime"`
	EndTime     time.Time      `json:"endTime"`
	DurationMs  int64          `json:"durationMs"`
	Summary     Summary        `json:"summary"`
	Systems     []SystemReport `json:"systems"`
	Diagnostics diag.List      `json:"diagnostics,omitempty"` // findings not tied to one system
}

// Tool identifies the compiler that produced the report.
type Tool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Summary contains aggregated counts across all systems.
type Summary struct {
	Systems    int `json:"systems"`
	Components int `json:"components"`
	Generated  int `json:"generated"`
	Failed     int `json:"failed"`
	Cancelled  int `json:"cancelled"`
	Errors     int `json:"errors"`
	Warnings   int `json:"warnings"`
}

// SystemReport records the outcome for one system definition. Order and
// Edges document the dependency graph; Machines holds the compiled flow
// state machines.
type SystemReport struct {
	Name        string               `json:"name"`
	Status      Status               `json:"status"`
	Components  int                  `json:"components"`
	Order       []string             `json:"order,omitempty"` // topological, absent when cyclic
	Edges       []graph.Edge         `json:"edges,omitempty"`
	Machines    []*machine.Machine   `json:"machines,omitempty"`
	Artifacts   []generator.Artifact `json:"artifacts,omitempty"`
	Diagnostics diag.List            `json:"diagnostics,omitempty"`
}
