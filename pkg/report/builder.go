package report

import (
	"time"

	"github.com/intentlab-dev/iopc/pkg/diag"
	"github.com/intentlab-dev/iopc/pkg/generator"
)

// BuildConfig carries run-level metadata for the report.
type BuildConfig struct {
	ToolName    string
	ToolVersion string
	Target      string
	StartTime   time.Time
	EndTime     time.Time
}

// Build assembles the report from per-system outcomes. Each system's status
// and the run summary are derived here so callers only fill in names,
// artifacts, and diagnostics. global holds findings that belong to no
// system, such as parse errors.
func Build(cfg BuildConfig, systems []SystemReport, global diag.List) *Report {
	r := &Report{
		Version:     Version,
		Tool:        Tool{Name: cfg.ToolName, Version: cfg.ToolVersion},
		Target:      cfg.Target,
		StartTime:   cfg.StartTime,
		EndTime:     cfg.EndTime,
		DurationMs:  cfg.EndTime.Sub(cfg.StartTime).Milliseconds(),
		Systems:     make([]SystemReport, len(systems)),
		Diagnostics: global,
	}

	r.Summary.Systems = len(systems)
	for i, s := range systems {
		s.Status = systemStatus(s)
		r.Systems[i] = s

		r.Summary.Components += s.Components
		for _, a := range s.Artifacts {
			switch a.Status {
			case generator.StatusGenerated:
				r.Summary.Generated++
			case generator.StatusFailed:
				r.Summary.Failed++
			case generator.StatusCancelled:
				r.Summary.Cancelled++
			}
		}
		r.Summary.Errors += len(s.Diagnostics.Errors())
		r.Summary.Warnings += len(s.Diagnostics.Warnings())
	}
	for _, d := range global {
		if d.IsError() {
			r.Summary.Errors++
		} else {
			r.Summary.Warnings++
		}
	}

	r.Status = runStatus(r)
	return r
}

// systemStatus derives one system's status: failed when errors blocked
// generation or nothing generated, cancelled when generation was
// interrupted, partial when only some artifacts made it, success otherwise.
// Warnings never demote a status.
func systemStatus(s SystemReport) Status {
	generated, failedN, cancelledN := 0, 0, 0
	for _, a := range s.Artifacts {
		switch a.Status {
		case generator.StatusGenerated:
			generated++
		case generator.StatusCancelled:
			cancelledN++
		default:
			failedN++
		}
	}
	switch {
	case failedN == 0 && cancelledN == 0 && !s.Diagnostics.HasErrors():
		return StatusSuccess
	case cancelledN > 0:
		return StatusCancelled
	case generated > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// runStatus folds the summary into one run status. Cancellation dominates; a
// run that produced any artifact despite failures is partial; a run with
// errors and nothing to show is failed.
func runStatus(r *Report) Status {
	clean := !r.Diagnostics.HasErrors()
	for _, s := range r.Systems {
		if s.Status != StatusSuccess {
			clean = false
		}
	}
	switch {
	case clean:
		return StatusSuccess
	case r.Summary.Cancelled > 0:
		return StatusCancelled
	case r.Summary.Generated > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}
