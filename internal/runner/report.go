package runner

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/autoimport/pkg/observability"
	"github.com/Sumatoshi-tech/autoimport/pkg/sourcecode"
)

// FileResult is the outcome of one processed file.
type FileResult struct {
	Path string
	// Status is one of the observability Status constants.
	Status string
	// Reason explains a skipped file.
	Reason string
	// Lines is the line count of the input.
	Lines    int
	Fix      sourcecode.Result
	Diff     string
	Err      error
	Duration time.Duration
}

// Report lists file results in discovery order.
type Report struct {
	Files []FileResult
}

// Changed returns the number of files that changed or would change.
func (r *Report) Changed() int {
	return r.count(observability.StatusChanged)
}

// Lines returns the total line count of the files that were read.
func (r *Report) Lines() int {
	var n int

	for _, res := range r.Files {
		n += res.Lines
	}

	return n
}

// Failed returns the number of files that could not be fixed.
func (r *Report) Failed() int {
	return r.count(observability.StatusError)
}

// Skipped returns the number of binary or oversized files.
func (r *Report) Skipped() int {
	return r.count(observability.StatusSkipped)
}

func (r *Report) count(status string) int {
	var n int

	for _, res := range r.Files {
		if res.Status == status {
			n++
		}
	}

	return n
}

// WriteSummary renders the per-file summary table to w.
func (r *Report) WriteSummary(w io.Writer, colorize bool) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "Status", "Moved", "Added", "Removed", "Unresolved"})

	var moved, added, removed, unresolved int

	for _, res := range r.Files {
		moved += res.Fix.Moved
		added += len(res.Fix.Added)
		removed += len(res.Fix.Removed)
		unresolved += len(res.Fix.Unresolved)

		tbl.AppendRow(table.Row{
			res.Path,
			statusCell(res, colorize),
			res.Fix.Moved,
			len(res.Fix.Added),
			len(res.Fix.Removed),
			strings.Join(res.Fix.Unresolved, ", "),
		})
	}

	tbl.AppendFooter(table.Row{
		plural(len(r.Files), "file"),
		fmt.Sprintf("%s changed", humanize.Comma(int64(r.Changed()))),
		moved, added, removed, unresolved,
	})

	tbl.Render()
}

func statusCell(res FileResult, colorize bool) string {
	text := res.Status
	if res.Reason != "" {
		text += " (" + res.Reason + ")"
	}

	var attr color.Attribute

	switch res.Status {
	case observability.StatusChanged:
		attr = color.FgYellow
	case observability.StatusError:
		attr = color.FgRed
	case observability.StatusSkipped:
		attr = color.FgHiBlack
	default:
		attr = color.FgGreen
	}

	c := color.New(attr)
	if colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}

	return c.Sprint(text)
}
