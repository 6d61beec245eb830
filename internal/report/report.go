package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/unibench/unibench/internal/bench"
	"github.com/unibench/unibench/internal/schema"
)

// Report renders the benchmark result table into a markdown document and
// chart data. It consumes the runner's measurement sequence plus the static
// query labels and the index list; it adds no measurements of its own.
type Report struct {
	RunID        string
	GeneratedAt  time.Time
	Scales       []int
	Labels       map[int]string
	Indexes      []schema.Index
	Measurements []bench.Measurement
}

// New creates a report over the given measurement sequence
func New(runID string, scales []int, measurements []bench.Measurement) *Report {
	return &Report{
		RunID:        runID,
		GeneratedAt:  time.Now(),
		Scales:       scales,
		Labels:       bench.QueryLabels(),
		Indexes:      schema.IndexSet,
		Measurements: measurements,
	}
}

// LargestScale returns the biggest configured scale, the one the indexed
// pass ran against.
func (r *Report) LargestScale() int {
	if len(r.Scales) == 0 {
		return 0
	}
	return r.Scales[len(r.Scales)-1]
}

// WriteMarkdown renders the report and writes it to path
func (r *Report) WriteMarkdown(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(r.Markdown()), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Markdown renders the full report document
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("# University Database Performance Analysis Report\n\n")
	fmt.Fprintf(&b, "Run `%s`, generated %s.\n\n", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## Database Schema\n\n")
	b.WriteString("Five tables: departments, teachers, courses, students and the\n")
	b.WriteString("enrollments junction table linking students to courses.\n\n")

	b.WriteString("## Data Scales Tested\n\n")
	for _, scale := range r.Scales {
		fmt.Fprintf(&b, "- %s students (~%s-%s enrollments)\n",
			scaleLabel(scale), compact(scale*5), compact(scale*10))
	}
	b.WriteString("\n")

	r.writeBaselineTable(&b)
	r.writeComparisonTable(&b)
	r.writeSummary(&b)

	return b.String()
}

// writeBaselineTable emits the per-scale no-index latency table
func (r *Report) writeBaselineTable(b *strings.Builder) {
	b.WriteString("## Query Latency Without Indexes\n\n")
	b.WriteString("| Data Scale |")
	for id := 1; id <= len(r.Labels); id++ {
		fmt.Fprintf(b, " Query %d |", id)
	}
	b.WriteString("\n|---|")
	for id := 1; id <= len(r.Labels); id++ {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for _, scale := range r.Scales {
		fmt.Fprintf(b, "| %s students |", scaleLabel(scale))
		for id := 1; id <= len(r.Labels); id++ {
			m, ok := bench.Find(r.Measurements, scale, id, bench.IndexStateWithout)
			fmt.Fprintf(b, " %s |", cell(m, ok))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for id := 1; id <= len(r.Labels); id++ {
		fmt.Fprintf(b, "- Query %d: %s\n", id, r.Labels[id])
	}
	b.WriteString("\n")
}

// writeComparisonTable emits the paired before/after table for the largest
// scale. Improvement is signed: indexes that slow a query down, a real
// outcome for small tables and low-selectivity patterns, show up negative.
func (r *Report) writeComparisonTable(b *strings.Builder) {
	scale := r.LargestScale()

	fmt.Fprintf(b, "## Impact of Indexing at %s Students\n\n", scaleLabel(scale))
	b.WriteString("Indexes applied:\n\n")
	for _, idx := range r.Indexes {
		fmt.Fprintf(b, "- `%s` on %s(%s)\n", idx.Name, idx.Table, strings.Join(idx.Columns, ", "))
	}
	b.WriteString("\n")

	b.WriteString("| Query | Without Indexes | With Indexes | Improvement |\n")
	b.WriteString("|---|---|---|---|\n")

	for id := 1; id <= len(r.Labels); id++ {
		before, okBefore := bench.Find(r.Measurements, scale, id, bench.IndexStateWithout)
		after, okAfter := bench.Find(r.Measurements, scale, id, bench.IndexStateWith)

		improvement := "—"
		if okBefore && okAfter && before.Completed() && after.Completed() && before.ElapsedMS > 0 {
			pct := (before.ElapsedMS - after.ElapsedMS) / before.ElapsedMS * 100
			improvement = fmt.Sprintf("%+.1f%%", pct)
		}

		fmt.Fprintf(b, "| Query %d | %s | %s | %s |\n",
			id, cell(before, okBefore), cell(after, okAfter), improvement)
	}
	b.WriteString("\n")
}

// writeSummary distinguishes completed, timed-out and failed measurements
func (r *Report) writeSummary(b *strings.Builder) {
	completed, timedOut, failed := 0, 0, 0
	for _, m := range r.Measurements {
		switch {
		case m.TimedOut:
			timedOut++
		case m.Err != "":
			failed++
		default:
			completed++
		}
	}

	b.WriteString("## Measurement Summary\n\n")
	fmt.Fprintf(b, "- Completed: %d\n", completed)
	fmt.Fprintf(b, "- Timed out: %d\n", timedOut)
	fmt.Fprintf(b, "- Failed: %d\n", failed)
	b.WriteString("\n")
}

// cell formats one measurement cell
func cell(m bench.Measurement, ok bool) string {
	switch {
	case !ok:
		return "—"
	case m.TimedOut:
		return "timeout"
	case m.Err != "":
		return "error"
	default:
		return fmt.Sprintf("%.2fms", m.ElapsedMS)
	}
}

// scaleLabel renders 1000 as "1K", 1000000 as "1M"
func scaleLabel(n int) string {
	switch {
	case n >= 1_000_000 && n%1_000_000 == 0:
		return fmt.Sprintf("%dM", n/1_000_000)
	case n >= 1_000 && n%1_000 == 0:
		return fmt.Sprintf("%dK", n/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// compact renders an approximate row count compactly
func compact(n int) string {
	return scaleLabel(n)
}
