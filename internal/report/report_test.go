package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unibench/unibench/internal/bench"
)

func sampleMeasurements() []bench.Measurement {
	return []bench.Measurement{
		{Scale: 1000, QueryID: 1, IndexState: bench.IndexStateWithout, ElapsedMS: 1.5, Rows: 100},
		{Scale: 1000, QueryID: 2, IndexState: bench.IndexStateWithout, ElapsedMS: 2.25, Rows: 10},
		{Scale: 1000, QueryID: 3, IndexState: bench.IndexStateWithout, ElapsedMS: 0.8, Rows: 40},
		{Scale: 1000, QueryID: 4, IndexState: bench.IndexStateWithout, ElapsedMS: 0.9, Rows: 10},
		{Scale: 1000, QueryID: 5, IndexState: bench.IndexStateWithout, ElapsedMS: 12.0, Rows: 10},
		{Scale: 1000000, QueryID: 1, IndexState: bench.IndexStateWithout, ElapsedMS: 480.0, Rows: 10000},
		{Scale: 1000000, QueryID: 2, IndexState: bench.IndexStateWithout, ElapsedMS: 1250.0, Rows: 1000},
		{Scale: 1000000, QueryID: 3, IndexState: bench.IndexStateWithout, ElapsedMS: 2.0, Rows: 40},
		{Scale: 1000000, QueryID: 4, IndexState: bench.IndexStateWithout, ElapsedMS: 3.0, Rows: 10},
		{Scale: 1000000, QueryID: 5, IndexState: bench.IndexStateWithout, TimedOut: true, Err: "query execution exceeded timeout ceiling"},
		{Scale: 1000000, QueryID: 1, IndexState: bench.IndexStateWith, ElapsedMS: 120.0, Rows: 10000},
		{Scale: 1000000, QueryID: 2, IndexState: bench.IndexStateWith, ElapsedMS: 95.0, Rows: 1000},
		// Indexes made query 3 slower: a real outcome for low selectivity
		{Scale: 1000000, QueryID: 3, IndexState: bench.IndexStateWith, ElapsedMS: 3.5, Rows: 40},
		{Scale: 1000000, QueryID: 4, IndexState: bench.IndexStateWith, ElapsedMS: 2.5, Rows: 10},
		{Scale: 1000000, QueryID: 5, IndexState: bench.IndexStateWith, ElapsedMS: 900.0, Rows: 10},
	}
}

func TestMarkdownBaselineTable(t *testing.T) {
	rep := New("test-run", []int{1000, 1000000}, sampleMeasurements())
	md := rep.Markdown()

	for _, want := range []string{
		"| 1K students |",
		"| 1M students |",
		"1.50ms",
		"480.00ms",
		"timeout",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownComparisonTable(t *testing.T) {
	rep := New("test-run", []int{1000, 1000000}, sampleMeasurements())
	md := rep.Markdown()

	// Query 1: (480-120)/480 = +75.0%
	if !strings.Contains(md, "+75.0%") {
		t.Error("markdown missing positive improvement for query 1")
	}
	// Query 3: (2.0-3.5)/2.0 = -75.0%, preserved as a negative improvement
	if !strings.Contains(md, "-75.0%") {
		t.Error("markdown missing negative improvement for query 3")
	}
	// Query 5 timed out before indexing: no improvement computable
	if !strings.Contains(md, "| Query 5 | timeout | 900.00ms | — |") {
		t.Error("markdown missing uncomputable improvement row for query 5")
	}
	// Every index is listed
	if !strings.Contains(md, "idx_students_enrollment_date") {
		t.Error("markdown missing index list")
	}
}

func TestMarkdownSummaryCounts(t *testing.T) {
	rep := New("test-run", []int{1000, 1000000}, sampleMeasurements())
	md := rep.Markdown()

	if !strings.Contains(md, "- Completed: 14") {
		t.Error("markdown summary miscounts completed cells")
	}
	if !strings.Contains(md, "- Timed out: 1") {
		t.Error("markdown summary miscounts timed-out cells")
	}
	if !strings.Contains(md, "- Failed: 0") {
		t.Error("markdown summary miscounts failed cells")
	}
}

func TestWriteMarkdownCreatesDirectories(t *testing.T) {
	rep := New("test-run", []int{1000}, sampleMeasurements())
	path := filepath.Join(t.TempDir(), "nested", "lab_report.md")

	if err := rep.WriteMarkdown(path); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "# University Database Performance Analysis Report") {
		t.Error("written report missing title")
	}
}

func TestWriteCharts(t *testing.T) {
	rep := New("test-run", []int{1000, 1000000}, sampleMeasurements())
	dir := t.TempDir()

	if err := rep.WriteCharts(dir); err != nil {
		t.Fatalf("WriteCharts: %v", err)
	}

	for _, name := range []string{"query_performance_vs_scale.png", "indexing_impact.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("chart %s not written: %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("chart %s is empty", name)
		}
	}
}

func TestScaleLabel(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1000, "1K"},
		{10000, "10K"},
		{100000, "100K"},
		{1000000, "1M"},
		{500, "500"},
		{2500000, "2500K"},
	}
	for _, tc := range tests {
		if got := scaleLabel(tc.n); got != tc.want {
			t.Errorf("scaleLabel(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestProgressRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")

	saved := Progress{
		RunID:        "run-1",
		Scales:       []int{1000, 10000},
		Measurements: sampleMeasurements(),
	}
	if err := SaveProgress(path, saved); err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}

	loaded, err := LoadProgress(path)
	if err != nil {
		t.Fatalf("LoadProgress: %v", err)
	}
	if loaded.RunID != saved.RunID {
		t.Errorf("run id = %q, want %q", loaded.RunID, saved.RunID)
	}
	if len(loaded.Measurements) != len(saved.Measurements) {
		t.Fatalf("loaded %d measurements, want %d", len(loaded.Measurements), len(saved.Measurements))
	}
	if loaded.Measurements[9].TimedOut != true {
		t.Error("timed-out flag lost in round trip")
	}
	if loaded.UpdatedAt.IsZero() {
		t.Error("updated_at not stamped on save")
	}
}

func TestLoadProgressMissingFile(t *testing.T) {
	p, err := LoadProgress(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing progress file must not error: %v", err)
	}
	if len(p.Measurements) != 0 {
		t.Errorf("missing file yielded %d measurements", len(p.Measurements))
	}
}
