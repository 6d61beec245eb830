package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/unibench/unibench/internal/bench"
)

// WriteCharts renders the two result charts into dir: a log-scale line
// chart of latency versus scale per query, and a grouped bar chart of the
// before/after pass at the largest scale.
func (r *Report) WriteCharts(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	if err := r.latencyByScaleChart(filepath.Join(dir, "query_performance_vs_scale.png")); err != nil {
		return err
	}
	return r.indexImpactChart(filepath.Join(dir, "indexing_impact.png"))
}

// latencyByScaleChart plots the no-index latency of each query across every
// measured scale. The Y axis is logarithmic: latencies span four orders of
// magnitude between 1K and 1M rows.
func (r *Report) latencyByScaleChart(path string) error {
	p := plot.New()
	p.Title.Text = "Query Performance vs Data Scale (Without Indexes)"
	p.X.Label.Text = "Data Size (Number of Students)"
	p.Y.Label.Text = "Execution Time (milliseconds)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	ticks := make([]plot.Tick, len(r.Scales))
	for i, scale := range r.Scales {
		ticks[i] = plot.Tick{Value: float64(i), Label: scaleLabel(scale)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)

	var series []interface{}
	for id := 1; id <= len(r.Labels); id++ {
		pts := make(plotter.XYs, 0, len(r.Scales))
		for i, scale := range r.Scales {
			m, ok := bench.Find(r.Measurements, scale, id, bench.IndexStateWithout)
			if !ok || !m.Completed() {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(i), Y: positive(m.ElapsedMS)})
		}
		if len(pts) == 0 {
			continue
		}
		series = append(series, fmt.Sprintf("Query %d", id), pts)
	}

	if err := plotutil.AddLinePoints(p, series...); err != nil {
		return fmt.Errorf("failed to build scale chart: %w", err)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save scale chart: %w", err)
	}
	return nil
}

// indexImpactChart plots the paired before/after timings at the largest
// scale as grouped bars.
func (r *Report) indexImpactChart(path string) error {
	scale := r.LargestScale()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Impact of Indexing at %s Students", scaleLabel(scale))
	p.X.Label.Text = "Queries"
	p.Y.Label.Text = "Execution Time (milliseconds)"

	names := make([]string, 0, len(r.Labels))
	without := make(plotter.Values, 0, len(r.Labels))
	with := make(plotter.Values, 0, len(r.Labels))
	for id := 1; id <= len(r.Labels); id++ {
		names = append(names, fmt.Sprintf("Query %d", id))
		without = append(without, completedMS(r.Measurements, scale, id, bench.IndexStateWithout))
		with = append(with, completedMS(r.Measurements, scale, id, bench.IndexStateWith))
	}

	w := vg.Points(20)

	barsWithout, err := plotter.NewBarChart(without, w)
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	barsWithout.LineStyle.Width = vg.Length(0)
	barsWithout.Color = plotutil.Color(0)
	barsWithout.Offset = -w / 2

	barsWith, err := plotter.NewBarChart(with, w)
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	barsWith.LineStyle.Width = vg.Length(0)
	barsWith.Color = plotutil.Color(1)
	barsWith.Offset = w / 2

	p.Add(barsWithout, barsWith)
	p.Legend.Add("Without Indexes", barsWithout)
	p.Legend.Add("With Indexes", barsWith)
	p.Legend.Top = true
	p.NominalX(names...)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save impact chart: %w", err)
	}
	return nil
}

// completedMS returns the cell's timing, or zero for missing/timed-out
// cells so they render as an absent bar.
func completedMS(ms []bench.Measurement, scale, queryID int, state bench.IndexState) float64 {
	m, ok := bench.Find(ms, scale, queryID, state)
	if !ok || !m.Completed() {
		return 0
	}
	return m.ElapsedMS
}

// positive clamps a value for the log axis, which rejects zero
func positive(v float64) float64 {
	if v <= 0 {
		return 0.01
	}
	return v
}
