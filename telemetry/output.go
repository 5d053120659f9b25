package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/dremok/oubli-forever-sub007/components"
	"github.com/dremok/oubli-forever-sub007/config"
)

// csvFile is an output file whose header is written with the first record.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any, what string) error {
	if !c.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, c.f); err != nil {
			return fmt.Errorf("writing %s: %w", what, err)
		}
		c.headerWritten = true
		return nil
	}
	// Subsequent writes skip headers
	if err := gocsv.MarshalWithoutHeaders(records, c.f); err != nil {
		return fmt.Errorf("writing %s: %w", what, err)
	}
	return nil
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir       string
	telemetry *csvFile
	perf      *csvFile
	bookmarks *csvFile
	events    *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **csvFile
	}{
		{"telemetry.csv", &om.telemetry},
		{"perf.csv", &om.perf},
		{"bookmarks.csv", &om.bookmarks},
		{"events.csv", &om.events},
	}
	for _, spec := range files {
		f, err := os.Create(filepath.Join(dir, spec.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", spec.name, err)
		}
		*spec.dst = &csvFile{f: f}
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.write([]WindowStats{stats}, "telemetry")
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd uint64) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)}, "perf")
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write([]Bookmark{b}, "bookmark")
}

// WriteEvents appends simulation events to events.csv.
func (om *OutputManager) WriteEvents(events []components.Event) error {
	if om == nil || len(events) == 0 {
		return nil
	}
	records := make([]EventRecord, len(events))
	for i, ev := range events {
		records[i] = NewEventRecord(ev)
	}
	return om.events.write(records, "events")
}

// WritePopulationChart renders the population history with extinction
// markers to population.png. history[i] is the population at generation
// firstGen+i.
func (om *OutputManager) WritePopulationChart(history []uint32, firstGen uint64, markers []components.ExtinctionMarker) error {
	if om == nil || len(history) < 2 {
		return nil
	}

	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	maxPop := 1.0
	for i, p := range history {
		xs[i] = float64(firstGen) + float64(i)
		ys[i] = float64(p)
		if ys[i] > maxPop {
			maxPop = ys[i]
		}
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "population",
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2.0},
		},
	}

	// Only markers still inside the plotted history are drawn.
	var mx, my []float64
	for _, m := range markers {
		if m.Generation < firstGen || m.Generation >= firstGen+uint64(len(history)) {
			continue
		}
		mx = append(mx, float64(m.Generation))
		my = append(my, ys[m.Generation-firstGen])
	}
	if len(mx) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "extinction",
			XValues: mx,
			YValues: my,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    drawing.Color{R: 220, G: 40, B: 40, A: 255},
			},
		})
	}

	graph := chart.Chart{
		Width:  1024,
		Height: 320,
		XAxis: chart.XAxis{
			Name:  "generation",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: xs[0], Max: xs[len(xs)-1]},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "population",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: maxPop * 1.05},
		},
		Series: series,
	}

	f, err := os.Create(filepath.Join(om.dir, "population.png"))
	if err != nil {
		return fmt.Errorf("creating population.png: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("rendering population chart: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.telemetry, om.perf, om.bookmarks, om.events} {
		if c == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
