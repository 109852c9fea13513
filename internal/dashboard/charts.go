package dashboard

import (
	"errors"
	"fmt"
	"io"

	"github.com/2beens/onthego/internal/activity"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// mapSpan is the least half width, in degrees, of the map viewport around the first sample.
const mapSpan = 0.02

type ChartKind string

const (
	ChartMap     ChartKind = "map"
	ChartSpeed   ChartKind = "speed"
	ChartStrokes ChartKind = "strokes"
)

var ErrUnknownChart = errors.New("unknown chart")

// ChartKinds lists the panels in the order the dashboard shows them.
var ChartKinds = []ChartKind{ChartMap, ChartSpeed, ChartStrokes}

func ParseChartKind(s string) (ChartKind, error) {
	for _, kind := range ChartKinds {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownChart, s)
}

func (k ChartKind) Title() string {
	switch k {
	case ChartMap:
		return "Route"
	case ChartSpeed:
		return "Speed and Heart Rate"
	case ChartStrokes:
		return "Stroke Rate"
	default:
		return string(k)
	}
}

// Renderer is implemented by every go-echarts chart.
type Renderer interface {
	Render(w io.Writer) error
}

// RenderChart builds the chart of the given kind from the table and writes it as a full HTML page.
func RenderChart(w io.Writer, kind ChartKind, table *activity.Table) error {
	if table == nil || table.Empty() {
		return ErrNoData
	}

	var (
		chart Renderer
		err   error
	)
	switch kind {
	case ChartMap:
		chart, err = MapChart(table)
	case ChartSpeed:
		chart, err = SpeedChart(table)
	case ChartStrokes:
		chart, err = StrokeChart(table)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownChart, kind)
	}
	if err != nil {
		return fmt.Errorf("build %s chart: %w", kind, err)
	}

	return chart.Render(w)
}

func baseOptions(kind ChartKind) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: kind.Title(),
			Width:     "100%",
			Height:    "420px",
		}),
		charts.WithTitleOpts(opts.Title{Title: kind.Title()}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	}
}

// MapChart plots every GPS sample as a marker at (longitude, latitude).
func MapChart(table *activity.Table) (*charts.Scatter, error) {
	track, err := TrackPoints(table)
	if err != nil {
		return nil, err
	}

	view := track.Viewport()
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(append(baseOptions(ChartMap),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Longitude",
			Type: "value",
			Min:  view.MinLon,
			Max:  view.MaxLon,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Latitude",
			Type: "value",
			Min:  view.MinLat,
			Max:  view.MaxLat,
		}),
		// pan and zoom on both axes
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", XAxisIndex: []int{0}},
			opts.DataZoom{Type: "inside", YAxisIndex: []int{0}},
			opts.DataZoom{Type: "slider", XAxisIndex: []int{0}},
			opts.DataZoom{Type: "slider", YAxisIndex: []int{0}},
		),
	)...)

	data := make([]opts.ScatterData, len(track.Points))
	for i, p := range track.Points {
		data[i] = opts.ScatterData{Value: []interface{}{p.Lon, p.Lat}, SymbolSize: 7}
	}
	scatter.AddSeries("Position", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "red"}),
	)

	return scatter, nil
}

// SpeedChart draws speed and effective work per stroke on the left axis and
// heart rate on the right axis, by sample index.
func SpeedChart(table *activity.Table) (*charts.Line, error) {
	series, err := SpeedSeries(table)
	if err != nil {
		return nil, err
	}

	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOptions(ChartSpeed),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sample", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Speed / eWPS", Type: "value"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)...)

	xAxis := make([]int, len(series.Speed))
	for i := range xAxis {
		xAxis[i] = i
	}
	line.SetXAxis(xAxis)

	line.AddSeries("Speed", lineData(series.Speed))
	line.AddSeries("eWPS", lineData(series.EWPS))
	if series.HeartRate != nil {
		line.ExtendYAxis(opts.YAxis{Name: "Heart Rate", Type: "value", Position: "right"})
		line.AddSeries("Heart Rate", lineData(series.HeartRate),
			charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}),
		)
	}

	return line, nil
}

// StrokeChart plots effective work per stroke (left axis) and speed squared
// (right axis) against stroke cadence for the active strokes.
func StrokeChart(table *activity.Table) (*charts.Scatter, error) {
	points, err := StrokePoints(table)
	if err != nil {
		return nil, err
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(append(baseOptions(ChartStrokes),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Stroke Rate", Type: "value", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "eWPS", Type: "value"}),
	)...)
	scatter.ExtendYAxis(opts.YAxis{Name: "Speed²", Type: "value", Position: "right"})

	ewps := make([]opts.ScatterData, len(points))
	speedSquared := make([]opts.ScatterData, len(points))
	for i, p := range points {
		ewps[i] = opts.ScatterData{Value: []interface{}{p.Cadence, p.EWPS}, SymbolSize: 8}
		speedSquared[i] = opts.ScatterData{Value: []interface{}{p.Cadence, p.SpeedSquared}, SymbolSize: 8}
	}
	scatter.AddSeries("eWPS", ewps)
	scatter.AddSeries("Speed²", speedSquared,
		charts.WithScatterChartOpts(opts.ScatterChart{YAxisIndex: 1}),
	)

	return scatter, nil
}

// lineData turns NaN into the echarts missing value marker so the line breaks.
func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		if !isFinite(v) {
			data[i] = opts.LineData{Value: "-"}
			continue
		}
		data[i] = opts.LineData{Value: v}
	}
	return data
}
