package dashboard_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/2beens/onthego/internal/activity"
	"github.com/2beens/onthego/internal/dashboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var rowingKeys = []string{
	activity.KeyLatitude,
	activity.KeyLongitude,
	activity.KeySpeed,
	activity.KeyHeartRate,
	activity.KeyStrokeCadence,
	activity.KeySumDistance,
}

func flatten(t *testing.T, keys []string, samples ...[]float64) *activity.Table {
	t.Helper()
	d := &activity.Details{}
	for i, k := range keys {
		d.MetricDescriptors = append(d.MetricDescriptors, activity.Descriptor{MetricsIndex: i, Key: k})
	}
	for _, s := range samples {
		sample := activity.Sample{}
		for _, v := range s {
			sample.Metrics = append(sample.Metrics, activity.Value(v))
		}
		d.ActivityDetailMetrics = append(d.ActivityDetailMetrics, sample)
	}
	table, err := activity.Flatten(d)
	require.NoError(t, err)
	return table
}

// three samples, cadence 0, 6 and 8
func rowingTable(t *testing.T) *activity.Table {
	return flatten(t, rowingKeys,
		[]float64{45.10, 13.10, 0.5, 110, 0, 0},
		[]float64{45.11, 13.12, 3.0, 142, 6, 120},
		[]float64{45.12, 13.14, 4.0, 151, 8, 250},
	)
}

func TestEffectiveWorkPerStroke(t *testing.T) {
	v, ok := dashboard.EffectiveWorkPerStroke(3, 6)
	require.True(t, ok)
	assert.InDelta(t, 1.5, v, 1e-9)

	for _, tc := range []struct {
		name           string
		speed, cadence float64
	}{
		{name: "zero cadence", speed: 3, cadence: 0},
		{name: "negative cadence", speed: 3, cadence: -2},
		{name: "nan speed", speed: math.NaN(), cadence: 20},
		{name: "nan cadence", speed: 3, cadence: math.NaN()},
		{name: "inf speed", speed: math.Inf(1), cadence: 20},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := dashboard.EffectiveWorkPerStroke(tc.speed, tc.cadence)
			assert.False(t, ok)
		})
	}
}

func TestSummarize(t *testing.T) {
	stats, err := dashboard.Summarize(rowingTable(t))
	require.NoError(t, err)

	assert.Equal(t, 4.0, stats.MaxSpeed)
	assert.Equal(t, 250.0, stats.TotalDistance)
	assert.Equal(t, 151.0, stats.MaxHeartRate)
	assert.InDelta(t, 7.0, stats.AvgStrokeRate, 1e-9)

	tiles := stats.Tiles()
	require.Len(t, tiles, 4)
	assert.Equal(t, dashboard.Tile{Label: "Max Speed", Value: "4.00 m/s"}, tiles[0])
	assert.Equal(t, dashboard.Tile{Label: "Total Distance", Value: "250 m"}, tiles[1])
	assert.Equal(t, dashboard.Tile{Label: "Max Heart Rate", Value: "151 bpm"}, tiles[2])
	assert.Equal(t, dashboard.Tile{Label: "Avg Stroke Rate", Value: "7.0 spm"}, tiles[3])
}

func TestSummarize_SkipsNullsAndMissingColumns(t *testing.T) {
	table := flatten(t, []string{activity.KeySpeed, activity.KeyStrokeCadence},
		[]float64{math.NaN(), 2},
		[]float64{2.5, 20},
		[]float64{3.5, math.NaN()},
	)

	stats, err := dashboard.Summarize(table)
	require.NoError(t, err)
	assert.Equal(t, 3.5, stats.MaxSpeed)
	assert.Equal(t, 20.0, stats.AvgStrokeRate)
	assert.True(t, math.IsNaN(stats.MaxHeartRate))
	assert.True(t, math.IsNaN(stats.TotalDistance))
	assert.Equal(t, "n/a", stats.Tiles()[2].Value)
}

func TestSummarize_NoData(t *testing.T) {
	_, err := dashboard.Summarize(flatten(t, rowingKeys))
	assert.ErrorIs(t, err, dashboard.ErrNoData)

	_, err = dashboard.Summarize(nil)
	assert.ErrorIs(t, err, dashboard.ErrNoData)
}

func TestStrokePoints(t *testing.T) {
	points, err := dashboard.StrokePoints(rowingTable(t))
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, 6.0, points[0].Cadence)
	assert.InDelta(t, 1.5, points[0].EWPS, 1e-9)
	assert.InDelta(t, 9.0, points[0].SpeedSquared, 1e-9)
	assert.Equal(t, 8.0, points[1].Cadence)
	assert.InDelta(t, 2.0, points[1].EWPS, 1e-9)

	// exactly at the threshold is not an active stroke
	points, err = dashboard.StrokePoints(flatten(t,
		[]string{activity.KeySpeed, activity.KeyStrokeCadence},
		[]float64{2, 5}, []float64{2, 5.5},
	))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 5.5, points[0].Cadence)

	// an active stroke without a speed reading has no eWPS to plot
	points, err = dashboard.StrokePoints(flatten(t,
		[]string{activity.KeySpeed, activity.KeyStrokeCadence},
		[]float64{math.NaN(), 20}, []float64{3, 20},
	))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 0.45, points[0].EWPS, 1e-9)

	_, err = dashboard.StrokePoints(flatten(t, []string{activity.KeyStrokeCadence}, []float64{20}))
	assert.ErrorIs(t, err, activity.ErrMissingColumn)
}

func TestSpeedSeries(t *testing.T) {
	series, err := dashboard.SpeedSeries(rowingTable(t))
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 3.0, 4.0}, series.Speed)
	assert.Equal(t, []float64{110, 142, 151}, series.HeartRate)
	require.Len(t, series.EWPS, 3)
	assert.True(t, math.IsNaN(series.EWPS[0]))
	assert.InDelta(t, 1.5, series.EWPS[1], 1e-9)
	assert.InDelta(t, 2.0, series.EWPS[2], 1e-9)

	_, err = dashboard.SpeedSeries(flatten(t, []string{activity.KeyHeartRate}, []float64{100}))
	assert.ErrorIs(t, err, activity.ErrMissingColumn)
}

func TestTrackPoints(t *testing.T) {
	table := flatten(t, []string{activity.KeyLatitude, activity.KeyLongitude},
		[]float64{math.NaN(), math.NaN()},
		[]float64{45.2, 13.5},
		[]float64{45.3, 13.6},
	)
	track, err := dashboard.TrackPoints(table)
	require.NoError(t, err)
	assert.Equal(t, dashboard.GeoPoint{Lon: 13.5, Lat: 45.2}, track.Center)
	assert.Len(t, track.Points, 2)

	_, err = dashboard.TrackPoints(flatten(t, []string{activity.KeyLatitude, activity.KeyLongitude},
		[]float64{math.NaN(), math.NaN()},
	))
	assert.ErrorIs(t, err, dashboard.ErrNoData)
}

func TestTrackViewport_CoversEverySample(t *testing.T) {
	// 10 samples rowing about 5 km north and 1 km west of the start
	var samples [][]float64
	for i := 0; i < 10; i++ {
		samples = append(samples, []float64{45.10 + float64(i)*0.005, 13.10 - float64(i)*0.0013})
	}
	table := flatten(t, []string{activity.KeyLatitude, activity.KeyLongitude}, samples...)

	track, err := dashboard.TrackPoints(table)
	require.NoError(t, err)
	require.Len(t, track.Points, 10)

	view := track.Viewport()
	for _, p := range track.Points {
		assert.GreaterOrEqual(t, p.Lat, view.MinLat)
		assert.LessOrEqual(t, p.Lat, view.MaxLat)
		assert.GreaterOrEqual(t, p.Lon, view.MinLon)
		assert.LessOrEqual(t, p.Lon, view.MaxLon)
	}
	// short tracks keep the fixed span around the first fix
	assert.InDelta(t, 45.08, view.MinLat, 1e-9)
	assert.InDelta(t, 13.12, view.MaxLon, 1e-9)

	buf := &bytes.Buffer{}
	require.NoError(t, dashboard.RenderChart(buf, dashboard.ChartMap, table))
	assert.Contains(t, buf.String(), "dataZoom")
	assert.Contains(t, buf.String(), `"type":"inside"`)
}

func TestParseChartKind(t *testing.T) {
	for _, kind := range dashboard.ChartKinds {
		parsed, err := dashboard.ParseChartKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
	_, err := dashboard.ParseChartKind("pie")
	assert.ErrorIs(t, err, dashboard.ErrUnknownChart)
}

func TestRenderChart(t *testing.T) {
	table := rowingTable(t)
	for _, kind := range dashboard.ChartKinds {
		t.Run(string(kind), func(t *testing.T) {
			buf := &bytes.Buffer{}
			require.NoError(t, dashboard.RenderChart(buf, kind, table))
			html := buf.String()
			assert.Contains(t, html, "echarts")
			assert.Contains(t, html, kind.Title())
		})
	}

	err := dashboard.RenderChart(&bytes.Buffer{}, dashboard.ChartMap, flatten(t, rowingKeys))
	assert.ErrorIs(t, err, dashboard.ErrNoData)

	err = dashboard.RenderChart(&bytes.Buffer{}, dashboard.ChartKind("pie"), table)
	assert.ErrorIs(t, err, dashboard.ErrUnknownChart)

	noCadence := flatten(t, []string{activity.KeySpeed}, []float64{3})
	err = dashboard.RenderChart(&bytes.Buffer{}, dashboard.ChartStrokes, noCadence)
	assert.ErrorIs(t, err, activity.ErrMissingColumn)
}
