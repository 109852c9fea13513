package dashboard

import (
	"errors"
	"fmt"
	"math"

	"github.com/2beens/onthego/internal/activity"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StrokeCadenceThreshold separates active strokes from drifting or resting samples.
const StrokeCadenceThreshold = 5.0

var ErrNoData = errors.New("no data")

// Stats backs the four summary tiles. A value is NaN when its column is
// missing or holds no finite values.
type Stats struct {
	MaxSpeed      float64
	TotalDistance float64
	MaxHeartRate  float64
	AvgStrokeRate float64
}

type Tile struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summarize computes the summary tiles from a flattened activity.
func Summarize(table *activity.Table) (Stats, error) {
	if table == nil || table.Empty() {
		return Stats{}, ErrNoData
	}

	stats := Stats{
		MaxSpeed:      columnMax(table, activity.KeySpeed),
		TotalDistance: columnMax(table, activity.KeySumDistance),
		MaxHeartRate:  columnMax(table, activity.KeyHeartRate),
		AvgStrokeRate: math.NaN(),
	}

	if cadence, err := table.Column(activity.KeyStrokeCadence); err == nil {
		var active []float64
		for _, c := range cadence {
			if isFinite(c) && c > StrokeCadenceThreshold {
				active = append(active, c)
			}
		}
		if len(active) > 0 {
			stats.AvgStrokeRate = stat.Mean(active, nil)
		}
	}

	return stats, nil
}

func (s Stats) Tiles() []Tile {
	return []Tile{
		{Label: "Max Speed", Value: formatTile(s.MaxSpeed, "%.2f m/s")},
		{Label: "Total Distance", Value: formatTile(s.TotalDistance, "%.0f m")},
		{Label: "Max Heart Rate", Value: formatTile(s.MaxHeartRate, "%.0f bpm")},
		{Label: "Avg Stroke Rate", Value: formatTile(s.AvgStrokeRate, "%.1f spm")},
	}
}

// EffectiveWorkPerStroke is speed squared over stroke cadence. ok is false
// when the value is undefined for the sample.
func EffectiveWorkPerStroke(speed, cadence float64) (float64, bool) {
	if !isFinite(speed) || !isFinite(cadence) || cadence <= 0 {
		return 0, false
	}
	return speed * speed / cadence, true
}

func columnMax(table *activity.Table, key string) float64 {
	column, err := table.Column(key)
	if err != nil {
		return math.NaN()
	}
	finite := finiteValues(column)
	if len(finite) == 0 {
		return math.NaN()
	}
	return floats.Max(finite)
}

func finiteValues(values []float64) []float64 {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			finite = append(finite, v)
		}
	}
	return finite
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatTile(v float64, format string) string {
	if !isFinite(v) {
		return "n/a"
	}
	return fmt.Sprintf(format, v)
}
