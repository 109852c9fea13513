package dashboard

import (
	"fmt"
	"math"

	"github.com/2beens/onthego/internal/activity"
)

type GeoPoint struct {
	Lon float64
	Lat float64
}

// Track is every sample with a usable GPS fix, centred on the first one.
type Track struct {
	Center GeoPoint
	Points []GeoPoint
}

// Viewport is the map window: mapSpan around the first fix, grown to take
// in every sample of the track.
type Viewport struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64
}

func (t *Track) Viewport() Viewport {
	v := Viewport{
		MinLon: t.Center.Lon - mapSpan,
		MaxLon: t.Center.Lon + mapSpan,
		MinLat: t.Center.Lat - mapSpan,
		MaxLat: t.Center.Lat + mapSpan,
	}
	for _, p := range t.Points {
		v.MinLon = math.Min(v.MinLon, p.Lon)
		v.MaxLon = math.Max(v.MaxLon, p.Lon)
		v.MinLat = math.Min(v.MinLat, p.Lat)
		v.MaxLat = math.Max(v.MaxLat, p.Lat)
	}
	return v
}

// TimeSeries holds the speed chart lines indexed by sample. Gaps are NaN.
type TimeSeries struct {
	Speed     []float64
	EWPS      []float64
	HeartRate []float64
}

type StrokePoint struct {
	Cadence      float64
	EWPS         float64
	SpeedSquared float64
}

func TrackPoints(table *activity.Table) (*Track, error) {
	lat, err := table.Column(activity.KeyLatitude)
	if err != nil {
		return nil, err
	}
	lon, err := table.Column(activity.KeyLongitude)
	if err != nil {
		return nil, err
	}

	track := &Track{}
	for i := range lat {
		if !isFinite(lat[i]) || !isFinite(lon[i]) {
			continue
		}
		track.Points = append(track.Points, GeoPoint{Lon: lon[i], Lat: lat[i]})
	}
	if len(track.Points) == 0 {
		return nil, fmt.Errorf("%w: no gps samples", ErrNoData)
	}
	track.Center = track.Points[0]

	return track, nil
}

func SpeedSeries(table *activity.Table) (*TimeSeries, error) {
	speed, err := table.Column(activity.KeySpeed)
	if err != nil {
		return nil, err
	}

	series := &TimeSeries{
		Speed: speed,
		EWPS:  make([]float64, len(speed)),
	}
	if table.Has(activity.KeyHeartRate) {
		series.HeartRate, _ = table.Column(activity.KeyHeartRate)
	}

	cadence, err := table.Column(activity.KeyStrokeCadence)
	for i := range speed {
		series.EWPS[i] = math.NaN()
		if err != nil {
			continue
		}
		if ewps, ok := EffectiveWorkPerStroke(speed[i], cadence[i]); ok {
			series.EWPS[i] = ewps
		}
	}

	return series, nil
}

// StrokePoints keeps the samples rowed above StrokeCadenceThreshold.
func StrokePoints(table *activity.Table) ([]StrokePoint, error) {
	cadence, err := table.Column(activity.KeyStrokeCadence)
	if err != nil {
		return nil, err
	}
	if !table.Has(activity.KeySpeed) {
		return nil, fmt.Errorf("%w: %s", activity.ErrMissingColumn, activity.KeySpeed)
	}

	active := table.Filter(func(row int) bool {
		return cadence[row] > StrokeCadenceThreshold
	})

	points := make([]StrokePoint, 0, active.Len())
	for i := 0; i < active.Len(); i++ {
		row := active.Row(i)
		speed := row[activity.KeySpeed]
		ewps, ok := EffectiveWorkPerStroke(speed, row[activity.KeyStrokeCadence])
		if !ok {
			continue
		}
		points = append(points, StrokePoint{
			Cadence:      row[activity.KeyStrokeCadence],
			EWPS:         ewps,
			SpeedSquared: speed * speed,
		})
	}

	return points, nil
}
