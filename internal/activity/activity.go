package activity

import (
	"encoding/json"
	"fmt"
	"math"
)

// Metric descriptor keys as declared by garmin connect.
const (
	KeyLatitude      = "directLatitude"
	KeyLongitude     = "directLongitude"
	KeySpeed         = "directSpeed"
	KeyHeartRate     = "directHeartRate"
	KeyStrokeCadence = "directStrokeCadence"
	KeySumDistance   = "sumDistance"
)

// Summary is one item of the recent activities list.
type Summary struct {
	ID             int64  `json:"activityId"`
	Name           string `json:"activityName"`
	StartTimeLocal string `json:"startTimeLocal"`
}

// Label is the text shown in the activity dropdown.
func (s Summary) Label() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.StartTimeLocal)
}

type Unit struct {
	ID     int     `json:"id"`
	Key    string  `json:"key"`
	Factor float64 `json:"factor"`
}

type Descriptor struct {
	MetricsIndex int    `json:"metricsIndex"`
	Key          string `json:"key"`
	Unit         Unit   `json:"unit"`
}

// Sample is one timestep. Garmin sends null for values the device did not record.
type Sample struct {
	Metrics []Value `json:"metrics"`
}

// Value is a nullable metric value; null decodes to NaN.
type Value float64

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("metric value %s: %w", b, err)
	}
	*v = Value(f)
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// Details is the activity details payload.
type Details struct {
	ActivityID            int64        `json:"activityId"`
	MeasurementCount      int          `json:"measurementCount"`
	MetricsCount          int          `json:"metricsCount"`
	MetricDescriptors     []Descriptor `json:"metricDescriptors"`
	ActivityDetailMetrics []Sample     `json:"activityDetailMetrics"`
}

// Keys returns the descriptor keys in declaration order.
func (d *Details) Keys() []string {
	keys := make([]string, len(d.MetricDescriptors))
	for i, desc := range d.MetricDescriptors {
		keys[i] = desc.Key
	}
	return keys
}
