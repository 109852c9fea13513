package activity_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/onthego/internal/activity"
)

var rowingKeys = []string{
	activity.KeyLatitude,
	activity.KeyLongitude,
	activity.KeySpeed,
	activity.KeyHeartRate,
	activity.KeyStrokeCadence,
	activity.KeySumDistance,
}

func testDetails(keys []string, samples ...[]float64) *activity.Details {
	d := &activity.Details{ActivityID: 42}
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
	return d
}

func TestSummary_Label(t *testing.T) {
	s := activity.Summary{ID: 1, Name: "Morning Row", StartTimeLocal: "2024-01-01T07:00"}
	assert.Equal(t, "Morning Row (2024-01-01T07:00)", s.Label())
}

func TestFlatten(t *testing.T) {
	details := testDetails(rowingKeys,
		[]float64{45.1, 13.1, 0.0, 120, 0, 0},
		[]float64{45.2, 13.2, 3.1, 135, 6, 10.5},
		[]float64{45.3, 13.3, 4.2, 150, 8, 25.0},
	)

	table, err := activity.Flatten(details)
	require.NoError(t, err)
	require.NotNil(t, table)

	assert.Equal(t, 3, table.Len())
	assert.False(t, table.Empty())
	assert.Equal(t, rowingKeys, table.Columns())

	cadence, err := table.Column(activity.KeyStrokeCadence)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 6, 8}, cadence)

	lon, err := table.Column(activity.KeyLongitude)
	require.NoError(t, err)
	assert.Equal(t, []float64{13.1, 13.2, 13.3}, lon)

	row := table.Row(1)
	assert.Equal(t, 135.0, row[activity.KeyHeartRate])
	assert.Equal(t, 10.5, row[activity.KeySumDistance])
}

func TestFlatten_ColumnNamesFollowDescriptorOrder(t *testing.T) {
	keys := []string{"sumDistance", "directSpeed", "directTimestamp"}
	table, err := activity.Flatten(testDetails(keys, []float64{1, 2, 3}, []float64{4, 5, 6}))
	require.NoError(t, err)

	for i, k := range table.Columns() {
		assert.Equal(t, keys[i], k)
	}
	speed, err := table.Column("directSpeed")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, speed)
}

func TestFlatten_NoSamples(t *testing.T) {
	table, err := activity.Flatten(testDetails(rowingKeys))
	require.NoError(t, err)
	assert.True(t, table.Empty())
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, rowingKeys, table.Columns())
}

func TestFlatten_Mismatch(t *testing.T) {
	details := testDetails(rowingKeys,
		[]float64{45.1, 13.1, 0.0, 120, 0, 0},
		[]float64{45.2, 13.2, 3.1, 135, 6},
	)

	table, err := activity.Flatten(details)
	require.Error(t, err)
	assert.Nil(t, table)
	assert.True(t, errors.Is(err, activity.ErrColumnMismatch))
	assert.Contains(t, err.Error(), "sample 1 has 5 values, 6 descriptors declared")

	_, err = activity.Flatten(nil)
	assert.Error(t, err)
}

func TestTable_MissingColumn(t *testing.T) {
	table, err := activity.Flatten(testDetails([]string{activity.KeySpeed}, []float64{1}))
	require.NoError(t, err)

	assert.True(t, table.Has(activity.KeySpeed))
	assert.False(t, table.Has(activity.KeyStrokeCadence))
	_, err = table.Column(activity.KeyStrokeCadence)
	assert.ErrorIs(t, err, activity.ErrMissingColumn)
}

func TestTable_Filter(t *testing.T) {
	table, err := activity.Flatten(testDetails(rowingKeys,
		[]float64{45.1, 13.1, 0.0, 120, 0, 0},
		[]float64{45.2, 13.2, 3.1, 135, 6, 10.5},
		[]float64{45.3, 13.3, 4.2, 150, 8, 25.0},
	))
	require.NoError(t, err)

	cadence, err := table.Column(activity.KeyStrokeCadence)
	require.NoError(t, err)
	active := table.Filter(func(row int) bool { return cadence[row] > 5 })

	assert.Equal(t, 2, active.Len())
	assert.Equal(t, 3, table.Len())
	speed, err := active.Column(activity.KeySpeed)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.1, 4.2}, speed)
}

func TestDetails_DecodeNullMetrics(t *testing.T) {
	payload := `{
		"activityId": 42,
		"measurementCount": 2,
		"metricsCount": 2,
		"metricDescriptors": [
			{"metricsIndex": 0, "key": "directSpeed", "unit": {"id": 20, "key": "mps", "factor": 0.1}},
			{"metricsIndex": 1, "key": "directHeartRate", "unit": {"id": 100, "key": "bpm", "factor": 1}}
		],
		"activityDetailMetrics": [
			{"metrics": [3.5, null]},
			{"metrics": [4.0, 140]}
		]
	}`

	var details activity.Details
	require.NoError(t, json.Unmarshal([]byte(payload), &details))
	assert.Equal(t, []string{"directSpeed", "directHeartRate"}, details.Keys())

	table, err := activity.Flatten(&details)
	require.NoError(t, err)
	hr, err := table.Column(activity.KeyHeartRate)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(hr[0]))
	assert.Equal(t, 140.0, hr[1])

	records := table.Records()
	require.Len(t, records, 2)
	assert.Nil(t, records[0][1])
	require.NotNil(t, records[1][1])
	assert.Equal(t, 140.0, *records[1][1])

	b, err := json.Marshal(records)
	require.NoError(t, err)
	assert.JSONEq(t, `[[3.5,null],[4,140]]`, string(b))
}

func TestValue_BadJSON(t *testing.T) {
	var details activity.Details
	err := json.Unmarshal([]byte(`{"activityDetailMetrics":[{"metrics":["fast"]}]}`), &details)
	assert.Error(t, err)
}

func TestTable_WriteCSV(t *testing.T) {
	table, err := activity.Flatten(testDetails(
		[]string{activity.KeySpeed, activity.KeyHeartRate},
		[]float64{3.5, math.NaN()},
		[]float64{4.25, 140},
	))
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, table.WriteCSV(buf))
	assert.Equal(t, "directSpeed,directHeartRate\n3.5,\n4.25,140\n", buf.String())
}
