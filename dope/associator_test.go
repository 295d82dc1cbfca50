package dope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronolog/chronolog-api/models"
)

func fp(v float64) *float64 { return &v }

func shotAt(n int, ts time.Time) models.ChronoMeasurement {
	return models.ChronoMeasurement{ShotNumber: n, SpeedFps: 2700, DatetimeLocal: ts}
}

func readingAt(id int, ts time.Time, tempF float64) models.WeatherMeasurement {
	return models.WeatherMeasurement{ID: id, MeasurementTimestamp: ts, TemperatureF: fp(tempF)}
}

func TestSessionWindow(t *testing.T) {
	base := time.Date(2024, 4, 28, 10, 0, 0, 0, time.UTC)
	shots := []models.ChronoMeasurement{
		shotAt(2, base.Add(5*time.Minute)),
		shotAt(1, base),
		shotAt(3, base.Add(12*time.Minute)),
	}

	w, err := SessionWindow(shots, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, base.Add(-30*time.Minute), w.Start)
	assert.Equal(t, base.Add(42*time.Minute), w.End)
}

func TestSessionWindow_NoShots(t *testing.T) {
	_, err := SessionWindow(nil, time.Minute)
	require.Error(t, err)
}

func TestSummarize_OddCount(t *testing.T) {
	base := time.Now()
	readings := []models.WeatherMeasurement{
		readingAt(1, base, 60),
		readingAt(2, base, 70),
		readingAt(3, base, 68),
	}

	s := Summarize(readings)
	require.NotNil(t, s.TemperatureF)
	assert.Equal(t, 68.0, *s.TemperatureF)
}

func TestSummarize_EvenCountMeansMeanOfMiddleTwo(t *testing.T) {
	base := time.Now()
	readings := []models.WeatherMeasurement{
		readingAt(1, base, 60),
		readingAt(2, base, 70),
		readingAt(3, base, 68),
		readingAt(4, base, 62),
	}

	s := Summarize(readings)
	require.NotNil(t, s.TemperatureF)
	assert.Equal(t, 65.0, *s.TemperatureF)
}

func TestSummarize_SkipsNilFields(t *testing.T) {
	base := time.Now()
	readings := []models.WeatherMeasurement{
		{MeasurementTimestamp: base, TemperatureF: fp(60)},
		{MeasurementTimestamp: base, WindSpeedMph: fp(5)},
	}

	s := Summarize(readings)
	require.NotNil(t, s.TemperatureF)
	assert.Equal(t, 60.0, *s.TemperatureF)
	require.NotNil(t, s.WindSpeedMph)
	assert.Equal(t, 5.0, *s.WindSpeedMph)
	assert.Nil(t, s.HumidityPct)
	assert.Nil(t, s.PressureInHg)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Nil(t, s.TemperatureF)
	assert.Nil(t, s.HumidityPct)
	assert.Nil(t, s.PressureInHg)
	assert.Nil(t, s.WindSpeedMph)
}

func TestNearest(t *testing.T) {
	base := time.Date(2024, 4, 28, 10, 0, 0, 0, time.UTC)
	readings := []models.WeatherMeasurement{
		readingAt(1, base, 60),
		readingAt(2, base.Add(2*time.Minute), 61),
		readingAt(3, base.Add(10*time.Minute), 62),
	}

	got := Nearest(base.Add(3*time.Minute), readings)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.ID)
}

func TestNearest_TieGoesToEarlier(t *testing.T) {
	base := time.Date(2024, 4, 28, 10, 0, 0, 0, time.UTC)
	readings := []models.WeatherMeasurement{
		readingAt(1, base, 60),
		readingAt(2, base.Add(2*time.Minute), 61),
	}

	got := Nearest(base.Add(time.Minute), readings)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.ID)
}

func TestNearest_NoReadings(t *testing.T) {
	assert.Nil(t, Nearest(time.Now(), nil))
}

func TestAssociate(t *testing.T) {
	base := time.Date(2024, 4, 28, 10, 0, 0, 0, time.UTC)
	shots := []models.ChronoMeasurement{
		{ShotNumber: 1, SpeedFps: 2710, DatetimeLocal: base, KEFtLb: fp(1180)},
		{ShotNumber: 2, SpeedFps: 2695, DatetimeLocal: base.Add(4 * time.Minute)},
	}
	readings := []models.WeatherMeasurement{
		readingAt(10, base.Add(time.Minute), 68),
		readingAt(11, base.Add(5*time.Minute), 69),
	}

	out := Associate(shots, readings)
	require.Len(t, out, 2)

	assert.Equal(t, 1, out[0].ShotNumber)
	assert.Equal(t, 2710.0, out[0].SpeedFps)
	require.NotNil(t, out[0].WeatherMeasurementID)
	assert.Equal(t, 10, *out[0].WeatherMeasurementID)
	require.NotNil(t, out[0].TemperatureF)
	assert.Equal(t, 68.0, *out[0].TemperatureF)

	require.NotNil(t, out[1].WeatherMeasurementID)
	assert.Equal(t, 11, *out[1].WeatherMeasurementID)
}

func TestAssociate_NoWeather(t *testing.T) {
	shots := []models.ChronoMeasurement{shotAt(1, time.Now())}

	out := Associate(shots, nil)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].WeatherMeasurementID)
	assert.Nil(t, out[0].TemperatureF)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 2, 3}))
	assert.Equal(t, 7.0, median([]float64{7}))
}
