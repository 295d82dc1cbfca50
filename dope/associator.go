// Package dope associates chronograph shots with weather readings and
// aggregates them into session-level summaries.
package dope

import (
	"fmt"
	"sort"
	"time"

	"github.com/chronolog/chronolog-api/models"
)

// Window is the time span weather readings are drawn from for a
// session: first shot minus buffer through last shot plus buffer.
type Window struct {
	Start time.Time
	End   time.Time
}

// SessionWindow derives the weather window from a session's shots.
func SessionWindow(shots []models.ChronoMeasurement, buffer time.Duration) (Window, error) {
	if len(shots) == 0 {
		return Window{}, fmt.Errorf("session has no shots")
	}
	min, max := shots[0].DatetimeLocal, shots[0].DatetimeLocal
	for _, s := range shots[1:] {
		if s.DatetimeLocal.Before(min) {
			min = s.DatetimeLocal
		}
		if s.DatetimeLocal.After(max) {
			max = s.DatetimeLocal
		}
	}
	return Window{Start: min.Add(-buffer), End: max.Add(buffer)}, nil
}

// WeatherSummary holds the per-field medians across a window's
// readings. A field is nil when no reading in the window carried it.
type WeatherSummary struct {
	TemperatureF *float64
	HumidityPct  *float64
	PressureInHg *float64
	WindSpeedMph *float64
}

// Summarize computes the median of each numeric weather field across
// the given readings. With an even count the median is the mean of the
// two middle values.
func Summarize(readings []models.WeatherMeasurement) WeatherSummary {
	return WeatherSummary{
		TemperatureF: medianOf(readings, func(m models.WeatherMeasurement) *float64 { return m.TemperatureF }),
		HumidityPct:  medianOf(readings, func(m models.WeatherMeasurement) *float64 { return m.RelativeHumidityPct }),
		PressureInHg: medianOf(readings, func(m models.WeatherMeasurement) *float64 { return m.BarometricPressureInHg }),
		WindSpeedMph: medianOf(readings, func(m models.WeatherMeasurement) *float64 { return m.WindSpeedMph }),
	}
}

// Nearest returns the reading closest in time to ts, or nil when there
// are no readings. Ties go to the earlier reading. The scan is linear;
// windows hold at most a few hundred rows.
func Nearest(ts time.Time, readings []models.WeatherMeasurement) *models.WeatherMeasurement {
	var best *models.WeatherMeasurement
	var bestDiff time.Duration
	for i := range readings {
		diff := ts.Sub(readings[i].MeasurementTimestamp)
		if diff < 0 {
			diff = -diff
		}
		if best == nil || diff < bestDiff {
			best = &readings[i]
			bestDiff = diff
		}
	}
	return best
}

// Associate copies each shot into a DOPE measurement enriched with its
// nearest weather reading. Weather fields stay nil when readings is
// empty.
func Associate(shots []models.ChronoMeasurement, readings []models.WeatherMeasurement) []models.DopeMeasurement {
	out := make([]models.DopeMeasurement, len(shots))
	for i, shot := range shots {
		dm := models.DopeMeasurement{
			ShotNumber:  shot.ShotNumber,
			SpeedFps:    shot.SpeedFps,
			KEFtLb:      shot.KEFtLb,
			PowerFactor: shot.PowerFactor,
			ShotTime:    shot.DatetimeLocal,
			CleanBore:   shot.CleanBore,
			ColdBore:    shot.ColdBore,
			Notes:       shot.Notes,
		}
		if w := Nearest(shot.DatetimeLocal, readings); w != nil {
			dm.WeatherMeasurementID = &w.ID
			dm.TemperatureF = w.TemperatureF
			dm.RelativeHumidityPct = w.RelativeHumidityPct
			dm.BarometricPressureInHg = w.BarometricPressureInHg
			dm.WindSpeedMph = w.WindSpeedMph
		}
		out[i] = dm
	}
	return out
}

func medianOf(readings []models.WeatherMeasurement, field func(models.WeatherMeasurement) *float64) *float64 {
	values := make([]float64, 0, len(readings))
	for _, r := range readings {
		if v := field(r); v != nil {
			values = append(values, *v)
		}
	}
	if len(values) == 0 {
		return nil
	}
	m := median(values)
	return &m
}

func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
