package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// KestrelExport is one parsed Kestrel weather meter CSV export.
type KestrelExport struct {
	DeviceName string
	Model      string
	Serial     string
	Readings   []KestrelReading
}

// KestrelReading is a single timestamped reading from the export body.
// Missing or invalid cells are nil.
type KestrelReading struct {
	Timestamp              time.Time
	TemperatureF           *float64
	RelativeHumidityPct    *float64
	BarometricPressureInHg *float64
	StationPressureInHg    *float64
	WindSpeedMph           *float64
	DirectionDeg           *float64
	DensityAltitudeFt      *float64
	AltitudeFt             *float64
	DewPointF              *float64
	HeatIndexF             *float64
	WindChillF             *float64
}

// Kestrel timestamp formats seen across firmware revisions.
var kestrelTimeLayouts = []string{
	"2006-01-02 3:04:05 PM",
	"2006-01-02 15:04:05",
	"1/2/2006 3:04:05 PM",
}

// ParseKestrelCSV parses a Kestrel CSV export: three metadata rows
// (device name, model + serial, blank), a header row, a units row, then
// one reading per row.
func ParseKestrelCSV(r io.Reader) (*KestrelExport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 5 {
		return nil, fmt.Errorf("csv too short for a Kestrel export (%d rows)", len(rows))
	}

	// The blank metadata row may be dropped entirely by the csv reader,
	// so locate the header row by content rather than position.
	headerIdx := -1
	for i, row := range rows {
		for _, cell := range row {
			if strings.Contains(strings.ToUpper(cell), "DATE_TIME") {
				headerIdx = i
				break
			}
		}
		if headerIdx >= 0 {
			break
		}
	}
	if headerIdx < 2 {
		return nil, fmt.Errorf("export has no metadata header before the DATE_TIME row")
	}

	exp := &KestrelExport{
		DeviceName: metaValue(rows[0]),
		Model:      metaValue(rows[1]),
	}
	if len(rows[1]) > 2 {
		exp.Serial = strings.TrimSpace(rows[1][2])
	}
	if exp.Serial == "" {
		// Older exports carry "Model - Serial" in one cell.
		if i := strings.LastIndex(exp.Model, "-"); i > 0 {
			exp.Serial = strings.TrimSpace(exp.Model[i+1:])
			exp.Model = strings.TrimSpace(exp.Model[:i])
		}
	}
	if exp.Serial == "" {
		return nil, fmt.Errorf("export has no device serial in metadata header")
	}

	cols, err := kestrelColumns(rows[headerIdx])
	if err != nil {
		return nil, err
	}

	// The row after the header carries units; the body follows it.
	for i := headerIdx + 2; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(rowCell(row, 0)) == "" {
			continue
		}
		reading, err := parseKestrelReading(row, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		exp.Readings = append(exp.Readings, reading)
	}

	if len(exp.Readings) == 0 {
		return nil, fmt.Errorf("export contains no readings")
	}
	return exp, nil
}

// kestrelCols maps export columns by header text; -1 when absent.
type kestrelCols struct {
	timestamp, temperature, humidity, baroPressure, stationPressure            int
	windSpeed, direction, densityAlt, altitude, dewPoint, heatIndex, windChill int
}

func kestrelColumns(header []string) (kestrelCols, error) {
	cols := kestrelCols{
		timestamp: -1, temperature: -1, humidity: -1, baroPressure: -1,
		stationPressure: -1, windSpeed: -1, direction: -1, densityAlt: -1,
		altitude: -1, dewPoint: -1, heatIndex: -1, windChill: -1,
	}
	for i, h := range header {
		switch key := strings.ToUpper(strings.TrimSpace(h)); {
		case strings.Contains(key, "DATE_TIME"), strings.Contains(key, "DATE TIME"):
			cols.timestamp = i
		case key == "TEMPERATURE":
			cols.temperature = i
		case strings.Contains(key, "HUMIDITY"):
			cols.humidity = i
		case strings.Contains(key, "BAROMETRIC"):
			cols.baroPressure = i
		case strings.Contains(key, "STATION PRESSURE"):
			cols.stationPressure = i
		case strings.Contains(key, "WIND SPEED"):
			cols.windSpeed = i
		case strings.Contains(key, "DIRECTION"):
			cols.direction = i
		case strings.Contains(key, "DENSITY ALTITUDE"):
			cols.densityAlt = i
		case key == "ALTITUDE":
			cols.altitude = i
		case strings.Contains(key, "DEW POINT"):
			cols.dewPoint = i
		case strings.Contains(key, "HEAT INDEX"):
			cols.heatIndex = i
		case strings.Contains(key, "WIND CHILL"):
			cols.windChill = i
		}
	}
	if cols.timestamp < 0 {
		return cols, fmt.Errorf("header row has no DATE_TIME column")
	}
	return cols, nil
}

func parseKestrelReading(row []string, cols kestrelCols) (KestrelReading, error) {
	var reading KestrelReading

	raw := strings.TrimSpace(rowCell(row, cols.timestamp))
	ts, err := parseKestrelTime(raw)
	if err != nil {
		return reading, err
	}
	reading.Timestamp = ts

	reading.TemperatureF = kestrelFloat(rowCell(row, cols.temperature))
	reading.RelativeHumidityPct = kestrelFloat(rowCell(row, cols.humidity))
	reading.BarometricPressureInHg = kestrelFloat(rowCell(row, cols.baroPressure))
	reading.StationPressureInHg = kestrelFloat(rowCell(row, cols.stationPressure))
	reading.WindSpeedMph = kestrelFloat(rowCell(row, cols.windSpeed))
	reading.DirectionDeg = kestrelFloat(rowCell(row, cols.direction))
	reading.DensityAltitudeFt = kestrelFloat(rowCell(row, cols.densityAlt))
	reading.AltitudeFt = kestrelFloat(rowCell(row, cols.altitude))
	reading.DewPointF = kestrelFloat(rowCell(row, cols.dewPoint))
	reading.HeatIndexF = kestrelFloat(rowCell(row, cols.heatIndex))
	reading.WindChillF = kestrelFloat(rowCell(row, cols.windChill))
	return reading, nil
}

func parseKestrelTime(s string) (time.Time, error) {
	for _, layout := range kestrelTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}

// kestrelFloat parses a body cell; Kestrel writes "***" for sensor
// readings it could not take.
func kestrelFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "*") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func metaValue(row []string) string {
	if len(row) > 1 {
		return strings.TrimSpace(row[1])
	}
	if len(row) == 1 {
		return strings.TrimSpace(row[0])
	}
	return ""
}
