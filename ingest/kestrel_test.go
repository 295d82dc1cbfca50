package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kestrelSample = `Device Name,Kestrel 5700 Elite
Model,Kestrel 5700,2489234
,
FORMATTED DATE_TIME,Temperature,Relative Humidity,Barometric Pressure,Station Pressure,Wind Speed,Compass True Direction,Density Altitude,Altitude,Dew Point,Heat Index,Wind Chill
yyyy-MM-dd h:mm:ss a,°F,%,inHg,inHg,mph,Degrees,ft,ft,°F,°F,°F
2024-04-28 10:01:00 AM,68.4,41.2,29.92,29.80,3.1,270,1250,800,44.1,67.9,68.0
2024-04-28 10:03:00 AM,68.9,40.8,29.91,***,2.4,265,1260,800,44.0,68.3,68.4
2024-04-28 10:05:00 AM,69.1,40.5,29.91,29.79,,260,1265,800,43.9,68.5,68.6
`

func TestParseKestrelCSV(t *testing.T) {
	exp, err := ParseKestrelCSV(strings.NewReader(kestrelSample))
	require.NoError(t, err)

	assert.Equal(t, "Kestrel 5700 Elite", exp.DeviceName)
	assert.Equal(t, "Kestrel 5700", exp.Model)
	assert.Equal(t, "2489234", exp.Serial)
	require.Len(t, exp.Readings, 3)

	first := exp.Readings[0]
	assert.Equal(t, time.Date(2024, 4, 28, 10, 1, 0, 0, time.UTC), first.Timestamp)
	require.NotNil(t, first.TemperatureF)
	assert.Equal(t, 68.4, *first.TemperatureF)
	require.NotNil(t, first.RelativeHumidityPct)
	assert.Equal(t, 41.2, *first.RelativeHumidityPct)
	require.NotNil(t, first.BarometricPressureInHg)
	assert.Equal(t, 29.92, *first.BarometricPressureInHg)
	require.NotNil(t, first.WindSpeedMph)
	assert.Equal(t, 3.1, *first.WindSpeedMph)
	require.NotNil(t, first.DirectionDeg)
	assert.Equal(t, 270.0, *first.DirectionDeg)
	require.NotNil(t, first.DensityAltitudeFt)
	assert.Equal(t, 1250.0, *first.DensityAltitudeFt)

	// "***" marks a reading the device could not take.
	assert.Nil(t, exp.Readings[1].StationPressureInHg)
	// Empty cells are nil too.
	assert.Nil(t, exp.Readings[2].WindSpeedMph)
}

func TestParseKestrelCSV_SerialFoldedIntoModel(t *testing.T) {
	sample := `Device Name,Kestrel DROP D3
Model,Kestrel DROP D3 - 1098801
,
FORMATTED DATE_TIME,Temperature
yyyy-MM-dd h:mm:ss a,°F
2024-04-28 10:01:00 AM,68.4
`
	exp, err := ParseKestrelCSV(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, "Kestrel DROP D3", exp.Model)
	assert.Equal(t, "1098801", exp.Serial)
}

func TestParseKestrelCSV_MissingSerial(t *testing.T) {
	sample := `Device Name,Some Meter
Model,NoSerialHere
,
FORMATTED DATE_TIME,Temperature
yyyy-MM-dd h:mm:ss a,°F
2024-04-28 10:01:00 AM,68.4
`
	_, err := ParseKestrelCSV(strings.NewReader(sample))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serial")
}

func TestParseKestrelCSV_NoHeaderRow(t *testing.T) {
	sample := "a,b\nc,d\ne,f\ng,h\ni,j\n"
	_, err := ParseKestrelCSV(strings.NewReader(sample))
	require.Error(t, err)
}

func TestParseKestrelCSV_BadTimestamp(t *testing.T) {
	sample := `Device Name,Kestrel 5700 Elite
Model,Kestrel 5700,2489234
,
FORMATTED DATE_TIME,Temperature
yyyy-MM-dd h:mm:ss a,°F
not-a-time,68.4
`
	_, err := ParseKestrelCSV(strings.NewReader(sample))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad timestamp")
}

func TestParseKestrelCSV_TooShort(t *testing.T) {
	_, err := ParseKestrelCSV(strings.NewReader("just,one,row\n"))
	require.Error(t, err)
}
