package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineDistanceM(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expectedM              float64
		tolM                   float64
	}{
		{"same point", 40.0, -105.0, 40.0, -105.0, 0, 0.01},
		{"NYC to LA", 40.7128, -74.0060, 34.0522, -118.2437, 3935700, 10000},
		{"1000 yard range", 39.0, -104.0, 39.00823, -104.0, 915, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := HaversineDistanceM(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expectedM, d, tt.tolM)
		})
	}
}

func TestInitialBearingDeg(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expected               float64
	}{
		{"due north", 39.0, -104.0, 40.0, -104.0, 0},
		{"due east", 0.0, 10.0, 0.0, 11.0, 90},
		{"due south", 40.0, -104.0, 39.0, -104.0, 180},
		{"due west", 0.0, 11.0, 0.0, 10.0, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := InitialBearingDeg(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expected, b, 0.01)
		})
	}
}

func TestCompute_WithAltitudes(t *testing.T) {
	startAlt, endAlt := 1000.0, 1100.0
	g := Compute(
		Point{Lat: 39.0, Lon: -104.0, AltitudeM: &startAlt},
		Point{Lat: 39.00823, Lon: -104.0, AltitudeM: &endAlt},
	)

	assert.InDelta(t, 915, g.DistanceM, 5)
	assert.InDelta(t, 0, g.AzimuthDeg, 0.01)

	require.NotNil(t, g.ElevationAngleDeg)
	expectedAngle := math.Atan2(100, g.DistanceM) * 180 / math.Pi
	assert.InDelta(t, expectedAngle, *g.ElevationAngleDeg, 0.001)

	require.NotNil(t, g.Distance3DM)
	expected3D := math.Sqrt(g.DistanceM*g.DistanceM + 100*100)
	assert.InDelta(t, expected3D, *g.Distance3DM, 0.001)
}

func TestCompute_MissingAltitude(t *testing.T) {
	alt := 1000.0
	g := Compute(
		Point{Lat: 39.0, Lon: -104.0, AltitudeM: &alt},
		Point{Lat: 39.01, Lon: -104.0},
	)

	assert.Greater(t, g.DistanceM, 0.0)
	assert.Nil(t, g.ElevationAngleDeg)
	assert.Nil(t, g.Distance3DM)
}

func TestCompute_DownhillAngleIsNegative(t *testing.T) {
	startAlt, endAlt := 1200.0, 1000.0
	g := Compute(
		Point{Lat: 39.0, Lon: -104.0, AltitudeM: &startAlt},
		Point{Lat: 39.01, Lon: -104.0, AltitudeM: &endAlt},
	)

	require.NotNil(t, g.ElevationAngleDeg)
	assert.Less(t, *g.ElevationAngleDeg, 0.0)
}
