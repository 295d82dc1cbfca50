package ingest

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXeroExport(t *testing.T, title string, rows [][]interface{}) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", title))

	header := []interface{}{"#", "SPEED (FPS)", "Δ AVG (FPS)", "KE (FT-LB)", "POWER FACTOR (kgr⋅ft/s)", "TIME", "CLEAN BORE", "COLD BORE", "SHOT NOTES"}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &header))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func TestParseGarminXLSX(t *testing.T) {
	r := buildXeroExport(t, "6.5 Creedmoor, 28 Apr 2024 at 10:01", [][]interface{}{
		{"1", "2712.1", "6.7", "1180.2", "210.5", "10:01:23", "TRUE", "TRUE", "first string"},
		{"2", "2705.8", "0.4", "1174.7", "210.0", "10:02:40", "", "", ""},
		{"3", "2698.4", "-7.0", "1168.3", "209.4", "10:03:55", "", "", ""},
		{"AVERAGE SPEED (FPS)", "2705.4"},
		{"STD DEV (FPS)", "6.9"},
		{"SPREAD (FPS)", "13.7"},
	})

	session, err := ParseGarminXLSX(r)
	require.NoError(t, err)

	assert.Equal(t, "6.5 Creedmoor", session.SessionName)
	assert.Equal(t, time.Date(2024, 4, 28, 10, 1, 0, 0, time.UTC), session.Datetime)

	require.NotNil(t, session.AvgSpeedFps)
	assert.Equal(t, 2705.4, *session.AvgSpeedFps)
	require.NotNil(t, session.StdDevFps)
	assert.Equal(t, 6.9, *session.StdDevFps)

	require.Len(t, session.Shots, 3)

	first := session.Shots[0]
	assert.Equal(t, 1, first.ShotNumber)
	assert.Equal(t, 2712.1, first.SpeedFps)
	require.NotNil(t, first.DeltaAvgFps)
	assert.Equal(t, 6.7, *first.DeltaAvgFps)
	require.NotNil(t, first.KEFtLb)
	assert.Equal(t, 1180.2, *first.KEFtLb)
	require.NotNil(t, first.CleanBore)
	assert.True(t, *first.CleanBore)
	require.NotNil(t, first.Notes)
	assert.Equal(t, "first string", *first.Notes)
	assert.Equal(t, time.Date(2024, 4, 28, 10, 1, 23, 0, time.UTC), first.Time)

	// Shot times combine the session date with the per-shot clock.
	assert.Equal(t, time.Date(2024, 4, 28, 10, 3, 55, 0, time.UTC), session.Shots[2].Time)

	// Untagged bore cells stay nil instead of defaulting to false.
	assert.Nil(t, session.Shots[1].CleanBore)
}

func TestParseGarminXLSX_NegativeDelta(t *testing.T) {
	r := buildXeroExport(t, "9mm Luger, 3 Jan 2025 at 14:30", [][]interface{}{
		{"1", "1120.0", "-4.2", "350.1", "129.8", "14:30:05"},
	})

	session, err := ParseGarminXLSX(r)
	require.NoError(t, err)
	require.Len(t, session.Shots, 1)
	require.NotNil(t, session.Shots[0].DeltaAvgFps)
	assert.Equal(t, -4.2, *session.Shots[0].DeltaAvgFps)
}

func TestParseGarminXLSX_BadTitle(t *testing.T) {
	r := buildXeroExport(t, "no date here", [][]interface{}{
		{"1", "2700.0", "", "", "", "10:00:00"},
	})

	_, err := ParseGarminXLSX(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date")
}

func TestParseGarminXLSX_BadSpeed(t *testing.T) {
	r := buildXeroExport(t, "6.5 Creedmoor, 28 Apr 2024 at 10:01", [][]interface{}{
		{"1", "fast", "", "", "", "10:00:00"},
	})

	_, err := ParseGarminXLSX(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad speed")
}

func TestParseGarminXLSX_NoShots(t *testing.T) {
	r := buildXeroExport(t, "6.5 Creedmoor, 28 Apr 2024 at 10:01", [][]interface{}{
		{"AVERAGE SPEED (FPS)", "0"},
	})

	_, err := ParseGarminXLSX(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no shots")
}

func TestParseGarminXLSX_NotAnXLSX(t *testing.T) {
	_, err := ParseGarminXLSX(bytes.NewReader([]byte("definitely,a,csv\n1,2,3\n")))
	require.Error(t, err)
}
