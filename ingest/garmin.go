// Package ingest parses chronograph and weather device export files
// into rows ready for insertion.
package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// GarminSession is one parsed Garmin Xero chronograph export.
type GarminSession struct {
	TabName     string
	SessionName string
	Datetime    time.Time
	AvgSpeedFps *float64
	StdDevFps   *float64
	Shots       []GarminShot
}

// GarminShot is a single row from the shot table of the export.
type GarminShot struct {
	ShotNumber  int
	SpeedFps    float64
	DeltaAvgFps *float64
	KEFtLb      *float64
	PowerFactor *float64
	Time        time.Time
	CleanBore   *bool
	ColdBore    *bool
	Notes       *string
}

// Garmin writes the session title as e.g. "6.5 Creedmoor, 28 Apr 2024 at 10:01".
const garminTitleTimeLayout = "2 Jan 2006 at 15:04"

// ParseGarminXLSX parses a Garmin Xero .xlsx export. The first sheet
// carries a title cell, a header row, one row per shot and a trailing
// summary block (AVG/STD DEV/SPREAD) that terminates the shot table.
func ParseGarminXLSX(r io.Reader) (*GarminSession, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 3 {
		return nil, fmt.Errorf("sheet %q too short for a Xero export", sheet)
	}

	name, sessionDate, err := parseGarminTitle(cell(rows, 0, 0))
	if err != nil {
		return nil, err
	}

	cols, err := garminColumns(rows[1])
	if err != nil {
		return nil, err
	}

	session := &GarminSession{
		TabName:     sheet,
		SessionName: name,
		Datetime:    sessionDate,
	}

	for i := 2; i < len(rows); i++ {
		first := strings.TrimSpace(cell(rows, i, 0))
		if first == "" {
			continue
		}

		shotNum, err := strconv.Atoi(first)
		if err != nil {
			// Summary block: "AVERAGE SPEED (FPS)", "STD DEV (FPS)", ...
			if err := session.applySummary(first, cell(rows, i, 1)); err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			continue
		}

		shot, err := parseGarminShot(rows[i], cols, shotNum, sessionDate)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		session.Shots = append(session.Shots, shot)
	}

	if len(session.Shots) == 0 {
		return nil, fmt.Errorf("sheet %q contains no shots", sheet)
	}
	return session, nil
}

// garminCols maps export columns by header text.
type garminCols struct {
	speed, deltaAvg, ke, powerFactor, shotTime, cleanBore, coldBore, notes int
}

func garminColumns(header []string) (garminCols, error) {
	cols := garminCols{speed: -1, deltaAvg: -1, ke: -1, powerFactor: -1, shotTime: -1, cleanBore: -1, coldBore: -1, notes: -1}
	for i, h := range header {
		switch {
		case strings.HasPrefix(strings.ToUpper(strings.TrimSpace(h)), "SPEED"):
			cols.speed = i
		case strings.Contains(strings.ToUpper(h), "AVG"):
			cols.deltaAvg = i
		case strings.HasPrefix(strings.ToUpper(strings.TrimSpace(h)), "KE"):
			cols.ke = i
		case strings.Contains(strings.ToUpper(h), "POWER FACTOR"):
			cols.powerFactor = i
		case strings.EqualFold(strings.TrimSpace(h), "TIME"):
			cols.shotTime = i
		case strings.Contains(strings.ToUpper(h), "CLEAN BORE"):
			cols.cleanBore = i
		case strings.Contains(strings.ToUpper(h), "COLD BORE"):
			cols.coldBore = i
		case strings.Contains(strings.ToUpper(h), "NOTES"):
			cols.notes = i
		}
	}
	if cols.speed < 0 {
		return cols, fmt.Errorf("header row has no SPEED column")
	}
	if cols.shotTime < 0 {
		return cols, fmt.Errorf("header row has no TIME column")
	}
	return cols, nil
}

func parseGarminShot(row []string, cols garminCols, shotNum int, sessionDate time.Time) (GarminShot, error) {
	shot := GarminShot{ShotNumber: shotNum}

	speed, err := strconv.ParseFloat(strings.TrimSpace(rowCell(row, cols.speed)), 64)
	if err != nil {
		return shot, fmt.Errorf("shot %d: bad speed %q", shotNum, rowCell(row, cols.speed))
	}
	shot.SpeedFps = speed

	shot.DeltaAvgFps = optFloat(rowCell(row, cols.deltaAvg))
	shot.KEFtLb = optFloat(rowCell(row, cols.ke))
	shot.PowerFactor = optFloat(rowCell(row, cols.powerFactor))
	shot.CleanBore = optBool(rowCell(row, cols.cleanBore))
	shot.ColdBore = optBool(rowCell(row, cols.coldBore))
	if s := strings.TrimSpace(rowCell(row, cols.notes)); s != "" {
		shot.Notes = &s
	}

	ts := strings.TrimSpace(rowCell(row, cols.shotTime))
	clock, err := time.Parse("15:04:05", ts)
	if err != nil {
		clock, err = time.Parse("15:04", ts)
	}
	if err != nil {
		return shot, fmt.Errorf("shot %d: bad time %q", shotNum, ts)
	}
	shot.Time = time.Date(
		sessionDate.Year(), sessionDate.Month(), sessionDate.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, sessionDate.Location(),
	)
	return shot, nil
}

func (g *GarminSession) applySummary(label, value string) error {
	upper := strings.ToUpper(label)
	switch {
	case strings.HasPrefix(upper, "AVERAGE SPEED"), strings.HasPrefix(upper, "AVG SPEED"):
		g.AvgSpeedFps = optFloat(value)
	case strings.HasPrefix(upper, "STD DEV"):
		g.StdDevFps = optFloat(value)
	}
	// Other summary rows (SPREAD, MIN, MAX, ...) are derivable and ignored.
	return nil
}

func parseGarminTitle(title string) (string, time.Time, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", time.Time{}, fmt.Errorf("missing session title in cell A1")
	}

	// Split the trailing ", <date> at <time>" off the session name.
	idx := strings.LastIndex(title, ",")
	if idx < 0 {
		return "", time.Time{}, fmt.Errorf("title %q has no date part", title)
	}
	name := strings.TrimSpace(title[:idx])
	datePart := strings.TrimSpace(title[idx+1:])

	ts, err := time.Parse(garminTitleTimeLayout, datePart)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("title %q: bad date %q: %w", title, datePart, err)
	}
	return name, ts, nil
}

func cell(rows [][]string, r, c int) string {
	if r >= len(rows) {
		return ""
	}
	return rowCell(rows[r], c)
}

func rowCell(row []string, c int) string {
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}

func optFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func optBool(s string) *bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "YES", "X", "1":
		t := true
		return &t
	case "FALSE", "NO", "0":
		f := false
		return &f
	}
	return nil
}
