// cmd/importer/main.go
// Bulk-imports chronograph and weather device export files for a user,
// through the same parsers and tables as the upload endpoints.
//
// Usage:
//
//	go run ./cmd/importer -email shooter@example.com \
//	    -chrono 'exports/*.xlsx' -kestrel 'exports/*.csv'
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/uptrace/bun"

	"github.com/chronolog/chronolog-api/config"
	bundb "github.com/chronolog/chronolog-api/db"
	"github.com/chronolog/chronolog-api/ingest"
	"github.com/chronolog/chronolog-api/models"
)

func main() {
	email := flag.String("email", "", "account email to import for (required)")
	chronoGlob := flag.String("chrono", "", "glob of Garmin Xero .xlsx exports")
	kestrelGlob := flag.String("kestrel", "", "glob of Kestrel .csv exports")
	flag.Parse()

	if *email == "" {
		log.Fatal("-email is required")
	}
	if *chronoGlob == "" && *kestrelGlob == "" {
		log.Fatal("nothing to do: pass -chrono and/or -kestrel")
	}

	ctx := context.Background()

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	user := &models.User{}
	err := db.NewSelect().Model(user).
		Where("email = ?", *email).
		Scan(ctx)
	if err != nil {
		log.Fatalf("user %q: %v (create it with cmd/adduser first)", *email, err)
	}

	steps := []struct {
		name string
		fn   func() (int, error)
	}{
		{"chrono_sessions", func() (int, error) { return importChrono(ctx, db, user, *chronoGlob) }},
		{"weather_measurements", func() (int, error) { return importKestrel(ctx, db, user, *kestrelGlob) }},
	}

	for _, s := range steps {
		n, err := s.fn()
		if err != nil {
			log.Fatalf("import %s: %v", s.name, err)
		}
		log.Printf("%-22s  %d rows imported", s.name, n)
	}
}

func importChrono(ctx context.Context, db *bun.DB, user *models.User, glob string) (int, error) {
	if glob == "" {
		return 0, nil
	}
	paths, err := filepath.Glob(glob)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return total, err
		}
		parsed, err := ingest.ParseGarminXLSX(f)
		f.Close()
		if err != nil {
			return total, fmt.Errorf("%s: %w", path, err)
		}

		name := filepath.Base(path)
		session := &models.ChronoSession{
			UserID:        user.ID,
			TabName:       parsed.TabName,
			SessionName:   parsed.SessionName,
			DatetimeLocal: parsed.Datetime,
			FileName:      &name,
			ShotCount:     len(parsed.Shots),
			AvgSpeedFps:   parsed.AvgSpeedFps,
			StdDevFps:     parsed.StdDevFps,
		}

		err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewInsert().Model(session).Exec(ctx); err != nil {
				return err
			}
			measurements := make([]models.ChronoMeasurement, len(parsed.Shots))
			for i, shot := range parsed.Shots {
				measurements[i] = models.ChronoMeasurement{
					SessionID:     session.ID,
					ShotNumber:    shot.ShotNumber,
					SpeedFps:      shot.SpeedFps,
					DeltaAvgFps:   shot.DeltaAvgFps,
					KEFtLb:        shot.KEFtLb,
					PowerFactor:   shot.PowerFactor,
					DatetimeLocal: shot.Time,
					CleanBore:     shot.CleanBore,
					ColdBore:      shot.ColdBore,
					Notes:         shot.Notes,
				}
			}
			_, err := tx.NewInsert().Model(&measurements).Exec(ctx)
			return err
		})
		if err != nil {
			return total, fmt.Errorf("%s: %w", path, err)
		}
		total += len(parsed.Shots)
		log.Printf("%s: %d shots", path, len(parsed.Shots))
	}
	return total, nil
}

func importKestrel(ctx context.Context, db *bun.DB, user *models.User, glob string) (int, error) {
	if glob == "" {
		return 0, nil
	}
	paths, err := filepath.Glob(glob)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return total, err
		}
		parsed, err := ingest.ParseKestrelCSV(f)
		f.Close()
		if err != nil {
			return total, fmt.Errorf("%s: %w", path, err)
		}

		source := &models.WeatherSource{
			UserID: user.ID,
			Name:   parsed.DeviceName,
			Serial: parsed.Serial,
		}
		if parsed.DeviceName != "" {
			source.DeviceName = &parsed.DeviceName
		}
		if parsed.Model != "" {
			source.Model = &parsed.Model
		}

		var inserted int64
		err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewInsert().Model(source).
				On("CONFLICT (user_id, serial) DO UPDATE SET device_name = EXCLUDED.device_name, model = EXCLUDED.model").
				Returning("id").
				Exec(ctx); err != nil {
				return err
			}
			measurements := make([]models.WeatherMeasurement, len(parsed.Readings))
			for i, r := range parsed.Readings {
				measurements[i] = models.WeatherMeasurement{
					SourceID:               source.ID,
					MeasurementTimestamp:   r.Timestamp,
					TemperatureF:           r.TemperatureF,
					RelativeHumidityPct:    r.RelativeHumidityPct,
					BarometricPressureInHg: r.BarometricPressureInHg,
					StationPressureInHg:    r.StationPressureInHg,
					WindSpeedMph:           r.WindSpeedMph,
					DirectionDeg:           r.DirectionDeg,
					DensityAltitudeFt:      r.DensityAltitudeFt,
					AltitudeFt:             r.AltitudeFt,
					DewPointF:              r.DewPointF,
					HeatIndexF:             r.HeatIndexF,
					WindChillF:             r.WindChillF,
				}
			}
			res, err := tx.NewInsert().Model(&measurements).
				On("CONFLICT (weather_source_id, measurement_timestamp) DO NOTHING").
				Exec(ctx)
			if err != nil {
				return err
			}
			inserted, _ = res.RowsAffected()
			return nil
		})
		if err != nil {
			return total, fmt.Errorf("%s: %w", path, err)
		}
		total += int(inserted)
		log.Printf("%s: %d of %d readings new", path, inserted, len(parsed.Readings))
	}
	return total, nil
}
