package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/chronolog/chronolog-api/config"
	"github.com/chronolog/chronolog-api/models"
)

// Setup opens a PostgreSQL connection using the provided config.
func Setup(cfg *config.Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(context.Background()); err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	return db
}

// CreateTables creates all tables in dependency order.
func CreateTables(ctx context.Context, db *bun.DB) error {
	// Users default their PK through gen_random_uuid().
	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		return fmt.Errorf("creating pgcrypto extension: %w", err)
	}

	tables := []interface{}{
		(*models.User)(nil),
		(*models.Bullet)(nil),
		(*models.Cartridge)(nil),
		(*models.Rifle)(nil),
		(*models.RangeSubmission)(nil),
		(*models.Range)(nil),
		(*models.ChronoSession)(nil),
		(*models.ChronoMeasurement)(nil),
		(*models.WeatherSource)(nil),
		(*models.WeatherMeasurement)(nil),
		(*models.DopeSession)(nil),
		(*models.DopeMeasurement)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	constraints := []string{
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bullets_no_dupes') THEN ALTER TABLE bullets ADD CONSTRAINT bullets_no_dupes UNIQUE (manufacturer, model, weight_gr); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'cartridges_bullet_fk') THEN ALTER TABLE cartridges ADD CONSTRAINT cartridges_bullet_fk FOREIGN KEY (bullet_id) REFERENCES bullets (id); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'rifles_no_dupes') THEN ALTER TABLE rifles ADD CONSTRAINT rifles_no_dupes UNIQUE (user_id, name); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chrono_sessions_no_dupes') THEN ALTER TABLE chrono_sessions ADD CONSTRAINT chrono_sessions_no_dupes UNIQUE (user_id, tab_name, datetime_local); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chrono_measurements_session_fk') THEN ALTER TABLE chrono_measurements ADD CONSTRAINT chrono_measurements_session_fk FOREIGN KEY (session_id) REFERENCES chrono_sessions (id) ON DELETE CASCADE; END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'weather_source_no_dupes') THEN ALTER TABLE weather_source ADD CONSTRAINT weather_source_no_dupes UNIQUE (user_id, serial); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'weather_measurements_no_dupes') THEN ALTER TABLE weather_measurements ADD CONSTRAINT weather_measurements_no_dupes UNIQUE (weather_source_id, measurement_timestamp); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'weather_measurements_source_fk') THEN ALTER TABLE weather_measurements ADD CONSTRAINT weather_measurements_source_fk FOREIGN KEY (weather_source_id) REFERENCES weather_source (id) ON DELETE CASCADE; END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'dope_sessions_chrono_fk') THEN ALTER TABLE dope_sessions ADD CONSTRAINT dope_sessions_chrono_fk FOREIGN KEY (chrono_session_id) REFERENCES chrono_sessions (id); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'dope_measurements_session_fk') THEN ALTER TABLE dope_measurements ADD CONSTRAINT dope_measurements_session_fk FOREIGN KEY (dope_session_id) REFERENCES dope_sessions (id) ON DELETE CASCADE; END IF; END $$`,
	}
	for _, stmt := range constraints {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Printf("constraint: %v", err)
		}
	}

	return nil
}
