package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/chronolog/chronolog-api/ingest"
	mw "github.com/chronolog/chronolog-api/middleware"
	"github.com/chronolog/chronolog-api/models"
)

// UploadWeather ingests a Kestrel .csv export: the source is upserted
// by device serial and the readings bulk-inserted. Re-uploading the
// same file is a no-op thanks to the (source, timestamp) constraint.
func (h *Handler) UploadWeather(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file upload")
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()

	parsed, err := ingest.ParseKestrelCSV(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	source := &models.WeatherSource{
		UserID: mw.UserID(c),
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
	err = h.db.RunInTx(c.Request().Context(), nil, func(ctx context.Context, tx bun.Tx) error {
		// name is only set on first insert; renames via the sources
		// endpoint survive re-uploads.
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
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"source":   source,
		"readings": len(parsed.Readings),
		"inserted": inserted,
	})
}

// WeatherSources lists the caller's weather devices.
func (h *Handler) WeatherSources(c echo.Context) error {
	var sources []models.WeatherSource
	err := h.db.NewSelect().Model(&sources).
		Where("ws.user_id = ?", mw.UserID(c)).
		OrderExpr("ws.name ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sources)
}

type renameSourceRequest struct {
	Name string `json:"name"`
}

// RenameWeatherSource sets the user-facing name of one of the caller's
// devices.
func (h *Handler) RenameWeatherSource(c echo.Context) error {
	var req renameSourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	res, err := h.db.NewUpdate().Model((*models.WeatherSource)(nil)).
		Set("name = ?", req.Name).
		Where("id = ?", c.Param("id")).
		Where("user_id = ?", mw.UserID(c)).
		Exec(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "weather source not found")
	}
	return c.NoContent(http.StatusOK)
}

// WeatherMeasurements returns readings for one of the caller's sources,
// newest first, optionally restricted to a time range.
func (h *Handler) WeatherMeasurements(c echo.Context) error {
	ctx := c.Request().Context()

	owned, err := h.db.NewSelect().Model((*models.WeatherSource)(nil)).
		Where("ws.id = ?", c.Param("id")).
		Where("ws.user_id = ?", mw.UserID(c)).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !owned {
		return echo.NewHTTPError(http.StatusNotFound, "weather source not found")
	}

	var measurements []models.WeatherMeasurement
	q := h.db.NewSelect().Model(&measurements).
		Where("wm.weather_source_id = ?", c.Param("id")).
		OrderExpr("wm.measurement_timestamp DESC")

	if start := c.QueryParam("start"); start != "" {
		q = q.Where("wm.measurement_timestamp >= ?", start)
	}
	if end := c.QueryParam("end"); end != "" {
		q = q.Where("wm.measurement_timestamp <= ?", end)
	}

	if err := q.Scan(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, measurements)
}

// DeleteWeatherSource removes a device and its readings.
func (h *Handler) DeleteWeatherSource(c echo.Context) error {
	res, err := h.db.NewDelete().Model((*models.WeatherSource)(nil)).
		Where("id = ?", c.Param("id")).
		Where("user_id = ?", mw.UserID(c)).
		Exec(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "weather source not found")
	}
	return c.NoContent(http.StatusOK)
}
