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

// UploadChrono ingests a Garmin Xero .xlsx export as a new chronograph
// session for the caller.
func (h *Handler) UploadChrono(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file upload")
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()

	parsed, err := ingest.ParseGarminXLSX(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session := &models.ChronoSession{
		UserID:        mw.UserID(c),
		TabName:       parsed.TabName,
		SessionName:   parsed.SessionName,
		DatetimeLocal: parsed.Datetime,
		FileName:      &fh.Filename,
		ShotCount:     len(parsed.Shots),
		AvgSpeedFps:   parsed.AvgSpeedFps,
		StdDevFps:     parsed.StdDevFps,
	}

	err = h.db.RunInTx(c.Request().Context(), nil, func(ctx context.Context, tx bun.Tx) error {
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
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
			return echo.NewHTTPError(http.StatusConflict, "this export has already been uploaded")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, session)
}

// ChronoSessions lists the caller's chronograph sessions, newest first,
// optionally restricted to a date range.
func (h *Handler) ChronoSessions(c echo.Context) error {
	var sessions []models.ChronoSession
	q := h.db.NewSelect().Model(&sessions).
		Where("cs.user_id = ?", mw.UserID(c)).
		OrderExpr("cs.datetime_local DESC")

	if start := c.QueryParam("start"); start != "" {
		q = q.Where("cs.datetime_local >= ?", start)
	}
	if end := c.QueryParam("end"); end != "" {
		q = q.Where("cs.datetime_local <= ?", end)
	}

	if err := q.Scan(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sessions)
}

// ChronoMeasurements returns the shots of one of the caller's sessions.
func (h *Handler) ChronoMeasurements(c echo.Context) error {
	ctx := c.Request().Context()

	owned, err := h.db.NewSelect().Model((*models.ChronoSession)(nil)).
		Where("cs.id = ?", c.Param("id")).
		Where("cs.user_id = ?", mw.UserID(c)).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !owned {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	var measurements []models.ChronoMeasurement
	err = h.db.NewSelect().Model(&measurements).
		Where("cm.session_id = ?", c.Param("id")).
		OrderExpr("cm.shot_number ASC").
		Scan(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, measurements)
}

// DeleteChronoSession removes a session and its measurements. Refused
// while a DOPE session still references it.
func (h *Handler) DeleteChronoSession(c echo.Context) error {
	ctx := c.Request().Context()

	// Ownership first so other users' session ids stay a plain 404.
	owned, err := h.db.NewSelect().Model((*models.ChronoSession)(nil)).
		Where("cs.id = ?", c.Param("id")).
		Where("cs.user_id = ?", mw.UserID(c)).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !owned {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	referenced, err := h.db.NewSelect().Model((*models.DopeSession)(nil)).
		Where("chrono_session_id = ?", c.Param("id")).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if referenced {
		return echo.NewHTTPError(http.StatusConflict, "session is referenced by a DOPE session; delete that first")
	}

	res, err := h.db.NewDelete().Model((*models.ChronoSession)(nil)).
		Where("id = ?", c.Param("id")).
		Where("user_id = ?", mw.UserID(c)).
		Exec(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.NoContent(http.StatusOK)
}
