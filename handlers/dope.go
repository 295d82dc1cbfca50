package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/chronolog/chronolog-api/dope"
	mw "github.com/chronolog/chronolog-api/middleware"
	"github.com/chronolog/chronolog-api/models"
)

type dopeSessionRequest struct {
	SessionName     string   `json:"sessionName"`
	ChronoSessionID int      `json:"chronoSessionID"`
	CartridgeID     int      `json:"cartridgeID"`
	RifleID         int      `json:"rifleID"`
	RangeID         *int     `json:"rangeID"`
	WeatherSourceID *int     `json:"weatherSourceID"`
	DistanceM       *float64 `json:"distanceM"`
	Notes           *string  `json:"notes"`
}

func (r *dopeSessionRequest) validate() error {
	r.SessionName = strings.TrimSpace(r.SessionName)
	if r.SessionName == "" {
		return errors.New("sessionName is required")
	}
	if r.ChronoSessionID <= 0 {
		return errors.New("chronoSessionID is required")
	}
	if r.CartridgeID <= 0 {
		return errors.New("cartridgeID is required")
	}
	if r.RifleID <= 0 {
		return errors.New("rifleID is required")
	}
	return nil
}

// CreateDopeSession assembles a DOPE session: the chronograph string is
// joined to cartridge, bullet, rifle and range; weather from the chosen
// source inside the shot window is median-aggregated onto the session
// and matched per shot by nearest timestamp.
func (h *Handler) CreateDopeSession(c echo.Context) error {
	var req dopeSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	uid := mw.UserID(c)

	chrono := &models.ChronoSession{}
	err := h.db.NewSelect().Model(chrono).
		Where("cs.id = ?", req.ChronoSessionID).
		Where("cs.user_id = ?", uid).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusBadRequest, "chronoSessionID does not reference one of your sessions")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var shots []models.ChronoMeasurement
	err = h.db.NewSelect().Model(&shots).
		Where("cm.session_id = ?", chrono.ID).
		OrderExpr("cm.shot_number ASC").
		Scan(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(shots) == 0 {
		return echo.NewHTTPError(http.StatusConflict, "chronograph session has no shots")
	}

	cartridge := &models.Cartridge{}
	err = h.db.NewSelect().Model(cartridge).
		Relation("Bullet").
		Where("ca.id = ?", req.CartridgeID).
		Where("ca.owner_id IS NULL OR ca.owner_id = ?", uid).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusBadRequest, "cartridgeID does not reference a cartridge you can use")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	rifle := &models.Rifle{}
	err = h.db.NewSelect().Model(rifle).
		Where("rf.id = ?", req.RifleID).
		Where("rf.user_id = ?", uid).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusBadRequest, "rifleID does not reference one of your rifles")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var rangeName *string
	if req.RangeID != nil {
		rng := &models.Range{}
		err = h.db.NewSelect().Model(rng).
			Where("rg.id = ?", *req.RangeID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return echo.NewHTTPError(http.StatusBadRequest, "rangeID does not reference a known range")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		rangeName = &rng.RangeName
	}

	window, err := dope.SessionWindow(shots, h.weatherBuffer)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	var readings []models.WeatherMeasurement
	if req.WeatherSourceID != nil {
		owned, err := h.db.NewSelect().Model((*models.WeatherSource)(nil)).
			Where("ws.id = ?", *req.WeatherSourceID).
			Where("ws.user_id = ?", uid).
			Exists(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if !owned {
			return echo.NewHTTPError(http.StatusBadRequest, "weatherSourceID does not reference one of your sources")
		}

		err = h.db.NewSelect().Model(&readings).
			Where("wm.weather_source_id = ?", *req.WeatherSourceID).
			Where("wm.measurement_timestamp BETWEEN ? AND ?", window.Start, window.End).
			OrderExpr("wm.measurement_timestamp ASC").
			Scan(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	summary := dope.Summarize(readings)

	session := &models.DopeSession{
		UserID:          uid,
		SessionName:     req.SessionName,
		ChronoSessionID: chrono.ID,
		CartridgeID:     cartridge.ID,
		RifleID:         rifle.ID,
		RangeID:         req.RangeID,
		WeatherSourceID: req.WeatherSourceID,
		DistanceM:       req.DistanceM,
		Notes:           req.Notes,

		CartridgeMake:  cartridge.Make,
		CartridgeModel: cartridge.Model,
		CartridgeType:  cartridge.CartridgeType,
		BulletMake:     cartridge.Bullet.Manufacturer,
		BulletModel:    cartridge.Bullet.Model,
		BulletWeightGr: cartridge.Bullet.WeightGr,
		RifleName:      rifle.Name,
		RangeName:      rangeName,

		MedianTemperatureF: summary.TemperatureF,
		MedianHumidityPct:  summary.HumidityPct,
		MedianPressureInHg: summary.PressureInHg,
		MedianWindSpeedMph: summary.WindSpeedMph,

		StartTime: window.Start.Add(h.weatherBuffer),
		EndTime:   window.End.Add(-h.weatherBuffer),
	}

	measurements := dope.Associate(shots, readings)

	err = h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(session).Exec(ctx); err != nil {
			return err
		}
		for i := range measurements {
			measurements[i].DopeSessionID = session.ID
		}
		_, err := tx.NewInsert().Model(&measurements).Exec(ctx)
		return err
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, session)
}

// dopeSessionRow is a flat scan target for the session listing join.
type dopeSessionRow struct {
	models.DopeSession

	ChronoShotCount   int      `bun:"chrono_shot_count" json:"chronoShotCount"`
	ChronoAvgSpeedFps *float64 `bun:"chrono_avg_speed_fps" json:"chronoAvgSpeedFps,omitempty"`
	ChronoStdDevFps   *float64 `bun:"chrono_std_dev_fps" json:"chronoStdDevFps,omitempty"`
}

const dopeJoinSQL = `
SELECT
	ds.*,
	cs.shot_count AS chrono_shot_count,
	cs.avg_speed_fps AS chrono_avg_speed_fps,
	cs.std_dev_fps AS chrono_std_dev_fps
FROM dope_sessions ds
INNER JOIN chrono_sessions cs ON cs.id = ds.chrono_session_id
WHERE ds.user_id = ?`

// DopeSessions lists the caller's DOPE sessions, newest first, with the
// chronograph summary flattened in. Filters: cartridgeID, rifleID,
// rangeID, start, end.
func (h *Handler) DopeSessions(c echo.Context) error {
	sqlText := dopeJoinSQL
	args := []interface{}{mw.UserID(c)}

	if v := c.QueryParam("cartridgeID"); v != "" {
		sqlText += " AND ds.cartridge_id = ?"
		args = append(args, v)
	}
	if v := c.QueryParam("rifleID"); v != "" {
		sqlText += " AND ds.rifle_id = ?"
		args = append(args, v)
	}
	if v := c.QueryParam("rangeID"); v != "" {
		sqlText += " AND ds.range_id = ?"
		args = append(args, v)
	}
	if v := c.QueryParam("start"); v != "" {
		sqlText += " AND ds.start_time >= ?"
		args = append(args, v)
	}
	if v := c.QueryParam("end"); v != "" {
		sqlText += " AND ds.end_time <= ?"
		args = append(args, v)
	}
	sqlText += " ORDER BY ds.start_time DESC"

	var rows []dopeSessionRow
	if err := h.db.NewRaw(sqlText, args...).Scan(c.Request().Context(), &rows); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

type dopeSessionDetail struct {
	Session      *models.DopeSession      `json:"session"`
	Measurements []models.DopeMeasurement `json:"measurements"`
}

// GetDopeSession returns one of the caller's sessions with its shots.
func (h *Handler) GetDopeSession(c echo.Context) error {
	ctx := c.Request().Context()

	session := &models.DopeSession{}
	err := h.db.NewSelect().Model(session).
		Where("ds.id = ?", c.Param("id")).
		Where("ds.user_id = ?", mw.UserID(c)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "DOPE session not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var measurements []models.DopeMeasurement
	err = h.db.NewSelect().Model(&measurements).
		Where("dm.dope_session_id = ?", session.ID).
		OrderExpr("dm.shot_number ASC").
		Scan(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dopeSessionDetail{Session: session, Measurements: measurements})
}

type dopeUpdateRequest struct {
	SessionName *string  `json:"sessionName"`
	Notes       *string  `json:"notes"`
	DistanceM   *float64 `json:"distanceM"`
}

// UpdateDopeSession edits the mutable session fields. Measurements and
// the aggregated weather are immutable once assembled.
func (h *Handler) UpdateDopeSession(c echo.Context) error {
	var req dopeUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	q := h.db.NewUpdate().Model((*models.DopeSession)(nil)).
		Where("id = ?", c.Param("id")).
		Where("user_id = ?", mw.UserID(c))

	touched := false
	if req.SessionName != nil {
		name := strings.TrimSpace(*req.SessionName)
		if name == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "sessionName cannot be empty")
		}
		q = q.Set("session_name = ?", name)
		touched = true
	}
	if req.Notes != nil {
		q = q.Set("notes = ?", *req.Notes)
		touched = true
	}
	if req.DistanceM != nil {
		q = q.Set("distance_m = ?", *req.DistanceM)
		touched = true
	}
	if !touched {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	res, err := q.Exec(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "DOPE session not found")
	}
	return c.NoContent(http.StatusOK)
}

// DeleteDopeSession removes a session and its measurements. The confirm
// query param must exactly match the caller's email.
func (h *Handler) DeleteDopeSession(c echo.Context) error {
	if c.QueryParam("confirm") != mw.Email(c) {
		return echo.NewHTTPError(http.StatusBadRequest, "confirm must exactly match your account email")
	}

	res, err := h.db.NewDelete().Model((*models.DopeSession)(nil)).
		Where("id = ?", c.Param("id")).
		Where("user_id = ?", mw.UserID(c)).
		Exec(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "DOPE session not found")
	}
	return c.NoContent(http.StatusOK)
}
