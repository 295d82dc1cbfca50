package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/chronolog/chronolog-api/geo"
	mw "github.com/chronolog/chronolog-api/middleware"
	"github.com/chronolog/chronolog-api/models"
)

type rangeSubmissionRequest struct {
	RangeName        string   `json:"rangeName"`
	RangeDescription *string  `json:"rangeDescription"`
	StartLat         float64  `json:"startLat"`
	StartLon         float64  `json:"startLon"`
	StartAltitudeM   *float64 `json:"startAltitudeM"`
	EndLat           float64  `json:"endLat"`
	EndLon           float64  `json:"endLon"`
	EndAltitudeM     *float64 `json:"endAltitudeM"`
}

func (r *rangeSubmissionRequest) validate() error {
	r.RangeName = strings.TrimSpace(r.RangeName)
	if r.RangeName == "" {
		return errors.New("rangeName is required")
	}
	for _, lat := range []float64{r.StartLat, r.EndLat} {
		if lat < -90 || lat > 90 {
			return errors.New("latitude must be in [-90, 90]")
		}
	}
	for _, lon := range []float64{r.StartLon, r.EndLon} {
		if lon < -180 || lon > 180 {
			return errors.New("longitude must be in [-180, 180]")
		}
	}
	return nil
}

// Ranges returns the approved global range catalog.
func (h *Handler) Ranges(c echo.Context) error {
	var ranges []models.Range
	err := h.db.NewSelect().Model(&ranges).
		OrderExpr("rg.range_name ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ranges)
}

// RangeSubmissions lists submissions: the caller's own, or all of them
// for admins (filterable by status).
func (h *Handler) RangeSubmissions(c echo.Context) error {
	var subs []models.RangeSubmission
	q := h.db.NewSelect().Model(&subs).
		OrderExpr("rs.submitted_at DESC")

	if mw.IsAdmin(c) {
		if st := c.QueryParam("status"); st != "" {
			q = q.Where("rs.status = ?", st)
		}
	} else {
		q = q.Where("rs.user_id = ?", mw.UserID(c))
	}

	if err := q.Scan(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, subs)
}

// SubmitRange records a range submission. Display name, missing
// altitudes and geometry are derived server-side; client-supplied
// derived values are ignored.
func (h *Handler) SubmitRange(c echo.Context) error {
	var req rangeSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sub := &models.RangeSubmission{
		UserID:           mw.UserID(c),
		RangeName:        req.RangeName,
		RangeDescription: req.RangeDescription,
		StartLat:         req.StartLat,
		StartLon:         req.StartLon,
		StartAltitudeM:   req.StartAltitudeM,
		EndLat:           req.EndLat,
		EndLon:           req.EndLon,
		EndAltitudeM:     req.EndAltitudeM,
		Status:           models.RangeStatusPending,
	}
	h.enrichSubmission(c.Request().Context(), sub)

	if _, err := h.db.NewInsert().Model(sub).Exec(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, sub)
}

// UpdateRangeSubmission edits a pending submission owned by the caller
// and recomputes the derived columns.
func (h *Handler) UpdateRangeSubmission(c echo.Context) error {
	var req rangeSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	sub := &models.RangeSubmission{}
	err := h.db.NewSelect().Model(sub).
		Where("rs.id = ?", c.Param("id")).
		Where("rs.user_id = ?", mw.UserID(c)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "submission not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if sub.Status != models.RangeStatusPending {
		return echo.NewHTTPError(http.StatusConflict, "only pending submissions can be edited")
	}

	sub.RangeName = req.RangeName
	sub.RangeDescription = req.RangeDescription
	sub.StartLat = req.StartLat
	sub.StartLon = req.StartLon
	sub.StartAltitudeM = req.StartAltitudeM
	sub.EndLat = req.EndLat
	sub.EndLon = req.EndLon
	sub.EndAltitudeM = req.EndAltitudeM
	h.enrichSubmission(ctx, sub)

	if _, err := h.db.NewUpdate().Model(sub).WherePK().Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sub)
}

type rangeReviewRequest struct {
	Approve bool    `json:"approve"`
	Reason  *string `json:"reason"`
}

// ReviewRangeSubmission approves or denies a pending submission.
// Approval copies it into the global range catalog. Admin only.
func (h *Handler) ReviewRangeSubmission(c echo.Context) error {
	var req rangeReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	sub := &models.RangeSubmission{}
	err := h.db.NewSelect().Model(sub).
		Where("rs.id = ?", c.Param("id")).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "submission not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if sub.Status != models.RangeStatusPending {
		return echo.NewHTTPError(http.StatusConflict, "submission already reviewed")
	}

	if !req.Approve {
		sub.Status = models.RangeStatusDenied
		sub.ReviewReason = req.Reason
		if _, err := h.db.NewUpdate().Model(sub).WherePK().Exec(ctx); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, sub)
	}

	rng := &models.Range{
		SubmissionID:      &sub.ID,
		RangeName:         sub.RangeName,
		RangeDescription:  sub.RangeDescription,
		StartLat:          sub.StartLat,
		StartLon:          sub.StartLon,
		StartAltitudeM:    sub.StartAltitudeM,
		EndLat:            sub.EndLat,
		EndLon:            sub.EndLon,
		EndAltitudeM:      sub.EndAltitudeM,
		DisplayName:       sub.DisplayName,
		DistanceM:         sub.DistanceM,
		Distance3DM:       sub.Distance3DM,
		AzimuthDeg:        sub.AzimuthDeg,
		ElevationAngleDeg: sub.ElevationAngleDeg,
	}

	err = h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(rng).Exec(ctx); err != nil {
			return err
		}
		sub.Status = models.RangeStatusApproved
		sub.ReviewReason = req.Reason
		_, err := tx.NewUpdate().Model(sub).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
			return echo.NewHTTPError(http.StatusConflict, "a range with that name already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rng)
}

// enrichSubmission fills in display name, missing altitudes and the
// geometry columns. Lookup failures degrade to nil fields; the
// submission itself still goes through.
func (h *Handler) enrichSubmission(ctx context.Context, sub *models.RangeSubmission) {
	if name, err := h.geocoder.ReverseGeocode(ctx, sub.StartLat, sub.StartLon); err != nil {
		zap.L().Warn("reverse geocode failed",
			zap.Float64("lat", sub.StartLat), zap.Float64("lon", sub.StartLon), zap.Error(err))
	} else if name != "" {
		sub.DisplayName = &name
	}

	if sub.StartAltitudeM == nil {
		if alt, err := h.elevation.Lookup(ctx, sub.StartLat, sub.StartLon); err != nil {
			zap.L().Warn("elevation lookup failed",
				zap.Float64("lat", sub.StartLat), zap.Float64("lon", sub.StartLon), zap.Error(err))
		} else {
			sub.StartAltitudeM = &alt
		}
	}
	if sub.EndAltitudeM == nil {
		if alt, err := h.elevation.Lookup(ctx, sub.EndLat, sub.EndLon); err != nil {
			zap.L().Warn("elevation lookup failed",
				zap.Float64("lat", sub.EndLat), zap.Float64("lon", sub.EndLon), zap.Error(err))
		} else {
			sub.EndAltitudeM = &alt
		}
	}

	g := geo.Compute(
		geo.Point{Lat: sub.StartLat, Lon: sub.StartLon, AltitudeM: sub.StartAltitudeM},
		geo.Point{Lat: sub.EndLat, Lon: sub.EndLon, AltitudeM: sub.EndAltitudeM},
	)
	sub.DistanceM = &g.DistanceM
	sub.AzimuthDeg = &g.AzimuthDeg
	sub.ElevationAngleDeg = g.ElevationAngleDeg
	sub.Distance3DM = g.Distance3DM
}
