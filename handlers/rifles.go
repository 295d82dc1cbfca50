package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	mw "github.com/chronolog/chronolog-api/middleware"
	"github.com/chronolog/chronolog-api/models"
)

type rifleRequest struct {
	Name                string   `json:"name"`
	BarrelTwistInPerRev *float64 `json:"barrelTwistInPerRev"`
	BarrelLengthIn      *float64 `json:"barrelLengthIn"`
	ScopeOffsetIn       *float64 `json:"scopeOffsetIn"`
	ZeroRangeM          *float64 `json:"zeroRangeM"`
}

func (r *rifleRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// Rifles returns the caller's rifles.
func (h *Handler) Rifles(c echo.Context) error {
	var rifles []models.Rifle
	err := h.db.NewSelect().Model(&rifles).
		Where("rf.user_id = ?", mw.UserID(c)).
		OrderExpr("rf.name ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rifles)
}

// CreateRifle inserts a rifle owned by the caller.
func (h *Handler) CreateRifle(c echo.Context) error {
	var req rifleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rifle := &models.Rifle{
		UserID:              mw.UserID(c),
		Name:                req.Name,
		BarrelTwistInPerRev: req.BarrelTwistInPerRev,
		BarrelLengthIn:      req.BarrelLengthIn,
		ScopeOffsetIn:       req.ScopeOffsetIn,
		ZeroRangeM:          req.ZeroRangeM,
	}

	if _, err := h.db.NewInsert().Model(rifle).Exec(c.Request().Context()); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
			return echo.NewHTTPError(http.StatusConflict, "you already have a rifle with that name")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, rifle)
}

// UpdateRifle updates a rifle, scoped to the caller.
func (h *Handler) UpdateRifle(c echo.Context) error {
	var req rifleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.db.NewUpdate().
		Model((*models.Rifle)(nil)).
		Set("name = ?", req.Name).
		Set("barrel_twist_in_per_rev = ?", req.BarrelTwistInPerRev).
		Set("barrel_length_in = ?", req.BarrelLengthIn).
		Set("scope_offset_in = ?", req.ScopeOffsetIn).
		Set("zero_range_m = ?", req.ZeroRangeM).
		Where("id = ?", c.Param("id")).
		Where("user_id = ?", mw.UserID(c)).
		Exec(c.Request().Context())
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
			return echo.NewHTTPError(http.StatusConflict, "you already have a rifle with that name")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "rifle not found")
	}
	return c.NoContent(http.StatusOK)
}

// DeleteRifle removes a rifle, scoped to the caller.
func (h *Handler) DeleteRifle(c echo.Context) error {
	res, err := h.db.NewDelete().
		Model((*models.Rifle)(nil)).
		Where("id = ?", c.Param("id")).
		Where("user_id = ?", mw.UserID(c)).
		Exec(c.Request().Context())
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "foreign key constraint") {
			return echo.NewHTTPError(http.StatusConflict, "rifle is referenced by DOPE sessions")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "rifle not found")
	}
	return c.NoContent(http.StatusOK)
}
