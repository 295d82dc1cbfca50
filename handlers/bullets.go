package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chronolog/chronolog-api/models"
)

type bulletRequest struct {
	Manufacturer     string   `json:"manufacturer"`
	Model            string   `json:"model"`
	WeightGr         float64  `json:"weightGr"`
	DiameterGrooveIn *float64 `json:"diameterGrooveIn"`
	BoreDiameterIn   *float64 `json:"boreDiameterIn"`
	BCG1             *float64 `json:"bcG1"`
	BCG7             *float64 `json:"bcG7"`
	SectionalDensity *float64 `json:"sectionalDensity"`
	MinReqTwistIn    *float64 `json:"minReqTwistIn"`
	PrefTwistIn      *float64 `json:"prefTwistIn"`
}

func (r *bulletRequest) validate() error {
	r.Manufacturer = strings.TrimSpace(r.Manufacturer)
	r.Model = strings.TrimSpace(r.Model)
	if r.Manufacturer == "" {
		return errors.New("manufacturer is required")
	}
	if r.Model == "" {
		return errors.New("model is required")
	}
	if r.WeightGr <= 0 {
		return errors.New("weightGr must be positive")
	}
	return nil
}

func (r *bulletRequest) apply(b *models.Bullet) {
	b.Manufacturer = r.Manufacturer
	b.Model = r.Model
	b.WeightGr = r.WeightGr
	b.DiameterGrooveIn = r.DiameterGrooveIn
	b.BoreDiameterIn = r.BoreDiameterIn
	b.BCG1 = r.BCG1
	b.BCG7 = r.BCG7
	b.SectionalDensity = r.SectionalDensity
	b.MinReqTwistIn = r.MinReqTwistIn
	b.PrefTwistIn = r.PrefTwistIn
}

// Bullets returns the bullet catalog, optionally filtered by
// manufacturer and/or weight.
func (h *Handler) Bullets(c echo.Context) error {
	var bullets []models.Bullet
	q := h.db.NewSelect().Model(&bullets).
		OrderExpr("b.manufacturer ASC, b.model ASC, b.weight_gr ASC")

	if m := c.QueryParam("manufacturer"); m != "" {
		q = q.Where("b.manufacturer ILIKE ?", fmt.Sprintf("%%%s%%", m))
	}
	if w := c.QueryParam("weightGr"); w != "" {
		q = q.Where("b.weight_gr = ?", w)
	}

	if err := q.Scan(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, bullets)
}

// GetBullet returns a single bullet by id.
func (h *Handler) GetBullet(c echo.Context) error {
	bullet := &models.Bullet{}
	err := h.db.NewSelect().Model(bullet).
		Where("b.id = ?", c.Param("id")).
		Scan(c.Request().Context())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "bullet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, bullet)
}

// CreateBullet inserts a catalog bullet. Admin only.
func (h *Handler) CreateBullet(c echo.Context) error {
	var req bulletRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	bullet := &models.Bullet{}
	req.apply(bullet)

	if _, err := h.db.NewInsert().Model(bullet).Exec(c.Request().Context()); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
			return echo.NewHTTPError(http.StatusConflict, "bullet already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, bullet)
}

// UpdateBullet replaces a catalog bullet's fields. Admin only.
func (h *Handler) UpdateBullet(c echo.Context) error {
	var req bulletRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	bullet := &models.Bullet{}
	req.apply(bullet)

	res, err := h.db.NewUpdate().Model(bullet).
		ExcludeColumn("id").
		Where("id = ?", c.Param("id")).
		Exec(c.Request().Context())
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
			return echo.NewHTTPError(http.StatusConflict, "bullet already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "bullet not found")
	}
	return c.NoContent(http.StatusOK)
}

// DeleteBullet removes a catalog bullet after checking nothing
// references it. Admin only.
func (h *Handler) DeleteBullet(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	dependents, err := h.db.NewSelect().
		Model((*models.Cartridge)(nil)).
		Where("bullet_id = ?", id).
		Count(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if dependents > 0 {
		return echo.NewHTTPError(http.StatusConflict,
			fmt.Sprintf("bullet is referenced by %d cartridge(s); reassign or delete those first", dependents))
	}

	res, err := h.db.NewDelete().
		Model((*models.Bullet)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "foreign key constraint") {
			return echo.NewHTTPError(http.StatusConflict, "bullet is still referenced by other data")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "bullet not found")
	}
	return c.NoContent(http.StatusOK)
}
