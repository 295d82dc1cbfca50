package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	mw "github.com/chronolog/chronolog-api/middleware"
	"github.com/chronolog/chronolog-api/models"
)

// cartridgeRow is a flat scan target for the cartridge + bullet join.
type cartridgeRow struct {
	ID             int        `bun:"id" json:"id"`
	OwnerID        *uuid.UUID `bun:"owner_id" json:"ownerID,omitempty"`
	Make           string     `bun:"make" json:"make"`
	Model          string     `bun:"model" json:"model"`
	CartridgeType  string     `bun:"cartridge_type" json:"cartridgeType"`
	BulletID       int        `bun:"bullet_id" json:"bulletID"`
	BulletMake     string     `bun:"bullet_make" json:"bulletMake"`
	BulletModel    string     `bun:"bullet_model" json:"bulletModel"`
	BulletWeightGr float64    `bun:"bullet_weight_gr" json:"bulletWeightGr"`
	BCG1           *float64   `bun:"bc_g1" json:"bcG1,omitempty"`
	BCG7           *float64   `bun:"bc_g7" json:"bcG7,omitempty"`
}

type cartridgeRequest struct {
	Make          string  `json:"make"`
	Model         string  `json:"model"`
	CartridgeType string  `json:"cartridgeType"`
	BulletID      int     `json:"bulletID"`
	DataSourceURL *string `json:"dataSourceURL"`
	// Global creates an admin-owned row visible to everyone.
	Global bool `json:"global"`
}

func (r *cartridgeRequest) validate() error {
	r.Make = strings.TrimSpace(r.Make)
	r.Model = strings.TrimSpace(r.Model)
	r.CartridgeType = strings.TrimSpace(r.CartridgeType)
	if r.Make == "" {
		return errors.New("make is required")
	}
	if r.Model == "" {
		return errors.New("model is required")
	}
	if r.CartridgeType == "" {
		return errors.New("cartridgeType is required")
	}
	if r.BulletID <= 0 {
		return errors.New("bulletID is required")
	}
	return nil
}

const cartridgeJoinSQL = `
SELECT
	ca.id, ca.owner_id, ca.make, ca.model, ca.cartridge_type, ca.bullet_id,
	b.manufacturer AS bullet_make, b.model AS bullet_model,
	b.weight_gr AS bullet_weight_gr, b.bc_g1, b.bc_g7
FROM cartridges ca
INNER JOIN bullets b ON b.id = ca.bullet_id
WHERE (ca.owner_id IS NULL OR ca.owner_id = ?)`

// Cartridges returns global cartridges plus the caller's own, joined
// with their bullet for display.
func (h *Handler) Cartridges(c echo.Context) error {
	sqlText := cartridgeJoinSQL
	args := []interface{}{mw.UserID(c)}

	if ct := c.QueryParam("cartridgeType"); ct != "" {
		sqlText += " AND ca.cartridge_type = ?"
		args = append(args, ct)
	}
	if mk := c.QueryParam("make"); mk != "" {
		sqlText += " AND ca.make ILIKE ?"
		args = append(args, "%"+mk+"%")
	}
	sqlText += " ORDER BY ca.make, ca.model"

	var rows []cartridgeRow
	if err := h.db.NewRaw(sqlText, args...).Scan(c.Request().Context(), &rows); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

// CreateCartridge inserts a cartridge owned by the caller, or a global
// one when an admin asks for it.
func (h *Handler) CreateCartridge(c echo.Context) error {
	var req cartridgeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Global && !mw.IsAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, "only admins can create global cartridges")
	}

	ctx := c.Request().Context()

	exists, err := h.db.NewSelect().Model((*models.Bullet)(nil)).
		Where("id = ?", req.BulletID).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !exists {
		return echo.NewHTTPError(http.StatusBadRequest, "bulletID does not reference a known bullet")
	}

	cartridge := &models.Cartridge{
		Make:          req.Make,
		Model:         req.Model,
		CartridgeType: req.CartridgeType,
		BulletID:      req.BulletID,
		DataSourceURL: req.DataSourceURL,
	}
	if !req.Global {
		uid := mw.UserID(c)
		cartridge.OwnerID = &uid
	}

	if _, err := h.db.NewInsert().Model(cartridge).Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, cartridge)
}

// UpdateCartridge updates a cartridge the caller may edit: their own
// rows, or global rows for admins.
func (h *Handler) UpdateCartridge(c echo.Context) error {
	var req cartridgeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	cartridge := &models.Cartridge{}
	err := h.db.NewSelect().Model(cartridge).
		Where("ca.id = ?", c.Param("id")).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "cartridge not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !canEditCartridge(c, cartridge) {
		return echo.NewHTTPError(http.StatusForbidden, "not your cartridge")
	}

	exists, err := h.db.NewSelect().Model((*models.Bullet)(nil)).
		Where("id = ?", req.BulletID).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !exists {
		return echo.NewHTTPError(http.StatusBadRequest, "bulletID does not reference a known bullet")
	}

	cartridge.Make = req.Make
	cartridge.Model = req.Model
	cartridge.CartridgeType = req.CartridgeType
	cartridge.BulletID = req.BulletID
	cartridge.DataSourceURL = req.DataSourceURL

	if _, err := h.db.NewUpdate().Model(cartridge).
		WherePK().
		Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cartridge)
}

// DeleteCartridge removes a cartridge under the same ownership rules as
// UpdateCartridge.
func (h *Handler) DeleteCartridge(c echo.Context) error {
	ctx := c.Request().Context()
	cartridge := &models.Cartridge{}
	err := h.db.NewSelect().Model(cartridge).
		Where("ca.id = ?", c.Param("id")).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "cartridge not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !canEditCartridge(c, cartridge) {
		return echo.NewHTTPError(http.StatusForbidden, "not your cartridge")
	}

	if _, err := h.db.NewDelete().Model(cartridge).WherePK().Exec(ctx); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "foreign key constraint") {
			return echo.NewHTTPError(http.StatusConflict, "cartridge is referenced by DOPE sessions")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func canEditCartridge(c echo.Context, cartridge *models.Cartridge) bool {
	if cartridge.OwnerID == nil {
		return mw.IsAdmin(c)
	}
	return *cartridge.OwnerID == mw.UserID(c)
}
