package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun/dialect/pgdialect"

	mw "github.com/chronolog/chronolog-api/middleware"
	"github.com/chronolog/chronolog-api/models"
)

// Users returns all application accounts. Admin only.
func (h *Handler) Users(c echo.Context) error {
	var users []models.User
	err := h.db.NewSelect().Model(&users).
		OrderExpr("u.email ASC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}

type rolesRequest struct {
	Roles []string `json:"roles"`
}

// SetUserRoles replaces a user's roles array. Admin only.
func (h *Handler) SetUserRoles(c echo.Context) error {
	var req rolesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	roles := make([]string, 0, len(req.Roles))
	for _, r := range req.Roles {
		if t := strings.ToLower(strings.TrimSpace(r)); t != "" {
			roles = append(roles, t)
		}
	}

	res, err := h.db.NewUpdate().Model((*models.User)(nil)).
		Set("roles = ?", pgdialect.Array(roles)).
		Where("id = ?", c.Param("id")).
		Exec(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.NoContent(http.StatusOK)
}

// userDependency is one table blocking a user delete.
type userDependency struct {
	table  string
	column string
	model  interface{}
}

// DeleteUser removes an account after checking nothing the user owns
// would be orphaned. Admin only; admins cannot delete themselves.
func (h *Handler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if id == mw.UserID(c).String() {
		return echo.NewHTTPError(http.StatusConflict, "you cannot delete your own account")
	}

	deps := []userDependency{
		{"cartridges", "owner_id", (*models.Cartridge)(nil)},
		{"rifles", "user_id", (*models.Rifle)(nil)},
		{"ranges_submissions", "user_id", (*models.RangeSubmission)(nil)},
		{"chrono_sessions", "user_id", (*models.ChronoSession)(nil)},
		{"weather_source", "user_id", (*models.WeatherSource)(nil)},
		{"dope_sessions", "user_id", (*models.DopeSession)(nil)},
	}

	var blocking []string
	for _, d := range deps {
		n, err := h.db.NewSelect().Model(d.model).
			Where(fmt.Sprintf("%s = ?", d.column), id).
			Count(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if n > 0 {
			blocking = append(blocking, fmt.Sprintf("%s (%d)", d.table, n))
		}
	}
	if len(blocking) > 0 {
		return echo.NewHTTPError(http.StatusConflict,
			"user still owns data: "+strings.Join(blocking, ", "))
	}

	res, err := h.db.NewDelete().Model((*models.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.NoContent(http.StatusOK)
}
