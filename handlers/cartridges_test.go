package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A dangling bulletID on update is a clean 400, same as on create,
// instead of surfacing the FK violation as a 500.
func TestUpdateCartridge_UnknownBullet(t *testing.T) {
	db, mock := newMockDB(t)
	h := &Handler{db: db}
	uid := uuid.New()

	mock.ExpectQuery(`FROM "cartridges"`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "owner_id", "make", "model", "cartridge_type", "bullet_id"}).
			AddRow(7, uid.String(), "Hornady", "Match", "6.5 Creedmoor", 3))
	mock.ExpectQuery(`FROM "bullets"`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	body := strings.NewReader(`{"make":"Hornady","model":"Match","cartridgeType":"6.5 Creedmoor","bulletID":99}`)
	c, _ := authedContext(t, http.MethodPut, "/api/cartridges/7", body,
		uid, "shooter@example.com")
	c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c.SetParamNames("id")
	c.SetParamValues("7")

	err := h.UpdateCartridge(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Contains(t, he.Message, "bulletID")
	require.NoError(t, mock.ExpectationsWereMet())
}
