package handlers

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A session id the caller does not own is a plain 404; the DOPE
// reference lookup must not run first, or foreign ids would leak as 409.
func TestDeleteChronoSession_NotOwned(t *testing.T) {
	db, mock := newMockDB(t)
	h := &Handler{db: db}

	mock.ExpectQuery(`FROM "chrono_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	c, _ := authedContext(t, http.MethodDelete, "/api/chrono/sessions/7", nil,
		uuid.New(), "shooter@example.com")
	c.SetParamNames("id")
	c.SetParamValues("7")

	err := h.DeleteChronoSession(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteChronoSession_ReferencedByDope(t *testing.T) {
	db, mock := newMockDB(t)
	h := &Handler{db: db}

	mock.ExpectQuery(`FROM "chrono_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`FROM "dope_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	c, _ := authedContext(t, http.MethodDelete, "/api/chrono/sessions/7", nil,
		uuid.New(), "shooter@example.com")
	c.SetParamNames("id")
	c.SetParamValues("7")

	err := h.DeleteChronoSession(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
