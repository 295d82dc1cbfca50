package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	mw "github.com/chronolog/chronolog-api/middleware"
)

// newMockDB returns a bun.DB over a sqlmock driver. bun interpolates
// arguments into the SQL, so expectations match on the full statement.
func newMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// authedContext builds an echo context carrying the identity the JWT
// middleware would have stashed.
func authedContext(t *testing.T, method, target string, body io.Reader, uid uuid.UUID, email string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(mw.CtxUserID, uid)
	c.Set(mw.CtxEmail, email)
	c.Set(mw.CtxRoles, []string{})
	return c, rec
}
