package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-signing-key")

func signedToken(t *testing.T, claims *Claims, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func testClaims(roles ...string) *Claims {
	return &Claims{
		UserID: uuid.New().String(),
		Email:  "shooter@example.com",
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func runJWT(token string) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWT(testKey)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, h(c)
}

func TestJWT_ValidToken(t *testing.T) {
	claims := testClaims("admin")
	c, err := runJWT(signedToken(t, claims, testKey))
	require.NoError(t, err)

	assert.Equal(t, claims.Email, Email(c))
	assert.Equal(t, claims.UserID, UserID(c).String())
	assert.True(t, IsAdmin(c))
}

func TestJWT_MissingHeader(t *testing.T) {
	_, err := runJWT("")
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestJWT_WrongKey(t *testing.T) {
	_, err := runJWT(signedToken(t, testClaims(), []byte("other-key")))
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestJWT_Expired(t *testing.T) {
	claims := testClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	_, err := runJWT(signedToken(t, claims, testKey))
	require.Error(t, err)
}

func TestJWT_BadSubject(t *testing.T) {
	claims := testClaims()
	claims.UserID = "not-a-uuid"
	_, err := runJWT(signedToken(t, claims, testKey))
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()

	run := func(roles []string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.Set(CtxRoles, roles)
		return RequireAdmin()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
	}

	require.NoError(t, run([]string{"admin"}))

	err := run([]string{"user"})
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)

	require.Error(t, run(nil))
}
