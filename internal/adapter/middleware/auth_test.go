package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tier0-lending/pkg/id"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

const testCaller = "0x52908400098527886E0F7030069857D2E4169EE7"

func authEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	g := e.Group("", JWTAuth(testSecret))
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"caller": CallerFrom(c), "role": RoleFrom(c)})
	})
	return e
}

func getMe(e *echo.Echo, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth_Valid(t *testing.T) {
	tok, err := SignToken(testSecret, "0x52908400098527886e0f7030069857d2e4169ee7", RoleOperator, time.Hour)
	require.NoError(t, err)

	rec := getMe(authEcho(), "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"caller":"`+testCaller+`","role":"operator"}`, rec.Body.String())
}

func TestJWTAuth_Rejects(t *testing.T) {
	e := authEcho()

	expired, err := SignToken(testSecret, testCaller, "", -time.Minute)
	require.NoError(t, err)
	wrongKey, err := SignToken([]byte("other"), testCaller, "", time.Hour)
	require.NoError(t, err)
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: testCaller, Issuer: issuer},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", Issuer: issuer},
	}).SignedString(testSecret)
	require.NoError(t, err)

	cases := map[string]string{
		"missing":     "",
		"not bearer":  "Basic abc",
		"garbage":     "Bearer abc.def.ghi",
		"expired":     "Bearer " + expired,
		"wrong key":   "Bearer " + wrongKey,
		"none alg":    "Bearer " + noneAlg,
		"bad subject": "Bearer " + badSubject,
	}
	for name, authz := range cases {
		t.Run(name, func(t *testing.T) {
			rec := getMe(e, authz)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestParseToken_Expired(t *testing.T) {
	tok, err := SignToken(testSecret, testCaller, "", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(tok, testSecret)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestSignToken_RejectsBadSubject(t *testing.T) {
	_, err := SignToken(testSecret, "nobody", "", time.Hour)
	require.Error(t, err)
}

func TestSignToken_IssuesDistinctIDs(t *testing.T) {
	a, err := SignToken(testSecret, testCaller, "", time.Hour)
	require.NoError(t, err)
	b, err := SignToken(testSecret, testCaller, "", time.Hour)
	require.NoError(t, err)

	ca, err := ParseToken(a, testSecret)
	require.NoError(t, err)
	cb, err := ParseToken(b, testSecret)
	require.NoError(t, err)
	require.True(t, id.Valid(ca.ID), ca.ID)
	require.NotEqual(t, ca.ID, cb.ID)
	require.Equal(t, testCaller, ca.Subject)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.HideBanner = true
	e.POST("/mint", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, JWTAuth(testSecret), RequireRole(RoleOperator))

	cases := map[string]struct {
		role string
		want int
	}{
		"operator": {RoleOperator, http.StatusNoContent},
		"no role":  {"", http.StatusForbidden},
		"other":    {"auditor", http.StatusForbidden},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tok, err := SignToken(testSecret, testCaller, tc.role, time.Hour)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/mint", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			require.Equal(t, tc.want, rec.Code)
		})
	}
}
