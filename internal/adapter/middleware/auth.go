package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"tier0-lending/pkg/address"
	"tier0-lending/pkg/id"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	issuer = "tier0-lending"

	callerKey = "caller"
	roleKey   = "role"

	RoleOperator = "operator"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims: Subject is the caller's address.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func SignToken(secret []byte, subject, role string, ttl time.Duration) (string, error) {
	sub, err := address.Normalize(subject)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.NewID32(),
			Subject:   sub,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func ParseToken(raw string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !address.Valid(claims.Subject) {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// JWTAuth requires "Authorization: Bearer <token>" and stores the caller's
// normalized address on the context.
func JWTAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(h, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			claims, err := ParseToken(strings.TrimSpace(raw), secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
			}
			caller, _ := address.Normalize(claims.Subject)
			c.Set(callerKey, caller)
			c.Set(roleKey, claims.Role)
			return next(c)
		}
	}
}

// CallerFrom returns the authenticated caller, "" on unauthenticated routes.
func CallerFrom(c echo.Context) string {
	s, _ := c.Get(callerKey).(string)
	return s
}

func RoleFrom(c echo.Context) string {
	s, _ := c.Get(roleKey).(string)
	return s
}

// RequireRole runs after JWTAuth and refuses tokens without the given role.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if RoleFrom(c) != role {
				return c.JSON(http.StatusForbidden, map[string]string{"error": role + " role required"})
			}
			return next(c)
		}
	}
}
