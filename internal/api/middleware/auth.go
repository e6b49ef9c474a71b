package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/cargo-tracking/pkg/token"
)

// Context keys set for authenticated requests.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyRole     = "role"
)

// accessTokenParam carries the token for browser websocket clients, which
// cannot set request headers.
const accessTokenParam = "access_token"

var (
	errMissingToken = errors.New("missing token")
	errMalformed    = errors.New("invalid authorization header")
)

// Auth rejects requests without a valid bearer token.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return authenticate(jwtSecret, false)
}

// OptionalAuth verifies a token when one is sent, as a bearer header or the
// access_token query parameter, and lets anonymous requests through.
func OptionalAuth(jwtSecret string) echo.MiddlewareFunc {
	return authenticate(jwtSecret, true)
}

func authenticate(jwtSecret string, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if errors.Is(err, errMissingToken) && optional {
				raw = c.QueryParam(accessTokenParam)
				if raw == "" {
					return next(c)
				}
				err = nil
			}
			switch {
			case errors.Is(err, errMissingToken):
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			case err != nil:
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			id, err := token.Parse(jwtSecret, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(KeyUserID, id.UserID)
			c.Set(KeyUsername, id.Username)
			c.Set(KeyRole, id.Role)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", errMissingToken
	}
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
		return "", errMalformed
	}
	return raw, nil
}
