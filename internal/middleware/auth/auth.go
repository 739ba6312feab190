package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/tokens"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// AccessParser validates an access token and returns its claims.
type AccessParser interface {
	ParseAccess(tokenStr string) (*tokens.AccessClaims, error)
}

type Gate struct {
	Tokens AccessParser
}

func NewGate(p AccessParser) *Gate {
	return &Gate{Tokens: p}
}

// RequireAuth accepts `Authorization: Bearer <access token>` and stores the
// caller's id and role on the context. Any failure is a 401.
func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context())

		raw, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := g.Tokens.ParseAccess(raw)
		if err != nil {
			l.Warn("auth_rejected", "status", http.StatusUnauthorized, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		userID, err := claims.UserID()
		if err != nil {
			l.Warn("auth_rejected", "status", http.StatusUnauthorized, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, claims.Role)

		req := c.Request()
		c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l.With("user_id", userID))))
		return next(c)
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if Role(c) != string(models.RoleAdmin) {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ctxUserID).(uint)
	return id, ok && id != 0
}

func Role(c echo.Context) string {
	role, _ := c.Get(ctxRole).(string)
	return role
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
