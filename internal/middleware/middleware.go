package middleware

import (
	"strings"

	"foodmap/internal/apperr"
	"foodmap/internal/service"

	"github.com/labstack/echo/v4"
)

const ContextUserKey = "user"

// Verifier 驗證存取令牌；正式環境為 *service.Tokens，測試可注入假的實作
type Verifier interface {
	VerifyAccessToken(token string) (*service.CustomClaims, error)
}

// Guard 是唯一的授權判斷點。它不讀取任何環境設定，所有受保護的端點
// 在每個環境都必須帶合法令牌
type Guard struct {
	Verifier Verifier
}

func NewGuard(v Verifier) *Guard { return &Guard{Verifier: v} }

func (g *Guard) extractClaims(c echo.Context) (*service.CustomClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, apperr.Unauthorized("missing token")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, apperr.Unauthorized("invalid authorization header format")
	}
	if g == nil || g.Verifier == nil {
		return nil, apperr.Unauthorized("authentication unavailable")
	}
	claims, err := g.Verifier.VerifyAccessToken(strings.TrimSpace(parts[1]))
	if err != nil || claims == nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid token", err)
	}
	return claims, nil
}

func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := g.extractClaims(c)
		if err != nil {
			return err
		}
		c.Set(ContextUserKey, claims)
		return next(c)
	}
}

func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.RequireAuth(func(c echo.Context) error {
		if !ClaimsFrom(c).IsAdmin() {
			return apperr.Forbidden("admin privileges required")
		}
		return next(c)
	})
}

// ClaimsFrom 取出 RequireAuth 放入的 claims；未經過 guard 時回傳 nil
func ClaimsFrom(c echo.Context) *service.CustomClaims {
	claims, _ := c.Get(ContextUserKey).(*service.CustomClaims)
	return claims
}
