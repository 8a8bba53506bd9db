// File: internal/handler/auth/auth.go
package auth

import (
	"errors"
	"net/http"
	"strings"

	"foodmap/internal/api"
	"foodmap/internal/apperr"
	"foodmap/internal/database"
	"foodmap/internal/handler"
	"foodmap/internal/kv"
	"foodmap/internal/model"
	"foodmap/internal/service"
	"foodmap/internal/store"

	"github.com/labstack/echo/v4"
)

var (
	hashPassword     = service.HashPassword
	authenticateUser = service.AuthenticateUser
	createUser       = store.CreateUser
	getUserByEmail   = store.GetUserByEmail
	getUserByID      = store.GetUserByID
)

var errInvalidCredentials = apperr.Unauthorized("invalid email or password")

func issueTokens(c echo.Context, status int, kvs kv.Store, tokens *service.Tokens, user *model.User) error {
	access, exp, err := tokens.IssueAccessToken(*user)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to issue token", err)
	}
	refresh, err := tokens.IssueRefreshToken(c.Request().Context(), kvs, *user)
	if err != nil {
		return apperr.Dependency("failed to issue refresh token", err)
	}
	return c.JSON(status, api.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    exp,
		User:         api.NewUserResponse(user),
	})
}

// RegisterHandler 註冊一般使用者並直接登入
// @Summary     Register
// @Description 建立一般使用者帳號 (Email 轉小寫)，成功後回傳令牌
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.RegisterRequest true "註冊資料"
// @Success     201  {object} api.TokenResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse "Email 已被註冊"
// @Failure     500  {object} api.ErrorResponse
// @Router      /auth/register [post]
func RegisterHandler(db database.DB, kvs kv.Store, tokens *service.Tokens) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.RegisterRequest
		if err := c.Bind(&req); err != nil {
			return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
		}
		handler.TrimStrings(&req.Name, &req.Email)
		req.Email = strings.ToLower(req.Email)
		if err := handler.Validate(c, &req); err != nil {
			return err
		}

		hash, err := hashPassword(req.Password)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
		}

		user, err := createUser(c.Request().Context(), db, &model.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         model.RoleUser,
		})
		if err != nil {
			return err
		}
		return issueTokens(c, http.StatusCreated, kvs, tokens, user)
	}
}

// LoginHandler 使用 Email/Password 驗證並回傳 JWT 與 refresh token
// @Summary     登入使用者
// @Description 使用 Email 與 Password 進行驗證，回傳存取令牌與到期時間
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.LoginRequest true "登入資料"
// @Success     200  {object} api.TokenResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /auth/login [post]
func LoginHandler(db database.DB, kvs kv.Store, tokens *service.Tokens) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.LoginRequest
		if err := handler.Bind(c, &req); err != nil {
			return err
		}

		// 撈使用者資料
		user, err := getUserByEmail(c.Request().Context(), db, strings.TrimSpace(req.Email))
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return errInvalidCredentials
			}
			return err
		}
		// 驗證密碼
		if err := authenticateUser(c.Request().Context(), *user, req.Password); err != nil {
			return errInvalidCredentials
		}
		return issueTokens(c, http.StatusOK, kvs, tokens, user)
	}
}

// RefreshHandler 以 refresh token 換發新的令牌組；舊 token 在讀取時即被消耗，
// 併發的重複換發只有一個會成功
// @Summary     Refresh tokens
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.RefreshRequest true "refresh token"
// @Success     200  {object} api.TokenResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Router      /auth/refresh [post]
func RefreshHandler(db database.DB, kvs kv.Store, tokens *service.Tokens) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.RefreshRequest
		if err := handler.Bind(c, &req); err != nil {
			return err
		}
		ctx := c.Request().Context()

		data, err := tokens.ConsumeRefreshToken(ctx, kvs, req.RefreshToken)
		if err != nil {
			if errors.Is(err, service.ErrInvalidRefreshToken) {
				return apperr.Unauthorized("invalid refresh token")
			}
			return apperr.Dependency("failed to read session", err)
		}

		// 角色以資料庫為準，權限被移除後換發的令牌也不再帶 admin
		user, err := getUserByID(ctx, db, data.UserID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return apperr.Unauthorized("invalid refresh token")
			}
			return err
		}
		return issueTokens(c, http.StatusOK, kvs, tokens, user)
	}
}

// LogoutHandler 撤銷 refresh token
// @Summary     Logout
// @Tags        auth
// @Accept      json
// @Param       body body api.RefreshRequest true "refresh token"
// @Success     204  "No Content"
// @Failure     400  {object} api.ErrorResponse
// @Router      /auth/logout [post]
func LogoutHandler(kvs kv.Store, tokens *service.Tokens) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.RefreshRequest
		if err := handler.Bind(c, &req); err != nil {
			return err
		}
		if err := tokens.RevokeRefreshToken(c.Request().Context(), kvs, req.RefreshToken); err != nil {
			return apperr.Dependency("failed to revoke session", err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
