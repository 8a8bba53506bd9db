package users

import (
	"net/http"
	"strings"

	"foodmap/internal/api"
	"foodmap/internal/apperr"
	"foodmap/internal/database"
	"foodmap/internal/handler"
	"foodmap/internal/imaging"
	"foodmap/internal/middleware"
	"foodmap/internal/model"
	"foodmap/internal/service"
	"foodmap/internal/store"
	"foodmap/internal/worker"

	"github.com/labstack/echo/v4"
)

var (
	hashPassword       = service.HashPassword
	authenticateUser   = service.AuthenticateUser
	getUserByID        = store.GetUserByID
	updateUser         = store.UpdateUser
	updateUserPassword = store.UpdateUserPassword
	updateUserAvatar   = store.UpdateUserAvatar
	updateUserRole     = store.UpdateUserRole
	listUsers          = store.ListUsers
	countUsers         = store.CountUsers
)

func currentUserID(c echo.Context) (int, error) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return 0, apperr.Unauthorized("invalid or missing token")
	}
	return claims.UserID, nil
}

// GetMeHandler 取得當前使用者資料
// @Summary     Get current user
// @Tags        users
// @Produce     json
// @Success     200 {object} api.UserResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /users/me [get]
func GetMeHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := currentUserID(c)
		if err != nil {
			return err
		}
		user, err := getUserByID(c.Request().Context(), db, id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(user))
	}
}

// UpdateMeHandler 更新當前使用者資料
// @Summary     Update current user info
// @Description 更新當前使用者姓名和 Email (Email 轉小寫)
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       body body     api.UpdateMeRequest true "使用者資料"
// @Success     200  {object} api.UserResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /users/me [put]
func UpdateMeHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := currentUserID(c)
		if err != nil {
			return err
		}
		var req api.UpdateMeRequest
		if err := c.Bind(&req); err != nil {
			return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
		}
		handler.TrimStrings(&req.Name, &req.Email)
		req.Email = strings.ToLower(req.Email)
		if err := handler.Validate(c, &req); err != nil {
			return err
		}

		user, err := updateUser(c.Request().Context(), db, &model.User{ID: id, Name: req.Name, Email: req.Email})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(user))
	}
}

// UpdatePasswordHandler 修改當前使用者密碼
// @Summary     Change password
// @Tags        users
// @Accept      json
// @Param       body body api.UpdatePasswordRequest true "舊密碼與新密碼"
// @Success     204  "No Content"
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse "舊密碼錯誤"
// @Security    BearerAuth
// @Router      /users/me/password [patch]
func UpdatePasswordHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := currentUserID(c)
		if err != nil {
			return err
		}
		var req api.UpdatePasswordRequest
		if err := handler.Bind(c, &req); err != nil {
			return err
		}

		ctx := c.Request().Context()
		user, err := getUserByID(ctx, db, id)
		if err != nil {
			return err
		}
		if err := authenticateUser(ctx, *user, req.OldPassword); err != nil {
			return apperr.Unauthorized("old password is incorrect")
		}

		hash, err := hashPassword(req.NewPassword)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
		}
		if err := updateUserPassword(ctx, db, id, hash); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// UpdateAvatarHandler 上傳頭像；舊檔案交由背景 worker 清理
// @Summary     Upload avatar
// @Tags        users
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "JPEG/PNG/WebP"
// @Success     200  {object} api.UploadResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /users/me/avatar [put]
func UpdateAvatarHandler(db database.DB, images handler.ImageStore, pool worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := currentUserID(c)
		if err != nil {
			return err
		}
		saved, err := handler.SaveUpload(c, images, imaging.KindAvatar, "file")
		if err != nil {
			return err
		}

		url := images.Fresh(saved)
		prev, err := updateUserAvatar(c.Request().Context(), db, id, url)
		if err != nil {
			images.RemoveLater(pool, saved)
			return err
		}
		if prev != nil {
			images.RemoveLater(pool, *prev)
		}
		return c.JSON(http.StatusOK, api.UploadResponse{URL: url})
	}
}

// ListUsersHandler 管理員列出使用者
// @Summary     List users
// @Tags        admin
// @Produce     json
// @Param       page  query    int false "頁碼 (預設 1)"
// @Param       limit query    int false "每頁筆數 1-50 (預設 10)"
// @Success     200   {object} api.PageResponse[api.UserResponse]
// @Failure     400   {object} api.ErrorResponse
// @Failure     401   {object} api.ErrorResponse
// @Failure     403   {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/users [get]
func ListUsersHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := handler.PageParams(c)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		list, err := listUsers(ctx, db, p)
		if err != nil {
			return err
		}
		total, err := countUsers(ctx, db)
		if err != nil {
			return err
		}
		items := make([]api.UserResponse, 0, len(list))
		for i := range list {
			items = append(items, api.NewUserResponse(&list[i]))
		}
		return c.JSON(http.StatusOK, api.PageResponse[api.UserResponse]{Items: items, Page: p.Number, Limit: p.Limit, Total: total})
	}
}

// UpdateRoleHandler 變更使用者角色；管理員不能修改自己的角色
// @Summary     Change user role
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       id   path     int             true "使用者 ID"
// @Param       body body     api.RoleRequest true "角色"
// @Success     200  {object} api.UserResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     403  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/users/{id}/role [put]
func UpdateRoleHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		var req api.RoleRequest
		if err := handler.Bind(c, &req); err != nil {
			return err
		}
		if me, _ := currentUserID(c); me == id {
			return apperr.Validation("cannot change your own role")
		}
		user, err := updateUserRole(c.Request().Context(), db, id, req.Role)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(user))
	}
}
