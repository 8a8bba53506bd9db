package messages

import (
	"log"
	"net/http"

	"foodmap/internal/api"
	"foodmap/internal/apperr"
	"foodmap/internal/database"
	"foodmap/internal/handler"
	"foodmap/internal/model"
	"foodmap/internal/store"

	"github.com/labstack/echo/v4"
)

var (
	createMessage     = store.CreateMessage
	listMessages      = store.ListMessages
	countMessages     = store.CountMessages
	markMessageRead   = store.MarkMessageRead
	deleteMessage     = store.DeleteMessage
	deleteAllMessages = store.DeleteAllMessages
)

// ContactHandler 訪客送出聯絡訊息，不需登入
// @Summary     Send contact message
// @Tags        contact
// @Accept      json
// @Produce     json
// @Param       body body     api.ContactRequest true "訊息內容"
// @Success     200  {object} model.ContactMessage
// @Failure     400  {object} api.ErrorResponse
// @Router      /contact [post]
func ContactHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.ContactRequest
		if err := c.Bind(&req); err != nil {
			return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
		}
		handler.TrimStrings(&req.Name, &req.Email, &req.Subject, &req.Message)
		if err := handler.Validate(c, &req); err != nil {
			return err
		}

		m, err := createMessage(c.Request().Context(), db, &model.ContactMessage{
			Name:    req.Name,
			Email:   req.Email,
			Subject: req.Subject,
			Message: req.Message,
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, m)
	}
}

// ListHandler 分頁列出訊息，未讀在前
// @Summary     List contact messages
// @Tags        admin
// @Produce     json
// @Param       page  query    int false "頁碼"
// @Param       limit query    int false "每頁筆數 1-50"
// @Success     200   {object} api.PageResponse[model.ContactMessage]
// @Failure     400   {object} api.ErrorResponse
// @Failure     401   {object} api.ErrorResponse
// @Failure     403   {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/messages [get]
func ListHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := handler.PageParams(c)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		list, err := listMessages(ctx, db, p)
		if err != nil {
			return err
		}
		total, err := countMessages(ctx, db)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, api.PageResponse[model.ContactMessage]{Items: list, Page: p.Number, Limit: p.Limit, Total: total})
	}
}

// MarkReadHandler 標記已讀；重複標記不會更新 read_at
// @Summary     Mark message read
// @Tags        admin
// @Produce     json
// @Param       id  path     int true "訊息 ID"
// @Success     200 {object} model.ContactMessage
// @Failure     404 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/messages/{id}/read [put]
func MarkReadHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		m, err := markMessageRead(c.Request().Context(), db, id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, m)
	}
}

// DeleteHandler 刪除單筆訊息
// @Summary     Delete message
// @Tags        admin
// @Param       id  path int true "訊息 ID"
// @Success     204 "No Content"
// @Failure     404 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/messages/{id} [delete]
func DeleteHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.IDParam(c, "id")
		if err != nil {
			return err
		}
		if err := deleteMessage(c.Request().Context(), db, id); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// ClearHandler 刪除全部訊息，需帶 X-Confirm-Delete: true
// @Summary     Delete all messages
// @Tags        admin
// @Produce     json
// @Param       X-Confirm-Delete header   string true "必須為 true"
// @Success     200              {object} api.DeleteCountResponse
// @Failure     400              {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/messages [delete]
func ClearHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !handler.Confirmed(c) {
			return apperr.Validation("confirmation required: set " + handler.HeaderConfirmDelete + ": true")
		}
		n, err := deleteAllMessages(c.Request().Context(), db)
		if err != nil {
			return err
		}
		log.Printf("bulk delete: removed %d contact messages", n)
		return c.JSON(http.StatusOK, api.DeleteCountResponse{Deleted: n})
	}
}
