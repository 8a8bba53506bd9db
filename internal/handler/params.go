package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"foodmap/internal/apperr"
	"foodmap/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// HeaderConfirmDelete must be "true" on every bulk delete request.
const HeaderConfirmDelete = "X-Confirm-Delete"

// IDParam 解析路徑上的正整數 ID
func IDParam(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, apperr.Validation(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// PageParams 讀取 page/limit；未帶時預設 1/10，超出範圍回傳 400
func PageParams(c echo.Context) (store.Page, error) {
	page, err := intQuery(c, "page", store.DefaultPage)
	if err != nil {
		return store.Page{}, err
	}
	limit, err := intQuery(c, "limit", store.DefaultLimit)
	if err != nil {
		return store.Page{}, err
	}
	return store.NewPage(page, limit)
}

func intQuery(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

// Bind binds and validates req. Failures are validation errors.
func Bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
	}
	return Validate(c, req)
}

// DecodeJSONField decodes a JSON document sent as a multipart form field.
func DecodeJSONField(c echo.Context, field string, req any) error {
	raw := c.FormValue(field)
	if raw == "" {
		return apperr.Validation(fmt.Sprintf("missing form field %q", field))
	}
	if err := json.Unmarshal([]byte(raw), req); err != nil {
		return apperr.Wrap(apperr.KindValidation, fmt.Sprintf("invalid JSON in form field %q", field), err)
	}
	return nil
}

// BindJSONField is DecodeJSONField followed by validation.
func BindJSONField(c echo.Context, field string, req any) error {
	if err := DecodeJSONField(c, field, req); err != nil {
		return err
	}
	return Validate(c, req)
}

func Validate(c echo.Context, req any) error {
	if err := c.Validate(req); err != nil {
		return apperr.Validation(validationMessage(err))
	}
	return nil
}

// validationMessage 將 validator 的錯誤整理成 "field: tag" 形式
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

// Confirmed reports whether the bulk delete confirmation header is set.
func Confirmed(c echo.Context) bool {
	return strings.EqualFold(strings.TrimSpace(c.Request().Header.Get(HeaderConfirmDelete)), "true")
}

// IsMultipart reports whether the request carries multipart/form-data.
func IsMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// TrimStrings trims surrounding whitespace from each pointed-to string.
func TrimStrings(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
