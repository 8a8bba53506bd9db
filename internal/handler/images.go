package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"foodmap/internal/apperr"
	"foodmap/internal/imaging"
	"foodmap/internal/worker"

	"github.com/labstack/echo/v4"
)

// ImageStore is the part of the image pipeline used by handlers.
// *imaging.Processor implements it.
type ImageStore interface {
	Save(ctx context.Context, kind imaging.Kind, mimeType string, r io.Reader) (string, error)
	Fetch(ctx context.Context, kind imaging.Kind, rawURL string) string
	Fresh(rawURL string) string
	RemoveLater(pool worker.Pool, urls ...string)
}

// SaveUpload 讀取 multipart 檔案欄位並交給影像處理；宣告的 Content-Type
// 必須在允許清單內
func SaveUpload(c echo.Context, images ImageStore, kind imaging.Kind, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", apperr.Validation("missing file field " + field)
		}
		return "", apperr.Wrap(apperr.KindValidation, "invalid multipart form", err)
	}
	f, err := fh.Open()
	if err != nil {
		return "", apperr.Dependency("failed to open upload", err)
	}
	defer f.Close()
	return images.Save(c.Request().Context(), kind, fh.Header.Get(echo.HeaderContentType), f)
}

// HasUpload reports whether field carries a file in a multipart request.
func HasUpload(c echo.Context, field string) bool {
	if !IsMultipart(c) {
		return false
	}
	_, err := c.FormFile(field)
	return err == nil
}

// ResolveImageURL 外部 http(s) 網址會被下載成本地檔案，失敗時退回預設圖；
// 其他值（本地 /uploads 路徑）原樣保留
func ResolveImageURL(ctx context.Context, images ImageStore, kind imaging.Kind, raw *string) *string {
	if raw == nil || *raw == "" {
		return nil
	}
	if !isRemote(*raw) {
		return raw
	}
	u := images.Fetch(ctx, kind, *raw)
	return &u
}

func isRemote(s string) bool {
	return len(s) > 7 && (s[:7] == "http://" || (len(s) > 8 && s[:8] == "https://"))
}
