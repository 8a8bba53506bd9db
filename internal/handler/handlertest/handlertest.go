// Package handlertest holds helpers shared by the handler tests.
package handlertest

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"foodmap/internal/apperr"
	"foodmap/internal/handler"
	"foodmap/internal/middleware"
	"foodmap/internal/model"
	"foodmap/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// NewEcho returns an echo instance wired like the service: real validator and
// the JSON error handler with details enabled.
func NewEcho() *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = apperr.Handler(true)
	return e
}

type Option func(c echo.Context)

// Params sets path parameters as name/value pairs.
func Params(pairs ...string) Option {
	return func(c echo.Context) {
		var names, values []string
		for i := 0; i+1 < len(pairs); i += 2 {
			names = append(names, pairs[i])
			values = append(values, pairs[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
}

// As stores claims the way middleware.Guard does after a successful check.
func As(userID int, role model.Role) Option {
	return func(c echo.Context) {
		c.Set(middleware.ContextUserKey, &service.CustomClaims{UserID: userID, Role: role})
	}
}

// Do runs h and routes a returned error through the echo error handler.
func Do(e *echo.Echo, h echo.HandlerFunc, req *http.Request, opts ...Option) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for _, o := range opts {
		o(c)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func JSON(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// File describes one multipart file part.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

func Multipart(t *testing.T, method, target string, fields map[string]string, files ...File) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.Field+`"; filename="`+f.Name+`"`)
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

// JPEG encodes a blank w×h JPEG.
func JPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

// HugePNG encodes a blank grey w×h PNG row by row. The file stays small
// because every row compresses to almost nothing, while a full decode would
// need w*h bytes.
func HugePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var idat bytes.Buffer
	zw, err := zlib.NewWriterLevel(&idat, zlib.BestCompression)
	require.NoError(t, err)
	row := make([]byte, w+1) // filter type 0 followed by w grey pixels
	for range h {
		_, err := zw.Write(row)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(h))
	ihdr[8] = 8

	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")
	for _, c := range []struct {
		typ  string
		data []byte
	}{{"IHDR", ihdr}, {"IDAT", idat.Bytes()}, {"IEND", nil}} {
		require.NoError(t, binary.Write(&out, binary.BigEndian, uint32(len(c.data))))
		chunk := append([]byte(c.typ), c.data...)
		out.Write(chunk)
		require.NoError(t, binary.Write(&out, binary.BigEndian, crc32.ChecksumIEEE(chunk)))
	}
	return out.Bytes()
}

// Decode unmarshals a recorder body into v.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// ErrorBody returns the "error" field of a JSON error response.
func ErrorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	Decode(t, rec, &body)
	return body.Error
}
