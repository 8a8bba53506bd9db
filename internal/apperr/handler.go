package apperr

import (
	"errors"
	"log"
	"net/http"

	"foodmap/internal/api"

	"github.com/labstack/echo/v4"
)

// Status maps an error kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Handler 回傳 echo 的全域錯誤處理器；debug 為 true 時 5xx 會附上 details
func Handler(debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := api.ErrorResponse{Error: "internal server error"}

		var he *echo.HTTPError
		var ae *Error
		switch {
		case errors.As(err, &ae):
			status = Status(ae.Kind)
			body.Error = ae.Message
			if status >= http.StatusInternalServerError {
				log.Printf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
				if debug && ae.Err != nil {
					body.Details = ae.Err.Error()
				}
			}
		case errors.As(err, &he):
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				body.Error = msg
			} else {
				body.Error = http.StatusText(he.Code)
			}
			if debug && he.Internal != nil {
				body.Details = he.Internal.Error()
			}
		default:
			log.Printf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
			if debug {
				body.Details = err.Error()
			}
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Printf("寫入錯誤回應失敗: %v", werr)
		}
	}
}
