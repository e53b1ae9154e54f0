package api

import (
	"net/http"

	applog "github.com/darkkaiser/watch-relay/pkg/log"
	"github.com/labstack/echo/v4"
)

// ErrorResponse 상태 API의 공통 에러 응답입니다.
type ErrorResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

// ErrorHandler 모든 에러를 ErrorResponse JSON으로 응답합니다.
// 5xx는 Error, 4xx는 Warn 레벨로 기록합니다.
func ErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "내부 서버 오류가 발생했습니다"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	if code == http.StatusNotFound {
		message = "요청한 경로를 찾을 수 없습니다"
	}

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}

	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields("api.error_handler", fields).Error("HTTP 요청 처리 중 서버 오류 발생")
	} else if code >= http.StatusBadRequest {
		applog.WithComponentAndFields("api.error_handler", fields).Warn("잘못된 HTTP 요청")
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	_ = c.JSON(code, ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}
