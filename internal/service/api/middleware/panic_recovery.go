package middleware

import (
	"fmt"
	"runtime"

	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
	applog "github.com/darkkaiser/watch-relay/pkg/log"
	"github.com/labstack/echo/v4"
)

// stackBufferSize panic 스택을 담는 버퍼 크기(4KB)입니다.
const stackBufferSize = 4 << 10

// PanicRecovery 핸들러 panic을 복구해 스택과 함께 기록하고, 에러 핸들러로 500 응답을 보냅니다.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				err, ok := r.(error)
				if !ok {
					err = apperrors.New(apperrors.Internal, fmt.Sprintf("%v", r))
				}

				stack := make([]byte, stackBufferSize)
				length := runtime.Stack(stack, false)

				req := c.Request()
				fields := applog.Fields{
					"method": req.Method,
					"path":   req.URL.Path,
					"error":  err,
					"stack":  string(stack[:length]),
				}
				if requestID := c.Response().Header().Get(echo.HeaderXRequestID); requestID != "" {
					fields["request_id"] = requestID
				}

				applog.WithComponentAndFields("api.middleware", fields).Error("HTTP 핸들러 panic 복구")

				c.Error(err)
			}()

			return next(c)
		}
	}
}
