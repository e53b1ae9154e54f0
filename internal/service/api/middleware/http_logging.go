package middleware

import (
	"strconv"
	"time"

	applog "github.com/darkkaiser/watch-relay/pkg/log"
	"github.com/labstack/echo/v4"
)

// HTTPLogger 요청/응답을 구조화된 로그로 기록합니다.
//
// 상태 API는 모니터링 도구가 주기적으로 호출하므로 2xx, 3xx 응답은 Debug, 그 밖의 응답은 Info로 기록합니다.
func HTTPLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			// panic이 나도 기록되도록 defer로 남깁니다.
			defer func() {
				latency := time.Since(start)

				entry := applog.WithComponentAndFields("api.http", applog.Fields{
					"method":        req.Method,
					"uri":           req.RequestURI,
					"remote_ip":     c.RealIP(),
					"user_agent":    req.UserAgent(),
					"status":        res.Status,
					"bytes_out":     strconv.FormatInt(res.Size, 10),
					"latency":       strconv.FormatInt(latency.Microseconds(), 10),
					"latency_human": latency.String(),
					"request_id":    res.Header().Get(echo.HeaderXRequestID),
				})

				if res.Status < 400 {
					entry.Debug("HTTP 요청")
				} else {
					entry.Info("HTTP 요청")
				}
			}()

			if err := next(c); err != nil {
				c.Error(err)
			}
			return nil
		}
	}
}
