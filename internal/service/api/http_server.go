package api

import (
	"time"

	appmiddleware "github.com/darkkaiser/watch-relay/internal/service/api/middleware"
	applog "github.com/darkkaiser/watch-relay/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	defaultReadTimeout       = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultWriteTimeout      = 10 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultRequestTimeout    = 5 * time.Second

	// defaultMaxBodySize 상태 API는 본문을 받지 않으므로 작게 제한합니다.
	defaultMaxBodySize = "4K"
)

// HTTPServerConfig HTTP 서버 생성 설정입니다.
type HTTPServerConfig struct {
	Debug bool

	// RequestTimeout 요청 하나의 최대 처리 시간입니다. 0이면 5초입니다.
	RequestTimeout time.Duration
}

// NewHTTPServer 미들웨어가 설정된 Echo 인스턴스를 생성합니다. 라우트는 RegisterRoutes로 따로 등록합니다.
//
// 미들웨어 순서:
//  1. PanicRecovery: 이후 미들웨어와 핸들러의 panic을 복구합니다.
//  2. RequestID: 로그에 request_id가 남도록 로깅보다 먼저 둡니다.
//  3. Server 헤더 제거
//  4. HTTPLogger
//  5. BodyLimit
//  6. Timeout
//  7. Secure
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = defaultReadTimeout
	e.Server.ReadHeaderTimeout = defaultReadHeaderTimeout
	e.Server.WriteTimeout = defaultWriteTimeout
	e.Server.IdleTimeout = defaultIdleTimeout

	e.Logger = appmiddleware.Logger{Logger: applog.StandardLogger()}
	e.HTTPErrorHandler = ErrorHandler

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}

	e.Use(appmiddleware.PanicRecovery())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderServer, "")
			return next(c)
		}
	})
	e.Use(appmiddleware.HTTPLogger())
	e.Use(middleware.BodyLimit(defaultMaxBodySize))
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: timeout,
	}))
	e.Use(middleware.Secure())

	return e
}
