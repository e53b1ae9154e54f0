package api

import (
	"github.com/darkkaiser/watch-relay/internal/service/api/handler/system"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes 상태 API 엔드포인트를 등록합니다. 모두 읽기 전용이며 인증이 없습니다.
func RegisterRoutes(e *echo.Echo, h *system.Handler) {
	e.GET("/health", h.HealthCheckHandler)
	e.GET("/version", h.VersionHandler)
	e.GET("/stats", h.StatsHandler)
}
