// Package system 상태 API 엔드포인트(/health, /version, /stats) 핸들러입니다.
package system

import (
	"net/http"
	"time"

	"github.com/darkkaiser/watch-relay/internal/pkg/version"
	"github.com/darkkaiser/watch-relay/internal/service/relay"
	applog "github.com/darkkaiser/watch-relay/pkg/log"
	"github.com/labstack/echo/v4"
)

const component = "api.handler.system"

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
)

// StatusProvider 핸들러가 조회하는 릴레이 상태입니다. relay.Coordinator가 구현합니다.
type StatusProvider interface {
	State() relay.State
	QueueLen() int
	QueueCap() int
	Stats() relay.Snapshot
}

// HealthResponse GET /health 응답입니다.
type HealthResponse struct {
	Status        string `json:"status"`
	State         string `json:"state"`
	QueueDepth    int    `json:"queue_depth"`
	QueueCapacity int    `json:"queue_capacity"`
	Uptime        int64  `json:"uptime"`
}

// StatsResponse GET /stats 응답입니다.
type StatsResponse struct {
	State string         `json:"state"`
	Stats relay.Snapshot `json:"stats"`
}

type Handler struct {
	provider  StatusProvider
	buildInfo version.Info

	serverStartTime time.Time
}

func NewHandler(provider StatusProvider, buildInfo version.Info) *Handler {
	if provider == nil {
		panic("StatusProvider는 필수입니다")
	}

	return &Handler{
		provider:        provider,
		buildInfo:       buildInfo,
		serverStartTime: time.Now(),
	}
}

// HealthCheckHandler Running 상태일 때만 200, 그 밖의 상태(종료 진행 중 포함)는 503을 반환합니다.
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	h.logRequest(c, "/health")

	state := h.provider.State()

	resp := HealthResponse{
		Status:        HealthStatusHealthy,
		State:         state.String(),
		QueueDepth:    h.provider.QueueLen(),
		QueueCapacity: h.provider.QueueCap(),
		Uptime:        int64(time.Since(h.serverStartTime).Seconds()),
	}

	code := http.StatusOK
	if state != relay.StateRunning {
		resp.Status = HealthStatusUnhealthy
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, resp)
}

func (h *Handler) VersionHandler(c echo.Context) error {
	h.logRequest(c, "/version")

	return c.JSON(http.StatusOK, h.buildInfo)
}

// StatsHandler 누적 카운터를 반환합니다. 발신자별 쿨다운 기록은 노출하지 않습니다.
func (h *Handler) StatsHandler(c echo.Context) error {
	h.logRequest(c, "/stats")

	return c.JSON(http.StatusOK, StatsResponse{
		State: h.provider.State().String(),
		Stats: h.provider.Stats(),
	})
}

func (h *Handler) logRequest(c echo.Context, endpoint string) {
	applog.WithComponentAndFields(component, applog.Fields{
		"endpoint":  endpoint,
		"method":    c.Request().Method,
		"remote_ip": c.RealIP(),
	}).Debug("상태 API 요청")
}
