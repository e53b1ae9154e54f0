// Package api 릴레이의 상태를 조회하는 읽기 전용 HTTP API를 제공합니다.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/darkkaiser/watch-relay/internal/config"
	"github.com/darkkaiser/watch-relay/internal/pkg/version"
	"github.com/darkkaiser/watch-relay/internal/service/api/handler/system"
	applog "github.com/darkkaiser/watch-relay/pkg/log"
	"github.com/labstack/echo/v4"
)

// shutdownTimeout Graceful Shutdown 최대 대기 시간입니다.
const shutdownTimeout = 5 * time.Second

// Service 상태 API 서버의 생명주기를 관리합니다.
//
// Start로 시작하고 ctx 취소로 종료합니다. 종료가 끝나면 WaitGroup의 Done을 호출합니다.
// 서버가 포트 바인딩 실패 등으로 먼저 종료되어도 릴레이 동작에는 영향을 주지 않습니다.
type Service struct {
	statusConfig config.StatusConfig
	debug        bool

	provider  system.StatusProvider
	buildInfo version.Info

	running   bool
	runningMu sync.Mutex
}

func NewService(statusConfig config.StatusConfig, debug bool, provider system.StatusProvider, buildInfo version.Info) *Service {
	return &Service{
		statusConfig: statusConfig,
		debug:        debug,

		provider:  provider,
		buildInfo: buildInfo,
	}
}

// Start 서버를 별도 고루틴에서 시작하고 즉시 반환합니다.
//
// 에러를 반환하는 경우에도 serviceStopWG.Done은 호출됩니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.provider == nil {
		defer serviceStopWG.Done()
		return ErrStatusProviderRequired
	}
	if s.statusConfig.ListenAddress == "" {
		defer serviceStopWG.Done()
		return ErrListenAddressRequired
	}

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("상태 API 서비스가 이미 실행 중입니다")
		return nil
	}

	s.running = true

	e := s.setupServer()

	go s.runServiceLoop(serviceStopCtx, serviceStopWG, e)

	applog.WithComponentAndFields(component, applog.Fields{
		"listen_address": s.statusConfig.ListenAddress,
	}).Info("상태 API 서비스 시작")

	return nil
}

func (s *Service) setupServer() *echo.Echo {
	e := NewHTTPServer(HTTPServerConfig{Debug: s.debug})
	RegisterRoutes(e, system.NewHandler(s.provider, s.buildInfo))
	return e
}

func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup, e *echo.Echo) {
	defer serviceStopWG.Done()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	err := e.Start(s.statusConfig.ListenAddress)
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(component).Info("상태 API 서버 종료")
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"listen_address": s.statusConfig.ListenAddress,
		"error":          err,
	}).Error("상태 API 서버 실행 중 오류가 발생했습니다")
}

func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(component).Info("상태 API 서비스 종료 중")

	case <-httpServerDone:
		applog.WithComponent(component).Error("상태 API 서버가 예기치 않게 종료되었습니다")
		s.cleanup()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("상태 API 서버 종료 중 오류가 발생했습니다")
	}

	<-httpServerDone

	s.cleanup()
}

func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("상태 API 서비스 종료 완료")
}
