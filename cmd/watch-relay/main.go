package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/darkkaiser/watch-relay/internal/config"
	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
	"github.com/darkkaiser/watch-relay/internal/pkg/sdnotify"
	"github.com/darkkaiser/watch-relay/internal/pkg/version"
	"github.com/darkkaiser/watch-relay/internal/service"
	"github.com/darkkaiser/watch-relay/internal/service/api"
	"github.com/darkkaiser/watch-relay/internal/service/notifier"
	"github.com/darkkaiser/watch-relay/internal/service/relay"
	"github.com/darkkaiser/watch-relay/internal/service/scheduler"
	"github.com/darkkaiser/watch-relay/internal/service/source/botapi"
	"github.com/darkkaiser/watch-relay/internal/service/source/mtproto"
	applog "github.com/darkkaiser/watch-relay/pkg/log"
)

const banner = `
                 _         _                        _
 __      __ __ _| |_  ___ | |__        _ __  ___  | |  __ _  _   _
 \ \ /\ / // _' | __|/ __|| '_ \ _____| '__|/ _ \ | | / _' || | | |
  \ V  V /| (_| | |_| (__ | | | |_____| |  |  __/ | || (_| || |_| |
   \_/\_/  \__,_|\__|\___||_| |_|     |_|   \___| |_| \__,_| \__, |
                                                            |___/  %s
--------------------------------------------------------------------------------
`

// 종료 코드
const (
	exitOK    = 0
	exitError = 1
)

type options struct {
	configFile  string
	sessionFile string
	showVersion bool
}

// updateSource 연결과 종료가 필요한 relay.Source입니다.
type updateSource interface {
	relay.Source
	Connect(ctx context.Context) error
	Close()
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitError
	}

	if opts.showVersion {
		fmt.Fprintln(stdout, version.Get().String())
		return exitOK
	}

	// 1. 설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := config.LoadWithFile(opts.configFile)
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(stderr, "[FATAL] 설정 로드 실패: %v\n", err)
		return exitError
	}

	// 2. 로그 시스템 초기화
	logOpts := applog.NewProductionOptions(config.AppName, appConfig.Log.Dir)
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName, appConfig.Log.Dir)
	}
	logCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(stderr, "[FATAL] 로그 시스템 초기화 실패: %v\n", err)
		return exitError
	}
	defer logCloser.Close()

	applog.SetDebugMode(appConfig.Debug)

	buildInfo := version.Get()
	fmt.Fprintf(stdout, banner, buildInfo.Version)

	applog.WithComponentAndFields("main", applog.Fields{
		"version":       buildInfo.String(),
		"update_source": appConfig.Telegram.UpdateSource,
		"watch_list":    len(appConfig.Follow.WatchList),
		"cooldown":      appConfig.Follow.Cooldown().String(),
	}).Info("초기화 시작")

	for _, warning := range appConfig.VerifyRecommendations() {
		applog.WithComponent("main").Warn(warning)
	}

	// 3. 알림 전송기
	n, err := notifier.New(notifier.Options{
		APIBaseURL:  appConfig.Telegram.APIBaseURL,
		BotToken:    appConfig.Telegram.BotToken,
		OwnerID:     appConfig.Telegram.OwnerID,
		SendTimeout: appConfig.Telegram.SendTimeout,
		RateLimit:   appConfig.Telegram.RateLimit,
		RateBurst:   appConfig.Telegram.RateBurst,
	})
	if err != nil {
		applog.WithComponent("main").WithError(err).Error("알림 전송기 생성 실패")
		return exitError
	}

	// 4. 업데이트 수신 (로그인 중에도 Ctrl+C로 중단할 수 있어야 한다)
	src, err := newUpdateSource(appConfig, opts.sessionFile, stdin, stdout)
	if err != nil {
		applog.WithComponent("main").WithError(err).Error("업데이트 수신기 생성 실패")
		return exitError
	}
	defer src.Close()

	connectCtx, stopConnect := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = src.Connect(connectCtx)
	stopConnect()
	if err != nil {
		applog.WithComponent("main").WithError(err).Error("Telegram 연결 실패")
		return exitError
	}

	// 5. 릴레이 구성
	watch := relay.NewWatchList(appConfig.Follow.WatchList)
	stats := &relay.Stats{}
	queue := relay.NewQueue(appConfig.Follow.QueueSize)
	coordinator := relay.NewCoordinator(
		src,
		relay.NewDispatcher(watch, queue, stats),
		queue,
		relay.NewWorker(queue, watch, n, appConfig.Follow.Cooldown(), stats),
	)

	sd := sdnotify.New()
	coordinator.OnStateChange(func(_, to relay.State) {
		reportState(sd, to)
	})

	// 6. 부가 서비스 시작
	serviceStopCtx, cancel := context.WithCancel(context.Background())
	serviceStopWG := &sync.WaitGroup{}

	for _, s := range auxiliaryServices(appConfig, coordinator, buildInfo) {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			applog.WithComponent("main").WithError(err).Error("서비스 초기화 실패")

			cancel()
			serviceStopWG.Wait()
			return exitError
		}
	}

	// 7. 실행 (첫 번째 신호: 정상 종료, 두 번째 신호: 즉시 중단)
	interrupts := make(chan os.Signal, 2)
	signal.Notify(interrupts, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	applog.WithComponent("main").Info("가동 완료")

	runErr := coordinator.Run(context.Background(), interrupts)

	src.Close()
	cancel()
	serviceStopWG.Wait()

	return exitCode(runErr)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", config.DefaultFilename, "설정 파일 경로 (TOML)")
	fs.StringVar(&opts.sessionFile, "session", config.DefaultSessionFilename, "사용자 세션 파일 경로 (update_source = mtproto)")
	fs.BoolVar(&opts.showVersion, "version", false, "버전 정보를 출력하고 종료")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "알 수 없는 인자: %v\n", fs.Args())
		fs.Usage()
		return options{}, apperrors.New(apperrors.InvalidInput, "알 수 없는 인자")
	}
	return opts, nil
}

func newUpdateSource(appConfig *config.AppConfig, sessionFile string, stdin io.Reader, stdout io.Writer) (updateSource, error) {
	tc := appConfig.Telegram

	if tc.UpdateSource == config.UpdateSourceBotAPI {
		src, err := botapi.New(botapi.Options{
			APIBaseURL: tc.APIBaseURL,
			BotToken:   tc.BotToken,
			Debug:      appConfig.Debug,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	}

	src, err := mtproto.New(mtproto.Options{
		AppID:         tc.APIID,
		AppHash:       tc.APIHash,
		SessionPath:   sessionFile,
		Authenticator: mtproto.NewTerminalAuthenticator(stdin, stdout, tc.Phone),
	})
	if err != nil {
		return nil, err
	}
	return src, nil
}

func auxiliaryServices(appConfig *config.AppConfig, coordinator *relay.Coordinator, buildInfo version.Info) []service.Service {
	var services []service.Service

	if appConfig.Status.Enabled {
		services = append(services, api.NewService(appConfig.Status, appConfig.Debug, coordinator, buildInfo))
	}
	if appConfig.Report.Enabled {
		services = append(services, scheduler.NewService(appConfig.Report.Schedule, coordinator))
	}

	return services
}

// stateNotifier systemd 알림 중 상태 전환에 쓰는 부분입니다.
type stateNotifier interface {
	Ready()
	Stopping()
	Status(text string)
}

func reportState(sd stateNotifier, state relay.State) {
	switch state {
	case relay.StateRunning:
		sd.Ready()
	case relay.StateDraining:
		sd.Stopping()
	}
	sd.Status(state.String())
}

func exitCode(runErr error) int {
	if runErr == nil {
		applog.WithComponent("main").Info("정상 종료")
		return exitOK
	}

	if errors.Is(runErr, relay.ErrAborted) {
		applog.WithComponent("main").Warn("두 번째 종료 신호로 즉시 종료합니다")
	} else {
		applog.WithComponent("main").WithError(runErr).Error("비정상 종료")
	}
	return exitError
}
