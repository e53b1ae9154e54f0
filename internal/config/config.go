// Package config watch-relay의 설정 파일(TOML)과 환경 변수를 읽어 AppConfig를 구성합니다.
//
// 우선순위는 기본값 < 설정 파일 < 환경 변수입니다.
// 환경 변수는 WATCH_RELAY_ 접두사와 섹션 구분자 __ 를 사용합니다.
//
//	WATCH_RELAY_TELEGRAM__BOT_TOKEN   -> telegram.bot_token
//	WATCH_RELAY_FOLLOW__WATCH_LIST    -> follow.watch_list (쉼표 구분)
package config

import (
	"fmt"
	"net"
	"os"
	"slices"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션 식별자입니다. 로그 파일명과 배너에 사용됩니다.
	AppName = "watch-relay"

	// DefaultFilename --config 플래그가 주어지지 않았을 때 읽는 설정 파일입니다.
	DefaultFilename = "config.toml"

	// DefaultSessionFilename --session 플래그가 주어지지 않았을 때 사용하는 사용자 세션 파일입니다.
	DefaultSessionFilename = "human.session"

	envPrefix = "WATCH_RELAY_"
)

// 업데이트 수신 방식
const (
	UpdateSourceMTProto = "mtproto"
	UpdateSourceBotAPI  = "botapi"
)

// 기본값
const (
	DefaultAPIBaseURL      = "https://api.telegram.org"
	DefaultCooldownSeconds = 60
	DefaultQueueSize       = 1000
	DefaultSendTimeout     = "10s"
	DefaultRateLimit       = 1.0
	DefaultRateBurst       = 1
	DefaultLogDir          = "logs"
	DefaultStatusAddress   = "127.0.0.1:2480"
	DefaultReportSchedule  = "0 0 * * * *"
)

// AppConfig 애플리케이션 설정의 루트입니다. 시작 시 한 번 로드된 후 읽기 전용으로 사용됩니다.
type AppConfig struct {
	Debug    bool           `json:"debug"`
	Telegram TelegramConfig `json:"telegram"`
	Follow   FollowConfig   `json:"follow"`
	Log      LogConfig      `json:"log"`
	Status   StatusConfig   `json:"status"`
	Report   ReportConfig   `json:"report"`
}

// TelegramConfig 사용자 계정(MTProto) 접속 정보와 알림 봇 설정입니다.
type TelegramConfig struct {
	APIID        int           `json:"api_id" validate:"required_if=UpdateSource mtproto,omitempty,gt=0"`
	APIHash      string        `json:"api_hash" validate:"required_if=UpdateSource mtproto,omitempty,hexadecimal,len=32"`
	Phone        string        `json:"phone" validate:"omitempty,e164"`
	BotToken     string        `json:"bot_token" validate:"required,telegram_bot_token"`
	OwnerID      int64         `json:"owner_id" validate:"required"`
	APIBaseURL   string        `json:"api_base_url" validate:"required,http_url"`
	UpdateSource string        `json:"update_source" validate:"oneof=mtproto botapi"`
	SendTimeout  time.Duration `json:"send_timeout" validate:"gt=0"`
	RateLimit    float64       `json:"rate_limit" validate:"gt=0"`
	RateBurst    int           `json:"rate_burst" validate:"min=1"`
}

// FollowConfig 감시 대상과 알림 억제(cooldown) 설정입니다.
type FollowConfig struct {
	WatchList       []int64 `json:"watch_list" validate:"dive,ne=0"`
	CooldownSeconds int     `json:"cooldown_seconds" validate:"min=0"`
	QueueSize       int     `json:"queue_size" validate:"min=1"`
}

// Cooldown 같은 발신자에 대한 알림 사이의 최소 간격입니다.
func (c FollowConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

type LogConfig struct {
	Dir string `json:"dir"`
}

// StatusConfig 상태 조회용 HTTP API 설정입니다.
type StatusConfig struct {
	Enabled       bool   `json:"enabled"`
	ListenAddress string `json:"listen_address" validate:"required_if=Enabled true,omitempty,hostname_port"`
}

// ReportConfig 주기적 통계 리포트(로그) 설정입니다.
type ReportConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule" validate:"required_if=Enabled true,omitempty,cron_spec"`
}

func (c *AppConfig) validate() error {
	v := newValidator()

	if err := checkStruct(v, c.Telegram, "[telegram]"); err != nil {
		return err
	}
	if err := checkStruct(v, c.Follow, "[follow]"); err != nil {
		return err
	}
	if err := checkStruct(v, c.Status, "[status]"); err != nil {
		return err
	}
	if err := checkStruct(v, c.Report, "[report]"); err != nil {
		return err
	}

	return nil
}

// VerifyRecommendations 동작에는 문제가 없지만 운영상 주의가 필요한 설정을 경고 문구로 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	if len(c.Follow.WatchList) == 0 {
		warnings = append(warnings, "watch_list가 비어 있습니다. 어떤 메시지도 알림 대상이 되지 않습니다")
	}

	if slices.Contains(c.Follow.WatchList, c.Telegram.OwnerID) {
		warnings = append(warnings, fmt.Sprintf("수신자(owner_id=%d)가 watch_list에 포함되어 있습니다. 본인의 메시지도 알림 대상이 됩니다", c.Telegram.OwnerID))
	}

	if c.Telegram.RateLimit > 30 {
		warnings = append(warnings, fmt.Sprintf("rate_limit(%.1f/s)이 Bot API 권장 전송 한도(초당 30건)를 초과합니다", c.Telegram.RateLimit))
	}

	if c.Status.Enabled {
		if host, _, err := net.SplitHostPort(c.Status.ListenAddress); err == nil {
			if ip := net.ParseIP(host); host == "" || (ip != nil && !ip.IsLoopback()) {
				warnings = append(warnings, fmt.Sprintf("상태 API가 외부에서 접근 가능한 주소(%s)에 바인딩됩니다", c.Status.ListenAddress))
			}
		}
	}

	return warnings
}

// Load 기본 설정 파일을 읽습니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 TOML 파일과 환경 변수를 읽어 검증된 AppConfig를 반환합니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "기본 설정 로드에 실패했습니다")
	}

	// 2. 설정 파일
	if err := k.Load(file.Provider(filename), toml.Parser()); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일을 해석할 수 없습니다: '%s'", filename))
	}

	// 3. 환경 변수
	if err := k.Load(env.Provider(envPrefix, ".", normalizeEnvKey), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 구조체 변환 (정의되지 않은 키는 오류)
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToWeakSliceHookFunc(","),
			),
			ErrorUnused:      true,
			WeaklyTypedInput: true,
		},
	}
	var appConfig AppConfig
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 값을 변환할 수 없습니다: '%s'", filename))
	}

	// 5. 검증
	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일('%s')의 유효성 검증에 실패했습니다", filename))
	}

	return &appConfig, nil
}

func defaults() map[string]any {
	return map[string]any{
		"telegram.api_base_url":   DefaultAPIBaseURL,
		"telegram.update_source":  UpdateSourceMTProto,
		"telegram.send_timeout":   DefaultSendTimeout,
		"telegram.rate_limit":     DefaultRateLimit,
		"telegram.rate_burst":     DefaultRateBurst,
		"follow.cooldown_seconds": DefaultCooldownSeconds,
		"follow.queue_size":       DefaultQueueSize,
		"log.dir":                 DefaultLogDir,
		"status.enabled":          false,
		"status.listen_address":   DefaultStatusAddress,
		"report.enabled":          true,
		"report.schedule":         DefaultReportSchedule,
	}
}

// normalizeEnvKey WATCH_RELAY_FOLLOW__WATCH_LIST -> follow.watch_list
func normalizeEnvKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}
