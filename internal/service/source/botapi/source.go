// Package botapi Bot API 롱 폴링으로 업데이트를 수신하는 relay.Source입니다.
//
// 감시 대상 그룹에 프라이버시 모드를 끈 봇이 참여해 있어야 일반 메시지를 받을 수 있습니다.
package botapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
	"github.com/darkkaiser/watch-relay/internal/service/relay"
	applog "github.com/darkkaiser/watch-relay/pkg/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const component = "source.botapi"

// pollTimeoutSeconds getUpdates 롱 폴링 대기 시간입니다.
const pollTimeoutSeconds = 60

// botAPI 테스트에서 교체할 수 있도록 tgbotapi.BotAPI 중 사용하는 메서드만 추려 둡니다.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Options struct {
	APIBaseURL string
	BotToken   string
	Debug      bool
}

type Source struct {
	bot     botAPI
	updates tgbotapi.UpdatesChannel

	stopOnce sync.Once
}

var _ relay.Source = (*Source)(nil)

// New 봇 토큰을 확인(getMe)하고 Source를 생성합니다.
func New(opts Options) (*Source, error) {
	endpoint := strings.TrimRight(opts.APIBaseURL, "/") + "/bot%s/%s"

	bot, err := tgbotapi.NewBotAPIWithClient(opts.BotToken, endpoint, &http.Client{})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "텔레그램 봇 초기화 실패 (토큰을 확인해주세요)")
	}
	bot.Debug = opts.Debug

	applog.WithComponentAndFields(component, applog.Fields{
		"bot_id":       bot.Self.ID,
		"bot_username": bot.Self.UserName,
	}).Info("텔레그램 봇 확인 완료")

	return newSourceWithBot(bot), nil
}

func newSourceWithBot(bot botAPI) *Source {
	return &Source{bot: bot}
}

// Connect 롱 폴링을 시작합니다.
func (s *Source) Connect(context.Context) error {
	config := tgbotapi.NewUpdate(0)
	config.Timeout = pollTimeoutSeconds
	config.AllowedUpdates = []string{"message"}

	s.updates = s.bot.GetUpdatesChan(config)
	return nil
}

// Next 다음 업데이트를 반환합니다. Close 이후 폴링이 멈추면 io.EOF입니다.
func (s *Source) Next(ctx context.Context) (relay.Update, error) {
	if s.updates == nil {
		return relay.Update{}, apperrors.New(apperrors.Internal, "Connect 호출 전에는 업데이트를 받을 수 없습니다")
	}

	select {
	case u, ok := <-s.updates:
		if !ok {
			return relay.Update{}, io.EOF
		}
		return convertUpdate(u), nil

	case <-ctx.Done():
		return relay.Update{}, ctx.Err()
	}
}

// Close 롱 폴링을 멈춥니다. 진행 중인 getUpdates 요청은 끝날 때까지 백그라운드에서 유지됩니다.
func (s *Source) Close() {
	s.stopOnce.Do(func() {
		if s.updates != nil {
			s.bot.StopReceivingUpdates()
		}
	})
}
