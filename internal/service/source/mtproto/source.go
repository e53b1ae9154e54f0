// Package mtproto 사용자 계정 세션으로 Telegram 업데이트를 수신하는 relay.Source입니다.
//
// 봇과 달리 사용자 계정은 자신이 속한 모든 그룹의 메시지를 받으므로,
// 감시 대상이 있는 그룹에 별도의 봇을 초대하지 않아도 됩니다.
package mtproto

import (
	"context"
	"errors"
	"io"
	"sync"

	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
	"github.com/darkkaiser/watch-relay/internal/service/relay"
	applog "github.com/darkkaiser/watch-relay/pkg/log"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

const component = "source.mtproto"

// updateBufferSize 수신 핸들러와 Next 사이의 버퍼 크기입니다.
const updateBufferSize = 100

// Options Source 생성 옵션입니다.
type Options struct {
	AppID       int
	AppHash     string
	SessionPath string

	// Authenticator 세션이 없거나 만료되었을 때 사용합니다.
	Authenticator auth.UserAuthenticator
}

// Source gotd 클라이언트를 감싼 업데이트 스트림입니다.
//
//	src, _ := mtproto.New(opts)
//	if err := src.Connect(ctx); err != nil { ... }
//	defer src.Close()
//	u, err := src.Next(ctx) // 연결이 끊기면 에러, Close 이후에는 io.EOF
type Source struct {
	client        *telegram.Client
	authenticator auth.UserAuthenticator

	updates chan relay.Update

	cancel  context.CancelFunc
	runDone chan struct{}
	runErr  error

	closeOnce sync.Once
}

var _ relay.Source = (*Source)(nil)

func New(opts Options) (*Source, error) {
	if opts.AppID <= 0 || opts.AppHash == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "api_id, api_hash가 설정되지 않았습니다")
	}
	if opts.SessionPath == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "세션 파일 경로가 비어 있습니다")
	}
	if opts.Authenticator == nil {
		return nil, apperrors.New(apperrors.InvalidInput, "인증 입력기가 설정되지 않았습니다")
	}

	s := newSource()
	s.authenticator = opts.Authenticator

	dispatcher := tg.NewUpdateDispatcher()
	dispatcher.OnNewMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
		return s.push(ctx, convertMessage(e, u.Message))
	})
	dispatcher.OnNewChannelMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewChannelMessage) error {
		return s.push(ctx, convertMessage(e, u.Message))
	})

	s.client = telegram.NewClient(opts.AppID, opts.AppHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: opts.SessionPath},
		UpdateHandler:  dispatcher,
	})

	return s, nil
}

func newSource() *Source {
	return &Source{
		updates: make(chan relay.Update, updateBufferSize),
		runDone: make(chan struct{}),
	}
}

// Connect 서버에 연결하고 필요하면 로그인 절차를 진행합니다. 인증이 끝난 뒤에 반환됩니다.
//
// ctx는 연결과 인증 단계에만 적용됩니다. 연결된 이후의 수명은 Close로 제어합니다.
func (s *Source) Connect(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	ready := make(chan struct{})

	go func() {
		defer close(s.runDone)

		s.runErr = s.client.Run(runCtx, func(ctx context.Context) error {
			flow := auth.NewFlow(s.authenticator, auth.SendCodeOptions{})
			if err := s.client.Auth().IfNecessary(ctx, flow); err != nil {
				return apperrors.Wrap(err, apperrors.Unauthorized, "Telegram 로그인에 실패했습니다")
			}

			self, err := s.client.Self(ctx)
			if err != nil {
				return apperrors.Wrap(err, apperrors.Unavailable, "로그인 계정 정보를 가져올 수 없습니다")
			}

			applog.WithComponentAndFields(component, applog.Fields{
				"user_id":  self.ID,
				"username": self.Username,
			}).Info("Telegram 사용자 세션 연결 완료")

			close(ready)

			<-ctx.Done()
			return ctx.Err()
		})
	}()

	select {
	case <-ready:
		return nil

	case <-s.runDone:
		return apperrors.Wrap(s.runErr, apperrors.Unavailable, "Telegram 연결에 실패했습니다")

	case <-ctx.Done():
		s.Close()
		return apperrors.Wrap(ctx.Err(), apperrors.Timeout, "Telegram 연결이 취소되었습니다")
	}
}

// Next 다음 업데이트를 반환합니다. 클라이언트가 정상 종료되면 io.EOF, 연결 오류로 종료되면 해당 에러입니다.
func (s *Source) Next(ctx context.Context) (relay.Update, error) {
	select {
	case u := <-s.updates:
		return u, nil

	case <-s.runDone:
		select {
		case u := <-s.updates:
			return u, nil
		default:
		}

		if s.runErr == nil || errors.Is(s.runErr, context.Canceled) {
			return relay.Update{}, io.EOF
		}
		return relay.Update{}, apperrors.Wrap(s.runErr, apperrors.Unavailable, "Telegram 연결이 끊어졌습니다")

	case <-ctx.Done():
		return relay.Update{}, ctx.Err()
	}
}

// Close 클라이언트를 종료하고 종료될 때까지 기다립니다. 여러 번 호출해도 안전합니다.
func (s *Source) Close() {
	s.closeOnce.Do(func() {
		if s.cancel == nil {
			close(s.runDone)
			return
		}
		s.cancel()
		<-s.runDone
	})
}

func (s *Source) push(ctx context.Context, u relay.Update) error {
	select {
	case s.updates <- u:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
