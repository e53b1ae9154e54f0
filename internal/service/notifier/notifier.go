// Package notifier Bot API sendMessage로 소유자에게 알림을 전송합니다.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
	"github.com/darkkaiser/watch-relay/internal/service/notifier/fetcher"
	"github.com/darkkaiser/watch-relay/internal/service/relay"
	applog "github.com/darkkaiser/watch-relay/pkg/log"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// ParseMode sendMessage 요청의 parse_mode 값입니다.
	ParseMode = "markdown"

	defaultSendTimeout = 10 * time.Second

	maxResponseBytes = 64 * 1024
)

// Options Notifier 생성 옵션입니다.
type Options struct {
	APIBaseURL string
	BotToken   string
	OwnerID    int64

	// SendTimeout 요청 하나에 허용하는 시간입니다. 0이면 10초입니다.
	SendTimeout time.Duration

	// RateLimit 초당 전송 수, RateBurst 연속 허용 수입니다. RateLimit이 0 이하면 제한하지 않습니다.
	RateLimit float64
	RateBurst int

	// Fetcher 지정하지 않으면 로깅과 상태 코드 검증을 포함한 기본 체인을 사용합니다.
	Fetcher fetcher.Fetcher
}

// Notifier Bot API sendMessage 호출자입니다. 여러 고루틴에서 사용해도 안전합니다.
type Notifier struct {
	endpoint string
	ownerID  int64
	timeout  time.Duration

	limiter *rate.Limiter
	fetcher fetcher.Fetcher
}

var _ relay.Notifier = (*Notifier)(nil)

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func New(opts Options) (*Notifier, error) {
	if opts.BotToken == "" {
		return nil, apperrors.Wrap(ErrInvalidOptions, apperrors.InvalidInput, "봇 토큰이 비어 있습니다")
	}
	if opts.OwnerID == 0 {
		return nil, apperrors.Wrap(ErrInvalidOptions, apperrors.InvalidInput, "소유자 ID가 설정되지 않았습니다")
	}
	if opts.APIBaseURL == "" {
		return nil, apperrors.Wrap(ErrInvalidOptions, apperrors.InvalidInput, "Bot API 주소가 비어 있습니다")
	}

	timeout := opts.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	f := opts.Fetcher
	if f == nil {
		// 요청별 timeout은 ctx로 적용하므로 클라이언트에는 두지 않습니다.
		f = fetcher.NewLoggingFetcher(fetcher.NewStatusCodeFetcher(fetcher.NewHTTPFetcher(0)))
	}

	return &Notifier{
		endpoint: strings.TrimRight(opts.APIBaseURL, "/") + "/bot" + opts.BotToken + "/sendMessage",
		ownerID:  opts.OwnerID,
		timeout:  timeout,
		limiter:  limiter,
		fetcher:  f,
	}, nil
}

// Notify 소유자에게 text를 전송합니다. 2xx 응답이면 성공입니다.
//
// 재시도는 하지 않습니다. 실패 원인은 에러 분류로 구분됩니다.
//   - Unavailable: 429, 5xx, 네트워크 오류
//   - Timeout: SendTimeout 초과
//   - 그 밖의 4xx: InvalidInput, Forbidden, NotFound
func (n *Notifier) Notify(ctx context.Context, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.Unavailable, "전송 대기 중 취소되었습니다")
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    n.ownerID,
		Text:      text,
		ParseMode: ParseMode,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "요청 본문을 생성할 수 없습니다")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "요청을 생성할 수 없습니다")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.fetcher.Do(req)
	if err != nil {
		return classify(ctx, err)
	}
	defer fetcher.DrainAndClose(resp.Body)

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil
	}
	if b = toUTF8(b, resp.Header.Get("Content-Type")); gjson.ValidBytes(b) {
		applog.WithComponentAndFields(component, applog.Fields{
			"status_code": resp.StatusCode,
			"message_id":  gjson.GetBytes(b, "result.message_id").Int(),
		}).Debug("알림 전송 완료")
	}

	return nil
}

func classify(ctx context.Context, err error) error {
	var statusErr *fetcher.HTTPStatusError
	if errors.As(err, &statusErr) {
		apiErr := &APIError{Code: int64(statusErr.StatusCode), Cause: statusErr}

		contentType := statusErr.Header.Get("Content-Type")
		body := toUTF8([]byte(statusErr.BodySnippet), contentType)
		switch {
		case gjson.ValidBytes(body):
			res := gjson.ParseBytes(body)
			if c := res.Get("error_code"); c.Exists() {
				apiErr.Code = c.Int()
			}
			apiErr.Description = res.Get("description").String()
			apiErr.RetryAfter = res.Get("parameters.retry_after").Int()
		case isHTML(contentType):
			apiErr.Description = describeHTML(body)
		}
		return apiErr
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.Timeout, "알림 전송 시간이 초과되었습니다")
	}
	return apperrors.Wrap(err, apperrors.Unavailable, "알림 전송 요청에 실패했습니다")
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
