// Package fetcher Bot API 호출에 사용하는 HTTP 클라이언트와 데코레이터(로깅, 상태 코드 검증)를 제공합니다.
//
//	f := NewLoggingFetcher(NewStatusCodeFetcher(NewHTTPFetcher(10 * time.Second)))
//
// 모든 로그와 에러 메시지의 URL은 봇 토큰이 마스킹된 상태로 기록됩니다.
package fetcher

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

const component = "notifier.fetcher"

const defaultUserAgent = "watch-relay"

// Fetcher HTTP 요청을 수행합니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher http.Client를 감싼 기본 Fetcher입니다.
type HTTPFetcher struct {
	client *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 요청 전체에 timeout을 적용하는 HTTPFetcher를 생성합니다. 0이면 제한이 없습니다.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// NewHTTPFetcherWithClient 주어진 http.Client를 그대로 사용합니다.
func NewHTTPFetcherWithClient(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client}
}

// Do User-Agent가 없으면 기본값을 넣고 요청을 보냅니다.
// 전송 실패 시 *url.Error에 담긴 URL의 봇 토큰을 마스킹합니다.
func (h *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", defaultUserAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactURL(req.URL)
		}
		return resp, err
	}
	return resp, nil
}
