package fetcher

import (
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
)

// maxBodySnippet HTTPStatusError에 담는 응답 본문의 최대 길이입니다.
const maxBodySnippet = 4096

// StatusCodeFetcher 2xx가 아닌 응답을 HTTPStatusError로 바꿉니다.
//
// 에러를 반환할 때는 응답 Body를 비우고 닫으므로 호출자가 닫을 필요가 없습니다.
// 성공 시에는 호출자가 Body를 닫아야 합니다.
type StatusCodeFetcher struct {
	delegate Fetcher
}

var _ Fetcher = (*StatusCodeFetcher)(nil)

func NewStatusCodeFetcher(delegate Fetcher) *StatusCodeFetcher {
	return &StatusCodeFetcher{delegate: delegate}
}

func (f *StatusCodeFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		if resp != nil {
			drainAndCloseBody(resp.Body)
		}
		return nil, err
	}

	if statusErr := CheckResponseStatus(resp); statusErr != nil {
		drainAndCloseBody(resp.Body)
		return nil, statusErr
	}

	return resp, nil
}

// CheckResponseStatus 2xx면 nil, 아니면 본문 앞부분을 담은 HTTPStatusError를 반환합니다.
// 에러를 반환할 때 resp.Body의 앞부분을 읽어 소비합니다.
func CheckResponseStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	urlStr := ""
	if resp.Request != nil && resp.Request.URL != nil {
		urlStr = redactURL(resp.Request.URL)
	}

	var bodySnippet string
	if resp.Body != nil {
		if b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet)); err == nil {
			bodySnippet = string(b)
		}
	}

	errType := ErrorTypeForStatus(resp.StatusCode)

	return &HTTPStatusError{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		URL:         urlStr,
		Header:      redactHeaders(resp.Header),
		BodySnippet: bodySnippet,
		Cause:       apperrors.New(errType, fmt.Sprintf("HTTP 요청이 실패했습니다 (%s)", resp.Status)),
	}
}

// ErrorTypeForStatus HTTP 상태 코드를 에러 분류로 바꿉니다.
// 429, 408, 5xx는 일시적 장애(Unavailable)입니다.
func ErrorTypeForStatus(code int) apperrors.ErrorType {
	switch code {
	case http.StatusNotFound:
		return apperrors.NotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return apperrors.Forbidden
	case http.StatusBadRequest:
		return apperrors.InvalidInput
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return apperrors.Unavailable
	}

	if code >= 500 {
		return apperrors.Unavailable
	}
	return apperrors.ExecutionFailed
}
