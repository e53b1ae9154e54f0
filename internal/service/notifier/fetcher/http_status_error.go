package fetcher

import (
	"fmt"
	"net/http"
)

// HTTPStatusError 2xx가 아닌 응답의 상태 코드와 응답 정보를 담는 에러입니다.
//
//	var httpErr *HTTPStatusError
//	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
//	    // ...
//	}
//
// Cause에는 상태 코드로 분류된 AppError가 들어 있어 apperrors.Is로 분류를 확인할 수 있습니다.
type HTTPStatusError struct {
	StatusCode int
	Status     string

	// URL 봇 토큰과 민감한 쿼리 값이 마스킹된 요청 URL입니다.
	URL string

	// Header Cookie, Authorization 등이 마스킹된 응답 헤더입니다.
	Header http.Header

	// BodySnippet 응답 본문의 앞부분(최대 4KB)입니다.
	BodySnippet string

	Cause error
}

// Error "HTTP {코드} ({상태}) URL: {URL}, Body: {본문}: {원인}"
func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d (%s)", e.StatusCode, e.Status)
	if e.URL != "" {
		msg += fmt.Sprintf(" URL: %s", e.URL)
	}
	if e.BodySnippet != "" {
		msg += fmt.Sprintf(", Body: %s", e.BodySnippet)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *HTTPStatusError) Unwrap() error {
	return e.Cause
}
