package notifier

import (
	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
)

const component = "notifier"

var (
	// ErrInvalidOptions Options 검증에 실패했을 때 반환됩니다.
	ErrInvalidOptions = apperrors.New(apperrors.InvalidInput, "알림 전송 옵션이 올바르지 않습니다")
)

// APIError Bot API가 반환한 실패 응답({"ok":false,...})의 내용입니다.
type APIError struct {
	Code        int64
	Description string

	// RetryAfter 429 응답의 parameters.retry_after 값(초)입니다. 없으면 0입니다.
	RetryAfter int64

	Cause error
}

func (e *APIError) Error() string {
	msg := "Bot API 오류"
	if e.Code != 0 {
		msg += " " + itoa(e.Code)
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.RetryAfter > 0 {
		msg += " (retry_after=" + itoa(e.RetryAfter) + "s)"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Cause
}
