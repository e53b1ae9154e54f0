package middleware

import (
	"testing"

	applog "github.com/darkkaiser/watch-relay/pkg/log"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// captureLogs 전역 로거에 테스트 hook을 붙이고 종료 시 원래대로 되돌립니다.
// 전역 상태를 바꾸므로 이 패키지의 테스트는 병렬로 실행하지 않습니다.
func captureLogs(t *testing.T) *test.Hook {
	t.Helper()

	logger := applog.StandardLogger()
	prevLevel := logger.GetLevel()
	prevHooks := logger.ReplaceHooks(make(logrus.LevelHooks))

	hook := test.NewLocal(logger)
	logger.SetLevel(logrus.DebugLevel)

	t.Cleanup(func() {
		logger.ReplaceHooks(prevHooks)
		logger.SetLevel(prevLevel)
	})
	return hook
}
