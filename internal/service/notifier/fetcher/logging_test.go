package fetcher_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/darkkaiser/watch-relay/internal/service/notifier/fetcher"
	"github.com/darkkaiser/watch-relay/internal/service/notifier/fetcher/mocks"
	applog "github.com/darkkaiser/watch-relay/pkg/log"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const botToken = "123456:ABC-def_ghi"

// 전역 logger에 hook을 붙이므로 병렬로 실행하지 않습니다.
func setupLogHook(t *testing.T) *test.Hook {
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

func TestLoggingFetcher_Do(t *testing.T) {
	t.Run("성공: Debug 레벨과 마스킹된 URL 기록", func(t *testing.T) {
		hook := setupLogHook(t)

		req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/bot"+botToken+"/sendMessage", nil)
		require.NoError(t, err)

		m := mocks.NewMockFetcher()
		m.On("Do", mock.Anything).Return(&http.Response{StatusCode: 200, Status: "200 OK", Body: http.NoBody}, nil)

		resp, err := fetcher.NewLoggingFetcher(m).Do(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.DebugLevel, entry.Level)
		assert.Equal(t, "HTTP 요청 성공", entry.Message)
		assert.Equal(t, "https://api.telegram.org/botxxxxx/sendMessage", entry.Data["url"])
		assert.Equal(t, 200, entry.Data["status_code"])
		assert.Equal(t, "notifier.fetcher", entry.Data["component"])
		m.AssertExpectations(t)
	})

	t.Run("실패: Error 레벨과 에러 메시지 기록", func(t *testing.T) {
		hook := setupLogHook(t)

		req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/bot"+botToken+"/sendMessage", nil)
		require.NoError(t, err)

		m := mocks.NewMockFetcher()
		m.On("Do", mock.Anything).Return(nil, errors.New("connection refused"))

		resp, err := fetcher.NewLoggingFetcher(m).Do(req)
		require.Error(t, err)
		assert.Nil(t, resp)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.ErrorLevel, entry.Level)
		assert.Equal(t, "connection refused", entry.Data["error"])
		assert.NotContains(t, entry.Data, "status")
	})
}
