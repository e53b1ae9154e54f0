package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
	"github.com/darkkaiser/watch-relay/internal/service/relay"
	applog "github.com/darkkaiser/watch-relay/pkg/log"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// Test Helpers
// =============================================================================

type fakeSource struct {
	mu    sync.Mutex
	stats relay.Snapshot
}

func (f *fakeSource) State() relay.State { return relay.StateRunning }
func (f *fakeSource) QueueLen() int      { return 4 }

func (f *fakeSource) Stats() relay.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

func (f *fakeSource) set(s relay.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats = s
}

// 전역 logger에 hook을 붙이므로 이 파일의 테스트는 병렬로 실행하지 않습니다.
func captureLogs(t *testing.T) *test.Hook {
	t.Helper()

	logger := applog.StandardLogger()
	prevHooks := logger.ReplaceHooks(make(logrus.LevelHooks))
	hook := test.NewLocal(logger)

	t.Cleanup(func() {
		logger.ReplaceHooks(prevHooks)
	})
	return hook
}

func reports(hook *test.Hook) []*logrus.Entry {
	var out []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "처리 통계" {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// Unit Tests
// =============================================================================

func TestReporter_ReportDelta(t *testing.T) {
	hook := captureLogs(t)

	src := &fakeSource{stats: relay.Snapshot{Received: 10, Delivered: 2}}
	r := NewService("@every 1h", src)
	r.last = src.Stats()

	src.set(relay.Snapshot{Received: 15, Delivered: 3, Suppressed: 1})
	r.report("주기")

	src.set(relay.Snapshot{Received: 16, Delivered: 3, Suppressed: 1})
	r.report("주기")

	entries := reports(hook)
	require.Len(t, entries, 2)

	assert.Equal(t, uint64(5), entries[0].Data["received"])
	assert.Equal(t, uint64(1), entries[0].Data["delivered"])
	assert.Equal(t, uint64(1), entries[0].Data["suppressed"])
	assert.Equal(t, uint64(3), entries[0].Data["total_delivered"])
	assert.Equal(t, "running", entries[0].Data["state"])
	assert.Equal(t, 4, entries[0].Data["queue_depth"])

	assert.Equal(t, uint64(1), entries[1].Data["received"])
	assert.Equal(t, uint64(0), entries[1].Data["delivered"])
}

func TestReporter_StartErrors(t *testing.T) {
	tests := []struct {
		name     string
		reporter *Reporter
		check    func(t *testing.T, err error)
	}{
		{
			name:     "실패: StatsSource 누락",
			reporter: NewService("@every 1m", nil),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrStatsSourceNotInitialized)
			},
		},
		{
			name:     "실패: 잘못된 Cron 표현식",
			reporter: NewService("every minute", &fakeSource{}),
			check: func(t *testing.T, err error) {
				assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
				assert.Contains(t, err.Error(), "every minute")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wg := &sync.WaitGroup{}
			wg.Add(1)

			err := tt.reporter.Start(context.Background(), wg)
			require.Error(t, err)
			tt.check(t, err)

			wg.Wait()
			assert.False(t, tt.reporter.running)
		})
	}
}

func TestReporter_Lifecycle(t *testing.T) {
	hook := captureLogs(t)

	src := &fakeSource{}
	r := NewService("* * * * * *", src)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, r.Start(ctx, wg))

	wg.Add(1)
	require.NoError(t, r.Start(ctx, wg), "중복 시작은 경고만 남겨야 합니다")

	src.set(relay.Snapshot{Received: 1})

	require.Eventually(t, func() bool {
		return len(reports(hook)) >= 1
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	wg.Wait()

	entries := reports(hook)
	last := entries[len(entries)-1]
	assert.Equal(t, "종료", last.Data["trigger"], "종료 시 마지막 보고를 남겨야 합니다")
	assert.False(t, r.running)

	r.Stop()
}
