package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// t0 실제 epoch 기준 시각입니다. ledger 초기값 0과의 차이가 cooldown보다 커야 첫 알림이 전송됩니다.
var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli()

func newTestWorker(watch []int64, n Notifier, cooldown time.Duration) (*Worker, *int64) {
	clock := new(int64)
	w := NewWorker(NewQueue(10), NewWatchList(watch), n, cooldown, nil)
	w.now = func() int64 { return *clock }
	return w, clock
}

// =============================================================================
// Unit Tests: Cooldown
// =============================================================================

func TestWorker_CooldownScenario(t *testing.T) {
	t.Parallel()

	n := newRecordingNotifier()
	w, clock := newTestWorker([]int64{111}, n, 60*time.Second)
	ctx := context.Background()

	// A: 최초 이벤트는 전송되고 ledger = t0
	*clock = t0
	w.process(ctx, MessageCommand{SenderID: 111, Timestamp: t0, Text: "A"})
	assert.Equal(t, []string{"A"}, n.Texts())
	assert.Equal(t, t0, w.ledger.Last(111))

	// B: 30초 후 이벤트는 생략
	*clock = t0 + 30_000
	w.process(ctx, MessageCommand{SenderID: 111, Timestamp: t0 + 30_000, Text: "B"})
	assert.Equal(t, []string{"A"}, n.Texts())
	assert.Equal(t, t0, w.ledger.Last(111))

	// C: 61초 후 이벤트는 전송되고 ledger = t0+61000
	*clock = t0 + 61_000
	w.process(ctx, MessageCommand{SenderID: 111, Timestamp: t0 + 61_000, Text: "C"})
	assert.Equal(t, []string{"A", "C"}, n.Texts())
	assert.Equal(t, t0+61_000, w.ledger.Last(111))

	snap := w.stats.Snapshot()
	assert.Equal(t, uint64(2), snap.Delivered)
	assert.Equal(t, uint64(1), snap.Suppressed)
}

func TestWorker_CooldownBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		elapsedMs int64
		delivered bool
	}{
		{"실패: cooldown 미만", 59_999, false},
		{"실패: cooldown과 동일", 60_000, false},
		{"성공: cooldown 초과", 60_001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := newRecordingNotifier()
			w, clock := newTestWorker([]int64{1}, n, 60*time.Second)
			w.ledger.Record(1, t0)

			*clock = t0 + tt.elapsedMs
			w.process(context.Background(), MessageCommand{SenderID: 1, Timestamp: *clock, Text: "x"})

			assert.Equal(t, tt.delivered, len(n.Texts()) == 1)
		})
	}
}

func TestWorker_LedgerIsPerSender(t *testing.T) {
	t.Parallel()

	n := newRecordingNotifier()
	w, clock := newTestWorker([]int64{1, 2}, n, 60*time.Second)
	ctx := context.Background()

	*clock = t0
	w.process(ctx, MessageCommand{SenderID: 1, Timestamp: t0, Text: "one"})
	w.process(ctx, MessageCommand{SenderID: 2, Timestamp: t0, Text: "two"})

	assert.Equal(t, []string{"one", "two"}, n.Texts())
}

func TestWorker_LedgerAnchoredToEventTimestamp(t *testing.T) {
	t.Parallel()

	n := newRecordingNotifier()
	w, clock := newTestWorker([]int64{1}, n, 60*time.Second)

	// 처리 시각(now)이 이벤트 시각보다 늦어도 ledger에는 이벤트 시각이 기록됩니다.
	*clock = t0 + 5_000
	w.process(context.Background(), MessageCommand{SenderID: 1, Timestamp: t0, Text: "late"})

	assert.Equal(t, t0, w.ledger.Last(1))
}

func TestWorker_DeliveryFailureKeepsLedger(t *testing.T) {
	t.Parallel()

	n := &mockNotifier{}
	n.On("Notify", mock.Anything, "first").Return(errors.New("HTTP 502")).Once()
	n.On("Notify", mock.Anything, "second").Return(nil).Once()

	w, clock := newTestWorker([]int64{1}, n, 60*time.Second)
	ctx := context.Background()

	*clock = t0
	w.process(ctx, MessageCommand{SenderID: 1, Timestamp: t0, Text: "first"})
	assert.Equal(t, int64(0), w.ledger.Last(1), "전송 실패 시 ledger는 그대로여야 합니다")

	// 재시도하지 않으며, 다음 이벤트는 cooldown 제약 없이 다시 전송을 시도합니다.
	*clock = t0 + 1_000
	w.process(ctx, MessageCommand{SenderID: 1, Timestamp: t0 + 1_000, Text: "second"})
	assert.Equal(t, t0+1_000, w.ledger.Last(1))

	n.AssertExpectations(t)
	assert.Equal(t, uint64(1), w.stats.Snapshot().Failed)
	assert.Equal(t, uint64(1), w.stats.Snapshot().Delivered)
}

func TestWorker_UnknownSenderPanicIsRecovered(t *testing.T) {
	t.Parallel()

	n := &mockNotifier{}
	w, clock := newTestWorker([]int64{1}, n, 60*time.Second)
	*clock = t0

	assert.NotPanics(t, func() {
		w.process(context.Background(), MessageCommand{SenderID: 999, Timestamp: t0, Text: "x"})
	})

	n.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	assert.Equal(t, uint64(1), w.stats.Snapshot().Panics)
	assert.Equal(t, 1, w.ledger.Len(), "ledger 항목은 추가되거나 삭제되지 않아야 합니다")
}

func TestLedger_InitializedFromWatchList(t *testing.T) {
	t.Parallel()

	l := NewLedger(NewWatchList([]int64{3, 1, 2, 1}))

	assert.Equal(t, 3, l.Len())
	for _, id := range []int64{1, 2, 3} {
		assert.Equal(t, int64(0), l.Last(id))
	}
	assert.Panics(t, func() { l.Last(4) })
}

// =============================================================================
// Integration Tests: Run
// =============================================================================

func TestWorker_Run_TerminateIsLast(t *testing.T) {
	t.Parallel()

	n := newRecordingNotifier()
	q := NewQueue(10)
	w := NewWorker(q, NewWatchList([]int64{1, 2, 3}), n, time.Minute, nil)

	ctx := context.Background()
	require.NoError(t, q.Send(ctx, MessageCommand{SenderID: 1, Timestamp: t0, Text: "one"}))
	require.NoError(t, q.Send(ctx, MessageCommand{SenderID: 2, Timestamp: t0, Text: "two"}))
	require.NoError(t, q.Send(ctx, TerminateCommand{}))
	require.NoError(t, q.Send(ctx, MessageCommand{SenderID: 3, Timestamp: t0, Text: "after"}))

	require.NoError(t, w.Run(ctx))

	assert.Equal(t, []string{"one", "two"}, n.Texts())
	assert.ErrorIs(t, q.Send(ctx, MessageCommand{SenderID: 1}), ErrChannelClosed)
}

func TestWorker_Run_ContextCancel(t *testing.T) {
	t.Parallel()

	n := newRecordingNotifier()
	n.block = true
	q := NewQueue(10)
	w := NewWorker(q, NewWatchList([]int64{1}), n, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Send(ctx, MessageCommand{SenderID: 1, Timestamp: t0, Text: "stuck"}))

	errC := make(chan error, 1)
	go func() { errC <- w.Run(ctx) }()

	<-n.called
	cancel()

	select {
	case err := <-errC:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("ctx 취소 후에도 워커가 종료되지 않았습니다")
	}

	assert.Equal(t, uint64(1), w.stats.Snapshot().Failed)
	assert.ErrorIs(t, q.Send(context.Background(), TerminateCommand{}), ErrChannelClosed)
}
