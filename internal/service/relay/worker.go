package relay

import (
	"context"
	"runtime/debug"
	"time"

	applog "github.com/darkkaiser/watch-relay/pkg/log"
)

// Notifier 알림 문구를 수신자에게 전달합니다.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Worker 알림 채널의 유일한 소비자입니다. Ledger를 단독으로 소유하며 명령을 채널 순서대로 처리합니다.
type Worker struct {
	queue    *Queue
	ledger   *Ledger
	notifier Notifier
	stats    *Stats

	cooldownMs int64

	now func() int64
}

func NewWorker(queue *Queue, watch *WatchList, notifier Notifier, cooldown time.Duration, stats *Stats) *Worker {
	if stats == nil {
		stats = &Stats{}
	}
	return &Worker{
		queue:      queue,
		ledger:     NewLedger(watch),
		notifier:   notifier,
		stats:      stats,
		cooldownMs: cooldown.Milliseconds(),
		now: func() int64 {
			return time.Now().UnixMilli()
		},
	}
}

// Run TerminateCommand를 받거나 ctx가 취소될 때까지 명령을 처리합니다.
//
// 반환 시 큐의 수신 측을 닫으므로, 이후의 Send는 ErrChannelClosed로 실패합니다.
// 큐에 남은 명령은 처리되지 않습니다.
func (w *Worker) Run(ctx context.Context) error {
	defer w.queue.CloseReceiver()

	applog.WithComponentAndFields(component, applog.Fields{
		"watch_list_size": w.ledger.Len(),
		"cooldown_ms":     w.cooldownMs,
	}).Info("알림 워커 시작")

	for {
		select {
		case <-ctx.Done():
			applog.WithComponent(component).Warn("알림 워커 강제 종료")
			return ctx.Err()

		case cmd := <-w.queue.Receive():
			switch c := cmd.(type) {
			case TerminateCommand:
				applog.WithComponentAndFields(component, applog.Fields{
					"pending": w.queue.Len(),
				}).Info("알림 워커 종료")
				return nil

			case MessageCommand:
				w.process(ctx, c)
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, cmd MessageCommand) {
	fields := applog.Fields{
		"sender_id": cmd.SenderID,
		"timestamp": cmd.Timestamp,
	}

	defer func() {
		if r := recover(); r != nil {
			w.stats.panics.Add(1)
			fields["panic"] = r
			fields["stack"] = string(debug.Stack())
			applog.WithComponentAndFields(component, fields).Error("알림 워커 패닉 복구: 명령 처리를 건너뜁니다")
		}
	}()

	last := w.ledger.Last(cmd.SenderID)
	elapsed := w.now() - last
	fields["elapsed_ms"] = elapsed

	if elapsed <= w.cooldownMs {
		w.stats.suppressed.Add(1)
		applog.WithComponentAndFields(component, fields).Debug("cooldown 구간이므로 알림을 생략합니다")
		return
	}

	if err := w.notifier.Notify(ctx, cmd.Text); err != nil {
		w.stats.failed.Add(1)
		applog.WithComponentAndFields(component, fields).WithError(err).Error("알림 전송 실패: ledger를 갱신하지 않습니다")
		return
	}

	w.ledger.Record(cmd.SenderID, cmd.Timestamp)
	w.stats.delivered.Add(1)
	applog.WithComponentAndFields(component, fields).Info("알림 전송 완료")
}
