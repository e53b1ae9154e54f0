package relay

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	applog "github.com/darkkaiser/watch-relay/pkg/log"
)

// Dispatcher 업데이트마다 독립된 고루틴을 띄워 관련성을 판단하고, 관련 있는 업데이트를 알림 채널에 넣습니다.
type Dispatcher struct {
	watch *WatchList
	queue *Queue
	stats *Stats

	now func() time.Time

	// wg 실행 중인 디스패치 고루틴 집합입니다. Wait로 모두 끝날 때까지 대기합니다.
	wg sync.WaitGroup
}

func NewDispatcher(watch *WatchList, queue *Queue, stats *Stats) *Dispatcher {
	if stats == nil {
		stats = &Stats{}
	}
	return &Dispatcher{
		watch: watch,
		queue: queue,
		stats: stats,
		now:   time.Now,
	}
}

// Dispatch 업데이트 처리를 새 고루틴에 맡기고 즉시 반환합니다.
// ctx는 큐가 가득 찼을 때의 대기를 끊는 데만 사용됩니다.
func (d *Dispatcher) Dispatch(ctx context.Context, u Update) {
	d.stats.received.Add(1)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.stats.panics.Add(1)
				applog.WithComponentAndFields(component, applog.Fields{
					"chat_id":    u.ChatID,
					"message_id": u.MessageID,
					"panic":      r,
					"stack":      string(debug.Stack()),
				}).Error("디스패치 패닉 복구: 업데이트 처리 중 예기치 않은 오류가 발생했습니다")
			}
		}()

		d.handle(ctx, u)
	}()
}

// Wait 지금까지 시작된 모든 디스패치 고루틴이 끝날 때까지 대기합니다.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) handle(ctx context.Context, u Update) {
	cmd, ok := Evaluate(u, d.watch, d.now().UnixMilli())
	if !ok {
		d.stats.ignored.Add(1)
		return
	}

	fields := applog.Fields{
		"sender_id":  cmd.SenderID,
		"chat_id":    u.ChatID,
		"message_id": u.MessageID,
		"media":      u.Media.Tag(),
	}

	if err := d.queue.Send(ctx, cmd); err != nil {
		if errors.Is(err, ErrChannelClosed) {
			d.stats.channelClosed.Add(1)
			applog.WithComponentAndFields(component, fields).Warn("알림 워커가 이미 종료되어 이벤트를 버립니다")
			return
		}

		applog.WithComponentAndFields(component, fields).WithError(err).Warn("알림 채널 전송이 취소되어 이벤트를 버립니다")
		return
	}

	d.stats.enqueued.Add(1)
	applog.WithComponentAndFields(component, fields).Debug("감시 대상 발신자 이벤트 등록")
}

// Evaluate 업데이트가 알림 대상인지 판단하고, 대상이면 전송할 MessageCommand를 반환합니다.
//
// 새 메시지이고, 그룹 대화방이며, 발신자가 WatchList에 있고, 본문 또는 첨부 미디어가 있어야 합니다.
func Evaluate(u Update, watch *WatchList, nowMs int64) (MessageCommand, bool) {
	if u.Kind != UpdateNewMessage {
		return MessageCommand{}, false
	}
	if u.ChatKind != ChatGroup {
		return MessageCommand{}, false
	}
	if u.Sender == nil || !watch.Contains(u.Sender.ID) {
		return MessageCommand{}, false
	}
	if u.Text == "" && u.Media == MediaNone {
		return MessageCommand{}, false
	}

	return MessageCommand{
		SenderID:  u.Sender.ID,
		Timestamp: nowMs,
		Text:      Render(u),
	}, true
}

