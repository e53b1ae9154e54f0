package relay

import (
	"context"
	"sync"
)

// DefaultQueueCapacity 알림 채널의 기본 버퍼 크기입니다.
const DefaultQueueCapacity = 1000

// Queue 다수의 디스패처와 단일 워커 사이의 bounded FIFO 채널입니다.
//
// 데이터 채널(ch)은 닫지 않습니다. 수신 측 종료는 closed 채널로 알리며,
// 그 이후의 Send는 ErrChannelClosed로 즉시 실패합니다.
type Queue struct {
	ch chan Command

	closed    chan struct{}
	closeOnce sync.Once
}

// NewQueue capacity가 0 이하이면 DefaultQueueCapacity를 사용합니다.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{
		ch:     make(chan Command, capacity),
		closed: make(chan struct{}),
	}
}

// Send 명령을 큐에 넣습니다. 큐가 가득 차 있으면 빈 자리가 생기거나,
// 수신 측이 닫히거나(ErrChannelClosed), ctx가 취소될 때까지 대기합니다.
func (q *Queue) Send(ctx context.Context, cmd Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 수신 측이 이미 닫혔다면 버퍼에 여유가 있어도 넣지 않습니다.
	select {
	case <-q.closed:
		return ErrChannelClosed
	default:
	}

	select {
	case q.ch <- cmd:
		return nil
	case <-q.closed:
		return ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive 워커 전용 수신 채널입니다.
func (q *Queue) Receive() <-chan Command {
	return q.ch
}

// CloseReceiver 수신 측이 종료되었음을 표시합니다. 여러 번 호출해도 안전합니다.
func (q *Queue) CloseReceiver() {
	q.closeOnce.Do(func() {
		close(q.closed)
	})
}

// Closed 수신 측이 닫히면 닫히는 채널입니다.
func (q *Queue) Closed() <-chan struct{} {
	return q.closed
}

// Len 현재 대기 중인 명령 수입니다.
func (q *Queue) Len() int {
	return len(q.ch)
}

func (q *Queue) Cap() int {
	return cap(q.ch)
}
