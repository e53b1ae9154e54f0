package relay

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"

	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
	applog "github.com/darkkaiser/watch-relay/pkg/log"
)

// State Coordinator의 수명 주기 단계입니다.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateTerminating
	StateStopped
	StateAborting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateTerminating:
		return "terminating"
	case StateStopped:
		return "stopped"
	case StateAborting:
		return "aborting"
	default:
		return "unknown"
	}
}

// Coordinator 업데이트 수신 루프, 디스패처, 워커의 시작과 종료 순서를 관리합니다.
//
// 첫 번째 종료 신호(또는 스트림 종료, 부모 컨텍스트 취소)를 받으면 수신을 멈추고
// 진행 중인 디스패치를 모두 기다린 뒤 TerminateCommand로 워커를 종료합니다(Draining → Terminating → Stopped).
// 그 사이 두 번째 종료 신호를 받으면 대기를 포기하고 ErrAborted를 반환합니다(Aborting).
type Coordinator struct {
	source     Source
	dispatcher *Dispatcher
	queue      *Queue
	worker     *Worker

	state atomic.Int32

	hookMu        sync.RWMutex
	onStateChange func(from, to State)
}

func NewCoordinator(source Source, dispatcher *Dispatcher, queue *Queue, worker *Worker) *Coordinator {
	return &Coordinator{
		source:     source,
		dispatcher: dispatcher,
		queue:      queue,
		worker:     worker,
	}
}

// OnStateChange 상태가 바뀔 때마다 호출될 함수를 등록합니다. Run 호출 전에 등록해야 합니다.
func (c *Coordinator) OnStateChange(fn func(from, to State)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.onStateChange = fn
}

// State 현재 상태입니다.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// QueueLen 알림 채널에 대기 중인 명령 수입니다.
func (c *Coordinator) QueueLen() int {
	return c.queue.Len()
}

func (c *Coordinator) QueueCap() int {
	return c.queue.Cap()
}

// Stats 디스패처와 워커가 공유하는 카운터의 현재 값입니다.
func (c *Coordinator) Stats() Snapshot {
	return c.dispatcher.stats.Snapshot()
}

func (c *Coordinator) transition(to State) {
	from := State(c.state.Swap(int32(to)))

	applog.WithComponentAndFields(component, applog.Fields{
		"from": from.String(),
		"to":   to.String(),
	}).Info("상태 전환")

	c.hookMu.RLock()
	fn := c.onStateChange
	c.hookMu.RUnlock()

	if fn != nil {
		fn(from, to)
	}
}

// Run 워커와 수신 루프를 시작하고 종료 절차가 끝날 때까지 대기합니다.
//
// 반환값:
//   - nil: 종료 신호 또는 스트림 종료(io.EOF)에 따른 정상 종료
//   - ErrAborted: 종료 절차 중 두 번째 종료 신호
//   - 스트림 오류: 수신 루프가 io.EOF가 아닌 오류로 끝난 경우 (정상 종료 절차를 마친 뒤 반환)
//   - 워커 오류: 워커가 Running 상태에서 스스로 종료한 경우
func (c *Coordinator) Run(ctx context.Context, interrupts <-chan os.Signal) error {
	// 강제 종료 전까지는 부모 컨텍스트가 취소되어도 디스패치와 워커를 계속 진행시킵니다.
	abortCtx, abort := context.WithCancel(context.WithoutCancel(ctx))
	defer abort()

	intakeCtx, stopIntake := context.WithCancel(abortCtx)
	defer stopIntake()

	workerDone := make(chan error, 1)
	go func() {
		workerDone <- c.worker.Run(abortCtx)
	}()

	intakeDone := make(chan error, 1)
	go func() {
		intakeDone <- c.intake(intakeCtx, abortCtx)
	}()

	c.transition(StateRunning)

	var (
		streamErr    error
		intakeExited bool
		workerErr    error
		workerExited bool
	)

	select {
	case sig := <-interrupts:
		applog.WithComponentAndFields(component, applog.Fields{
			"signal": sig.String(),
		}).Info("종료 신호 수신: 수신을 중단하고 남은 작업을 처리합니다")

	case err := <-intakeDone:
		intakeExited = true
		if err != nil {
			streamErr = apperrors.Wrap(err, apperrors.Unavailable, "업데이트 스트림 오류")
			applog.WithComponent(component).WithError(err).Error("업데이트 스트림 오류: 정상 종료 절차를 시작합니다")
		} else {
			applog.WithComponent(component).Info("업데이트 스트림 종료: 정상 종료 절차를 시작합니다")
		}

	case <-ctx.Done():
		applog.WithComponent(component).Info("상위 컨텍스트 취소: 정상 종료 절차를 시작합니다")

	case err := <-workerDone:
		workerExited = true
		workerErr = err
		if workerErr == nil {
			workerErr = apperrors.New(apperrors.Internal, "알림 워커가 예기치 않게 종료되었습니다")
		}
		applog.WithComponent(component).WithError(workerErr).Error("알림 워커 조기 종료: 수신을 중단합니다")
	}

	// Draining
	c.transition(StateDraining)
	stopIntake()

	drained := make(chan struct{})
	go func() {
		if !intakeExited {
			if err := <-intakeDone; err != nil && streamErr == nil {
				applog.WithComponent(component).WithError(err).Warn("종료 중 업데이트 스트림 오류")
			}
		}
		c.dispatcher.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case sig := <-interrupts:
		return c.abort(abort, sig)
	}

	if workerExited {
		c.transition(StateStopped)
		return workerErr
	}

	// Terminating
	c.transition(StateTerminating)

	go func() {
		if err := c.queue.Send(abortCtx, TerminateCommand{}); err != nil && !errors.Is(err, context.Canceled) {
			applog.WithComponent(component).WithError(err).Warn("종료 명령 전송 실패")
		}
	}()

	select {
	case err := <-workerDone:
		c.transition(StateStopped)
		if err != nil {
			return err
		}
		return streamErr

	case sig := <-interrupts:
		return c.abort(abort, sig)
	}
}

func (c *Coordinator) abort(cancel context.CancelFunc, sig os.Signal) error {
	c.transition(StateAborting)

	applog.WithComponentAndFields(component, applog.Fields{
		"signal":  sig.String(),
		"pending": c.queue.Len(),
	}).Warn("두 번째 종료 신호 수신: 남은 작업을 버리고 강제 종료합니다")

	cancel()
	return ErrAborted
}

// intake 업데이트를 하나씩 읽어 디스패처에 넘깁니다.
// intakeCtx 취소로 끝나면 nil, 스트림이 끝나면 nil, 그 밖의 오류는 그대로 반환합니다.
func (c *Coordinator) intake(intakeCtx, dispatchCtx context.Context) error {
	for {
		u, err := c.source.Next(intakeCtx)
		if err != nil {
			if intakeCtx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		c.dispatcher.Dispatch(dispatchCtx, u)
	}
}
