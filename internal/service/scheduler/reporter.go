// Package scheduler 처리 통계를 주기적으로 로그에 남기는 보고 서비스입니다.
package scheduler

import (
	"context"
	"sync"

	"github.com/darkkaiser/watch-relay/internal/service/relay"
	"github.com/darkkaiser/watch-relay/pkg/cronx"
	applog "github.com/darkkaiser/watch-relay/pkg/log"
	"github.com/robfig/cron/v3"
)

const component = "scheduler.reporter"

// StatsSource 보고에 필요한 릴레이 상태입니다. relay.Coordinator가 구현합니다.
type StatsSource interface {
	State() relay.State
	QueueLen() int
	Stats() relay.Snapshot
}

// Reporter schedule마다 직전 보고 이후의 카운터 증가분을 Info 레벨로 기록합니다.
type Reporter struct {
	schedule string
	source   StatsSource

	cron *cron.Cron

	lastMu sync.Mutex
	last   relay.Snapshot

	running   bool
	runningMu sync.Mutex
}

func NewService(schedule string, source StatsSource) *Reporter {
	return &Reporter{
		schedule: schedule,
		source:   source,
	}
}

// Start 보고 작업을 Cron 엔진에 등록하고 시작합니다.
//
// serviceStopCtx가 취소되면 엔진을 멈추고 마지막 보고를 남긴 뒤 serviceStopWG.Done을 호출합니다.
// 에러를 반환하는 경우에도 serviceStopWG.Done은 호출됩니다.
func (r *Reporter) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	r.runningMu.Lock()
	defer r.runningMu.Unlock()

	if r.source == nil {
		serviceStopWG.Done()
		return ErrStatsSourceNotInitialized
	}

	if r.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("통계 보고 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	cronLogger := cron.VerbosePrintfLogger(applog.StandardLogger())
	r.cron = cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(cronLogger),
		cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		),
	)

	if _, err := r.cron.AddFunc(r.schedule, func() { r.report("주기") }); err != nil {
		r.cron = nil
		serviceStopWG.Done()
		return NewErrInvalidCronSpec(r.schedule, err)
	}

	r.lastMu.Lock()
	r.last = r.source.Stats()
	r.lastMu.Unlock()

	r.cron.Start()
	r.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"schedule": r.schedule,
	}).Info("통계 보고 서비스 시작")

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		r.Stop()
	}()

	return nil
}

// Stop 엔진을 멈추고 실행 중인 보고가 끝날 때까지 기다린 뒤 마지막 보고를 남깁니다.
func (r *Reporter) Stop() {
	r.runningMu.Lock()
	defer r.runningMu.Unlock()

	if !r.running {
		return
	}

	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
	r.cron = nil
	r.running = false

	r.report("종료")

	applog.WithComponent(component).Info("통계 보고 서비스 종료 완료")
}

// report 직전 보고 이후의 증가분과 누적값을 기록합니다.
func (r *Reporter) report(trigger string) {
	current := r.source.Stats()

	r.lastMu.Lock()
	delta := current.Sub(r.last)
	r.last = current
	r.lastMu.Unlock()

	fields := applog.Fields{
		"trigger":         trigger,
		"state":           r.source.State().String(),
		"queue_depth":     r.source.QueueLen(),
		"total_delivered": current.Delivered,
	}
	for k, v := range delta.ToMap() {
		fields[k] = v
	}

	applog.WithComponentAndFields(component, fields).Info("처리 통계")
}
