package relay

import "sync/atomic"

// Stats 처리 단계별 누적 카운터입니다. 모든 고루틴에서 안전하게 갱신할 수 있습니다.
type Stats struct {
	received      atomic.Uint64
	ignored       atomic.Uint64
	enqueued      atomic.Uint64
	channelClosed atomic.Uint64
	delivered     atomic.Uint64
	suppressed    atomic.Uint64
	failed        atomic.Uint64
	panics        atomic.Uint64
}

// Snapshot 특정 시점의 카운터 값입니다.
type Snapshot struct {
	Received      uint64 `json:"received"`
	Ignored       uint64 `json:"ignored"`
	Enqueued      uint64 `json:"enqueued"`
	ChannelClosed uint64 `json:"channel_closed"`
	Delivered     uint64 `json:"delivered"`
	Suppressed    uint64 `json:"suppressed"`
	Failed        uint64 `json:"failed"`
	Panics        uint64 `json:"panics"`
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Received:      s.received.Load(),
		Ignored:       s.ignored.Load(),
		Enqueued:      s.enqueued.Load(),
		ChannelClosed: s.channelClosed.Load(),
		Delivered:     s.delivered.Load(),
		Suppressed:    s.suppressed.Load(),
		Failed:        s.failed.Load(),
		Panics:        s.panics.Load(),
	}
}

// Sub 두 Snapshot 사이의 증가분을 반환합니다.
func (s Snapshot) Sub(prev Snapshot) Snapshot {
	return Snapshot{
		Received:      s.Received - prev.Received,
		Ignored:       s.Ignored - prev.Ignored,
		Enqueued:      s.Enqueued - prev.Enqueued,
		ChannelClosed: s.ChannelClosed - prev.ChannelClosed,
		Delivered:     s.Delivered - prev.Delivered,
		Suppressed:    s.Suppressed - prev.Suppressed,
		Failed:        s.Failed - prev.Failed,
		Panics:        s.Panics - prev.Panics,
	}
}

// ToMap 구조적 로깅용 필드 맵을 반환합니다.
func (s Snapshot) ToMap() map[string]any {
	return map[string]any{
		"received":       s.Received,
		"ignored":        s.Ignored,
		"enqueued":       s.Enqueued,
		"channel_closed": s.ChannelClosed,
		"delivered":      s.Delivered,
		"suppressed":     s.Suppressed,
		"failed":         s.Failed,
		"panics":         s.Panics,
	}
}
