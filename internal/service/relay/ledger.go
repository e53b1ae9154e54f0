package relay

import "fmt"

// Ledger 발신자별 마지막 알림 시각(Unix ms)입니다.
//
// 워커 고루틴만 읽고 쓰므로 동기화하지 않습니다.
// 키 집합은 항상 WatchList를 포함하며, 항목은 삭제되지 않습니다.
type Ledger struct {
	last map[int64]int64
}

// NewLedger WatchList의 모든 발신자를 0으로 초기화한 Ledger를 생성합니다.
func NewLedger(watch *WatchList) *Ledger {
	l := &Ledger{last: make(map[int64]int64, watch.Len())}
	for _, id := range watch.IDs() {
		l.last[id] = 0
	}
	return l
}

// Last 발신자의 마지막 알림 시각을 반환합니다.
// 등록되지 않은 발신자는 디스패처의 필터링 계약 위반이므로 패닉합니다.
func (l *Ledger) Last(senderID int64) int64 {
	ts, ok := l.last[senderID]
	if !ok {
		panic(fmt.Sprintf("ledger에 등록되지 않은 발신자입니다: %d", senderID))
	}
	return ts
}

func (l *Ledger) Record(senderID, ts int64) {
	l.last[senderID] = ts
}

func (l *Ledger) Len() int {
	return len(l.last)
}
