package relay

import "slices"

// WatchList 알림 대상 발신자 ID 집합입니다.
// 생성 후에는 변경되지 않으므로 여러 고루틴에서 잠금 없이 읽을 수 있습니다.
type WatchList struct {
	ids map[int64]struct{}
}

func NewWatchList(ids []int64) *WatchList {
	w := &WatchList{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		w.ids[id] = struct{}{}
	}
	return w
}

func (w *WatchList) Contains(id int64) bool {
	_, ok := w.ids[id]
	return ok
}

func (w *WatchList) Len() int {
	return len(w.ids)
}

// IDs 정렬된 ID 목록을 반환합니다.
func (w *WatchList) IDs() []int64 {
	ids := make([]int64, 0, len(w.ids))
	for id := range w.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
