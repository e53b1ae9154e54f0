package relay

import "context"

// UpdateKind 수신한 업데이트의 종류입니다.
type UpdateKind int

const (
	UpdateOther UpdateKind = iota
	UpdateNewMessage
)

// ChatKind 업데이트가 발생한 대화방의 종류입니다. 일반 그룹과 슈퍼그룹(megagroup)은 모두 ChatGroup입니다.
type ChatKind int

const (
	ChatUnknown ChatKind = iota
	ChatPrivate
	ChatGroup
	ChatChannel
)

// MediaKind 메시지에 첨부된 미디어의 종류입니다.
type MediaKind int

const (
	MediaNone MediaKind = iota
	MediaPhoto
	MediaDocument
	MediaSticker
	MediaOther
)

// Tag 알림 문구에 표시되는 메시지 유형 이름을 반환합니다.
func (m MediaKind) Tag() string {
	switch m {
	case MediaNone:
		return "text"
	case MediaPhoto:
		return "photo"
	case MediaDocument:
		return "document"
	case MediaSticker:
		return "sticker"
	default:
		return "unsupported media"
	}
}

// Sender 메시지 발신자입니다.
type Sender struct {
	ID   int64
	Name string
}

// Update Source가 디코딩한 채팅 이벤트 하나입니다.
type Update struct {
	Kind     UpdateKind
	ChatKind ChatKind

	// ChatID t.me/c/ 링크에 사용되는 접두사 없는 대화방 ID입니다.
	ChatID    int64
	MessageID int

	// Sender 발신자를 식별할 수 없는 메시지(익명 관리자, 채널 명의 게시 등)는 nil입니다.
	Sender *Sender
	Text   string
	Media  MediaKind
}

// Source 업데이트 스트림입니다.
//
// Next는 다음 업데이트가 도착할 때까지 대기하며, 스트림이 끝나면 io.EOF를 반환합니다.
// ctx가 취소되면 즉시 반환해야 합니다.
type Source interface {
	Next(ctx context.Context) (Update, error)
}
