package botapi

import (
	"strconv"
	"strings"

	"github.com/darkkaiser/watch-relay/internal/service/relay"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// supergroupIDOffset Bot API는 슈퍼그룹과 채널 ID를 -100 접두사를 붙인 형태(-100XXXXXXXXXX)로 전달합니다.
const supergroupIDOffset = 1000000000000

func convertUpdate(u tgbotapi.Update) relay.Update {
	if u.Message == nil {
		return relay.Update{Kind: relay.UpdateOther}
	}
	return convertMessage(u.Message)
}

func convertMessage(m *tgbotapi.Message) relay.Update {
	u := relay.Update{
		Kind:      relay.UpdateNewMessage,
		MessageID: m.MessageID,
		Text:      m.Text,
		Media:     convertMedia(m),
	}
	if u.Text == "" {
		u.Text = m.Caption
	}

	if m.Chat != nil {
		u.ChatKind = convertChatKind(m.Chat.Type)
		u.ChatID = bareChatID(m.Chat.ID)
	}

	// 익명 관리자나 채널 명의로 보낸 메시지는 SenderChat이 설정되고 From은 대리 계정입니다.
	if m.From != nil && m.SenderChat == nil {
		u.Sender = &relay.Sender{
			ID:   m.From.ID,
			Name: displayName(m.From),
		}
	}

	return u
}

func convertChatKind(chatType string) relay.ChatKind {
	switch chatType {
	case "private":
		return relay.ChatPrivate
	case "group", "supergroup":
		return relay.ChatGroup
	case "channel":
		return relay.ChatChannel
	}
	return relay.ChatUnknown
}

// bareChatID t.me/c/ 링크에 쓰는 접두사 없는 ID로 변환합니다.
//
//	-1001234567890 -> 1234567890
//	-4567          -> 4567
func bareChatID(id int64) int64 {
	if id < -supergroupIDOffset {
		return -id - supergroupIDOffset
	}
	if id < 0 {
		return -id
	}
	return id
}

func displayName(user *tgbotapi.User) string {
	if name := strings.TrimSpace(user.FirstName + " " + user.LastName); name != "" {
		return name
	}
	if user.UserName != "" {
		return user.UserName
	}
	return strconv.FormatInt(user.ID, 10)
}

func convertMedia(m *tgbotapi.Message) relay.MediaKind {
	switch {
	case m.Sticker != nil:
		return relay.MediaSticker
	case len(m.Photo) > 0:
		return relay.MediaPhoto
	case m.Document != nil:
		return relay.MediaDocument
	case m.Video != nil, m.Audio != nil, m.Voice != nil, m.VideoNote != nil,
		m.Contact != nil, m.Location != nil, m.Venue != nil, m.Poll != nil, m.Dice != nil:
		return relay.MediaOther
	}
	return relay.MediaNone
}
