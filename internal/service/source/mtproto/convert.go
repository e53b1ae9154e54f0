package mtproto

import (
	"strconv"
	"strings"

	"github.com/darkkaiser/watch-relay/internal/service/relay"
	"github.com/gotd/td/tg"
)

// convertMessage MTProto 메시지를 relay.Update로 변환합니다.
// 일반 메시지가 아닌 경우(서비스 메시지, 빈 메시지)는 UpdateOther입니다.
func convertMessage(e tg.Entities, msg tg.MessageClass) relay.Update {
	m, ok := msg.(*tg.Message)
	if !ok {
		return relay.Update{Kind: relay.UpdateOther}
	}

	chatKind, chatID := convertPeer(e, m.PeerID)

	u := relay.Update{
		Kind:      relay.UpdateNewMessage,
		ChatKind:  chatKind,
		ChatID:    chatID,
		MessageID: m.ID,
		Text:      m.Message,
		Media:     convertMedia(m.Media),
	}

	if from, ok := m.GetFromID(); ok {
		u.Sender = convertSender(e, from)
	} else if user, ok := m.PeerID.(*tg.PeerUser); ok {
		// 1:1 대화의 수신 메시지는 from_id가 생략됩니다.
		u.Sender = convertSender(e, user)
	}

	return u
}

func convertPeer(e tg.Entities, peer tg.PeerClass) (relay.ChatKind, int64) {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return relay.ChatPrivate, p.UserID

	case *tg.PeerChat:
		return relay.ChatGroup, p.ChatID

	case *tg.PeerChannel:
		ch, ok := e.Channels[p.ChannelID]
		if !ok {
			return relay.ChatUnknown, p.ChannelID
		}
		if ch.Megagroup {
			return relay.ChatGroup, p.ChannelID
		}
		return relay.ChatChannel, p.ChannelID
	}

	return relay.ChatUnknown, 0
}

// convertSender 사용자 발신자만 Sender로 변환합니다. 채널 명의로 게시된 메시지는 nil입니다.
func convertSender(e tg.Entities, peer tg.PeerClass) *relay.Sender {
	p, ok := peer.(*tg.PeerUser)
	if !ok {
		return nil
	}

	return &relay.Sender{
		ID:   p.UserID,
		Name: displayName(e.Users[p.UserID], p.UserID),
	}
}

func displayName(user *tg.User, id int64) string {
	if user != nil {
		if name := strings.TrimSpace(user.FirstName + " " + user.LastName); name != "" {
			return name
		}
		if user.Username != "" {
			return user.Username
		}
	}
	return strconv.FormatInt(id, 10)
}

func convertMedia(media tg.MessageMediaClass) relay.MediaKind {
	switch m := media.(type) {
	case nil, *tg.MessageMediaEmpty:
		return relay.MediaNone

	case *tg.MessageMediaPhoto:
		return relay.MediaPhoto

	case *tg.MessageMediaDocument:
		doc, ok := m.Document.(*tg.Document)
		if !ok {
			return relay.MediaDocument
		}
		for _, attr := range doc.Attributes {
			if _, ok := attr.(*tg.DocumentAttributeSticker); ok {
				return relay.MediaSticker
			}
		}
		return relay.MediaDocument
	}

	return relay.MediaOther
}
