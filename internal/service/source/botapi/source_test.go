package botapi

import (
	"context"
	"io"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/watch-relay/internal/pkg/errors"
	"github.com/darkkaiser/watch-relay/internal/service/relay"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBot struct {
	mock.Mock
	updates chan tgbotapi.Update
}

func newMockBot() *mockBot {
	return &mockBot{updates: make(chan tgbotapi.Update, 10)}
}

func (m *mockBot) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	m.Called(config)
	return m.updates
}

func (m *mockBot) StopReceivingUpdates() {
	m.Called()
	close(m.updates)
}

func groupUpdate(senderID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			MessageID: 42,
			From:      &tgbotapi.User{ID: senderID, FirstName: "Alice"},
			Chat:      &tgbotapi.Chat{ID: -1001234567890, Type: "supergroup"},
			Text:      text,
		},
	}
}

// =============================================================================
// Unit Tests: Source
// =============================================================================

func TestSource_Lifecycle(t *testing.T) {
	t.Parallel()

	bot := newMockBot()
	bot.On("GetUpdatesChan", mock.MatchedBy(func(c tgbotapi.UpdateConfig) bool {
		return c.Timeout == pollTimeoutSeconds && len(c.AllowedUpdates) == 1 && c.AllowedUpdates[0] == "message"
	})).Once()
	bot.On("StopReceivingUpdates").Once()

	s := newSourceWithBot(bot)
	require.NoError(t, s.Connect(context.Background()))

	bot.updates <- groupUpdate(111, "hello")

	u, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, relay.UpdateNewMessage, u.Kind)
	assert.Equal(t, relay.ChatGroup, u.ChatKind)
	assert.Equal(t, int64(1234567890), u.ChatID)
	assert.Equal(t, "hello", u.Text)

	s.Close()
	s.Close()

	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	bot.AssertExpectations(t)
}

func TestSource_Next_BeforeConnect(t *testing.T) {
	t.Parallel()

	s := newSourceWithBot(newMockBot())

	_, err := s.Next(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Internal))

	s.Close()
}

func TestSource_Next_ContextCancel(t *testing.T) {
	t.Parallel()

	bot := newMockBot()
	bot.On("GetUpdatesChan", mock.Anything)

	s := newSourceWithBot(bot)
	require.NoError(t, s.Connect(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// =============================================================================
// Unit Tests: Conversion
// =============================================================================

func TestConvertUpdate_NonMessage(t *testing.T) {
	t.Parallel()

	u := convertUpdate(tgbotapi.Update{EditedMessage: &tgbotapi.Message{Text: "edit"}})
	assert.Equal(t, relay.UpdateOther, u.Kind)
}

func TestConvertChatKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		chatType string
		want     relay.ChatKind
	}{
		{"private", relay.ChatPrivate},
		{"group", relay.ChatGroup},
		{"supergroup", relay.ChatGroup},
		{"channel", relay.ChatChannel},
		{"", relay.ChatUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, convertChatKind(tt.chatType), tt.chatType)
	}
}

func TestBareChatID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1234567890), bareChatID(-1001234567890))
	assert.Equal(t, int64(4567), bareChatID(-4567))
	assert.Equal(t, int64(111), bareChatID(111))
}

func TestConvertMessage_Sender(t *testing.T) {
	t.Parallel()

	t.Run("성공: 이름 조합", func(t *testing.T) {
		t.Parallel()

		m := groupUpdate(111, "x").Message
		m.From.LastName = "Kim"
		assert.Equal(t, "Alice Kim", convertMessage(m).Sender.Name)
	})

	t.Run("성공: 사용자 이름과 ID 대체", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "bob", displayName(&tgbotapi.User{ID: 2, UserName: "bob"}))
		assert.Equal(t, "3", displayName(&tgbotapi.User{ID: 3}))
	})

	t.Run("성공: 채널 명의 메시지는 발신자 없음", func(t *testing.T) {
		t.Parallel()

		m := groupUpdate(136817688, "anon").Message
		m.SenderChat = &tgbotapi.Chat{ID: -1001234567890, Type: "supergroup"}
		assert.Nil(t, convertMessage(m).Sender)
	})
}

func TestConvertMedia(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  tgbotapi.Message
		want relay.MediaKind
	}{
		{"텍스트", tgbotapi.Message{Text: "x"}, relay.MediaNone},
		{"사진", tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "p"}}}, relay.MediaPhoto},
		{"문서", tgbotapi.Message{Document: &tgbotapi.Document{FileID: "d"}}, relay.MediaDocument},
		{"스티커", tgbotapi.Message{Sticker: &tgbotapi.Sticker{FileID: "s"}}, relay.MediaSticker},
		{"음성", tgbotapi.Message{Voice: &tgbotapi.Voice{FileID: "v"}}, relay.MediaOther},
		{"위치", tgbotapi.Message{Location: &tgbotapi.Location{}}, relay.MediaOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, convertMedia(&tt.msg))
		})
	}
}

func TestConvertMessage_CaptionAsText(t *testing.T) {
	t.Parallel()

	m := groupUpdate(111, "").Message
	m.Photo = []tgbotapi.PhotoSize{{FileID: "p"}}
	m.Caption = "look"

	u := convertMessage(m)
	assert.Equal(t, "look", u.Text)
	assert.Equal(t, relay.MediaPhoto, u.Media)
}
