package bot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proskurninra/resident-bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// recordedAPI пишет всё отправленное вместо похода в Telegram.
type recordedAPI struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
}

func (r *recordedAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.sent = append(r.sent, c)
	return tgbotapi.Message{}, nil
}

func (r *recordedAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	r.requested = append(r.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (r *recordedAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return nil
}

func (r *recordedAPI) GetChatMember(tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	return tgbotapi.ChatMember{User: &tgbotapi.User{FirstName: "x"}}, nil
}

func (r *recordedAPI) GetChat(tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error) {
	return tgbotapi.Chat{}, nil
}

func newTestBot() (*Bot, *recordedAPI) {
	api := &recordedAPI{}
	b := &Bot{
		api:      api,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessions: session.NewStore(),
		adminID:  1,
		selfID:   999,
		botName:  "testbot",
	}
	return b, api
}

func photoMessage(userID int64) *tgbotapi.Message {
	return &tgbotapi.Message{
		From:  &tgbotapi.User{ID: userID},
		Chat:  &tgbotapi.Chat{ID: userID},
		Photo: []tgbotapi.PhotoSize{{FileID: "f1"}},
	}
}

func TestCallbackWithoutMessage(t *testing.T) {
	b, api := newTestBot()

	// Message в колбэке опционален: нажатие под устаревшим сообщением
	// не должно ронять процесс, ответ уходит в личку нажавшему
	cb := &tgbotapi.CallbackQuery{ID: "cb1", From: &tgbotapi.User{ID: 42}, Data: "start_introduction"}
	b.handleCallback(context.Background(), cb)

	require.Len(t, api.sent, 1)
	m, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), m.ChatID)
	require.Len(t, api.requested, 1, "колбэк подтверждён")
}

func TestPhotoAfterSubmissionIsReminderOnly(t *testing.T) {
	b, api := newTestBot()
	sess := b.sessions.Ensure(42, 0)
	sess.Status = session.StatusPhotoSent

	b.handlePhoto(context.Background(), photoMessage(42))

	require.Len(t, api.sent, 1, "админ повторного уведомления не получает")
	m, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), m.ChatID)
	assert.Equal(t, session.StatusPhotoSent, sess.Status)
}

func TestPhotoAwaitingForwardsToAdmin(t *testing.T) {
	b, api := newTestBot()
	sess := b.sessions.Ensure(42, 0)
	sess.Status = session.StatusAwaitingPhoto

	b.handlePhoto(context.Background(), photoMessage(42))

	require.Len(t, api.sent, 2)
	photo, ok := api.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, b.adminID, photo.ChatID)
	ack, ok := api.sent[1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), ack.ChatID)
	assert.Equal(t, session.StatusPhotoSent, sess.Status)
}

func TestPhotoWithoutSessionIsReminderOnly(t *testing.T) {
	b, api := newTestBot()

	b.handlePhoto(context.Background(), photoMessage(42))

	require.Len(t, api.sent, 1)
	m, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), m.ChatID)
}

func TestSendChunksKeepsRunesWhole(t *testing.T) {
	b, api := newTestBot()

	// одна строка без переводов: лимит попадает в середину двухбайтовой руны
	text := "a" + strings.Repeat("ы", 2200)
	b.sendChunks(7, text)

	require.Greater(t, len(api.sent), 1)
	var joined strings.Builder
	for _, c := range api.sent {
		m, ok := c.(tgbotapi.MessageConfig)
		require.True(t, ok)
		assert.True(t, utf8.ValidString(m.Text))
		assert.LessOrEqual(t, len(m.Text), messageChunkLimit)
		joined.WriteString(m.Text)
	}
	assert.Equal(t, text, joined.String())
}

func TestSendChunksSplitsOnNewline(t *testing.T) {
	b, api := newTestBot()

	line := strings.Repeat("я", 1000) + "\n"
	b.sendChunks(7, strings.Repeat(line, 3))

	require.Len(t, api.sent, 3)
	for _, c := range api.sent {
		m, ok := c.(tgbotapi.MessageConfig)
		require.True(t, ok)
		assert.Equal(t, line, m.Text, "режем по переводу строки")
	}
}
