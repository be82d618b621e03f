package bot

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/proskurninra/resident-bot/internal/domain/residency"
	"github.com/proskurninra/resident-bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram режет сообщения на 4096 символах, дампы шлём с запасом.
const messageChunkLimit = 3500

// telegramAPI — срез *tgbotapi.BotAPI, используемый ботом. Отдельный
// интерфейс нужен, чтобы в тестах подставлять запись отправленного.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetChat(cfg tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
}

type Bot struct {
	api      telegramAPI
	log      *slog.Logger
	store    *residency.Store
	sessions *session.Store
	adminID  int64
	selfID   int64
	botName  string
}

func New(api *tgbotapi.BotAPI, log *slog.Logger,
	store *residency.Store, sessions *session.Store,
	adminID int64, botName string) *Bot {

	return &Bot{
		api: api, log: log, store: store, sessions: sessions,
		adminID: adminID, selfID: api.Self.ID, botName: botName,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				b.handleCallback(ctx, upd.CallbackQuery)
			}
		}
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message

	if len(msg.NewChatMembers) > 0 {
		b.handleNewMembers(ctx, msg)
		return
	}
	if msg.LeftChatMember != nil {
		b.handleLeftMember(ctx, msg)
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	if !msg.Chat.IsPrivate() {
		return
	}
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

// sendChunks режет длинный текст по messageChunkLimit и шлёт частями.
// Режем по переводу строки; если строка длиннее лимита, отступаем до
// границы руны, чтобы не разорвать UTF-8 последовательность.
func (b *Bot) sendChunks(chatID int64, text string) {
	for len(text) > messageChunkLimit {
		cut := messageChunkLimit
		for cut > 0 && text[cut-1] != '\n' {
			cut--
		}
		if cut == 0 {
			cut = messageChunkLimit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		b.send(tgbotapi.NewMessage(chatID, text[:cut]))
		text = text[cut:]
	}
	if text != "" {
		b.send(tgbotapi.NewMessage(chatID, text))
	}
}

// callbackChatID — чат для ответа на нажатие кнопки. Message в колбэке
// опционален (старое или недоступное сообщение); без него отвечаем в
// личку нажавшему.
func callbackChatID(cb *tgbotapi.CallbackQuery) int64 {
	if cb.Message != nil {
		return cb.Message.Chat.ID
	}
	return cb.From.ID
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string) {
	resp := tgbotapi.NewCallback(cb.ID, text)
	if _, err := b.api.Request(resp); err != nil {
		b.log.Error("answer callback failed", "err", err)
	}
}

/*** TRANSPORT WRAPPERS ***/
// Сбой любого из них не откатывает принятое решение: логируем и идём дальше.

func (b *Bot) restrictPosting(chatID, userID int64, allowed bool) {
	cfg := tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		Permissions: &tgbotapi.ChatPermissions{
			CanSendMessages:       allowed,
			CanSendMediaMessages:  allowed,
			CanSendOtherMessages:  allowed,
			CanAddWebPagePreviews: allowed,
		},
	}
	if _, err := b.api.Request(cfg); err != nil {
		b.log.Error("restrict failed", "chat", chatID, "user", userID, "allowed", allowed, "err", err)
	}
}

// removeMember — кик с немедленным разбаном, чтобы пользователь мог
// вернуться по приглашению позже.
func (b *Bot) removeMember(chatID, userID int64) {
	ban := tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
	}
	if _, err := b.api.Request(ban); err != nil {
		b.log.Error("ban failed", "chat", chatID, "user", userID, "err", err)
	}
	unban := tgbotapi.UnbanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		OnlyIfBanned:     true,
	}
	if _, err := b.api.Request(unban); err != nil {
		b.log.Error("unban failed", "chat", chatID, "user", userID, "err", err)
	}
}

func (b *Bot) memberName(chatID, userID int64) string {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		b.log.Error("get member failed", "chat", chatID, "user", userID, "err", err)
		return fmt.Sprintf("id%d", userID)
	}
	name := member.User.FirstName
	if member.User.UserName != "" {
		name += " (@" + member.User.UserName + ")"
	}
	return name
}

func (b *Bot) chatLabel(chatID int64) string {
	chat, err := b.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		b.log.Error("get chat failed", "chat", chatID, "err", err)
		return fmt.Sprintf("%d", chatID)
	}
	if chat.UserName != "" {
		return "@" + chat.UserName
	}
	if chat.Title != "" {
		return chat.Title
	}
	return fmt.Sprintf("%d", chatID)
}
