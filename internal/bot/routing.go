package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/proskurninra/resident-bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		if !msg.Chat.IsPrivate() {
			return
		}
		firstName := "сосед"
		if msg.From.FirstName != "" {
			firstName = msg.From.FirstName
		}
		m := tgbotapi.NewMessage(msg.Chat.ID,
			"Привет, "+firstName+"! Я бот чата жильцов. Закрытый чат жителей: для участия нужно познакомиться и пройти идентификацию. Это займёт 2 минуты.")
		m.ReplyMarkup = introKeyboard()
		b.send(m)

	case "help":
		b.send(tgbotapi.NewMessage(msg.Chat.ID,
			"Команды:\n/start — начать знакомство\n/help — помощь"))

	case "db":
		if !b.fromAdmin(msg) {
			return
		}
		b.handleDump(ctx, msg.Chat.ID)

	case "check":
		if !b.fromAdmin(msg) {
			return
		}
		chatID, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
		if err != nil {
			b.send(tgbotapi.NewMessage(msg.Chat.ID, "Использование: /check <chat_id дома>"))
			return
		}
		b.handleCheck(ctx, msg.Chat.ID, chatID)

	case "checkall":
		if !b.fromAdmin(msg) {
			return
		}
		b.handleCheckAll(ctx, msg.Chat.ID)

	case "export":
		if !b.fromAdmin(msg) {
			return
		}
		b.handleExport(ctx, msg.Chat.ID)

	default:
		if msg.Chat.IsPrivate() {
			b.send(tgbotapi.NewMessage(msg.Chat.ID, "Не знаю такую команду. Наберите /help"))
		}
	}
}

func (b *Bot) fromAdmin(msg *tgbotapi.Message) bool {
	if msg.From.ID != b.adminID {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Нет доступа"))
		return false
	}
	return true
}

// handleStateMessage диспетчеризует текст по указателю шага анкеты.
// Сообщения админа перехватываются, пока открыт слот «жду причину».
func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID == b.adminID && b.sessions.PendingReason() != 0 {
		b.handleAdminReason(ctx, msg)
		return
	}

	sess := b.sessions.Get(msg.From.ID)
	if sess == nil || sess.Step == session.StepNone {
		if sess != nil && (sess.Status == session.StatusAwaitingPhoto || sess.Status == session.StatusAwaitingNewPhoto) {
			b.send(tgbotapi.NewMessage(msg.Chat.ID, "Напоминаю, что я жду от вас фото для идентификации."))
			return
		}
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Чтобы начать знакомство, наберите /start"))
		return
	}

	switch sess.Step {
	case session.StepName:
		b.processName(ctx, msg, sess)
	case session.StepSurname:
		b.processSurname(ctx, msg, sess)
	case session.StepApartment:
		b.processApartment(ctx, msg, sess)
	case session.StepPhone:
		b.processPhone(ctx, msg, sess)
	case session.StepCarCount:
		b.processCarCount(ctx, msg, sess)
	case session.StepCarPlate:
		b.processCarPlate(ctx, msg, sess)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data

	switch {
	case data == "start_introduction":
		sess := b.sessions.Ensure(cb.From.ID, 0)
		sess.Status = session.StatusAwaitingConfirm
		m := tgbotapi.NewMessage(callbackChatID(cb), "Пожалуйста, подтвердите ваше проживание:")
		m.ReplyMarkup = confirmResidenceKeyboard()
		b.send(m)
		b.answerCallback(cb, "")

	case data == "confirm_residence":
		b.beginRegistration(ctx, cb)

	case data == "not_residing":
		b.handleNotResiding(ctx, cb)

	case strings.HasPrefix(data, "allow:"), strings.HasPrefix(data, "deny:"), strings.HasPrefix(data, "request_photo:"):
		if cb.From.ID != b.adminID {
			b.answerCallback(cb, "Нет доступа")
			return
		}
		parts := strings.SplitN(data, ":", 2)
		userID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			b.answerCallback(cb, "")
			return
		}
		b.handleDecision(ctx, cb, parts[0], userID)

	case strings.HasPrefix(data, "house:"):
		if cb.From.ID != b.adminID {
			b.answerCallback(cb, "Нет доступа")
			return
		}
		// house:<decision>:<userID>:<chatID>
		parts := strings.Split(data, ":")
		if len(parts) != 4 {
			b.answerCallback(cb, "")
			return
		}
		userID, err1 := strconv.ParseInt(parts[2], 10, 64)
		houseChat, err2 := strconv.ParseInt(parts[3], 10, 64)
		if err1 != nil || err2 != nil {
			b.answerCallback(cb, "")
			return
		}
		b.handleHousePick(ctx, cb, parts[1], userID, houseChat)

	default:
		b.answerCallback(cb, "")
	}
}
