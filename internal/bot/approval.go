package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/proskurninra/resident-bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handlePhoto принимает фото только в статусах awaiting_photo /
// awaiting_new_photo. Всё остальное (включая повторное фото после
// photo_sent) — вежливое напоминание без уведомления админа.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	sess := b.sessions.Get(userID)
	if sess == nil || (sess.Status != session.StatusAwaitingPhoto && sess.Status != session.StatusAwaitingNewPhoto) {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Напоминаю, что я жду от вас фото для идентификации."))
		return
	}

	photosReceived.Inc()
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	photo := tgbotapi.NewPhoto(b.adminID, tgbotapi.FileID(fileID))
	photo.Caption = b.candidateSummary(ctx, sess)
	photo.ReplyMarkup = decisionKeyboard(userID)
	b.send(photo)

	b.send(tgbotapi.NewMessage(msg.Chat.ID, "Фото получено. Ожидайте подтверждения."))
	sess.Status = session.StatusPhotoSent
}

// candidateSummary — анкетные данные кандидата для подписи к фото.
func (b *Bot) candidateSummary(ctx context.Context, sess *session.Session) string {
	lines := []string{fmt.Sprintf("Кандидат id%d", sess.UserID)}
	if sess.HouseChat != 0 {
		lines = append(lines, fmt.Sprintf("Дом: %d", sess.HouseChat))
	}
	if sess.HouseID != 0 {
		if r, err := b.store.FindResident(ctx, sess.UserID, sess.HouseID); err == nil && r != nil {
			lines = append(lines,
				fmt.Sprintf("ФИО: %s %s", r.Name, r.Surname),
				fmt.Sprintf("Квартира: %s, телефон: %s", r.Apartment, r.Phone))
		}
	}
	return strings.Join(lines, "\n")
}

// handleDecision — нажатие админом allow/deny/request_photo под фото.
func (b *Bot) handleDecision(ctx context.Context, cb *tgbotapi.CallbackQuery, decision string, userID int64) {
	if decision == "request_photo" {
		adminDecisions.WithLabelValues("request_photo").Inc()
		b.sessions.SetPendingReason(userID)
		b.send(tgbotapi.NewMessage(b.adminID,
			fmt.Sprintf("Укажите причину запроса нового фото для пользователя id%d следующим сообщением.", userID)))
		b.answerCallback(cb, "Жду причину")
		return
	}

	sess := b.sessions.Ensure(userID, 0)
	houseChat, options, err := b.resolveHouse(ctx, sess, userID)
	if err != nil {
		b.log.Error("resolve house failed", "user", userID, "err", err)
		b.answerCallback(cb, "Ошибка, попробуйте ещё раз")
		return
	}
	if len(options) > 0 {
		m := tgbotapi.NewMessage(b.adminID,
			fmt.Sprintf("Пользователь id%d состоит в нескольких домах. Выберите дом:", userID))
		m.ReplyMarkup = housePickKeyboard(decision, userID, options)
		b.send(m)
		b.send(tgbotapi.NewMessage(userID, "Ожидайте уточнения от администратора."))
		b.answerCallback(cb, "Нужен выбор дома")
		return
	}
	if houseChat == 0 {
		b.send(tgbotapi.NewMessage(b.adminID, fmt.Sprintf("Дом пользователя id%d не определён.", userID)))
		b.send(tgbotapi.NewMessage(userID, "Группа не определена, ожидайте решения администратора."))
		b.answerCallback(cb, "Дом не определён")
		return
	}

	switch decision {
	case "allow":
		b.approve(ctx, sess, userID, houseChat)
		b.answerCallback(cb, "Доступ предоставлен.")
	case "deny":
		b.deny(ctx, sess, userID, houseChat)
		b.answerCallback(cb, "Доступ отклонён!")
	}
}

// handleHousePick — админ выбрал дом из списка; кэшируем выбор и
// продолжаем отложенное действие.
func (b *Bot) handleHousePick(ctx context.Context, cb *tgbotapi.CallbackQuery, decision string, userID, houseChat int64) {
	sess := b.sessions.Ensure(userID, houseChat)
	switch decision {
	case "allow":
		b.approve(ctx, sess, userID, houseChat)
		b.answerCallback(cb, "Доступ предоставлен.")
	case "deny":
		b.deny(ctx, sess, userID, houseChat)
		b.answerCallback(cb, "Доступ отклонён!")
	case "reg":
		// личный чат пользователя совпадает с его id
		b.startQuestionnaire(userID, sess)
		b.answerCallback(cb, "Дом выбран")
	default:
		b.answerCallback(cb, "")
	}
}

// approve снимает ограничения и воскрешает запись жильца вместе с его
// машинами. Сбои уведомлений решение не отменяют.
func (b *Bot) approve(ctx context.Context, sess *session.Session, userID, houseChat int64) {
	adminDecisions.WithLabelValues("allow").Inc()

	house, err := b.store.EnsureHouse(ctx, houseChat)
	if err != nil {
		b.log.Error("ensure house failed", "chat", houseChat, "err", err)
		b.send(tgbotapi.NewMessage(b.adminID, "Не удалось сохранить дом, доступ не выдан."))
		return
	}

	b.restrictPosting(houseChat, userID, true)

	r, err := b.store.Reactivate(ctx, userID, house.ID)
	if err != nil {
		b.log.Error("reactivate failed", "user", userID, "house", house.ID, "err", err)
	}
	if r == nil && err == nil {
		// первое одобрение до анкеты: заводим минимальную запись
		r, err = b.store.UpsertName(ctx, userID, house.ID, "")
		if err != nil {
			b.log.Error("create resident failed", "user", userID, "house", house.ID, "err", err)
		}
	}
	if r != nil {
		if err := b.store.ReactivateVehicles(ctx, r.ID); err != nil {
			b.log.Error("reactivate vehicles failed", "resident", r.ID, "err", err)
		}
		sess.Resident = r.ID
		sess.HouseID = house.ID
	}

	sess.Status = session.StatusApproved
	sess.HouseChat = houseChat

	name := b.memberName(houseChat, userID)
	b.send(tgbotapi.NewMessage(userID, fmt.Sprintf(
		"Доступ разрешён, вы можете воспользоваться всеми возможностями группы жильцов (%s).", b.chatLabel(houseChat))))
	b.send(tgbotapi.NewMessage(houseChat, fmt.Sprintf(
		"Приветствуем пользователя %s. Он получает доступ ко всем возможностям группы. Поздравляем!", name)))
	b.send(tgbotapi.NewMessage(b.adminID, fmt.Sprintf("Доступ пользователю %s предоставлен.", name)))
	b.log.Info("access granted", "user", userID, "chat", houseChat)
}

// deny гасит запись жильца (с каскадом на машины) и удаляет из чата:
// кик с разбаном, чтобы вернуться по приглашению было можно. Сессия
// остаётся — повторный вход её переиспользует.
func (b *Bot) deny(ctx context.Context, sess *session.Session, userID, houseChat int64) {
	adminDecisions.WithLabelValues("deny").Inc()

	name := b.memberName(houseChat, userID)

	house, err := b.store.FindHouseByChat(ctx, houseChat)
	if err != nil {
		b.log.Error("find house failed", "chat", houseChat, "err", err)
	}
	if house != nil {
		if err := b.store.Deactivate(ctx, userID, house.ID); err != nil {
			b.log.Error("deactivate failed", "user", userID, "house", house.ID, "err", err)
		}
	}

	b.removeMember(houseChat, userID)
	sess.Status = session.StatusDenied

	b.send(tgbotapi.NewMessage(userID,
		"Ваш запрос отклонён, потому что вы прислали не релевантное фото. Напоминаю, что следовало прислать фото вида из окна вашей квартиры, которое вы сделали сегодня."))
	b.send(tgbotapi.NewMessage(houseChat, fmt.Sprintf(
		"Пользователю %s доступ не предоставлен, и он удалён за предоставление не релевантной фотографии.", name)))
	b.send(tgbotapi.NewMessage(b.adminID, fmt.Sprintf(
		"Доступ пользователю %s ОТКЛОНЁН, он удалён из группы (%d).", name, houseChat)))
	b.log.Info("access denied", "user", userID, "chat", houseChat)
}

// handleAdminReason — следующее текстовое сообщение админа после
// «Запросить новое фото» становится причиной и пересылается кандидату.
func (b *Bot) handleAdminReason(_ context.Context, msg *tgbotapi.Message) {
	userID := b.sessions.PendingReason()
	sess := b.sessions.Get(userID)
	if sess == nil {
		sess = b.sessions.Ensure(userID, 0)
	}

	sess.Reason = msg.Text
	sess.Status = session.StatusAwaitingNewPhoto
	b.sessions.SetPendingReason(0)

	b.send(tgbotapi.NewMessage(b.adminID, "Причина сохранена."))
	b.send(tgbotapi.NewMessage(userID, fmt.Sprintf("Требуется новое фото по причине: %s", sess.Reason)))
	if sess.HouseChat != 0 {
		b.send(tgbotapi.NewMessage(sess.HouseChat, fmt.Sprintf(
			"Пользователю id%d требуется уточнение. Запрос отправлен личным сообщением от чат-бота.", userID)))
	}
}

// beginRegistration — кнопка «Живу тут и готов подтвердить».
func (b *Bot) beginRegistration(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	chatID := callbackChatID(cb)
	sess := b.sessions.Ensure(userID, 0)

	houseChat, options, err := b.resolveHouse(ctx, sess, userID)
	if err != nil {
		b.log.Error("resolve house failed", "user", userID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, saveErrText))
		b.answerCallback(cb, "")
		return
	}
	if len(options) > 0 {
		m := tgbotapi.NewMessage(b.adminID,
			fmt.Sprintf("Пользователь id%d состоит в нескольких домах. Выберите дом для регистрации:", userID))
		m.ReplyMarkup = housePickKeyboard("reg", userID, options)
		b.send(m)
		b.send(tgbotapi.NewMessage(chatID, "Вы состоите в нескольких домах. Ожидайте уточнения от администратора."))
		b.answerCallback(cb, "")
		return
	}
	if houseChat == 0 {
		b.send(tgbotapi.NewMessage(chatID,
			"Сначала вступите в чат вашего дома и перейдите по ссылке из приветственного сообщения."))
		b.answerCallback(cb, "")
		return
	}

	// уже зарегистрированных активных жильцов повторно не анкетируем
	if house, err := b.store.FindHouseByChat(ctx, houseChat); err == nil && house != nil {
		r, err := b.store.FindResident(ctx, userID, house.ID)
		if err == nil && r != nil {
			if r.Active() {
				b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
					"%s, мы тебя узнали: ты уже зарегистрирован в чате %d. Если есть проблемы, свяжись с админом.", r.Name, houseChat)))
				b.answerCallback(cb, "")
				return
			}
			// прежняя запись была погашена — воскрешаем и прогоняем анкету заново
			if _, err := b.store.Reactivate(ctx, userID, house.ID); err != nil {
				b.log.Error("reactivate failed", "user", userID, "house", house.ID, "err", err)
			}
		}
	}

	b.startQuestionnaire(chatID, sess)
	b.answerCallback(cb, "")
}

// handleNotResiding — пользователь сам признал, что не живёт в доме.
func (b *Bot) handleNotResiding(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	b.send(tgbotapi.NewMessage(callbackChatID(cb), "Чат предназначен только для жильцов."))

	sess := b.sessions.Get(userID)
	if sess != nil && sess.HouseChat != 0 {
		if house, err := b.store.FindHouseByChat(ctx, sess.HouseChat); err == nil && house != nil {
			if err := b.store.Deactivate(ctx, userID, house.ID); err != nil {
				b.log.Error("deactivate failed", "user", userID, "house", house.ID, "err", err)
			}
		}
		b.removeMember(sess.HouseChat, userID)
		b.send(tgbotapi.NewMessage(sess.HouseChat, fmt.Sprintf(
			"Пользователь id%d удалён из чата: отказался проходить регистрацию.", userID)))
		sess.Status = session.StatusDenied
	}
	b.answerCallback(cb, "")
}
