package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/proskurninra/resident-bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const saveErrText = "Произошла ошибка при сохранении данных, попробуйте позже."

// Анкета — строго линейная: каждый шаг валидирует ввод, пишет своё поле
// в базу и двигает указатель шага. При невалидном вводе шаг не меняется,
// количество попыток не ограничено.

func (b *Bot) startQuestionnaire(chatID int64, sess *session.Session) {
	registrationsStarted.Inc()
	b.send(tgbotapi.NewMessage(chatID,
		"Ответьте на несколько вопросов, пожалуйста. Данные на серверах хранятся в зашифрованном виде в соответствии с требованиями регулятора."))
	b.askName(chatID, sess)
}

func (b *Bot) askName(chatID int64, sess *session.Session) {
	sess.Step = session.StepName
	b.send(tgbotapi.NewMessage(chatID, "Ваше имя:"))
}

func (b *Bot) processName(ctx context.Context, msg *tgbotapi.Message, sess *session.Session) {
	name := strings.TrimSpace(msg.Text)
	if !validPersonName(name) {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Имя не должно превышать 50 символов и содержать недопустимые слова. Введите корректное имя."))
		return
	}

	// дом к этому моменту определён резолвером; создаём его лениво
	house, err := b.store.EnsureHouse(ctx, sess.HouseChat)
	if err != nil {
		b.log.Error("ensure house failed", "chat", sess.HouseChat, "err", err)
		b.send(tgbotapi.NewMessage(msg.Chat.ID, saveErrText))
		return
	}
	sess.HouseID = house.ID

	r, err := b.store.UpsertName(ctx, sess.UserID, house.ID, name)
	if err != nil {
		b.log.Error("upsert name failed", "user", sess.UserID, "err", err)
		b.send(tgbotapi.NewMessage(msg.Chat.ID, saveErrText))
		return
	}
	sess.Resident = r.ID
	b.askSurname(msg.Chat.ID, sess)
}

func (b *Bot) askSurname(chatID int64, sess *session.Session) {
	sess.Step = session.StepSurname
	b.send(tgbotapi.NewMessage(chatID, "Фамилия:"))
}

func (b *Bot) processSurname(ctx context.Context, msg *tgbotapi.Message, sess *session.Session) {
	surname := strings.TrimSpace(msg.Text)
	if !validPersonName(surname) {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Фамилия не должна превышать 50 символов и содержать недопустимые слова. Введите корректную фамилию."))
		return
	}
	if err := b.store.SetSurname(ctx, sess.UserID, sess.HouseID, surname); err != nil {
		b.log.Error("set surname failed", "user", sess.UserID, "err", err)
		b.send(tgbotapi.NewMessage(msg.Chat.ID, saveErrText))
		return
	}
	b.askApartment(msg.Chat.ID, sess)
}

func (b *Bot) askApartment(chatID int64, sess *session.Session) {
	sess.Step = session.StepApartment
	b.send(tgbotapi.NewMessage(chatID, "№ квартиры:"))
}

func (b *Bot) processApartment(ctx context.Context, msg *tgbotapi.Message, sess *session.Session) {
	n, ok := parseApartment(msg.Text)
	if !ok {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Введите номер квартиры от 1 до 10000."))
		return
	}
	if err := b.store.SetApartment(ctx, sess.UserID, sess.HouseID, strconv.Itoa(n)); err != nil {
		b.log.Error("set apartment failed", "user", sess.UserID, "err", err)
		b.send(tgbotapi.NewMessage(msg.Chat.ID, saveErrText))
		return
	}
	b.askPhone(msg.Chat.ID, sess)
}

func (b *Bot) askPhone(chatID int64, sess *session.Session) {
	sess.Step = session.StepPhone
	b.send(tgbotapi.NewMessage(chatID, "Телефон в формате +79002003030:"))
}

func (b *Bot) processPhone(ctx context.Context, msg *tgbotapi.Message, sess *session.Session) {
	phone, ok := normalizePhone(msg.Text)
	if !ok {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Неверный формат телефона. Введите номер в формате +79002003030."))
		return
	}
	if err := b.store.SetPhone(ctx, sess.UserID, sess.HouseID, phone); err != nil {
		b.log.Error("set phone failed", "user", sess.UserID, "err", err)
		b.send(tgbotapi.NewMessage(msg.Chat.ID, saveErrText))
		return
	}
	b.askCarCount(msg.Chat.ID, sess)
}

func (b *Bot) askCarCount(chatID int64, sess *session.Session) {
	sess.Step = session.StepCarCount
	b.send(tgbotapi.NewMessage(chatID, "Для помощи автомобилистам укажите, сколько у вас автомобилей. Если машин нет, укажите 0:"))
}

func (b *Bot) processCarCount(_ context.Context, msg *tgbotapi.Message, sess *session.Session) {
	count, ok := parseCarCount(msg.Text)
	if !ok {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Введите число от 0 до 10."))
		return
	}
	if count == 0 {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Понятно, вы не автомобилист!"))
		b.finalizeQuestionnaire(msg.Chat.ID, sess)
		return
	}
	sess.CarCount = count
	sess.CarsAdded = 0
	b.askCarPlate(msg.Chat.ID, sess)
}

func (b *Bot) askCarPlate(chatID int64, sess *session.Session) {
	sess.Step = session.StepCarPlate
	b.send(tgbotapi.NewMessage(chatID,
		"Номер авто "+strconv.Itoa(sess.CarsAdded+1)+" в формате н001нн797 (буквы русские):"))
}

func (b *Bot) processCarPlate(ctx context.Context, msg *tgbotapi.Message, sess *session.Session) {
	plate := strings.TrimSpace(msg.Text)
	if !validPlate(plate) {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Номер авто должен содержать от 3 до 15 символов. Введите корректный номер."))
		return
	}
	if err := b.store.AddVehicle(ctx, sess.Resident, plate); err != nil {
		b.log.Error("add vehicle failed", "user", sess.UserID, "err", err)
		b.send(tgbotapi.NewMessage(msg.Chat.ID, saveErrText))
		return
	}
	sess.CarsAdded++
	if sess.CarsAdded < sess.CarCount {
		b.askCarPlate(msg.Chat.ID, sess)
		return
	}
	b.finalizeQuestionnaire(msg.Chat.ID, sess)
}

// finalizeQuestionnaire переводит кандидата в ожидание фото.
func (b *Bot) finalizeQuestionnaire(chatID int64, sess *session.Session) {
	sess.Step = session.StepNone
	sess.Status = session.StatusAwaitingPhoto
	b.send(tgbotapi.NewMessage(chatID,
		"Спасибо, анкета заполнена. Теперь отправьте АКТУАЛЬНУЮ фотографию дворовой территории из окна Вашей квартиры. Фотография будет сверяться с фактической обстановкой модераторами."))
}
