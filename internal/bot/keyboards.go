package bot

import (
	"fmt"

	"github.com/proskurninra/resident-bot/internal/domain/residency"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func introKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Познакомиться", "start_introduction"),
		),
	)
}

func confirmResidenceKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Живу тут и готов подтвердить", "confirm_residence"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Не живу тут", "not_residing"),
		),
	)
}

// decisionKeyboard — три кнопки решения админа под фото кандидата.
func decisionKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Дать доступ", fmt.Sprintf("allow:%d", userID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Отклонить доступ", fmt.Sprintf("deny:%d", userID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Запросить новое фото", fmt.Sprintf("request_photo:%d", userID)),
		),
	)
}

// housePickKeyboard — выбор дома админом, когда пользователь состоит в
// нескольких. decision прокидывается в callback, чтобы после выбора
// продолжить отложенное действие.
func housePickKeyboard(decision string, userID int64, houses []residency.House) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(houses))
	for _, h := range houses {
		label := h.Name
		if label == "" {
			label = fmt.Sprintf("дом %d", h.ID)
		}
		label = fmt.Sprintf("%s (%d)", label, h.ChatID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label,
				fmt.Sprintf("house:%s:%d:%d", decision, userID, h.ChatID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
