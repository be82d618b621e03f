package bot

import (
	"context"
	"fmt"

	"github.com/proskurninra/resident-bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleNewMembers — вход в групповой чат дома: создаём сессию кандидата,
// запрещаем писать и зовём в личку на знакомство.
func (b *Bot) handleNewMembers(ctx context.Context, msg *tgbotapi.Message) {
	groupID := msg.Chat.ID

	// дом фиксируем сразу, даже если регистрацию начнут позже
	if _, err := b.store.EnsureHouse(ctx, groupID); err != nil {
		b.log.Error("ensure house failed", "chat", groupID, "err", err)
	}

	for _, member := range msg.NewChatMembers {
		if member.ID == b.selfID {
			continue
		}
		sess := b.sessions.Ensure(member.ID, groupID)
		sess.Status = session.StatusAwaitingPhoto
		b.restrictPosting(groupID, member.ID, false)

		b.send(tgbotapi.NewMessage(groupID, fmt.Sprintf(
			"Добро пожаловать, %s! Чтобы получить доступ к чату, пройдите процедуру знакомства и подтверждения: https://t.me/%s?start",
			member.FirstName, b.botName)))
		b.log.Info("new candidate", "user", member.ID, "chat", groupID)
	}
}

// handleLeftMember — выход из чата дома: гасим запись жильца, при полном
// уходе из всех домов гасим и машины, сессию выбрасываем.
func (b *Bot) handleLeftMember(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.LeftChatMember.ID
	groupID := msg.Chat.ID
	if userID == b.selfID {
		return
	}

	house, err := b.store.FindHouseByChat(ctx, groupID)
	if err != nil {
		b.log.Error("find house failed", "chat", groupID, "err", err)
		return
	}
	if house != nil {
		if err := b.store.Deactivate(ctx, userID, house.ID); err != nil {
			b.log.Error("deactivate on leave failed", "user", userID, "house", house.ID, "err", err)
		}
	}

	active, err := b.store.CountActiveResidencies(ctx, userID)
	if err != nil {
		b.log.Error("count residencies failed", "user", userID, "err", err)
		return
	}
	if active == 0 {
		if err := b.store.DeactivateAllVehicles(ctx, userID); err != nil {
			b.log.Error("deactivate vehicles failed", "user", userID, "err", err)
		}
	}

	b.sessions.Delete(userID)
	b.log.Info("member left", "user", userID, "chat", groupID)
}
