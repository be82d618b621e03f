package bot

import (
	"context"

	"github.com/proskurninra/resident-bot/internal/domain/residency"
	"github.com/proskurninra/resident-bot/internal/session"
)

// pickHouse — чистое правило выбора дома. Закэшированный в сессии дом
// побеждает; единственный известный дом выбирается и кэшируется;
// при нескольких вариантах не угадываем — возвращаем их все, решать
// будет админ.
func pickHouse(sess *session.Session, houses []residency.House) (chatID int64, options []residency.House) {
	if sess != nil && sess.HouseChat != 0 {
		return sess.HouseChat, nil
	}
	switch len(houses) {
	case 0:
		return 0, nil
	case 1:
		if sess != nil {
			sess.HouseChat = houses[0].ChatID
		}
		return houses[0].ChatID, nil
	default:
		return 0, houses
	}
}

// resolveHouse определяет дом пользователя по сессии и базе.
// options != nil означает «неоднозначно, нужен выбор админа».
func (b *Bot) resolveHouse(ctx context.Context, sess *session.Session, userID int64) (chatID int64, options []residency.House, err error) {
	if sess != nil && sess.HouseChat != 0 {
		return sess.HouseChat, nil, nil
	}
	houses, err := b.store.ListHousesByUser(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	chatID, options = pickHouse(sess, houses)
	return chatID, options, nil
}
