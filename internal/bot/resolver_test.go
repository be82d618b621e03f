package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/proskurninra/resident-bot/internal/domain/residency"
	"github.com/proskurninra/resident-bot/internal/session"
)

func TestPickHouseCachedWins(t *testing.T) {
	sess := &session.Session{UserID: 1, HouseChat: -100}
	houses := []residency.House{{ID: 1, ChatID: -200}, {ID: 2, ChatID: -300}}

	chatID, options := pickHouse(sess, houses)
	assert.Equal(t, int64(-100), chatID)
	assert.Nil(t, options)
}

func TestPickHouseSingleCaches(t *testing.T) {
	sess := &session.Session{UserID: 1}

	chatID, options := pickHouse(sess, []residency.House{{ID: 1, ChatID: -200}})
	assert.Equal(t, int64(-200), chatID)
	assert.Nil(t, options)
	assert.Equal(t, int64(-200), sess.HouseChat)
}

func TestPickHouseAmbiguousReturnsAll(t *testing.T) {
	sess := &session.Session{UserID: 1}
	houses := []residency.House{{ID: 1, ChatID: -200}, {ID: 2, ChatID: -300}}

	chatID, options := pickHouse(sess, houses)
	assert.Equal(t, int64(0), chatID, "при нескольких домах сами не выбираем")
	assert.Equal(t, houses, options)
	assert.Equal(t, int64(0), sess.HouseChat, "кэш не трогаем до решения админа")
}

func TestPickHouseNone(t *testing.T) {
	chatID, options := pickHouse(&session.Session{UserID: 1}, nil)
	assert.Equal(t, int64(0), chatID)
	assert.Nil(t, options)
}

func TestPickHouseNilSession(t *testing.T) {
	chatID, options := pickHouse(nil, []residency.House{{ID: 1, ChatID: -200}})
	assert.Equal(t, int64(-200), chatID)
	assert.Nil(t, options)
}
