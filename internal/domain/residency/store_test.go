package residency

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var houseColNames = []string{"id", "chat_id", "coalesce", "coalesce", "coalesce", "date_add", "date_del"}

var residentColNames = []string{"id", "tg_id", "name", "surname", "house_id", "apartment", "phone", "date_add", "date_del"}

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewStore(mock)
}

func TestEnsureHouseReturnsExistingOnConflict(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectQuery(`INSERT INTO houses`).
		WithArgs(int64(-100500)).
		WillReturnRows(pgxmock.NewRows(houseColNames).
			AddRow(int64(1), int64(-100500), "Дом 7", "Москва", "ул. Ленина 7", time.Now(), nil))

	h, err := store.EnsureHouse(context.Background(), -100500)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, int64(1), h.ID)
	assert.Equal(t, int64(-100500), h.ChatID)
	assert.Nil(t, h.DateDel)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindHouseByChatMissing(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectQuery(`SELECT .+ FROM houses WHERE chat_id`).
		WithArgs(int64(-42)).
		WillReturnError(pgx.ErrNoRows)

	h, err := store.FindHouseByChat(context.Background(), -42)
	require.NoError(t, err)
	assert.Nil(t, h)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertNameResurrectsRow(t *testing.T) {
	mock, store := newMock(t)

	houseID := int64(3)
	mock.ExpectQuery(`INSERT INTO residents`).
		WithArgs(int64(777), houseID, "Иван").
		WillReturnRows(pgxmock.NewRows(residentColNames).
			AddRow(int64(9), int64(777), "Иван", "", &houseID, "", "", time.Now(), nil))

	r, err := store.UpsertName(context.Background(), 777, houseID, "Иван")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, int64(9), r.ID)
	assert.True(t, r.Active())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateCascadesToVehicles(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectQuery(`UPDATE residents SET date_del`).
		WithArgs(int64(777), int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectExec(`UPDATE vehicles SET date_del`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	require.NoError(t, store.Deactivate(context.Background(), 777, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateMissingResidentIsNoop(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectQuery(`UPDATE residents SET date_del`).
		WithArgs(int64(777), int64(3)).
		WillReturnError(pgx.ErrNoRows)

	// машин не трогаем: второго запроса быть не должно
	require.NoError(t, store.Deactivate(context.Background(), 777, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReactivateLeavesVehiclesAlone(t *testing.T) {
	mock, store := newMock(t)

	houseID := int64(3)
	mock.ExpectQuery(`UPDATE residents SET date_del = NULL`).
		WithArgs(int64(777), houseID).
		WillReturnRows(pgxmock.NewRows(residentColNames).
			AddRow(int64(9), int64(777), "Иван", "Петров", &houseID, "12", "+79002003030", time.Now(), nil))

	r, err := store.Reactivate(context.Background(), 777, houseID)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, r.Active())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountActiveResidencies(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM residents`).
		WithArgs(int64(777)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	n, err := store.CountActiveResidencies(context.Background(), 777)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByHouseActiveOnly(t *testing.T) {
	mock, store := newMock(t)

	houseID := int64(3)
	mock.ExpectQuery(`SELECT .+ FROM residents WHERE house_id = \$1 AND date_del IS NULL`).
		WithArgs(houseID).
		WillReturnRows(pgxmock.NewRows(residentColNames).
			AddRow(int64(9), int64(777), "Иван", "Петров", &houseID, "12", "+79002003030", time.Now(), nil))
	mock.ExpectQuery(`SELECT plate FROM vehicles`).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"plate"}).AddRow("н001нн797"))

	entries, err := store.ListByHouse(context.Background(), houseID, true)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Иван", entries[0].Resident.Name)
	assert.Equal(t, []string{"н001нн797"}, entries[0].Plates)

	require.NoError(t, mock.ExpectationsWereMet())
}
