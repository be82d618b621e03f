package residency

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB — срез pgxpool.Pool, достаточный стору. Отдельный интерфейс нужен,
// чтобы в тестах подставлять pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store владеет таблицами houses/residents/vehicles и инвариантом
// каскадного soft-delete: деактивация жильца гасит его машины одним
// вызовом, а не рассыпанными по обработчикам UPDATE-ами.
type Store struct {
	db DB
}

func NewStore(db DB) *Store { return &Store{db: db} }

const houseCols = `id, chat_id, COALESCE(house_name,''), COALESCE(house_city,''), COALESCE(house_address,''), date_add, date_del`

func scanHouse(row pgx.Row) (*House, error) {
	var h House
	if err := row.Scan(&h.ID, &h.ChatID, &h.Name, &h.City, &h.Address, &h.DateAdd, &h.DateDel); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

func (s *Store) FindHouseByChat(ctx context.Context, chatID int64) (*House, error) {
	row := s.db.QueryRow(ctx, `SELECT `+houseCols+` FROM houses WHERE chat_id = $1`, chatID)
	return scanHouse(row)
}

// EnsureHouse создаёт дом по chat_id, если его ещё нет. Повторный вызов
// возвращает существующую строку (конфликт по chat_id — не ошибка).
func (s *Store) EnsureHouse(ctx context.Context, chatID int64) (*House, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO houses (chat_id) VALUES ($1)
		ON CONFLICT (chat_id) DO UPDATE SET chat_id = EXCLUDED.chat_id
		RETURNING `+houseCols, chatID)
	return scanHouse(row)
}

// ListHousesByUser — все дома, где у пользователя есть запись жильца,
// активная или нет. Нужен резолверу для мульти-дома.
func (s *Store) ListHousesByUser(ctx context.Context, tgID int64) ([]House, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+houseCols+`
		FROM houses
		WHERE id IN (SELECT house_id FROM residents WHERE tg_id = $1 AND house_id IS NOT NULL)
		ORDER BY id`, tgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []House
	for rows.Next() {
		var h House
		if err := rows.Scan(&h.ID, &h.ChatID, &h.Name, &h.City, &h.Address, &h.DateAdd, &h.DateDel); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) ListHouses(ctx context.Context) ([]House, error) {
	rows, err := s.db.Query(ctx, `SELECT `+houseCols+` FROM houses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []House
	for rows.Next() {
		var h House
		if err := rows.Scan(&h.ID, &h.ChatID, &h.Name, &h.City, &h.Address, &h.DateAdd, &h.DateDel); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

const residentCols = `id, tg_id, COALESCE(name,''), COALESCE(surname,''), house_id, COALESCE(apartment,''), COALESCE(phone,''), date_add, date_del`

func scanResident(row pgx.Row) (*Resident, error) {
	var r Resident
	if err := row.Scan(&r.ID, &r.TgID, &r.Name, &r.Surname, &r.HouseID, &r.Apartment, &r.Phone, &r.DateAdd, &r.DateDel); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (s *Store) FindResident(ctx context.Context, tgID, houseID int64) (*Resident, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+residentCols+` FROM residents WHERE tg_id = $1 AND house_id = $2`, tgID, houseID)
	return scanResident(row)
}

// UpsertName — первый шаг анкеты. Повторная регистрация в том же доме
// обновляет ту же строку, воскрешает её (date_del=NULL) и освежает
// date_add.
func (s *Store) UpsertName(ctx context.Context, tgID, houseID int64, name string) (*Resident, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO residents (tg_id, house_id, name) VALUES ($1, $2, $3)
		ON CONFLICT (tg_id, house_id) DO UPDATE SET
			name     = EXCLUDED.name,
			date_add = now(),
			date_del = NULL
		RETURNING `+residentCols, tgID, houseID, name)
	return scanResident(row)
}

func (s *Store) SetSurname(ctx context.Context, tgID, houseID int64, surname string) error {
	_, err := s.db.Exec(ctx, `UPDATE residents SET surname = $3 WHERE tg_id = $1 AND house_id = $2`, tgID, houseID, surname)
	return err
}

func (s *Store) SetApartment(ctx context.Context, tgID, houseID int64, apartment string) error {
	_, err := s.db.Exec(ctx, `UPDATE residents SET apartment = $3 WHERE tg_id = $1 AND house_id = $2`, tgID, houseID, apartment)
	return err
}

func (s *Store) SetPhone(ctx context.Context, tgID, houseID int64, phone string) error {
	_, err := s.db.Exec(ctx, `UPDATE residents SET phone = $3 WHERE tg_id = $1 AND house_id = $2`, tgID, houseID, phone)
	return err
}

// Deactivate помечает жильца удалённым и каскадно гасит его активные
// машины. Отсутствие записи — не ошибка (жилец мог не дойти до анкеты).
func (s *Store) Deactivate(ctx context.Context, tgID, houseID int64) error {
	row := s.db.QueryRow(ctx, `
		UPDATE residents SET date_del = now()
		WHERE tg_id = $1 AND house_id = $2
		RETURNING id`, tgID, houseID)
	var residentID int64
	if err := row.Scan(&residentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	_, err := s.db.Exec(ctx, `
		UPDATE vehicles SET date_del = now()
		WHERE resident_id = $1 AND date_del IS NULL`, residentID)
	return err
}

// Reactivate воскрешает запись жильца. Машины НЕ трогает: после
// повторного одобрения их возвращает отдельный ReactivateVehicles.
func (s *Store) Reactivate(ctx context.Context, tgID, houseID int64) (*Resident, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE residents SET date_del = NULL, date_add = now()
		WHERE tg_id = $1 AND house_id = $2
		RETURNING `+residentCols, tgID, houseID)
	return scanResident(row)
}

func (s *Store) ReactivateVehicles(ctx context.Context, residentID int64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE vehicles SET date_del = NULL WHERE resident_id = $1`, residentID)
	return err
}

func (s *Store) AddVehicle(ctx context.Context, residentID int64, plate string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO vehicles (resident_id, plate) VALUES ($1, $2)`, residentID, plate)
	return err
}

// CountActiveResidencies — в скольких домах пользователь ещё активен.
func (s *Store) CountActiveResidencies(ctx context.Context, tgID int64) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM residents WHERE tg_id = $1 AND date_del IS NULL`, tgID).Scan(&n)
	return n, err
}

// DeactivateAllVehicles гасит машины пользователя во всех домах. Вызывается,
// когда у него не осталось ни одной активной записи жильца.
func (s *Store) DeactivateAllVehicles(ctx context.Context, tgID int64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE vehicles SET date_del = now()
		WHERE date_del IS NULL
		  AND resident_id IN (SELECT id FROM residents WHERE tg_id = $1)`, tgID)
	return err
}

// ListByHouse — жильцы дома с номерами их машин, для /check и выгрузки.
func (s *Store) ListByHouse(ctx context.Context, houseID int64, activeOnly bool) ([]HouseEntry, error) {
	q := `SELECT ` + residentCols + ` FROM residents WHERE house_id = $1`
	if activeOnly {
		q += ` AND date_del IS NULL`
	}
	q += ` ORDER BY id`

	rows, err := s.db.Query(ctx, q, houseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HouseEntry
	for rows.Next() {
		var r Resident
		if err := rows.Scan(&r.ID, &r.TgID, &r.Name, &r.Surname, &r.HouseID, &r.Apartment, &r.Phone, &r.DateAdd, &r.DateDel); err != nil {
			return nil, err
		}
		entries = append(entries, HouseEntry{Resident: r})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		plates, err := s.listPlates(ctx, entries[i].Resident.ID, activeOnly)
		if err != nil {
			return nil, err
		}
		entries[i].Plates = plates
	}
	return entries, nil
}

func (s *Store) listPlates(ctx context.Context, residentID int64, activeOnly bool) ([]string, error) {
	q := `SELECT plate FROM vehicles WHERE resident_id = $1`
	if activeOnly {
		q += ` AND date_del IS NULL`
	}
	q += ` ORDER BY id`

	rows, err := s.db.Query(ctx, q, residentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plates []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		plates = append(plates, p)
	}
	return plates, rows.Err()
}

// DumpAll возвращает все три таблицы целиком для админской команды /db.
func (s *Store) DumpAll(ctx context.Context) ([]House, []Resident, []Vehicle, error) {
	houses, err := s.ListHouses(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	rows, err := s.db.Query(ctx, `SELECT `+residentCols+` FROM residents ORDER BY id`)
	if err != nil {
		return nil, nil, nil, err
	}
	var residents []Resident
	for rows.Next() {
		var r Resident
		if err := rows.Scan(&r.ID, &r.TgID, &r.Name, &r.Surname, &r.HouseID, &r.Apartment, &r.Phone, &r.DateAdd, &r.DateDel); err != nil {
			rows.Close()
			return nil, nil, nil, err
		}
		residents = append(residents, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, nil, err
	}

	vrows, err := s.db.Query(ctx, `SELECT id, resident_id, plate, date_add, date_del FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, nil, nil, err
	}
	defer vrows.Close()
	var vehicles []Vehicle
	for vrows.Next() {
		var v Vehicle
		if err := vrows.Scan(&v.ID, &v.ResidentID, &v.Plate, &v.DateAdd, &v.DateDel); err != nil {
			return nil, nil, nil, err
		}
		vehicles = append(vehicles, v)
	}
	return houses, residents, vehicles, vrows.Err()
}
