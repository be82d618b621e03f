package residency

import "time"

// House — дом (групповой чат), создаётся лениво при первой регистрации.
// Никогда не удаляется физически, только date_del.
type House struct {
	ID      int64
	ChatID  int64
	Name    string
	City    string
	Address string
	DateAdd time.Time
	DateDel *time.Time
}

// Resident — запись жильца в конкретном доме. Пара (TgID, HouseID)
// уникальна: один человек может состоять в нескольких домах, по записи
// на дом.
type Resident struct {
	ID        int64
	TgID      int64
	Name      string
	Surname   string
	HouseID   *int64
	Apartment string
	Phone     string
	DateAdd   time.Time
	DateDel   *time.Time
}

func (r *Resident) Active() bool { return r.DateDel == nil }

type Vehicle struct {
	ID         int64
	ResidentID int64
	Plate      string
	DateAdd    time.Time
	DateDel    *time.Time
}

// HouseEntry — жилец с номерами машин, для отчётов /check и /checkall.
type HouseEntry struct {
	Resident Resident
	Plates   []string
}
