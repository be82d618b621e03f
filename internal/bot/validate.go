package bot

import (
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	maxNameLen   = 50
	minApartment = 1
	maxApartment = 10000
	maxCars      = 10
	minPlateLen  = 3
	maxPlateLen  = 15
)

var bannedWords = []string{"бляд", "хуй", "пизд", "сука"}

// validPersonName — имя/фамилия: непустое, не длиннее 50 символов, без мата.
func validPersonName(s string) bool {
	if s == "" || len([]rune(s)) > maxNameLen {
		return false
	}
	lower := strings.ToLower(s)
	for _, bad := range bannedWords {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	return true
}

func parseApartment(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < minApartment || n > maxApartment {
		return 0, false
	}
	return n, true
}

func parseCarCount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > maxCars {
		return 0, false
	}
	return n, true
}

func validPlate(s string) bool {
	n := len([]rune(s))
	return n >= minPlateLen && n <= maxPlateLen
}

// normalizePhone валидирует номер и приводит его к E.164.
// Регион не задаём: ждём международный формат (+79002003030).
func normalizePhone(s string) (string, bool) {
	num, err := phonenumbers.Parse(strings.TrimSpace(s), "")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}
