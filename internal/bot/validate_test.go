package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPersonName(t *testing.T) {
	assert.True(t, validPersonName("Иван"))
	assert.True(t, validPersonName("Анна-Мария"))

	assert.False(t, validPersonName(""))
	assert.False(t, validPersonName(strings.Repeat("а", 51)))
	assert.True(t, validPersonName(strings.Repeat("а", 50)))
	assert.False(t, validPersonName("СУКА"), "мат режется без учёта регистра")
}

func TestParseApartment(t *testing.T) {
	cases := []struct {
		in string
		n  int
		ok bool
	}{
		{"1", 1, true},
		{"10000", 10000, true},
		{" 42 ", 42, true},
		{"0", 0, false},
		{"10001", 0, false},
		{"-5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		n, ok := parseApartment(c.in)
		assert.Equal(t, c.ok, ok, "вход %q", c.in)
		assert.Equal(t, c.n, n, "вход %q", c.in)
	}
}

func TestParseCarCount(t *testing.T) {
	n, ok := parseCarCount("0")
	assert.True(t, ok)
	assert.Equal(t, 0, n)

	n, ok = parseCarCount("10")
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	_, ok = parseCarCount("11")
	assert.False(t, ok)
	_, ok = parseCarCount("-1")
	assert.False(t, ok)
	_, ok = parseCarCount("две")
	assert.False(t, ok)
}

func TestValidPlate(t *testing.T) {
	assert.True(t, validPlate("н001нн797"))
	assert.True(t, validPlate("а1б"))
	assert.False(t, validPlate("аб"))
	assert.False(t, validPlate(strings.Repeat("а", 16)))
	assert.True(t, validPlate(strings.Repeat("а", 15)))
}

func TestNormalizePhone(t *testing.T) {
	phone, ok := normalizePhone("+79002003030")
	assert.True(t, ok)
	assert.Equal(t, "+79002003030", phone)

	phone, ok = normalizePhone(" +7 900 200-30-30 ")
	assert.True(t, ok)
	assert.Equal(t, "+79002003030", phone)

	_, ok = normalizePhone("89002003030")
	assert.False(t, ok, "без + регион неизвестен")
	_, ok = normalizePhone("+7900")
	assert.False(t, ok)
	_, ok = normalizePhone("телефон")
	assert.False(t, ok)
}
