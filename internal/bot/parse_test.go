package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsAffirmativeNegative(t *testing.T) {
	for _, s := range []string{"si", "Sí", " SI ", "yes", "OK", "1"} {
		assert.True(t, IsAffirmative(s), s)
		assert.False(t, IsNegative(s), s)
	}
	for _, s := range []string{"no", "NO ", "2", "nop", "Nope"} {
		assert.True(t, IsNegative(s), s)
		assert.False(t, IsAffirmative(s), s)
	}
	for _, s := range []string{"", "quizas", "si claro", "3"} {
		assert.False(t, IsAffirmative(s), s)
		assert.False(t, IsNegative(s), s)
	}
}

func TestParseOption(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want int
		ok   bool
	}{
		{"1", 3, 1, true},
		{" 3 ", 3, 3, true},
		{"0", 3, 0, false},
		{"4", 3, 0, false},
		{"-1", 3, 0, false},
		{"dos", 3, 0, false},
		{"1.5", 3, 0, false},
		{"1", 0, 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseOption(tt.in, tt.max)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseDate(t *testing.T) {
	bogota, err := time.LoadLocation("America/Bogota")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 2026-03-02 23:30 в Боготе = 2026-03-03 04:30 UTC
	now := time.Date(2026, 3, 3, 4, 30, 0, 0, time.UTC)

	tests := []struct {
		in  string
		day int
		ok  bool
	}{
		{"hoy", 2, true},
		{"Today", 2, true},
		{"mañana", 3, true},
		{"MANANA", 3, true},
		{"tomorrow", 3, true},
		{"pasado  mañana", 4, true},
		{"day-after-tomorrow", 4, true},
		{"day after tomorrow", 4, true},
		{"el lunes", 0, false},
		{"2026-03-05", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.in, now, bogota)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, time.Date(2026, 3, tt.day, 0, 0, 0, 0, bogota), got, tt.in)
		}
	}
}

func TestIsValidFullName(t *testing.T) {
	valid := []string{"Ana Gomez", "José María Pérez", "Mary-Jane O'Neil", "Dr. Juan Ruiz", "  ana   gomez "}
	invalid := []string{"", "Ana", "A B", "Ana 123", "ana@gomez.com", "Juan J", strings.Repeat("Abcdefghij ", 6)}

	for _, s := range valid {
		assert.True(t, IsValidFullName(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsValidFullName(s), s)
	}
}

func TestContainsWords(t *testing.T) {
	assert.True(t, containsWords("Sí, cancelar", "si", "cancelar"))
	assert.True(t, containsWords("quiero CANCELAR si", "si", "cancelar"))
	assert.False(t, containsWords("cancelar", "si", "cancelar"))
	assert.True(t, containsWords("No, conservar la cita", "no", "conservar"))
	assert.False(t, containsWords("sino cancelar", "si", "cancelar"))
}
