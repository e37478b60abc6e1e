package bot

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/m04kA/SMC-BarberService/pkg/textnorm"
)

const maxFullNameLength = 60

var (
	affirmatives = map[string]struct{}{"si": {}, "yes": {}, "ok": {}, "1": {}}
	negatives    = map[string]struct{}{"no": {}, "2": {}, "nop": {}, "nope": {}}

	// Смещение в днях от сегодняшней даты. Поддерживаются только эти ключевые слова
	dateKeywords = map[string]int{
		"hoy":                0,
		"today":              0,
		"manana":             1,
		"tomorrow":           1,
		"pasado manana":      2,
		"day after tomorrow": 2,
		"day-after-tomorrow": 2,
	}
)

// IsAffirmative si / sí / yes / ok / 1
func IsAffirmative(text string) bool {
	_, ok := affirmatives[textnorm.Normalize(text)]
	return ok
}

// IsNegative no / 2 / nop / nope
func IsNegative(text string) bool {
	_, ok := negatives[textnorm.Normalize(text)]
	return ok
}

// ParseOption разбирает номер варианта в диапазоне [1, max]
func ParseOption(text string, max int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}

// ParseDate понимает "hoy", "mañana", "pasado mañana" (и английские варианты)
// Возвращает полночь нужного дня в часовом поясе loc
func ParseDate(text string, now time.Time, loc *time.Location) (time.Time, bool) {
	key := textnorm.CollapseSpaces(textnorm.Normalize(text))
	offset, ok := dateKeywords[key]
	if !ok {
		return time.Time{}, false
	}

	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+offset, 0, 0, 0, 0, loc), true
}

// IsValidFullName минимум два слова из букв (от 2 букв каждое), допускаются пробел, апостроф, дефис и точка
func IsValidFullName(text string) bool {
	name := textnorm.CollapseSpaces(text)
	if name == "" || utf8.RuneCountInString(name) > maxFullNameLength {
		return false
	}

	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' && r != '\'' && r != '-' && r != '.' {
			return false
		}
	}

	words := 0
	for _, token := range strings.Fields(name) {
		letters := 0
		for _, r := range token {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters >= 2 {
			words++
		}
	}
	return words >= 2
}

// containsWords true, если среди слов текста есть все words
func containsWords(text string, words ...string) bool {
	tokens := textnorm.Tokens(text)
	for _, w := range words {
		found := false
		for _, t := range tokens {
			if t == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// isKeyword сравнивает нормализованный текст с ключевым словом
func isKeyword(text, keyword string) bool {
	return textnorm.Normalize(text) == keyword
}
