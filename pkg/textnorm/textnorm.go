package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize обрезает пробелы, приводит к нижнему регистру и убирает диакритику ("Sí" -> "si")
func Normalize(s string) string {
	return strings.ToLower(StripDiacritics(strings.TrimSpace(s)))
}

// StripDiacritics убирает диакритические знаки, сохраняя базовые буквы ("mañana" -> "manana")
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Tokens разбивает нормализованный текст на слова (буквы и цифры)
func Tokens(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// CollapseSpaces заменяет последовательности пробелов одним пробелом
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
