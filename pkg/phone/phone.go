package phone

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidPhone возвращается, когда номер не удалось разобрать
var ErrInvalidPhone = errors.New("phone: invalid phone number")

// minInternationalDigits минимальная длина номера с кодом страны без "+" (WhatsApp присылает "573001234567")
const minInternationalDigits = 11

// Normalize приводит номер к формату E.164 (+573001234567)
// Номера без "+" длиной от 11 цифр считаются международными, короче национальными для defaultRegion
func Normalize(raw string, defaultRegion string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '+' {
			return r
		}
		return -1
	}, raw)

	if cleaned == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}

	if !strings.HasPrefix(cleaned, "+") && len(cleaned) >= minInternationalDigits {
		cleaned = "+" + cleaned
	}

	num, err := phonenumbers.Parse(cleaned, strings.ToUpper(defaultRegion))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidPhone, raw, err)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Equal сравнивает два номера после нормализации
func Equal(a, b string, defaultRegion string) bool {
	na, err := Normalize(a, defaultRegion)
	if err != nil {
		return false
	}
	nb, err := Normalize(b, defaultRegion)
	if err != nil {
		return false
	}
	return na == nb
}

// Digits возвращает номер без "+" (формат, который ожидает WhatsApp Cloud API)
func Digits(e164 string) string {
	return strings.TrimPrefix(e164, "+")
}
