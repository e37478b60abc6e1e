package trackingcode

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultPrefix префикс кода по умолчанию
	DefaultPrefix = "BB"

	// alphabet без символов, которые легко перепутать при диктовке (0/O, 1/I/L)
	alphabet     = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	suffixLength = 5
	dateLayout   = "060102"
)

// Generator генерирует короткие коды записи вида BB-251017-K7M2Q
type Generator struct {
	prefix string
	now    func() time.Time
}

// NewGenerator создает генератор с указанным префиксом
func NewGenerator(prefix string) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{prefix: prefix, now: time.Now}
}

// Generate возвращает новый код
// Уникальность гарантирует уникальный индекс в БД, генератор лишь делает коллизии маловероятными
func (g *Generator) Generate() string {
	random := uuid.New()

	var suffix strings.Builder
	suffix.Grow(suffixLength)
	for i := 0; i < suffixLength; i++ {
		suffix.WriteByte(alphabet[int(random[i])%len(alphabet)])
	}

	return g.prefix + "-" + g.now().Format(dateLayout) + "-" + suffix.String()
}

// Normalize приводит введенный пользователем код к каноническому виду
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, " ", "")
	return code
}
