package bot

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/besteffort"
)

// InboundMessage входящее текстовое сообщение
type InboundMessage struct {
	Phone     string
	MessageID string
	Text      string
}

// Settings параметры бота из конфигурации
type Settings struct {
	BusinessName       string
	Address            string
	Location           *time.Location
	IdleTimeout        time.Duration
	LockWait           time.Duration
	DefaultSlotMinutes int
	DefaultServiceName string
	PhoneRegion        string
}

// Deps зависимости движка
type Deps struct {
	Conversations ConversationRepository
	Employees     EmployeeDirectory
	Catalog       ServiceCatalog
	Clients       ClientDirectory
	Resolver      ClientResolver
	Slots         SlotCalculator
	Creator       AppointmentCreator
	Appointments  AppointmentService
	Messenger     Messenger
	Locker        Locker
	TxManager     TransactionManager
	SideEffects   *besteffort.Dispatcher
	Metrics       MetricsRecorder
	Logger        Logger
}

// turn состояние одного шага: входящий текст, диалог (копия) и накопленные ответы
type turn struct {
	phone   string
	text    string
	now     time.Time
	conv    *domain.Conversation
	replies []string
	// committed шаг создал запись, которую уже нельзя откатить
	committed bool
}

func (t *turn) reply(s string) {
	t.replies = append(t.replies, s)
}

func (t *turn) replyf(format string, args ...interface{}) {
	t.replies = append(t.replies, fmt.Sprintf(format, args...))
}

// moveTo переводит диалог в состояние state
func (t *turn) moveTo(state domain.ConversationState) {
	t.conv.State = state
}

// end завершает диалог: следующее сообщение начнет новый
func (t *turn) end() {
	t.conv.State = domain.StateCompleted
	t.conv.IsActive = false
	t.conv.Context = domain.ConversationContext{}
}

// resetContext очищает данные потока записи/отмены
func (t *turn) resetContext() {
	t.conv.Context = domain.ConversationContext{}
}
