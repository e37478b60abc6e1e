package domain

import (
	"time"

	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// ConversationState состояние диалога с ботом
type ConversationState string

const (
	StateInitial               ConversationState = "INITIAL"
	StateAwaitingService       ConversationState = "ESPERANDO_SERVICIO"
	StateAwaitingBarber        ConversationState = "ESPERANDO_BARBERO"
	StateAwaitingName          ConversationState = "ESPERANDO_NOMBRE"
	StateAwaitingDate          ConversationState = "ESPERANDO_FECHA"
	StateAwaitingTime          ConversationState = "ESPERANDO_HORA"
	StateAwaitingTrackingCode  ConversationState = "ESPERANDO_RADICADO"
	StateAwaitingCancelConfirm ConversationState = "ESPERANDO_CONFIRMACION_CANCELACION"
	StateCompleted             ConversationState = "COMPLETADO"
)

// FlowCancellation маркер подпотока отмены записи
const FlowCancellation = "cancellation"

// EmployeeOption пункт пронумерованного списка мастеров, показанного пользователю
type EmployeeOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ConversationContext прогресс заполнения данных для записи или отмены
type ConversationContext struct {
	Flow                string             `json:"flow,omitempty"`
	EmployeeOptions     []EmployeeOption   `json:"employee_options,omitempty"`
	EmployeeID          *int64             `json:"employee_id,omitempty"`
	EmployeeName        string             `json:"employee_name,omitempty"`
	ClientName          string             `json:"client_name,omitempty"`
	Date                string             `json:"date,omitempty"`
	SlotLabels          []string           `json:"slot_labels,omitempty"`
	SlotTimes           []types.TimeString `json:"slot_times,omitempty"`
	SelectedTime        types.TimeString   `json:"selected_time,omitempty"`
	CancelTrackingCode  string             `json:"cancel_tracking_code,omitempty"`
	CancelAppointmentID *int64             `json:"cancel_appointment_id,omitempty"`
	AwaitingCode        bool               `json:"awaiting_code,omitempty"`
}

// Conversation диалог с одним номером телефона
type Conversation struct {
	ID             int64
	Phone          string
	ClientID       *int64
	State          ConversationState
	Context        ConversationContext
	IsActive       bool
	LastActivityAt time.Time
	Version        int64
	CreatedAt      time.Time
}

// IsIdle returns true if the conversation was inactive longer than timeout
func (c *Conversation) IsIdle(now time.Time, timeout time.Duration) bool {
	return timeout > 0 && now.Sub(c.LastActivityAt) > timeout
}
