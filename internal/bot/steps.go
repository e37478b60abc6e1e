package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments"
	"github.com/m04kA/SMC-BarberService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-BarberService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BarberService/pkg/phone"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

const (
	keywordNone   = "ninguno"
	keywordCancel = "cancelar"
)

// INITIAL: главное меню
func (e *Engine) onInitial(ctx context.Context, t *turn) error {
	option, _ := ParseOption(t.text, 4)

	switch {
	case option == 1:
		t.reply(locationMessage(e.settings.BusinessName, e.settings.Address))
		return nil

	case option == 2:
		services, err := e.deps.Catalog.ListActive(ctx)
		if err != nil {
			return fmt.Errorf("%w: list services: %v", ErrInternal, err)
		}
		t.reply(priceListMessage(services))
		t.moveTo(domain.StateAwaitingService)
		return nil

	case option == 3:
		return e.offerEmployees(ctx, t)

	case option == 4:
		t.resetContext()
		t.conv.Context.Flow = domain.FlowCancellation
		t.reply(msgAskHaveCode)
		t.moveTo(domain.StateAwaitingTrackingCode)
		return nil

	case IsNegative(t.text):
		t.reply(msgGoodbye)
		t.end()
		return nil

	default:
		t.reply(welcomeMessage(e.settings.BusinessName))
		return nil
	}
}

// ESPERANDO_SERVICIO: "¿deseas agendar / algo más?"
func (e *Engine) onAwaitingService(_ context.Context, t *turn) error {
	switch {
	case IsAffirmative(t.text):
		t.resetContext()
		t.reply(welcomeMessage(e.settings.BusinessName))
		t.moveTo(domain.StateInitial)
	case IsNegative(t.text):
		t.reply(msgGoodbye)
		t.end()
	default:
		t.reply(msgAskYesNo)
	}
	return nil
}

// ESPERANDO_BARBERO: выбор мастера из показанного списка
func (e *Engine) onAwaitingBarber(_ context.Context, t *turn) error {
	if isKeyword(t.text, keywordNone) {
		t.reply(msgGoodbye)
		t.end()
		return nil
	}

	options := t.conv.Context.EmployeeOptions
	n, ok := ParseOption(t.text, len(options))
	if !ok {
		t.reply(msgInvalidOption)
		t.reply(employeeListMessage(options))
		return nil
	}

	chosen := options[n-1]
	id := chosen.ID
	t.conv.Context.EmployeeID = &id
	t.conv.Context.EmployeeName = chosen.Name
	t.replyf(msgAskName, chosen.Name)
	t.moveTo(domain.StateAwaitingName)
	return nil
}

// ESPERANDO_NOMBRE: имя и фамилия клиента
func (e *Engine) onAwaitingName(_ context.Context, t *turn) error {
	if !IsValidFullName(t.text) {
		t.reply(msgInvalidName)
		return nil
	}

	t.conv.Context.ClientName = strings.Join(strings.Fields(t.text), " ")
	t.reply(msgAskDate)
	t.moveTo(domain.StateAwaitingDate)
	return nil
}

// ESPERANDO_FECHA: день записи
func (e *Engine) onAwaitingDate(ctx context.Context, t *turn) error {
	date, ok := ParseDate(t.text, t.now, e.settings.Location)
	if !ok {
		t.reply(msgInvalidDate)
		return nil
	}

	found, err := e.offerSlots(ctx, t, date)
	if err != nil {
		return err
	}
	if !found {
		t.replyf(msgNoSlots, date.Format(domain.DateFormat))
		return nil
	}

	t.moveTo(domain.StateAwaitingTime)
	return nil
}

// ESPERANDO_HORA: выбор слота и создание записи
func (e *Engine) onAwaitingTime(ctx context.Context, t *turn) error {
	if isKeyword(t.text, keywordCancel) {
		t.reply(msgGoodbye)
		t.end()
		return nil
	}

	c := t.conv.Context
	n, ok := ParseOption(t.text, len(c.SlotTimes))
	if !ok {
		t.reply(msgInvalidOption)
		t.reply(slotListMessage(c.Date, c.SlotLabels))
		return nil
	}
	if c.EmployeeID == nil {
		return fmt.Errorf("%w: employee is missing in context", ErrInternal)
	}

	date, err := time.ParseInLocation(domain.DateFormat, c.Date, e.settings.Location)
	if err != nil {
		return fmt.Errorf("%w: bad date in context %q: %v", ErrInternal, c.Date, err)
	}
	selected := c.SlotTimes[n-1]
	t.conv.Context.SelectedTime = selected

	client, err := e.deps.Resolver.ResolveForBooking(ctx, t.phone, c.ClientName)
	if err != nil {
		return fmt.Errorf("%w: resolve client: %v", ErrInternal, err)
	}
	t.conv.ClientID = &client.ID

	serviceName, duration, err := e.bookedService(ctx)
	if err != nil {
		return err
	}

	resp, err := e.deps.Creator.Execute(ctx, &create_appointment.Request{
		ClientID:        client.ID,
		EmployeeID:      *c.EmployeeID,
		ServiceName:     serviceName,
		StartAt:         selected.On(date, e.settings.Location),
		DurationMinutes: duration,
		Origin:          domain.OriginConversational,
	})
	if errors.Is(err, create_appointment.ErrValidation) {
		// Слот заняли или он уже прошел: предлагаем актуальный список
		e.deps.Logger.Info("HandleMessage: slot %s on %s rejected for phone=%s: %v", selected, c.Date, t.phone, err)
		t.reply(msgSlotTaken)
		found, err := e.offerSlots(ctx, t, date)
		if err != nil {
			return err
		}
		if !found {
			t.replyf(msgNoSlots, c.Date)
			t.moveTo(domain.StateAwaitingDate)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: create appointment: %v", ErrInternal, err)
	}
	t.committed = true

	t.reply(bookingConfirmedMessage(resp.Appointment, c.EmployeeName, e.settings.Location))
	t.reply(msgAskSomethingElse)
	t.resetContext()
	t.moveTo(domain.StateAwaitingService)
	return nil
}

// ESPERANDO_RADICADO: есть ли код, затем сам код
func (e *Engine) onAwaitingTrackingCode(ctx context.Context, t *turn) error {
	switch {
	case IsAffirmative(t.text):
		t.conv.Context.AwaitingCode = true
		t.reply(msgAskCode)
		return nil
	case IsNegative(t.text):
		t.reply(msgNoCode)
		t.reply(msgAskSomethingElse)
		t.resetContext()
		t.moveTo(domain.StateAwaitingService)
		return nil
	}

	appointment, err := e.deps.Appointments.GetByTrackingCode(ctx, t.text)
	if errors.Is(err, appointments.ErrAppointmentNotFound) || errors.Is(err, appointments.ErrInvalidInput) {
		t.reply(msgCodeNotFound)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: lookup tracking code: %v", ErrInternal, err)
	}

	owns, err := e.ownsAppointment(ctx, t.phone, appointment)
	if err != nil {
		return err
	}
	if !owns {
		// Чужой код неотличим от несуществующего
		e.deps.Logger.Warn("HandleMessage: phone=%s tried tracking code %s of another client", t.phone, appointment.TrackingCode)
		t.reply(msgCodeNotFound)
		return nil
	}

	if appointment.IsCancelled() || appointment.IsCompleted() {
		t.replyf(msgNotCancellable, appointment.TrackingCode, statusLabel(appointment.Status))
		return nil
	}

	id := appointment.ID
	t.conv.Context.CancelTrackingCode = appointment.TrackingCode
	t.conv.Context.CancelAppointmentID = &id
	t.reply(confirmCancelMessage(appointment, e.settings.Location))
	t.moveTo(domain.StateAwaitingCancelConfirm)
	return nil
}

// ESPERANDO_CONFIRMACION_CANCELACION: "si cancelar" / "no conservar"
func (e *Engine) onAwaitingCancelConfirm(ctx context.Context, t *turn) error {
	code := t.conv.Context.CancelTrackingCode

	switch {
	case containsWords(t.text, "si", keywordCancel):
		_, err := e.deps.Appointments.CancelByTrackingCode(ctx, code)
		switch {
		case err == nil:
			t.replyf(msgCancelled, code)
		case appointments.IsValidationError(err), errors.Is(err, appointments.ErrAppointmentNotFound):
			e.deps.Logger.Warn("HandleMessage: cancel %s for phone=%s rejected: %v", code, t.phone, err)
			t.replyf(msgCancelFailed, code)
		default:
			return fmt.Errorf("%w: cancel appointment: %v", ErrInternal, err)
		}

	case containsWords(t.text, "no", "conservar"):
		t.reply(msgKept)

	default:
		t.reply(msgInvalidOption)
		t.reply(msgConfirmCancelHint)
		return nil
	}

	t.reply(msgAskSomethingElse)
	t.resetContext()
	t.moveTo(domain.StateAwaitingService)
	return nil
}

// offerEmployees показывает список активных мастеров
func (e *Engine) offerEmployees(ctx context.Context, t *turn) error {
	employees, err := e.deps.Employees.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("%w: list employees: %v", ErrInternal, err)
	}
	if len(employees) == 0 {
		t.reply(msgNoEmployees)
		return nil
	}

	options := make([]domain.EmployeeOption, 0, len(employees))
	for _, emp := range employees {
		options = append(options, domain.EmployeeOption{ID: emp.ID, Name: emp.Name})
	}

	t.resetContext()
	t.conv.Context.EmployeeOptions = options
	t.reply(employeeListMessage(options))
	t.moveTo(domain.StateAwaitingBarber)
	return nil
}

// offerSlots считает свободные слоты на date и сохраняет их в контекст
// На сегодня уже начавшиеся слоты не предлагаются. false, если слотов нет
func (e *Engine) offerSlots(ctx context.Context, t *turn, date time.Time) (bool, error) {
	c := &t.conv.Context
	if c.EmployeeID == nil {
		return false, fmt.Errorf("%w: employee is missing in context", ErrInternal)
	}

	_, duration, err := e.bookedService(ctx)
	if err != nil {
		return false, err
	}

	resp, err := e.deps.Slots.Execute(ctx, &get_available_slots.Request{
		EmployeeID:      *c.EmployeeID,
		Date:            date,
		DurationMinutes: duration,
	})
	if err != nil {
		return false, fmt.Errorf("%w: available slots: %v", ErrInternal, err)
	}

	times := make([]types.TimeString, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		if slot.On(date, e.settings.Location).Before(t.now) {
			continue
		}
		times = append(times, slot)
	}

	c.Date = date.Format(domain.DateFormat)
	c.SlotTimes = nil
	c.SlotLabels = nil
	c.SelectedTime = ""
	if len(times) == 0 {
		return false, nil
	}

	labels := make([]string, len(times))
	for i, slot := range times {
		labels[i] = fmt.Sprintf("%d. %s", i+1, slot)
	}
	c.SlotTimes = times
	c.SlotLabels = labels

	t.reply(slotListMessage(c.Date, labels))
	return true, nil
}

// bookedService услуга для записи через бота: первая активная из прайс-листа
func (e *Engine) bookedService(ctx context.Context) (string, int, error) {
	services, err := e.deps.Catalog.ListActive(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("%w: list services: %v", ErrInternal, err)
	}
	for _, s := range services {
		if s.IsActive {
			duration := s.DurationMinutes
			if duration <= 0 {
				duration = e.settings.DefaultSlotMinutes
			}
			return s.Name, duration, nil
		}
	}
	return e.settings.DefaultServiceName, e.settings.DefaultSlotMinutes, nil
}

// ownsAppointment сверяет номер отправителя с номером клиента записи
// Совпадение номера единственная проверка личности в этом канале
func (e *Engine) ownsAppointment(ctx context.Context, sender string, appointment *domain.Appointment) (bool, error) {
	client, err := e.deps.Clients.GetByID(ctx, appointment.ClientID)
	if err != nil {
		return false, fmt.Errorf("%w: get client id=%d: %v", ErrInternal, appointment.ClientID, err)
	}
	return phone.Equal(client.Phone, sender, e.settings.PhoneRegion), nil
}
