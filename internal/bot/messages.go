package bot

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

// Тексты ответов бота (испанский, клиенты заведения)

var pricePrinter = message.NewPrinter(language.Spanish)

const (
	msgTechnicalDifficulty = "Lo sentimos, estamos presentando dificultades técnicas. Por favor intenta de nuevo en unos minutos."
	msgInvalidOption       = "Opción no válida."
	msgGoodbye             = "¡Gracias por escribirnos! Cuando quieras volver a agendar, escríbenos de nuevo."
	msgNoEmployees         = "En este momento no hay barberos disponibles. Intenta más tarde."
	msgAskName             = "Perfecto, te atenderá %s. ¿Cuál es tu nombre completo?"
	msgInvalidName         = "Por favor escribe tu nombre y apellido (solo letras)."
	msgAskDate             = "¿Para qué día deseas la cita? Responde: hoy, mañana o pasado mañana."
	msgInvalidDate         = "No entendí la fecha. Responde: hoy, mañana o pasado mañana."
	msgNoSlots             = "No hay horarios disponibles para el %s. Elige otro día: hoy, mañana o pasado mañana."
	msgSlotTaken           = "Ese horario acaba de ser ocupado."
	msgAskHaveCode         = "Para cancelar necesitas tu código de radicado. ¿Lo tienes a la mano? (si/no)"
	msgAskCode             = "Escribe tu código de radicado (por ejemplo BB-260302-K7M2Q)."
	msgNoCode              = "Sin el código de radicado no es posible cancelar la cita."
	msgCodeNotFound        = "No encontramos una cita con ese código para tu número. Revisa el código e intenta de nuevo."
	msgNotCancellable      = "La cita %s ya está %s y no se puede cancelar."
	msgConfirmCancelHint   = "Responde \"si cancelar\" para cancelarla o \"no conservar\" para mantenerla."
	msgCancelled           = "Tu cita %s fue cancelada."
	msgCancelFailed        = "No fue posible cancelar la cita %s."
	msgKept                = "Perfecto, tu cita se mantiene."
	msgAskSomethingElse    = "¿Deseas agendar una cita o hacer algo más? (si/no)"
	msgAskYesNo            = "Responde si o no."
)

func welcomeMessage(businessName string) string {
	return fmt.Sprintf("¡Hola! Bienvenido a %s.\n"+
		"1. Ubicación\n"+
		"2. Precios\n"+
		"3. Agendar cita\n"+
		"4. Cancelar cita", businessName)
}

func locationMessage(businessName, address string) string {
	return fmt.Sprintf("📍 %s\n%s", businessName, address)
}

func priceListMessage(services []*domain.Service) string {
	var b strings.Builder
	b.WriteString("Nuestros precios:\n")
	for _, s := range services {
		b.WriteString(pricePrinter.Sprintf("• %s: $%d (%d min)\n", s.Name, int64(s.Price), s.DurationMinutes))
	}
	b.WriteString("¿Deseas agendar una cita? (si/no)")
	return b.String()
}

func employeeListMessage(options []domain.EmployeeOption) string {
	var b strings.Builder
	b.WriteString("Elige tu barbero:\n")
	for i, o := range options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, o.Name)
	}
	b.WriteString("Escribe \"ninguno\" si no deseas continuar.")
	return b.String()
}

func slotListMessage(date string, labels []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Horarios disponibles para el %s:\n", date)
	for _, l := range labels {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("Escribe el número del horario o \"cancelar\" para salir.")
	return b.String()
}

func bookingConfirmedMessage(a *domain.Appointment, employeeName string, loc *time.Location) string {
	start := a.StartAt.In(loc)
	return fmt.Sprintf("✅ ¡Cita confirmada!\n"+
		"Barbero: %s\n"+
		"Fecha: %s\n"+
		"Hora: %s\n"+
		"Código de radicado: %s\n"+
		"Guarda este código, lo necesitarás para cancelar.",
		employeeName, start.Format(domain.DateFormat), start.Format(domain.TimeFormat), a.TrackingCode)
}

func confirmCancelMessage(a *domain.Appointment, loc *time.Location) string {
	start := a.StartAt.In(loc)
	return fmt.Sprintf("Encontramos tu cita %s: %s el %s a las %s.\n%s",
		a.TrackingCode, a.ServiceName, start.Format(domain.DateFormat), start.Format(domain.TimeFormat),
		msgConfirmCancelHint)
}

func statusLabel(s domain.AppointmentStatus) string {
	switch s {
	case domain.StatusCancelled:
		return "cancelada"
	case domain.StatusCompleted:
		return "completada"
	default:
		return strings.ToLower(string(s))
	}
}
