package appointments

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

// checkTransition проверяет переход статуса from -> to
//
//	COMPLETED  -> *          ErrImmutableState
//	X          -> X          ErrIllegalTransition
//	CANCELLED  -> PENDING    разрешено (с повторной проверкой пересечений)
//	CANCELLED  -> прочие     ErrIllegalTransition
//	*          -> CANCELLED  нужна непустая причина
func checkTransition(from, to domain.AppointmentStatus, reason string) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	if from == domain.StatusCompleted {
		return ErrImmutableState
	}
	if from == to {
		return fmt.Errorf("%w: already %s", ErrIllegalTransition, to)
	}
	if from == domain.StatusCancelled && to != domain.StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	if to == domain.StatusCancelled && strings.TrimSpace(reason) == "" {
		return ErrMissingReason
	}
	return nil
}

// isRevival переход из отмены обратно в работу: запись снова занимает время
func isRevival(from, to domain.AppointmentStatus) bool {
	return from == domain.StatusCancelled && to == domain.StatusPending
}
