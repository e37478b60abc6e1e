package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	clientRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/client"
	"github.com/m04kA/SMC-BarberService/pkg/phone"
	"github.com/m04kA/SMC-BarberService/pkg/textnorm"
)

// placeholderNames имена-заглушки, которые всегда заменяются настоящим именем
var placeholderNames = map[string]struct{}{
	"":                 {},
	"cliente":          {},
	"cliente whatsapp": {},
	"sin nombre":       {},
	"desconocido":      {},
	"unknown":          {},
	"customer":         {},
}

// Service сервис справочника клиентов
type Service struct {
	repo        ClientRepository
	phoneRegion string
	logger      Logger
}

// NewService создает новый экземпляр сервиса клиентов
func NewService(repo ClientRepository, phoneRegion string, logger Logger) *Service {
	return &Service{
		repo:        repo,
		phoneRegion: phoneRegion,
		logger:      logger,
	}
}

// ResolveForBooking находит клиента по телефону или создает нового
// Если введенное имя полнее сохраненного, имя обновляется; ошибка обновления не мешает записи
func (s *Service) ResolveForBooking(ctx context.Context, rawPhone, name string) (*domain.Client, error) {
	normalized, err := phone.Normalize(rawPhone, s.phoneRegion)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	name = textnorm.CollapseSpaces(name)

	client, err := s.repo.FindByPhone(ctx, normalized)
	if errors.Is(err, clientRepo.ErrClientNotFound) {
		return s.create(ctx, normalized, name)
	}
	if err != nil {
		s.logger.Error("ResolveForBooking: failed to find client phone=%s: %v", normalized, err)
		return nil, fmt.Errorf("%w: find client: %v", ErrInternal, err)
	}

	if IsMoreComplete(name, client.Name) {
		if err := s.repo.UpdateName(ctx, client.ID, name); err != nil {
			s.logger.Warn("ResolveForBooking: failed to rename client id=%d: %v", client.ID, err)
		} else {
			s.logger.Info("ResolveForBooking: client id=%d renamed %q -> %q", client.ID, client.Name, name)
			client.Name = name
		}
	}

	return client, nil
}

func (s *Service) create(ctx context.Context, normalizedPhone, name string) (*domain.Client, error) {
	client, err := s.repo.Create(ctx, &domain.Client{Name: name, Phone: normalizedPhone})
	if errors.Is(err, clientRepo.ErrDuplicatePhone) {
		// Клиента успели создать параллельно
		return s.repo.FindByPhone(ctx, normalizedPhone)
	}
	if err != nil {
		s.logger.Error("ResolveForBooking: failed to create client phone=%s: %v", normalizedPhone, err)
		return nil, fmt.Errorf("%w: create client: %v", ErrInternal, err)
	}

	s.logger.Info("ResolveForBooking: created client id=%d phone=%s", client.ID, normalizedPhone)
	return client, nil
}

// IsMoreComplete true, если candidate стоит сохранить вместо current:
// current пустое или заглушка, в candidate больше слов, либо candidate длиннее и содержит current
func IsMoreComplete(candidate, current string) bool {
	cand := textnorm.Normalize(candidate)
	if cand == "" || cand == textnorm.Normalize(current) {
		return false
	}
	if isPlaceholder(current) {
		return true
	}

	cur := textnorm.Normalize(current)
	if len(textnorm.Tokens(cand)) > len(textnorm.Tokens(cur)) {
		return true
	}
	return len(cand) > len(cur) && strings.Contains(cand, cur)
}

func isPlaceholder(name string) bool {
	n := textnorm.Normalize(name)
	if _, ok := placeholderNames[n]; ok {
		return true
	}
	// Имя из одних цифр обычно совпадает с номером телефона
	return strings.Trim(n, "+0123456789 ") == ""
}
