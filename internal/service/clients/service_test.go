package clients

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	clientRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/client"
	"github.com/m04kA/SMC-BarberService/pkg/logger"
)

type fakeRepo struct {
	byPhone   map[string]*domain.Client
	nextID    int64
	renameErr error
	renamed   []string
}

func newFakeRepo(clients ...*domain.Client) *fakeRepo {
	r := &fakeRepo{byPhone: map[string]*domain.Client{}, nextID: 100}
	for _, c := range clients {
		r.byPhone[c.Phone] = c
	}
	return r
}

func (r *fakeRepo) FindByPhone(_ context.Context, phone string) (*domain.Client, error) {
	if c, ok := r.byPhone[phone]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, clientRepo.ErrClientNotFound
}

func (r *fakeRepo) Create(_ context.Context, c *domain.Client) (*domain.Client, error) {
	if _, ok := r.byPhone[c.Phone]; ok {
		return nil, clientRepo.ErrDuplicatePhone
	}
	r.nextID++
	cp := *c
	cp.ID = r.nextID
	r.byPhone[c.Phone] = &cp
	return &cp, nil
}

func (r *fakeRepo) UpdateName(_ context.Context, id int64, name string) error {
	if r.renameErr != nil {
		return r.renameErr
	}
	for _, c := range r.byPhone {
		if c.ID == id {
			c.Name = name
		}
	}
	r.renamed = append(r.renamed, name)
	return nil
}

func TestIsMoreComplete(t *testing.T) {
	tests := []struct {
		candidate string
		current   string
		want      bool
	}{
		{"Ana Gomez", "Ana", true},
		{"Ana Maria Gomez", "Ana Gomez", true},
		{"Ana Gomez", "Ana Gomez", false},
		{"ana gómez", "Ana Gomez", false},
		{"Ana", "Ana Gomez", false},
		{"Pedro Perez", "Ana Gomez", false},
		{"Ana Gomezz", "Ana Gomez", true},
		{"Pedro Perez", "Cliente WhatsApp", true},
		{"Pedro", "", true},
		{"Pedro Perez", "573001112233", true},
		{"", "Ana", false},
	}

	for _, tt := range tests {
		t.Run(tt.candidate+"/"+tt.current, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMoreComplete(tt.candidate, tt.current))
		})
	}
}

func TestResolveForBooking_CreatesNewClient(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, "CO", logger.NewNop())

	client, err := svc.ResolveForBooking(context.Background(), "573001112233", "  Ana   Gomez ")

	require.NoError(t, err)
	assert.Equal(t, int64(101), client.ID)
	assert.Equal(t, "+573001112233", client.Phone)
	assert.Equal(t, "Ana Gomez", client.Name)
}

func TestResolveForBooking_UpdatesIncompleteName(t *testing.T) {
	repo := newFakeRepo(&domain.Client{ID: 5, Name: "Ana", Phone: "+573001112233"})
	svc := NewService(repo, "CO", logger.NewNop())

	client, err := svc.ResolveForBooking(context.Background(), "+57 300 111 2233", "Ana Gomez")

	require.NoError(t, err)
	assert.Equal(t, int64(5), client.ID)
	assert.Equal(t, "Ana Gomez", client.Name)
	assert.Equal(t, []string{"Ana Gomez"}, repo.renamed)
}

func TestResolveForBooking_KeepsBetterName(t *testing.T) {
	repo := newFakeRepo(&domain.Client{ID: 5, Name: "Ana Maria Gomez", Phone: "+573001112233"})
	svc := NewService(repo, "CO", logger.NewNop())

	client, err := svc.ResolveForBooking(context.Background(), "3001112233", "Ana Gomez")

	require.NoError(t, err)
	assert.Equal(t, "Ana Maria Gomez", client.Name)
	assert.Empty(t, repo.renamed)
}

func TestResolveForBooking_RenameFailureIsNotFatal(t *testing.T) {
	repo := newFakeRepo(&domain.Client{ID: 5, Name: "Cliente", Phone: "+573001112233"})
	repo.renameErr = errors.New("db down")
	svc := NewService(repo, "CO", logger.NewNop())

	client, err := svc.ResolveForBooking(context.Background(), "3001112233", "Ana Gomez")

	require.NoError(t, err)
	assert.Equal(t, int64(5), client.ID)
	assert.Equal(t, "Cliente", client.Name)
}

func TestResolveForBooking_InvalidPhone(t *testing.T) {
	svc := NewService(newFakeRepo(), "CO", logger.NewNop())

	_, err := svc.ResolveForBooking(context.Background(), "no phone", "Ana Gomez")

	assert.ErrorIs(t, err, ErrInvalidPhone)
}
