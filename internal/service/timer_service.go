package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"countdown-api/internal/domain"
	"countdown-api/internal/repository"
)

// Filtros de status aceptados por List y Search. Cualquier otro valor se
// comporta como el filtro activo por defecto.
const (
	StatusFilterActive  = "active"
	StatusFilterAll     = "all"
	StatusFilterDeleted = "deleted"
)

var ErrTimerNotFound = errors.New("timer not found")

var ErrTimerFieldsRequired = errors.New("title and target date are required")

// saveAttempts acota los reintentos cuando otro request gana el CAS.
const saveAttempts = 3

// TimerService implementa CRUD y busqueda sobre la coleccion de timers de
// un usuario. Cada mutacion es un ciclo read-modify-write del agregado
// completo, con reintento acotado ante conflicto de version.
type TimerService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewTimerService(logger *zap.Logger, users repository.UserRepository) *TimerService {
	return &TimerService{
		logger: logger,
		users:  users,
	}
}

// List devuelve los timers del usuario en orden de insercion, filtrados
// por status.
func (s *TimerService) List(ctx context.Context, userID, status string) ([]domain.Timer, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterByStatus(user.Timers, status), nil
}

// Search aplica el mismo filtro de status que List y luego retiene los
// timers cuyo titulo o descripcion contienen el query (sin distinguir
// mayusculas). Query vacio equivale a List.
func (s *TimerService) Search(ctx context.Context, userID, query, status string) ([]domain.Timer, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	timers := filterByStatus(user.Timers, status)
	query = strings.TrimSpace(query)
	if query == "" {
		return timers, nil
	}

	lower := strings.ToLower(query)
	matched := make([]domain.Timer, 0, len(timers))
	for _, t := range timers {
		if strings.Contains(strings.ToLower(t.Title), lower) ||
			strings.Contains(strings.ToLower(t.Description), lower) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

type CreateTimerInput struct {
	Title       string
	Description string
	TargetDate  time.Time
}

// Create agrega un timer activo al final de la coleccion y devuelve la
// coleccion completa actualizada.
func (s *TimerService) Create(ctx context.Context, userID string, input CreateTimerInput) ([]domain.Timer, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.TargetDate.IsZero() {
		return nil, ErrTimerFieldsRequired
	}

	return s.mutate(ctx, userID, func(user *domain.User) error {
		now := time.Now().UTC()
		user.Timers = append(user.Timers, domain.Timer{
			ID:          uuid.NewString(),
			Title:       title,
			Description: input.Description,
			TargetDate:  input.TargetDate,
			Status:      domain.TimerStatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return nil
	})
}

type UpdateTimerInput struct {
	Title string
	// Description distingue campo omitido (nil) de vacio explicito, que
	// limpia la descripcion previa.
	Description *string
	TargetDate  time.Time
}

// Update sobreescribe solo los campos provistos. Un timer borrado es
// inmutable y se reporta como no encontrado.
func (s *TimerService) Update(ctx context.Context, userID, timerID string, input UpdateTimerInput) ([]domain.Timer, error) {
	return s.mutate(ctx, userID, func(user *domain.User) error {
		timer := user.FindTimer(timerID)
		if timer == nil || timer.IsDeleted() {
			return ErrTimerNotFound
		}
		if title := strings.TrimSpace(input.Title); title != "" {
			timer.Title = title
		}
		if input.Description != nil {
			timer.Description = *input.Description
		}
		if !input.TargetDate.IsZero() {
			timer.TargetDate = input.TargetDate
		}
		timer.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// Delete marca el timer como borrado sin sacarlo de la coleccion. Borrar
// un timer ya borrado es idempotente y refresca deletedAt.
func (s *TimerService) Delete(ctx context.Context, userID, timerID string) ([]domain.Timer, error) {
	return s.mutate(ctx, userID, func(user *domain.User) error {
		timer := user.FindTimer(timerID)
		if timer == nil {
			return ErrTimerNotFound
		}
		now := time.Now().UTC()
		timer.Status = domain.TimerStatusDeleted
		timer.DeletedAt = &now
		timer.UpdatedAt = now
		return nil
	})
}

func (s *TimerService) getUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *TimerService) mutate(ctx context.Context, userID string, apply func(*domain.User) error) ([]domain.Timer, error) {
	var lastErr error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		user, err := s.getUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := apply(&user); err != nil {
			return nil, err
		}
		if err := s.users.Save(ctx, user); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return user.Timers, nil
	}
	if s.logger != nil {
		s.logger.Warn("timer save retries exhausted", zap.String("user_id", userID))
	}
	return nil, lastErr
}

func filterByStatus(timers []domain.Timer, status string) []domain.Timer {
	out := make([]domain.Timer, 0, len(timers))
	switch status {
	case StatusFilterAll:
		out = append(out, timers...)
	case StatusFilterDeleted:
		for _, t := range timers {
			if t.Status == domain.TimerStatusDeleted {
				out = append(out, t)
			}
		}
	default:
		for _, t := range timers {
			if t.Status != domain.TimerStatusDeleted {
				out = append(out, t)
			}
		}
	}
	return out
}
