package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"countdown-api/internal/domain"
)

// ErrVersionConflict indica que otro request guardo el agregado primero.
var ErrVersionConflict = errors.New("user version conflict")

// UserRepository define el contrato de persistencia para el agregado usuario.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Save(ctx context.Context, user domain.User) error
}

// PgUserRepository implementa UserRepository usando pgxpool. La coleccion
// de timers vive en una columna JSONB, de modo que la fila completa es la
// unidad de lectura y escritura.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, name, email, password_hash, timers, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	timers, err := marshalTimers(user.Timers)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		timers,
		user.Version,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, name, email, password_hash, timers, version, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	// Comparacion exacta: el email se guarda y se busca tal cual.
	const query = `
		SELECT id, name, email, password_hash, timers, version, created_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// Save escribe el agregado completo con compare-and-swap sobre version.
// Si la fila cambio desde la lectura devuelve ErrVersionConflict para que
// el caller reintente con datos frescos.
func (r *PgUserRepository) Save(ctx context.Context, user domain.User) error {
	const query = `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4, timers = $5, version = version + 1
		WHERE id = $1 AND version = $6
	`
	timers, err := marshalTimers(user.Timers)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		timers,
		user.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *PgUserRepository) scanUser(row pgx.Row) (domain.User, error) {
	var (
		u      domain.User
		timers []byte
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&timers,
		&u.Version,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	if err != nil {
		return domain.User{}, err
	}
	u.Timers = make([]domain.Timer, 0)
	if len(timers) > 0 {
		if err := json.Unmarshal(timers, &u.Timers); err != nil {
			return domain.User{}, err
		}
	}
	return u, nil
}

func marshalTimers(timers []domain.Timer) ([]byte, error) {
	if timers == nil {
		timers = make([]domain.Timer, 0)
	}
	return json.Marshal(timers)
}
