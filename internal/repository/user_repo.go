package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"staybnb/internal/db"
)

// ErrEmailTaken is returned when a user with the same email already exists.
var ErrEmailTaken = errors.New("email already registered")

type UserRepository interface {
	Create(ctx context.Context, user *db.User) error
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	GetByID(ctx context.Context, id int) (*db.User, error)
	UpdateProfile(ctx context.Context, user *db.User) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	SetHost(ctx context.Context, id int, bio, experience string, languages []string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, phone, date_of_birth, address, is_host, bio, experience, languages, password_hash, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// nonNil keeps array columns NOT NULL: pq encodes a nil slice as NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanUser(row rowScanner) (*db.User, error) {
	var u db.User
	var dob sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &dob, &u.Address, &u.IsHost,
		&u.Bio, &u.Experience, pq.Array(&u.Languages), &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		u.DateOfBirth = &dob.Time
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *db.User) error {
	query := `
		INSERT INTO users (name, email, phone, address, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.Phone, user.Address, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("error inserting user: %w", err)
	}
	return nil
}

// GetByEmail returns nil, nil when no user has that email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE LOWER(email) = LOWER($1)", email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}
	return user, nil
}

// GetByID returns nil, nil when the user does not exist.
func (r *userRepository) GetByID(ctx context.Context, id int) (*db.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user %d: %w", id, err)
	}
	return user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *db.User) error {
	query := `
		UPDATE users
		SET name = $2, phone = $3, date_of_birth = $4, address = $5,
			bio = $6, experience = $7, languages = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Name, user.Phone, user.DateOfBirth, user.Address,
		user.Bio, user.Experience, pq.Array(nonNil(user.Languages))).Scan(&user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error updating user %d: %w", user.ID, err)
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("error updating password for user %d: %w", id, err)
	}
	return nil
}

func (r *userRepository) SetHost(ctx context.Context, id int, bio, experience string, languages []string) error {
	query := `
		UPDATE users
		SET is_host = TRUE, bio = $2, experience = $3, languages = $4, updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, bio, experience, pq.Array(nonNil(languages)))
	if err != nil {
		return fmt.Errorf("error promoting user %d to host: %w", id, err)
	}
	return nil
}
