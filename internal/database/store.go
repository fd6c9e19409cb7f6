package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// Store defines the interface for user persistence. Methods accept a
// context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertUser creates the user on first contact or refreshes the
	// username on subsequent contacts. Keyed by telegram_id; concurrent
	// upserts for the same identifier never produce duplicate rows.
	UpsertUser(ctx context.Context, telegramID, username string) (*User, error)

	// SetUserActive updates the activation flag and returns the updated user.
	SetUserActive(ctx context.Context, id int64, active bool) (*User, error)

	// Administrative CRUD, not exercised by the message flow.
	CreateUser(ctx context.Context, telegramID, username string) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, user *User) (*User, error)
	DeleteUser(ctx context.Context, id int64) error

	// RunMaintenance performs database maintenance tasks like VACUUM.
	RunMaintenance(ctx context.Context) error
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by the given sqlx connection.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) UpsertUser(ctx context.Context, telegramID, username string) (*User, error) {
	if telegramID == "" {
		return nil, fmt.Errorf("cannot upsert user with empty telegram_id")
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO users (telegram_id, username, is_active, created_at, updated_at)
        VALUES (?, ?, 0, ?, ?)
        ON CONFLICT (telegram_id) DO UPDATE SET
            username   = excluded.username,
            updated_at = excluded.updated_at
        RETURNING id, created_at, updated_at, telegram_id, username, is_active;
    `

	var user User
	if err := s.db.GetContext(ctx, &user, query, telegramID, toNullString(username), now, now); err != nil {
		s.logger.ErrorContext(ctx, "Failed to upsert user", "telegram_id", telegramID, "error", err)
		return nil, fmt.Errorf("failed to upsert user %s: %w", telegramID, err)
	}

	s.logger.DebugContext(ctx, "Upserted user", "id", user.ID, "telegram_id", user.TelegramID)
	return &user, nil
}

func (s *sqlxStore) SetUserActive(ctx context.Context, id int64, active bool) (*User, error) {
	query := `
        UPDATE users SET is_active = ?, updated_at = ?
        WHERE id = ?
        RETURNING id, created_at, updated_at, telegram_id, username, is_active;
    `

	var user User
	err := s.db.GetContext(ctx, &user, query, active, time.Now().UTC(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to update activation flag", "id", id, "error", err)
		return nil, fmt.Errorf("failed to update activation flag for user %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Updated activation flag", "id", id, "is_active", active)
	return &user, nil
}

func (s *sqlxStore) CreateUser(ctx context.Context, telegramID, username string) (*User, error) {
	if telegramID == "" {
		return nil, fmt.Errorf("cannot create user with empty telegram_id")
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO users (telegram_id, username, is_active, created_at, updated_at)
        VALUES (?, ?, 0, ?, ?)
        RETURNING id, created_at, updated_at, telegram_id, username, is_active;
    `

	var user User
	if err := s.db.GetContext(ctx, &user, query, telegramID, toNullString(username), now, now); err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", telegramID, err)
	}
	return &user, nil
}

func (s *sqlxStore) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user,
		`SELECT id, created_at, updated_at, telegram_id, username, is_active FROM users WHERE id = ?;`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

func (s *sqlxStore) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := s.db.SelectContext(ctx, &users,
		`SELECT id, created_at, updated_at, telegram_id, username, is_active FROM users ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *sqlxStore) UpdateUser(ctx context.Context, user *User) (*User, error) {
	if user == nil {
		return nil, fmt.Errorf("cannot update nil user")
	}

	query := `
        UPDATE users SET username = ?, is_active = ?, updated_at = ?
        WHERE id = ?
        RETURNING id, created_at, updated_at, telegram_id, username, is_active;
    `

	var updated User
	err := s.db.GetContext(ctx, &updated, query, user.Username, user.IsActive, time.Now().UTC(), user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	return &updated, nil
}

func (s *sqlxStore) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Running database maintenance")
	if _, err := s.db.ExecContext(ctx, `VACUUM;`); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `ANALYZE;`); err != nil {
		return fmt.Errorf("failed to analyze database: %w", err)
	}
	return nil
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
