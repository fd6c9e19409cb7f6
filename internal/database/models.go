package database

import (
	"database/sql"
	"time"
)

// User represents a Telegram user known to the bot. A user is created on
// first contact and must be activated with the shared secret before the
// bot generates replies for them.
type User struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	TelegramID string         `db:"telegram_id"`
	Username   sql.NullString `db:"username"`
	IsActive   bool           `db:"is_active"`
}
