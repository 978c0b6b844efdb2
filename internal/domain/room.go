package domain

import "time"

type Room struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	AdminID   int64     `db:"admin_id"`
	Closed    bool      `db:"closed"` // терминальный флаг; true не снимается
	CreatedAt time.Time `db:"created_at"`
}
