package domain

type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	// LastRoomID хранит комнату для auto-rejoin; nil — пользователь в лобби.
	LastRoomID *string `db:"last_room_id"`
}
