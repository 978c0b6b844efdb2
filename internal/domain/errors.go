package domain

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrDuplicateRoomName = errors.New("open room with this name already exists")
	ErrRoomClosed        = errors.New("room is closed")
	ErrNotAdmin          = errors.New("only the room admin may do this")
	ErrAlreadyClosed     = errors.New("room is already closed")
	ErrNotInRoom         = errors.New("user not in the room")
	ErrStoreUnavailable  = errors.New("store unavailable")
)
