package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type RoomItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AdminID   int64     `json:"admin_id,omitempty"`
	Members   int       `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

type LobbyResponse struct {
	Active   []RoomItem `json:"active"`
	Existing []RoomItem `json:"existing"`
}

type RoomsListResponse struct {
	Items []RoomItem `json:"items"`
}

type ChatMessageItem struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	Items []ChatMessageItem `json:"items"`
}
