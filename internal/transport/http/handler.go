package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cwrk-planet/chat-service/internal/chat"
	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/store"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	core  *chat.Core
	store store.Store
}

func NewHandler(core *chat.Core, st store.Store) *Handler {
	return &Handler{core: core, store: st}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	username := httpmw.UsernameFromCtx(r.Context())
	user, err := h.store.GetOrCreateUser(r.Context(), username)
	if err != nil {
		slog.Error("handler.CreateRoom: resolve user", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "store unavailable"})
		return
	}

	room, err := h.core.CreateRoom(r.Context(), user.ID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateRoomName):
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: "duplicate room name"})
		case errors.Is(err, chat.ErrEmptyRoomName):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "empty room name"})
		default:
			slog.Error("handler.CreateRoom:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, RoomItem{
		ID:        room.ID,
		Name:      room.Name,
		AdminID:   room.AdminID,
		CreatedAt: room.CreatedAt,
	})
}

// GET /rooms — существующие (не закрытые) комнаты
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	_, existing := h.core.LobbySnapshot()

	resp := RoomsListResponse{Items: roomItems(existing)}
	writeJSON(w, http.StatusOK, resp)
}

// GET /lobby — active + existing, как их видит сессия в лобби
func (h *Handler) Lobby(w http.ResponseWriter, r *http.Request) {
	active, existing := h.core.LobbySnapshot()

	writeJSON(w, http.StatusOK, LobbyResponse{
		Active:   roomItems(active),
		Existing: roomItems(existing),
	})
}

// GET /rooms/{id}/history?limit=
func (h *Handler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	if _, err := h.store.GetRoom(r.Context(), roomID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.GetChatHistory: get room", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "store unavailable"})
		return
	}

	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	items, err := h.store.ListMessages(r.Context(), roomID, limit)
	if err != nil {
		slog.Error("handler.GetChatHistory:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "store unavailable"})
		return
	}

	resp := ChatHistoryResponse{Items: make([]ChatMessageItem, 0, len(items))}
	for _, m := range items {
		resp.Items = append(resp.Items, ChatMessageItem{
			ID:        m.ID,
			RoomID:    m.RoomID,
			Sender:    m.Sender,
			Text:      m.Text,
			CreatedAt: m.CreatedAt.Truncate(time.Millisecond),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func roomItems(list []chat.RoomInfo) []RoomItem {
	out := make([]RoomItem, 0, len(list))
	for _, rm := range list {
		out = append(out, RoomItem{
			ID:        rm.ID,
			Name:      rm.Name,
			AdminID:   rm.AdminID,
			Members:   rm.Members,
			CreatedAt: rm.CreatedAt,
		})
	}
	return out
}
