package chat

// Lobby View Builder: чистая функция над снапшотом реестра. Снапшоты
// пушатся сессиям в лобби при входе туда и при каждом событии жизненного
// цикла комнат (create/join/leave/close/disconnect).

// LobbySnapshot — active/existing списки для любого рендерера (REST отдаёт их же).
func (c *Core) LobbySnapshot() (active, existing []RoomInfo) {
	return c.reg.Snapshot()
}

func lobbyEvent(active, existing []RoomInfo) Event {
	toRooms := func(list []RoomInfo) []LobbyRoom {
		out := make([]LobbyRoom, 0, len(list))
		for _, r := range list {
			out = append(out, LobbyRoom{ID: r.ID, Name: r.Name, Members: r.Members})
		}
		return out
	}
	return Event{Type: TypeLobby, Payload: LobbyPayload{
		Active:   toRooms(active),
		Existing: toRooms(existing),
	}}
}

func (c *Core) enterLobby(s *Session) {
	ev := lobbyEvent(c.reg.Snapshot())

	c.lobbyMu.Lock()
	c.lobby[s] = struct{}{}
	c.lobbyMu.Unlock()

	if err := s.conn.Send(ev); err != nil {
		s.fail()
	}
}

func (c *Core) leaveLobby(s *Session) {
	c.lobbyMu.Lock()
	delete(c.lobby, s)
	c.lobbyMu.Unlock()
}

// pushLobby рассылает свежий снапшот всем, кто сейчас в лобби; best-effort.
func (c *Core) pushLobby() {
	ev := lobbyEvent(c.reg.Snapshot())

	c.lobbyMu.Lock()
	sessions := make([]*Session, 0, len(c.lobby))
	for s := range c.lobby {
		sessions = append(sessions, s)
	}
	c.lobbyMu.Unlock()

	for _, s := range sessions {
		if err := s.conn.Send(ev); err != nil {
			s.fail()
		}
	}
}
