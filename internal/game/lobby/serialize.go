package lobby

import (
	"github.com/palemoky/card-smash/internal/server/storage"
)

// Snapshot 返回可序列化的大厅快照
func (l *Lobby) Snapshot() *storage.LobbyData {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.toLobbyData()
}

func (l *Lobby) toLobbyData() *storage.LobbyData {
	data := &storage.LobbyData{
		ID:            l.id,
		Phase:         int(l.phase),
		Players:       make([]storage.PlayerData, 0, len(l.players)),
		TableSize:     len(l.table),
		CurrentPlayer: l.current,
		Target:        int(l.target),
		Finished:      l.finished,
		CreatedAt:     l.createdAt.Unix(),
	}
	for _, p := range l.players {
		data.Players = append(data.Players, storage.PlayerData{
			Name:  p.Name,
			Cards: p.Hand.Len(),
		})
	}
	return data
}
