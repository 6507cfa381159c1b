package memory

import (
	"sort"
	"sync"

	"lastcity/internal/app/ports"
	"lastcity/internal/domain/game"
)

type Store struct {
	mu          sync.RWMutex
	lobbies     map[string]ports.LobbyRecord
	members     map[string][]ports.LobbyPlayerRecord
	profiles    map[string]ports.ProfileRecord
	credentials map[string]ports.CredentialRecord
}

func NewStore() *Store {
	return &Store{
		lobbies:     make(map[string]ports.LobbyRecord),
		members:     make(map[string][]ports.LobbyPlayerRecord),
		profiles:    make(map[string]ports.ProfileRecord),
		credentials: make(map[string]ports.CredentialRecord),
	}
}

// assembleLobby joins a lobby row with its membership and profile rows,
// members ordered by join time.
func (s *Store) assembleLobby(record ports.LobbyRecord) game.Lobby {
	members := append([]ports.LobbyPlayerRecord(nil), s.members[record.ID]...)
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	players := make([]game.Player, 0, len(members))
	for _, m := range members {
		name := m.PlayerID
		if p, ok := s.profiles[m.PlayerID]; ok {
			name = p.Name
		}
		players = append(players, game.Player{ID: m.PlayerID, Name: name, Ready: m.Ready})
	}
	return game.Lobby{
		ID:         record.ID,
		Name:       record.Name,
		HostID:     record.HostID,
		Players:    players,
		MaxPlayers: record.MaxPlayers,
		Started:    record.Started,
		Settings:   record.Settings,
		CreatedAt:  record.CreatedAt,
	}
}
