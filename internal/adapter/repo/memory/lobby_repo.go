package memory

import (
	"context"
	"sort"

	"lastcity/internal/app/ports"
	"lastcity/internal/domain/game"
)

type LobbyRepo struct {
	store *Store
}

func NewLobbyRepo(store *Store) LobbyRepo {
	return LobbyRepo{store: store}
}

func (r LobbyRepo) Create(_ context.Context, lobby ports.LobbyRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.lobbies[lobby.ID]; ok {
		return ports.ErrConflict
	}
	r.store.lobbies[lobby.ID] = lobby
	return nil
}

func (r LobbyRepo) GetByID(_ context.Context, id string) (game.Lobby, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	record, ok := r.store.lobbies[id]
	if !ok {
		return game.Lobby{}, ports.ErrNotFound
	}
	return r.store.assembleLobby(record), nil
}

func (r LobbyRepo) List(_ context.Context) ([]game.Lobby, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]game.Lobby, 0, len(r.store.lobbies))
	for _, record := range r.store.lobbies {
		out = append(out, r.store.assembleLobby(record))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r LobbyRepo) Update(_ context.Context, lobby ports.LobbyRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.lobbies[lobby.ID]; !ok {
		return ports.ErrNotFound
	}
	r.store.lobbies[lobby.ID] = lobby
	return nil
}

func (r LobbyRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.lobbies[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.store.lobbies, id)
	delete(r.store.members, id)
	return nil
}

func (r LobbyRepo) AddPlayer(_ context.Context, member ports.LobbyPlayerRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	record, ok := r.store.lobbies[member.LobbyID]
	if !ok {
		return ports.ErrNotFound
	}
	members := r.store.members[member.LobbyID]
	for _, m := range members {
		if m.PlayerID == member.PlayerID {
			return ports.ErrConflict
		}
	}
	if len(members) >= record.MaxPlayers {
		return ports.ErrConflict
	}
	r.store.members[member.LobbyID] = append(members, member)
	return nil
}

func (r LobbyRepo) RemovePlayer(_ context.Context, lobbyID, playerID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	members := r.store.members[lobbyID]
	for i, m := range members {
		if m.PlayerID == playerID {
			r.store.members[lobbyID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return ports.ErrNotFound
}

func (r LobbyRepo) SetPlayerReady(_ context.Context, lobbyID, playerID string, ready bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	members := r.store.members[lobbyID]
	for i := range members {
		if members[i].PlayerID == playerID {
			members[i].Ready = ready
			return nil
		}
	}
	return ports.ErrNotFound
}

var _ ports.LobbyRepository = LobbyRepo{}
