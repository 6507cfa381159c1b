package ports

import (
	"context"

	"lastcity/internal/domain/game"
)

type ChangeKind string

const (
	ChangeUpsert ChangeKind = "upsert"
	ChangeDelete ChangeKind = "delete"
)

// LobbyChange is one row-change notification on a lobby. Upserts carry the
// full authoritative row; deletes carry only the id.
type LobbyChange struct {
	Kind    ChangeKind `json:"kind"`
	LobbyID string     `json:"lobby_id"`
	Lobby   *game.Lobby `json:"lobby,omitempty"`
}

// LobbyFeed is the realtime push channel. Subscribe registers a handler
// for one lobby's changes and returns an unsubscribe function releasing
// the subscription.
type LobbyFeed interface {
	Publish(ctx context.Context, change LobbyChange) error
	Subscribe(lobbyID string, handler func(LobbyChange)) (func(), error)
}
