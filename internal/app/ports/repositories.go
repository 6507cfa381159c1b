package ports

import (
	"context"
	"time"

	"lastcity/internal/domain/game"
)

type LobbyRecord struct {
	ID         string
	Name       string
	HostID     string
	MaxPlayers int
	Started    bool
	Settings   game.LobbySettings
	CreatedAt  time.Time
}

type LobbyPlayerRecord struct {
	LobbyID  string
	PlayerID string
	Ready    bool
	JoinedAt time.Time
}

// LobbyRepository stores lobby rows and their membership rows. Reads
// embed players joined with their profiles, ordered by join time.
type LobbyRepository interface {
	Create(ctx context.Context, lobby LobbyRecord) error
	GetByID(ctx context.Context, id string) (game.Lobby, error)
	List(ctx context.Context) ([]game.Lobby, error)
	Update(ctx context.Context, lobby LobbyRecord) error
	Delete(ctx context.Context, id string) error

	AddPlayer(ctx context.Context, member LobbyPlayerRecord) error
	RemovePlayer(ctx context.Context, lobbyID, playerID string) error
	SetPlayerReady(ctx context.Context, lobbyID, playerID string, ready bool) error
}

type ProfileRecord struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type ProfileRepository interface {
	Create(ctx context.Context, profile ProfileRecord) error
	GetByID(ctx context.Context, id string) (ProfileRecord, error)
}

type CredentialRecord struct {
	UserID       string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

type CredentialRepository interface {
	Create(ctx context.Context, credential CredentialRecord) error
	GetByEmail(ctx context.Context, email string) (CredentialRecord, error)
}
