package game

import (
	"errors"
	"strings"
)

const (
	MinLobbyPlayers = 2
	MaxLobbyPlayers = 6
)

var (
	ErrInvalidLobbyName     = errors.New("invalid lobby name")
	ErrInvalidMaxPlayers    = errors.New("max players must be between 2 and 6")
	ErrInvalidLobbySettings = errors.New("invalid lobby settings")
)

func DefaultSettings() LobbySettings {
	return LobbySettings{
		Difficulty:         DifficultyNormal,
		NightLengthMinutes: 5,
		StartingResources:  StartingNormal,
	}
}

func (s LobbySettings) Validate() error {
	switch s.Difficulty {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
	default:
		return ErrInvalidLobbySettings
	}
	if s.NightLengthMinutes < 1 || s.NightLengthMinutes > 10 {
		return ErrInvalidLobbySettings
	}
	switch s.StartingResources {
	case StartingScarce, StartingNormal, StartingAbundant:
	default:
		return ErrInvalidLobbySettings
	}
	return nil
}

func ValidateLobbyName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidLobbyName
	}
	return nil
}

func ValidateMaxPlayers(n int) error {
	if n < MinLobbyPlayers || n > MaxLobbyPlayers {
		return ErrInvalidMaxPlayers
	}
	return nil
}

func (l Lobby) IsHost(playerID string) bool {
	return playerID != "" && l.HostID == playerID
}

func (l Lobby) IsFull() bool {
	return len(l.Players) >= l.MaxPlayers
}

func (l Lobby) HasPlayer(playerID string) bool {
	for _, p := range l.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

func (l Lobby) PlayerByID(playerID string) (Player, bool) {
	for _, p := range l.Players {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}

func (l Lobby) AllReady() bool {
	for _, p := range l.Players {
		if p.ID == l.HostID {
			continue
		}
		if !p.Ready {
			return false
		}
	}
	return true
}
