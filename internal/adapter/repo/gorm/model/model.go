// Package model holds the gorm row types backing the Postgres repos.
package model

import "time"

type Lobby struct {
	ID         string `gorm:"primaryKey"`
	Name       string `gorm:"size:255;not null"`
	HostID     string `gorm:"index;not null"`
	MaxPlayers int    `gorm:"not null"`
	Started    bool   `gorm:"not null;default:false"`
	// Settings is the JSON-encoded lobby settings record.
	Settings  string    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Lobby) TableName() string { return "lobbies" }

type LobbyPlayer struct {
	LobbyID  string    `gorm:"primaryKey"`
	PlayerID string    `gorm:"primaryKey"`
	Ready    bool      `gorm:"not null;default:false"`
	JoinedAt time.Time `gorm:"not null"`
}

func (LobbyPlayer) TableName() string { return "lobby_players" }

type Profile struct {
	ID        string    `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Profile) TableName() string { return "profiles" }

type Credential struct {
	UserID       string    `gorm:"primaryKey"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash []byte    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (Credential) TableName() string { return "credentials" }
