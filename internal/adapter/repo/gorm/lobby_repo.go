package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lastcity/internal/adapter/repo/gorm/model"
	"lastcity/internal/app/ports"
	"lastcity/internal/domain/game"
)

type LobbyRepo struct {
	db *gorm.DB
}

func NewLobbyRepo(db *gorm.DB) LobbyRepo {
	return LobbyRepo{db: db}
}

var _ ports.LobbyRepository = LobbyRepo{}

func (r LobbyRepo) Create(ctx context.Context, lobby ports.LobbyRecord) error {
	row, err := lobbyRow(lobby)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r LobbyRepo) GetByID(ctx context.Context, id string) (game.Lobby, error) {
	var row model.Lobby
	if err := r.db.WithContext(ctx).Where(&model.Lobby{ID: id}).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Lobby{}, ports.ErrNotFound
		}
		return game.Lobby{}, err
	}
	return r.assemble(ctx, row)
}

func (r LobbyRepo) List(ctx context.Context) ([]game.Lobby, error) {
	var rows []model.Lobby
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	lobbies := make([]game.Lobby, 0, len(rows))
	for _, row := range rows {
		lobby, err := r.assemble(ctx, row)
		if err != nil {
			return nil, err
		}
		lobbies = append(lobbies, lobby)
	}
	return lobbies, nil
}

func (r LobbyRepo) Update(ctx context.Context, lobby ports.LobbyRecord) error {
	row, err := lobbyRow(lobby)
	if err != nil {
		return err
	}
	row.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.Lobby{}).
		Where("id = ?", lobby.ID).
		Updates(map[string]any{
			"name":        row.Name,
			"host_id":     row.HostID,
			"max_players": row.MaxPlayers,
			"started":     row.Started,
			"settings":    row.Settings,
			"updated_at":  row.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r LobbyRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lobby_id = ?", id).Delete(&model.LobbyPlayer{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Lobby{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

func (r LobbyRepo) AddPlayer(ctx context.Context, member ports.LobbyPlayerRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lobby model.Lobby
		if err := tx.Clauses(forUpdate()).Where(&model.Lobby{ID: member.LobbyID}).First(&lobby).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		var seats int64
		if err := tx.Model(&model.LobbyPlayer{}).Where("lobby_id = ?", member.LobbyID).Count(&seats).Error; err != nil {
			return err
		}
		if seats >= int64(lobby.MaxPlayers) {
			return ports.ErrConflict
		}
		row := model.LobbyPlayer{
			LobbyID:  member.LobbyID,
			PlayerID: member.PlayerID,
			Ready:    member.Ready,
			JoinedAt: member.JoinedAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return ports.ErrConflict
			}
			return err
		}
		return nil
	})
}

func (r LobbyRepo) RemovePlayer(ctx context.Context, lobbyID, playerID string) error {
	res := r.db.WithContext(ctx).
		Where("lobby_id = ? AND player_id = ?", lobbyID, playerID).
		Delete(&model.LobbyPlayer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r LobbyRepo) SetPlayerReady(ctx context.Context, lobbyID, playerID string, ready bool) error {
	res := r.db.WithContext(ctx).Model(&model.LobbyPlayer{}).
		Where("lobby_id = ? AND player_id = ?", lobbyID, playerID).
		Update("ready", ready)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// assemble joins membership rows with profile names into the aggregate row
// the stores consume.
func (r LobbyRepo) assemble(ctx context.Context, row model.Lobby) (game.Lobby, error) {
	var settings game.LobbySettings
	if err := json.Unmarshal([]byte(row.Settings), &settings); err != nil {
		return game.Lobby{}, fmt.Errorf("decode settings for lobby %s: %w", row.ID, err)
	}

	var members []model.LobbyPlayer
	if err := r.db.WithContext(ctx).
		Where("lobby_id = ?", row.ID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return game.Lobby{}, err
	}

	players := make([]game.Player, 0, len(members))
	for _, member := range members {
		player := game.Player{ID: member.PlayerID, Ready: member.Ready}
		var profile model.Profile
		err := r.db.WithContext(ctx).Where(&model.Profile{ID: member.PlayerID}).First(&profile).Error
		switch {
		case err == nil:
			player.Name = profile.Name
		case errors.Is(err, gorm.ErrRecordNotFound):
			// A credential without a profile joins nameless.
		default:
			return game.Lobby{}, err
		}
		players = append(players, player)
	}

	return game.Lobby{
		ID:         row.ID,
		Name:       row.Name,
		HostID:     row.HostID,
		Players:    players,
		MaxPlayers: row.MaxPlayers,
		Started:    row.Started,
		Settings:   settings,
		CreatedAt:  row.CreatedAt,
	}, nil
}

func lobbyRow(lobby ports.LobbyRecord) (model.Lobby, error) {
	settings, err := json.Marshal(lobby.Settings)
	if err != nil {
		return model.Lobby{}, fmt.Errorf("encode settings for lobby %s: %w", lobby.ID, err)
	}
	return model.Lobby{
		ID:         lobby.ID,
		Name:       lobby.Name,
		HostID:     lobby.HostID,
		MaxPlayers: lobby.MaxPlayers,
		Started:    lobby.Started,
		Settings:   string(settings),
		CreatedAt:  lobby.CreatedAt,
		UpdatedAt:  time.Now().UTC(),
	}, nil
}

// forUpdate locks the lobby row so concurrent joins cannot both pass the
// capacity check.
func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
