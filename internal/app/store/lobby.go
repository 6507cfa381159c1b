package store

import (
	"context"
	"errors"
	"fmt"

	"lastcity/internal/app/ports"
	"lastcity/internal/domain/game"

	"github.com/google/uuid"
)

// ListLobbies reads the joinable lobbies from the backend.
func (s *Store) ListLobbies(ctx context.Context) ([]game.Lobby, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	authed := s.session != nil
	s.mu.Unlock()
	if !authed {
		return nil, ErrNotAuthenticated
	}
	return s.cfg.Lobbies.List(ctx)
}

func (s *Store) CreateLobby(ctx context.Context, name string, maxPlayers int) error {
	if err := s.requireConfigured(); err != nil {
		return err
	}
	if err := game.ValidateLobbyName(name); err != nil {
		return err
	}
	if err := game.ValidateMaxPlayers(maxPlayers); err != nil {
		return err
	}

	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if s.lobby != nil {
		s.mu.Unlock()
		return ErrAlreadyInLobby
	}
	gen := s.generation
	self := *s.session
	s.mu.Unlock()

	now := s.cfg.Now().UTC()
	record := ports.LobbyRecord{
		ID:         uuid.NewString(),
		Name:       name,
		HostID:     self.UserID,
		MaxPlayers: maxPlayers,
		Settings:   game.DefaultSettings(),
		CreatedAt:  now,
	}
	if err := s.cfg.Lobbies.Create(ctx, record); err != nil {
		return err
	}
	if err := s.cfg.Lobbies.AddPlayer(ctx, ports.LobbyPlayerRecord{
		LobbyID:  record.ID,
		PlayerID: self.UserID,
		JoinedAt: now,
	}); err != nil {
		// The lobby row exists without its host; report rather than roll back.
		return fmt.Errorf("lobby created but host membership failed: %w", err)
	}

	lobby, err := s.refreshAndPublish(ctx, record.ID)
	if err != nil {
		return err
	}
	unsubscribe, err := s.cfg.Feed.Subscribe(record.ID, s.onLobbyChange)
	if err != nil {
		return err
	}

	return s.commitJoinedLobby(ctx, gen, lobby, unsubscribe)
}

func (s *Store) JoinLobby(ctx context.Context, lobbyID string) error {
	if err := s.requireConfigured(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if s.lobby != nil {
		s.mu.Unlock()
		return ErrAlreadyInLobby
	}
	gen := s.generation
	self := *s.session
	s.mu.Unlock()

	lobby, err := s.cfg.Lobbies.GetByID(ctx, lobbyID)
	if err != nil {
		return err
	}
	if lobby.Started {
		return ErrLobbyStarted
	}
	if lobby.IsFull() {
		return ErrLobbyFull
	}
	err = s.cfg.Lobbies.AddPlayer(ctx, ports.LobbyPlayerRecord{
		LobbyID:  lobbyID,
		PlayerID: self.UserID,
		JoinedAt: s.cfg.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return ErrLobbyFull
		}
		return err
	}

	lobby, err = s.refreshAndPublish(ctx, lobbyID)
	if err != nil {
		return err
	}
	unsubscribe, err := s.cfg.Feed.Subscribe(lobbyID, s.onLobbyChange)
	if err != nil {
		return err
	}

	if err := s.commitJoinedLobby(ctx, gen, lobby, unsubscribe); err != nil {
		// Roll the remote membership back so the stale join leaves no trace.
		_ = s.cfg.Lobbies.RemovePlayer(ctx, lobbyID, self.UserID)
		_, _ = s.refreshAndPublish(ctx, lobbyID)
		return err
	}
	return nil
}

// commitJoinedLobby applies a create/join result, discarding it when the
// session moved on while the round-trip was in flight.
func (s *Store) commitJoinedLobby(_ context.Context, gen uint64, lobby game.Lobby, unsubscribe func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.session == nil || s.lobby != nil {
		go unsubscribe()
		return ErrSuperseded
	}
	s.lobby = cloneLobby(&lobby)
	s.unsubscribe = unsubscribe
	s.phase = game.PhaseLobby
	if member, ok := lobby.PlayerByID(s.session.UserID); ok {
		s.session.Ready = member.Ready
	}
	s.notifyLocked()
	return nil
}

// LeaveLobby removes the caller remotely, tears down the feed
// subscription and resets to no-lobby. The host leaving deletes the
// lobby so no hostless room is left behind. Idempotent.
func (s *Store) LeaveLobby(ctx context.Context) error {
	s.mu.Lock()
	if s.lobby == nil {
		s.mu.Unlock()
		return nil
	}
	lobbyID := s.lobby.ID
	isHost := s.session != nil && s.lobby.IsHost(s.session.UserID)
	var selfID string
	if s.session != nil {
		selfID = s.session.UserID
	}
	unsubscribe := s.unsubscribe
	s.resetLobbyLocked()
	s.generation++
	s.notifyLocked()
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	if err := s.requireConfigured(); err != nil {
		return err
	}
	if isHost {
		if err := s.cfg.Lobbies.Delete(ctx, lobbyID); err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		return s.cfg.Feed.Publish(ctx, ports.LobbyChange{Kind: ports.ChangeDelete, LobbyID: lobbyID})
	}
	if err := s.cfg.Lobbies.RemovePlayer(ctx, lobbyID, selfID); err != nil && !errors.Is(err, ports.ErrNotFound) {
		return err
	}
	_, err := s.refreshAndPublish(ctx, lobbyID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil
	}
	return err
}

// SetReady toggles the caller's readiness. Host readiness is not gated;
// the call is a no-op for the host.
func (s *Store) SetReady(ctx context.Context, ready bool) error {
	if err := s.requireConfigured(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if s.lobby == nil {
		s.mu.Unlock()
		return ErrNotInLobby
	}
	if s.lobby.IsHost(s.session.UserID) {
		s.mu.Unlock()
		return nil
	}
	gen := s.generation
	lobbyID := s.lobby.ID
	selfID := s.session.UserID
	// Optimistic local mirror; the feed upsert is authoritative.
	s.session.Ready = ready
	for i := range s.lobby.Players {
		if s.lobby.Players[i].ID == selfID {
			s.lobby.Players[i].Ready = ready
		}
	}
	s.notifyLocked()
	s.mu.Unlock()

	if err := s.cfg.Lobbies.SetPlayerReady(ctx, lobbyID, selfID, ready); err != nil {
		return err
	}
	lobby, err := s.refreshAndPublish(ctx, lobbyID)
	if err != nil {
		return err
	}
	return s.commitLobbyUpdate(gen, lobbyID, lobby)
}

// UpdateLobbySettings replaces the settings wholesale. Host-only.
func (s *Store) UpdateLobbySettings(ctx context.Context, settings game.LobbySettings) error {
	if err := s.requireConfigured(); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if s.lobby == nil {
		s.mu.Unlock()
		return ErrNotInLobby
	}
	if !s.lobby.IsHost(s.session.UserID) {
		s.mu.Unlock()
		return ErrNotHost
	}
	if s.lobby.Started {
		s.mu.Unlock()
		return ErrLobbyStarted
	}
	gen := s.generation
	record := recordFromLobby(*s.lobby)
	record.Settings = settings
	s.lobby.Settings = settings
	s.notifyLocked()
	s.mu.Unlock()

	if err := s.cfg.Lobbies.Update(ctx, record); err != nil {
		return err
	}
	lobby, err := s.refreshAndPublish(ctx, record.ID)
	if err != nil {
		return err
	}
	return s.commitLobbyUpdate(gen, record.ID, lobby)
}

// KickPlayer removes a member. Host-only; the host itself can never be
// the target.
func (s *Store) KickPlayer(ctx context.Context, playerID string) error {
	if err := s.requireConfigured(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if s.lobby == nil {
		s.mu.Unlock()
		return ErrNotInLobby
	}
	if !s.lobby.IsHost(s.session.UserID) {
		s.mu.Unlock()
		return ErrNotHost
	}
	if playerID == s.lobby.HostID {
		s.mu.Unlock()
		return ErrCannotKickHost
	}
	if !s.lobby.HasPlayer(playerID) {
		s.mu.Unlock()
		return ports.ErrNotFound
	}
	gen := s.generation
	lobbyID := s.lobby.ID
	s.mu.Unlock()

	if err := s.cfg.Lobbies.RemovePlayer(ctx, lobbyID, playerID); err != nil {
		return err
	}
	lobby, err := s.refreshAndPublish(ctx, lobbyID)
	if err != nil {
		return err
	}
	return s.commitLobbyUpdate(gen, lobbyID, lobby)
}

// StartGame flips the lobby to started (irreversible) and boots the world
// simulation. Host-only; the host may force-start with unready players.
func (s *Store) StartGame(ctx context.Context) error {
	if err := s.requireConfigured(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if s.lobby == nil {
		s.mu.Unlock()
		return ErrNotInLobby
	}
	if !s.lobby.IsHost(s.session.UserID) {
		s.mu.Unlock()
		return ErrNotHost
	}
	if s.lobby.Started {
		s.mu.Unlock()
		return ErrLobbyStarted
	}
	gen := s.generation
	record := recordFromLobby(*s.lobby)
	record.Started = true
	settings := s.lobby.Settings
	s.mu.Unlock()

	if err := s.cfg.Lobbies.Update(ctx, record); err != nil {
		return err
	}
	lobby, err := s.refreshAndPublish(ctx, record.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.lobby == nil || s.lobby.ID != record.ID {
		return ErrSuperseded
	}
	s.lobby = cloneLobby(&lobby)
	if !s.gameStartedLocked() {
		s.startWorldLocked(settings)
	}
	s.notifyLocked()
	return nil
}

// onLobbyChange is the feed callback: the authoritative reducer. The
// pushed row always wins over the optimistic local mirror.
func (s *Store) onLobbyChange(change ports.LobbyChange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lobby == nil || s.lobby.ID != change.LobbyID {
		return
	}

	switch change.Kind {
	case ports.ChangeDelete:
		unsubscribe := s.unsubscribe
		s.resetLobbyLocked()
		s.addEventLocked("Le lobby a été fermé par l'hôte.")
		if unsubscribe != nil {
			go unsubscribe()
		}
	case ports.ChangeUpsert:
		if change.Lobby == nil {
			return
		}
		if s.session != nil && !change.Lobby.HasPlayer(s.session.UserID) {
			unsubscribe := s.unsubscribe
			s.resetLobbyLocked()
			s.addEventLocked("Vous avez été expulsé du lobby.")
			if unsubscribe != nil {
				go unsubscribe()
			}
			break
		}
		wasStarted := s.lobby.Started
		s.lobby = cloneLobby(change.Lobby)
		if s.session != nil {
			if member, ok := change.Lobby.PlayerByID(s.session.UserID); ok {
				s.session.Ready = member.Ready
			}
		}
		if !wasStarted && change.Lobby.Started && !s.gameStartedLocked() {
			// Another member observed the host starting; boot locally too.
			s.startWorldLocked(change.Lobby.Settings)
		}
	}
	s.notifyLocked()
}

// commitLobbyUpdate applies a refreshed row unless the local lobby moved on.
func (s *Store) commitLobbyUpdate(gen uint64, lobbyID string, lobby game.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.lobby == nil || s.lobby.ID != lobbyID {
		return ErrSuperseded
	}
	s.lobby = cloneLobby(&lobby)
	if s.session != nil {
		if member, ok := lobby.PlayerByID(s.session.UserID); ok {
			s.session.Ready = member.Ready
		}
	}
	s.notifyLocked()
	return nil
}

// refreshAndPublish re-reads the authoritative row and pushes it on the
// feed so every member converges on the same state.
func (s *Store) refreshAndPublish(ctx context.Context, lobbyID string) (game.Lobby, error) {
	lobby, err := s.cfg.Lobbies.GetByID(ctx, lobbyID)
	if err != nil {
		return game.Lobby{}, err
	}
	published := lobby
	if err := s.cfg.Feed.Publish(ctx, ports.LobbyChange{
		Kind:    ports.ChangeUpsert,
		LobbyID: lobbyID,
		Lobby:   &published,
	}); err != nil {
		return game.Lobby{}, err
	}
	return lobby, nil
}

func (s *Store) resetLobbyLocked() {
	s.lobby = nil
	s.unsubscribe = nil
	s.phase = game.PhaseInitial
	if s.session != nil {
		s.session.Ready = false
	}
	s.resetWorldLocked()
}

func recordFromLobby(l game.Lobby) ports.LobbyRecord {
	return ports.LobbyRecord{
		ID:         l.ID,
		Name:       l.Name,
		HostID:     l.HostID,
		MaxPlayers: l.MaxPlayers,
		Started:    l.Started,
		Settings:   l.Settings,
		CreatedAt:  l.CreatedAt,
	}
}
