// Package store holds the authoritative client-side game state: session
// identity, lobby membership, and the world simulation. Views read
// snapshots and invoke the operation set; remote lobby changes converge
// through the realtime feed with last-write-wins semantics.
package store

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"lastcity/internal/app/auth"
	"lastcity/internal/app/ports"
	"lastcity/internal/domain/game"
)

const maxEvents = 50

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAlreadyInLobby   = errors.New("already in a lobby")
	ErrNotInLobby       = errors.New("not in a lobby")
	ErrLobbyFull        = errors.New("lobby is full")
	ErrLobbyStarted     = errors.New("lobby already started")
	ErrNotHost          = errors.New("only the host may do this")
	ErrCannotKickHost   = errors.New("the host cannot be kicked")
	ErrGameNotStarted   = errors.New("game not started")
	ErrInvalidMove      = errors.New("destination not adjacent")
	ErrNightCurfew      = errors.New("cannot move during the night")
	ErrHouseLooted      = errors.New("house has nothing left to loot")
	ErrSuperseded       = errors.New("response discarded: state changed while the request was in flight")
)

// AuthService is the slice of the auth collaborator the store needs.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (auth.Identity, error)
	SignUp(ctx context.Context, email, password, name string) (auth.Identity, error)
}

type Config struct {
	Auth    AuthService
	Lobbies ports.LobbyRepository
	Feed    ports.LobbyFeed
	Now     func() time.Time
	Rand    *rand.Rand
}

type Session struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
}

// Store is the single logical owner of game state. All mutation happens
// under mu; remote round-trips run outside the lock and re-validate the
// generation counter before committing, so a response landing after a
// sign-out or lobby leave is discarded instead of resurrecting old state.
type Store struct {
	mu  sync.Mutex
	cfg Config

	session    *Session
	generation uint64

	lobby       *game.Lobby
	unsubscribe func()

	phase          game.Phase
	clock          game.Clock
	houses         []game.House
	survivors      []game.Survivor
	playerPosition game.Position
	selectedHouse  string
	baseResources  game.BaseResources
	baseDefense    int
	events         []string

	watchers    map[int]func()
	nextWatcher int
}

func New(cfg Config) *Store {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Store{
		cfg:           cfg,
		phase:         game.PhaseInitial,
		baseResources: game.NewBaseResources(game.StartingNormal),
		baseDefense:   50,
		watchers:      map[int]func(){},
	}
}

// Initialized reports whether the backend collaborators are wired. Every
// remote operation fails fast with ports.ErrNotConfigured when false.
func (s *Store) Initialized() bool {
	return s.cfg.Auth != nil && s.cfg.Lobbies != nil && s.cfg.Feed != nil
}

func (s *Store) requireConfigured() error {
	if !s.Initialized() {
		return ports.ErrNotConfigured
	}
	return nil
}

// Watch registers a change callback fired after every applied mutation.
// The returned function cancels the registration.
func (s *Store) Watch(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

// notifyLocked snapshots the watcher set under the lock; callbacks run
// after the mutation is fully applied so observers never see a partial
// update.
func (s *Store) notifyLocked() {
	fns := make([]func(), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	go func() {
		for _, fn := range fns {
			fn()
		}
	}()
}

type Snapshot struct {
	Session        *Session        `json:"session,omitempty"`
	Lobby          *game.Lobby     `json:"lobby,omitempty"`
	Phase          game.Phase      `json:"phase"`
	Day            int             `json:"day"`
	DayPhase       game.DayPhase   `json:"day_phase"`
	PhaseRemaining time.Duration   `json:"phase_remaining"`
	Houses         []game.House    `json:"houses"`
	Survivors      []game.Survivor `json:"survivors"`
	PlayerPosition game.Position   `json:"player_position"`
	SelectedHouse  string          `json:"selected_house,omitempty"`
	BaseResources  game.BaseResources `json:"base_resources"`
	BaseDefense    int             `json:"base_defense"`
	Events         []string        `json:"events"`
}

// Snapshot returns a copy of the full state. Consumers only ever observe
// fully-applied snapshots.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:          s.phase,
		Day:            1,
		DayPhase:       game.DayPhaseDay,
		PlayerPosition: s.playerPosition,
		SelectedHouse:  s.selectedHouse,
		BaseResources:  s.baseResources.Clone(),
		BaseDefense:    s.baseDefense,
		Events:         append([]string(nil), s.events...),
	}
	if s.session != nil {
		sess := *s.session
		snap.Session = &sess
	}
	if s.lobby != nil {
		snap.Lobby = cloneLobby(s.lobby)
	}
	if s.gameStartedLocked() {
		now := s.cfg.Now()
		snap.Day = s.clock.DayAt(now)
		snap.DayPhase, snap.PhaseRemaining = s.clock.PhaseAt(now)
		snap.Houses = cloneHouses(s.houses)
		snap.Survivors = cloneSurvivors(s.survivors)
	}
	return snap
}

func (s *Store) gameStartedLocked() bool {
	return s.phase == game.PhaseCity || s.phase == game.PhaseBuilding
}

func cloneLobby(l *game.Lobby) *game.Lobby {
	out := *l
	out.Players = append([]game.Player(nil), l.Players...)
	return &out
}

func cloneHouses(hs []game.House) []game.House {
	out := make([]game.House, len(hs))
	copy(out, hs)
	for i := range out {
		out[i].Rooms = append([]game.Room(nil), hs[i].Rooms...)
	}
	return out
}

func cloneSurvivors(ss []game.Survivor) []game.Survivor {
	out := make([]game.Survivor, len(ss))
	copy(out, ss)
	for i := range out {
		out[i].Skills = append([]string(nil), ss[i].Skills...)
		inv := make(map[game.Resource]int, len(ss[i].Inventory))
		for k, v := range ss[i].Inventory {
			inv[k] = v
		}
		out[i].Inventory = inv
	}
	return out
}
