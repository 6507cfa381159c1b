package store

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	repomem "lastcity/internal/adapter/repo/memory"
	busmem "lastcity/internal/adapter/realtime/memory"
	"lastcity/internal/app/auth"
)

// testEnv wires stores against shared in-memory backend adapters, a
// controllable clock and a seeded world RNG.
type testEnv struct {
	t       *testing.T
	backend *repomem.Store
	bus     *busmem.Bus
	svc     auth.Service
	clock   *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := repomem.NewStore()
	return &testEnv{
		t:       t,
		backend: backend,
		bus:     busmem.NewBus(),
		svc: auth.Service{
			SignInUC: auth.SignInUseCase{
				Credentials: repomem.NewCredentialRepo(backend),
				Profiles:    repomem.NewProfileRepo(backend),
			},
			SignUpUC: auth.SignUpUseCase{
				Credentials: repomem.NewCredentialRepo(backend),
				Profiles:    repomem.NewProfileRepo(backend),
			},
		},
		clock: &fakeClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)},
	}
}

// newStore builds a store for one client and signs the given player up.
func (e *testEnv) newStore(name string) *Store {
	e.t.Helper()
	s := New(Config{
		Auth:    e.svc,
		Lobbies: repomem.NewLobbyRepo(e.backend),
		Feed:    e.bus,
		Now:     e.clock.Now,
		Rand:    rand.New(rand.NewSource(int64(len(name)) + 11)),
	})
	email := name + "@example.com"
	if err := s.SignUp(context.Background(), email, "motdepasse-"+name, name); err != nil {
		e.t.Fatalf("sign up %s: %v", name, err)
	}
	return s
}

func timeout(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(2 * time.Second)
}

// startedStore signs a host up, creates a lobby and starts the game.
func (e *testEnv) startedStore(name string) *Store {
	e.t.Helper()
	s := e.newStore(name)
	if err := s.CreateLobby(context.Background(), "Camp de "+name, 4); err != nil {
		e.t.Fatalf("create lobby: %v", err)
	}
	if err := s.StartGame(context.Background()); err != nil {
		e.t.Fatalf("start game: %v", err)
	}
	return s
}
