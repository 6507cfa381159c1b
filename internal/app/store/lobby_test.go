package store

import (
	"context"
	"errors"
	"testing"
	"time"

	repomem "lastcity/internal/adapter/repo/memory"
	"lastcity/internal/app/ports"
	"lastcity/internal/domain/game"
)

func TestCreateLobbySoleMemberIsHost(t *testing.T) {
	env := newTestEnv(t)
	s := env.newStore("alice")

	if err := s.CreateLobby(context.Background(), "Camp A", 4); err != nil {
		t.Fatalf("create lobby: %v", err)
	}
	lobby := s.Snapshot().Lobby
	if lobby == nil {
		t.Fatal("expected a lobby")
	}
	if len(lobby.Players) != 1 {
		t.Fatalf("expected exactly one member, got %d", len(lobby.Players))
	}
	if lobby.HostID != lobby.Players[0].ID {
		t.Fatalf("host %s is not the sole member %s", lobby.HostID, lobby.Players[0].ID)
	}
	if lobby.Started {
		t.Fatal("new lobby must not be started")
	}
	if lobby.MaxPlayers != 4 || lobby.Name != "Camp A" {
		t.Fatalf("unexpected lobby: %+v", lobby)
	}
	if lobby.Settings != game.DefaultSettings() {
		t.Fatalf("expected default settings, got %+v", lobby.Settings)
	}
	if s.Snapshot().Phase != game.PhaseLobby {
		t.Fatalf("expected lobby phase, got %s", s.Snapshot().Phase)
	}
}

func TestCreateLobbyValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	s := env.newStore("bob")

	if err := s.CreateLobby(context.Background(), "  ", 4); !errors.Is(err, game.ErrInvalidLobbyName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
	for _, n := range []int{1, 7} {
		if err := s.CreateLobby(context.Background(), "Camp", n); !errors.Is(err, game.ErrInvalidMaxPlayers) {
			t.Fatalf("expected invalid max players %d, got %v", n, err)
		}
	}
}

func TestCreateLobbyRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	s := env.newStore("carla")
	if err := s.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if err := s.CreateLobby(context.Background(), "Camp", 4); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestJoinLobbyConverges(t *testing.T) {
	env := newTestEnv(t)
	host := env.newStore("diane")
	if err := host.CreateLobby(context.Background(), "Camp A", 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	lobbyID := host.Snapshot().Lobby.ID

	guest := env.newStore("emile")
	if err := guest.JoinLobby(context.Background(), lobbyID); err != nil {
		t.Fatalf("join: %v", err)
	}

	if got := len(guest.Snapshot().Lobby.Players); got != 2 {
		t.Fatalf("guest sees %d players, want 2", got)
	}
	// The push converges the host's mirror too.
	if got := len(host.Snapshot().Lobby.Players); got != 2 {
		t.Fatalf("host sees %d players, want 2", got)
	}
}

func TestJoinLobbyNotFound(t *testing.T) {
	env := newTestEnv(t)
	s := env.newStore("fred")
	if err := s.JoinLobby(context.Background(), "missing-id"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJoinLobbyFull(t *testing.T) {
	env := newTestEnv(t)
	host := env.newStore("gus")
	if err := host.CreateLobby(context.Background(), "Duo", 2); err != nil {
		t.Fatalf("create: %v", err)
	}
	lobbyID := host.Snapshot().Lobby.ID
	if err := env.newStore("hela").JoinLobby(context.Background(), lobbyID); err != nil {
		t.Fatalf("second join: %v", err)
	}
	if err := env.newStore("ivan").JoinLobby(context.Background(), lobbyID); !errors.Is(err, ErrLobbyFull) {
		t.Fatalf("expected ErrLobbyFull, got %v", err)
	}
}

func TestLeaveLobbyIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	s := env.newStore("jules")
	if err := s.LeaveLobby(context.Background()); err != nil {
		t.Fatalf("leave without lobby must be a no-op: %v", err)
	}
	if err := s.CreateLobby(context.Background(), "Camp", 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.LeaveLobby(context.Background()); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := s.LeaveLobby(context.Background()); err != nil {
		t.Fatalf("second leave: %v", err)
	}
	if s.Snapshot().Lobby != nil {
		t.Fatal("lobby must be cleared after leave")
	}
}

func TestHostLeaveClosesLobbyForMembers(t *testing.T) {
	env := newTestEnv(t)
	host := env.newStore("karim")
	if err := host.CreateLobby(context.Background(), "Camp", 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	lobbyID := host.Snapshot().Lobby.ID
	guest := env.newStore("lea")
	if err := guest.JoinLobby(context.Background(), lobbyID); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := host.LeaveLobby(context.Background()); err != nil {
		t.Fatalf("host leave: %v", err)
	}
	if guest.Snapshot().Lobby != nil {
		t.Fatal("guest should converge to no-lobby after host closed it")
	}
	if err := env.newStore("marc").JoinLobby(context.Background(), lobbyID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("joining a deleted lobby: expected ErrNotFound, got %v", err)
	}
}

func TestSetReadyRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	host := env.newStore("nina")
	if err := host.CreateLobby(context.Background(), "Camp", 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	guest := env.newStore("omar")
	if err := guest.JoinLobby(context.Background(), host.Snapshot().Lobby.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	ready := func(s *Store) bool {
		sess := s.Snapshot().Session
		return sess != nil && sess.Ready
	}
	if ready(guest) {
		t.Fatal("guest must join unready")
	}
	if err := guest.SetReady(context.Background(), true); err != nil {
		t.Fatalf("set ready: %v", err)
	}
	if !ready(guest) {
		t.Fatal("guest should be ready")
	}
	if err := guest.SetReady(context.Background(), false); err != nil {
		t.Fatalf("unset ready: %v", err)
	}
	if ready(guest) {
		t.Fatal("toggling twice must restore the original flag")
	}
}

func TestSetReadyIsNoOpForHost(t *testing.T) {
	env := newTestEnv(t)
	host := env.newStore("paula")
	if err := host.CreateLobby(context.Background(), "Camp", 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := host.SetReady(context.Background(), true); err != nil {
		t.Fatalf("host set ready must be a no-op: %v", err)
	}
	if host.Snapshot().Session.Ready {
		t.Fatal("host readiness is not tracked")
	}
}

func TestUpdateLobbySettingsHostOnly(t *testing.T) {
	env := newTestEnv(t)
	host := env.newStore("rémi")
	if err := host.CreateLobby(context.Background(), "Camp", 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	guest := env.newStore("sara")
	if err := guest.JoinLobby(context.Background(), host.Snapshot().Lobby.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	settings := game.LobbySettings{
		Difficulty:         game.DifficultyHard,
		NightLengthMinutes: 8,
		StartingResources:  game.StartingScarce,
	}
	if err := guest.UpdateLobbySettings(context.Background(), settings); !errors.Is(err, ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
	if err := host.UpdateLobbySettings(context.Background(), settings); err != nil {
		t.Fatalf("host update: %v", err)
	}
	if got := guest.Snapshot().Lobby.Settings; got != settings {
		t.Fatalf("guest settings did not converge: %+v", got)
	}

	settings.NightLengthMinutes = 12
	if err := host.UpdateLobbySettings(context.Background(), settings); !errors.Is(err, game.ErrInvalidLobbySettings) {
		t.Fatalf("expected settings validation, got %v", err)
	}
}

func TestKickPlayer(t *testing.T) {
	env := newTestEnv(t)
	host := env.newStore("tom")
	if err := host.CreateLobby(context.Background(), "Camp A", 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	lobbyID := host.Snapshot().Lobby.ID
	guest := env.newStore("ursula")
	if err := guest.JoinLobby(context.Background(), lobbyID); err != nil {
		t.Fatalf("join: %v", err)
	}
	guestID := guest.Snapshot().Session.UserID

	if err := guest.KickPlayer(context.Background(), host.Snapshot().Session.UserID); !errors.Is(err, ErrNotHost) {
		t.Fatalf("non-host kick: expected ErrNotHost, got %v", err)
	}
	if err := host.KickPlayer(context.Background(), host.Snapshot().Session.UserID); !errors.Is(err, ErrCannotKickHost) {
		t.Fatalf("self-kick: expected ErrCannotKickHost, got %v", err)
	}

	if err := host.KickPlayer(context.Background(), guestID); err != nil {
		t.Fatalf("kick: %v", err)
	}
	if got := len(host.Snapshot().Lobby.Players); got != 1 {
		t.Fatalf("host sees %d players after kick, want 1", got)
	}
	if guest.Snapshot().Lobby != nil {
		t.Fatal("kicked guest should converge to no-lobby")
	}
	if err := host.KickPlayer(context.Background(), guestID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("kicking a non-member: expected ErrNotFound, got %v", err)
	}
}

func TestStartGame(t *testing.T) {
	env := newTestEnv(t)
	host := env.newStore("victor")
	if err := host.CreateLobby(context.Background(), "Camp A", 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	guest := env.newStore("wanda")
	if err := guest.JoinLobby(context.Background(), host.Snapshot().Lobby.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := guest.StartGame(context.Background()); !errors.Is(err, ErrNotHost) {
		t.Fatalf("guest start: expected ErrNotHost, got %v", err)
	}

	// Force start: guest never readied up.
	if err := host.StartGame(context.Background()); err != nil {
		t.Fatalf("host start: %v", err)
	}
	snap := host.Snapshot()
	if !snap.Lobby.Started {
		t.Fatal("lobby must be started")
	}
	if snap.Phase != game.PhaseCity {
		t.Fatalf("expected city phase, got %s", snap.Phase)
	}
	if len(snap.Houses) != game.HouseCount {
		t.Fatalf("expected generated world, got %d houses", len(snap.Houses))
	}

	// Members converge into the game through the push.
	guestSnap := guest.Snapshot()
	if !guestSnap.Lobby.Started || guestSnap.Phase != game.PhaseCity {
		t.Fatalf("guest did not converge into the game: %+v", guestSnap.Phase)
	}

	if err := host.StartGame(context.Background()); !errors.Is(err, ErrLobbyStarted) {
		t.Fatalf("second start: expected ErrLobbyStarted, got %v", err)
	}
}

func TestFullLobbyScenario(t *testing.T) {
	env := newTestEnv(t)
	host := env.newStore("xavier")
	if err := host.CreateLobby(context.Background(), "Camp A", 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	lobby := host.Snapshot().Lobby
	if len(lobby.Players) != 1 || lobby.MaxPlayers != 4 {
		t.Fatalf("expected 1/4 players, got %d/%d", len(lobby.Players), lobby.MaxPlayers)
	}

	guest := env.newStore("yara")
	if err := guest.JoinLobby(context.Background(), lobby.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if got := len(host.Snapshot().Lobby.Players); got != 2 {
		t.Fatalf("expected 2/4 players, got %d", got)
	}

	if err := host.KickPlayer(context.Background(), guest.Snapshot().Session.UserID); err != nil {
		t.Fatalf("kick: %v", err)
	}
	if got := len(host.Snapshot().Lobby.Players); got != 1 {
		t.Fatalf("expected 1/4 players after kick, got %d", got)
	}

	if err := host.StartGame(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := host.Snapshot()
	if !snap.Lobby.Started || snap.Phase == game.PhaseLobby {
		t.Fatal("phase must leave the lobby after start")
	}
}

func TestListLobbies(t *testing.T) {
	env := newTestEnv(t)
	a := env.newStore("zoe")
	if err := a.CreateLobby(context.Background(), "Premier", 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	b := env.newStore("abel")
	env.clock.Advance(time.Second)
	if err := b.CreateLobby(context.Background(), "Second", 2); err != nil {
		t.Fatalf("create: %v", err)
	}

	lobbies, err := a.ListLobbies(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lobbies) != 2 {
		t.Fatalf("expected 2 lobbies, got %d", len(lobbies))
	}
	if lobbies[0].Name != "Premier" || lobbies[1].Name != "Second" {
		t.Fatalf("expected creation order, got %q then %q", lobbies[0].Name, lobbies[1].Name)
	}
}

// hookedLobbyRepo lets a test interleave another operation in the middle
// of a remote round-trip.
type hookedLobbyRepo struct {
	ports.LobbyRepository
	onGet func()
}

func (r *hookedLobbyRepo) GetByID(ctx context.Context, id string) (game.Lobby, error) {
	if r.onGet != nil {
		r.onGet()
	}
	return r.LobbyRepository.GetByID(ctx, id)
}

func TestStaleJoinResponseDiscarded(t *testing.T) {
	env := newTestEnv(t)
	host := env.newStore("noa")
	if err := host.CreateLobby(context.Background(), "Camp", 4); err != nil {
		t.Fatalf("create: %v", err)
	}
	lobbyID := host.Snapshot().Lobby.ID

	var guest *Store
	repo := &hookedLobbyRepo{LobbyRepository: repomem.NewLobbyRepo(env.backend)}
	fired := false
	repo.onGet = func() {
		// The user signs out while the join response is in flight.
		if fired {
			return
		}
		fired = true
		if err := guest.SignOut(context.Background()); err != nil {
			t.Errorf("sign out during join: %v", err)
		}
	}
	guest = New(Config{Auth: env.svc, Lobbies: repo, Feed: env.bus, Now: env.clock.Now})
	if err := guest.SignUp(context.Background(), "olga@example.com", "motdepasse-olga", "olga"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if err := guest.JoinLobby(context.Background(), lobbyID); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if guest.Snapshot().Lobby != nil {
		t.Fatal("stale join must not resurrect a lobby")
	}
	if got := len(host.Snapshot().Lobby.Players); got != 1 {
		t.Fatalf("stale membership must be rolled back, host sees %d players", got)
	}
}
