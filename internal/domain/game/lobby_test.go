package game

import "testing"

func TestValidateMaxPlayersBounds(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6} {
		if err := ValidateMaxPlayers(n); err != nil {
			t.Fatalf("expected %d players valid, got %v", n, err)
		}
	}
	for _, n := range []int{0, 1, 7, -3} {
		if err := ValidateMaxPlayers(n); err == nil {
			t.Fatalf("expected %d players rejected", n)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("default settings must validate: %v", err)
	}

	bad := []LobbySettings{
		{Difficulty: "brutal", NightLengthMinutes: 5, StartingResources: StartingNormal},
		{Difficulty: DifficultyEasy, NightLengthMinutes: 0, StartingResources: StartingNormal},
		{Difficulty: DifficultyEasy, NightLengthMinutes: 11, StartingResources: StartingNormal},
		{Difficulty: DifficultyEasy, NightLengthMinutes: 5, StartingResources: "infinite"},
	}
	for i, s := range bad {
		if err := s.Validate(); err == nil {
			t.Fatalf("case %d: expected settings rejected: %+v", i, s)
		}
	}
}

func TestLobbyMembershipHelpers(t *testing.T) {
	l := Lobby{
		HostID:     "p1",
		MaxPlayers: 2,
		Players: []Player{
			{ID: "p1", Name: "Alice"},
			{ID: "p2", Name: "Bob", Ready: true},
		},
	}

	if !l.IsHost("p1") || l.IsHost("p2") || l.IsHost("") {
		t.Fatal("host detection broken")
	}
	if !l.IsFull() {
		t.Fatal("expected lobby full at 2/2")
	}
	if !l.HasPlayer("p2") || l.HasPlayer("p3") {
		t.Fatal("membership lookup broken")
	}
	if !l.AllReady() {
		t.Fatal("expected all non-host players ready")
	}

	l.Players[1].Ready = false
	if l.AllReady() {
		t.Fatal("expected not all ready")
	}
}
