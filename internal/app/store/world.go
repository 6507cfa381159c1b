package store

import (
	"fmt"

	"lastcity/internal/app/ports"
	"lastcity/internal/domain/game"
)

var houseLabels = map[game.HouseType]string{
	game.HouseResidential: "la maison",
	game.HouseStore:       "le magasin",
	game.HouseHospital:    "l'hôpital",
	game.HouseWarehouse:   "l'entrepôt",
}

// startWorldLocked boots the simulation: grid, survivors, stockpile and
// the session clock anchored at now.
func (s *Store) startWorldLocked(settings game.LobbySettings) {
	world := game.GenerateWorld(s.cfg.Rand)
	s.houses = world.Houses
	s.survivors = world.Survivors
	s.playerPosition = game.Position{}
	s.selectedHouse = ""
	s.baseResources = game.NewBaseResources(settings.StartingResources)
	s.baseDefense = 50
	s.clock = game.ClockForSettings(s.cfg.Now(), settings)
	s.phase = game.PhaseCity
	s.addEventLocked("La partie commence. Explorez la ville avant la nuit.")
}

func (s *Store) resetWorldLocked() {
	s.houses = nil
	s.survivors = nil
	s.playerPosition = game.Position{}
	s.selectedHouse = ""
	s.baseResources = game.NewBaseResources(game.StartingNormal)
	s.baseDefense = 50
	s.events = nil
}

// MovePlayer steps to an adjacent cell. Moves are rejected at a Manhattan
// distance other than 1 and during the night curfew; the gate lives here,
// not in the view layer.
func (s *Store) MovePlayer(pos game.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gameStartedLocked() {
		return ErrGameNotStarted
	}
	if pos.X < game.GridMin || pos.X > game.GridMax || pos.Y < game.GridMin || pos.Y > game.GridMax {
		return ErrInvalidMove
	}
	if s.playerPosition.ManhattanDistance(pos) != 1 {
		return ErrInvalidMove
	}
	if phase, _ := s.clock.PhaseAt(s.cfg.Now()); phase == game.DayPhaseNight {
		return ErrNightCurfew
	}
	s.playerPosition = pos
	s.notifyLocked()
	return nil
}

// ExploreHouse flips the explored flag, once. Repeat calls and unknown
// ids have no effect.
func (s *Store) ExploreHouse(houseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gameStartedLocked() {
		return
	}
	for i := range s.houses {
		if s.houses[i].ID != houseID || s.houses[i].Explored {
			continue
		}
		s.houses[i].Explored = true
		s.addEventLocked(fmt.Sprintf("Vous avez exploré %s en (%d,%d).",
			houseLabels[s.houses[i].Type], s.houses[i].Position.X, s.houses[i].Position.Y))
		s.notifyLocked()
		return
	}
}

// SelectHouse sets the viewed house and flips the city/building view;
// the empty id returns to the city.
func (s *Store) SelectHouse(houseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gameStartedLocked() {
		return ErrGameNotStarted
	}
	if houseID == "" {
		s.selectedHouse = ""
		s.phase = game.PhaseCity
		s.notifyLocked()
		return nil
	}
	if s.houseByIDLocked(houseID) == nil {
		return ports.ErrNotFound
	}
	s.selectedHouse = houseID
	s.phase = game.PhaseBuilding
	s.notifyLocked()
	return nil
}

// LootHouse empties an explored house into the base stockpile. Each house
// is lootable exactly once; the collected amounts are returned.
func (s *Store) LootHouse(houseID string) (map[game.Resource]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gameStartedLocked() {
		return nil, ErrGameNotStarted
	}
	house := s.houseByIDLocked(houseID)
	if house == nil {
		return nil, ports.ErrNotFound
	}
	if !house.Explored || !house.Lootable {
		return nil, ErrHouseLooted
	}

	collected := map[game.Resource]int{}
	for _, room := range house.Rooms {
		for _, kind := range room.Loot {
			amount := 1 + s.cfg.Rand.Intn(3)
			s.baseResources.Apply(kind, amount)
			collected[kind] += amount
		}
	}
	house.Lootable = false
	s.addEventLocked(fmt.Sprintf("Vous avez fouillé %s.", houseLabels[house.Type]))
	s.notifyLocked()
	return collected, nil
}

// AddResource applies a signed delta to one stockpile entry, floored at zero.
func (s *Store) AddResource(kind game.Resource, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case game.ResourceFood, game.ResourceWater, game.ResourceMedicine, game.ResourceMaterials:
	default:
		return ports.ErrNotFound
	}
	s.baseResources.Apply(kind, amount)
	s.notifyLocked()
	return nil
}

// AddEvent prepends a log line, keeping the 50 most recent entries.
func (s *Store) AddEvent(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addEventLocked(text)
	s.notifyLocked()
}

func (s *Store) addEventLocked(text string) {
	s.events = append([]string{text}, s.events...)
	if len(s.events) > maxEvents {
		s.events = s.events[:maxEvents]
	}
}

// UpdateBaseDefense is an absolute set, clamped to 0..100.
func (s *Store) UpdateBaseDefense(value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	s.baseDefense = value
	s.notifyLocked()
}

// UpdateSurvivor applies health/morale deltas, clamped to 0..100. A
// survivor whose health reaches zero is removed from the roster.
func (s *Store) UpdateSurvivor(survivorID string, healthDelta, moraleDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gameStartedLocked() {
		return ErrGameNotStarted
	}
	for i := range s.survivors {
		if s.survivors[i].ID != survivorID {
			continue
		}
		s.survivors[i].Health = clampPercent(s.survivors[i].Health + healthDelta)
		s.survivors[i].Morale = clampPercent(s.survivors[i].Morale + moraleDelta)
		if s.survivors[i].Health == 0 {
			s.addEventLocked(fmt.Sprintf("%s n'a pas survécu.", s.survivors[i].Name))
			s.survivors = append(s.survivors[:i], s.survivors[i+1:]...)
		}
		s.notifyLocked()
		return nil
	}
	return ports.ErrNotFound
}

func (s *Store) houseByIDLocked(houseID string) *game.House {
	for i := range s.houses {
		if s.houses[i].ID == houseID {
			return &s.houses[i]
		}
	}
	return nil
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
