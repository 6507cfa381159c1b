package game

import "time"

type Resource string

const (
	ResourceFood      Resource = "food"
	ResourceWater     Resource = "water"
	ResourceMedicine  Resource = "medicine"
	ResourceMaterials Resource = "materials"
)

// Resources lists every resource kind in a stable order.
var Resources = []Resource{ResourceFood, ResourceWater, ResourceMedicine, ResourceMaterials}

// Phase is the top-level view mode. Time of day is tracked separately by
// the Clock; movement curfew and day pressure key off DayPhase, not Phase.
type Phase string

const (
	PhaseInitial  Phase = "initial"
	PhaseLobby    Phase = "lobby"
	PhaseCity     Phase = "city"
	PhaseBuilding Phase = "building"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) ManhattanDistance(o Position) int {
	dx := p.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

type HouseType string

const (
	HouseResidential HouseType = "residential"
	HouseStore       HouseType = "store"
	HouseHospital    HouseType = "hospital"
	HouseWarehouse   HouseType = "warehouse"
)

type Room struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Loot        []Resource `json:"loot,omitempty"`
}

type House struct {
	ID       string    `json:"id"`
	Position Position  `json:"position"`
	Type     HouseType `json:"type"`
	Explored bool      `json:"explored"`
	Lootable bool      `json:"lootable"`
	Rooms    []Room    `json:"rooms"`
}

type Survivor struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Health    int              `json:"health"`
	Morale    int              `json:"morale"`
	Skills    []string         `json:"skills"`
	Inventory map[Resource]int `json:"inventory"`
	Position  Position         `json:"position"`
}

type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

type StartingResources string

const (
	StartingScarce   StartingResources = "scarce"
	StartingNormal   StartingResources = "normal"
	StartingAbundant StartingResources = "abundant"
)

// LobbySettings is a closed record; the wire format carries it as a blob
// but no open-ended keys are accepted.
type LobbySettings struct {
	Difficulty         Difficulty        `json:"difficulty"`
	NightLengthMinutes int               `json:"night_length_minutes"`
	StartingResources  StartingResources `json:"starting_resources"`
}

type Lobby struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	HostID     string        `json:"host_id"`
	Players    []Player      `json:"players"`
	MaxPlayers int           `json:"max_players"`
	Started    bool          `json:"started"`
	Settings   LobbySettings `json:"settings"`
	CreatedAt  time.Time     `json:"created_at"`
}
