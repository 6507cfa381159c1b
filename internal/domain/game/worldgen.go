package game

import (
	"fmt"
	"math/rand"
)

const (
	GridMin    = -3
	GridMax    = 3
	HouseCount = 10
)

// World is the per-session play area: the generated city grid plus the
// survivors sheltering in it. Regenerated once per session start.
type World struct {
	Houses    []House
	Survivors []Survivor
}

var houseTypes = []HouseType{HouseResidential, HouseStore, HouseHospital, HouseWarehouse}

// roomTemplates is deterministic per house type; only placement and type
// assignment are random.
var roomTemplates = map[HouseType][]Room{
	HouseResidential: {
		{Name: "Salon", Description: "Un salon poussiéreux aux volets clos."},
		{Name: "Cuisine", Description: "Des placards entrouverts, quelques conserves oubliées.", Loot: []Resource{ResourceFood, ResourceWater}},
		{Name: "Chambre", Description: "Une armoire à pharmacie au-dessus du lavabo.", Loot: []Resource{ResourceMedicine}},
	},
	HouseStore: {
		{Name: "Zone principale", Description: "Des rayons renversés, des étagères à moitié pleines.", Loot: []Resource{ResourceFood, ResourceWater}},
		{Name: "Réserve", Description: "Cartons et palettes entassés dans la pénombre.", Loot: []Resource{ResourceMaterials}},
	},
	HouseHospital: {
		{Name: "Accueil", Description: "Des dossiers éparpillés sur le comptoir."},
		{Name: "Pharmacie", Description: "Des armoires vitrées, certaines encore verrouillées.", Loot: []Resource{ResourceMedicine}},
		{Name: "Salle de soins", Description: "Des lits défaits, du matériel médical abandonné.", Loot: []Resource{ResourceMedicine}},
	},
	HouseWarehouse: {
		{Name: "Entrepôt principal", Description: "Des rangées de rayonnages métalliques.", Loot: []Resource{ResourceMaterials}},
		{Name: "Zone de stockage", Description: "Des caisses scellées, peut-être intactes.", Loot: []Resource{ResourceMaterials, ResourceFood}},
	},
}

var survivorNames = []string{"Luc", "Marie", "Antoine", "Sophie", "Karim", "Élodie", "Pascal", "Inès"}

var survivorSkills = []string{"scavenger", "medic", "builder", "scout"}

// GenerateWorld builds the session world from the given random source.
// Exactly HouseCount houses land on distinct cells of the grid, never on
// the origin (the player start).
func GenerateWorld(rng *rand.Rand) World {
	houses := generateHouses(rng)
	return World{
		Houses:    houses,
		Survivors: generateSurvivors(rng, houses),
	}
}

func generateHouses(rng *rand.Rand) []House {
	taken := map[Position]bool{{X: 0, Y: 0}: true}
	houses := make([]House, 0, HouseCount)
	for i := 0; len(houses) < HouseCount; i++ {
		pos := Position{
			X: GridMin + rng.Intn(GridMax-GridMin+1),
			Y: GridMin + rng.Intn(GridMax-GridMin+1),
		}
		if taken[pos] {
			continue
		}
		taken[pos] = true
		houseType := houseTypes[rng.Intn(len(houseTypes))]
		houses = append(houses, House{
			ID:       fmt.Sprintf("house-%d", len(houses)+1),
			Position: pos,
			Type:     houseType,
			Lootable: true,
			Rooms:    cloneRooms(roomTemplates[houseType]),
		})
	}
	return houses
}

func generateSurvivors(rng *rand.Rand, houses []House) []Survivor {
	count := 3
	names := append([]string(nil), survivorNames...)
	rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	survivors := make([]Survivor, 0, count)
	for i := 0; i < count && i < len(names); i++ {
		home := houses[rng.Intn(len(houses))]
		survivors = append(survivors, Survivor{
			ID:     fmt.Sprintf("survivor-%d", i+1),
			Name:   names[i],
			Health: 60 + rng.Intn(41),
			Morale: 40 + rng.Intn(61),
			Skills: []string{survivorSkills[rng.Intn(len(survivorSkills))]},
			Inventory: map[Resource]int{
				Resources[rng.Intn(len(Resources))]: 1 + rng.Intn(2),
			},
			Position: home.Position,
		})
	}
	return survivors
}

func cloneRooms(rooms []Room) []Room {
	out := make([]Room, len(rooms))
	copy(out, rooms)
	for i, r := range rooms {
		if r.Loot != nil {
			out[i].Loot = append([]Resource(nil), r.Loot...)
		}
	}
	return out
}
