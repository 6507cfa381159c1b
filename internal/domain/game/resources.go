package game

// BaseResources is the shared base stockpile. Quantities never go below
// zero; deltas that would overdraw clamp at the floor.
type BaseResources map[Resource]int

func NewBaseResources(scale StartingResources) BaseResources {
	base := BaseResources{
		ResourceFood:      10,
		ResourceWater:     10,
		ResourceMedicine:  5,
		ResourceMaterials: 10,
	}
	switch scale {
	case StartingScarce:
		for k, v := range base {
			base[k] = v / 2
		}
	case StartingAbundant:
		for k, v := range base {
			base[k] = v * 2
		}
	}
	return base
}

// Apply adds a signed delta to one resource, flooring at zero. It reports
// the quantity actually applied (a -100 delta on a stock of 10 applies -10).
func (r BaseResources) Apply(kind Resource, delta int) int {
	current := r[kind]
	next := current + delta
	if next < 0 {
		next = 0
	}
	r[kind] = next
	return next - current
}

func (r BaseResources) Clone() BaseResources {
	out := make(BaseResources, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
