package components

// Kind is a creature's diet.
type Kind uint8

const (
	Vegan Kind = iota
	Carnivorous
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Vegan:
		return "vegan"
	case Carnivorous:
		return "carnivorous"
	default:
		return "unknown"
	}
}

// IsCarnivore reports whether the kind hunts other creatures.
func (k Kind) IsCarnivore() bool {
	return k == Carnivorous
}

// Creature holds the lifecycle state of a living creature.
type Creature struct {
	Kind    Kind    `inspect:"label"`
	Hunger  float64 `inspect:"bar,max:10"`
	Timeout float64 `inspect:"label,fmt:%.1f"` // reproduction timeout; mating allowed at <= 0
	Life    float64 `inspect:"label,fmt:%.1fs"`
}

// Food tags an edible, immobile entity.
type Food struct{}
