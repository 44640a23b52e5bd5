// Package block defines the block kinds the server knows about, the
// per-kind property schema, and the compact block state value stored in
// the world grid.
package block

// Kind identifies a block kind. The zero value is air.
type Kind uint16

const (
	Air Kind = iota
	Stone
	Dirt
	GrassBlock
	Water
	ShortGrass
	OakPlanks
	OakStairs
	OakSlab
	StoneStairs
	StoneSlab
	Furnace

	numKinds
)

// PropName names a block state property. Only kinds whose schema lists a
// property carry a value for it.
type PropName uint8

const (
	Facing PropName = iota
	Half
	Type

	numProps
)

// PropValue is a block state property value. Unset means "absent".
type PropValue uint8

const (
	Unset PropValue = iota
	North
	South
	West
	East
	Top
	Bottom
)

type kindDef struct {
	name        string
	replaceable bool
	props       [numProps]bool
	defaults    [numProps]PropValue
}

var kinds = [numKinds]kindDef{
	Air:        {name: "AIR", replaceable: true},
	Stone:      {name: "STONE"},
	Dirt:       {name: "DIRT"},
	GrassBlock: {name: "GRASS_BLOCK"},
	Water:      {name: "WATER", replaceable: true},
	ShortGrass: {name: "SHORT_GRASS", replaceable: true},
	OakPlanks:  {name: "OAK_PLANKS"},
	OakStairs: {
		name:     "OAK_STAIRS",
		props:    propSet(Facing, Half),
		defaults: propDefaults(North, Bottom, Unset),
	},
	OakSlab: {
		name:     "OAK_SLAB",
		props:    propSet(Type),
		defaults: propDefaults(Unset, Unset, Bottom),
	},
	StoneStairs: {
		name:     "STONE_STAIRS",
		props:    propSet(Facing, Half),
		defaults: propDefaults(North, Bottom, Unset),
	},
	StoneSlab: {
		name:     "STONE_SLAB",
		props:    propSet(Type),
		defaults: propDefaults(Unset, Unset, Bottom),
	},
	Furnace: {
		name:     "FURNACE",
		props:    propSet(Facing),
		defaults: propDefaults(North, Unset, Unset),
	},
}

func propSet(ps ...PropName) [numProps]bool {
	var out [numProps]bool
	for _, p := range ps {
		out[p] = true
	}
	return out
}

func propDefaults(facing, half, typ PropValue) [numProps]PropValue {
	return [numProps]PropValue{Facing: facing, Half: half, Type: typ}
}

func (k Kind) valid() bool { return k < numKinds }

func (k Kind) String() string {
	if !k.valid() {
		return "UNKNOWN"
	}
	return kinds[k].name
}

// HasProp reports whether the kind's schema defines the property.
func (k Kind) HasProp(p PropName) bool {
	return k.valid() && p < numProps && kinds[k].props[p]
}

// DefaultState returns the kind's default state with every schema property
// set to its default value.
func (k Kind) DefaultState() State {
	s := State{kind: k}
	if k.valid() {
		s.props = kinds[k].defaults
	}
	return s
}

// State is a block kind plus its property assignments. The zero value is
// air. States are small values compared with ==, which the grid and tests
// rely on.
type State struct {
	kind  Kind
	props [numProps]PropValue
}

func (s State) Kind() Kind { return s.kind }

// Get probes a property. Properties outside the kind's schema are absent,
// never an error.
func (s State) Get(p PropName) (PropValue, bool) {
	if !s.kind.HasProp(p) || s.props[p] == Unset {
		return Unset, false
	}
	return s.props[p], true
}

// Set returns a state with the property assigned. Setting a property the
// kind does not define is a no-op, mirroring the schema-gated writes the
// placement rules depend on.
func (s State) Set(p PropName, v PropValue) State {
	if !s.kind.HasProp(p) {
		return s
	}
	s.props[p] = v
	return s
}

// Replaceable reports whether a placement may overwrite this state in
// place (air, liquid, low vegetation).
func (s State) Replaceable() bool {
	return s.kind.valid() && kinds[s.kind].replaceable
}

// Props returns the state's defined property assignments, keyed by the
// lowercase wire names.
func (s State) Props() map[string]string {
	var out map[string]string
	for p := PropName(0); p < numProps; p++ {
		if v, ok := s.Get(p); ok {
			if out == nil {
				out = make(map[string]string, int(numProps))
			}
			out[p.String()] = v.String()
		}
	}
	return out
}

func (p PropName) String() string {
	switch p {
	case Facing:
		return "facing"
	case Half:
		return "half"
	case Type:
		return "type"
	}
	return "unknown"
}

func (v PropValue) String() string {
	switch v {
	case North:
		return "north"
	case South:
		return "south"
	case West:
		return "west"
	case East:
		return "east"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	}
	return "unset"
}
