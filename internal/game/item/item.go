// Package item defines the item palette and the item-to-block mapping the
// placement rules consult. Not every item corresponds to a block.
package item

import "blockyard.gg/internal/game/block"

// ID identifies an item kind.
type ID uint16

const (
	None ID = iota
	Stone
	Dirt
	GrassBlock
	OakPlanks
	OakStairs
	OakSlab
	StoneStairs
	StoneSlab
	Furnace
	Stick
	Feather

	numItems
)

type itemDef struct {
	name     string
	block    block.Kind
	hasBlock bool
}

var items = [numItems]itemDef{
	None:       {name: "NONE"},
	Stone:      {name: "STONE", block: block.Stone, hasBlock: true},
	Dirt:       {name: "DIRT", block: block.Dirt, hasBlock: true},
	GrassBlock: {name: "GRASS_BLOCK", block: block.GrassBlock, hasBlock: true},
	OakPlanks:  {name: "OAK_PLANKS", block: block.OakPlanks, hasBlock: true},
	OakStairs:  {name: "OAK_STAIRS", block: block.OakStairs, hasBlock: true},
	OakSlab:    {name: "OAK_SLAB", block: block.OakSlab, hasBlock: true},
	StoneStairs: {
		name: "STONE_STAIRS", block: block.StoneStairs, hasBlock: true,
	},
	StoneSlab: {name: "STONE_SLAB", block: block.StoneSlab, hasBlock: true},
	Furnace:   {name: "FURNACE", block: block.Furnace, hasBlock: true},
	Stick:     {name: "STICK"},
	Feather:   {name: "FEATHER"},
}

func (i ID) valid() bool { return i < numItems }

func (i ID) String() string {
	if !i.valid() {
		return "UNKNOWN"
	}
	return items[i].name
}

// BlockKind resolves the item to the block kind it places. The second
// return is false for items that cannot be placed.
func (i ID) BlockKind() (block.Kind, bool) {
	if !i.valid() || !items[i].hasBlock {
		return block.Air, false
	}
	return items[i].block, true
}
