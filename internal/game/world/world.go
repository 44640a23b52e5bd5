// Package world holds the shared voxel grid: a sparse map of loaded
// chunks addressed by absolute block coordinate.
package world

import (
	"fmt"
	"sort"

	"blockyard.gg/internal/game/block"
)

const (
	// ChunkSize is the horizontal chunk edge length in blocks.
	ChunkSize = 16
	// ChunkHeight is the vertical extent of every chunk. Valid block Y
	// coordinates are [0, ChunkHeight).
	ChunkHeight = 128

	chunkVolume = ChunkSize * ChunkSize * ChunkHeight
)

// Vec3i is an absolute block coordinate.
type Vec3i struct {
	X, Y, Z int
}

func (v Vec3i) Add(o Vec3i) Vec3i {
	return Vec3i{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// ChunkKey addresses a loaded chunk column.
type ChunkKey struct {
	CX int
	CZ int
}

// Chunk is a fixed-size block of cells, default-filled with air.
type Chunk struct {
	blocks []block.State
}

func newChunk() *Chunk {
	return &Chunk{blocks: make([]block.State, chunkVolume)}
}

func chunkIndex(lx, y, lz int) int {
	// x fastest, then z, then y
	return (y*ChunkSize+lz)*ChunkSize + lx
}

func (c *Chunk) get(lx, y, lz int) block.State {
	return c.blocks[chunkIndex(lx, y, lz)]
}

func (c *Chunk) set(lx, y, lz int, s block.State) {
	c.blocks[chunkIndex(lx, y, lz)] = s
}

// World is the sparse chunk grid. It is owned by the tick loop and must
// not be touched concurrently with a tick pass.
type World struct {
	chunks map[ChunkKey]*Chunk
}

func New() *World {
	return &World{chunks: map[ChunkKey]*Chunk{}}
}

// InsertChunk loads an empty chunk at the key, replacing any previous one.
func (w *World) InsertChunk(k ChunkKey) {
	w.chunks[k] = newChunk()
}

// LoadedChunks returns the number of loaded chunks.
func (w *World) LoadedChunks() int { return len(w.chunks) }

// LoadedChunkKeys returns the loaded chunk keys in deterministic order.
func (w *World) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(w.chunks))
	for k := range w.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

func keyFor(pos Vec3i) (ChunkKey, int, int) {
	cx := floorDiv(pos.X, ChunkSize)
	cz := floorDiv(pos.Z, ChunkSize)
	return ChunkKey{CX: cx, CZ: cz}, mod(pos.X, ChunkSize), mod(pos.Z, ChunkSize)
}

func (w *World) chunkAt(pos Vec3i) (*Chunk, int, int) {
	if pos.Y < 0 || pos.Y >= ChunkHeight {
		panic(fmt.Sprintf("world: y=%d outside loaded height at %v", pos.Y, pos))
	}
	k, lx, lz := keyFor(pos)
	ch, ok := w.chunks[k]
	if !ok {
		panic(fmt.Sprintf("world: chunk %v not loaded (pos %v)", k, pos))
	}
	return ch, lx, lz
}

// Block reads the state at an absolute coordinate. Touching an unloaded
// chunk is a contract violation: the bootstrap guarantees every reachable
// coordinate is loaded, so this panics rather than returning an error.
func (w *World) Block(pos Vec3i) block.State {
	ch, lx, lz := w.chunkAt(pos)
	return ch.get(lx, pos.Y, lz)
}

// SetBlock writes the state at an absolute coordinate. Same contract as
// Block: the target chunk must be loaded.
func (w *World) SetBlock(pos Vec3i, s block.State) {
	ch, lx, lz := w.chunkAt(pos)
	ch.set(lx, pos.Y, lz, s)
}

func floorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
