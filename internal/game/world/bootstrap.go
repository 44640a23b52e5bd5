package world

import "blockyard.gg/internal/game/block"

// BootstrapConfig fixes the initial terrain: empty chunks inside the chunk
// radius, then a flat slab of ground at GroundY inside the surface radius.
type BootstrapConfig struct {
	ChunkRadius   int
	SurfaceRadius int
	GroundY       int
	Ground        block.Kind
}

// Bootstrap populates a fresh grid. It runs exactly once before any client
// connects and is deterministic; re-running it against a non-fresh grid is
// not supported (chunks are replaced, nothing is deleted).
func Bootstrap(w *World, cfg BootstrapConfig) {
	for cz := -cfg.ChunkRadius; cz < cfg.ChunkRadius; cz++ {
		for cx := -cfg.ChunkRadius; cx < cfg.ChunkRadius; cx++ {
			w.InsertChunk(ChunkKey{CX: cx, CZ: cz})
		}
	}

	ground := cfg.Ground.DefaultState()
	for z := -cfg.SurfaceRadius; z < cfg.SurfaceRadius; z++ {
		for x := -cfg.SurfaceRadius; x < cfg.SurfaceRadius; x++ {
			w.SetBlock(Vec3i{X: x, Y: cfg.GroundY, Z: z}, ground)
		}
	}
}
