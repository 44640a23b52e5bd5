package world

import "fmt"

// Registry tracks the grid instances created at startup. Handlers bind to
// the single active instance; anything other than exactly one is a
// bootstrap bug, caught once at startup instead of re-derived per event.
type Registry struct {
	worlds []*World
}

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) Add(w *World) {
	r.worlds = append(r.worlds, w)
}

// Active returns the sole registered world, or an error if zero or more
// than one exist.
func (r *Registry) Active() (*World, error) {
	if len(r.worlds) != 1 {
		return nil, fmt.Errorf("world registry: want exactly 1 active world, have %d", len(r.worlds))
	}
	return r.worlds[0], nil
}
