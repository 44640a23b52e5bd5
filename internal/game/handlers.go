package game

import (
	"blockyard.gg/internal/game/block"
	"blockyard.gg/internal/game/event"
	"blockyard.gg/internal/game/session"
	"blockyard.gg/internal/game/world"
)

// Step applies one tick's event batch. Handlers run in a fixed order with
// exclusive access to the grid and sessions; if two handlers target the
// same cell in one tick, the later handler wins. Connect/disconnect are
// applied first so later handlers see sessions fully attached or fully
// removed.
func (g *Game) Step(batch *event.Batch) []Delta {
	var deltas []Delta

	g.handleRemoved(batch.Removed)
	g.handleAdded(batch.Added)
	g.applyLooks(batch.Looks)
	g.toggleModeOnSneak(batch.Sneaks)
	g.digCreative(batch.DigStart, &deltas)
	g.digSurvival(batch.DigFinish, &deltas)
	g.placeBlocks(batch.Uses, &deltas)

	return deltas
}

func (g *Game) handleRemoved(evs []event.ClientRemoved) {
	for _, ev := range evs {
		g.sessions.Remove(ev.Client)
	}
}

// handleAdded attaches new sessions: spawn transform above the ground
// slab, Creative mode, a starter hotbar, and a one-time greeting.
func (g *Game) handleAdded(evs []event.ClientAdded) {
	for _, ev := range evs {
		s := ev.Session
		s.Pos = session.Vec3{X: 0, Y: float64(g.cfg.GroundY + 1), Z: 0}
		s.Mode = session.Creative
		s.HeldSlot = 0
		if _, ok := s.Inventory.Slot(0); !ok {
			for i, stack := range session.StarterStacks() {
				s.Inventory.SetSlot(i, stack)
			}
		}
		g.sessions.Add(s)
		s.SendMessage(greeting)
	}
}

func (g *Game) applyLooks(evs []event.UpdateLook) {
	for _, ev := range evs {
		s, ok := g.sessions.Get(ev.Client)
		if !ok {
			continue
		}
		s.Yaw = ev.Yaw
	}
}

// toggleModeOnSneak flips Survival<->Creative; any other mode normalizes
// to Creative. Events for unknown clients are expected churn, not errors.
func (g *Game) toggleModeOnSneak(evs []event.StartSneaking) {
	for _, ev := range evs {
		s, ok := g.sessions.Get(ev.Client)
		if !ok {
			continue
		}
		switch s.Mode {
		case session.Survival:
			s.Mode = session.Creative
		case session.Creative:
			s.Mode = session.Survival
		default:
			s.Mode = session.Creative
		}
	}
}

// digCreative clears the block on dig-start, creative mode only.
func (g *Game) digCreative(evs []event.StartDigging, deltas *[]Delta) {
	for _, ev := range evs {
		s, ok := g.sessions.Get(ev.Client)
		if !ok {
			continue
		}
		if s.Mode == session.Creative {
			g.setBlock(ev.Pos, block.Air.DefaultState(), deltas)
		}
	}
}

// digSurvival clears the block on dig-finish, survival mode only. The dig
// duration between start and finish is gated by the protocol layer.
func (g *Game) digSurvival(evs []event.FinishDigging, deltas *[]Delta) {
	for _, ev := range evs {
		s, ok := g.sessions.Get(ev.Client)
		if !ok {
			continue
		}
		if s.Mode == session.Survival {
			g.setBlock(ev.Pos, block.Air.DefaultState(), deltas)
		}
	}
}

// placeBlocks resolves orientation, shape properties, inventory
// consumption and the target cell for a placed block.
func (g *Game) placeBlocks(evs []event.UseItemOnBlock, deltas *[]Delta) {
	for _, ev := range evs {
		if ev.Hand != event.MainHand {
			continue
		}
		s, ok := g.sessions.Get(ev.Client)
		if !ok {
			continue
		}
		stack, ok := s.Inventory.Slot(s.HeldSlot)
		if !ok {
			// no item in the held slot
			continue
		}
		kind, ok := stack.Item.BlockKind()
		if !ok {
			// can't place this item as a block
			continue
		}

		if s.Mode == session.Survival {
			if stack.Count > 1 {
				stack.Count--
				s.Inventory.SetSlot(s.HeldSlot, stack)
			} else {
				s.Inventory.ClearSlot(s.HeldSlot)
			}
		}

		st := kind.DefaultState()
		st = st.Set(block.Facing, block.FacingFromYaw(s.Yaw))

		if kind.HasProp(block.Half) || kind.HasProp(block.Type) {
			var v block.PropValue
			switch {
			case ev.Face == event.FaceBottom:
				v = block.Top
			case ev.Face == event.FaceTop:
				v = block.Bottom
			default:
				// Side face: the vertical hit offset picks the half.
				if ev.Cursor[1] > 0.5 {
					v = block.Top
				} else {
					v = block.Bottom
				}
			}
			st = st.Set(block.Half, v)
			st = st.Set(block.Type, v)
		}

		target := ev.Pos
		if !g.world.Block(ev.Pos).Replaceable() {
			target = ev.Pos.Add(ev.Face.Offset())
		}
		g.setBlock(target, st, deltas)
	}
}

func (g *Game) setBlock(pos world.Vec3i, st block.State, deltas *[]Delta) {
	g.world.SetBlock(pos, st)
	*deltas = append(*deltas, Delta{Pos: pos, State: st})
}
