package game

import (
	"io"
	"log"
	"testing"

	"blockyard.gg/internal/game/block"
	"blockyard.gg/internal/game/event"
	"blockyard.gg/internal/game/item"
	"blockyard.gg/internal/game/session"
	"blockyard.gg/internal/game/world"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g, err := New(Config{
		ChunkRadius:   2,
		SurfaceRadius: 16,
		GroundY:       64,
		TickRateHz:    20,
	}, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func joinClient(t *testing.T, g *Game, id string) *session.Session {
	t.Helper()
	s := &session.Session{ID: id, Name: id}
	batch := event.Batch{Added: []event.ClientAdded{{Session: s}}}
	g.Step(&batch)
	return s
}

func step(g *Game, evs ...event.Gameplay) []Delta {
	var batch event.Batch
	for _, ev := range evs {
		batch.Add(ev)
	}
	return g.Step(&batch)
}

func TestLifecycleAttach(t *testing.T) {
	g := newTestGame(t)
	s := joinClient(t, g, "p1")

	if s.Pos != (session.Vec3{X: 0, Y: 65, Z: 0}) {
		t.Fatalf("spawn pos = %+v", s.Pos)
	}
	if s.Mode != session.Creative {
		t.Fatalf("spawn mode = %v; want creative", s.Mode)
	}
	msgs := s.TakeMessages()
	if len(msgs) != 1 || msgs[0] != greeting {
		t.Fatalf("greeting = %v", msgs)
	}
	if _, ok := s.Inventory.Slot(0); !ok {
		t.Fatalf("starter hotbar missing")
	}
	if _, ok := g.Sessions().Get("p1"); !ok {
		t.Fatalf("session not attached")
	}

	// Removal releases the session; later events for it are dropped.
	g.Step(&event.Batch{Removed: []event.ClientRemoved{{Client: "p1"}}})
	if _, ok := g.Sessions().Get("p1"); ok {
		t.Fatalf("session not removed")
	}
	step(g, event.StartSneaking{Client: "p1"})
}

func TestModeToggle(t *testing.T) {
	g := newTestGame(t)
	s := joinClient(t, g, "p1")

	cases := []struct {
		start session.GameMode
		want  session.GameMode
	}{
		{session.Survival, session.Creative},
		{session.Creative, session.Survival},
		{session.Adventure, session.Creative},
		{session.Spectator, session.Creative},
	}
	for _, c := range cases {
		s.Mode = c.start
		step(g, event.StartSneaking{Client: "p1"})
		if s.Mode != c.want {
			t.Errorf("toggle from %v = %v; want %v", c.start, s.Mode, c.want)
		}
	}

	// Involution on the two-cycle.
	s.Mode = session.Survival
	step(g, event.StartSneaking{Client: "p1"})
	step(g, event.StartSneaking{Client: "p1"})
	if s.Mode != session.Survival {
		t.Fatalf("double toggle from survival = %v", s.Mode)
	}
}

func TestDiggingModeExclusive(t *testing.T) {
	g := newTestGame(t)
	s := joinClient(t, g, "p1")
	ground := world.Vec3i{X: 1, Y: 64, Z: 1}
	grass := block.GrassBlock.DefaultState()
	air := block.Air.DefaultState()

	reset := func() { g.World().SetBlock(ground, grass) }

	// StartDigging clears iff creative.
	for _, c := range []struct {
		mode  session.GameMode
		wants block.State
	}{
		{session.Creative, air},
		{session.Survival, grass},
		{session.Adventure, grass},
		{session.Spectator, grass},
	} {
		reset()
		s.Mode = c.mode
		deltas := step(g, event.StartDigging{Client: "p1", Pos: ground})
		if got := g.World().Block(ground); got != c.wants {
			t.Errorf("start-dig in %v: block = %v; want %v", c.mode, got.Kind(), c.wants.Kind())
		}
		if c.wants == air && len(deltas) != 1 {
			t.Errorf("start-dig in %v: deltas = %d; want 1", c.mode, len(deltas))
		}
	}

	// FinishDigging clears iff survival.
	for _, c := range []struct {
		mode  session.GameMode
		wants block.State
	}{
		{session.Survival, air},
		{session.Creative, grass},
		{session.Adventure, grass},
		{session.Spectator, grass},
	} {
		reset()
		s.Mode = c.mode
		step(g, event.FinishDigging{Client: "p1", Pos: ground})
		if got := g.World().Block(ground); got != c.wants {
			t.Errorf("finish-dig in %v: block = %v; want %v", c.mode, got.Kind(), c.wants.Kind())
		}
	}

	// Unknown clients are dropped silently.
	reset()
	if deltas := step(g, event.StartDigging{Client: "ghost", Pos: ground}); len(deltas) != 0 {
		t.Fatalf("ghost dig applied deltas: %v", deltas)
	}
}

func usePlanks(client string, pos world.Vec3i, face event.Face) event.UseItemOnBlock {
	return event.UseItemOnBlock{
		Client: client,
		Pos:    pos,
		Face:   face,
		Cursor: [3]float64{0.5, 0.5, 0.5},
		Hand:   event.MainHand,
	}
}

func TestPlacementReplaceVsAdjacent(t *testing.T) {
	g := newTestGame(t)
	s := joinClient(t, g, "p1")
	s.Inventory.SetSlot(0, session.ItemStack{Item: item.OakPlanks, Count: 10})

	// Clicking a solid ground cell places into the face neighbor.
	ground := world.Vec3i{X: 0, Y: 64, Z: 0}
	above := world.Vec3i{X: 0, Y: 65, Z: 0}
	step(g, usePlanks("p1", ground, event.FaceTop))
	if got := g.World().Block(above).Kind(); got != block.OakPlanks {
		t.Fatalf("neighbor = %v; want oak planks", got)
	}
	if got := g.World().Block(ground).Kind(); got != block.GrassBlock {
		t.Fatalf("clicked cell changed to %v", got)
	}

	// Clicking a replaceable cell overwrites it in place.
	g.World().SetBlock(above, block.ShortGrass.DefaultState())
	step(g, usePlanks("p1", above, event.FaceTop))
	if got := g.World().Block(above).Kind(); got != block.OakPlanks {
		t.Fatalf("replaceable cell = %v; want oak planks", got)
	}
	if got := g.World().Block(world.Vec3i{X: 0, Y: 66, Z: 0}).Kind(); got != block.Air {
		t.Fatalf("cell above should stay air, got %v", got)
	}
}

func TestPlacementSurvivalConsumption(t *testing.T) {
	g := newTestGame(t)
	s := joinClient(t, g, "p1")
	pos := world.Vec3i{X: 2, Y: 64, Z: 2}

	// Survival: count N>1 decrements in the same slot.
	s.Mode = session.Survival
	s.Inventory.SetSlot(0, session.ItemStack{Item: item.OakPlanks, Count: 3})
	step(g, usePlanks("p1", pos, event.FaceTop))
	if st, ok := s.Inventory.Slot(0); !ok || st.Count != 2 || st.Item != item.OakPlanks {
		t.Fatalf("slot after place = %+v, %v; want 2 planks", st, ok)
	}

	// Survival: count 1 clears the slot.
	s.Inventory.SetSlot(0, session.ItemStack{Item: item.OakPlanks, Count: 1})
	step(g, usePlanks("p1", world.Vec3i{X: 3, Y: 64, Z: 2}, event.FaceTop))
	if _, ok := s.Inventory.Slot(0); ok {
		t.Fatalf("slot should be empty after last item")
	}

	// Creative: inventory untouched regardless of count.
	s.Mode = session.Creative
	s.Inventory.SetSlot(0, session.ItemStack{Item: item.OakPlanks, Count: 1})
	step(g, usePlanks("p1", world.Vec3i{X: 4, Y: 64, Z: 2}, event.FaceTop))
	if st, ok := s.Inventory.Slot(0); !ok || st.Count != 1 {
		t.Fatalf("creative consumed inventory: %+v, %v", st, ok)
	}
}

func TestPlacementNoOps(t *testing.T) {
	g := newTestGame(t)
	s := joinClient(t, g, "p1")
	pos := world.Vec3i{X: 5, Y: 64, Z: 5}
	above := world.Vec3i{X: 5, Y: 65, Z: 5}

	// Off-hand use is ignored.
	s.Inventory.SetSlot(0, session.ItemStack{Item: item.OakPlanks, Count: 5})
	ev := usePlanks("p1", pos, event.FaceTop)
	ev.Hand = event.OffHand
	if deltas := step(g, ev); len(deltas) != 0 {
		t.Fatalf("off-hand placed a block")
	}

	// Empty held slot.
	s.Inventory.ClearSlot(0)
	if deltas := step(g, usePlanks("p1", pos, event.FaceTop)); len(deltas) != 0 {
		t.Fatalf("empty slot placed a block")
	}

	// Item without a block mapping; survival inventory stays untouched.
	s.Mode = session.Survival
	s.Inventory.SetSlot(0, session.ItemStack{Item: item.Stick, Count: 5})
	if deltas := step(g, usePlanks("p1", pos, event.FaceTop)); len(deltas) != 0 {
		t.Fatalf("stick placed a block")
	}
	if st, _ := s.Inventory.Slot(0); st.Count != 5 {
		t.Fatalf("non-placeable item was consumed: %+v", st)
	}
	if got := g.World().Block(above).Kind(); got != block.Air {
		t.Fatalf("no-op placement mutated the grid: %v", got)
	}

	// Unknown client.
	if deltas := step(g, usePlanks("ghost", pos, event.FaceTop)); len(deltas) != 0 {
		t.Fatalf("ghost placed a block")
	}
}

func TestPlacementHalfAndType(t *testing.T) {
	g := newTestGame(t)
	s := joinClient(t, g, "p1")
	ground := world.Vec3i{X: 6, Y: 64, Z: 6}

	// Slab against a side face, cursor above the midline: top half.
	s.Inventory.SetSlot(0, session.ItemStack{Item: item.OakSlab, Count: 10})
	ev := usePlanks("p1", ground, event.FaceNorth)
	ev.Cursor = [3]float64{0.5, 0.9, 0.5}
	step(g, ev)
	target := ground.Add(event.FaceNorth.Offset())
	st := g.World().Block(target)
	if st.Kind() != block.OakSlab {
		t.Fatalf("placed %v; want oak slab", st.Kind())
	}
	if v, _ := st.Get(block.Type); v != block.Top {
		t.Fatalf("slab type = %v; want top", v)
	}

	// Same side face, cursor below the midline: bottom half.
	g.World().SetBlock(target, block.Air.DefaultState())
	ev.Cursor = [3]float64{0.5, 0.2, 0.5}
	step(g, ev)
	if v, _ := g.World().Block(target).Get(block.Type); v != block.Bottom {
		t.Fatalf("slab type = %v; want bottom", v)
	}

	// Stairs against the bottom face hang from the ceiling: top half.
	ceiling := world.Vec3i{X: 7, Y: 70, Z: 7}
	g.World().SetBlock(ceiling, block.Stone.DefaultState())
	s.Inventory.SetSlot(0, session.ItemStack{Item: item.OakStairs, Count: 10})
	step(g, event.UseItemOnBlock{
		Client: "p1",
		Pos:    ceiling,
		Face:   event.FaceBottom,
		Cursor: [3]float64{0.5, 0, 0.5},
		Hand:   event.MainHand,
	})
	st = g.World().Block(ceiling.Add(event.FaceBottom.Offset()))
	if st.Kind() != block.OakStairs {
		t.Fatalf("placed %v; want oak stairs", st.Kind())
	}
	if v, _ := st.Get(block.Half); v != block.Top {
		t.Fatalf("stairs half = %v; want top", v)
	}
	if _, ok := st.Get(block.Type); ok {
		t.Fatalf("stairs should not carry a type")
	}
}

// The scenario from the wire: survival player facing south places a stair
// stack of three onto a replaceable cell.
func TestPlacementEndToEnd(t *testing.T) {
	g := newTestGame(t)
	s := joinClient(t, g, "p1")
	pos := world.Vec3i{X: 0, Y: 64, Z: 0}

	g.World().SetBlock(pos, block.Air.DefaultState())
	s.Mode = session.Survival
	s.Yaw = 10
	s.Inventory.SetSlot(0, session.ItemStack{Item: item.OakStairs, Count: 3})

	step(g, event.UseItemOnBlock{
		Client: "p1",
		Pos:    pos,
		Face:   event.FaceTop,
		Cursor: [3]float64{0.5, 1, 0.5},
		Hand:   event.MainHand,
	})

	st := g.World().Block(pos)
	if st.Kind() != block.OakStairs {
		t.Fatalf("placed %v; want oak stairs", st.Kind())
	}
	if v, _ := st.Get(block.Facing); v != block.South {
		t.Fatalf("facing = %v; want south", v)
	}
	if v, _ := st.Get(block.Half); v != block.Bottom {
		t.Fatalf("half = %v; want bottom", v)
	}
	if stk, ok := s.Inventory.Slot(0); !ok || stk.Count != 2 || stk.Item != item.OakStairs {
		t.Fatalf("held slot = %+v, %v; want 2 stairs", stk, ok)
	}
}

// Yaw updates land before any gameplay handler in the same batch.
func TestLookAppliesBeforePlacement(t *testing.T) {
	g := newTestGame(t)
	s := joinClient(t, g, "p1")
	s.Inventory.SetSlot(0, session.ItemStack{Item: item.Furnace, Count: 1})
	pos := world.Vec3i{X: 8, Y: 64, Z: 8}

	var batch event.Batch
	batch.Add(event.UpdateLook{Client: "p1", Yaw: 90})
	batch.Add(usePlanks("p1", pos, event.FaceTop))
	g.Step(&batch)

	st := g.World().Block(pos.Add(event.FaceTop.Offset()))
	if st.Kind() != block.Furnace {
		t.Fatalf("placed %v; want furnace", st.Kind())
	}
	if v, _ := st.Get(block.Facing); v != block.West {
		t.Fatalf("facing = %v; want west", v)
	}
}

// Within one tick the later handler wins: a creative dig clears the cell,
// then placement writes into the now-replaceable cell.
func TestHandlerOrderLastWriterWins(t *testing.T) {
	g := newTestGame(t)
	digger := joinClient(t, g, "digger")
	placer := joinClient(t, g, "placer")
	digger.Mode = session.Creative
	placer.Inventory.SetSlot(0, session.ItemStack{Item: item.Stone, Count: 1})
	pos := world.Vec3i{X: 9, Y: 64, Z: 9}

	var batch event.Batch
	batch.Add(event.StartDigging{Client: "digger", Pos: pos})
	batch.Add(usePlanks("placer", pos, event.FaceTop))
	deltas := g.Step(&batch)

	if got := g.World().Block(pos).Kind(); got != block.Stone {
		t.Fatalf("final block = %v; want stone (placement wins)", got)
	}
	if len(deltas) != 2 {
		t.Fatalf("deltas = %d; want 2", len(deltas))
	}
	if deltas[0].State.Kind() != block.Air || deltas[1].State.Kind() != block.Stone {
		t.Fatalf("delta order = %v then %v", deltas[0].State.Kind(), deltas[1].State.Kind())
	}
}

func TestSingleWorldInvariant(t *testing.T) {
	g := newTestGame(t)
	if _, err := g.registry.Active(); err != nil {
		t.Fatalf("Active: %v", err)
	}
	g.registry.Add(world.New())
	if _, err := g.registry.Active(); err == nil {
		t.Fatalf("second world should violate the invariant")
	}
}
