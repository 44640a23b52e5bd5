// Package session holds per-connection player state: transform, game
// mode, held slot and inventory.
package session

import (
	"sort"

	"blockyard.gg/internal/game/item"
)

// GameMode is the player's rule set.
type GameMode uint8

const (
	Survival GameMode = iota
	Creative
	Adventure
	Spectator
)

func (m GameMode) String() string {
	switch m {
	case Survival:
		return "SURVIVAL"
	case Creative:
		return "CREATIVE"
	case Adventure:
		return "ADVENTURE"
	case Spectator:
		return "SPECTATOR"
	}
	return "UNKNOWN"
}

// ItemStack is an item with a positive count. The zero value is an empty
// slot.
type ItemStack struct {
	Item  item.ID
	Count int
}

func (s ItemStack) Empty() bool { return s.Count <= 0 }

// InventorySize is the fixed slot count of a session inventory.
const InventorySize = 36

// Inventory is a fixed-length sequence of optional item stacks. Slot
// indices are stable.
type Inventory struct {
	slots [InventorySize]ItemStack
}

// Slot returns the stack in a slot. The second return is false when the
// slot is empty or the index is out of range.
func (inv *Inventory) Slot(i int) (ItemStack, bool) {
	if i < 0 || i >= InventorySize {
		return ItemStack{}, false
	}
	s := inv.slots[i]
	return s, !s.Empty()
}

// SetSlot replaces the stack in a slot. Out-of-range indices are ignored.
func (inv *Inventory) SetSlot(i int, s ItemStack) {
	if i < 0 || i >= InventorySize {
		return
	}
	inv.slots[i] = s
}

// ClearSlot empties a slot.
func (inv *Inventory) ClearSlot(i int) {
	inv.SetSlot(i, ItemStack{})
}

// Vec3 is a player position in block space.
type Vec3 struct {
	X, Y, Z float64
}

// Session is the state of one connected player. It is owned by the
// lifecycle handler; other handlers reference it by client identity only.
type Session struct {
	ID   string
	Name string

	Pos      Vec3
	Yaw      float64 // degrees, wraps mod 360
	Mode     GameMode
	HeldSlot int

	Inventory Inventory

	// Out is the transport's outbound queue. Nil for sessions that have
	// no attached connection (tests, bots being spawned).
	Out chan []byte

	messages []string
}

// SendMessage queues a chat message for the owning connection. The tick
// loop drains the queue after each pass.
func (s *Session) SendMessage(text string) {
	s.messages = append(s.messages, text)
}

// TakeMessages returns and clears the queued chat messages.
func (s *Session) TakeMessages() []string {
	msgs := s.messages
	s.messages = nil
	return msgs
}

// Store is the session lookup keyed by client identity.
type Store struct {
	m map[string]*Session
}

func NewStore() *Store {
	return &Store{m: map[string]*Session{}}
}

func (st *Store) Add(s *Session) {
	st.m[s.ID] = s
}

func (st *Store) Get(id string) (*Session, bool) {
	s, ok := st.m[id]
	return s, ok
}

func (st *Store) Remove(id string) {
	delete(st.m, id)
}

func (st *Store) Len() int { return len(st.m) }

// Each visits sessions in deterministic (ID) order.
func (st *Store) Each(f func(*Session)) {
	ids := make([]string, 0, len(st.m))
	for id := range st.m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		f(st.m[id])
	}
}

// StarterStacks is the default hotbar granted to a fresh session, so a
// survival player has something to place.
func StarterStacks() []ItemStack {
	return []ItemStack{
		{Item: item.OakStairs, Count: 64},
		{Item: item.OakSlab, Count: 64},
		{Item: item.OakPlanks, Count: 64},
		{Item: item.Stone, Count: 64},
		{Item: item.Furnace, Count: 8},
	}
}
