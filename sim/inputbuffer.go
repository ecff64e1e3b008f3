package sim

import "github.com/lab1702/actionserver/zone"

// inputBuffer tracks the latest known input per player. By construction:
// UpdatePlayerInput for a player absent from EntityStore is a no-op,
// enforced by the caller (WorldSimulation), not here.
type inputBuffer struct {
	inputs map[zone.EntityID]*zone.PlayerInput
}

func newInputBuffer() *inputBuffer {
	return &inputBuffer{inputs: make(map[zone.EntityID]*zone.PlayerInput)}
}

func (b *inputBuffer) Get(id zone.EntityID) (*zone.PlayerInput, bool) {
	in, ok := b.inputs[id]
	return in, ok
}

func (b *inputBuffer) Set(id zone.EntityID, in *zone.PlayerInput) {
	b.inputs[id] = in
}

func (b *inputBuffer) Remove(id zone.EntityID) {
	delete(b.inputs, id)
}
