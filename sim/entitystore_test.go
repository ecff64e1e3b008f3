package sim

import (
	"testing"

	"github.com/lab1702/actionserver/zone"
)

func TestEntityStorePutGetRemove(t *testing.T) {
	s := newEntityStore()
	e := &zone.Entity{ID: "p1", Kind: zone.EntityPlayer}
	s.Put(e)

	got, ok := s.Get("p1")
	if !ok || got != e {
		t.Fatalf("Get(p1) = (%v, %v), want (%v, true)", got, ok, e)
	}
	if !s.Has("p1") {
		t.Fatalf("Has(p1) = false, want true")
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}

	s.Remove("p1")
	if s.Has("p1") {
		t.Fatalf("Has(p1) = true after Remove, want false")
	}
	if s.Count() != 0 {
		t.Fatalf("Count() = %d after Remove, want 0", s.Count())
	}
}

func TestEntityStoreStableOrder(t *testing.T) {
	s := newEntityStore()
	ids := []zone.EntityID{"a", "b", "c", "d"}
	for _, id := range ids {
		s.Put(&zone.Entity{ID: id})
	}
	s.Remove("b")
	s.Put(&zone.Entity{ID: "b"}) // re-insert: should go to the end, not its old slot

	got := s.All()
	want := []zone.EntityID{"a", "c", "d", "b"}
	if len(got) != len(want) {
		t.Fatalf("All() returned %d entities, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.ID != want[i] {
			t.Errorf("All()[%d] = %s, want %s", i, e.ID, want[i])
		}
	}
}

func TestEntityStoreFilter(t *testing.T) {
	s := newEntityStore()
	s.Put(&zone.Entity{ID: "player1", Kind: zone.EntityPlayer})
	s.Put(&zone.Entity{ID: "enemy1", Kind: zone.EntityEnemy})
	s.Put(&zone.Entity{ID: "player2", Kind: zone.EntityPlayer})

	players := s.Filter(func(e *zone.Entity) bool { return e.Kind == zone.EntityPlayer })
	if len(players) != 2 {
		t.Fatalf("Filter(players) returned %d, want 2", len(players))
	}
}
