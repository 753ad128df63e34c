package collage

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestTouchSlotAllocationIsStable(t *testing.T) {
	r := NewInputRouter(nil)

	slotA, newA := r.touchSlot(ebiten.TouchID(100))
	if !newA || slotA < 1 {
		t.Fatalf("first touch: slot %d, new %v", slotA, newA)
	}
	slotB, newB := r.touchSlot(ebiten.TouchID(200))
	if !newB || slotB == slotA {
		t.Fatalf("second touch: slot %d, new %v", slotB, newB)
	}

	// The same touch id keeps its slot.
	again, isNew := r.touchSlot(ebiten.TouchID(100))
	if isNew || again != slotA {
		t.Errorf("repeat lookup: slot %d, new %v, want slot %d", again, isNew, slotA)
	}
}

func TestTouchSlotReusesFreedSlots(t *testing.T) {
	r := NewInputRouter(nil)

	slot, _ := r.touchSlot(ebiten.TouchID(7))
	r.touchUsed[slot] = false
	r.touchMap[slot] = 0

	got, isNew := r.touchSlot(ebiten.TouchID(8))
	if !isNew || got != slot {
		t.Errorf("freed slot not reused: got %d, want %d", got, slot)
	}
}

func TestTouchSlotExhaustion(t *testing.T) {
	r := NewInputRouter(nil)

	for i := 0; i < maxPointers-1; i++ {
		if slot, _ := r.touchSlot(ebiten.TouchID(1000 + i)); slot < 1 {
			t.Fatalf("allocation %d failed early", i)
		}
	}
	if slot, _ := r.touchSlot(ebiten.TouchID(9999)); slot != -1 {
		t.Errorf("over-capacity touch got slot %d, want -1", slot)
	}
}
