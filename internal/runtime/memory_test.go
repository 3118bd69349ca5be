package runtime

import (
	"strings"
	"testing"

	"github.com/funvibe/liftc/internal/ir"
)

func TestRecordHeaderLayout(t *testing.T) {
	mem := NewMemory(0)
	addr := mem.AllocRecord(5, 3)

	if mem.RecordIndex(addr) != 5 {
		t.Fatalf("expected table index 5 at offset 0, got %d", mem.RecordIndex(addr))
	}
	if mem.RecordRemaining(addr) != 3 {
		t.Fatalf("fresh record must start with full arity, got %d", mem.RecordRemaining(addr))
	}
	if mem.ReadU32(addr+ir.IndexOffset) != 5 || mem.ReadU32(addr+ir.ArityOffset) != 3 {
		t.Fatalf("header words not at their fixed offsets")
	}
}

func TestReverseFillSlotOrder(t *testing.T) {
	// Arity 3: the first stored argument lands in the slot furthest from the
	// header, the last stored argument adjacent to it.
	mem := NewMemory(0)
	addr := mem.AllocRecord(0, 3)

	c1 := mem.AllocCell(11)
	if rem, _ := mem.PopulateClosure(addr, c1); rem != 2 {
		t.Fatalf("expected remaining 2 after first populate, got %d", rem)
	}
	if got := mem.ReadU32(addr + ir.HeaderSize + 2*ir.SlotSize); got != c1 {
		t.Fatalf("first argument must occupy the furthest slot, found %d", got)
	}

	c2 := mem.AllocCell(22)
	mem.PopulateClosure(addr, c2)
	if got := mem.ReadU32(addr + ir.HeaderSize + 1*ir.SlotSize); got != c2 {
		t.Fatalf("second argument in the middle slot, found %d", got)
	}

	c3 := mem.AllocCell(33)
	if rem, _ := mem.PopulateClosure(addr, c3); rem != 0 {
		t.Fatalf("expected saturation, got remaining %d", rem)
	}
	if got := mem.ReadU32(addr + ir.HeaderSize); got != c3 {
		t.Fatalf("last argument adjacent to the header, found %d", got)
	}
}

func TestArgAddressesUndoReverseOrder(t *testing.T) {
	mem := NewMemory(0)
	addr := mem.AllocRecord(0, 3)

	cells := []uint32{mem.AllocCell(1), mem.AllocCell(2), mem.AllocCell(3)}
	for _, c := range cells {
		mem.PopulateClosure(addr, c)
	}

	got := mem.ArgAddresses(addr, 3)
	for j, want := range cells {
		if got[j] != want {
			t.Fatalf("argument %d: expected cell %d, got %d", j, want, got[j])
		}
	}
}

func TestPopulatingSaturatedRecordFails(t *testing.T) {
	mem := NewMemory(0)
	addr := mem.AllocRecord(0, 1)
	mem.PopulateClosure(addr, mem.AllocCell(1))

	_, err := mem.PopulateClosure(addr, mem.AllocCell(2))
	if err == nil {
		t.Fatalf("populating a saturated record must fail")
	}
	if !strings.Contains(err.Error(), "arity mismatch") {
		t.Fatalf("expected arity mismatch error, got %v", err)
	}
}

func TestNullAddressIsNeverAllocated(t *testing.T) {
	mem := NewMemory(0)
	if mem.Alloc(8) == 0 {
		t.Fatalf("address 0 is reserved as null")
	}
}

func TestResetReclaimsInBulk(t *testing.T) {
	mem := NewMemory(0)
	mem.AllocRecord(0, 4)
	mem.AllocCell(7)
	if mem.Used() == 0 {
		t.Fatalf("expected allocations to be accounted")
	}

	mem.Reset()
	if mem.Used() != 0 {
		t.Fatalf("reset must reclaim everything, %d bytes still used", mem.Used())
	}
}

func TestGrowthPreservesExistingRecords(t *testing.T) {
	mem := NewMemory(64)
	addr := mem.AllocRecord(9, 2)

	// Force at least one doubling.
	for i := 0; i < 32; i++ {
		mem.AllocCell(uint64(i))
	}

	if mem.RecordIndex(addr) != 9 || mem.RecordRemaining(addr) != 2 {
		t.Fatalf("record corrupted by growth")
	}
}
