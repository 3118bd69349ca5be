// Package runtime implements the target-side closure contract: closure
// records in raw linear memory, the populateClosure helper, the saturation
// dispatch, and an executor for lowered modules so compiled programs can be
// run in-process.
package runtime

import (
	"encoding/binary"
	"fmt"

	"github.com/funvibe/liftc/internal/ir"
)

// Memory is a byte-addressed linear memory with bump allocation. Records
// are never resized or moved after construction, so addresses stored inside
// other records stay valid until Reset reclaims the whole region.
//
// Address 0 is kept unused so it can serve as a null value.
type Memory struct {
	data []byte
	next uint32
}

const defaultMemorySize = 64 * 1024

// NewMemory creates a memory with the given initial size in bytes.
func NewMemory(size int) *Memory {
	if size < ir.HeaderSize {
		size = defaultMemorySize
	}
	return &Memory{data: make([]byte, size), next: ir.CellSize}
}

// Alloc bump-allocates n bytes and returns the region's address. The region
// grows by doubling when exhausted; existing addresses stay valid because
// the backing slice is only ever appended to conceptually (copied, offsets
// unchanged).
func (m *Memory) Alloc(n int) uint32 {
	// Keep cells and records 8-byte aligned.
	aligned := (n + 7) &^ 7
	for int(m.next)+aligned > len(m.data) {
		grown := make([]byte, len(m.data)*2)
		copy(grown, m.data)
		m.data = grown
	}
	addr := m.next
	m.next += uint32(aligned)
	return addr
}

// Reset reclaims everything allocated so far in bulk. This is the arena
// reclamation hook; no per-record free exists.
func (m *Memory) Reset() {
	m.next = ir.CellSize
}

// Used returns the number of allocated bytes, for tests and logging.
func (m *Memory) Used() int {
	return int(m.next) - ir.CellSize
}

func (m *Memory) ReadU32(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(m.data[addr : addr+4])
}

func (m *Memory) WriteU32(addr uint32, v uint32) {
	binary.LittleEndian.PutUint32(m.data[addr:addr+4], v)
}

func (m *Memory) ReadU64(addr uint32) uint64 {
	return binary.LittleEndian.Uint64(m.data[addr : addr+8])
}

func (m *Memory) WriteU64(addr uint32, v uint64) {
	binary.LittleEndian.PutUint64(m.data[addr:addr+8], v)
}

// AllocCell spills one value into a fresh argument cell and returns the
// cell's address. Closure records store these addresses, not the values.
func (m *Memory) AllocCell(bits uint64) uint32 {
	addr := m.Alloc(ir.CellSize)
	m.WriteU64(addr, bits)
	return addr
}

// AllocRecord allocates and fully initializes a closure record header for a
// callee of the given arity: remaining arity starts at the full arity and
// only ever decreases. The record's address must not escape before this
// returns.
func (m *Memory) AllocRecord(index, arity int) uint32 {
	addr := m.Alloc(ir.RecordSize(arity))
	m.WriteU32(addr+ir.IndexOffset, uint32(index))
	m.WriteU32(addr+ir.ArityOffset, uint32(arity))
	return addr
}

// RecordIndex reads the function table index from a record header.
func (m *Memory) RecordIndex(addr uint32) int {
	return int(m.ReadU32(addr + ir.IndexOffset))
}

// RecordRemaining reads the remaining arity from a record header.
func (m *Memory) RecordRemaining(addr uint32) int {
	return int(m.ReadU32(addr + ir.ArityOffset))
}

// PopulateClosure accumulates one argument address into an existing record:
// it reads the remaining arity, stores argAddr into the next free slot
// (the reverse-fill position derived from the arity just read), and writes
// back the decremented arity. Returns the new remaining arity.
//
// A record with zero remaining arity is read-only; populating it is an
// arity mismatch, never a silent drop.
func (m *Memory) PopulateClosure(addr, argAddr uint32) (int, error) {
	remaining := m.RecordRemaining(addr)
	if remaining == 0 {
		return 0, fmt.Errorf("arity mismatch: closure %d is already saturated", m.RecordIndex(addr))
	}
	m.WriteU32(addr+uint32(ir.SlotOffset(remaining)), argAddr)
	m.WriteU32(addr+ir.ArityOffset, uint32(remaining-1))
	return remaining - 1, nil
}

// ArgAddresses returns the stored argument cell addresses in the callee's
// logical parameter order, undoing the reverse storage order. Only valid on
// a saturated record.
func (m *Memory) ArgAddresses(addr uint32, arity int) []uint32 {
	addrs := make([]uint32, arity)
	for j := 0; j < arity; j++ {
		slot := uint32(ir.HeaderSize + (arity-1-j)*ir.SlotSize)
		addrs[j] = m.ReadU32(addr + slot)
	}
	return addrs
}
