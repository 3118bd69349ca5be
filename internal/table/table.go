// Package table implements the module-wide indirect-call table: an
// append-only mapping from integer index to function definition.
package table

import (
	"fmt"
	"sort"
	"sync"

	"github.com/funvibe/liftc/internal/ir"
)

// Table assigns every module-level function a stable index. Allocation is
// first-registration-wins: the first time a structural identity is seen it
// receives the next index; later registrations of the same identity return
// the existing definition. Registration is serialized so independent
// function bodies may be lowered in parallel.
type Table struct {
	mu         sync.Mutex
	funcs      []*ir.FunctionDefinition
	byIdentity map[string]*ir.FunctionDefinition

	// canon remembers the canonical form behind each identity so a hash
	// collision is caught instead of silently merging two bodies.
	canon map[string]string
}

func New() *Table {
	return &Table{
		byIdentity: make(map[string]*ir.FunctionDefinition),
		canon:      make(map[string]string),
	}
}

// Register claims an index for def, or returns the already-registered
// definition with the same structural identity. canonical is the normalized
// form def.Identity was hashed from.
//
// Two different canonical forms under one identity mean the hashing scheme
// is defective; that is a compiler invariant violation and panics.
func (t *Table) Register(def *ir.FunctionDefinition, canonical string) *ir.FunctionDefinition {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.byIdentity[def.Identity]; ok {
		if t.canon[def.Identity] != canonical {
			panic(fmt.Sprintf("[T001] function table conflict: identity %s claimed by two different bodies", def.Identity))
		}
		return existing
	}

	def.Index = len(t.funcs)
	t.funcs = append(t.funcs, def)
	t.byIdentity[def.Identity] = def
	t.canon[def.Identity] = canonical
	return def
}

// Lookup returns the definition registered under a structural identity.
func (t *Table) Lookup(identity string) (*ir.FunctionDefinition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	def, ok := t.byIdentity[identity]
	return def, ok
}

// Funcs returns the definitions ordered by index.
func (t *Table) Funcs() []*ir.FunctionDefinition {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*ir.FunctionDefinition, len(t.funcs))
	copy(out, t.funcs)
	return out
}

// Len returns the number of registered definitions.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.funcs)
}

// Stabilize reorders the table so that functions keep the indices a previous
// build assigned them, when the cached assignment is still a valid dense
// layout. hints maps structural identity to the index from the build cache.
// Functions without a usable hint fill the remaining slots in registration
// order. Must be called after all registrations and before code generation
// reads indices.
func (t *Table) Stabilize(hints map[string]int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.funcs)
	if n == 0 || len(hints) == 0 {
		return
	}

	// Keep only hints that land inside the table and don't collide.
	taken := make(map[int]string)
	pinned := make(map[string]int)
	for _, def := range t.funcs {
		idx, ok := hints[def.Identity]
		if !ok || idx < 0 || idx >= n {
			continue
		}
		if _, clash := taken[idx]; clash {
			continue
		}
		taken[idx] = def.Identity
		pinned[def.Identity] = idx
	}
	if len(pinned) == 0 {
		return
	}

	reordered := make([]*ir.FunctionDefinition, n)
	var rest []*ir.FunctionDefinition
	for _, def := range t.funcs {
		if idx, ok := pinned[def.Identity]; ok {
			reordered[idx] = def
		} else {
			rest = append(rest, def)
		}
	}

	free := make([]int, 0, n-len(pinned))
	for i := 0; i < n; i++ {
		if reordered[i] == nil {
			free = append(free, i)
		}
	}
	sort.Ints(free)
	for i, def := range rest {
		reordered[free[i]] = def
	}

	for i, def := range reordered {
		def.Index = i
	}
	t.funcs = reordered
}
