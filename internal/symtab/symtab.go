/*
 * CSOPESYMO1 - Per-process symbol table.
 *
 * Copyright 2026, CSOPESYMO1 authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package symtab implements the per-process symbol table: a small,
// fixed-capacity name -> int16 value map.
package symtab

// MaxSymbols is the hard cap on distinct symbols a process may declare.
// The table refuses overflow declarations; logging the ignored
// declaration is left to the caller (see internal/instr).
const MaxSymbols = 32

// Table is a per-process name -> value map. All values are stored as
// 16-bit unsigned words; the instruction set only deals in int16-typed
// symbols so there is no variant tag to carry.
type Table struct {
	values map[string]uint16
	order  []string // insertion order, for deterministic dumps/logs
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{values: make(map[string]uint16, MaxSymbols)}
}

// Len reports how many symbols are currently declared.
func (t *Table) Len() int {
	return len(t.values)
}

// Full reports whether the table is at capacity.
func (t *Table) Full() bool {
	return len(t.values) >= MaxSymbols
}

// Has reports whether name is declared.
func (t *Table) Has(name string) bool {
	_, ok := t.values[name]
	return ok
}

// Get returns the value of name and whether it was declared.
func (t *Table) Get(name string) (uint16, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Declare inserts name with value if name is new and the table has
// room. A name that is already declared is left untouched - DECLARE on
// a known name is a no-op, not an overwrite, per spec.md §4.1. It
// reports whether the declaration was accepted or the name already
// existed; a false return (table full) is the caller's cue to log the
// silent no-op spec.md §7 requires.
func (t *Table) Declare(name string, value uint16) bool {
	if _, ok := t.values[name]; ok {
		return true
	}
	if t.Full() {
		return false
	}
	t.values[name] = value
	t.order = append(t.order, name)
	return true
}

// Set overwrites an existing symbol's value, or auto-declares it with
// value if it is new and room allows. Used by ADD/SUBTRACT/READ, whose
// destination operand is "auto-declared if absent" per spec.md §4.1.
// Set silently does nothing if name is new and the table is full,
// mirroring Declare's overflow behavior.
func (t *Table) Set(name string, value uint16) bool {
	if _, ok := t.values[name]; ok {
		t.values[name] = value
		return true
	}
	return t.Declare(name, value)
}

// Names returns declared symbol names in declaration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
