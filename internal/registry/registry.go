/*
 * CSOPESYMO1 - Process registry.
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

// Package registry holds every process the scheduler knows about,
// running or finished, indexed by pid. It is the one place that owns
// the process id -> *process.Process mapping, replacing the ambient
// globals the source program used for job bookkeeping with an
// explicit, injectable object (per spec.md's dependency-injection
// design note) grounded on emu/core.go's single-struct-with-mutex
// pattern for shared scheduler state.
package registry

import (
	"sort"
	"sync"

	"github.com/Jawsshhh/CSOPESYMO1/internal/process"
)

// Registry is safe for concurrent use by the supervisor, every core
// worker and the query surface.
type Registry struct {
	mu       sync.RWMutex
	byID     map[int]*process.Process
	finished map[int]bool
	nextID   int
}

// New returns an empty registry. IDs are assigned starting at 1.
func New() *Registry {
	return &Registry{
		byID:     make(map[int]*process.Process),
		finished: make(map[int]bool),
		nextID:   1,
	}
}

// NextID reserves and returns the next process id.
func (r *Registry) NextID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	return id
}

// Insert adds p to the registry. It is an error to insert the same id
// twice.
func (r *Registry) Insert(p *process.Process) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[p.ID]; exists {
		return false
	}
	r.byID[p.ID] = p
	return true
}

// Get returns the process with the given id, if known.
func (r *Registry) Get(id int) (*process.Process, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// GetByName returns the first process matching name, if any. Process
// names need not be unique; ties are broken by lowest id.
func (r *Registry) GetByName(name string) (*process.Process, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *process.Process
	for _, p := range r.byID {
		if p.Name != name {
			continue
		}
		if best == nil || p.ID < best.ID {
			best = p
		}
	}
	return best, best != nil
}

// MarkFinished records that id has completed (either naturally or via
// a memory violation). The process itself still owns its own Finished
// flag; the registry tracks it separately so ListProcesses (and the
// Report built from it) can split running from finished processes
// without scanning every process's atomic flag under its own lock
// ordering.
func (r *Registry) MarkFinished(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished[id] = true
}

// IsFinished reports whether the registry has observed id as finished.
func (r *Registry) IsFinished(id int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finished[id]
}

// All returns every known process, running and finished, ordered by
// id for deterministic reporting.
func (r *Registry) All() []*process.Process {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(func(*process.Process) bool { return true })
}

// Running returns processes not yet marked finished, ordered by id.
func (r *Registry) Running() []*process.Process {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(func(p *process.Process) bool { return !r.finished[p.ID] })
}

// Finished returns processes marked finished, ordered by id.
func (r *Registry) Finished() []*process.Process {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(func(p *process.Process) bool { return r.finished[p.ID] })
}

// ByCore returns the (at most one) running process currently assigned
// to coreID.
func (r *Registry) ByCore(coreID int) (*process.Process, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.byID {
		if r.finished[p.ID] {
			continue
		}
		if core, ok := p.AssignedCore(); ok && core == coreID {
			return p, true
		}
	}
	return nil, false
}

// HasUnfinishedOnCore reports whether coreID currently has an
// unfinished process assigned to it.
func (r *Registry) HasUnfinishedOnCore(coreID int) bool {
	_, ok := r.ByCore(coreID)
	return ok
}

// ActivePerCore returns, for each of cores 0..n-1, whether it is
// currently running an unfinished process - used by ListProcesses (and
// so process-smi) for the CPU utilization figure.
func (r *Registry) ActivePerCore(n int) []bool {
	active := make([]bool, n)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.byID {
		if r.finished[p.ID] {
			continue
		}
		if core, ok := p.AssignedCore(); ok && core >= 0 && core < n {
			active[core] = true
		}
	}
	return active
}

// Count returns the total number of known processes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *Registry) sortedLocked(keep func(*process.Process) bool) []*process.Process {
	out := make([]*process.Process, 0, len(r.byID))
	for _, p := range r.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
