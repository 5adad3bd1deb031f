/*
 * CSOPESYMO1 - Process registry test cases.
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

package registry

import (
	"testing"

	"github.com/Jawsshhh/CSOPESYMO1/internal/process"
)

func TestNextIDStartsAtOneAndIncrements(t *testing.T) {
	r := New()
	if id := r.NextID(); id != 1 {
		t.Fatalf("NextID() = %d, want 1", id)
	}
	if id := r.NextID(); id != 2 {
		t.Fatalf("NextID() = %d, want 2", id)
	}
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	r := New()
	p1 := process.New(1, "a", 64, nil)
	p2 := process.New(1, "b", 64, nil)
	if !r.Insert(p1) {
		t.Fatalf("first insert should succeed")
	}
	if r.Insert(p2) {
		t.Fatalf("duplicate id insert should fail")
	}
}

func TestGetAndGetByName(t *testing.T) {
	r := New()
	p := process.New(1, "alpha", 64, nil)
	r.Insert(p)
	got, ok := r.Get(1)
	if !ok || got != p {
		t.Fatalf("Get(1) = %v, %v", got, ok)
	}
	got, ok = r.GetByName("alpha")
	if !ok || got != p {
		t.Fatalf("GetByName(alpha) = %v, %v", got, ok)
	}
	if _, ok := r.GetByName("missing"); ok {
		t.Errorf("GetByName(missing) should not be found")
	}
}

func TestRunningAndFinishedPartition(t *testing.T) {
	r := New()
	p1 := process.New(1, "a", 64, nil)
	p2 := process.New(2, "b", 64, nil)
	r.Insert(p1)
	r.Insert(p2)
	r.MarkFinished(1)

	running := r.Running()
	finished := r.Finished()
	if len(running) != 1 || running[0].ID != 2 {
		t.Errorf("Running() = %v", running)
	}
	if len(finished) != 1 || finished[0].ID != 1 {
		t.Errorf("Finished() = %v", finished)
	}
	if !r.IsFinished(1) || r.IsFinished(2) {
		t.Errorf("IsFinished mismatched state")
	}
}

func TestAllOrderedByID(t *testing.T) {
	r := New()
	r.Insert(process.New(3, "c", 64, nil))
	r.Insert(process.New(1, "a", 64, nil))
	r.Insert(process.New(2, "b", 64, nil))
	all := r.All()
	if len(all) != 3 {
		t.Fatalf("All() length = %d, want 3", len(all))
	}
	for i, want := range []int{1, 2, 3} {
		if all[i].ID != want {
			t.Errorf("All()[%d].ID = %d, want %d", i, all[i].ID, want)
		}
	}
}

func TestByCoreAndHasUnfinishedOnCore(t *testing.T) {
	r := New()
	p := process.New(1, "a", 64, nil)
	r.Insert(p)
	if r.HasUnfinishedOnCore(0) {
		t.Fatalf("core 0 should be idle before assignment")
	}
	core := 0
	p.SetAssignedCore(&core)
	got, ok := r.ByCore(0)
	if !ok || got != p {
		t.Fatalf("ByCore(0) = %v, %v", got, ok)
	}
	if !r.HasUnfinishedOnCore(0) {
		t.Errorf("core 0 should be busy after assignment")
	}
}

func TestByCoreIgnoresFinishedProcesses(t *testing.T) {
	r := New()
	p := process.New(1, "a", 64, nil)
	r.Insert(p)
	core := 0
	p.SetAssignedCore(&core)
	r.MarkFinished(1)
	if _, ok := r.ByCore(0); ok {
		t.Errorf("finished process should not occupy its core in ByCore")
	}
}

func TestActivePerCore(t *testing.T) {
	r := New()
	p1 := process.New(1, "a", 64, nil)
	p2 := process.New(2, "b", 64, nil)
	r.Insert(p1)
	r.Insert(p2)
	c0, c1 := 0, 1
	p1.SetAssignedCore(&c0)
	p2.SetAssignedCore(&c1)
	active := r.ActivePerCore(4)
	want := []bool{true, true, false, false}
	for i := range want {
		if active[i] != want[i] {
			t.Errorf("ActivePerCore()[%d] = %v, want %v", i, active[i], want[i])
		}
	}
}

func TestCount(t *testing.T) {
	r := New()
	if r.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", r.Count())
	}
	r.Insert(process.New(1, "a", 64, nil))
	r.Insert(process.New(2, "b", 64, nil))
	if r.Count() != 2 {
		t.Errorf("Count() = %d, want 2", r.Count())
	}
}
