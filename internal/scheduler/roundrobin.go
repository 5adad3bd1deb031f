/*
 * CSOPESYMO1 - Round-robin worker loop.
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

package scheduler

import (
	"time"

	"github.com/Jawsshhh/CSOPESYMO1/internal/process"
)

// rrIdleBackoff is the cooperative sleep a round-robin worker takes
// when it holds the dispatch turn but finds nothing ready.
const rrIdleBackoff = 10 * time.Millisecond

// rrWorker runs a single preemptive core under round-robin's
// core-turn fairness: a worker only dispatches a new process while
// nextCoreID names it, and hands the turn to the next core immediately
// after popping a process - before running its quantum - so the other
// cores can dispatch concurrently instead of waiting for this core's
// whole quantum to finish, grounded on original_source/RoundRobin.cpp's
// nextCoreId/coreTurnMutex pattern (advanced inside the dispatch block,
// ahead of instruction execution).
func (s *Scheduler) rrWorker(coreID int) {
	defer s.wgWork.Done()
	for {
		if s.isStopped() {
			return
		}
		s.waitForTurn(coreID)
		if s.isStopped() {
			return
		}
		p := s.popReady()
		if p == nil {
			s.advanceTurn()
			time.Sleep(rrIdleBackoff)
			continue
		}
		s.advanceTurn()
		s.setCoreBusy(coreID, true)
		p.SetAssignedCore(&coreID)
		s.runQuantum(p, coreID, s.cfg.QuantumCycles)
		s.setCoreBusy(coreID, false)
		s.maybeSnapshot(coreID)
	}
}

// waitForTurn blocks coreID until nextCoreID names it or the
// scheduler is stopping.
func (s *Scheduler) waitForTurn(coreID int) {
	s.coreTurnMu.Lock()
	defer s.coreTurnMu.Unlock()
	for s.nextCoreID != coreID && !s.isStopped() {
		s.coreTurnCond.Wait()
	}
}

// advanceTurn hands the dispatch turn to the next core modulo the
// worker count.
func (s *Scheduler) advanceTurn() {
	n := len(s.coreBusy)
	if n < 1 {
		n = 1
	}
	s.coreTurnMu.Lock()
	s.nextCoreID = (s.nextCoreID + 1) % n
	s.coreTurnMu.Unlock()
	s.coreTurnCond.Broadcast()
}

// runQuantum executes at most q instructions of p, then requeues it
// at the tail of the ready queue if it is neither finished nor
// sleeping, per spec.md §4.4.2.
func (s *Scheduler) runQuantum(p *process.Process, coreID, q int) {
	executed := 0
	for executed < q && !p.AtEnd() && !p.Finished() {
		if s.isStopped() {
			return
		}
		if !s.executeStep(p, coreID) {
			p.SetAssignedCore(nil)
			s.pushReady(p)
			return
		}
		executed++
		if p.Sleeping() {
			p.SetAssignedCore(nil)
			s.pushSleeping(p)
			return
		}
	}
	if p.AtEnd() && !p.Finished() {
		p.MarkFinished()
	}
	if p.Finished() {
		s.finishProcess(p)
		return
	}
	p.SetAssignedCore(nil)
	s.pushReady(p)
}
