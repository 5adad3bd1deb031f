/*
 * CSOPESYMO1 - FCFS worker loop.
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

import "github.com/Jawsshhh/CSOPESYMO1/internal/process"

// fcfsWorker runs a single non-preemptive core: pop one process, run
// it to completion or sleep, repeat, grounded on
// original_source/FCFS.cpp's workerLoop.
func (s *Scheduler) fcfsWorker(coreID int) {
	defer s.wgWork.Done()
	for {
		if s.isStopped() {
			return
		}
		p := s.popReady()
		if p == nil {
			s.waitForWork()
			continue
		}
		s.setCoreBusy(coreID, true)
		p.SetAssignedCore(&coreID)
		s.runToCompletionOrSleep(p, coreID)
		s.setCoreBusy(coreID, false)
	}
}

// runToCompletionOrSleep executes p one instruction at a time until it
// finishes, sleeps, or the scheduler is stopping.
func (s *Scheduler) runToCompletionOrSleep(p *process.Process, coreID int) {
	for !p.AtEnd() && !p.Finished() {
		if s.isStopped() {
			return
		}
		if !s.executeStep(p, coreID) {
			// Unresolved page fault after retries: give up this turn
			// without dropping the process, per spec.md §7.
			p.SetAssignedCore(nil)
			s.pushReady(p)
			return
		}
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
	}
}
