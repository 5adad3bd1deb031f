/*
 * CSOPESYMO1 - Scheduler core: admission, lifecycle, supervisor loop.
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

// Package scheduler runs the ready/sleeping/waiting queues, the
// supervisor loop and the per-core workers (FCFS or round-robin) on
// top of the registry and paging engine, grounded on emu/core.go's
// WaitGroup + done-channel goroutine lifecycle, generalized from one
// CPU core to an n-worker pool with its own queues.
package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Jawsshhh/CSOPESYMO1/internal/kconfig"
	"github.com/Jawsshhh/CSOPESYMO1/internal/paging"
	"github.com/Jawsshhh/CSOPESYMO1/internal/process"
	"github.com/Jawsshhh/CSOPESYMO1/internal/registry"
)

// supervisorInterval is the single cooperative sleep the supervisor
// loop uses between ticks, per spec.md §9's explicit rejection of
// busy-wait polling.
const supervisorInterval = 10 * time.Millisecond

// pageFaultBackoff is the wait between page-fault retry attempts.
const pageFaultBackoff = 50 * time.Millisecond

// maxPageFaultRetries bounds how many times a worker retries an
// unresolved page fault before giving up this turn and requeuing the
// process, rather than blocking its core indefinitely.
const maxPageFaultRetries = 5

// Scheduler owns the process queues, the two worker pools (FCFS xor
// RR - selected by cfg.Scheduler) and the supervisor goroutine.
type Scheduler struct {
	cfg   kconfig.Config
	reg   *registry.Registry
	pager *paging.Engine

	logDir string

	mu           sync.Mutex
	cond         *sync.Cond
	readyQueue   []*process.Process
	waitingQueue []*process.Process
	sleepingList []*process.Process
	coreBusy     []bool

	coreTurnMu   sync.Mutex
	coreTurnCond *sync.Cond
	nextCoreID   int

	stopped atomic.Bool
	done    chan struct{}
	wgSup   sync.WaitGroup
	wgWork  sync.WaitGroup

	totalTicks  atomic.Int64
	activeTicks atomic.Int64
	idleTicks   atomic.Int64

	reportMu   sync.Mutex
	lastReport string

	snapshotDir string
	snapshots   bool
	cycle       atomic.Int64

	metrics *schedMetrics
}

// Option configures optional Scheduler behavior.
type Option func(*Scheduler)

// WithMemorySnapshots enables a per-quantum paging snapshot dump to
// dir, supplemented from original_source/RoundRobin.cpp calling
// generateSnapshot every quantum from core 0.
func WithMemorySnapshots(dir string) Option {
	return func(s *Scheduler) {
		s.snapshots = true
		s.snapshotDir = dir
	}
}

// WithLogDir sets the directory process_<id>.txt logs are written to.
func WithLogDir(dir string) Option {
	return func(s *Scheduler) { s.logDir = dir }
}

// New constructs a Scheduler bound to reg and pager. It does not start
// any goroutines; call Start for that.
func New(cfg kconfig.Config, reg *registry.Registry, pager *paging.Engine, opts ...Option) *Scheduler {
	n := cfg.NumCPU
	if n < 1 {
		n = 1
	}
	s := &Scheduler{
		cfg:      cfg,
		reg:      reg,
		pager:    pager,
		coreBusy: make([]bool, n),
		done:     make(chan struct{}),
		metrics:  newSchedMetrics(),
	}
	s.cond = sync.NewCond(&s.mu)
	s.coreTurnCond = sync.NewCond(&s.coreTurnMu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the supervisor and the configured worker pool.
func (s *Scheduler) Start() {
	s.wgSup.Add(1)
	go s.supervisorLoop()

	worker := s.fcfsWorker
	if s.cfg.Scheduler == kconfig.RR {
		worker = s.rrWorker
	}
	for c := 0; c < len(s.coreBusy); c++ {
		s.wgWork.Add(1)
		coreID := c
		go worker(coreID)
	}
}

// Stop signals shutdown and waits for the supervisor, then every
// worker, to exit - the join order spec.md §5 requires. Ongoing
// instructions complete; there is no mid-instruction cancellation.
func (s *Scheduler) Stop() {
	s.stopped.Store(true)
	close(s.done)

	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
	s.coreTurnMu.Lock()
	s.coreTurnCond.Broadcast()
	s.coreTurnMu.Unlock()

	s.waitWithTimeout(&s.wgSup, "supervisor")
	s.waitWithTimeout(&s.wgWork, "workers")
}

func (s *Scheduler) waitWithTimeout(wg *sync.WaitGroup, what string) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		slog.Warn("scheduler: timed out waiting for shutdown", "component", what)
	}
}

func (s *Scheduler) isStopped() bool { return s.stopped.Load() }

// AddProcess admits p: it computes the pages needed, tries to reserve
// and initialize them, and pushes p onto the ready queue on success or
// the waiting queue on failure. It never blocks the caller.
func (s *Scheduler) AddProcess(p *process.Process) {
	if !s.reg.Insert(p) {
		return
	}
	if err := p.OpenLog(s.logDir); err != nil {
		slog.Warn("scheduler: failed to open process log", "pid", p.ID, "error", err)
	}

	if s.tryAdmit(p) {
		s.pushReady(p)
	} else {
		s.pushWaiting(p)
	}
}

// tryAdmit reserves ceil(memory_required/mem_per_frame) page ids,
// seeds their initial data, and registers them with the pager. It
// reports whether admission succeeded.
func (s *Scheduler) tryAdmit(p *process.Process) bool {
	frameSize := s.cfg.MemPerFrame
	if frameSize == 0 {
		frameSize = 1
	}
	needed := int((uint64(p.MemoryRequired) + frameSize - 1) / frameSize)
	if needed < 1 {
		needed = 1
	}

	ids := make([]int, 0, needed)
	for i := 0; i < needed; i++ {
		id, ok := s.pager.NextGlobalPageID()
		if !ok {
			return false
		}
		ids = append(ids, id)
	}
	for _, id := range ids {
		s.pager.InitializePageData(id, fmt.Sprintf("DefaultData_PAGE%d", id))
	}
	s.pager.RegisterProcessPages(p.ID, ids)
	p.SetAssignedPages(ids)
	return true
}

func (s *Scheduler) pushReady(p *process.Process) {
	s.mu.Lock()
	s.readyQueue = append(s.readyQueue, p)
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *Scheduler) pushWaiting(p *process.Process) {
	s.mu.Lock()
	s.waitingQueue = append(s.waitingQueue, p)
	s.mu.Unlock()
}

func (s *Scheduler) pushSleeping(p *process.Process) {
	s.mu.Lock()
	s.sleepingList = append(s.sleepingList, p)
	s.mu.Unlock()
}

func (s *Scheduler) popReady() *process.Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.readyQueue) == 0 {
		return nil
	}
	p := s.readyQueue[0]
	s.readyQueue = s.readyQueue[1:]
	return p
}

// waitForWork blocks until the ready queue is non-empty or the
// scheduler is stopping.
func (s *Scheduler) waitForWork() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.readyQueue) == 0 && !s.isStopped() {
		s.cond.Wait()
	}
}

func (s *Scheduler) setCoreBusy(coreID int, busy bool) {
	s.mu.Lock()
	if coreID >= 0 && coreID < len(s.coreBusy) {
		s.coreBusy[coreID] = busy
	}
	s.mu.Unlock()
}

// supervisorLoop advances sleepers, retries waiting admissions and
// signals workers once per tick, per spec.md §4.4's scheduler_loop.
func (s *Scheduler) supervisorLoop() {
	defer s.wgSup.Done()
	ticker := time.NewTicker(supervisorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.advanceSleepers()
			s.drainWaiting()
			s.mu.Lock()
			s.cond.Broadcast()
			s.mu.Unlock()
		}
	}
}

func (s *Scheduler) advanceSleepers() {
	s.mu.Lock()
	remaining := s.sleepingList[:0]
	var woken []*process.Process
	for _, p := range s.sleepingList {
		if p.TickSleep() {
			woken = append(woken, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	s.sleepingList = remaining
	s.mu.Unlock()

	for _, p := range woken {
		slog.Debug("process woke up", "pid", p.ID, "name", p.Name)
		s.pushReady(p)
	}
}

func (s *Scheduler) drainWaiting() {
	s.mu.Lock()
	batch := s.waitingQueue
	s.waitingQueue = nil
	s.mu.Unlock()

	for _, p := range batch {
		if s.tryAdmit(p) {
			s.pushReady(p)
		} else {
			s.pushWaiting(p)
		}
	}
}

// pageForPC maps the current program counter to one of the process's
// assigned pages, so every executed instruction counts as one access
// against the paging engine even though READ/WRITE addresses are
// checked separately against the process's own memory map.
func pageForPC(p *process.Process, pc int) (int, bool) {
	pages := p.AssignedPages()
	if len(pages) == 0 {
		return 0, false
	}
	total := p.ProgramLen()
	if total <= 0 {
		return pages[0], true
	}
	idx := pc * len(pages) / total
	if idx >= len(pages) {
		idx = len(pages) - 1
	}
	return pages[idx], true
}

// resolvePage ensures pageID is resident, faulting it in if necessary
// with up to maxPageFaultRetries backed-off attempts.
func (s *Scheduler) resolvePage(pageID int) bool {
	if s.pager.AccessPage(pageID) {
		return true
	}
	for attempt := 0; attempt < maxPageFaultRetries; attempt++ {
		if s.pager.PageFault(pageID) {
			return true
		}
		time.Sleep(pageFaultBackoff)
	}
	return false
}

// finishProcess releases a process's pages, marks it finished in the
// registry and closes its log. Called once a process reaches pc ==
// len(program), raises a memory violation, or is reaped for any other
// terminal reason.
func (s *Scheduler) finishProcess(p *process.Process) {
	if !p.Finished() {
		p.MarkFinished()
	}
	s.pager.ReleaseProcessPages(p.ID)
	s.reg.MarkFinished(p.ID)
	if err := p.CloseLog(); err != nil {
		slog.Warn("scheduler: failed to close process log", "pid", p.ID, "error", err)
	}
}

// executeStep resolves the page for the process's current PC, runs
// one instruction, and reports whether the instruction actually ran
// (false means the page fault could not be resolved this attempt and
// the caller should treat the tick as idle).
func (s *Scheduler) executeStep(p *process.Process, coreID int) bool {
	in, ok := p.NextInstruction()
	if !ok {
		return true
	}
	if pageID, has := pageForPC(p, p.PC()); has {
		if !s.resolvePage(pageID) {
			s.idleTicks.Add(1)
			s.totalTicks.Add(1)
			s.metrics.idleTicks.Inc()
			return false
		}
	}
	in.Execute(p, coreID)
	p.Advance()
	s.activeTicks.Add(1)
	s.totalTicks.Add(1)
	s.metrics.activeTicks.Inc()
	if s.cfg.DelayPerExec > 0 {
		time.Sleep(time.Duration(s.cfg.DelayPerExec) * time.Millisecond)
	}
	return true
}

func (s *Scheduler) maybeSnapshot(coreID int) {
	if !s.snapshots || coreID != 0 {
		return
	}
	cycle := s.cycle.Add(1)
	path := fmt.Sprintf("%s/memory_stamp_%02d.txt", s.snapshotDir, cycle)
	if err := s.pager.GenerateSnapshot(path, int(cycle)); err != nil {
		slog.Warn("scheduler: memory snapshot failed", "cycle", cycle, "error", err)
	}
}
