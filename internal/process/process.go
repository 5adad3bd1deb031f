/*
 * CSOPESYMO1 - Process object.
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

// Package process implements the process object: program counter,
// symbol table, sleep counter, assigned pages, memory map and log,
// grounded on original_source/Process.cpp's per-process log file and
// creation-time handling, generalized from IBM S/370 job state
// (emu/core's goroutine model) to the five-field lifecycle spec.md §3
// describes.
package process

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Jawsshhh/CSOPESYMO1/internal/instr"
	"github.com/Jawsshhh/CSOPESYMO1/internal/symtab"
)

// TimeFormat is the timestamp layout spec.md §4.1 requires for every
// log line: "(<MM/DD/YYYY hh:mm:ssAM>) Core:<id> "<detail>"".
const TimeFormat = "01/02/2006 03:04:05PM"

// LogEntry is one line of a process's execution log.
type LogEntry struct {
	Time   time.Time
	Core   int
	Detail string
}

// String renders the entry in spec.md §4.1's exact format.
func (e LogEntry) String() string {
	return fmt.Sprintf("(%s) Core:%d \"%s\"", e.Time.Format(TimeFormat), e.Core, e.Detail)
}

// Violation records a fatal memory access outside [0, memoryRequired).
type Violation struct {
	Address uint32
	At      time.Time
}

// Process is one user-defined job: its program, its registers
// (program counter and symbol table), its memory, and its log.
//
// mu guards every field a query or the supervisor might observe while a
// worker is mutating it (pc, assignedCore, symbols, memoryMap, logs,
// violation). Finished and sleepTicksRemaining are atomics: spec.md §5
// calls these out specifically as fields the supervisor reads
// concurrently with the owning worker, so they do not share mu with the
// fields only the worker touches (avoids the supervisor blocking on a
// worker's logging/memory work just to check "is this one done yet").
type Process struct {
	ID             int
	Name           string
	MemoryRequired uint32
	Program        []instr.Instruction
	CreatedAt      time.Time

	mu            sync.Mutex
	pc            int
	symbols       *symtab.Table
	assignedPages []int
	assignedCore  *int
	memoryMap     map[uint32]uint16
	logs          []LogEntry
	violation     *Violation

	finished   atomic.Bool
	sleepTicks atomic.Int32

	logFile *os.File
	logW    *bufio.Writer
	logMu   sync.Mutex
}

// New creates a process with an empty symbol table and memory map. The
// program counter starts at 0 and the process is neither sleeping nor
// finished.
func New(id int, name string, memoryRequired uint32, program []instr.Instruction) *Process {
	return &Process{
		ID:             id,
		Name:           name,
		MemoryRequired: memoryRequired,
		Program:        program,
		CreatedAt:      time.Now(),
		symbols:        symtab.New(),
		memoryMap:      make(map[uint32]uint16),
	}
}

// OpenLog creates process_<id>.txt, truncated, and writes the header
// spec.md §6 specifies. Supplemented from original_source/Process.cpp,
// which does this synchronously in the constructor rather than lazily
// on first PRINT; scheduler.AddProcess calls it once, right after
// registry.Insert, so every
// admitted process has its log file from the moment it becomes visible
// to the scheduler, matching that timing. dir may be empty to use the
// working directory.
func (p *Process) OpenLog(dir string) error {
	path := fmt.Sprintf("process_%d.txt", p.ID)
	if dir != "" {
		path = dir + string(os.PathSeparator) + path
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open process log for pid %d: %w", p.ID, err)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "Process name: %s\nLogs:\n", p.Name)
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	p.logMu.Lock()
	p.logFile = f
	p.logW = w
	p.logMu.Unlock()
	return nil
}

// CloseLog flushes and closes the per-process log file, if open.
func (p *Process) CloseLog() error {
	p.logMu.Lock()
	defer p.logMu.Unlock()
	if p.logFile == nil {
		return nil
	}
	err := p.logW.Flush()
	cerr := p.logFile.Close()
	p.logFile = nil
	p.logW = nil
	if err != nil {
		return err
	}
	return cerr
}

// PC returns the current program counter.
func (p *Process) PC() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pc
}

// ProgramLen returns the instruction count.
func (p *Process) ProgramLen() int { return len(p.Program) }

// AtEnd reports whether the process has no more instructions to run.
func (p *Process) AtEnd() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pc >= len(p.Program)
}

// NextInstruction returns the instruction at pc without advancing it.
func (p *Process) NextInstruction() (instr.Instruction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pc >= len(p.Program) {
		return instr.Instruction{}, false
	}
	return p.Program[p.pc], true
}

// Advance moves the program counter forward one instruction.
func (p *Process) Advance() {
	p.mu.Lock()
	p.pc++
	p.mu.Unlock()
}

// AssignedCore returns the core currently running this process, if any.
func (p *Process) AssignedCore() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.assignedCore == nil {
		return 0, false
	}
	return *p.assignedCore, true
}

// SetAssignedCore records which core is running the process, or clears
// it when core is nil.
func (p *Process) SetAssignedCore(core *int) {
	p.mu.Lock()
	p.assignedCore = core
	p.mu.Unlock()
}

// AssignedPages returns the global page ids owned by this process.
func (p *Process) AssignedPages() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.assignedPages))
	copy(out, p.assignedPages)
	return out
}

// SetAssignedPages records the page ids admitted for this process.
func (p *Process) SetAssignedPages(pages []int) {
	p.mu.Lock()
	p.assignedPages = pages
	p.mu.Unlock()
}

// Finished reports the terminal flag.
func (p *Process) Finished() bool { return p.finished.Load() }

// MarkFinished sets the terminal flag and clears the core assignment,
// matching spec.md §3's "finished => assigned_core = none (after reap)".
func (p *Process) MarkFinished() {
	p.finished.Store(true)
	p.SetAssignedCore(nil)
}

// SleepTicksRemaining returns the current sleep countdown.
func (p *Process) SleepTicksRemaining() int32 { return p.sleepTicks.Load() }

// Sleeping reports whether the process is currently sleeping.
func (p *Process) Sleeping() bool { return p.sleepTicks.Load() > 0 }

// TickSleep decrements the sleep counter by one if sleeping, clamped at
// zero, and reports whether the process just woke up (reached zero on
// this call).
func (p *Process) TickSleep() (wokeUp bool) {
	for {
		cur := p.sleepTicks.Load()
		if cur <= 0 {
			return false
		}
		next := cur - 1
		if p.sleepTicks.CompareAndSwap(cur, next) {
			return next == 0
		}
	}
}

// Violation returns the recorded memory violation, if any.
func (p *Process) Violation() *Violation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.violation
}

// Logs returns a copy of the process's log entries.
func (p *Process) Logs() []LogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]LogEntry, len(p.logs))
	copy(out, p.logs)
	return out
}

// --- instr.Machine implementation ---

// GetSymbol implements instr.Machine.
func (p *Process) GetSymbol(name string) (uint16, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.symbols.Get(name)
}

// DeclareSymbol implements instr.Machine.
func (p *Process) DeclareSymbol(name string, value uint16) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.symbols.Declare(name, value)
}

// SetSymbol implements instr.Machine.
func (p *Process) SetSymbol(name string, value uint16) {
	p.mu.Lock()
	p.symbols.Set(name, value)
	p.mu.Unlock()
}

// ReadByteAddr implements instr.Machine.
func (p *Process) ReadByteAddr(addr uint32) (uint16, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if addr >= p.MemoryRequired {
		return 0, false
	}
	return p.memoryMap[addr], true
}

// WriteByteAddr implements instr.Machine.
func (p *Process) WriteByteAddr(addr uint32, value uint16) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if addr >= p.MemoryRequired {
		return false
	}
	p.memoryMap[addr] = value
	return true
}

// SetSleep implements instr.Machine.
func (p *Process) SetSleep(n uint8) { p.sleepTicks.Store(int32(n)) }

// RaiseViolation implements instr.Machine. Setting a violation also
// finishes the process, per spec.md §3's invariant.
func (p *Process) RaiseViolation(addr uint32) {
	now := time.Now()
	p.mu.Lock()
	p.violation = &Violation{Address: addr, At: now}
	p.mu.Unlock()
	detail := fmt.Sprintf("Process %s shut down due to memory access violation error that occurred at %s. 0x%X invalid.",
		p.Name, now.Format(TimeFormat), addr)
	p.appendLog(LogEntry{Time: now, Core: -1, Detail: detail})
	slog.Error("memory access violation", "pid", p.ID, "name", p.Name, "addr", addr)
	p.MarkFinished()
}

// Log implements instr.Machine: appends one executed-instruction line
// to both the in-memory log (read by the query surface without file
// I/O) and the on-disk process_<id>.txt, flushed immediately to mirror
// original_source/Process.cpp's per-line flush discipline.
func (p *Process) Log(core int, detail string) {
	p.appendLog(LogEntry{Time: time.Now(), Core: core, Detail: detail})
}

func (p *Process) appendLog(entry LogEntry) {
	p.mu.Lock()
	p.logs = append(p.logs, entry)
	p.mu.Unlock()

	p.logMu.Lock()
	defer p.logMu.Unlock()
	if p.logW == nil {
		return
	}
	fmt.Fprintln(p.logW, entry.String())
	if err := p.logW.Flush(); err != nil {
		slog.Warn("process log flush failed", "pid", p.ID, "error", err)
	}
}
