/*
 * CSOPESYMO1 - Random process generator.
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

// Package generator implements the random-process generator spec.md §1
// calls out as an external collaborator of the scheduler: it populates
// the scheduler with synthetic processes on a fixed interval, the way
// `scheduler-start` is expected to behave in a live demo session. It is
// not part of the kernel's public API; it only ever calls
// scheduler.AddProcess, the same entry point the console uses for
// user-created processes.
package generator

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Jawsshhh/CSOPESYMO1/internal/instr"
	"github.com/Jawsshhh/CSOPESYMO1/internal/kconfig"
	"github.com/Jawsshhh/CSOPESYMO1/internal/process"
	"github.com/Jawsshhh/CSOPESYMO1/internal/registry"
	"github.com/Jawsshhh/CSOPESYMO1/internal/scheduler"
)

// Generator emits a new synthetic process onto the scheduler every
// batch-process-freq milliseconds, for as long as it is running.
type Generator struct {
	cfg   kconfig.Config
	sched *scheduler.Scheduler
	reg   *registry.Registry

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
	counter atomic.Int64
}

// New builds a generator wired to sched for admission and reg for id
// allocation.
func New(cfg kconfig.Config, sched *scheduler.Scheduler, reg *registry.Registry) *Generator {
	return &Generator{cfg: cfg, sched: sched, reg: reg}
}

// Start launches the population loop. Calling Start while already
// running is a no-op.
func (g *Generator) Start() {
	if !g.running.CompareAndSwap(false, true) {
		return
	}
	g.done = make(chan struct{})
	g.wg.Add(1)
	go g.loop()
}

// Stop halts the population loop and waits for it to exit. Calling Stop
// while not running is a no-op.
func (g *Generator) Stop() {
	if !g.running.CompareAndSwap(true, false) {
		return
	}
	close(g.done)
	g.wg.Wait()
}

func (g *Generator) loop() {
	defer g.wg.Done()
	freq := time.Duration(g.cfg.BatchProcessFreq) * time.Millisecond
	if freq <= 0 {
		freq = time.Millisecond
	}
	ticker := time.NewTicker(freq)
	defer ticker.Stop()
	for {
		select {
		case <-g.done:
			return
		case <-ticker.C:
			g.sched.AddProcess(g.spawn())
		}
	}
}

func (g *Generator) spawn() *process.Process {
	n := g.counter.Add(1)
	name := fmt.Sprintf("p%02d", n)
	mem := randomPowerOfTwo(g.cfg.MinMemPerProc, g.cfg.MaxMemPerProc)
	program := randomProgram(g.cfg.MinIns, g.cfg.MaxIns)
	return process.New(g.reg.NextID(), name, uint32(mem), program)
}

// randomPowerOfTwo picks uniformly among the powers of two in [lo, hi].
func randomPowerOfTwo(lo, hi uint64) uint64 {
	if lo == 0 {
		lo = 64
	}
	if hi < lo {
		hi = lo
	}
	var choices []uint64
	for v := lo; v <= hi; v *= 2 {
		choices = append(choices, v)
	}
	if len(choices) == 0 {
		return lo
	}
	return choices[rand.IntN(len(choices))]
}

// randomProgram builds between lo and hi instructions using the
// arithmetic/print/sleep subset of the instruction set. READ/WRITE are
// deliberately excluded from generated programs: a synthetic program
// has no notion of a valid address range to stay inside, and the
// generator's job is to produce CPU/scheduler load, not to exercise
// memory-violation handling (the console's screen -c path does that
// for hand-written programs instead).
func randomProgram(lo, hi int) []instr.Instruction {
	if hi < lo {
		hi = lo
	}
	if lo < 1 {
		lo = 1
	}
	count := lo
	if hi > lo {
		count = lo + rand.IntN(hi-lo+1)
	}
	prog := make([]instr.Instruction, 0, count)
	prog = append(prog, instr.Instruction{Kind: instr.Declare, Name: "v", Value: uint16(rand.IntN(100))})
	for i := 1; i < count; i++ {
		switch rand.IntN(4) {
		case 0:
			prog = append(prog, instr.Instruction{Kind: instr.Add, Dest: "v", A: "v", B: instr.Operand(fmt.Sprintf("%d", rand.IntN(10)))})
		case 1:
			prog = append(prog, instr.Instruction{Kind: instr.Subtract, Dest: "v", A: "v", B: instr.Operand(fmt.Sprintf("%d", rand.IntN(5)))})
		case 2:
			prog = append(prog, instr.Instruction{Kind: instr.Sleep, Ticks: uint8(1 + rand.IntN(3))})
		default:
			prog = append(prog, instr.Instruction{Kind: instr.Print, Message: "v"})
		}
	}
	return prog
}
