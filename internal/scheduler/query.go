/*
 * CSOPESYMO1 - Query surface: list/process-smi/vmstat/report.
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
	"fmt"
	"os"
	"strings"
	"time"
)

// ProcessSnapshot is one row of a list_processes rendering.
type ProcessSnapshot struct {
	ID       int
	Name     string
	Created  time.Time
	Core     int // -1 if unassigned
	PC       int
	Total    int
	Finished bool
}

// ListSnapshot is the result of ListProcesses.
type ListSnapshot struct {
	CPUUtilPercent float64
	Running        []ProcessSnapshot
	Finished       []ProcessSnapshot
}

// ListProcesses computes CPU utilization and the running/finished
// process tables under the registry's lock, per spec.md §4.5, and
// caches a textual rendering for Report.
func (s *Scheduler) ListProcesses() ListSnapshot {
	n := len(s.coreBusy)
	active := s.reg.ActivePerCore(n)
	busy := 0
	for _, b := range active {
		if b {
			busy++
		}
	}
	util := 0.0
	if n > 0 {
		util = float64(busy) / float64(n) * 100
	}

	snap := ListSnapshot{CPUUtilPercent: util}
	for _, p := range s.reg.Running() {
		core := -1
		if c, ok := p.AssignedCore(); ok {
			core = c
		}
		snap.Running = append(snap.Running, ProcessSnapshot{
			ID: p.ID, Name: p.Name, Created: p.CreatedAt, Core: core,
			PC: p.PC(), Total: p.ProgramLen(),
		})
	}
	for _, p := range s.reg.Finished() {
		snap.Finished = append(snap.Finished, ProcessSnapshot{
			ID: p.ID, Name: p.Name, Created: p.CreatedAt, Core: -1,
			PC: p.PC(), Total: p.ProgramLen(), Finished: true,
		})
	}

	s.reportMu.Lock()
	s.lastReport = renderList(snap)
	s.reportMu.Unlock()
	return snap
}

// ProcessMemSnapshot is one running process's memory footprint.
type ProcessMemSnapshot struct {
	ID          int
	Name        string
	MemoryBytes uint64
}

// ProcessSMISnapshot is the result of ProcessSMI.
type ProcessSMISnapshot struct {
	CPUUtilPercent   float64
	MemoryUsedBytes  uint64
	MemoryTotalBytes uint64
	Processes        []ProcessMemSnapshot
}

// ProcessSMI reports CPU utilization, memory used/total, and each
// running process's declared memory requirement.
func (s *Scheduler) ProcessSMI() ProcessSMISnapshot {
	list := s.ListProcesses()
	used := s.pager.GetUsedMemory()
	free := s.pager.GetFreeMemory()
	out := ProcessSMISnapshot{
		CPUUtilPercent:   list.CPUUtilPercent,
		MemoryUsedBytes:  used,
		MemoryTotalBytes: used + free,
	}
	for _, p := range s.reg.Running() {
		out.Processes = append(out.Processes, ProcessMemSnapshot{
			ID: p.ID, Name: p.Name, MemoryBytes: uint64(p.MemoryRequired),
		})
	}
	return out
}

// VMStatSnapshot is the result of VMStat.
type VMStatSnapshot struct {
	TotalBytes  uint64
	UsedBytes   uint64
	FreeBytes   uint64
	IdleTicks   int64
	ActiveTicks int64
	TotalTicks  int64
	PagesIn     int64
	PagesOut    int64
}

// VMStat reports memory totals, CPU tick accounting and pager
// counters.
func (s *Scheduler) VMStat() VMStatSnapshot {
	used := s.pager.GetUsedMemory()
	free := s.pager.GetFreeMemory()
	return VMStatSnapshot{
		TotalBytes:  used + free,
		UsedBytes:   used,
		FreeBytes:   free,
		IdleTicks:   s.idleTicks.Load(),
		ActiveTicks: s.activeTicks.Load(),
		TotalTicks:  s.totalTicks.Load(),
		PagesIn:     s.pager.GetPagesIn(),
		PagesOut:    s.pager.GetPagesOut(),
	}
}

// Report writes the last ListProcesses rendering to path.
func (s *Scheduler) Report(path string) error {
	s.reportMu.Lock()
	body := s.lastReport
	s.reportMu.Unlock()
	return os.WriteFile(path, []byte(body), 0o644)
}

func renderList(snap ListSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CPU utilization: %.2f%%\n", snap.CPUUtilPercent)
	fmt.Fprintln(&b, "Running processes:")
	for _, p := range snap.Running {
		core := "none"
		if p.Core >= 0 {
			core = fmt.Sprintf("%d", p.Core)
		}
		fmt.Fprintf(&b, "%-16s (%s) Core: %-4s %d/%d\n",
			p.Name, p.Created.Format("01/02/2006 03:04:05PM"), core, p.PC, p.Total)
	}
	fmt.Fprintln(&b, "Finished processes:")
	for _, p := range snap.Finished {
		fmt.Fprintf(&b, "%-16s (%s) Finished   %d/%d\n",
			p.Name, p.Created.Format("01/02/2006 03:04:05PM"), p.PC, p.Total)
	}
	return b.String()
}
