/*
 * CSOPESYMO1 - Console command table.
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

package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Jawsshhh/CSOPESYMO1/internal/instr"
	"github.com/Jawsshhh/CSOPESYMO1/internal/process"
)

// cmd is one console command: name, minimum abbreviation length to
// match it, and the handler that runs it. Grounded on
// command/parser/parser.go's cmd table and matchCommand.
type cmd struct {
	name    string
	min     int
	process func(*cmdLine, *Console) (bool, error)
}

// cmdLine tracks position within one input line, grounded on
// command/parser/parser.go's cmdLine.
type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{name: "initialize", min: 4, process: cmdInitialize},
	{name: "screen", min: 2, process: cmdScreen},
	{name: "scheduler-start", min: 11, process: cmdSchedulerStart},
	{name: "scheduler-stop", min: 11, process: cmdSchedulerStop},
	{name: "report-util", min: 7, process: cmdReportUtil},
	{name: "process-smi", min: 8, process: cmdProcessSMI},
	{name: "vmstat", min: 3, process: cmdVMStat},
	{name: "clear", min: 2, process: cmdClear},
	{name: "exit", min: 4, process: cmdExit},
}

// ProcessCommand parses and runs one line of console input.
func ProcessCommand(commandLine string, c *Console) (bool, error) {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	matches := matchList(name)
	if len(matches) == 0 {
		return false, fmt.Errorf("command not found: %s", name)
	}
	if len(matches) > 1 {
		return false, fmt.Errorf("ambiguous command: %s", name)
	}

	m := matches[0]
	if !c.initialized && m.name != "initialize" && m.name != "exit" && m.name != "clear" {
		return false, errors.New("not initialized; run `initialize` first")
	}
	return m.process(&line, c)
}

// CompleteCmd returns the command names matching the partial line, for
// liner's tab completion.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord()
	matches := matchList(name)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

func matchCommand(m cmd, command string) bool {
	if len(command) > len(m.name) {
		return false
	}
	for i := 0; i < len(command); i++ {
		if m.name[i] != command[i] {
			return false
		}
	}
	return len(command) >= m.min
}

func matchList(command string) []cmd {
	if command == "" {
		return nil
	}
	var out []cmd
	for _, m := range cmdList {
		if matchCommand(m, command) {
			out = append(out, m)
		}
	}
	return out
}

func (l *cmdLine) isEOL() bool { return l.pos >= len(l.line) }

func (l *cmdLine) skipSpace() {
	for !l.isEOL() && unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
}

// getWord reads the next whitespace-delimited token.
func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for !l.isEOL() && !unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
	return l.line[start:l.pos]
}

// parseQuoteString reads a "double-quoted" token, or a bare word if the
// next non-space character isn't a quote.
func (l *cmdLine) parseQuoteString() (string, bool) {
	l.skipSpace()
	if l.isEOL() {
		return "", false
	}
	if l.line[l.pos] != '"' {
		return l.getWord(), true
	}
	l.pos++
	start := l.pos
	for !l.isEOL() && l.line[l.pos] != '"' {
		l.pos++
	}
	if l.isEOL() {
		return "", false
	}
	value := l.line[start:l.pos]
	l.pos++ // consume closing quote
	return value, true
}

func cmdInitialize(_ *cmdLine, c *Console) (bool, error) {
	c.initialized = true
	fmt.Println("kernel initialized.")
	return false, nil
}

func cmdScreen(line *cmdLine, c *Console) (bool, error) {
	flag := line.getWord()
	switch flag {
	case "-s":
		name := line.getWord()
		mem, err := parseMemArg(line.getWord())
		if err != nil {
			return false, fmt.Errorf("screen -s: %w", err)
		}
		addScreen(c, name, mem, nil)
		return false, nil
	case "-c":
		name := line.getWord()
		mem, err := parseMemArg(line.getWord())
		if err != nil {
			return false, fmt.Errorf("screen -c: %w", err)
		}
		raw, ok := line.parseQuoteString()
		if !ok {
			return false, errors.New(`screen -c: expected "<instr>;<instr>;..."`)
		}
		program, err := parseProgram(raw)
		if err != nil {
			return false, fmt.Errorf("screen -c: %w", err)
		}
		addScreen(c, name, mem, program)
		return false, nil
	case "-r":
		name := line.getWord()
		p, ok := c.reg.GetByName(name)
		if !ok {
			return false, fmt.Errorf("screen -r: no such process %q", name)
		}
		c.current = name
		printScreen(p)
		return false, nil
	case "-ls":
		printList(c)
		return false, nil
	default:
		return false, fmt.Errorf("screen: unknown flag %q", flag)
	}
}

func parseMemArg(s string) (uint32, error) {
	mem, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid memory size %q", s)
	}
	return uint32(mem), nil
}

// addScreen creates a process and hands it to the scheduler, the same
// entry point screen -s and screen -c share; screen -s omits program,
// leaving a process that finishes immediately once dispatched.
func addScreen(c *Console, name string, mem uint32, program []instr.Instruction) {
	p := process.New(c.reg.NextID(), name, mem, program)
	c.sched.AddProcess(p)
	c.current = name
}

func cmdSchedulerStart(_ *cmdLine, c *Console) (bool, error) {
	c.gen.Start()
	fmt.Println("scheduler-start: generator running.")
	return false, nil
}

func cmdSchedulerStop(_ *cmdLine, c *Console) (bool, error) {
	c.gen.Stop()
	fmt.Println("scheduler-stop: generator stopped.")
	return false, nil
}

func cmdReportUtil(_ *cmdLine, c *Console) (bool, error) {
	c.sched.ListProcesses()
	if err := c.sched.Report("csopesy.txt"); err != nil {
		return false, err
	}
	fmt.Println("report written to csopesy.txt")
	return false, nil
}

func cmdProcessSMI(_ *cmdLine, c *Console) (bool, error) {
	snap := c.sched.ProcessSMI()
	fmt.Printf("CPU utilization: %.2f%%\n", snap.CPUUtilPercent)
	fmt.Printf("Memory: %d / %d bytes\n", snap.MemoryUsedBytes, snap.MemoryTotalBytes)
	for _, p := range snap.Processes {
		fmt.Printf("  %-16s %d bytes\n", p.Name, p.MemoryBytes)
	}
	return false, nil
}

func cmdVMStat(_ *cmdLine, c *Console) (bool, error) {
	snap := c.sched.VMStat()
	fmt.Printf("total: %d used: %d free: %d\n", snap.TotalBytes, snap.UsedBytes, snap.FreeBytes)
	fmt.Printf("idle ticks: %d active ticks: %d total ticks: %d\n", snap.IdleTicks, snap.ActiveTicks, snap.TotalTicks)
	fmt.Printf("pages in: %d pages out: %d\n", snap.PagesIn, snap.PagesOut)
	return false, nil
}

func cmdClear(_ *cmdLine, _ *Console) (bool, error) {
	fmt.Print("\033[H\033[2J")
	return false, nil
}

func cmdExit(_ *cmdLine, _ *Console) (bool, error) {
	return true, nil
}

func printList(c *Console) {
	snap := c.sched.ListProcesses()
	fmt.Printf("CPU utilization: %.2f%%\n", snap.CPUUtilPercent)
	fmt.Println("Running processes:")
	for _, p := range snap.Running {
		fmt.Printf("  %-16s %d/%d\n", p.Name, p.PC, p.Total)
	}
	fmt.Println("Finished processes:")
	for _, p := range snap.Finished {
		fmt.Printf("  %-16s %d/%d\n", p.Name, p.PC, p.Total)
	}
}

func printScreen(p *process.Process) {
	fmt.Printf("process: %s  pc: %d/%d  finished: %v\n", p.Name, p.PC(), p.ProgramLen(), p.Finished())
	for _, entry := range p.Logs() {
		fmt.Println(entry.String())
	}
	if v := p.Violation(); v != nil {
		fmt.Printf("violation at 0x%X (%s)\n", v.Address, v.At.Format(process.TimeFormat))
	}
}
