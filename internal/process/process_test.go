/*
 * CSOPESYMO1 - Process object test cases.
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

package process

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Jawsshhh/CSOPESYMO1/internal/instr"
)

func TestNewStartsAtZero(t *testing.T) {
	p := New(1, "p1", 64, nil)
	if p.PC() != 0 {
		t.Errorf("PC() = %d, want 0", p.PC())
	}
	if p.Finished() {
		t.Errorf("new process should not be finished")
	}
	if p.Sleeping() {
		t.Errorf("new process should not be sleeping")
	}
}

func TestOpenLogWritesHeaderImmediately(t *testing.T) {
	dir := t.TempDir()
	p := New(7, "my_process", 64, nil)
	if err := p.OpenLog(dir); err != nil {
		t.Fatalf("OpenLog: %v", err)
	}
	defer p.CloseLog()

	data, err := os.ReadFile(filepath.Join(dir, "process_7.txt"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	want := "Process name: my_process\nLogs:\n"
	if string(data) != want {
		t.Errorf("header = %q, want %q", string(data), want)
	}
}

func TestLogAppendsAndFlushes(t *testing.T) {
	dir := t.TempDir()
	p := New(3, "p3", 64, nil)
	if err := p.OpenLog(dir); err != nil {
		t.Fatalf("OpenLog: %v", err)
	}
	defer p.CloseLog()

	p.Log(0, "DECLARE x 5")

	data, err := os.ReadFile(filepath.Join(dir, "process_3.txt"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected log line to be flushed to disk without explicit Close")
	}
	logs := p.Logs()
	if len(logs) != 1 || logs[0].Detail != "DECLARE x 5" {
		t.Errorf("Logs() = %v", logs)
	}
}

func TestAdvanceAndAtEnd(t *testing.T) {
	prog := []instr.Instruction{
		{Kind: instr.Declare, Name: "x", Value: 1},
		{Kind: instr.Print, Message: "x"},
	}
	p := New(1, "p1", 64, prog)
	if p.AtEnd() {
		t.Fatalf("should not be at end before any instruction runs")
	}
	in, ok := p.NextInstruction()
	if !ok || in.Kind != instr.Declare {
		t.Fatalf("NextInstruction = %+v, %v", in, ok)
	}
	p.Advance()
	in, ok = p.NextInstruction()
	if !ok || in.Kind != instr.Print {
		t.Fatalf("NextInstruction = %+v, %v", in, ok)
	}
	p.Advance()
	if !p.AtEnd() {
		t.Fatalf("should be at end after consuming all instructions")
	}
}

func TestSleepTicksDownToWake(t *testing.T) {
	p := New(1, "p1", 64, nil)
	p.SetSleep(2)
	if !p.Sleeping() {
		t.Fatalf("expected sleeping after SetSleep(2)")
	}
	if woke := p.TickSleep(); woke {
		t.Errorf("should not wake after first tick with 2 remaining")
	}
	if !p.Sleeping() {
		t.Errorf("expected still sleeping with 1 tick remaining")
	}
	if woke := p.TickSleep(); !woke {
		t.Errorf("should wake on the tick that reaches zero")
	}
	if p.Sleeping() {
		t.Errorf("should not be sleeping once ticks reach zero")
	}
	if woke := p.TickSleep(); woke {
		t.Errorf("ticking an already-awake process should report no wake")
	}
}

func TestAssignedCoreRoundTrip(t *testing.T) {
	p := New(1, "p1", 64, nil)
	if _, ok := p.AssignedCore(); ok {
		t.Fatalf("new process should have no assigned core")
	}
	core := 2
	p.SetAssignedCore(&core)
	got, ok := p.AssignedCore()
	if !ok || got != 2 {
		t.Fatalf("AssignedCore() = %d, %v, want 2, true", got, ok)
	}
	p.SetAssignedCore(nil)
	if _, ok := p.AssignedCore(); ok {
		t.Fatalf("expected no assigned core after clearing")
	}
}

func TestMarkFinishedClearsCore(t *testing.T) {
	p := New(1, "p1", 64, nil)
	core := 0
	p.SetAssignedCore(&core)
	p.MarkFinished()
	if !p.Finished() {
		t.Errorf("expected Finished() true")
	}
	if _, ok := p.AssignedCore(); ok {
		t.Errorf("finishing should clear the core assignment")
	}
}

func TestRaiseViolationFinishesAndLogs(t *testing.T) {
	dir := t.TempDir()
	p := New(9, "bad", 32, nil)
	if err := p.OpenLog(dir); err != nil {
		t.Fatalf("OpenLog: %v", err)
	}
	defer p.CloseLog()

	p.RaiseViolation(0x80)
	if !p.Finished() {
		t.Errorf("a memory violation should finish the process")
	}
	v := p.Violation()
	if v == nil || v.Address != 0x80 {
		t.Fatalf("Violation() = %+v", v)
	}
	logs := p.Logs()
	if len(logs) != 1 {
		t.Fatalf("expected one log line for the violation, got %d", len(logs))
	}
}

func TestMemoryMapBoundsEnforced(t *testing.T) {
	p := New(1, "p1", 16, nil)
	if _, ok := p.ReadByteAddr(16); ok {
		t.Errorf("read at memoryRequired should be out of range")
	}
	if ok := p.WriteByteAddr(16, 1); ok {
		t.Errorf("write at memoryRequired should be out of range")
	}
	if ok := p.WriteByteAddr(4, 99); !ok {
		t.Fatalf("write within range should succeed")
	}
	v, ok := p.ReadByteAddr(4)
	if !ok || v != 99 {
		t.Errorf("ReadByteAddr(4) = %d, %v, want 99, true", v, ok)
	}
}

func TestSymbolMachineMethods(t *testing.T) {
	p := New(1, "p1", 64, nil)
	if !p.DeclareSymbol("x", 5) {
		t.Fatalf("DeclareSymbol should succeed")
	}
	v, ok := p.GetSymbol("x")
	if !ok || v != 5 {
		t.Errorf("GetSymbol(x) = %d, %v, want 5, true", v, ok)
	}
	p.SetSymbol("x", 9)
	v, _ = p.GetSymbol("x")
	if v != 9 {
		t.Errorf("GetSymbol(x) after Set = %d, want 9", v)
	}
}

func TestAssignedPagesRoundTrip(t *testing.T) {
	p := New(1, "p1", 64, nil)
	p.SetAssignedPages([]int{3, 4, 5})
	got := p.AssignedPages()
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("AssignedPages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AssignedPages()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestRunProgramEndToEnd(t *testing.T) {
	dir := t.TempDir()
	prog := []instr.Instruction{
		{Kind: instr.Declare, Name: "x", Value: 1},
		{Kind: instr.Add, Dest: "x", A: "x", B: "1"},
		{Kind: instr.Print, Message: "x"},
	}
	p := New(1, "p1", 64, prog)
	if err := p.OpenLog(dir); err != nil {
		t.Fatalf("OpenLog: %v", err)
	}
	defer p.CloseLog()

	for !p.AtEnd() {
		in, _ := p.NextInstruction()
		in.Execute(p, 0)
		p.Advance()
	}
	v, ok := p.GetSymbol("x")
	if !ok || v != 2 {
		t.Errorf("x = %d, %v, want 2, true", v, ok)
	}
	if len(p.Logs()) != 3 {
		t.Errorf("expected 3 log lines, got %d", len(p.Logs()))
	}
}
