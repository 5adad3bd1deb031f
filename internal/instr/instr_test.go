/*
 * CSOPESYMO1 - Instruction set test cases.
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

package instr

import "testing"

// fakeMachine is a minimal Machine for exercising instruction semantics
// in isolation, without internal/process.
type fakeMachine struct {
	symbols    map[string]uint16
	full       bool
	memory     map[uint32]uint16
	memLimit   uint32
	sleepTicks uint8
	violation  *uint32
	logs       []string
}

func newFakeMachine(memLimit uint32) *fakeMachine {
	return &fakeMachine{
		symbols:  make(map[string]uint16),
		memory:   make(map[uint32]uint16),
		memLimit: memLimit,
	}
}

func (f *fakeMachine) GetSymbol(name string) (uint16, bool) {
	v, ok := f.symbols[name]
	return v, ok
}

func (f *fakeMachine) DeclareSymbol(name string, value uint16) bool {
	if _, ok := f.symbols[name]; !ok && f.full {
		return false
	}
	f.symbols[name] = value
	return true
}

func (f *fakeMachine) SetSymbol(name string, value uint16) {
	f.symbols[name] = value
}

func (f *fakeMachine) ReadByteAddr(addr uint32) (uint16, bool) {
	if addr >= f.memLimit {
		return 0, false
	}
	return f.memory[addr], true
}

func (f *fakeMachine) WriteByteAddr(addr uint32, value uint16) bool {
	if addr >= f.memLimit {
		return false
	}
	f.memory[addr] = value
	return true
}

func (f *fakeMachine) SetSleep(n uint8) { f.sleepTicks = n }

func (f *fakeMachine) RaiseViolation(addr uint32) { f.violation = &addr }

func (f *fakeMachine) Log(core int, detail string) { f.logs = append(f.logs, detail) }

func TestPrintLiteral(t *testing.T) {
	m := newFakeMachine(64)
	Instruction{Kind: Print, Message: "hello"}.Execute(m, 0)
	if len(m.logs) != 1 || m.logs[0] != "hello" {
		t.Errorf("logs = %v, want [hello]", m.logs)
	}
}

func TestPrintSymbol(t *testing.T) {
	m := newFakeMachine(64)
	m.symbols["x"] = 8
	Instruction{Kind: Print, Message: "x"}.Execute(m, 0)
	if m.logs[0] != "Value from x: 8" {
		t.Errorf("logs[0] = %q, want %q", m.logs[0], "Value from x: 8")
	}
}

func TestDeclareOverflowLogsIgnored(t *testing.T) {
	m := newFakeMachine(64)
	m.full = true
	Instruction{Kind: Declare, Name: "z", Value: 1}.Execute(m, 0)
	if m.logs[0] != "IGNORED - Symbol table full (32 variables max)" {
		t.Errorf("logs[0] = %q", m.logs[0])
	}
	if _, ok := m.symbols["z"]; ok {
		t.Errorf("symbol should not have been declared")
	}
}

func TestAddAutoDeclaresUnknownOperands(t *testing.T) {
	m := newFakeMachine(64)
	Instruction{Kind: Add, Dest: "x", A: "x", B: "3"}.Execute(m, 0)
	if m.symbols["x"] != 3 {
		t.Errorf("x = %d, want 3 (unknown operand auto-declared as 0)", m.symbols["x"])
	}
}

func TestAddWraps16Bit(t *testing.T) {
	m := newFakeMachine(64)
	m.symbols["x"] = 65535
	Instruction{Kind: Add, Dest: "x", A: "x", B: "1"}.Execute(m, 0)
	if m.symbols["x"] != 0 {
		t.Errorf("x = %d, want 0 (wrap-around)", m.symbols["x"])
	}
}

func TestSubtractWraps16Bit(t *testing.T) {
	m := newFakeMachine(64)
	m.symbols["x"] = 0
	Instruction{Kind: Subtract, Dest: "x", A: "x", B: "1"}.Execute(m, 0)
	if m.symbols["x"] != 65535 {
		t.Errorf("x = %d, want 65535 (wrap-around)", m.symbols["x"])
	}
}

func TestSleepSetsTicks(t *testing.T) {
	m := newFakeMachine(64)
	Instruction{Kind: Sleep, Ticks: 3}.Execute(m, 0)
	if m.sleepTicks != 3 {
		t.Errorf("sleepTicks = %d, want 3", m.sleepTicks)
	}
}

func TestReadDefaultsToZero(t *testing.T) {
	m := newFakeMachine(64)
	Instruction{Kind: Read, Name: "v", Addr: 4}.Execute(m, 0)
	if m.symbols["v"] != 0 {
		t.Errorf("v = %d, want 0 (unwritten default)", m.symbols["v"])
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	m := newFakeMachine(64)
	Instruction{Kind: Write, Addr: 4, Src: "42"}.Execute(m, 0)
	Instruction{Kind: Read, Name: "v", Addr: 4}.Execute(m, 0)
	if m.symbols["v"] != 42 {
		t.Errorf("v = %d, want 42", m.symbols["v"])
	}
}

func TestReadOutOfRangeRaisesViolation(t *testing.T) {
	m := newFakeMachine(64)
	Instruction{Kind: Read, Name: "v", Addr: 0x80}.Execute(m, 0)
	if m.violation == nil || *m.violation != 0x80 {
		t.Fatalf("expected violation at 0x80, got %v", m.violation)
	}
	if m.logs[0] != "0x80 invalid" {
		t.Errorf("logs[0] = %q, want %q", m.logs[0], "0x80 invalid")
	}
}

func TestWriteOutOfRangeRaisesViolation(t *testing.T) {
	m := newFakeMachine(64)
	Instruction{Kind: Write, Addr: 0x80, Src: "1"}.Execute(m, 0)
	if m.violation == nil || *m.violation != 0x80 {
		t.Fatalf("expected violation at 0x80, got %v", m.violation)
	}
}

func TestParseHexAddr(t *testing.T) {
	cases := []struct {
		in   string
		want uint32
	}{
		{"0x80", 0x80},
		{"80", 0x80},
		{"0X1F", 0x1F},
	}
	for _, c := range cases {
		got, err := ParseHexAddr(c.in)
		if err != nil {
			t.Errorf("ParseHexAddr(%q) error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseHexAddr(%q) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

func TestParseHexAddrRejectsGarbage(t *testing.T) {
	if _, err := ParseHexAddr("zz"); err == nil {
		t.Errorf("expected error for invalid hex string")
	}
}
