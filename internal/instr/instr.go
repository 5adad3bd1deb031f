/*
 * CSOPESYMO1 - Instruction set.
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

// Package instr implements the tiny PRINT/DECLARE/ADD/SUBTRACT/SLEEP/
// READ/WRITE instruction set each core executes one step at a time.
//
// The source this project generalizes from used a virtual-dispatch class
// hierarchy (Instruction -> PrintInstruction, DeclareInstruction, ...).
// Go has no such hierarchy, so every kind is one Instruction struct
// tagged by Kind, with a single Execute method that dispatches on the
// tag, and a process is represented to instructions
// only through the Machine interface below - the process package
// implements it without this package ever importing process.
package instr

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags which instruction variant a value holds.
type Kind int

const (
	Print Kind = iota
	Declare
	Add
	Subtract
	Sleep
	Read
	Write
)

func (k Kind) String() string {
	switch k {
	case Print:
		return "PRINT"
	case Declare:
		return "DECLARE"
	case Add:
		return "ADD"
	case Subtract:
		return "SUBTRACT"
	case Sleep:
		return "SLEEP"
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// Machine is the surface an instruction needs from the process running
// it. process.Process implements this; nothing in this package knows
// about process.Process itself.
type Machine interface {
	// GetSymbol returns a declared symbol's value, or (0, false) if
	// name is not a known symbol. It does not parse literals.
	GetSymbol(name string) (uint16, bool)
	// DeclareSymbol inserts name=value if room allows; it reports
	// whether the table had room (false means the spec.md §7 "symbol
	// table full" condition).
	DeclareSymbol(name string, value uint16) bool
	// SetSymbol updates or auto-declares name=value.
	SetSymbol(name string, value uint16)
	// ReadByteAddr reads the word at addr from the process's memory
	// map, defaulting to 0 if never written. ok is false iff addr is
	// outside [0, memoryRequired).
	ReadByteAddr(addr uint32) (value uint16, ok bool)
	// WriteByteAddr writes value at addr. ok is false iff addr is
	// outside [0, memoryRequired).
	WriteByteAddr(addr uint32, value uint16) (ok bool)
	// SetSleep puts the process to sleep for n ticks.
	SetSleep(n uint8)
	// RaiseViolation marks the process finished with a memory
	// violation at addr.
	RaiseViolation(addr uint32)
	// Log appends one line to the process's log, in the
	// "(<timestamp>) Core:<id> "<detail>"" shape spec.md §4.1 requires.
	Log(core int, detail string)
}

// Operand is either a numeric literal or a symbol name; ADD, SUBTRACT
// and WRITE all accept either for their source operands.
type Operand string

// Resolve reads the operand's value: a literal if it parses as a
// base-10 uint16, otherwise a symbol lookup that auto-declares the
// symbol at 0 if it is not yet known. This is "a core rule, not an
// error" per spec.md §4.1.
func (o Operand) Resolve(m Machine) uint16 {
	if n, err := strconv.ParseUint(string(o), 10, 16); err == nil {
		return uint16(n)
	}
	if v, ok := m.GetSymbol(string(o)); ok {
		return v
	}
	m.SetSymbol(string(o), 0)
	return 0
}

// Instruction is one decoded step of a process's program.
type Instruction struct {
	Kind Kind

	// PRINT
	Message string // literal text, or a symbol name to render as "Value from <name>: <value>"

	// DECLARE
	Name  string
	Value uint16

	// ADD / SUBTRACT
	Dest Operand
	A    Operand
	B    Operand

	// SLEEP
	Ticks uint8

	// READ / WRITE
	Addr uint32 // already-parsed hex address
	Src  Operand
}

// Execute runs the instruction against m and appends its detail string
// to the process log through m.Log, tagged with core.
func (in Instruction) Execute(m Machine, core int) {
	detail := in.execute(m)
	m.Log(core, detail)
}

func (in Instruction) execute(m Machine) string {
	switch in.Kind {
	case Print:
		return in.execPrint(m)
	case Declare:
		return in.execDeclare(m)
	case Add:
		return in.execArith(m, true)
	case Subtract:
		return in.execArith(m, false)
	case Sleep:
		m.SetSleep(in.Ticks)
		return fmt.Sprintf("SLEEP %d", in.Ticks)
	case Read:
		return in.execRead(m)
	case Write:
		return in.execWrite(m)
	default:
		return "NOP"
	}
}

func (in Instruction) execPrint(m Machine) string {
	if v, ok := m.GetSymbol(in.Message); ok {
		msg := fmt.Sprintf("Value from %s: %d", in.Message, v)
		return msg
	}
	return in.Message
}

func (in Instruction) execDeclare(m Machine) string {
	if !m.DeclareSymbol(in.Name, in.Value) {
		return "IGNORED - Symbol table full (32 variables max)"
	}
	return fmt.Sprintf("DECLARE %s %d", in.Name, in.Value)
}

func (in Instruction) execArith(m Machine, add bool) string {
	a := in.A.Resolve(m)
	b := in.B.Resolve(m)
	var result uint16
	var op string
	if add {
		result = a + b // 16-bit unsigned wrap-around
		op = "ADD"
	} else {
		result = a - b
		op = "SUBTRACT"
	}
	m.SetSymbol(string(in.Dest), result)
	return fmt.Sprintf("%s %s %s %s -> %d", op, in.Dest, in.A, in.B, result)
}

func (in Instruction) execRead(m Machine) string {
	value, ok := m.ReadByteAddr(in.Addr)
	if !ok {
		m.RaiseViolation(in.Addr)
		return fmt.Sprintf("0x%X invalid", in.Addr)
	}
	m.SetSymbol(in.Name, value)
	return fmt.Sprintf("READ %s 0x%X -> %d", in.Name, in.Addr, value)
}

func (in Instruction) execWrite(m Machine) string {
	value := in.Src.Resolve(m)
	if !m.WriteByteAddr(in.Addr, value) {
		m.RaiseViolation(in.Addr)
		return fmt.Sprintf("0x%X invalid", in.Addr)
	}
	return fmt.Sprintf("WRITE 0x%X %d", in.Addr, value)
}

// ParseHexAddr parses a "0x.." or bare hex string as used by READ and
// WRITE's address operand.
func ParseHexAddr(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex address %q: %w", s, err)
	}
	return uint32(v), nil
}
