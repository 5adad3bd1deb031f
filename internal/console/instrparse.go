/*
 * CSOPESYMO1 - screen -c literal-instruction parsing.
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
	"fmt"
	"strconv"
	"strings"

	"github.com/Jawsshhh/CSOPESYMO1/internal/instr"
)

// parseProgram splits raw on ';' and parses each piece into an
// instr.Instruction. Per SPEC_FULL.md §5's resolution of the screen -c
// Open Question, this is deliberately minimal - it is test-harness
// convenience for the demo console, not a production parser the kernel
// depends on.
func parseProgram(raw string) ([]instr.Instruction, error) {
	var out []instr.Instruction
	for _, piece := range strings.Split(raw, ";") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		in, err := parseInstruction(piece)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func parseInstruction(line string) (instr.Instruction, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return instr.Instruction{}, fmt.Errorf("empty instruction")
	}
	op := strings.ToUpper(fields[0])
	args := fields[1:]

	switch op {
	case "PRINT":
		if len(args) != 1 {
			return instr.Instruction{}, fmt.Errorf("PRINT wants 1 argument, got %d", len(args))
		}
		return instr.Instruction{Kind: instr.Print, Message: args[0]}, nil
	case "DECLARE":
		if len(args) != 2 {
			return instr.Instruction{}, fmt.Errorf("DECLARE wants 2 arguments, got %d", len(args))
		}
		value, err := strconv.ParseUint(args[1], 10, 16)
		if err != nil {
			return instr.Instruction{}, fmt.Errorf("DECLARE: invalid value %q", args[1])
		}
		return instr.Instruction{Kind: instr.Declare, Name: args[0], Value: uint16(value)}, nil
	case "ADD", "SUBTRACT":
		if len(args) != 3 {
			return instr.Instruction{}, fmt.Errorf("%s wants 3 arguments, got %d", op, len(args))
		}
		kind := instr.Add
		if op == "SUBTRACT" {
			kind = instr.Subtract
		}
		return instr.Instruction{Kind: kind, Dest: instr.Operand(args[0]), A: instr.Operand(args[1]), B: instr.Operand(args[2])}, nil
	case "SLEEP":
		if len(args) != 1 {
			return instr.Instruction{}, fmt.Errorf("SLEEP wants 1 argument, got %d", len(args))
		}
		ticks, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil {
			return instr.Instruction{}, fmt.Errorf("SLEEP: invalid tick count %q", args[0])
		}
		return instr.Instruction{Kind: instr.Sleep, Ticks: uint8(ticks)}, nil
	case "READ":
		if len(args) != 2 {
			return instr.Instruction{}, fmt.Errorf("READ wants 2 arguments, got %d", len(args))
		}
		addr, err := instr.ParseHexAddr(args[1])
		if err != nil {
			return instr.Instruction{}, err
		}
		return instr.Instruction{Kind: instr.Read, Name: args[0], Addr: addr}, nil
	case "WRITE":
		if len(args) != 2 {
			return instr.Instruction{}, fmt.Errorf("WRITE wants 2 arguments, got %d", len(args))
		}
		addr, err := instr.ParseHexAddr(args[0])
		if err != nil {
			return instr.Instruction{}, err
		}
		return instr.Instruction{Kind: instr.Write, Addr: addr, Src: instr.Operand(args[1])}, nil
	default:
		return instr.Instruction{}, fmt.Errorf("unknown instruction %q", op)
	}
}
