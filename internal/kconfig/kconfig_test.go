/*
 * CSOPESYMO1 - Configuration loader test cases.
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

package kconfig

import (
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	input := `
num-cpu 4
scheduler rr
quantum-cycles 8
batch-process-freq 500
min-ins 2
max-ins 10
delay-per-exec 5
max-overall-mem 1024
mem-per-frame 128
min-mem-per-proc 64
max-mem-per-proc 512
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Config{
		NumCPU:           4,
		Scheduler:        RR,
		QuantumCycles:    8,
		BatchProcessFreq: 500,
		MinIns:           2,
		MaxIns:           10,
		DelayPerExec:     5,
		MaxOverallMem:    1024,
		MemPerFrame:      128,
		MinMemPerProc:    64,
		MaxMemPerProc:    512,
	}
	if cfg != want {
		t.Errorf("Parse() = %+v, want %+v", cfg, want)
	}
}

func TestParseIgnoresUnknownKeysAndComments(t *testing.T) {
	input := `
# this is a comment
num-cpu 2
totally-unknown-key 99
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.NumCPU != 2 {
		t.Errorf("NumCPU = %d, want 2", cfg.NumCPU)
	}
}

func TestParseMissingKeysKeepDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader("scheduler fcfs\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def := Default()
	if cfg.NumCPU != def.NumCPU || cfg.MaxOverallMem != def.MaxOverallMem {
		t.Errorf("Parse() with partial input = %+v, want defaults for unset keys", cfg)
	}
}

func TestParseRejectsOutOfRangeNumCPU(t *testing.T) {
	if _, err := Parse(strings.NewReader("num-cpu 0\n")); err == nil {
		t.Errorf("expected error for num-cpu 0")
	}
	if _, err := Parse(strings.NewReader("num-cpu 200\n")); err == nil {
		t.Errorf("expected error for num-cpu 200")
	}
}

func TestParseRejectsInvalidScheduler(t *testing.T) {
	if _, err := Parse(strings.NewReader("scheduler round-robin\n")); err == nil {
		t.Errorf("expected error for unrecognized scheduler value")
	}
}

func TestParseRejectsNonPowerOfTwoMemory(t *testing.T) {
	if _, err := Parse(strings.NewReader("mem-per-frame 100\n")); err == nil {
		t.Errorf("expected error for non-power-of-two mem-per-frame")
	}
}

func TestParseRejectsMalformedLine(t *testing.T) {
	if _, err := Parse(strings.NewReader("num-cpu\n")); err == nil {
		t.Errorf("expected error for a line missing its value")
	}
}
