/*
 * CSOPESYMO1 - Configuration loader.
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

// Package kconfig loads the scheduler's whitespace-delimited key-value
// configuration file, grounded on config/configparser's line-scanner
// approach (bufio.Scanner, one logical line at a time, '#' comments)
// but simplified to a flat key-value grammar: this format carries no
// device-model registry, so none of that machinery is needed.
package kconfig

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Policy selects the CPU scheduling algorithm.
type Policy string

const (
	FCFS Policy = "fcfs"
	RR   Policy = "rr"
)

// Config is the immutable result of loading a configuration file.
// Every field corresponds to one key in spec.md §6's table.
type Config struct {
	NumCPU           int
	Scheduler        Policy
	QuantumCycles    int
	BatchProcessFreq int
	MinIns           int
	MaxIns           int
	DelayPerExec     int
	MaxOverallMem    uint64
	MemPerFrame      uint64
	MinMemPerProc    uint64
	MaxMemPerProc    uint64
}

// Default returns a Config with conservative defaults, used when a
// requested key is absent from the file (unknown/missing keys do not
// abort loading per spec.md §6: "any order; unknown keys ignored").
func Default() Config {
	return Config{
		NumCPU:           1,
		Scheduler:        FCFS,
		QuantumCycles:    4,
		BatchProcessFreq: 1000,
		MinIns:           1,
		MaxIns:           50,
		DelayPerExec:     0,
		MaxOverallMem:    16384,
		MemPerFrame:      256,
		MinMemPerProc:    64,
		MaxMemPerProc:    65536,
	}
}

// Load reads a configuration file at path and returns a Config seeded
// from Default() with every recognized key overridden.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("kconfig: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads key-value pairs from r, one "key value" per line.
// Leading/trailing whitespace is trimmed; blank lines and lines whose
// first non-whitespace rune is '#' are skipped.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return Config{}, fmt.Errorf("kconfig: line %d: expected \"key value\", got %q", lineNo, line)
		}
		key, value := strings.ToLower(fields[0]), fields[1]
		if err := applyKey(&cfg, key, value); err != nil {
			return Config{}, fmt.Errorf("kconfig: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, fmt.Errorf("kconfig: scan: %w", err)
	}
	return cfg, nil
}

func applyKey(cfg *Config, key, value string) error {
	switch key {
	case "num-cpu":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 128 {
			return fmt.Errorf("num-cpu: %q out of range [1,128]", value)
		}
		cfg.NumCPU = n
	case "scheduler":
		switch Policy(strings.ToLower(value)) {
		case FCFS, RR:
			cfg.Scheduler = Policy(strings.ToLower(value))
		default:
			return fmt.Errorf("scheduler: %q must be fcfs or rr", value)
		}
	case "quantum-cycles":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("quantum-cycles: %q must be >= 1", value)
		}
		cfg.QuantumCycles = n
	case "batch-process-freq":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("batch-process-freq: %q must be >= 1", value)
		}
		cfg.BatchProcessFreq = n
	case "min-ins":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 50 {
			return fmt.Errorf("min-ins: %q out of range [1,50]", value)
		}
		cfg.MinIns = n
	case "max-ins":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 50 {
			return fmt.Errorf("max-ins: %q out of range [1,50]", value)
		}
		cfg.MaxIns = n
	case "delay-per-exec":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("delay-per-exec: %q must be >= 0", value)
		}
		cfg.DelayPerExec = n
	case "max-overall-mem":
		n, err := parsePowerOfTwo(value)
		if err != nil {
			return fmt.Errorf("max-overall-mem: %w", err)
		}
		cfg.MaxOverallMem = n
	case "mem-per-frame":
		n, err := parsePowerOfTwo(value)
		if err != nil {
			return fmt.Errorf("mem-per-frame: %w", err)
		}
		cfg.MemPerFrame = n
	case "min-mem-per-proc":
		n, err := parsePowerOfTwo(value)
		if err != nil {
			return fmt.Errorf("min-mem-per-proc: %w", err)
		}
		cfg.MinMemPerProc = n
	case "max-mem-per-proc":
		n, err := parsePowerOfTwo(value)
		if err != nil {
			return fmt.Errorf("max-mem-per-proc: %w", err)
		}
		cfg.MaxMemPerProc = n
	default:
		// Unknown keys are ignored per spec.md §6.
	}
	return nil
}

func parsePowerOfTwo(value string) (uint64, error) {
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", value)
	}
	if n == 0 || n&(n-1) != 0 {
		return 0, fmt.Errorf("%q is not a power of two", value)
	}
	return n, nil
}
