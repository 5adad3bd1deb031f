/*
 * CSOPESYMO1 - Console command tests.
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
	"path/filepath"
	"testing"
	"time"

	"github.com/Jawsshhh/CSOPESYMO1/internal/kconfig"
	"github.com/Jawsshhh/CSOPESYMO1/internal/paging"
	"github.com/Jawsshhh/CSOPESYMO1/internal/registry"
	"github.com/Jawsshhh/CSOPESYMO1/internal/scheduler"
)

func newTestConsole(t *testing.T) *Console {
	t.Helper()
	cfg := kconfig.Default()
	cfg.MaxOverallMem = 4096
	cfg.MemPerFrame = 256
	dir := t.TempDir()
	pager, err := paging.New(paging.Options{
		TotalMemoryBytes: cfg.MaxOverallMem,
		FrameSizeBytes:   cfg.MemPerFrame,
		StorePath:        filepath.Join(dir, "backing-store.txt"),
		LogPath:          filepath.Join(dir, "paging-log.txt"),
	})
	if err != nil {
		t.Fatalf("paging.New: %v", err)
	}
	t.Cleanup(func() { pager.Close() })
	reg := registry.New()
	sched := scheduler.New(cfg, reg, pager, scheduler.WithLogDir(dir))
	sched.Start()
	t.Cleanup(sched.Stop)
	return New(cfg, sched, reg, pager)
}

func TestCommandsRequireInitializeFirst(t *testing.T) {
	c := newTestConsole(t)
	_, err := ProcessCommand("screen -ls", c)
	if err == nil {
		t.Fatal("expected error before initialize")
	}
	if _, err := ProcessCommand("initialize", c); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := ProcessCommand("screen -ls", c); err != nil {
		t.Fatalf("screen -ls after initialize: %v", err)
	}
}

func TestScreenCCreatesAndRunsProcess(t *testing.T) {
	c := newTestConsole(t)
	if _, err := ProcessCommand("initialize", c); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := ProcessCommand(`screen -c job1 128 "DECLARE x 5;ADD x x 3;PRINT x"`, c); err != nil {
		t.Fatalf("screen -c: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	var found bool
	for time.Now().Before(deadline) {
		if p, ok := c.reg.GetByName("job1"); ok && p.Finished() {
			found = true
			logs := p.Logs()
			if len(logs) != 3 || logs[2].Detail != "Value from x: 8" {
				t.Fatalf("logs = %v", logs)
			}
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !found {
		t.Fatal("job1 did not finish in time")
	}
}

func TestScreenRUnknownProcessErrors(t *testing.T) {
	c := newTestConsole(t)
	ProcessCommand("initialize", c)
	if _, err := ProcessCommand("screen -r nosuch", c); err == nil {
		t.Fatal("expected error for unknown process")
	}
}

func TestUnknownCommandErrors(t *testing.T) {
	c := newTestConsole(t)
	ProcessCommand("initialize", c)
	if _, err := ProcessCommand("frobnicate", c); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestMinimumAbbreviationMatches(t *testing.T) {
	c := newTestConsole(t)
	ProcessCommand("initialize", c)
	// "vms" meets vmstat's min abbreviation length (3) and is unambiguous.
	if _, err := ProcessCommand("vms", c); err != nil {
		t.Fatalf("vms: %v", err)
	}
}

func TestExitReturnsQuitTrue(t *testing.T) {
	c := newTestConsole(t)
	ProcessCommand("initialize", c)
	quit, err := ProcessCommand("exit", c)
	if err != nil || !quit {
		t.Fatalf("exit = (%v, %v), want (true, nil)", quit, err)
	}
}

func TestParseProgramRejectsUnknownInstruction(t *testing.T) {
	if _, err := parseProgram("FROB 1 2"); err == nil {
		t.Fatal("expected error for unknown instruction")
	}
}

func TestParseProgramSplitsOnSemicolon(t *testing.T) {
	prog, err := parseProgram("DECLARE x 1; SLEEP 2 ; PRINT x")
	if err != nil {
		t.Fatalf("parseProgram: %v", err)
	}
	if len(prog) != 3 {
		t.Fatalf("len(prog) = %d, want 3", len(prog))
	}
}
