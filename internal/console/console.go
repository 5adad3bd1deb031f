/*
 * CSOPESYMO1 - Demo console.
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

// Package console is a thin demonstration REPL over the scheduler's
// public surface. spec.md §1 puts the interactive console out of scope
// for the kernel - only its query/admission interface matters - so this
// package implements just enough of a command line to exercise
// add_process, scheduler-start/stop and the query surface end to end.
// It is not the full ANSI-drawing console the original project builds;
// grounded on command/reader/reader.go's liner wiring and
// command/parser/parser.go's minimum-abbreviation command table.
package console

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/peterh/liner"

	"github.com/Jawsshhh/CSOPESYMO1/internal/generator"
	"github.com/Jawsshhh/CSOPESYMO1/internal/kconfig"
	"github.com/Jawsshhh/CSOPESYMO1/internal/paging"
	"github.com/Jawsshhh/CSOPESYMO1/internal/registry"
	"github.com/Jawsshhh/CSOPESYMO1/internal/scheduler"
)

// Console holds everything a command needs to touch: the scheduler, the
// registry it shares with the scheduler, the pager for direct metrics
// queries, the loaded config, and the random-process generator
// scheduler-start/scheduler-stop toggle.
type Console struct {
	cfg   kconfig.Config
	sched *scheduler.Scheduler
	reg   *registry.Registry
	pager *paging.Engine
	gen   *generator.Generator

	initialized bool
	current     string // name of the screen -r'd process, "" if none
}

// New builds a Console bound to an already-constructed scheduler/
// registry/pager trio; main.go owns their lifecycle.
func New(cfg kconfig.Config, sched *scheduler.Scheduler, reg *registry.Registry, pager *paging.Engine) *Console {
	c := &Console{cfg: cfg, sched: sched, reg: reg, pager: pager}
	c.gen = generator.New(cfg, sched, reg)
	return c
}

// Run starts the liner-backed prompt loop and blocks until the user
// issues exit or aborts the prompt (Ctrl-D/Ctrl-C).
func (c *Console) Run() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		return CompleteCmd(partial)
	})

	for {
		input, err := line.Prompt("CSOPESYMO1> ")
		if err == nil {
			line.AppendHistory(input)
			quit, cmdErr := ProcessCommand(input, c)
			if cmdErr != nil {
				fmt.Println("Error: " + cmdErr.Error())
			}
			if quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			return
		}
		slog.Error("console: error reading line", "error", err)
		return
	}
}
