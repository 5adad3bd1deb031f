/*
 * CSOPESYMO1 - Main process.
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

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"

	"github.com/Jawsshhh/CSOPESYMO1/internal/console"
	"github.com/Jawsshhh/CSOPESYMO1/internal/kconfig"
	"github.com/Jawsshhh/CSOPESYMO1/internal/paging"
	"github.com/Jawsshhh/CSOPESYMO1/internal/registry"
	"github.com/Jawsshhh/CSOPESYMO1/internal/scheduler"
	logger "github.com/Jawsshhh/CSOPESYMO1/util/logger"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "config.txt", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optLogDir := getopt.StringLong("logdir", 0, ".", "Directory for per-process and paging logs")
	optMetrics := getopt.StringLong("metrics-addr", 0, ":9370", "Prometheus /metrics listen address")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	debug := false
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, &debug))
	slog.SetDefault(Logger)

	Logger.Info("CSOPESYMO1 started")

	if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
		Logger.Error("configuration file not found", "path", *optConfig)
		os.Exit(1)
	}

	cfg, err := kconfig.Load(*optConfig)
	if err != nil {
		Logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pager, err := paging.New(paging.Options{
		TotalMemoryBytes: cfg.MaxOverallMem,
		FrameSizeBytes:   cfg.MemPerFrame,
		StorePath:        filepath.Join(*optLogDir, "backing-store.txt"),
		LogPath:          filepath.Join(*optLogDir, "paging-log.txt"),
	})
	if err != nil {
		Logger.Error("failed to start paging engine", "error", err)
		os.Exit(1)
	}
	defer pager.Close()

	reg := registry.New()
	sched := scheduler.New(cfg, reg, pager,
		scheduler.WithLogDir(*optLogDir),
		scheduler.WithMemorySnapshots(*optLogDir))
	sched.Start()

	metricsReg := prometheus.NewRegistry()
	for _, c := range pager.Metrics() {
		metricsReg.MustRegister(c)
	}
	for _, c := range sched.Metrics() {
		metricsReg.MustRegister(c)
	}
	metricsServer := &http.Server{
		Addr:    *optMetrics,
		Handler: promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Logger.Error("metrics server stopped", "error", err)
		}
	}()

	con := console.New(cfg, sched, reg, pager)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	consoleDone := make(chan struct{})
	go func() {
		con.Run()
		close(consoleDone)
	}()

	select {
	case <-sigChan:
		Logger.Info("received shutdown signal")
	case <-consoleDone:
		Logger.Info("console exited")
	}

	Logger.Info("shutting down scheduler")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	metricsServer.Shutdown(shutdownCtx)

	Logger.Info("CSOPESYMO1 stopped")
}
