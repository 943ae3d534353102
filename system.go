package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

type System struct {
	registry *Registry
	storage  Storage
	clock    Clock
}

type SysInfo struct {
	Arch     string
	Hostname string
	Platform string
	CPUCount int
	CPUFreq  float64
	RAM      float64
}

func HostStat() SysInfo {
	hostStat, _ := host.Info()
	cpuStat, _ := cpu.Info()
	vmStat, _ := mem.VirtualMemory()
	info := SysInfo{Arch: runtime.GOARCH, CPUCount: len(cpuStat)}
	if hostStat != nil {
		info.Hostname = hostStat.Hostname
		info.Platform = hostStat.Platform
	}
	if len(cpuStat) > 0 {
		totalFreq := 0.0
		for _, cpu := range cpuStat {
			totalFreq += cpu.Mhz
		}
		info.CPUFreq = totalFreq / float64(len(cpuStat)) * 1000
	}
	if vmStat != nil {
		info.RAM = float64(vmStat.Total) / 1024 / 1024 / 1024
	}
	return info
}

// Run resolves the configured functions, runs the benchmark and reports the
// summary to out. start must be taken as early in the process as possible.
func (s *System) Run(ctx context.Context, config Config, start time.Time, out io.Writer) error {
	logger, err := NewLogger(config.LogLevel, config.Quiet)
	if err != nil {
		return fmt.Errorf("invalid log level %v: %w", config.LogLevel, err)
	}
	functions, err := s.registry.Resolve(config.Namespace, config.Functions, logger)
	if err != nil {
		return fmt.Errorf("failed to resolve functions: %w", err)
	}
	logger.Infof("start benchmark %v/%v on %v", config.Namespace, config.Functions, config.Input)

	benchmark := Benchmark{
		Input:       config.Input,
		Iterations:  config.Iterations,
		Warmup:      config.Warmup,
		ClearCaches: config.ClearCaches,
		Functions:   functions,
		Clock:       s.clock,
		Logger:      logger,
	}
	var timings Timings
	if config.Workers > 0 {
		parallel := ParallelBenchmark{Benchmark: benchmark, Workers: config.Workers}
		timings, err = parallel.Run(ctx, start)
	} else {
		timings, err = benchmark.Run(start)
	}
	if err != nil {
		return fmt.Errorf("failed to run benchmark: %w", err)
	}

	summary := timings.Summary()
	if err := summary.Report(out); err != nil {
		return fmt.Errorf("failed to report summary: %w", err)
	}

	if config.Results == "" {
		return nil
	}
	run := &RunRecord{
		Id:       uuid.NewString(),
		Time:     time.Now(),
		Config:   config,
		Host:     HostStat(),
		Summary:  summary,
		Services: timings.ServiceTimes(),
	}
	logger.Infof("host stat: %+v", run.Host)
	if err := s.saveRun(ctx, config.Results, run); err != nil {
		return fmt.Errorf("failed to save run %v to %v: %w", run.Id, config.Results, err)
	}
	logger.Infof("saved run %v to %v", run.Id, config.Results)
	return nil
}

func (s *System) saveRun(ctx context.Context, name string, run *RunRecord) error {
	db, err := s.storage.ConnectDb(name)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := s.storage.InitResultsDb(db); err != nil {
		return err
	}
	return s.storage.SaveRun(ctx, db, run)
}
