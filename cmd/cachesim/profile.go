package main

import (
	"fmt"
	"os"
	"runtime/pprof"
)

// profiler writes CPU and heap profiles around a replay.
type profiler struct {
	cpuPath string
	memPath string

	cpuFile *os.File
}

// start begins CPU profiling if requested.
func (p *profiler) start() error {
	if p.cpuPath == "" {
		return nil
	}

	f, err := os.Create(p.cpuPath)
	if err != nil {
		return fmt.Errorf("failed to create CPU profile: %w", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to start CPU profile: %w", err)
	}

	p.cpuFile = f
	return nil
}

// stop ends CPU profiling and writes the heap profile if requested.
func (p *profiler) stop() error {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := p.cpuFile.Close(); err != nil {
			return fmt.Errorf("failed to close CPU profile: %w", err)
		}
		p.cpuFile = nil
	}

	if p.memPath == "" {
		return nil
	}

	f, err := os.Create(p.memPath)
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}

	return nil
}
