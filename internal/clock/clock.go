// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package clock times the driver's phases (topology discovery, relation
// generation, the join itself) for the --verbose report, without the
// join core needing to know anything about wall-clock time.
package clock

import (
	"log/slog"
	"sync"
	"time"
)

// Phase is one named, timed span of driver work.
type Phase struct {
	Name     string
	Duration time.Duration
}

// Stopwatch accumulates a sequence of named phase durations. Time may be
// called concurrently, e.g. from sibling errgroup goroutines timing
// independent driver phases.
type Stopwatch struct {
	mu     sync.Mutex
	phases []Phase
}

// Time runs fn, records its duration under name, and returns fn's error.
func (s *Stopwatch) Time(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.mu.Lock()
	s.phases = append(s.phases, Phase{Name: name, Duration: time.Since(start)})
	s.mu.Unlock()
	return err
}

// Phases returns every recorded phase in the order Time's call completed.
func (s *Stopwatch) Phases() []Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Phase(nil), s.phases...)
}

// LogAll logs every recorded phase at info level, one line per phase,
// plus a final total line.
func (s *Stopwatch) LogAll(logger *slog.Logger) {
	var total time.Duration
	for _, p := range s.Phases() {
		logger.Info("phase complete", "phase", p.Name, "duration", p.Duration)
		total += p.Duration
	}
	logger.Info("all phases complete", "total_duration", total)
}
