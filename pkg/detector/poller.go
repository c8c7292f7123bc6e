// Zaparoo Portwatch
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Portwatch.
//
// Zaparoo Portwatch is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Portwatch is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Portwatch.  If not, see <http://www.gnu.org/licenses/>.

package detector

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/portwatch/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = 200 * time.Millisecond

const listFailureLogInterval = time.Minute

// ErrAlreadyRunning is returned by Run when the poller loop is already active.
var ErrAlreadyRunning = errors.New("poller is already running")

// VolumeLister enumerates the mount points currently attached to the host.
// A nil slice with a nil error means "nothing to report" and the tick is
// skipped; a non-nil empty slice is a valid snapshot with no volumes.
type VolumeLister interface {
	ListVolumes(ctx context.Context) ([]string, error)
}

// Poller lists mounted volumes on a fixed cadence and notifies path
// listeners of every mount point that appeared or disappeared since the
// previous tick.
type Poller struct {
	clock     clockwork.Clock
	lister    VolumeLister
	logger    *zerolog.Logger
	listeners *registry[PathListener]
	wake      chan struct{}
	baseline  Snapshot
	interval  time.Duration
	// resets counts ResetRoots calls so a tick that raced with a reset does
	// not overwrite the empty baseline.
	resets  uint64
	// failures throttles the warning for a lister that keeps failing.
	failures rate.Sometimes
	mu       syncutil.Mutex
	running  atomic.Bool
}

// NewPoller creates a poller. A nil clock uses the real clock and a
// non-positive interval uses DefaultPollInterval.
func NewPoller(lister VolumeLister, clock clockwork.Clock, interval time.Duration) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := log.With().Str("component", "poller").Logger()
	return &Poller{
		clock:     clock,
		lister:    lister,
		logger:    &logger,
		listeners: newRegistry[PathListener]("path", &logger),
		wake:      make(chan struct{}, 1),
		interval:  interval,
		failures:  rate.Sometimes{First: 1, Interval: listFailureLogInterval},
	}
}

// SetLogger replaces the poller's logger.
func (p *Poller) SetLogger(logger zerolog.Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	*p.logger = logger
}

// Interval returns the current polling interval.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// SetInterval changes the polling interval, effective from the next sleep.
// Non-positive values are ignored.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interval = d
}

// ResetRoots empties the baseline so the next tick reports every mounted
// volume as newly connected. It emits nothing itself.
func (p *Poller) ResetRoots() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.baseline = nil
	p.resets++
}

// Wake cuts the current sleep short so the next tick runs immediately.
func (p *Poller) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// AddPathListener returns false if l is already registered.
func (p *Poller) AddPathListener(l PathListener) bool {
	return p.listeners.add(l)
}

// RemovePathListener returns false if l was not registered.
func (p *Poller) RemovePathListener(l PathListener) bool {
	return p.listeners.remove(l)
}

// ContainsPathListener reports whether l is registered.
func (p *Poller) ContainsPathListener(l PathListener) bool {
	return p.listeners.contains(l)
}

// Running reports whether Run is active.
func (p *Poller) Running() bool {
	return p.running.Load()
}

// Run polls until ctx is canceled, returning nil on a clean shutdown. Only
// one Run may be active per poller.
func (p *Poller) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.running.Store(false)

	p.logger.Debug().Dur("interval", p.Interval()).Msg("poller started")
	for {
		timer := p.clock.NewTimer(p.Interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Debug().Msg("poller stopped")
			return nil
		case <-p.wake:
			timer.Stop()
		case <-timer.Chan():
		}

		if ctx.Err() != nil {
			p.logger.Debug().Msg("poller stopped")
			return nil
		}
		p.poll(ctx)
	}
}

// poll runs a single tick.
func (p *Poller) poll(ctx context.Context) {
	if p.listeners.len() == 0 {
		p.ResetRoots()
		return
	}

	p.mu.Lock()
	prev := p.baseline
	resets := p.resets
	p.mu.Unlock()

	paths, err := p.lister.ListVolumes(ctx)
	if err != nil {
		p.failures.Do(func() {
			p.logger.Warn().Err(err).Msg("volume listing failed")
		})
		p.logger.Debug().Err(err).Msg("volume listing failed, skipping tick")
		return
	}
	if paths == nil {
		return
	}

	next := NewSnapshot(paths)
	if !next.Equal(prev) {
		for _, ev := range DiffEvents(prev, next) {
			p.logger.Debug().
				Str("path", string(ev.Path)).
				Stringer("kind", ev.Kind).
				Msg("mount point changed")
			p.listeners.notify(func(l PathListener) {
				l.OnPathEvent(ctx, ev)
			})
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resets == resets {
		p.baseline = next
	}
}
