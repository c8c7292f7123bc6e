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
	"time"

	"github.com/ZaparooProject/portwatch/pkg/helpers/syncutil"
	"github.com/ZaparooProject/portwatch/pkg/portresolver"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultMaxAttempts is the number of resolution attempts per attachment:
// one initial try plus five retries.
const DefaultMaxAttempts = 6

var (
	// ErrNotStarted is returned when an operation needs a started detector.
	ErrNotStarted = errors.New("detector is not started")
	// ErrNoListeners is returned when a replay would reach nobody.
	ErrNoListeners = errors.New("no lifecycle listeners registered")
)

// PortResolver resolves the physical port a mount point is attached to.
// See portresolver.Resolver for the meaning of its results.
type PortResolver interface {
	Resolve(ctx context.Context, mountPath string) (string, error)
	Diagnose(ctx context.Context) []portresolver.Probe
}

// Options tunes a Detector. Zero values select the defaults.
type Options struct {
	Clock        clockwork.Clock
	Logger       *zerolog.Logger
	NewID        func() string
	PollInterval time.Duration
	MaxAttempts  int
}

// Detector turns mount point changes into device lifecycle events, resolving
// the port of each new attachment with bounded retries.
type Detector struct {
	poller      *Poller
	resolver    PortResolver
	logger      zerolog.Logger
	lifecycle   *registry[LifecycleListener]
	phases      *registry[PhaseListener]
	subscriber  PathListener
	newID       func() string
	maxAttempts int
	mu          syncutil.Mutex
}

// New creates a detector that owns a poller over lister. The poller loop does
// not run until Run is called, and no events are produced until Start.
func New(resolver PortResolver, lister VolumeLister, opts Options) *Detector {
	logger := log.With().Str("component", "detector").Logger()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "detector").Logger()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	poller := NewPoller(lister, opts.Clock, opts.PollInterval)
	if opts.Logger != nil {
		poller.SetLogger(opts.Logger.With().Str("component", "poller").Logger())
	}

	d := &Detector{
		poller:      poller,
		resolver:    resolver,
		logger:      logger,
		lifecycle:   newRegistry[LifecycleListener]("lifecycle", &logger),
		phases:      newRegistry[PhaseListener]("phase", &logger),
		newID:       opts.NewID,
		maxAttempts: opts.MaxAttempts,
	}
	d.subscriber = PathListenerFunc(d.onPathEvent)
	return d
}

// Run drives the poller until ctx is canceled. It blocks; callers usually run
// it on its own goroutine. Returns ErrAlreadyRunning if called twice
// concurrently.
func (d *Detector) Run(ctx context.Context) error {
	return d.poller.Run(ctx)
}

// Start subscribes the detector to the poller and schedules a replay of all
// currently mounted volumes. Calling Start on a started detector is a no-op.
func (d *Detector) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.poller.ContainsPathListener(d.subscriber) {
		return
	}
	d.logger.Debug().Msg("starting drive detector")
	d.poller.AddPathListener(d.subscriber)
	d.poller.ResetRoots()
}

// Stop unsubscribes from the poller. Registered listeners are kept.
func (d *Detector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.logger.Debug().Msg("stopping drive detector")
	d.poller.RemovePathListener(d.subscriber)
}

// IsStarted reports whether the detector is subscribed to the poller.
func (d *Detector) IsStarted() bool {
	return d.poller.ContainsPathListener(d.subscriber)
}

// ForceReplay makes the next tick report every mounted volume as newly
// connected. It returns false if the detector is not started or nobody is
// listening for lifecycle events.
func (d *Detector) ForceReplay() bool {
	if err := d.forceReplay(); err != nil {
		d.logger.Debug().Err(err).Msg("replay skipped")
		return false
	}
	return true
}

func (d *Detector) forceReplay() error {
	if !d.IsStarted() {
		return ErrNotStarted
	}
	if d.lifecycle.len() == 0 {
		return ErrNoListeners
	}
	d.logger.Debug().Msg("forcing events for all connected devices")
	d.poller.ResetRoots()
	return nil
}

// PollingInterval returns the current polling interval.
func (d *Detector) PollingInterval() time.Duration {
	return d.poller.Interval()
}

// SetPollingInterval changes how often mounted volumes are listed.
func (d *Detector) SetPollingInterval(interval time.Duration) {
	d.poller.SetInterval(interval)
}

// Wake runs the next tick immediately.
func (d *Detector) Wake() {
	d.poller.Wake()
}

// RegisterLifecycleListener returns false if l is already registered.
func (d *Detector) RegisterLifecycleListener(l LifecycleListener) bool {
	return d.lifecycle.add(l)
}

// UnregisterLifecycleListener returns false if l was not registered.
func (d *Detector) UnregisterLifecycleListener(l LifecycleListener) bool {
	return d.lifecycle.remove(l)
}

// HasLifecycleListener reports whether l is registered.
func (d *Detector) HasLifecycleListener(l LifecycleListener) bool {
	return d.lifecycle.contains(l)
}

// LifecycleListeners returns a copy of the current lifecycle registrations.
func (d *Detector) LifecycleListeners() []LifecycleListener {
	snap := d.lifecycle.snapshot()
	out := make([]LifecycleListener, len(snap))
	copy(out, snap)
	return out
}

// RegisterPhaseListener returns false if l is already registered.
func (d *Detector) RegisterPhaseListener(l PhaseListener) bool {
	return d.phases.add(l)
}

// UnregisterPhaseListener returns false if l was not registered.
func (d *Detector) UnregisterPhaseListener(l PhaseListener) bool {
	return d.phases.remove(l)
}

// RunDiagnostic runs every probe command of the platform resolver and logs
// the raw output. It blocks until all probes have finished and is not part of
// the detection path.
func (d *Detector) RunDiagnostic(ctx context.Context) []portresolver.Probe {
	probes := d.resolver.Diagnose(ctx)
	for _, probe := range probes {
		var ev *zerolog.Event
		if probe.Err != nil {
			ev = d.logger.Warn().Err(probe.Err)
		} else {
			ev = d.logger.Info()
		}
		ev.Str("probe", probe.Name).Msg("diagnostic: " + probe.Output)
	}
	return probes
}

func (d *Detector) onPathEvent(ctx context.Context, ev PathEvent) {
	switch ev.Kind {
	case PathConnected:
		d.handleConnected(ctx, ev.Path)
	case PathDisconnected:
		d.publish(LifecycleEvent{Kind: EventRemoved, Path: ev.Path})
	}
}

func (d *Detector) handleConnected(ctx context.Context, path MountPoint) {
	id := d.newID()
	logger := d.logger.With().
		Str("path", string(path)).
		Str("attachment_id", id).
		Logger()

	d.firePhase(PhaseEvent{Phase: PhaseNewDeviceFound, Path: path})
	d.publish(LifecycleEvent{Kind: EventNewDevice, Path: path, AttachmentID: id})

	port, found := d.resolvePort(ctx, &logger, path)
	if found && port != "" {
		logger.Info().Str("port", port).Msg("device port resolved")
		d.publish(LifecycleEvent{Kind: EventConnected, Path: path, Port: port, AttachmentID: id})
	}

	d.firePhase(PhaseEvent{Phase: PhaseNewDeviceRecognized, Path: path})
}

// resolvePort makes up to maxAttempts resolution attempts. found is false if
// every attempt failed or a terminal error ended the sequence early.
func (d *Detector) resolvePort(
	ctx context.Context,
	logger *zerolog.Logger,
	path MountPoint,
) (port string, found bool) {
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if attempt > 1 {
			logger.Debug().Int("attempt", attempt).Msg("retrying port resolution")
		}

		resolved, err := d.resolver.Resolve(ctx, string(path))
		if err == nil {
			if resolved == "" {
				logger.Info().Msg("device recognized without a locatable port")
			}
			return resolved, true
		}

		if portresolver.IsTerminal(err) {
			logger.Error().Err(err).Int("attempt", attempt).Msg("port resolution failed permanently")
			return "", false
		}
		logger.Error().Err(err).Int("attempt", attempt).Msg("can't read port for device")

		if ctx.Err() != nil {
			return "", false
		}
	}

	logger.Warn().Int("attempts", d.maxAttempts).Msg("port resolution attempts exhausted")
	return "", false
}

func (d *Detector) publish(ev LifecycleEvent) {
	d.logger.Debug().
		Stringer("kind", ev.Kind).
		Str("path", string(ev.Path)).
		Str("port", ev.Port).
		Msg("device event")
	d.lifecycle.notify(func(l LifecycleListener) {
		l.OnLifecycleEvent(ev)
	})
}

func (d *Detector) firePhase(ev PhaseEvent) {
	d.phases.notify(func(l PhaseListener) {
		l.OnPhase(ev)
	})
}
