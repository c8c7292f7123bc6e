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

// Package service wires the port resolver and drive detector together and
// runs them for the lifetime of the process.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/ZaparooProject/portwatch/pkg/config"
	"github.com/ZaparooProject/portwatch/pkg/detector"
	"github.com/ZaparooProject/portwatch/pkg/helpers/command"
	"github.com/ZaparooProject/portwatch/pkg/portresolver"
	"github.com/ZaparooProject/portwatch/pkg/portresolver/devicetree"
	"github.com/ZaparooProject/portwatch/pkg/portresolver/registry"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Deps are the host collaborators of the service. Zero values select the
// real implementations for the running host.
type Deps struct {
	Platform portresolver.PlatformFunc
	Commands portresolver.CommandRunner
	Registry portresolver.RegistryReader
	Tree     portresolver.DeviceTreeParser
	Lister   detector.VolumeLister
	Clock    clockwork.Clock
	// Listeners are registered before the detector starts so they see the
	// initial replay.
	Listeners []detector.LifecycleListener
	// AllowUnsupported falls back to presence-only detection on hosts
	// without a port resolver.
	AllowUnsupported bool
}

func (d *Deps) defaults() {
	if d.Platform == nil {
		d.Platform = portresolver.HostPlatform
	}
	if d.Commands == nil {
		d.Commands = &command.RealExecutor{}
	}
	if d.Registry == nil {
		d.Registry = registry.NewReader()
	}
	if d.Tree == nil {
		d.Tree = devicetree.Parser{}
	}
}

// NewResolver builds the port resolver for the host. On a host without a
// backend it fails with portresolver.ErrUnsupportedPlatform unless
// allowUnsupported is set.
func NewResolver(deps Deps) (portresolver.Resolver, error) {
	deps.defaults()

	resolver, err := portresolver.New(deps.Platform, portresolver.Deps{
		Commands:   deps.Commands,
		Registry:   deps.Registry,
		DeviceTree: deps.Tree,
	})
	switch {
	case err == nil:
		return resolver, nil
	case errors.Is(err, portresolver.ErrUnsupportedPlatform) && deps.AllowUnsupported:
		log.Warn().Err(err).Msg("no port resolver for this host, reporting presence only")
		return portresolver.Unsupported{Platform: deps.Platform()}, nil
	default:
		return nil, fmt.Errorf("failed to create port resolver: %w", err)
	}
}

// LogEvents is a lifecycle listener that writes every event to the global
// logger.
var LogEvents = detector.LifecycleListenerFunc(func(ev detector.LifecycleEvent) {
	e := log.Info().
		Stringer("event", ev.Kind).
		Str("path", string(ev.Path))
	if ev.AttachmentID != "" {
		e = e.Str("attachment_id", ev.AttachmentID)
	}
	if ev.Port != "" {
		e = e.Str("port", ev.Port)
	}
	e.Msg("device lifecycle event")
})

// NewDetector builds the host resolver and a detector over the configured
// volumes, with deps.Listeners registered. The detector is not started.
func NewDetector(cfg *config.Instance, deps Deps) (*detector.Detector, error) {
	resolver, err := NewResolver(deps)
	if err != nil {
		return nil, err
	}

	lister := deps.Lister
	if lister == nil {
		lister = detector.DefaultVolumeLister(runtime.GOOS, cfg.VolumesPath())
	}

	det := detector.New(resolver, lister, detector.Options{
		Clock:        deps.Clock,
		PollInterval: cfg.PollInterval(),
		MaxAttempts:  cfg.MaxAttempts(),
	})
	for _, l := range deps.Listeners {
		if !det.RegisterLifecycleListener(l) {
			log.Warn().Msgf("lifecycle listener %T not registered", l)
		}
	}
	return det, nil
}

// Start builds the detector from cfg and starts polling. stop shuts the
// poller down and waits for it; done is closed once the poller has exited.
func Start(
	cfg *config.Instance,
	deps Deps,
) (det *detector.Detector, stop func() error, done <-chan struct{}, err error) {
	log.Info().Msgf("version: %s", config.AppVersion)

	det, err = NewDetector(cfg, deps)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	var watchDone <-chan struct{}
	if cfg.WatchVolumes() {
		watchDone, err = detector.WatchVolumes(ctx, cfg.VolumesPath(), det.Wake)
		if err != nil {
			// polling still covers everything, only slower
			log.Warn().Err(err).Msg("volume watcher unavailable")
		}
	}

	det.Start()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := det.Run(ctx); err != nil {
			log.Error().Err(err).Msg("detector loop exited")
		}
	}()

	log.Info().
		Dur("poll_interval", det.PollingInterval()).
		Msg("drive detector started")

	stop = func() error {
		log.Info().Msg("stopping drive detector")
		det.Stop()
		cancel()
		<-runDone
		if watchDone != nil {
			<-watchDone
		}
		return nil
	}
	return det, stop, runDone, nil
}
