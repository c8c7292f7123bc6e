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

// Package detector watches the host for removable volumes being mounted and
// unmounted, resolves the USB port of each new volume and publishes the
// result to subscribers.
//
// A Poller lists mounted volumes on a fixed cadence and diffs each snapshot
// against the previous one. The Detector subscribes to those path changes,
// drives port resolution with bounded retries and re-publishes them as
// lifecycle events. Everything downstream of a tick, including external
// probe commands, runs on the poller's goroutine.
package detector

import (
	"context"
	"fmt"
)

// MountPoint is the absolute path of a mounted volume.
type MountPoint string

// PathEventKind says whether a mount point appeared or disappeared.
type PathEventKind int

const (
	PathConnected PathEventKind = iota
	PathDisconnected
)

func (k PathEventKind) String() string {
	switch k {
	case PathConnected:
		return "CONNECTED"
	case PathDisconnected:
		return "DISCONNECTED"
	default:
		return fmt.Sprintf("PathEventKind(%d)", int(k))
	}
}

// PathEvent is a raw snapshot change produced by the Poller.
type PathEvent struct {
	Path MountPoint
	Kind PathEventKind
}

// PathListener receives path events on the poller goroutine. ctx is canceled
// when the poller shuts down.
type PathListener interface {
	OnPathEvent(ctx context.Context, ev PathEvent)
}

// EventKind is the kind of a LifecycleEvent.
type EventKind int

const (
	// EventNewDevice fires for every attachment before its port is known.
	EventNewDevice EventKind = iota
	// EventConnected fires after NewDevice when a non-empty port was resolved.
	EventConnected
	// EventRemoved fires when a mount point disappears.
	EventRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventNewDevice:
		return "NEW_DEVICE"
	case EventConnected:
		return "CONNECTED"
	case EventRemoved:
		return "REMOVED"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// LifecycleEvent is published to external subscribers.
type LifecycleEvent struct {
	Path MountPoint
	// Port is only set on EventConnected.
	Port string
	// AttachmentID ties the NewDevice and Connected events of one attachment
	// together. Empty on EventRemoved.
	AttachmentID string
	Kind         EventKind
}

// LifecycleListener receives device lifecycle events. Registrations are
// matched with ==, so implementations should be pointers or other comparable
// types; a listener of a non-comparable type is refused.
type LifecycleListener interface {
	OnLifecycleEvent(ev LifecycleEvent)
}

// Phase brackets the resolution attempts of one attachment.
type Phase int

const (
	// PhaseNewDeviceFound fires when a new mount point is seen, before
	// resolution starts.
	PhaseNewDeviceFound Phase = iota
	// PhaseNewDeviceRecognized fires once resolution has concluded, whether
	// a port was found or not.
	PhaseNewDeviceRecognized
)

func (p Phase) String() string {
	switch p {
	case PhaseNewDeviceFound:
		return "NEW_DEVICE_FOUND"
	case PhaseNewDeviceRecognized:
		return "NEW_DEVICE_RECOGNIZED"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// PhaseEvent is delivered to phase listeners.
type PhaseEvent struct {
	Path  MountPoint
	Phase Phase
}

// PhaseListener receives phase changes, useful for progress indicators. The
// same comparability rule as LifecycleListener applies.
type PhaseListener interface {
	OnPhase(ev PhaseEvent)
}

// Listener values are compared with == for duplicate detection, so func
// types cannot implement the interfaces directly. These adapters give each
// registration a distinct pointer identity.

type lifecycleFunc struct {
	fn func(LifecycleEvent)
}

func (l *lifecycleFunc) OnLifecycleEvent(ev LifecycleEvent) { l.fn(ev) }

// LifecycleListenerFunc wraps fn as a LifecycleListener. Keep the returned
// value to unregister it later.
func LifecycleListenerFunc(fn func(LifecycleEvent)) LifecycleListener {
	return &lifecycleFunc{fn: fn}
}

type phaseFunc struct {
	fn func(PhaseEvent)
}

func (l *phaseFunc) OnPhase(ev PhaseEvent) { l.fn(ev) }

// PhaseListenerFunc wraps fn as a PhaseListener.
func PhaseListenerFunc(fn func(PhaseEvent)) PhaseListener {
	return &phaseFunc{fn: fn}
}

type pathFunc struct {
	fn func(context.Context, PathEvent)
}

func (l *pathFunc) OnPathEvent(ctx context.Context, ev PathEvent) { l.fn(ctx, ev) }

// PathListenerFunc wraps fn as a PathListener.
func PathListenerFunc(fn func(context.Context, PathEvent)) PathListener {
	return &pathFunc{fn: fn}
}
