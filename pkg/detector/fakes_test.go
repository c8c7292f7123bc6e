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
	"slices"
	"sync"

	"github.com/ZaparooProject/portwatch/pkg/portresolver"
	"github.com/stretchr/testify/mock"
)

// fakeLister returns whatever volumes were last set. Calls are counted so
// tests can wait for a tick to have happened.
type fakeLister struct {
	err   error
	paths []string
	calls int
	mu    sync.Mutex
}

func newFakeLister(paths ...string) *fakeLister {
	l := &fakeLister{}
	l.set(paths...)
	return l
}

func (l *fakeLister) set(paths ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = append([]string{}, paths...)
	l.err = nil
}

func (l *fakeLister) fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func (l *fakeLister) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func (l *fakeLister) ListVolumes(context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return slices.Clone(l.paths), nil
}

// pathRecorder collects path events.
type pathRecorder struct {
	events []PathEvent
	mu     sync.Mutex
}

func (r *pathRecorder) OnPathEvent(_ context.Context, ev PathEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *pathRecorder) got() []PathEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// eventRecorder collects lifecycle and phase events in one ordered log.
type eventRecorder struct {
	lifecycle []LifecycleEvent
	order     []string
	mu        sync.Mutex
}

func (r *eventRecorder) OnLifecycleEvent(ev LifecycleEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lifecycle = append(r.lifecycle, ev)
	r.order = append(r.order, ev.Kind.String())
}

func (r *eventRecorder) OnPhase(ev PhaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, ev.Phase.String())
}

func (r *eventRecorder) events() []LifecycleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.lifecycle)
}

func (r *eventRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]EventKind, 0, len(r.lifecycle))
	for _, ev := range r.lifecycle {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func (r *eventRecorder) sequence() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// mockResolver is a testify mock for PortResolver.
type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, mountPath string) (string, error) {
	called := m.Called(ctx, mountPath)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.String(0), called.Error(1)
}

func (m *mockResolver) Diagnose(ctx context.Context) []portresolver.Probe {
	called := m.Called(ctx)
	probes, _ := called.Get(0).([]portresolver.Probe)
	return probes
}
