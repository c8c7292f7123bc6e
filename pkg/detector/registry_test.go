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
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*registry[LifecycleListener], *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	return newRegistry[LifecycleListener]("lifecycle", &logger), &buf
}

func TestRegistry_AddRemove(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry(t)
	a := &eventRecorder{}
	b := &eventRecorder{}

	assert.True(t, r.add(a))
	assert.False(t, r.add(a), "duplicate registration")
	assert.True(t, r.add(b))
	assert.Equal(t, 2, r.len())
	assert.True(t, r.contains(a))

	assert.True(t, r.remove(a))
	assert.False(t, r.remove(a), "already removed")
	assert.False(t, r.contains(a))
	assert.Equal(t, 1, r.len())
}

// valueListener has a value receiver and a slice field, so its dynamic type
// is not comparable.
type valueListener struct {
	seen []LifecycleEvent
}

func (valueListener) OnLifecycleEvent(LifecycleEvent) {}

func TestRegistry_RejectsUncomparableListener(t *testing.T) {
	t.Parallel()

	r, buf := newTestRegistry(t)
	l := valueListener{seen: []LifecycleEvent{}}

	require.NotPanics(t, func() {
		assert.False(t, r.add(l))
		assert.False(t, r.add(l))
		assert.False(t, r.contains(l))
		assert.False(t, r.remove(l))
	})
	assert.Equal(t, 0, r.len())
	assert.Contains(t, buf.String(), "not comparable")

	// a pointer to the same type is fine
	ptr := &valueListener{}
	assert.True(t, r.add(ptr))
	assert.True(t, r.contains(ptr))
}

func TestRegistry_RejectsNilListener(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry(t)
	var l LifecycleListener

	assert.False(t, r.add(l))
	assert.Equal(t, 0, r.len())
}

func TestDetector_RegisterUncomparableListener(t *testing.T) {
	t.Parallel()

	d := New(&mockResolver{}, newFakeLister(), Options{})
	require.NotPanics(t, func() {
		assert.False(t, d.RegisterLifecycleListener(valueListener{}))
		assert.False(t, d.UnregisterLifecycleListener(valueListener{}))
		assert.False(t, d.HasLifecycleListener(valueListener{}))
	})
}

func TestRegistry_FuncAdaptersAreDistinct(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry(t)
	fn := func(LifecycleEvent) {}
	l1 := LifecycleListenerFunc(fn)
	l2 := LifecycleListenerFunc(fn)

	assert.True(t, r.add(l1))
	assert.True(t, r.add(l2))
	assert.False(t, r.add(l1))
	assert.True(t, r.remove(l1))
	assert.True(t, r.contains(l2))
}

func TestRegistry_UnregisterDuringNotify(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry(t)
	var calls []string
	var self LifecycleListener
	self = LifecycleListenerFunc(func(LifecycleEvent) {
		calls = append(calls, "self")
		r.remove(self)
	})
	other := LifecycleListenerFunc(func(LifecycleEvent) {
		calls = append(calls, "other")
	})
	r.add(self)
	r.add(other)

	r.notify(func(l LifecycleListener) { l.OnLifecycleEvent(LifecycleEvent{}) })
	assert.Equal(t, []string{"self", "other"}, calls, "pass uses registrations at its start")

	calls = nil
	r.notify(func(l LifecycleListener) { l.OnLifecycleEvent(LifecycleEvent{}) })
	assert.Equal(t, []string{"other"}, calls)
}

func TestRegistry_RegisterDuringNotify(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry(t)
	late := &eventRecorder{}
	r.add(LifecycleListenerFunc(func(LifecycleEvent) {
		r.add(late)
	}))

	r.notify(func(l LifecycleListener) { l.OnLifecycleEvent(LifecycleEvent{Kind: EventRemoved}) })
	assert.Empty(t, late.events(), "added mid-pass, not called in that pass")

	r.notify(func(l LifecycleListener) { l.OnLifecycleEvent(LifecycleEvent{Kind: EventRemoved}) })
	assert.Len(t, late.events(), 1)
}

func TestRegistry_PanicIsolated(t *testing.T) {
	t.Parallel()

	r, buf := newTestRegistry(t)
	after := &eventRecorder{}
	r.add(LifecycleListenerFunc(func(LifecycleEvent) {
		panic("listener bug")
	}))
	r.add(after)

	require.NotPanics(t, func() {
		r.notify(func(l LifecycleListener) { l.OnLifecycleEvent(LifecycleEvent{}) })
	})
	assert.Len(t, after.events(), 1)
	assert.Contains(t, buf.String(), "listener panicked")
	assert.Contains(t, buf.String(), `"panic":"listener bug"`)
	assert.Contains(t, buf.String(), `"registry":"lifecycle"`)
}
