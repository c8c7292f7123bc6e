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
	"fmt"
	"reflect"
	"slices"

	"github.com/ZaparooProject/portwatch/pkg/helpers/syncutil"
	"github.com/rs/zerolog"
)

// registry is a set of listeners with copy-on-write storage. A notification
// pass iterates the slice captured when it began, so listeners can register
// or unregister (including themselves) from inside a callback without
// deadlocking and without another listener in the same pass being skipped or
// called twice.
type registry[L comparable] struct {
	logger *zerolog.Logger
	name   string
	items  []L
	mu     syncutil.Mutex
}

func newRegistry[L comparable](name string, logger *zerolog.Logger) *registry[L] {
	return &registry[L]{name: name, logger: logger}
}

// add returns false if l is already registered, or if l is nil or of a
// type that can't be compared with ==.
func (r *registry[L]) add(l L) bool {
	if !comparableListener(l) {
		r.logger.Warn().
			Str("registry", r.name).
			Str("listener", fmt.Sprintf("%T", l)).
			Msg("rejected listener that is nil or not comparable")
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.items, l) {
		return false
	}
	next := make([]L, len(r.items), len(r.items)+1)
	copy(next, r.items)
	r.items = append(next, l)
	return true
}

// remove returns false if l was not registered.
func (r *registry[L]) remove(l L) bool {
	if !comparableListener(l) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := slices.Index(r.items, l)
	if idx < 0 {
		return false
	}
	r.items = slices.Concat(r.items[:idx], r.items[idx+1:])
	return true
}

func (r *registry[L]) contains(l L) bool {
	if !comparableListener(l) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.items, l)
}

// comparableListener reports whether l can be matched with ==. Comparing two
// interface values whose dynamic type is a slice, map, func, or a struct
// holding one panics.
func comparableListener(l any) bool {
	t := reflect.TypeOf(l)
	return t != nil && t.Comparable()
}

func (r *registry[L]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// snapshot returns the current registrations. The returned slice is never
// mutated by the registry.
func (r *registry[L]) snapshot() []L {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items
}

// notify calls fn once per listener registered when the pass starts. A panic
// in one listener is logged and does not stop the rest of the pass.
func (r *registry[L]) notify(fn func(L)) {
	for _, l := range r.snapshot() {
		r.call(l, fn)
	}
}

func (r *registry[L]) call(l L, fn func(L)) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Str("registry", r.name).
				Str("listener", fmt.Sprintf("%T", l)).
				Interface("panic", rec).
				Msg("listener panicked, continuing with remaining listeners")
		}
	}()
	fn(l)
}
