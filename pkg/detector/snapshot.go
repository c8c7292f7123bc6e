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
	"slices"
)

// Snapshot is the sorted, de-duplicated set of mount points seen at one tick.
type Snapshot []MountPoint

// NewSnapshot canonicalizes paths so that equality does not depend on the
// order the host listed them in.
func NewSnapshot(paths []string) Snapshot {
	snap := make(Snapshot, 0, len(paths))
	for _, p := range paths {
		snap = append(snap, MountPoint(p))
	}
	slices.Sort(snap)
	return slices.Compact(snap)
}

// Equal reports whether both snapshots hold the same mount points.
func (s Snapshot) Equal(other Snapshot) bool {
	return slices.Equal(s, other)
}

// Contains reports whether p is in the snapshot.
func (s Snapshot) Contains(p MountPoint) bool {
	_, found := slices.BinarySearch(s, p)
	return found
}

// Diff returns the mount points present in next but not in prev (connected)
// and those present in prev but not in next (disconnected). Both inputs must
// be canonical; results come back sorted.
func Diff(prev, next Snapshot) (connected, disconnected []MountPoint) {
	for _, p := range next {
		if !prev.Contains(p) {
			connected = append(connected, p)
		}
	}
	for _, p := range prev {
		if !next.Contains(p) {
			disconnected = append(disconnected, p)
		}
	}
	return connected, disconnected
}

// DiffEvents turns a snapshot change into path events, connects first.
func DiffEvents(prev, next Snapshot) []PathEvent {
	connected, disconnected := Diff(prev, next)
	events := make([]PathEvent, 0, len(connected)+len(disconnected))
	for _, p := range connected {
		events = append(events, PathEvent{Kind: PathConnected, Path: p})
	}
	for _, p := range disconnected {
		events = append(events, PathEvent{Kind: PathDisconnected, Path: p})
	}
	return events
}
