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

//go:build !deadlock

// Package syncutil names the locks guarding the listener registries, the
// poller baseline and the config instance. Builds tagged deadlock swap in
// go-deadlock, which reports lock-order inversions and locks held too long.
package syncutil

import "sync"

type (
	Mutex   = sync.Mutex   //nolint:forbidigo // the one place sync locks are named
	RWMutex = sync.RWMutex //nolint:forbidigo // the one place sync locks are named
)
