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

// Package command runs the host probe commands used during port resolution.
package command

import (
	"context"
)

// Executor abstracts process execution so resolvers can be tested without
// running system_profiler, diskutil or wmic.
type Executor interface {
	// CombinedOutput runs a command and returns standard output and standard
	// error interleaved, the way the probe commands are read.
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RealExecutor runs commands on the host. Commands have no timeout of their
// own; they only stop early when ctx is canceled.
type RealExecutor struct{}

//nolint:wrapcheck // exec errors carry the exit status callers log
func (*RealExecutor) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return newCommand(ctx, name, args...).CombinedOutput()
}
