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

package portresolver

import (
	"errors"
)

var (
	// ErrUnsupportedPlatform means no resolver backend exists for the host.
	// It is terminal: retrying cannot succeed.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrNoAssociation means a WMI association needed to walk from a drive
	// letter to its physical drive was missing.
	ErrNoAssociation = errors.New("missing drive association")
	// ErrLocationNotFound means the device's ContainerID was present but no
	// USB enumeration entry carried it.
	ErrLocationNotFound = errors.New("usb location not found")
)

// TerminalError marks a resolution failure that will not go away on retry,
// such as a mount path that cannot belong to a USB device.
type TerminalError struct {
	Err error
}

func (e *TerminalError) Error() string {
	return "terminal: " + e.Err.Error()
}

func (e *TerminalError) Unwrap() error {
	return e.Err
}

// Terminal wraps err so IsTerminal reports true for it.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &TerminalError{Err: err}
}

// IsTerminal reports whether err should end a retry sequence immediately.
// Any other non-nil error from Resolve is retryable.
func IsTerminal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnsupportedPlatform) {
		return true
	}
	var te *TerminalError
	return errors.As(err, &te)
}
