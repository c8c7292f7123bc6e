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

// Package registry reads device enumeration data from the Windows registry.
package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned by every Reader method on hosts without a
// registry.
var ErrUnsupported = errors.New("registry is only available on windows")

// Root identifies a predefined registry root key.
type Root int

const (
	LocalMachine Root = iota
	CurrentUser
	ClassesRoot
	Users
	CurrentConfig
)

var rootNames = map[string]Root{
	"HKLM":                LocalMachine,
	"HKEY_LOCAL_MACHINE":  LocalMachine,
	"HKCU":                CurrentUser,
	"HKEY_CURRENT_USER":   CurrentUser,
	"HKCR":                ClassesRoot,
	"HKEY_CLASSES_ROOT":   ClassesRoot,
	"HKU":                 Users,
	"HKEY_USERS":          Users,
	"HKCC":                CurrentConfig,
	"HKEY_CURRENT_CONFIG": CurrentConfig,
}

// Reader reads registry keys addressed by absolute paths such as
// HKLM\SYSTEM\CurrentControlSet\Enum\USB.
type Reader struct{}

// NewReader returns a Reader for the host registry.
func NewReader() *Reader {
	return &Reader{}
}

// splitRoot separates the root key of an absolute path from its subkey.
func splitRoot(path string) (Root, string, error) {
	head, rest, _ := strings.Cut(strings.Trim(path, `\`), `\`)
	root, ok := rootNames[strings.ToUpper(head)]
	if !ok {
		return 0, "", fmt.Errorf("unknown registry root in %q", path)
	}
	return root, rest, nil
}

// joinPath appends a child key name to path.
func joinPath(path, child string) string {
	return strings.TrimRight(path, `\`) + `\` + child
}
