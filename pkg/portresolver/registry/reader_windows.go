//go:build windows

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

package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	winreg "golang.org/x/sys/windows/registry"
)

func (r Root) key() winreg.Key {
	switch r {
	case CurrentUser:
		return winreg.CURRENT_USER
	case ClassesRoot:
		return winreg.CLASSES_ROOT
	case Users:
		return winreg.USERS
	case CurrentConfig:
		return winreg.CURRENT_CONFIG
	default:
		return winreg.LOCAL_MACHINE
	}
}

func open(path string, access uint32) (winreg.Key, error) {
	root, sub, err := splitRoot(path)
	if err != nil {
		return 0, err
	}
	k, err := winreg.OpenKey(root.key(), sub, access)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return k, nil
}

func (*Reader) ReadValue(path, name string) (string, bool, error) {
	k, err := open(path, winreg.QUERY_VALUE)
	if errors.Is(err, winreg.ErrNotExist) {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	defer func() { _ = k.Close() }()

	v, err := readText(k, name)
	if errors.Is(err, winreg.ErrNotExist) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("failed to read %s\\%s: %w", path, name, err)
	}
	return v, true, nil
}

func (*Reader) ListSubkeys(path string) ([]string, error) {
	k, err := open(path, winreg.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, err
	}
	defer func() { _ = k.Close() }()

	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to list subkeys of %s: %w", path, err)
	}
	paths := make([]string, 0, len(names))
	for _, n := range names {
		paths = append(paths, joinPath(path, n))
	}
	return paths, nil
}

func (*Reader) ReadValues(path string) (map[string]string, error) {
	k, err := open(path, winreg.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer func() { _ = k.Close() }()

	names, err := k.ReadValueNames(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to list values of %s: %w", path, err)
	}
	values := make(map[string]string, len(names))
	for _, n := range names {
		v, err := readText(k, n)
		if err != nil {
			// binary and other non-text values are not needed
			continue
		}
		values[n] = v
	}
	return values, nil
}

// readText reads a string, multi-string or integer value as text.
func readText(k winreg.Key, name string) (string, error) {
	s, _, err := k.GetStringValue(name)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, winreg.ErrUnexpectedType) {
		return "", err //nolint:wrapcheck // caller wraps with the key path
	}
	if ss, _, err := k.GetStringsValue(name); err == nil {
		return strings.Join(ss, "\n"), nil
	}
	n, _, err := k.GetIntegerValue(name)
	if err != nil {
		return "", err //nolint:wrapcheck // caller wraps with the key path
	}
	return strconv.FormatUint(n, 10), nil
}
