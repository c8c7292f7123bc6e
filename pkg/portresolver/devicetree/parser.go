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

// Package devicetree decodes the property list emitted by
// `system_profiler -xml` into plain Go values.
package devicetree

import (
	"errors"
	"fmt"

	"howett.net/plist"
)

var ErrEmpty = errors.New("empty device tree")

// Parser decodes XML, binary and OpenStep property lists.
type Parser struct{}

// ParseDeviceTree returns dictionaries as map[string]any, arrays as []any
// and strings as string. Integers, booleans and dates keep their plist
// decoder types.
func (Parser) ParseDeviceTree(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	var tree any
	if _, err := plist.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode plist: %w", err)
	}
	return tree, nil
}
