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

package helpers

import (
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/portwatch/pkg/config"
	"github.com/spf13/afero"
)

// NewMemoryFS creates a new in-memory filesystem for testing.
func NewMemoryFS() afero.Fs {
	return afero.NewMemMapFs()
}

// NewTestConfig creates a config instance backed by fs, starting from the
// base defaults.
func NewTestConfig(fs afero.Fs, configDir string) (*config.Instance, error) {
	if fs == nil {
		fs = NewMemoryFS()
	}
	cfg, err := config.NewConfig(fs, configDir, config.BaseDefaults)
	if err != nil {
		return nil, fmt.Errorf("failed to create test config: %w", err)
	}
	return cfg, nil
}

// CreateVolumes creates one directory per name under root, the way mounted
// volumes appear under /Volumes.
func CreateVolumes(fs afero.Fs, root string, names ...string) error {
	for _, name := range names {
		if err := fs.MkdirAll(filepath.Join(root, name), 0o750); err != nil {
			return fmt.Errorf("failed to create volume %s: %w", name, err)
		}
	}
	return nil
}

// RemoveVolumes removes the named volume directories from root.
func RemoveVolumes(fs afero.Fs, root string, names ...string) error {
	for _, name := range names {
		if err := fs.RemoveAll(filepath.Join(root, name)); err != nil {
			return fmt.Errorf("failed to remove volume %s: %w", name, err)
		}
	}
	return nil
}
