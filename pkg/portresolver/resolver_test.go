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
	"context"
	"testing"

	"github.com/ZaparooProject/portwatch/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func platform(name string) PlatformFunc {
	return func() string { return name }
}

func TestNew(t *testing.T) {
	t.Parallel()

	deps := Deps{
		Commands:   &mocks.MockCommandExecutor{},
		Registry:   &mocks.MockRegistryReader{},
		DeviceTree: &mocks.MockDeviceTreeParser{},
	}

	r, err := New(platform("darwin"), deps)
	require.NoError(t, err)
	assert.IsType(t, &Darwin{}, r)

	r, err = New(platform("windows"), deps)
	require.NoError(t, err)
	assert.IsType(t, &Windows{}, r)
}

func TestNew_UnsupportedPlatform(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"linux", "freebsd", ""} {
		r, err := New(platform(p), Deps{Commands: &mocks.MockCommandExecutor{}})
		require.ErrorIs(t, err, ErrUnsupportedPlatform, p)
		assert.Nil(t, r)
	}
}

func TestNew_MissingDeps(t *testing.T) {
	t.Parallel()

	_, err := New(platform("darwin"), Deps{Commands: &mocks.MockCommandExecutor{}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedPlatform)

	_, err = New(platform("windows"), Deps{Registry: &mocks.MockRegistryReader{}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestNew_NilDetectUsesHost(t *testing.T) {
	t.Parallel()

	deps := Deps{
		Commands:   &mocks.MockCommandExecutor{},
		Registry:   &mocks.MockRegistryReader{},
		DeviceTree: &mocks.MockDeviceTreeParser{},
	}
	_, errNil := New(nil, deps)
	_, errHost := New(HostPlatform, deps)
	assert.Equal(t, errNil == nil, errHost == nil)
}

func TestUnsupported(t *testing.T) {
	t.Parallel()

	u := Unsupported{Platform: "linux"}

	port, err := u.Resolve(context.Background(), "/media/usb")
	assert.Empty(t, port)
	require.ErrorIs(t, err, ErrUnsupportedPlatform)
	assert.True(t, IsTerminal(err))
	assert.Contains(t, err.Error(), "linux")

	probes := u.Diagnose(context.Background())
	require.Len(t, probes, 1)
	require.ErrorIs(t, probes[0].Err, ErrUnsupportedPlatform)
}
