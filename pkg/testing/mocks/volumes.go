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

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDeviceTreeParser is a testify mock for the property list decoder.
type MockDeviceTreeParser struct {
	mock.Mock
}

func (m *MockDeviceTreeParser) ParseDeviceTree(data []byte) (any, error) {
	called := m.Called(data)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.Get(0), called.Error(1)
}

// MockVolumeLister is a testify mock for the mounted volume lister used by
// the poller.
type MockVolumeLister struct {
	mock.Mock
}

func (m *MockVolumeLister) ListVolumes(ctx context.Context) ([]string, error) {
	called := m.Called(ctx)
	paths, _ := called.Get(0).([]string)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return paths, called.Error(1)
}
