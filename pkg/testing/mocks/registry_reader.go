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
	"github.com/stretchr/testify/mock"
)

// MockRegistryReader is a testify mock for the Windows registry reader.
type MockRegistryReader struct {
	mock.Mock
}

func (m *MockRegistryReader) ReadValue(path, name string) (value string, ok bool, err error) {
	called := m.Called(path, name)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.String(0), called.Bool(1), called.Error(2)
}

func (m *MockRegistryReader) ListSubkeys(path string) ([]string, error) {
	called := m.Called(path)
	keys, _ := called.Get(0).([]string)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return keys, called.Error(1)
}

func (m *MockRegistryReader) ReadValues(path string) (map[string]string, error) {
	called := m.Called(path)
	values, _ := called.Get(0).(map[string]string)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return values, called.Error(1)
}
