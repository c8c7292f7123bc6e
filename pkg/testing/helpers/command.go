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
	"github.com/ZaparooProject/portwatch/pkg/testing/mocks"
	"github.com/stretchr/testify/mock"
)

// NewMockCommandExecutor creates a MockCommandExecutor that succeeds by default.
// Every CombinedOutput() call returns success with empty output unless
// explicitly overridden with On().
//
// Override specific commands in tests that need to verify exact behavior:
//
//	cmd := helpers.NewMockCommandExecutor()
//	// Clear defaults first
//	cmd.ExpectedCalls = nil
//	// Set specific expectations (note: args is []string not variadic in mock)
//	cmd.On("CombinedOutput", mock.Anything, "diskutil", []string{"info", "/dev/disk4"}).
//		Return([]byte("   Mount Point:   /Volumes/STICK\n"), nil)
func NewMockCommandExecutor() *mocks.MockCommandExecutor {
	cmd := &mocks.MockCommandExecutor{}
	// Match any command with any arguments - all succeed by default
	cmd.On("CombinedOutput", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return([]byte{}, nil).Maybe()
	return cmd
}

// NewMockRegistryReader creates a MockRegistryReader where every key is
// absent unless overridden with On().
func NewMockRegistryReader() *mocks.MockRegistryReader {
	reg := &mocks.MockRegistryReader{}
	reg.On("ReadValue", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Return("", false, nil).Maybe()
	reg.On("ListSubkeys", mock.AnythingOfType("string")).Return([]string{}, nil).Maybe()
	reg.On("ReadValues", mock.AnythingOfType("string")).Return(map[string]string{}, nil).Maybe()
	return reg
}
