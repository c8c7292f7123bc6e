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
	"errors"
	"testing"

	"github.com/ZaparooProject/portwatch/pkg/testing/helpers"
	"github.com/ZaparooProject/portwatch/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const logicalDiskAssocOut = `
Antecedent                                                           Dependent
\\DESKTOP\ROOT\CIMV2:Win32_DiskPartition.DeviceID="Disk #0, Partition #1"
\\DESKTOP\ROOT\CIMV2:Win32_LogicalDisk.DeviceID="C:"
\\DESKTOP\ROOT\CIMV2:Win32_DiskPartition.DeviceID="Disk #2, Partition #0"
\\DESKTOP\ROOT\CIMV2:Win32_LogicalDisk.DeviceID="E:"
`

const diskDriveAssocOut = `
Antecedent                                                           Dependent
\\DESKTOP\ROOT\CIMV2:Win32_DiskDrive.DeviceID="\\\\.\\PHYSICALDRIVE0"
\\DESKTOP\ROOT\CIMV2:Win32_DiskPartition.DeviceID="Disk #0, Partition #0"
\\DESKTOP\ROOT\CIMV2:Win32_DiskPartition.DeviceID="Disk #0, Partition #1"
\\DESKTOP\ROOT\CIMV2:Win32_DiskDrive.DeviceID="\\\\.\\PHYSICALDRIVE2"
\\DESKTOP\ROOT\CIMV2:Win32_DiskPartition.DeviceID="Disk #2, Partition #0"
`

const (
	physicalDrive2 = `\\\\.\\PHYSICALDRIVE2`
	pnpID          = `USBSTOR\DISK&VEN_SANDISK&PROD_ULTRA&REV_1.00\4C530001231120115142&0`
	containerID    = "{5B0C9B3A-7A0B-11EE-B962-0242AC120002}"
	usbDeviceKey   = USBEnumKey + `\VID_0781&PID_5581`
	usbInstanceKey = usbDeviceKey + `\4C530001231120115142`
)

func wmicCommands() *mocks.MockCommandExecutor {
	cmd := &mocks.MockCommandExecutor{}
	cmd.On("CombinedOutput", mock.Anything, "wmic", logicalDiskAssocArgs).
		Return([]byte(logicalDiskAssocOut), nil)
	cmd.On("CombinedOutput", mock.Anything, "wmic", diskDriveAssocArgs).
		Return([]byte(diskDriveAssocOut), nil)
	cmd.On("CombinedOutput", mock.Anything, "wmic",
		[]string{"DiskDrive", "where", "DeviceID='" + physicalDrive2 + "'", "get", "PNPDeviceID"}).
		Return([]byte("PNPDeviceID\r\n"+pnpID+"\r\n\r\n"), nil)
	return cmd
}

func usbRegistry() *mocks.MockRegistryReader {
	reg := &mocks.MockRegistryReader{}
	reg.On("ReadValue", EnumKey+`\`+pnpID, "ContainerID").Return(containerID, true, nil)
	reg.On("ListSubkeys", USBEnumKey).Return([]string{USBEnumKey + `\ROOT_HUB30`, usbDeviceKey}, nil)
	reg.On("ListSubkeys", USBEnumKey+`\ROOT_HUB30`).Return([]string{USBEnumKey + `\ROOT_HUB30\4&1`}, nil)
	reg.On("ReadValues", USBEnumKey+`\ROOT_HUB30\4&1`).Return(map[string]string{
		"ContainerID":         "{00000000-0000-0000-FFFF-FFFFFFFFFFFF}",
		"LocationInformation": "",
	}, nil)
	reg.On("ListSubkeys", usbDeviceKey).Return([]string{usbInstanceKey}, nil)
	reg.On("ReadValues", usbInstanceKey).Return(map[string]string{
		"ContainerID":         "{5b0c9b3a-7a0b-11ee-b962-0242ac120002}",
		"LocationInformation": " Port_#0003.Hub_#0001 ",
		"DeviceDesc":          "USB Mass Storage Device",
	}, nil)
	return reg
}

func TestWindows_Resolve(t *testing.T) {
	t.Parallel()

	w := NewWindows(wmicCommands(), usbRegistry())

	port, err := w.Resolve(context.Background(), `e:\`)
	require.NoError(t, err)
	assert.Equal(t, "Port_#0003.Hub_#0001", port)
}

func TestWindows_Resolve_InvalidPath(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	w := NewWindows(cmd, &mocks.MockRegistryReader{})

	for _, path := range []string{"", "E", "/Volumes/STICK"} {
		_, err := w.Resolve(context.Background(), path)
		require.Error(t, err, path)
		assert.True(t, IsTerminal(err), path)
	}
	cmd.AssertNotCalled(t, "CombinedOutput", mock.Anything, mock.Anything, mock.Anything)
}

func TestWindows_Resolve_NoAssociation(t *testing.T) {
	t.Parallel()

	w := NewWindows(wmicCommands(), usbRegistry())

	// F: is not associated with any partition yet
	_, err := w.Resolve(context.Background(), `F:\`)
	require.ErrorIs(t, err, ErrNoAssociation)
	assert.False(t, IsTerminal(err))
}

func TestWindows_Resolve_NoContainerID(t *testing.T) {
	t.Parallel()

	w := NewWindows(wmicCommands(), helpers.NewMockRegistryReader())

	port, err := w.Resolve(context.Background(), `E:\`)
	require.NoError(t, err)
	assert.Empty(t, port)
}

func TestWindows_Resolve_LocationNotFound(t *testing.T) {
	t.Parallel()

	reg := &mocks.MockRegistryReader{}
	reg.On("ReadValue", EnumKey+`\`+pnpID, "ContainerID").Return(containerID, true, nil)
	reg.On("ListSubkeys", USBEnumKey).Return([]string{usbDeviceKey}, nil)
	reg.On("ListSubkeys", usbDeviceKey).Return([]string{usbInstanceKey}, nil)
	// matching container but no LocationInformation value
	reg.On("ReadValues", usbInstanceKey).Return(map[string]string{"ContainerID": containerID}, nil)
	w := NewWindows(wmicCommands(), reg)

	_, err := w.Resolve(context.Background(), `E:\`)
	require.ErrorIs(t, err, ErrLocationNotFound)
	assert.False(t, IsTerminal(err))
}

func TestWindows_Resolve_WmicFails(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("CombinedOutput", mock.Anything, "wmic", logicalDiskAssocArgs).
		Return([]byte(nil), errors.New("exit status 1"))
	cmd.On("CombinedOutput", mock.Anything, "wmic", diskDriveAssocArgs).
		Return([]byte(diskDriveAssocOut), nil)
	w := NewWindows(cmd, &mocks.MockRegistryReader{})

	_, err := w.Resolve(context.Background(), `E:\`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query logical disk partitions")
	assert.False(t, IsTerminal(err))
	// both queries always run to completion
	cmd.AssertExpectations(t)
}

func TestWindows_Resolve_RegistryError(t *testing.T) {
	t.Parallel()

	reg := &mocks.MockRegistryReader{}
	reg.On("ReadValue", mock.Anything, "ContainerID").Return("", false, errors.New("access denied"))
	w := NewWindows(wmicCommands(), reg)

	_, err := w.Resolve(context.Background(), `E:\`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestWindows_Diagnose(t *testing.T) {
	t.Parallel()

	reg := &mocks.MockRegistryReader{}
	reg.On("ListSubkeys", USBEnumKey).Return([]string{usbDeviceKey}, nil)
	w := NewWindows(wmicCommands(), reg)

	probes := w.Diagnose(context.Background())
	require.Len(t, probes, 3)
	assert.Equal(t, "wmic partition assoc /assocclass:Win32_LogicalDiskToPartition", probes[0].Name)
	assert.Equal(t, logicalDiskAssocOut, probes[0].Output)
	assert.Equal(t, "wmic DiskDrive Assoc /assocclass:Win32_DiskDriveToDiskPartition", probes[1].Name)
	assert.Equal(t, "registry "+USBEnumKey, probes[2].Name)
	assert.Equal(t, usbDeviceKey, probes[2].Output)
}

func TestParseAssociations(t *testing.T) {
	t.Parallel()

	partitions := parseAssociations(logicalDiskAssocOut, classDiskPartition, classLogicalDisk)
	assert.Equal(t, map[string]string{
		"C:": "Disk #0, Partition #1",
		"E:": "Disk #2, Partition #0",
	}, partitions)

	drives := parseAssociations(diskDriveAssocOut, classDiskDrive, classDiskPartition)
	assert.Equal(t, map[string]string{
		"Disk #0, Partition #0": `\\\\.\\PHYSICALDRIVE0`,
		"Disk #0, Partition #1": `\\\\.\\PHYSICALDRIVE0`,
		"Disk #2, Partition #0": physicalDrive2,
	}, drives)

	assert.Empty(t, parseAssociations("No Instance(s) Available.\r\n", classDiskPartition, classLogicalDisk))
}

func TestParsePNPDeviceID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pnpID, parsePNPDeviceID("PNPDeviceID  \r\n"+pnpID+"  \r\n"))
	assert.Empty(t, parsePNPDeviceID("PNPDeviceID\r\n\r\n"))
	assert.Empty(t, parsePNPDeviceID(""))
}

func TestDriveLetter(t *testing.T) {
	t.Parallel()

	letter, err := driveLetter(`e:\`)
	require.NoError(t, err)
	assert.Equal(t, "E:", letter)

	letter, err = driveLetter("D:")
	require.NoError(t, err)
	assert.Equal(t, "D:", letter)

	_, err = driveLetter("/")
	require.Error(t, err)
}
