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

package devicetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profilerXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<array>
	<dict>
		<key>_dataType</key>
		<string>SPUSBDataType</string>
		<key>_items</key>
		<array>
			<dict>
				<key>_name</key>
				<string>USB 3.1 Bus</string>
				<key>_items</key>
				<array>
					<dict>
						<key>_name</key>
						<string>Flash Disk</string>
						<key>location_id</key>
						<string>0x14200000 / 3</string>
						<key>Media</key>
						<array>
							<dict>
								<key>bsd_name</key>
								<string>disk4</string>
								<key>volumes</key>
								<array>
									<dict>
										<key>mount_point</key>
										<string>/Volumes/STICK</string>
									</dict>
								</array>
							</dict>
						</array>
					</dict>
				</array>
			</dict>
		</array>
	</dict>
</array>
</plist>`

func TestParseDeviceTree(t *testing.T) {
	t.Parallel()

	tree, err := Parser{}.ParseDeviceTree([]byte(profilerXML))
	require.NoError(t, err)

	root, ok := tree.([]any)
	require.True(t, ok, "root should be an array, got %T", tree)
	require.Len(t, root, 1)

	dataType, ok := root[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "SPUSBDataType", dataType["_dataType"])

	buses, ok := dataType["_items"].([]any)
	require.True(t, ok)
	bus, ok := buses[0].(map[string]any)
	require.True(t, ok)
	devices, ok := bus["_items"].([]any)
	require.True(t, ok)
	device, ok := devices[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "0x14200000 / 3", device["location_id"])

	media, ok := device["Media"].([]any)
	require.True(t, ok)
	require.Len(t, media, 1)
}

func TestParseDeviceTree_Errors(t *testing.T) {
	t.Parallel()

	_, err := Parser{}.ParseDeviceTree(nil)
	require.ErrorIs(t, err, ErrEmpty)

	_, err = Parser{}.ParseDeviceTree([]byte("<plist><dict><key>a</key>"))
	require.Error(t, err)
}
