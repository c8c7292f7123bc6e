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
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	profilerCmd  = "system_profiler"
	diskutilCmd  = "diskutil"
	infoMountKey = "Mount Point"

	keyMedia      = "Media"
	keyVolumes    = "volumes"
	keyMountPoint = "mount_point"
	keyBSDName    = "bsd_name"
	keyLocationID = "location_id"
	keyItems      = "_items"
)

var profilerArgs = []string{"SPUSBDataType", "-xml"}

// Darwin resolves ports from the system_profiler USB device tree. The port
// is the device's location_id up to the first '/'.
type Darwin struct {
	cmd    CommandRunner
	parser DeviceTreeParser
	logger zerolog.Logger
}

// NewDarwin creates the macOS backend.
func NewDarwin(cmd CommandRunner, parser DeviceTreeParser) *Darwin {
	return &Darwin{
		cmd:    cmd,
		parser: parser,
		logger: log.With().Str("resolver", PlatformDarwin).Logger(),
	}
}

func (d *Darwin) Resolve(ctx context.Context, mountPath string) (string, error) {
	out, err := d.cmd.CombinedOutput(ctx, profilerCmd, profilerArgs...)
	if err != nil {
		return "", fmt.Errorf("failed to run %s: %w", profilerCmd, err)
	}

	tree, err := d.parser.ParseDeviceTree(out)
	if err != nil {
		return "", fmt.Errorf("failed to parse device tree: %w", err)
	}

	root, ok := tree.([]any)
	if !ok {
		return "", fmt.Errorf("unexpected device tree root %T", tree)
	}

	// The root holds one dictionary per data type; buses hang off its _items.
	port, err := d.traverse(ctx, root, mountPath)
	if err != nil {
		return "", err
	}
	port = strings.TrimSpace(port)
	if port == "" {
		d.logger.Warn().Str("path", mountPath).Msg("device has not been found in system_profiler")
	}
	return port, nil
}

func (d *Darwin) Diagnose(ctx context.Context) []Probe {
	return []Probe{
		runProbe(ctx, d.cmd, profilerCmd, profilerArgs...),
		runProbe(ctx, d.cmd, diskutilCmd, "info", "-all"),
	}
}

func (d *Darwin) traverse(ctx context.Context, items []any, mountPath string) (string, error) {
	for _, item := range items {
		device, ok := item.(map[string]any)
		if !ok {
			continue
		}

		if media, ok := device[keyMedia].([]any); ok {
			matched, err := d.mediaMatches(ctx, media, mountPath)
			if err != nil {
				return "", err
			}
			if matched {
				return locationOf(device)
			}
		}

		if children, ok := device[keyItems].([]any); ok {
			port, err := d.traverse(ctx, children, mountPath)
			if err != nil {
				return "", err
			}
			if port != "" {
				return port, nil
			}
		}
	}
	return "", nil
}

// mediaMatches reports whether any media entry of a device is mounted at
// mountPath. Entries that declare volumes are checked directly; entries
// without volumes are looked up by BSD name through diskutil.
func (d *Darwin) mediaMatches(ctx context.Context, media []any, mountPath string) (bool, error) {
	for _, m := range media {
		entry, ok := m.(map[string]any)
		if !ok {
			continue
		}

		if volumes, ok := entry[keyVolumes].([]any); ok {
			for _, v := range volumes {
				volume, ok := v.(map[string]any)
				if !ok {
					continue
				}
				if mp, ok := volume[keyMountPoint].(string); ok && mp == mountPath {
					return true, nil
				}
			}
			continue
		}

		bsdName, ok := entry[keyBSDName].(string)
		if !ok || bsdName == "" {
			continue
		}
		if d.mountPointOf(ctx, "/dev/"+bsdName) == mountPath {
			return true, nil
		}
	}
	return false, nil
}

// mountPointOf asks diskutil where a block device is mounted. A diskutil
// failure is treated as "not mounted" since it concerns one media entry and
// not necessarily the device being resolved.
func (d *Darwin) mountPointOf(ctx context.Context, device string) string {
	out, err := d.cmd.CombinedOutput(ctx, diskutilCmd, "info", device)
	if err != nil {
		d.logger.Debug().Err(err).Str("device", device).Msg("diskutil info failed")
		return ""
	}
	return parseDiskutilMountPoint(string(out))
}

func parseDiskutilMountPoint(out string) string {
	for _, line := range strings.Split(out, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if strings.TrimSpace(key) == infoMountKey {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func locationOf(device map[string]any) (string, error) {
	loc, ok := device[keyLocationID].(string)
	if !ok {
		return "", errors.New("matched device has no location_id")
	}
	before, _, _ := strings.Cut(loc, "/")
	return strings.TrimSpace(before), nil
}
