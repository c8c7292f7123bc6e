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
	"golang.org/x/sync/errgroup"
)

const (
	wmicCmd = "wmic"

	classDiskPartition = "Win32_DiskPartition.DeviceID"
	classLogicalDisk   = "Win32_LogicalDisk.DeviceID"
	classDiskDrive     = "Win32_DiskDrive.DeviceID"

	// EnumKey is the registry key holding device enumeration entries.
	EnumKey = `HKLM\SYSTEM\CurrentControlSet\Enum`
	// USBEnumKey is the root of the USB enumeration subtree.
	USBEnumKey = EnumKey + `\USB`

	valueContainerID = "ContainerID"
	valueLocation    = "LocationInformation"
)

var (
	logicalDiskAssocArgs = []string{"partition", "assoc", "/assocclass:Win32_LogicalDiskToPartition"}
	diskDriveAssocArgs   = []string{"DiskDrive", "Assoc", "/assocclass:Win32_DiskDriveToDiskPartition"}
)

// Windows resolves ports by walking drive letter -> partition -> physical
// drive -> PnP device -> ContainerID, then finding the USB enumeration entry
// with the same ContainerID and reading its LocationInformation.
type Windows struct {
	cmd    CommandRunner
	reg    RegistryReader
	logger zerolog.Logger
}

// NewWindows creates the Windows backend.
func NewWindows(cmd CommandRunner, reg RegistryReader) *Windows {
	return &Windows{
		cmd:    cmd,
		reg:    reg,
		logger: log.With().Str("resolver", PlatformWindows).Logger(),
	}
}

func (w *Windows) Resolve(ctx context.Context, mountPath string) (string, error) {
	letter, err := driveLetter(mountPath)
	if err != nil {
		return "", Terminal(err)
	}

	// Both association queries run side by side and are always joined;
	// neither cancels the other.
	var partitions, drives map[string]string
	var g errgroup.Group
	g.Go(func() error {
		out, err := w.cmd.CombinedOutput(ctx, wmicCmd, logicalDiskAssocArgs...)
		if err != nil {
			return fmt.Errorf("failed to query logical disk partitions: %w", err)
		}
		partitions = parseAssociations(string(out), classDiskPartition, classLogicalDisk)
		return nil
	})
	g.Go(func() error {
		out, err := w.cmd.CombinedOutput(ctx, wmicCmd, diskDriveAssocArgs...)
		if err != nil {
			return fmt.Errorf("failed to query disk drive partitions: %w", err)
		}
		drives = parseAssociations(string(out), classDiskDrive, classDiskPartition)
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err //nolint:wrapcheck // already wrapped in the goroutines
	}

	partition, ok := partitions[letter]
	if !ok {
		return "", fmt.Errorf("%w: no partition for %s", ErrNoAssociation, letter)
	}
	physical, ok := drives[partition]
	if !ok {
		return "", fmt.Errorf("%w: no disk drive for %q", ErrNoAssociation, partition)
	}

	pnpID, err := w.pnpDeviceID(ctx, physical)
	if err != nil {
		return "", err
	}

	containerID, ok, err := w.reg.ReadValue(EnumKey+`\`+pnpID, valueContainerID)
	if err != nil {
		return "", fmt.Errorf("failed to read ContainerID of %s: %w", pnpID, err)
	}
	if !ok || containerID == "" {
		w.logger.Debug().Str("pnp_device_id", pnpID).Msg("device has no ContainerID")
		return "", nil
	}

	return w.findLocation(containerID)
}

func (w *Windows) Diagnose(ctx context.Context) []Probe {
	probes := []Probe{
		runProbe(ctx, w.cmd, wmicCmd, logicalDiskAssocArgs...),
		runProbe(ctx, w.cmd, wmicCmd, diskDriveAssocArgs...),
	}

	keys, err := w.reg.ListSubkeys(USBEnumKey)
	probes = append(probes, Probe{
		Name:   "registry " + USBEnumKey,
		Output: strings.Join(keys, "\n"),
		Err:    err,
	})
	return probes
}

func (w *Windows) pnpDeviceID(ctx context.Context, physical string) (string, error) {
	out, err := w.cmd.CombinedOutput(ctx, wmicCmd,
		"DiskDrive", "where", "DeviceID='"+physical+"'", "get", "PNPDeviceID")
	if err != nil {
		return "", fmt.Errorf("failed to query PNPDeviceID of %s: %w", physical, err)
	}
	id := parsePNPDeviceID(string(out))
	if id == "" {
		return "", fmt.Errorf("no PNPDeviceID reported for %s", physical)
	}
	return id, nil
}

// findLocation scans USB\<device>\<instance> keys for the one whose values
// mention containerID.
func (w *Windows) findLocation(containerID string) (string, error) {
	devices, err := w.reg.ListSubkeys(USBEnumKey)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", USBEnumKey, err)
	}

	needle := strings.ToLower(containerID)
	for _, device := range devices {
		instances, err := w.reg.ListSubkeys(device)
		if err != nil {
			return "", fmt.Errorf("failed to list %s: %w", device, err)
		}
		for _, instance := range instances {
			values, err := w.reg.ReadValues(instance)
			if err != nil {
				return "", fmt.Errorf("failed to read %s: %w", instance, err)
			}
			if !anyValueContains(values, needle) {
				continue
			}
			if loc, ok := values[valueLocation]; ok {
				return strings.TrimSpace(loc), nil
			}
		}
	}

	return "", fmt.Errorf("%w: container %s", ErrLocationNotFound, containerID)
}

func anyValueContains(values map[string]string, lowerNeedle string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), lowerNeedle) {
			return true
		}
	}
	return false
}

// driveLetter returns the "E:" prefix of a Windows mount path.
func driveLetter(mountPath string) (string, error) {
	if len(mountPath) < 2 || mountPath[1] != ':' {
		return "", errors.New("mount path has no drive letter: " + mountPath)
	}
	return strings.ToUpper(mountPath[:2]), nil
}

// parseAssociations reads `wmic ... assoc` output, where each owner object
// path is followed by the paths of its associated objects:
//
//	\\HOST\ROOT\CIMV2:Win32_DiskPartition.DeviceID="Disk #2, Partition #0"
//	\\HOST\ROOT\CIMV2:Win32_LogicalDisk.DeviceID="E:"
//
// It maps every member id to the owner id seen before it. The column layout
// of wmic output varies by locale and version, so only the object paths are
// relied on.
func parseAssociations(out, ownerClass, memberClass string) map[string]string {
	assoc := make(map[string]string)
	var owner string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, `\\`) {
			continue
		}
		if id, ok := objectID(line, ownerClass); ok {
			owner = id
		}
		if id, ok := objectID(line, memberClass); ok && owner != "" {
			assoc[id] = owner
		}
	}
	return assoc
}

func objectID(line, class string) (string, bool) {
	_, rest, found := strings.Cut(line, class+`="`)
	if !found {
		return "", false
	}
	id, _, found := strings.Cut(rest, `"`)
	if !found {
		return "", false
	}
	if class == classLogicalDisk {
		id = strings.ToUpper(id)
	}
	return id, true
}

// parsePNPDeviceID returns the first value line after the PNPDeviceID header.
func parsePNPDeviceID(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "PNPDeviceID") {
			continue
		}
		return line
	}
	return ""
}
