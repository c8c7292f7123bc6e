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

package detector

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/spf13/afero"
)

// DefaultVolumesPath is where macOS mounts removable volumes.
const DefaultVolumesPath = "/Volumes"

// LinuxRemovablePrefixes are the mount roots desktop automounters use for
// removable media.
var LinuxRemovablePrefixes = []string{"/media", "/run/media", "/mnt"}

// DirLister reports every entry of a directory as a mount point, the way
// /Volumes is laid out on macOS.
type DirLister struct {
	Fs   afero.Fs
	Root string
}

// ListVolumes returns the absolute path of every non-hidden entry under Root.
func (l *DirLister) ListVolumes(_ context.Context) ([]string, error) {
	entries, err := afero.ReadDir(l.Fs, l.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.Root, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		// .timemachine and similar are never user volumes
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(l.Root, entry.Name()))
	}
	return paths, nil
}

// PartitionsFunc matches disk.PartitionsWithContext.
type PartitionsFunc func(ctx context.Context, all bool) ([]disk.PartitionStat, error)

// PartitionLister reports the mount points of the host's partitions. With
// Prefixes set only mount points under one of them are reported.
type PartitionLister struct {
	// Partitions defaults to gopsutil's disk.PartitionsWithContext.
	Partitions PartitionsFunc
	Prefixes   []string
}

// ListVolumes lists mounted partitions. Windows drive mount points ("E:")
// are reported as drive roots ("E:\").
func (l *PartitionLister) ListVolumes(ctx context.Context) ([]string, error) {
	partitions := l.Partitions
	if partitions == nil {
		partitions = disk.PartitionsWithContext
	}

	stats, err := partitions(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	paths := make([]string, 0, len(stats))
	for _, stat := range stats {
		mp := stat.Mountpoint
		if mp == "" {
			continue
		}
		if len(mp) == 2 && mp[1] == ':' {
			mp += `\`
		}
		if len(l.Prefixes) > 0 && !underAny(mp, l.Prefixes) {
			continue
		}
		paths = append(paths, mp)
	}
	return paths, nil
}

func underAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		prefix = strings.TrimSuffix(prefix, "/")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// DefaultVolumeLister picks the host volume enumeration for goos. volumesPath
// only applies to darwin; empty means DefaultVolumesPath.
func DefaultVolumeLister(goos, volumesPath string) VolumeLister {
	switch goos {
	case "darwin":
		if volumesPath == "" {
			volumesPath = DefaultVolumesPath
		}
		return &DirLister{Fs: afero.NewOsFs(), Root: volumesPath}
	case "windows":
		return &PartitionLister{}
	default:
		return &PartitionLister{Prefixes: LinuxRemovablePrefixes}
	}
}
