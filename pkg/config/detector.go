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

package config

import (
	"fmt"
	"time"
)

const (
	DefaultPollInterval = 200 * time.Millisecond
	DefaultMaxAttempts  = 6
	DefaultVolumesPath  = "/Volumes"
)

type Detector struct {
	VolumesPath  string   `toml:"volumes_path"`
	PollInterval Duration `toml:"poll_interval" validate:"gt=0"`
	MaxAttempts  int      `toml:"max_attempts" validate:"gte=1"`
	WatchVolumes bool     `toml:"watch_volumes"`
}

// Duration is a time.Duration stored in TOML as a string like "200ms".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (c *Instance) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Detector.PollInterval)
}

// SetPollInterval ignores non-positive intervals.
func (c *Instance) SetPollInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Detector.PollInterval = Duration(interval)
}

func (c *Instance) MaxAttempts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Detector.MaxAttempts
}

// SetMaxAttempts ignores values below 1.
func (c *Instance) SetMaxAttempts(n int) {
	if n < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Detector.MaxAttempts = n
}

func (c *Instance) VolumesPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Detector.VolumesPath == "" {
		return DefaultVolumesPath
	}
	return c.vals.Detector.VolumesPath
}

func (c *Instance) SetVolumesPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Detector.VolumesPath = path
}

func (c *Instance) WatchVolumes() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Detector.WatchVolumes
}

func (c *Instance) SetWatchVolumes(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Detector.WatchVolumes = enabled
}
