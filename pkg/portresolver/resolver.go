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

// Package portresolver maps a mounted volume to the physical USB port it is
// plugged into. One backend is bound per process at startup, chosen by the
// host platform.
package portresolver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
)

const (
	PlatformDarwin  = "darwin"
	PlatformWindows = "windows"
)

// Resolver resolves the port of a mounted volume.
//
// Resolve returns a non-empty port on success, and ("", nil) when the device
// was recognized but has no locatable port; neither is retried. A
// TerminalError or ErrUnsupportedPlatform ends the attempt sequence; any
// other error is transient and worth retrying.
type Resolver interface {
	Resolve(ctx context.Context, mountPath string) (string, error)
	// Diagnose runs every probe command and returns the raw output, for
	// support dumps.
	Diagnose(ctx context.Context) []Probe
}

// Probe is the raw result of one diagnostic command.
type Probe struct {
	Err    error
	Name   string
	Output string
}

// CommandRunner runs a host command and returns its combined output.
type CommandRunner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RegistryReader reads the Windows registry. Paths are absolute and start
// with a root key such as HKLM.
type RegistryReader interface {
	// ReadValue returns ok=false when the key or value does not exist.
	ReadValue(path, name string) (value string, ok bool, err error)
	// ListSubkeys returns the absolute paths of the immediate child keys.
	ListSubkeys(path string) ([]string, error)
	// ReadValues returns every value of a key rendered as text.
	ReadValues(path string) (map[string]string, error)
}

// DeviceTreeParser decodes a property list into plain Go values:
// map[string]any for dictionaries, []any for arrays and string for strings.
type DeviceTreeParser interface {
	ParseDeviceTree(data []byte) (any, error)
}

// PlatformFunc reports the host platform as a GOOS value.
type PlatformFunc func() string

// HostPlatform returns runtime.GOOS.
func HostPlatform() string {
	return runtime.GOOS
}

// Deps are the external collaborators the backends call. Each backend only
// needs some of them.
type Deps struct {
	Commands   CommandRunner
	Registry   RegistryReader
	DeviceTree DeviceTreeParser
}

// New returns the resolver for the platform reported by detect. It fails with
// ErrUnsupportedPlatform when there is no backend for the host, and with a
// plain error when a collaborator the backend needs is missing.
func New(detect PlatformFunc, deps Deps) (Resolver, error) {
	if detect == nil {
		detect = HostPlatform
	}

	platform := detect()
	switch platform {
	case PlatformDarwin:
		if deps.Commands == nil || deps.DeviceTree == nil {
			return nil, errors.New("darwin resolver needs a command runner and a device tree parser")
		}
		return NewDarwin(deps.Commands, deps.DeviceTree), nil
	case PlatformWindows:
		if deps.Commands == nil || deps.Registry == nil {
			return nil, errors.New("windows resolver needs a command runner and a registry reader")
		}
		return NewWindows(deps.Commands, deps.Registry), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}
}

// Unsupported is a Resolver for hosts without a backend. Every Resolve call
// fails with ErrUnsupportedPlatform, so presence events still flow but no
// port is ever reported.
type Unsupported struct {
	Platform string
}

func (u Unsupported) Resolve(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, u.Platform)
}

func (u Unsupported) Diagnose(context.Context) []Probe {
	return []Probe{{
		Name: "platform",
		Err:  fmt.Errorf("%w: %s", ErrUnsupportedPlatform, u.Platform),
	}}
}

func runProbe(ctx context.Context, cmd CommandRunner, name string, args ...string) Probe {
	label := name
	for _, a := range args {
		label += " " + a
	}
	out, err := cmd.CombinedOutput(ctx, name, args...)
	return Probe{Name: label, Output: string(out), Err: err}
}
