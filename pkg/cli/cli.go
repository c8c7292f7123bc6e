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

// Package cli holds the flag handling and process setup shared by the
// portwatch entrypoints.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/portwatch/pkg/config"
	"github.com/ZaparooProject/portwatch/pkg/helpers"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Flags struct {
	ConfigDir        *string
	LogDir           *string
	Version          *bool
	Diagnose         *bool
	Daemon           *bool
	AllowUnsupported *bool
}

// SetupFlags defines the portwatch command line flags on the default flag set.
func SetupFlags() *Flags {
	return SetupFlagSet(flag.CommandLine)
}

// SetupFlagSet defines the portwatch command line flags on fs.
func SetupFlagSet(fs *flag.FlagSet) *Flags {
	return &Flags{
		ConfigDir: fs.String(
			"config-dir",
			DefaultConfigDir(),
			"directory holding "+config.CfgFile,
		),
		LogDir: fs.String(
			"log-dir",
			DefaultLogDir(),
			"directory for "+config.LogFile,
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		Diagnose: fs.Bool(
			"diagnose",
			false,
			"run every port resolution probe, print the raw output and exit",
		),
		Daemon: fs.Bool(
			"daemon",
			false,
			"also write logs to stderr",
		),
		AllowUnsupported: fs.Bool(
			"allow-unsupported",
			false,
			"report presence events on hosts without a port resolver",
		),
	}
}

// Pre parses the flags and actions any that don't need the environment set
// up. It reports true when the process should exit.
func (f *Flags) Pre(fs *flag.FlagSet, args []string, out io.Writer) (bool, error) {
	if err := fs.Parse(args); err != nil {
		return true, fmt.Errorf("failed to parse flags: %w", err)
	}

	if *f.Version {
		_, _ = fmt.Fprintf(out, "Portwatch v%s\n", config.AppVersion)
		return true, nil
	}
	return false, nil
}

// LogWriters returns the extra writers the global logger should use.
func (f *Flags) LogWriters() []io.Writer {
	if *f.Daemon {
		return []io.Writer{os.Stderr}
	}
	return nil
}

// DefaultConfigDir is the per-user config directory.
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

// DefaultLogDir is the per-user data directory, where the rotated log lives.
func DefaultLogDir() string {
	return filepath.Join(xdg.DataHome, config.AppName)
}

// Setup initialises logging and loads the config.
func Setup(
	fs afero.Fs,
	configDir string,
	logDir string,
	defaultConfig config.Values,
	writers []io.Writer,
) (*config.Instance, error) {
	err := helpers.InitLogging(logDir, false, writers)
	if err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(fs, configDir, defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().
		Str("version", config.AppVersion).
		Str("config", cfg.Path()).
		Msg("portwatch starting")

	return cfg, nil
}
