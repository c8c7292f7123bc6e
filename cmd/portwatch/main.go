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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ZaparooProject/portwatch/pkg/cli"
	"github.com/ZaparooProject/portwatch/pkg/config"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags()

	exit, err := flags.Pre(flag.CommandLine, os.Args[1:], os.Stdout)
	if err != nil {
		return err //nolint:wrapcheck // flag errors are already descriptive
	} else if exit {
		return nil
	}

	cfg, err := cli.Setup(
		afero.NewOsFs(),
		*flags.ConfigDir,
		*flags.LogDir,
		config.BaseDefaults,
		flags.LogWriters(),
	)
	if err != nil {
		return err //nolint:wrapcheck // already wrapped by cli
	}

	return cli.RunApp(cfg, flags, os.Stdout) //nolint:wrapcheck // already wrapped by cli
}
