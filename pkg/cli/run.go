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

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/portwatch/pkg/config"
	"github.com/ZaparooProject/portwatch/pkg/detector"
	"github.com/ZaparooProject/portwatch/pkg/portresolver"
	"github.com/ZaparooProject/portwatch/pkg/service"
	"github.com/rs/zerolog/log"
)

// WriteDiagnostic writes the raw output of each probe to out. Probe failures
// are reported inline and do not fail the write.
func WriteDiagnostic(out io.Writer, probes []portresolver.Probe) error {
	for _, probe := range probes {
		_, err := fmt.Fprintf(out, "==> %s\n%s\n", probe.Name, probe.Output)
		if err != nil {
			return fmt.Errorf("failed to write diagnostic output: %w", err)
		}
		if probe.Err != nil {
			_, err = fmt.Fprintf(out, "error: %v\n", probe.Err)
			if err != nil {
				return fmt.Errorf("failed to write diagnostic output: %w", err)
			}
		}
	}
	return nil
}

// RunApp runs the detector until SIGINT or SIGTERM, or runs the diagnostic
// dump and returns when -diagnose is set.
func RunApp(cfg *config.Instance, flags *Flags, out io.Writer) (returnErr error) {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n", r)
			log.Error().Msgf("panic recovered: %v", r)
			returnErr = fmt.Errorf("panic: %v", r)
		}
	}()

	deps := service.Deps{
		AllowUnsupported: *flags.AllowUnsupported,
	}

	if *flags.Diagnose {
		det, err := service.NewDetector(cfg, deps)
		if err != nil {
			return err //nolint:wrapcheck // already wrapped by service
		}
		return WriteDiagnostic(out, det.RunDiagnostic(context.Background()))
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	deps.Listeners = []detector.LifecycleListener{service.LogEvents}
	_, stop, done, err := service.Start(cfg, deps)
	if err != nil {
		log.Error().Err(err).Msg("error starting service")
		return fmt.Errorf("error starting service: %w", err)
	}
	defer func() {
		if err := stop(); err != nil {
			log.Error().Msgf("error stopping service: %s", err)
		}
	}()

	select {
	case sig := <-sigs:
		log.Info().Stringer("signal", sig).Msg("shutting down")
	case <-done:
		log.Info().Msg("service shut down internally")
	}

	return nil
}
