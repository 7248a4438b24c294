/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package probe

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/carverauto/devmon/pkg/logger"
	"github.com/carverauto/devmon/pkg/models"
)

const (
	minWorkers = 2
	maxWorkers = 32
)

// CheckFunc probes a single device and records the outcome.
type CheckFunc func(ctx context.Context, device *models.Device)

// Checker fans a check function out over every enabled device using a
// bounded worker pool. Disabled devices are skipped entirely.
type Checker struct {
	logger logger.Logger
}

// NewChecker creates a fan-out checker.
func NewChecker(log logger.Logger) *Checker {
	return &Checker{logger: log}
}

// Run probes every enabled device concurrently and returns the number of
// devices probed, only after every submitted probe has completed. A panic
// inside one probe is recovered and logged; sibling probes are unaffected.
func (c *Checker) Run(ctx context.Context, devices []*models.Device, check CheckFunc) int {
	enabled := make([]*models.Device, 0, len(devices))

	for _, d := range devices {
		if d.Enabled {
			enabled = append(enabled, d)
		}
	}

	if len(enabled) == 0 {
		return 0
	}

	runID := uuid.New().String()
	workers := clampWorkers(len(enabled))

	c.logger.Info().
		Str("run_id", runID).
		Int("devices", len(enabled)).
		Int("workers", workers).
		Msg("Starting device check run")

	workCh := make(chan *models.Device, len(enabled))

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for d := range workCh {
				c.checkOne(ctx, runID, d, check)
			}
		}()
	}

	for _, d := range enabled {
		workCh <- d
	}

	close(workCh)
	wg.Wait()

	c.logger.Info().Str("run_id", runID).Int("devices", len(enabled)).Msg("Device check run complete")

	return len(enabled)
}

// checkOne isolates a single probe so one misbehaving device cannot abort
// the run.
func (c *Checker) checkOne(ctx context.Context, runID string, device *models.Device, check CheckFunc) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Str("run_id", runID).
				Str("device", device.Name).
				Interface("panic", r).
				Msg("Recovered panic during device check")
		}
	}()

	check(ctx, device)
}

func clampWorkers(n int) int {
	if n < minWorkers {
		return minWorkers
	}

	if n > maxWorkers {
		return maxWorkers
	}

	return n
}
