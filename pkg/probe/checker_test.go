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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/devmon/pkg/logger"
	"github.com/carverauto/devmon/pkg/models"
)

func deviceFleet(t *testing.T, enabled, disabled int) []*models.Device {
	t.Helper()

	devices := make([]*models.Device, 0, enabled+disabled)

	for i := 0; i < enabled+disabled; i++ {
		d, err := models.NewDevice(
			fmt.Sprintf("dev-%d", i),
			fmt.Sprintf("10.0.0.%d", i+1),
			80, 5)
		require.NoError(t, err)

		d.Enabled = i < enabled
		devices = append(devices, d)
	}

	return devices
}

func TestRunProbesOnlyEnabledDevices(t *testing.T) {
	devices := deviceFleet(t, 5, 3)
	checker := NewChecker(logger.NewTestLogger())

	var mu sync.Mutex

	probed := make(map[string]int)

	n := checker.Run(context.Background(), devices, func(_ context.Context, d *models.Device) {
		mu.Lock()
		probed[d.Name]++
		mu.Unlock()
	})

	assert.Equal(t, 5, n)
	assert.Len(t, probed, 5)

	for _, d := range devices {
		if d.Enabled {
			assert.Equal(t, 1, probed[d.Name])
		} else {
			assert.Zero(t, probed[d.Name], "disabled device %s was probed", d.Name)
			assert.Nil(t, d.LastChecked)
			assert.Equal(t, models.StatusUnknown, d.IsOnline)
		}
	}
}

func TestRunReturnsAfterAllProbesComplete(t *testing.T) {
	devices := deviceFleet(t, 40, 0)
	checker := NewChecker(logger.NewTestLogger())

	var completed int64

	var mu sync.Mutex

	checker.Run(context.Background(), devices, func(_ context.Context, _ *models.Device) {
		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		completed++
		mu.Unlock()
	})

	mu.Lock()
	defer mu.Unlock()
	assert.EqualValues(t, 40, completed)
}

func TestRunIsolatesPanics(t *testing.T) {
	devices := deviceFleet(t, 4, 0)
	checker := NewChecker(logger.NewTestLogger())

	var mu sync.Mutex

	probed := 0

	n := checker.Run(context.Background(), devices, func(_ context.Context, d *models.Device) {
		mu.Lock()
		probed++
		mu.Unlock()

		if d.Name == "dev-0" {
			panic("boom")
		}
	})

	assert.Equal(t, 4, n)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 4, probed)
}

func TestRunNoEnabledDevices(t *testing.T) {
	devices := deviceFleet(t, 0, 3)
	checker := NewChecker(logger.NewTestLogger())

	n := checker.Run(context.Background(), devices, func(_ context.Context, _ *models.Device) {
		t.Error("check func should not be called")
	})

	assert.Zero(t, n)
}

func TestClampWorkers(t *testing.T) {
	tests := []struct {
		devices int
		want    int
	}{
		{1, 2},
		{2, 2},
		{10, 10},
		{32, 32},
		{100, 32},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, clampWorkers(tt.devices))
	}
}
