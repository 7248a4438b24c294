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

package controller

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/devmon/pkg/bus"
	"github.com/carverauto/devmon/pkg/logger"
	"github.com/carverauto/devmon/pkg/models"
	"github.com/carverauto/devmon/pkg/service"
	"github.com/carverauto/devmon/pkg/store"
)

type staticProber struct {
	status models.Status
}

func (p *staticProber) Probe(_ context.Context, _ *models.Device) models.Status {
	return p.status
}

func newTestController(t *testing.T, status models.Status) (*Controller, *bus.Bus) {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "devices.json"), logger.NewTestLogger())
	require.NoError(t, err)

	svc := service.New(st, &staticProber{status: status}, logger.NewTestLogger())
	b := bus.New(logger.NewTestLogger())

	return New(svc, b, logger.NewTestLogger()), b
}

func collectEvents(b *bus.Bus, kinds ...bus.EventKind) *[]bus.Event {
	events := &[]bus.Event{}

	for _, kind := range kinds {
		b.Subscribe(kind, func(e bus.Event) { *events = append(*events, e) })
	}

	return events
}

func TestAddDevicePublishesAdded(t *testing.T) {
	ctrl, b := newTestController(t, models.StatusOnline)
	events := collectEvents(b, bus.EventDeviceAdded, bus.EventDeviceAddFailed)

	assert.True(t, ctrl.AddDevice("r1", "10.0.0.1", 80, 5))

	require.Len(t, *events, 1)
	assert.Equal(t, bus.EventDeviceAdded, (*events)[0].Kind)
	assert.Equal(t, "r1", (*events)[0].DeviceName)
}

func TestAddDevicePublishesFailedOnDuplicate(t *testing.T) {
	ctrl, b := newTestController(t, models.StatusOnline)

	require.True(t, ctrl.AddDevice("r1", "10.0.0.1", 80, 5))

	events := collectEvents(b, bus.EventDeviceAdded, bus.EventDeviceAddFailed)

	assert.False(t, ctrl.AddDevice("r1", "10.0.0.2", 80, 5))

	require.Len(t, *events, 1)
	assert.Equal(t, bus.EventDeviceAddFailed, (*events)[0].Kind)
}

func TestRemoveDevicePublishesOutcome(t *testing.T) {
	ctrl, b := newTestController(t, models.StatusOnline)
	events := collectEvents(b, bus.EventDeviceRemoved, bus.EventDeviceRemoveFailed)

	require.True(t, ctrl.AddDevice("r1", "10.0.0.1", 80, 5))

	assert.True(t, ctrl.RemoveDevice("r1"))
	assert.False(t, ctrl.RemoveDevice("r1"))

	require.Len(t, *events, 2)
	assert.Equal(t, bus.EventDeviceRemoved, (*events)[0].Kind)
	assert.Equal(t, bus.EventDeviceRemoveFailed, (*events)[1].Kind)
}

func TestCheckAllDevicesPublishesChecked(t *testing.T) {
	ctrl, b := newTestController(t, models.StatusOffline)
	events := collectEvents(b, bus.EventDevicesChecked)

	require.True(t, ctrl.AddDevice("r1", "203.0.113.1", 80, 5))

	ctrl.CheckAllDevices(context.Background())

	require.Len(t, *events, 1)
	require.Len(t, (*events)[0].Devices, 1)
	assert.Equal(t, models.StatusOffline, (*events)[0].Devices[0].IsOnline)
}

func TestGetDevices(t *testing.T) {
	ctrl, _ := newTestController(t, models.StatusOnline)

	assert.Empty(t, ctrl.GetDevices())

	require.True(t, ctrl.AddDevice("r1", "10.0.0.1", 80, 5))
	assert.Len(t, ctrl.GetDevices(), 1)
}
