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

// Package controller is the command boundary between the presentation layer
// and the device service, publishing outcome events on the bus.
package controller

import (
	"context"

	"github.com/carverauto/devmon/pkg/bus"
	"github.com/carverauto/devmon/pkg/logger"
	"github.com/carverauto/devmon/pkg/models"
	"github.com/carverauto/devmon/pkg/service"
)

// Controller executes user commands against the device service.
type Controller struct {
	svc    *service.Service
	bus    *bus.Bus
	logger logger.Logger
}

// New wires a controller to the service and event bus.
func New(svc *service.Service, b *bus.Bus, log logger.Logger) *Controller {
	c := &Controller{
		svc:    svc,
		bus:    b,
		logger: log,
	}

	c.logger.Info().Msg("Controller initialized")

	return c
}

// AddDevice adds a device and publishes device_added or device_add_failed.
func (c *Controller) AddDevice(name, ipAddress string, port, timeout int) bool {
	ok := c.svc.AddDevice(name, ipAddress, port, timeout)

	kind := bus.EventDeviceAddFailed
	if ok {
		kind = bus.EventDeviceAdded
	}

	c.bus.Publish(bus.Event{Kind: kind, DeviceName: name})

	return ok
}

// RemoveDevice removes a device and publishes device_removed or
// device_remove_failed.
func (c *Controller) RemoveDevice(name string) bool {
	ok := c.svc.RemoveDevice(name)

	kind := bus.EventDeviceRemoveFailed
	if ok {
		kind = bus.EventDeviceRemoved
	}

	c.bus.Publish(bus.Event{Kind: kind, DeviceName: name})

	return ok
}

// CheckAllDevices runs a fan-out check over all enabled devices, then
// publishes devices_checked with the refreshed device list.
func (c *Controller) CheckAllDevices(ctx context.Context) {
	c.svc.CheckAllDevices(ctx)

	c.bus.Publish(bus.Event{
		Kind:    bus.EventDevicesChecked,
		Devices: c.svc.GetAllDevices(),
	})
}

// GetDevices returns the current device list.
func (c *Controller) GetDevices() []*models.Device {
	return c.svc.GetAllDevices()
}
