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

// Package service manages the device collection and drives status checks.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/carverauto/devmon/pkg/logger"
	"github.com/carverauto/devmon/pkg/models"
	"github.com/carverauto/devmon/pkg/probe"
	"github.com/carverauto/devmon/pkg/store"
)

// Prober determines the current status of one device.
type Prober interface {
	Probe(ctx context.Context, device *models.Device) models.Status
}

// Service owns the in-session device list. The store stays the source of
// truth for persistence: the cache is reloaded from it after every mutation
// rather than hand-patched.
type Service struct {
	store   *store.Store
	prober  Prober
	checker *probe.Checker

	mu      sync.RWMutex
	devices []*models.Device

	logger logger.Logger
}

// New loads the device list from the store and wires the prober in.
func New(st *store.Store, prober Prober, log logger.Logger) *Service {
	s := &Service{
		store:   st,
		prober:  prober,
		checker: probe.NewChecker(log),
		logger:  log,
	}

	s.reload()
	s.logger.Info().Int("devices", len(s.devices)).Msg("Device service loaded devices")

	return s
}

func (s *Service) reload() {
	devices := s.store.LoadAll()

	s.mu.Lock()
	s.devices = devices
	s.mu.Unlock()
}

// GetAllDevices returns a snapshot of the managed devices.
func (s *Service) GetAllDevices() []*models.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Device, len(s.devices))
	copy(out, s.devices)

	return out
}

// AddDevice validates and persists a new device. Returns false on invalid
// input, a duplicate name, or a store failure; the persisted collection is
// unchanged in every failure case.
func (s *Service) AddDevice(name, ipAddress string, port, timeout int) bool {
	device, err := models.NewDevice(name, ipAddress, port, timeout)
	if err != nil {
		s.logger.Error().Err(err).Str("device", name).Msg("Invalid device data")
		return false
	}

	s.mu.RLock()

	for _, d := range s.devices {
		if d.Name == device.Name {
			s.mu.RUnlock()
			s.logger.Warn().Str("device", device.Name).Msg("Device already exists")

			return false
		}
	}

	s.mu.RUnlock()

	if err := s.store.AddDevice(device); err != nil {
		s.logger.Error().Err(err).Str("device", device.Name).Msg("Error adding device")
		return false
	}

	s.reload()
	s.logger.Info().
		Str("device", device.Name).
		Str("ip", device.IPAddress).
		Int("port", device.Port).
		Msg("Added device")

	return true
}

// RemoveDevice removes a device by name. Removing an absent name reports
// failure and leaves the store unchanged.
func (s *Service) RemoveDevice(name string) bool {
	ok := s.store.RemoveDevice(name)

	s.reload()

	if ok {
		s.logger.Info().Str("device", name).Msg("Removed device")
	}

	return ok
}

// EnableDevice marks a device for monitoring.
func (s *Service) EnableDevice(name string) bool {
	return s.setEnabled(name, true)
}

// DisableDevice excludes a device from monitoring without removing it.
func (s *Service) DisableDevice(name string) bool {
	return s.setEnabled(name, false)
}

func (s *Service) setEnabled(name string, enabled bool) bool {
	device, ok := s.store.GetDevice(name)
	if !ok {
		s.logger.Warn().Str("device", name).Msg("Device not found")
		return false
	}

	device.Enabled = enabled

	ok = s.store.UpdateDevice(device)

	s.reload()

	return ok
}

// CheckDeviceStatus probes one device and persists the outcome. Success or
// failure, is_online and last_checked are updated and written through the
// store. An unexpected error mid-probe counts as a failed check: the device
// is marked offline, not skipped.
func (s *Service) CheckDeviceStatus(ctx context.Context, device *models.Device) bool {
	status := s.safeProbe(ctx, device)
	now := time.Now()

	device.IsOnline = status
	device.LastChecked = &now

	if !s.store.UpdateDevice(device) {
		s.logger.Warn().Str("device", device.Name).Msg("Failed to persist device status")
	}

	s.logger.Debug().Str("device", device.Name).Str("status", status.String()).Msg("Device checked")

	return status == models.StatusOnline
}

// safeProbe isolates the prober: a panic mid-probe resolves to offline.
func (s *Service) safeProbe(ctx context.Context, device *models.Device) (status models.Status) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("device", device.Name).
				Interface("panic", r).
				Msg("Recovered panic while probing device")

			status = models.StatusOffline
		}
	}()

	return s.prober.Probe(ctx, device)
}

// CheckAllDevices probes every enabled device concurrently and returns once
// all probes have completed. Disabled devices are neither probed nor touched.
func (s *Service) CheckAllDevices(ctx context.Context) {
	devices := s.GetAllDevices()

	probed := s.checker.Run(ctx, devices, func(ctx context.Context, d *models.Device) {
		s.CheckDeviceStatus(ctx, d)
	})

	s.logger.Info().Int("checked", probed).Msg("Checked status of enabled devices")
}
