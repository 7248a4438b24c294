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

// Package store persists the device collection as a single JSON document
// with atomic replace semantics.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/carverauto/devmon/pkg/logger"
	"github.com/carverauto/devmon/pkg/models"
)

// Store is the exclusive owner of the durable device collection. Every
// operation serializes through the store's mutex, so a probe worker updating
// status and a user removing a device never interleave partial writes.
type Store struct {
	path   string
	mu     sync.Mutex
	logger logger.Logger
}

// New creates a store backed by the JSON file at path. The parent directory
// is created if missing.
func New(path string, log logger.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := &Store{
		path:   path,
		logger: log,
	}

	s.logger.Info().Str("path", path).Msg("Device store initialized")

	return s, nil
}

// LoadAll reads the full device collection. A missing, unreadable, or
// corrupt file degrades to an empty collection, never an error: the store
// must not take the caller down with it.
func (s *Store) LoadAll() []*models.Device {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked()
}

// SaveAll writes the full collection atomically: serialize to a temp file in
// the same directory, sync to stable storage, then rename over the
// destination. On failure the temp file is removed and the previous durable
// file is left untouched.
func (s *Store) SaveAll(devices []*models.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked(devices)
}

// AddDevice appends a device to the persisted collection.
func (s *Store) AddDevice(device *models.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices := s.loadLocked()
	devices = append(devices, device)

	return s.saveLocked(devices)
}

// RemoveDevice removes a device by name. Returns false when the name is not
// present; the file is not rewritten in that case.
func (s *Store) RemoveDevice(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices := s.loadLocked()
	kept := devices[:0]

	for _, d := range devices {
		if d.Name != name {
			kept = append(kept, d)
		}
	}

	if len(kept) == len(devices) {
		s.logger.Warn().Str("device", name).Msg("Device not found")
		return false
	}

	if err := s.saveLocked(kept); err != nil {
		return false
	}

	s.logger.Info().Str("device", name).Msg("Removed device")

	return true
}

// UpdateDevice replaces the persisted record matching the device's name.
// Returns false when no record matches or the write fails.
func (s *Store) UpdateDevice(device *models.Device) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices := s.loadLocked()

	for i, d := range devices {
		if d.Name == device.Name {
			devices[i] = device

			if err := s.saveLocked(devices); err != nil {
				return false
			}

			s.logger.Debug().Str("device", device.Name).Msg("Updated device")

			return true
		}
	}

	s.logger.Warn().Str("device", device.Name).Msg("Device not found for update")

	return false
}

// GetDevice looks up a device by name.
func (s *Store) GetDevice(name string) (*models.Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.loadLocked() {
		if d.Name == name {
			return d, true
		}
	}

	return nil, false
}

func (s *Store) loadLocked() []*models.Device {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error().Err(err).Str("path", s.path).Msg("Error reading device store")
		}

		return []*models.Device{}
	}

	var devices []*models.Device

	if err := json.Unmarshal(data, &devices); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("Error decoding device store")
		return []*models.Device{}
	}

	if devices == nil {
		devices = []*models.Device{}
	}

	return devices
}

func (s *Store) saveLocked(devices []*models.Device) error {
	data, err := json.MarshalIndent(devices, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode devices: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpPath := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		_ = os.Remove(tmpPath)

		s.logger.Error().Err(err).Str("path", s.path).Msg("Error saving devices")

		return err
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)

		s.logger.Error().Err(err).Str("path", s.path).Msg("Error replacing device store")

		return fmt.Errorf("failed to replace device store: %w", err)
	}

	s.logger.Debug().Int("count", len(devices)).Msg("Saved devices to storage")

	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	return nil
}
