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

// Package models defines the device record and its field-level invariants.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the tri-state reachability of a device. A device that has never
// been probed is StatusUnknown, which is distinct from a failed probe.
type Status int

const (
	StatusUnknown Status = iota
	StatusOnline
	StatusOffline
)

func (s Status) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status as null/true/false so the store file keeps
// the nullable-boolean shape of the is_online field.
func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case StatusOnline:
		return []byte("true"), nil
	case StatusOffline:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (s *Status) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = StatusUnknown
	case bytes.Equal(data, []byte("true")):
		*s = StatusOnline
	case bytes.Equal(data, []byte("false")):
		*s = StatusOffline
	default:
		return fmt.Errorf("%w: is_online must be null, true or false, got %s", ErrValidation, data)
	}

	return nil
}

// Device represents one monitored network endpoint.
type Device struct {
	Name        string     `json:"name"`
	IPAddress   string     `json:"ip_address"`
	Port        int        `json:"port"`
	Timeout     int        `json:"timeout"` // seconds
	Enabled     bool       `json:"enabled"`
	CreatedAt   time.Time  `json:"created_at"`
	LastChecked *time.Time `json:"last_checked"`
	IsOnline    Status     `json:"is_online"`
}

const (
	// DefaultPort is used when an add request leaves the port unset.
	DefaultPort = 80
	// DefaultTimeout is the per-connection timeout in seconds when unset.
	DefaultTimeout = 5
)

// NewDevice validates every field and constructs a device. No Device value
// reaches the store without passing through here or UnmarshalJSON-side checks.
func NewDevice(name, ipAddress string, port, timeout int) (*Device, error) {
	name, err := ValidateName(name)
	if err != nil {
		return nil, err
	}

	ipAddress, err = ValidateIP(ipAddress)
	if err != nil {
		return nil, err
	}

	if port, err = ValidatePort(port); err != nil {
		return nil, err
	}

	if timeout, err = ValidateTimeout(timeout); err != nil {
		return nil, err
	}

	return &Device{
		Name:      name,
		IPAddress: ipAddress,
		Port:      port,
		Timeout:   timeout,
		Enabled:   true,
		CreatedAt: time.Now(),
		IsOnline:  StatusUnknown,
	}, nil
}

// ToRecord serializes the device to its persisted JSON form.
func (d *Device) ToRecord() ([]byte, error) {
	return json.Marshal(d)
}

// FromRecord deserializes a persisted record back into a device.
func FromRecord(data []byte) (*Device, error) {
	var d Device
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}

	return &d, nil
}

func (d *Device) String() string {
	return fmt.Sprintf("Device(name=%s, ip_address=%s, status=%s)", d.Name, d.IPAddress, d.IsOnline)
}
