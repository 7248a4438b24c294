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

// Package config holds application configuration and its JSON file loader.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/carverauto/devmon/pkg/logger"
	"github.com/carverauto/devmon/pkg/models"
)

const (
	defaultAppDirName   = ".devmon"
	defaultDevicesFile  = "devices.json"
	defaultLogFile      = "devmon.log"
	defaultCheckEvery   = 5 * time.Minute
	defaultPingTimeout  = 2 * time.Second
	defaultTaskAutoName = "auto_check"
)

// defaultFallbackPorts is the ordered list of TCP ports a probe tries after
// the device's configured port.
var defaultFallbackPorts = []int{443, 80, 22, 8080}

// Config represents application configuration.
type Config struct {
	DataDir       string          `json:"data_dir,omitempty"`
	CheckInterval models.Duration `json:"check_interval,omitempty"`
	AutoCheck     *bool           `json:"auto_check,omitempty"`
	FallbackPorts []int           `json:"fallback_ports,omitempty"`
	PingTimeout   models.Duration `json:"ping_timeout,omitempty"`
	Logging       *logger.Config  `json:"logging,omitempty"`
}

// Validate fills in defaults for anything the config file left unset.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			// Fall back to the working directory when HOME is unset.
			home = "."
		}

		c.DataDir = filepath.Join(home, defaultAppDirName)
	}

	if time.Duration(c.CheckInterval) == 0 {
		c.CheckInterval = models.Duration(defaultCheckEvery)
	}

	if time.Duration(c.PingTimeout) == 0 {
		c.PingTimeout = models.Duration(defaultPingTimeout)
	}

	if c.FallbackPorts == nil {
		c.FallbackPorts = append([]int(nil), defaultFallbackPorts...)
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
		c.Logging.Output = ""
	}

	// A logging block that leaves output unset still gets the app log file.
	if c.Logging.Output == "" {
		c.Logging.Output = c.LogFile()
	}

	c.Logging.ApplyEnvOverrides()

	return nil
}

// DevicesFile is the path of the JSON device store.
func (c *Config) DevicesFile() string {
	return filepath.Join(c.DataDir, defaultDevicesFile)
}

// LogFile is the path of the application log.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, defaultLogFile)
}

// AutoCheckEnabled reports whether the repeating auto-check task should be
// scheduled at startup. Defaults to true when unset.
func (c *Config) AutoCheckEnabled() bool {
	return c.AutoCheck == nil || *c.AutoCheck
}

// AutoCheckTaskName is the scheduler task name used for the periodic check.
func (*Config) AutoCheckTaskName() string {
	return defaultTaskAutoName
}

// EnsureDataDir creates the application data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o700)
}
