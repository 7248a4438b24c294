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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 5*time.Minute, time.Duration(cfg.CheckInterval))
	assert.Equal(t, 2*time.Second, time.Duration(cfg.PingTimeout))
	assert.Equal(t, []int{443, 80, 22, 8080}, cfg.FallbackPorts)
	assert.True(t, cfg.AutoCheckEnabled())
	require.NotNil(t, cfg.Logging)
	assert.Equal(t, cfg.LogFile(), cfg.Logging.Output)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"data_dir": "/tmp/devmon-test",
		"check_interval": "30s",
		"auto_check": false,
		"fallback_ports": [8443],
		"ping_timeout": "1s",
		"logging": {"level": "debug", "output": "stderr"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/devmon-test", cfg.DataDir)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.CheckInterval))
	assert.False(t, cfg.AutoCheckEnabled())
	assert.Equal(t, []int{8443}, cfg.FallbackPorts)
	assert.Equal(t, time.Second, time.Duration(cfg.PingTimeout))
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join("/tmp/devmon-test", "devices.json"), cfg.DevicesFile())
}

func TestLoadPartialLoggingBlockDefaultsToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"logging": {"level": "debug"}}`), 0o600))

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, cfg.LogFile(), cfg.Logging.Output)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{bad"), 0o600))

	_, err := Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLogLevelEnvOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "trace")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"logging": {"level": "info"}}`), 0o600))

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "trace", cfg.Logging.Level)
}
