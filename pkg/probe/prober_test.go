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
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/devmon/pkg/logger"
	"github.com/carverauto/devmon/pkg/models"
)

// listenLocal opens a loopback listener and returns its port.
func listenLocal(t *testing.T) (net.Listener, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return ln, port
}

// closedLocalPort returns a loopback port that was just released, so a
// connect to it is refused quickly.
func closedLocalPort(t *testing.T) int {
	t.Helper()

	ln, port := listenLocal(t)
	require.NoError(t, ln.Close())

	return port
}

func testDevice(t *testing.T, port int) *models.Device {
	t.Helper()

	d, err := models.NewDevice("probe-target", "127.0.0.1", port, 1)
	require.NoError(t, err)

	return d
}

func TestProbeConfiguredPort(t *testing.T) {
	_, port := listenLocal(t)

	p := NewProber([]int{}, 100*time.Millisecond, logger.NewTestLogger())
	d := testDevice(t, port)

	assert.Equal(t, models.StatusOnline, p.Probe(context.Background(), d))
}

func TestProbeFallbackPort(t *testing.T) {
	_, openPort := listenLocal(t)
	closedPort := closedLocalPort(t)

	// Configured port refuses; the fallback list carries the open one.
	p := NewProber([]int{openPort}, 100*time.Millisecond, logger.NewTestLogger())
	d := testDevice(t, closedPort)

	assert.Equal(t, models.StatusOnline, p.Probe(context.Background(), d))
}

func TestProbeSkipsDuplicateFallbackPort(t *testing.T) {
	closedPort := closedLocalPort(t)

	// The only fallback equals the configured port, so tier two is a no-op
	// and the probe falls through to ping. An unroutable address keeps ping
	// from answering.
	p := NewProber([]int{closedPort}, 100*time.Millisecond, logger.NewTestLogger())

	d, err := models.NewDevice("dup-fallback", "203.0.113.1", closedPort, 1)
	require.NoError(t, err)

	assert.Equal(t, models.StatusOffline, p.Probe(context.Background(), d))
}

func TestProbeAllTiersFailMarksOffline(t *testing.T) {
	// TEST-NET-3 is unroutable in a closed test network; every tier times
	// out or is refused.
	p := NewProber([]int{}, 200*time.Millisecond, logger.NewTestLogger())

	d, err := models.NewDevice("unreachable", "203.0.113.1", 9, 1)
	require.NoError(t, err)

	assert.Equal(t, models.StatusOffline, p.Probe(context.Background(), d))
}

func TestProbeRespectsContextCancellation(t *testing.T) {
	p := NewProber([]int{}, 100*time.Millisecond, logger.NewTestLogger())

	d, err := models.NewDevice("cancelled", "203.0.113.1", 9, 300)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	status := p.Probe(ctx, d)

	assert.Equal(t, models.StatusOffline, status)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNewProberDefaults(t *testing.T) {
	p := NewProber(nil, 0, logger.NewTestLogger())

	assert.Equal(t, defaultFallbackPorts, p.fallbackPorts)
	assert.Equal(t, defaultPingTimeout, p.pingTimeout)
}
