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

// Package probe determines device reachability using a three-tier strategy:
// TCP to the configured port, TCP to a fixed list of fallback ports, then a
// single ICMP echo via the system ping utility.
package probe

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"time"

	"github.com/carverauto/devmon/pkg/logger"
	"github.com/carverauto/devmon/pkg/models"
)

const (
	defaultPingTimeout = 2 * time.Second
	minProbeTimeout    = 1 * time.Second
)

// defaultFallbackPorts are tried in order after the device's own port.
var defaultFallbackPorts = []int{443, 80, 22, 8080}

// Prober runs multi-tier reachability checks for single devices.
type Prober struct {
	fallbackPorts []int
	pingTimeout   time.Duration
	logger        logger.Logger
}

// NewProber configures a prober. Zero values select the defaults: fallback
// ports 443, 80, 22, 8080 and a 2s ping timeout.
func NewProber(fallbackPorts []int, pingTimeout time.Duration, log logger.Logger) *Prober {
	if fallbackPorts == nil {
		fallbackPorts = defaultFallbackPorts
	}

	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}

	return &Prober{
		fallbackPorts: fallbackPorts,
		pingTimeout:   pingTimeout,
		logger:        log,
	}
}

// Probe determines the device's current status. Tiers run strictly in order
// and short-circuit on the first success. Resolution failures, refusals and
// timeouts all count as tier failure; nothing here propagates as an error.
func (p *Prober) Probe(ctx context.Context, device *models.Device) models.Status {
	timeout := time.Duration(device.Timeout) * time.Second
	if timeout < minProbeTimeout {
		timeout = minProbeTimeout
	}

	if p.checkPort(ctx, device.IPAddress, device.Port, timeout) {
		p.logger.Debug().Str("device", device.Name).Int("port", device.Port).Msg("Device reachable on configured port")
		return models.StatusOnline
	}

	for _, port := range p.fallbackPorts {
		if port == device.Port {
			// Already tried above.
			continue
		}

		if p.checkPort(ctx, device.IPAddress, port, timeout) {
			p.logger.Debug().Str("device", device.Name).Int("port", port).Msg("Device reachable on fallback port")
			return models.StatusOnline
		}
	}

	if p.ping(ctx, device.IPAddress) {
		p.logger.Debug().Str("device", device.Name).Msg("Device reachable via ping")
		return models.StatusOnline
	}

	p.logger.Debug().Str("device", device.Name).Str("ip", device.IPAddress).Msg("Device unreachable on all tiers")

	return models.StatusOffline
}

// checkPort attempts one TCP connect bounded by timeout. Any error, DNS
// included, means the tier failed.
func (p *Prober) checkPort(ctx context.Context, host string, port int, timeout time.Duration) bool {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var dialer net.Dialer

	conn, err := dialer.DialContext(probeCtx, "tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return false
	}

	if err := conn.Close(); err != nil {
		p.logger.Error().Err(err).Msg("failed to close connection")
	}

	return true
}

// ping sends one ICMP echo through the platform ping binary. The argument
// spelling differs per platform (see ping_unix.go / ping_windows.go) but the
// semantics match: one packet, bounded wait.
func (p *Prober) ping(ctx context.Context, host string) bool {
	pingCtx, cancel := context.WithTimeout(ctx, p.pingTimeout+time.Second)
	defer cancel()

	cmd := exec.CommandContext(pingCtx, "ping", pingArgs(host, p.pingTimeout)...)

	if err := cmd.Run(); err != nil {
		return false
	}

	return true
}
