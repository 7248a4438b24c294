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

package models

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrValidation is the sentinel wrapped by every field validation failure.
var ErrValidation = errors.New("validation failed")

var (
	errNameEmpty        = fmt.Errorf("%w: device name cannot be empty", ErrValidation)
	errNameTooLong      = fmt.Errorf("%w: device name cannot exceed %d characters", ErrValidation, maxNameLength)
	errNameInvalidChars = fmt.Errorf("%w: device name contains invalid characters "+
		"(only alphanumeric, hyphens, underscores, and periods are allowed)", ErrValidation)
	errIPEmpty = fmt.Errorf("%w: IP address cannot be empty", ErrValidation)
)

const (
	maxNameLength = 50
	minPort       = 1
	maxPort       = 65535
	minTimeout    = 1
	maxTimeout    = 300 // seconds
	ipv4Segments  = 4
)

// validDeviceName ensures device names only contain alphanumeric chars,
// hyphens, underscores, and periods.
var validDeviceName = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// validIPSegment matches one dotted-quad segment: 1-3 decimal digits.
var validIPSegment = regexp.MustCompile(`^\d{1,3}$`)

// ValidateName trims and validates a device name, returning the normalized value.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errNameEmpty
	}

	if len(name) > maxNameLength {
		return "", errNameTooLong
	}

	if !validDeviceName.MatchString(name) {
		return "", errNameInvalidChars
	}

	return name, nil
}

// ValidateIP validates dotted-quad IPv4 syntax with each octet in [0,255].
func ValidateIP(ip string) (string, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return "", errIPEmpty
	}

	segments := strings.Split(ip, ".")
	if len(segments) != ipv4Segments {
		return "", fmt.Errorf("%w: invalid IP address format: %s", ErrValidation, ip)
	}

	for _, segment := range segments {
		// Digits only, 1-3 of them; rejects "+1", "", and whitespace forms
		// while still allowing leading zeros like "01".
		if !validIPSegment.MatchString(segment) {
			return "", fmt.Errorf("%w: invalid IP address format: %s", ErrValidation, ip)
		}

		octet, err := strconv.Atoi(segment)
		if err != nil {
			return "", fmt.Errorf("%w: invalid IP address format: %s", ErrValidation, ip)
		}

		if octet > 255 {
			return "", fmt.Errorf("%w: IP octets must be between 0 and 255, got %d", ErrValidation, octet)
		}
	}

	return ip, nil
}

// ValidatePort validates a TCP port number.
func ValidatePort(port int) (int, error) {
	if port < minPort || port > maxPort {
		return 0, fmt.Errorf("%w: port must be between %d and %d, got %d",
			ErrValidation, minPort, maxPort, port)
	}

	return port, nil
}

// ValidateTimeout validates a per-connection timeout in seconds.
func ValidateTimeout(timeout int) (int, error) {
	if timeout < minTimeout {
		return 0, fmt.Errorf("%w: timeout must be at least %d second, got %d",
			ErrValidation, minTimeout, timeout)
	}

	if timeout > maxTimeout {
		return 0, fmt.Errorf("%w: timeout cannot exceed %d seconds, got %d",
			ErrValidation, maxTimeout, timeout)
	}

	return timeout, nil
}
