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

// Package bus is the in-process event dispatch boundary consumed by the
// presentation layer. Event kinds are a fixed enumeration, not strings.
package bus

import (
	"sync"

	"github.com/carverauto/devmon/pkg/logger"
	"github.com/carverauto/devmon/pkg/models"
)

// EventKind enumerates every event the core publishes.
type EventKind int

const (
	EventDeviceAdded EventKind = iota
	EventDeviceAddFailed
	EventDeviceRemoved
	EventDeviceRemoveFailed
	EventDevicesChecked
)

func (k EventKind) String() string {
	switch k {
	case EventDeviceAdded:
		return "device_added"
	case EventDeviceAddFailed:
		return "device_add_failed"
	case EventDeviceRemoved:
		return "device_removed"
	case EventDeviceRemoveFailed:
		return "device_remove_failed"
	case EventDevicesChecked:
		return "devices_checked"
	default:
		return "unknown"
	}
}

// Event is one published occurrence. DeviceName is set for add/remove
// events; Devices is set for EventDevicesChecked.
type Event struct {
	Kind       EventKind
	DeviceName string
	Devices    []*models.Device
}

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine.
type Handler func(Event)

// Bus dispatches events to subscribers. A subscriber panic is recovered and
// logged; it never reaches the publisher or sibling subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventKind][]Handler
	logger      logger.Logger
}

// New creates an empty bus.
func New(log logger.Logger) *Bus {
	return &Bus{
		subscribers: make(map[EventKind][]Handler),
		logger:      log,
	}
}

// Subscribe registers a handler for one event kind.
func (b *Bus) Subscribe(kind EventKind, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[kind] = append(b.subscribers[kind], handler)
	b.logger.Debug().Str("event", kind.String()).Msg("Subscribed to event")
}

// Publish delivers the event to every subscriber of its kind.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subscribers[event.Kind]))
	copy(handlers, b.subscribers[event.Kind])
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debug().Str("event", event.Kind.String()).Msg("Event published with no subscribers")
		return
	}

	for _, h := range handlers {
		b.dispatch(event, h)
	}
}

func (b *Bus) dispatch(event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("event", event.Kind.String()).
				Interface("panic", r).
				Msg("Error in event handler")
		}
	}()

	handler(event)
}
