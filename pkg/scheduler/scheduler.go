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

// Package scheduler runs named, independently cancellable repeating tasks.
package scheduler

import (
	"sync"
	"time"

	"github.com/carverauto/devmon/pkg/logger"
)

const defaultJoinTimeout = 2 * time.Second

// task owns one repeating loop: a dedicated cancel channel plus a channel
// closed when its goroutine has exited.
type task struct {
	name       string
	cancel     chan struct{}
	exited     chan struct{}
	cancelOnce sync.Once
}

func (t *task) signalCancel() {
	t.cancelOnce.Do(func() { close(t.cancel) })
}

// Scheduler manages zero or more named repeating tasks. Start and Stop are
// idempotent; task names are unique while active.
type Scheduler struct {
	mu          sync.Mutex
	running     bool
	done        chan struct{}
	tasks       map[string]*task
	joinTimeout time.Duration
	logger      logger.Logger
}

// New creates a stopped scheduler.
func New(log logger.Logger) *Scheduler {
	return &Scheduler{
		tasks:       make(map[string]*task),
		joinTimeout: defaultJoinTimeout,
		logger:      log,
	}
}

// Start moves the scheduler to running. Calling Start while running is a
// logged no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn().Msg("Scheduler already running")
		return
	}

	s.running = true
	s.done = make(chan struct{})

	s.logger.Info().Msg("Scheduler started")
}

// Stop cancels every active task and joins each with a bounded wait. No task
// executes its action after Stop returns, except a task already mid-action
// past the join timeout, which is abandoned and logged. Calling Stop while
// stopped is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		return
	}

	s.running = false
	close(s.done)

	active := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		active = append(active, t)
	}

	s.tasks = make(map[string]*task)
	s.mu.Unlock()

	for _, t := range active {
		t.signalCancel()
		s.join(t)
	}

	s.logger.Info().Msg("Scheduler stopped")
}

// ScheduleRepeating registers a named repeating task: fn runs immediately,
// then every interval until the task or the scheduler is stopped. A name
// already scheduled is rejected with a warning.
func (s *Scheduler) ScheduleRepeating(name string, fn func(), interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.logger.Warn().Str("task", name).Msg("Scheduler not running, task not scheduled")
		return
	}

	if _, exists := s.tasks[name]; exists {
		s.logger.Warn().Str("task", name).Msg("Task already scheduled")
		return
	}

	t := &task{
		name:   name,
		cancel: make(chan struct{}),
		exited: make(chan struct{}),
	}

	s.tasks[name] = t

	go s.runLoop(t, fn, interval, s.done)

	s.logger.Info().Str("task", name).Dur("interval", interval).Msg("Scheduled task")
}

// Unschedule cancels one task and joins it with a bounded wait. Unknown
// names are a logged no-op.
func (s *Scheduler) Unschedule(name string) {
	s.mu.Lock()

	t, ok := s.tasks[name]
	if !ok {
		s.mu.Unlock()
		s.logger.Warn().Str("task", name).Msg("Task not found to unschedule")

		return
	}

	delete(s.tasks, name)
	s.mu.Unlock()

	t.signalCancel()
	s.join(t)

	s.logger.Info().Str("task", name).Msg("Unscheduled task")
}

// runLoop executes the action immediately, then waits up to interval for
// either cancellation signal before repeating. Cancellation is cooperative:
// an action already running completes before the next check.
func (s *Scheduler) runLoop(t *task, fn func(), interval time.Duration, done <-chan struct{}) {
	defer close(t.exited)

	s.logger.Debug().Str("task", t.name).Msg("Scheduled task started")

	for {
		s.runAction(t.name, fn)

		timer := time.NewTimer(interval)

		select {
		case <-timer.C:
		case <-t.cancel:
			timer.Stop()
			return
		case <-done:
			timer.Stop()
			return
		}
	}
}

// runAction isolates one invocation so a panicking action cannot take down
// the task loop.
func (s *Scheduler) runAction(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("task", name).Interface("panic", r).Msg("Error in scheduled task")
		}
	}()

	fn()
}

func (s *Scheduler) join(t *task) {
	select {
	case <-t.exited:
	case <-time.After(s.joinTimeout):
		s.logger.Warn().Str("task", t.name).Msg("Timed out waiting for task to exit, abandoning")
	}
}
