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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/carverauto/devmon/pkg/bus"
	"github.com/carverauto/devmon/pkg/config"
	"github.com/carverauto/devmon/pkg/controller"
	"github.com/carverauto/devmon/pkg/logger"
	"github.com/carverauto/devmon/pkg/models"
	"github.com/carverauto/devmon/pkg/probe"
	"github.com/carverauto/devmon/pkg/scheduler"
	"github.com/carverauto/devmon/pkg/service"
	"github.com/carverauto/devmon/pkg/store"
)

var errFailedToLoadConfig = fmt.Errorf("failed to load config")

const usage = `usage: devmon [-config path] <command> [args]

commands:
  add <name> <ip> [port] [timeout]  add a device
  remove <name>                     remove a device
  enable <name>                     enable monitoring for a device
  disable <name>                    disable monitoring for a device
  list                              list devices and last known status
  check                             check all enabled devices once
  run                               run the periodic checker until interrupted
`

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath(), "Path to devmon config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return nil
	}

	ctx := context.Background()

	cfg, err := config.Load(ctx, *configPath)
	if err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	logCfg := cfg.Logging

	// One-shot commands log to stderr; only the daemon writes the app log.
	if args[0] != "run" {
		logCfg = &logger.Config{Level: logCfg.Level, Debug: logCfg.Debug, Output: "stderr"}
	}

	appLogger, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	st, err := store.New(cfg.DevicesFile(), appLogger)
	if err != nil {
		return err
	}

	prober := probe.NewProber(cfg.FallbackPorts, time.Duration(cfg.PingTimeout), appLogger)
	svc := service.New(st, prober, appLogger)
	eventBus := bus.New(appLogger)
	ctrl := controller.New(svc, eventBus, appLogger)

	switch args[0] {
	case "add":
		return cmdAdd(ctrl, args[1:])
	case "remove":
		return cmdNamed(args[1:], "remove", ctrl.RemoveDevice)
	case "enable":
		return cmdNamed(args[1:], "enable", svc.EnableDevice)
	case "disable":
		return cmdNamed(args[1:], "disable", svc.DisableDevice)
	case "list":
		return cmdList(ctrl)
	case "check":
		ctrl.CheckAllDevices(ctx)
		return cmdList(ctrl)
	case "run":
		return cmdRun(ctx, cfg, ctrl, appLogger)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return filepath.Join(home, ".devmon", "config.json")
}

func cmdAdd(ctrl *controller.Controller, args []string) error {
	if len(args) < 2 || len(args) > 4 {
		return fmt.Errorf("usage: devmon add <name> <ip> [port] [timeout]")
	}

	port := models.DefaultPort
	timeout := models.DefaultTimeout

	var err error

	if len(args) >= 3 {
		if port, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("invalid port %q: %w", args[2], err)
		}
	}

	if len(args) == 4 {
		if timeout, err = strconv.Atoi(args[3]); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", args[3], err)
		}
	}

	if !ctrl.AddDevice(args[0], args[1], port, timeout) {
		return fmt.Errorf("failed to add device %q", args[0])
	}

	fmt.Printf("added %s\n", args[0])

	return nil
}

func cmdNamed(args []string, verb string, fn func(string) bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: devmon %s <name>", verb)
	}

	if !fn(args[0]) {
		return fmt.Errorf("failed to %s device %q", verb, args[0])
	}

	fmt.Printf("%sd %s\n", verb, args[0])

	return nil
}

func cmdList(ctrl *controller.Controller) error {
	devices := ctrl.GetDevices()
	if len(devices) == 0 {
		fmt.Println("no devices")
		return nil
	}

	for _, d := range devices {
		checked := "never"
		if d.LastChecked != nil {
			checked = d.LastChecked.Format(time.RFC3339)
		}

		state := "enabled"
		if !d.Enabled {
			state = "disabled"
		}

		fmt.Printf("%-20s %15s:%-5d %-8s %-8s last_checked=%s\n",
			d.Name, d.IPAddress, d.Port, d.IsOnline, state, checked)
	}

	return nil
}

func cmdRun(ctx context.Context, cfg *config.Config, ctrl *controller.Controller, log logger.Logger) error {
	sched := scheduler.New(log)
	sched.Start()

	defer sched.Stop()

	if cfg.AutoCheckEnabled() {
		sched.ScheduleRepeating(cfg.AutoCheckTaskName(), func() {
			ctrl.CheckAllDevices(ctx)
		}, time.Duration(cfg.CheckInterval))
	}

	log.Info().Dur("interval", time.Duration(cfg.CheckInterval)).Msg("devmon running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	return nil
}
