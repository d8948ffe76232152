// Command vswitchd runs a single switch instance: it loads the topology
// for the given switch ID, opens the link adapter for the given link
// arguments, and drives the data/STP task and the BPDU timer task until
// killed.
//
// Usage: vswitchd <switch_id> <link_args...>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kaelnet/vswitchd/pkg/bridge"
	"github.com/kaelnet/vswitchd/pkg/debugapi"
	"github.com/kaelnet/vswitchd/pkg/events"
	"github.com/kaelnet/vswitchd/pkg/logging"
	"github.com/kaelnet/vswitchd/pkg/pcapadapter"
	"github.com/kaelnet/vswitchd/pkg/settings"
	"github.com/kaelnet/vswitchd/pkg/switchconfig"
	"github.com/kaelnet/vswitchd/pkg/switchmetrics"
)

const (
	configDir   = "configs"
	settingsRel = "configs/settings.yaml"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: vswitchd <switch_id> <link_args...>")
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "vswitchd: %v\n", err)
		os.Exit(1)
	}
}

func run(switchID string, linkArgs []string) error {
	cfg, err := switchconfig.Load(switchconfig.Path(configDir, switchID))
	if err != nil {
		return fmt.Errorf("loading topology: %w", err)
	}

	sets, err := settings.Load(settingsRel)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	log := logging.New(sets.LogLevel)
	logEntry := log.WithField("switch_id", switchID)

	if len(linkArgs) < len(cfg.Ports) {
		return fmt.Errorf("configured %d ports but only %d link args given", len(cfg.Ports), len(linkArgs))
	}

	var switchIface string
	if len(linkArgs) > 0 {
		switchIface = linkArgs[0]
	}
	adapter, err := pcapadapter.Open(linkArgs[:len(cfg.Ports)], switchIface)
	if err != nil {
		return fmt.Errorf("opening link adapter: %w", err)
	}
	defer adapter.Close()

	metrics := switchmetrics.New()
	var bus *events.Bus
	if sets.MetricsEnabled {
		bus = events.NewBus()
	}

	br := bridge.New(cfg.OwnBID, cfg.Ports, adapter, metrics, bus, logEntry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var api *debugapi.Server
	if sets.DebugListenAddr != "" {
		api = debugapi.New(sets.DebugListenAddr, br, bus, logEntry)
		go func() {
			if err := api.Serve(); err != nil {
				logEntry.WithError(err).Warn("debug API stopped")
			}
		}()
		logEntry.Infof("debug API listening on %s", sets.DebugListenAddr)
	}

	go br.RunEmitter(ctx)

	runErr := make(chan error, 1)
	go func() {
		runErr <- br.Run(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logEntry.Info("shutting down")
		cancel()
		<-runErr
	case err := <-runErr:
		cancel()
		if err != nil {
			return err
		}
	}

	if api != nil {
		_ = api.Close()
	}
	return nil
}
