// expandd - system-wide text expansion daemon
//
// expandd listens for keyboard input at the session (or HID) level, matches
// typed trigger words against a rule set, and replaces them with their
// expansions by synthesizing keystrokes. A Unix-socket control surface
// (expandctl) manages rules, pause state, and runtime options.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expandd/internal/config"
	"expandd/internal/diag"
	"expandd/internal/engine"
	"expandd/internal/inject"
	"expandd/internal/ipc"
	"expandd/internal/logging"
	"expandd/internal/notify"
	"expandd/internal/rules"
	"expandd/internal/store"
	"expandd/internal/tap"
	"expandd/internal/watcher"
)

// Version is set at build time.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (default: platform config dir)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("expandd %s\n", Version)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "expandd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logger.Close()
	logging.SetDefault(logger)

	ring := diag.NewRing(cfg.Logging.RingLines)
	sink := diag.NewSink(ring, logger.Logger)

	state := engine.NewState()
	state.SetVerbose(cfg.Engine.Verbose)
	state.SetDryRun(cfg.Engine.DryRun)

	ruleStore := rules.NewStore()

	// Persisted rules come up first; the rules file, when configured,
	// overrides them at startup and on every change.
	archive, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open rule storage: %w", err)
	}
	defer archive.Close()

	if persisted, err := archive.Load(); err != nil {
		sink.Logf("daemon: loading persisted rules failed: %v", err)
	} else if len(persisted) > 0 {
		ruleStore.ReplaceAll(persisted)
		sink.Logf("daemon: restored %d persisted rules", len(persisted))
	}

	notifier := notify.New()

	eng := engine.New(engine.Config{
		BufferCap:         cfg.Engine.BufferCap,
		HeartbeatInterval: time.Duration(cfg.Heartbeat.IntervalSec) * time.Second,
		HeartbeatCycles:   cfg.Heartbeat.Cycles,
	}, engine.Params{
		State:    state,
		Rules:    ruleStore,
		Exec:     inject.NewExecutor(state, inject.New(), sink, time.Duration(cfg.Engine.SettleMs)*time.Millisecond),
		Sink:     sink,
		Notifier: notifier,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if ok, detail := tap.New(tap.ScopeSession).Available(); !ok {
		sink.Logf("daemon: session tap unavailable: %s", detail)
		if tap.PromptAccessibility() {
			sink.Logf("daemon: accessibility authorization granted")
		}
	}

	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	defer eng.Stop()

	if cfg.Rules.Path != "" {
		w, err := watcher.New(cfg.Rules.Path, ruleStore, archive, sink,
			time.Duration(cfg.Rules.DebounceMs)*time.Millisecond)
		if err != nil {
			return fmt.Errorf("create rules watcher: %w", err)
		}
		if err := w.Reload(); err != nil {
			sink.Logf("daemon: initial rules load failed: %v", err)
		}
		if err := w.Start(); err != nil {
			return fmt.Errorf("start rules watcher: %w", err)
		}
		defer w.Stop()
	}

	if cfg.IPC.Enabled {
		handler := ipc.NewDaemonHandler(eng, archive, ring, Version)
		serverCfg := ipc.DefaultServerConfig(cfg.IPC.SocketPath)
		serverCfg.Version = Version
		serverCfg.ReadTimeout = time.Duration(cfg.IPC.TimeoutSec) * time.Second
		server := ipc.NewServer(serverCfg, handler, sink)
		if err := server.Start(); err != nil {
			return fmt.Errorf("start IPC server: %w", err)
		}
		defer server.Stop()
	}

	sink.Logf("daemon: expandd %s ready (dry_run=%v)", Version, state.DryRun())

	<-ctx.Done()
	sink.Logf("daemon: shutting down")
	return nil
}

func setupLogging(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(&logging.Config{
		Level:     level,
		Format:    format,
		Output:    cfg.Logging.Output,
		FilePath:  cfg.Logging.FilePath,
		Component: "expandd",
	})
}
