// Command yatta is the tiling daemon: it loads startup configuration,
// connects to the X11 display, builds the world from the enumerated
// monitors, and runs the reconciler's event loop until signaled to
// stop. Grounded on the teacher's cmd/termtile/main.go runDaemon
// (config load -> backend connect -> component wiring -> IPC server ->
// background loop -> signal handling), trimmed of hotkey registration,
// move-mode, and palette/terminal-add spawn wiring: none of that has a
// SPEC_FULL.md component (input is §4.4 commands over IPC/MCP, not
// global hotkeys bound inside the daemon).
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/LGUG2Z/yatta/internal/config"
	"github.com/LGUG2Z/yatta/internal/eventlog"
	"github.com/LGUG2Z/yatta/internal/ipc"
	"github.com/LGUG2Z/yatta/internal/layout"
	"github.com/LGUG2Z/yatta/internal/mcp"
	"github.com/LGUG2Z/yatta/internal/model"
	"github.com/LGUG2Z/yatta/internal/reconciler"
	"github.com/LGUG2Z/yatta/internal/window"
	"github.com/LGUG2Z/yatta/internal/x11"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseSlogLevel(cfg.Logging.Level),
	}))

	actionLog, err := eventlog.New(eventlog.Config{
		Enabled:  cfg.Logging.File != "",
		Level:    eventlog.ParseLevel(cfg.Logging.Level),
		FilePath: cfg.Logging.File,
		MaxBytes: cfg.Logging.MaxBytes,
		MaxFiles: cfg.Logging.MaxFiles,
	})
	if err != nil {
		log.Fatalf("failed to open action log: %v", err)
	}
	defer actionLog.Close()

	conn, err := x11.NewConnection()
	if err != nil {
		log.Fatalf("failed to connect to X11 display: %v", err)
	}
	defer conn.Close()

	monitors, err := conn.EnumerateMonitors()
	if err != nil {
		log.Fatalf("failed to enumerate monitors: %v", err)
	}
	if len(monitors) == 0 {
		log.Fatalf("no monitors reported by the display")
	}

	specs := make([]model.MonitorSpec, len(monitors))
	for i, m := range monitors {
		specs[i] = model.MonitorSpec{ID: m.ID, WorkArea: m.WorkArea}
	}

	world := model.NewWorld(specs)
	world.ResizeStepPx = cfg.ResizeStepPx
	if kind, ok := layout.ParseKind(cfg.DefaultLayout); ok {
		for _, mon := range world.Monitors {
			for _, ws := range mon.Workspaces {
				ws.Layout = kind
			}
		}
	}
	seedFloatRules(world, cfg.FloatRules)
	logger.Info("world initialized", "monitors", len(specs))

	rec := reconciler.New(conn, world, logger)

	ipcServer, err := ipc.NewServer(world, rec, logger)
	if err != nil {
		log.Fatalf("failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	mcpServer := mcp.NewServer(world, rec)
	mcpCtx, mcpCancel := context.WithCancel(context.Background())
	defer mcpCancel()
	go func() {
		if err := mcpServer.Run(mcpCtx); err != nil && mcpCtx.Err() == nil {
			logger.Warn("mcp server exited", "err", err)
		}
	}()

	recCtx, recCancel := context.WithCancel(context.Background())
	recDone := make(chan error, 1)
	go func() { recDone <- rec.Run(recCtx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	logger.Info("yatta daemon started")
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case <-ipcServer.ShutdownRequested():
		logger.Info("shutting down", "reason", "client requested shutdown")
	case err := <-recDone:
		logger.Error("reconciler stopped unexpectedly", "err", err)
	}

	recCancel()
	<-recDone
	actionLog.Log(eventlog.ActionTopology, 0, map[string]any{"event": "shutdown"})
}

func seedFloatRules(world *model.World, rules []config.FloatRule) {
	for _, r := range rules {
		switch r.Kind {
		case "class":
			world.Rules = append(world.Rules, window.Rule{Kind: window.RuleClass, Pattern: r.Pattern})
		case "title":
			world.Rules = append(world.Rules, window.Rule{Kind: window.RuleTitle, Pattern: r.Pattern})
		case "exe":
			world.Rules = append(world.Rules, window.Rule{Kind: window.RuleExe, Pattern: r.Pattern})
		}
	}
}

func parseSlogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
