package ipc

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/LGUG2Z/yatta/internal/geometry"
	"github.com/LGUG2Z/yatta/internal/model"
	"github.com/LGUG2Z/yatta/internal/platform"
	"github.com/LGUG2Z/yatta/internal/reconciler"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*Server, func()) {
	t.Helper()

	workArea := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	world := model.NewWorld([]model.MonitorSpec{{ID: "mon0", WorkArea: workArea}})
	fake := platform.NewFake()
	rec := reconciler.New(fake, world, silentLogger())

	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	srv, err := NewServer(world, rec, silentLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	recDone := make(chan struct{})
	go func() {
		defer close(recDone)
		rec.Run(ctx)
	}()

	return srv, func() {
		srv.Stop()
		cancel()
		<-recDone
	}
}

func TestPingRoundTrip(t *testing.T) {
	srv, stop := newTestServer(t)
	defer stop()

	c := &Client{socketPath: srv.socketPath, timeout: 2 * time.Second}
	if err := c.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestTogglePauseThenRejectedCommand(t *testing.T) {
	srv, stop := newTestServer(t)
	defer stop()

	c := &Client{socketPath: srv.socketPath, timeout: 2 * time.Second}
	if err := c.TogglePause(); err != nil {
		t.Fatalf("TogglePause: %v", err)
	}

	err := c.Promote()
	if err == nil {
		t.Fatal("expected Promote to be rejected while paused")
	}
	cmdErr, ok := err.(*CommandError)
	if !ok {
		t.Fatalf("expected *CommandError, got %T: %v", err, err)
	}
	if cmdErr.Kind != string(model.Paused) {
		t.Fatalf("expected Paused, got %q", cmdErr.Kind)
	}
}

func TestFocusWithNoWindowsIsNoop(t *testing.T) {
	srv, stop := newTestServer(t)
	defer stop()

	c := &Client{socketPath: srv.socketPath, timeout: 2 * time.Second}
	if err := c.Focus("right"); err != nil {
		t.Fatalf("Focus on empty world should be a no-op, got: %v", err)
	}
}

func TestStatusReportsPausedFlag(t *testing.T) {
	srv, stop := newTestServer(t)
	defer stop()

	c := &Client{socketPath: srv.socketPath, timeout: 2 * time.Second}
	status, err := c.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Paused {
		t.Fatal("expected Paused to be false initially")
	}
	if len(status.Monitors) != 1 {
		t.Fatalf("expected 1 monitor, got %d", len(status.Monitors))
	}
}

func TestRetileOnEmptyWorldIsNoop(t *testing.T) {
	srv, stop := newTestServer(t)
	defer stop()

	c := &Client{socketPath: srv.socketPath, timeout: 2 * time.Second}
	if err := c.Retile(); err != nil {
		t.Fatalf("Retile on empty world should be a no-op, got: %v", err)
	}
}

func TestUnknownCommandIsInvalidArgument(t *testing.T) {
	srv, stop := newTestServer(t)
	defer stop()

	resp := srv.handleCommand(&Request{Cmd: "not-a-real-command"})
	if resp.Ok {
		t.Fatal("expected unknown command to fail")
	}
	if resp.Error != string(model.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %q", resp.Error)
	}
}
