package mcp

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/LGUG2Z/yatta/internal/geometry"
	"github.com/LGUG2Z/yatta/internal/model"
	"github.com/LGUG2Z/yatta/internal/platform"
	"github.com/LGUG2Z/yatta/internal/reconciler"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	workArea := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	world := model.NewWorld([]model.MonitorSpec{{ID: "mon0", WorkArea: workArea}})
	fake := platform.NewFake()
	rec := reconciler.New(fake, world, silentLogger())
	return NewServer(world, rec)
}

func TestHandleFocus_UnknownDirectionIsError(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleFocus(context.Background(), nil, FocusInput{Direction: "sideways"})
	if err == nil {
		t.Fatal("expected an error for an unknown direction")
	}
}

func TestHandleFocus_NoWindowsIsNoop(t *testing.T) {
	s := newTestServer(t)
	_, out, err := s.handleFocus(context.Background(), nil, FocusInput{Direction: "right"})
	if err != nil {
		t.Fatalf("Focus on empty world should be a no-op, got: %v", err)
	}
	if !out.Ok {
		t.Fatal("expected ok=true")
	}
}

func TestHandleTogglePause_RejectsSubsequentCommand(t *testing.T) {
	s := newTestServer(t)
	if _, _, err := s.handleTogglePause(context.Background(), nil, EmptyInput{}); err != nil {
		t.Fatalf("TogglePause: %v", err)
	}

	_, _, err := s.handlePromote(context.Background(), nil, EmptyInput{})
	if err == nil {
		t.Fatal("expected Promote to be rejected while paused")
	}
}

func TestHandleStatus_ReportsPausedAndMonitors(t *testing.T) {
	s := newTestServer(t)
	_, out, err := s.handleStatus(context.Background(), nil, EmptyInput{})
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if out.Paused {
		t.Fatal("expected Paused to be false initially")
	}
	if len(out.Monitors) != 1 {
		t.Fatalf("expected 1 monitor, got %d", len(out.Monitors))
	}
}

func TestHandleResize_UnknownEdgeIsError(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleResize(context.Background(), nil, ResizeInput{Edge: "diagonal", Direction: "increase"})
	if err == nil {
		t.Fatal("expected an error for an unknown edge")
	}
}

func TestHandleLayout_UnknownKindIsError(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleLayout(context.Background(), nil, LayoutInput{Kind: "spiral"})
	if err == nil {
		t.Fatal("expected an error for an unknown layout kind")
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want geometry.Direction
		ok   bool
	}{
		{"left", geometry.DirLeft, true},
		{"right", geometry.DirRight, true},
		{"up", geometry.DirUp, true},
		{"down", geometry.DirDown, true},
		{"diagonal", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseDirection(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("parseDirection(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
