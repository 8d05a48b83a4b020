package tui

import (
	"strings"
	"testing"

	"github.com/LGUG2Z/yatta/internal/ipc"
)

func TestRenderWindow_FallsBackToHwndWhenTitleEmpty(t *testing.T) {
	out := renderWindow(ipc.StatusWindow{Hwnd: 42})
	if !strings.Contains(out, "hwnd 42") {
		t.Fatalf("expected fallback to hwnd, got %q", out)
	}
}

func TestRenderWindow_MarksFloating(t *testing.T) {
	out := renderWindow(ipc.StatusWindow{Title: "term", Floating: true})
	if !strings.Contains(out, "[floating]") {
		t.Fatalf("expected [floating] marker, got %q", out)
	}
}

func TestRenderMonitor_SkipsEmptyInactiveWorkspaces(t *testing.T) {
	mon := ipc.StatusMonitor{
		ID: "mon0",
		Workspaces: []ipc.StatusWorkspace{
			{Index: 0, Active: true, Layout: "bspv"},
			{Index: 1, Active: false},
		},
	}
	out := renderMonitor(mon)
	if !strings.Contains(out, "[0] bspv") {
		t.Fatalf("expected active workspace to render, got %q", out)
	}
	if strings.Contains(out, "[1]") {
		t.Fatalf("expected empty inactive workspace to be skipped, got %q", out)
	}
}
