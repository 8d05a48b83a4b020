package model

import (
	"testing"

	"github.com/LGUG2Z/yatta/internal/geometry"
	"github.com/LGUG2Z/yatta/internal/layout"
	"github.com/LGUG2Z/yatta/internal/window"
)

var workArea = geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

func newSingleMonitorWorld() *World {
	return NewWorld([]MonitorSpec{{ID: "mon0", WorkArea: workArea}})
}

func addTiling(w *World, handle window.Hwnd, title string) {
	w.AddWindow(window.Window{
		Handle: handle,
		Title:  title,
		OSRect: geometry.Rect{X: 900, Y: 500, Width: 100, Height: 100},
		Flags:  window.Flags{Manageable: true},
	})
}

func tilingOrder(w *World) []window.Hwnd {
	return w.Monitors[0].Workspaces[w.Monitors[0].Active].Tiling
}

func TestDisjointnessAcrossWorkspaces(t *testing.T) {
	w := newSingleMonitorWorld()
	addTiling(w, 1, "A")
	addTiling(w, 2, "B")
	addTiling(w, 3, "C")

	if err := w.MoveWindowToWorkspace(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[window.Hwnd]int{}
	for _, mon := range w.Monitors {
		for _, ws := range mon.Workspaces {
			for _, h := range ws.Tiling {
				seen[h]++
			}
			for _, h := range ws.Floating {
				seen[h]++
			}
		}
	}
	for h, count := range seen {
		if count != 1 {
			t.Fatalf("handle %d appears in %d workspaces, want 1", h, count)
		}
	}
}

func TestTilingCoverageAfterRetile(t *testing.T) {
	for _, kind := range []layout.Kind{layout.BSPV, layout.BSPH, layout.Columns, layout.Rows} {
		w := newSingleMonitorWorld()
		if err := w.SetLayout(kind); err != nil {
			t.Fatalf("SetLayout: %v", err)
		}
		for i := window.Hwnd(1); i <= 4; i++ {
			addTiling(w, i, "win")
		}
		result, err := w.RetileActive()
		if err != nil {
			t.Fatalf("RetileActive: %v", err)
		}
		total := 0
		for _, r := range result.Targets {
			total += r.Area()
		}
		if total != workArea.Area() {
			t.Fatalf("kind %v: expected coverage %d, got %d", kind, workArea.Area(), total)
		}
	}
}

func TestSwapInvolution(t *testing.T) {
	w := newSingleMonitorWorld()
	addTiling(w, 1, "A")
	addTiling(w, 2, "B")
	addTiling(w, 3, "C")

	before := append([]window.Hwnd{}, tilingOrder(w)...)

	if err := w.Focus(geometry.DirRight); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	if err := w.Move(geometry.DirDown); err != nil {
		t.Fatalf("Move down: %v", err)
	}
	if err := w.Move(geometry.DirUp); err != nil {
		t.Fatalf("Move up: %v", err)
	}

	after := tilingOrder(w)
	if len(after) != len(before) {
		t.Fatalf("length changed: %v -> %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("order not restored: %v -> %v", before, after)
		}
	}
}

func TestPromoteTwiceIsIdentityOnTwoWindows(t *testing.T) {
	w := newSingleMonitorWorld()
	addTiling(w, 1, "A")
	addTiling(w, 2, "B")

	before := append([]window.Hwnd{}, tilingOrder(w)...)

	if err := w.Promote(); err != nil {
		t.Fatalf("Promote 1: %v", err)
	}
	if err := w.Promote(); err != nil {
		t.Fatalf("Promote 2: %v", err)
	}

	after := tilingOrder(w)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("promote twice did not return to identity: %v -> %v", before, after)
		}
	}
}

func TestMonocleReversibility(t *testing.T) {
	w := newSingleMonitorWorld()
	addTiling(w, 1, "A")
	addTiling(w, 2, "B")

	before, err := w.RetileActive()
	if err != nil {
		t.Fatalf("RetileActive: %v", err)
	}

	if err := w.ToggleMonocle(); err != nil {
		t.Fatalf("ToggleMonocle 1: %v", err)
	}
	if _, err := w.RetileActive(); err != nil {
		t.Fatalf("RetileActive: %v", err)
	}
	if err := w.ToggleMonocle(); err != nil {
		t.Fatalf("ToggleMonocle 2: %v", err)
	}
	after, err := w.RetileActive()
	if err != nil {
		t.Fatalf("RetileActive: %v", err)
	}

	for h, r := range before.Targets {
		if after.Targets[h] != r {
			t.Fatalf("geometry not restored for %d: %+v -> %+v", h, r, after.Targets[h])
		}
	}
	if before.Focused != after.Focused {
		t.Fatalf("focus not restored: %v -> %v", before.Focused, after.Focused)
	}
}

func TestFloatRoundTrip(t *testing.T) {
	w := newSingleMonitorWorld()
	addTiling(w, 1, "A")
	addTiling(w, 2, "B")
	addTiling(w, 3, "C")

	// Focus slot 1 and remember which window it holds (AddWindow inserts
	// after the focused slot, so this is not necessarily window 2).
	w.Monitors[0].Workspaces[0].Focus = FocusCursor{Index: 1}
	floated := tilingOrder(w)[1]

	if err := w.ToggleFloat(); err != nil {
		t.Fatalf("ToggleFloat out: %v", err)
	}
	order := tilingOrder(w)
	for _, h := range order {
		if h == floated {
			t.Fatalf("window %d should not be tiling after float: %v", floated, order)
		}
	}

	if err := w.ToggleFloat(); err != nil {
		t.Fatalf("ToggleFloat back: %v", err)
	}
	order = tilingOrder(w)
	if len(order) != 3 || order[1] != floated {
		t.Fatalf("expected window %d back at slot 1, got %v", floated, order)
	}
}

func TestWorkspaceDisjointHistory(t *testing.T) {
	w := newSingleMonitorWorld()
	addTiling(w, 1, "A")
	addTiling(w, 2, "B")

	w.Monitors[0].Workspaces[0].Focus = FocusCursor{Index: 0}
	if err := w.MoveWindowToWorkspace(3); err != nil {
		t.Fatalf("MoveWindowToWorkspace: %v", err)
	}

	src := tilingOrder(w)
	for _, h := range src {
		if h == 1 {
			t.Fatalf("window 1 should be gone from source workspace, got %v", src)
		}
	}

	dest := w.Monitors[0].Workspaces[3].Tiling
	count := 0
	for _, h := range dest {
		if h == 1 {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected window 1 exactly once in workspace 3, found %d", count)
	}
}

func TestCommandsRejectedWhilePausedExceptTogglePause(t *testing.T) {
	w := newSingleMonitorWorld()
	addTiling(w, 1, "A")

	if err := w.TogglePause(); err != nil {
		t.Fatalf("TogglePause: %v", err)
	}
	if !w.Paused {
		t.Fatalf("expected world to be paused")
	}

	if err := w.Focus(geometry.DirRight); err == nil {
		t.Fatalf("expected Focus to be rejected while paused")
	}
	if _, err := w.RetileActive(); err == nil {
		t.Fatalf("expected RetileActive to be rejected while paused")
	}

	if err := w.TogglePause(); err != nil {
		t.Fatalf("TogglePause while paused should succeed: %v", err)
	}
	if w.Paused {
		t.Fatalf("expected world to be unpaused")
	}
}

func TestBoundaryZeroAndOneWindow(t *testing.T) {
	w := newSingleMonitorWorld()
	result, err := w.RetileActive()
	if err != nil {
		t.Fatalf("RetileActive on empty workspace: %v", err)
	}
	if len(result.Targets) != 0 {
		t.Fatalf("expected no targets for empty workspace, got %v", result.Targets)
	}

	addTiling(w, 1, "A")
	result, err = w.RetileActive()
	if err != nil {
		t.Fatalf("RetileActive with one window: %v", err)
	}
	if result.Targets[1] != workArea {
		t.Fatalf("expected single window to fill work area, got %+v", result.Targets[1])
	}
}
