package reconciler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/LGUG2Z/yatta/internal/geometry"
	"github.com/LGUG2Z/yatta/internal/model"
	"github.com/LGUG2Z/yatta/internal/platform"
)

var workArea = geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T) (*Reconciler, *platform.Fake, *model.World, func()) {
	t.Helper()
	fake := platform.NewFake()
	world := model.NewWorld([]model.MonitorSpec{{ID: "mon0", WorkArea: workArea}})
	r := New(fake, world, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()

	return r, fake, world, func() {
		cancel()
		<-done
	}
}

func TestShownAddsAndRetilesSingleWindow(t *testing.T) {
	_, fake, world, stop := newHarness(t)
	defer stop()

	fake.Windows[1] = platform.WindowInfo{
		Title: "term", Class: "Alacritty",
		Rect: geometry.Rect{X: 900, Y: 500, Width: 100, Height: 100},
	}

	fake.Push(platform.Event{Kind: platform.Shown, Hwnd: 1, Rect: fake.Windows[1].Rect})

	deadline := time.Now().Add(2 * time.Second)
	added := false
	for time.Now().Before(deadline) {
		if _, _, ok := world.Locate(1); ok {
			added = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !added {
		t.Fatalf("window 1 was never added to the world")
	}

	waitForCallMatching(t, fake, func(s string) bool {
		return s == "SetWindowPos(1,{X:0 Y:0 Width:1920 Height:1080})"
	})
}

func waitForCallMatching(t *testing.T, fake *platform.Fake, match func(string) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var calls []string
	for time.Now().Before(deadline) {
		calls = fake.CallsSnapshot()
		for _, c := range calls {
			if match(c) {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no call matched, got %v", calls)
}

func TestSuppressedLocationChangedDoesNotFloat(t *testing.T) {
	_, fake, world, stop := newHarness(t)
	defer stop()

	fake.Windows[1] = platform.WindowInfo{Rect: geometry.Rect{X: 900, Y: 500, Width: 100, Height: 100}}
	fake.Push(platform.Event{Kind: platform.Shown, Hwnd: 1, Rect: fake.Windows[1].Rect})
	waitForCallMatching(t, fake, func(s string) bool { return s == "SetWindowPos(1,{X:0 Y:0 Width:1920 Height:1080})" })

	// The retile just applied workArea to window 1; echo that exact rect
	// back as a LocationChanged, as the OS would once the move lands.
	fake.Push(platform.Event{Kind: platform.LocationChanged, Hwnd: 1, Rect: workArea})

	// Give the reconciler time to process it, then confirm it stayed
	// tiling throughout rather than just checking after a single step.
	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		if floating, tracked := world.IsFloating(1); !tracked {
			t.Fatalf("window 1 should still be tracked")
		} else if floating {
			t.Fatalf("suppressed echo should not have converted window 1 to floating")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestUnsuppressedLocationChangedFloats(t *testing.T) {
	r, fake, world, stop := newHarness(t)
	defer stop()

	fake.Windows[1] = platform.WindowInfo{Rect: geometry.Rect{X: 900, Y: 500, Width: 100, Height: 100}}
	fake.Push(platform.Event{Kind: platform.Shown, Hwnd: 1, Rect: fake.Windows[1].Rect})
	waitForCallMatching(t, fake, func(s string) bool { return s == "SetWindowPos(1,{X:0 Y:0 Width:1920 Height:1080})" })

	dragged := geometry.Rect{X: 400, Y: 300, Width: 200, Height: 200}
	fake.Push(platform.Event{Kind: platform.LocationChanged, Hwnd: 1, Rect: dragged})

	if err := r.Submit(func() error { return nil }); err != nil {
		t.Fatalf("submit barrier: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if floating, _ := world.IsFloating(1); floating {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected window 1 to become floating after an unsuppressed drag")
}

func TestDestroyedRemovesWindow(t *testing.T) {
	_, fake, world, stop := newHarness(t)
	defer stop()

	fake.Windows[1] = platform.WindowInfo{Rect: geometry.Rect{X: 900, Y: 500, Width: 100, Height: 100}}
	fake.Push(platform.Event{Kind: platform.Shown, Hwnd: 1, Rect: fake.Windows[1].Rect})
	waitForCallMatching(t, fake, func(s string) bool { return s == "SetWindowPos(1,{X:0 Y:0 Width:1920 Height:1080})" })

	fake.Push(platform.Event{Kind: platform.Destroyed, Hwnd: 1})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, _, ok := world.Locate(1); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("window 1 was never removed from the world")
}

func TestSubmitRunsFocusCommand(t *testing.T) {
	r, fake, world, stop := newHarness(t)
	defer stop()

	fake.Windows[1] = platform.WindowInfo{Rect: geometry.Rect{X: 200, Y: 200, Width: 100, Height: 100}}
	fake.Windows[2] = platform.WindowInfo{Rect: geometry.Rect{X: 1700, Y: 200, Width: 100, Height: 100}}
	fake.Push(platform.Event{Kind: platform.Shown, Hwnd: 1, Rect: fake.Windows[1].Rect})
	fake.Push(platform.Event{Kind: platform.Shown, Hwnd: 2, Rect: fake.Windows[2].Rect})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, _, ok1 := world.Locate(1)
		_, _, ok2 := world.Locate(2)
		if ok1 && ok2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := r.Submit(func() error { return world.Focus(geometry.DirRight) }); err != nil {
		t.Fatalf("Submit(Focus): %v", err)
	}
}

// TestMoveCommandSyncsToBackend guards against the command surface
// mutating the model without ever telling the backend: Move reorders
// Tiling, so the slot each window occupies changes, and that has to
// show up as SetWindowPos calls, not just an in-memory reorder.
func TestMoveCommandSyncsToBackend(t *testing.T) {
	r, fake, world, stop := newHarness(t)
	defer stop()

	fake.Windows[1] = platform.WindowInfo{Rect: geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100}}
	fake.Windows[2] = platform.WindowInfo{Rect: geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100}}
	fake.Push(platform.Event{Kind: platform.Shown, Hwnd: 1, Rect: fake.Windows[1].Rect})
	fake.Push(platform.Event{Kind: platform.Shown, Hwnd: 2, Rect: fake.Windows[2].Rect})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, _, ok1 := world.Locate(1)
		_, _, ok2 := world.Locate(2)
		if ok1 && ok2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	before := len(fake.CallsSnapshot())

	if err := r.Move(geometry.DirRight); err != nil {
		t.Fatalf("Move: %v", err)
	}

	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(fake.CallsSnapshot()) > before {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Move committed no backend calls; command surface is disconnected from the apply layer")
}

// TestRetileActiveIssuesBackendCalls guards against the explicit
// "retile" command computing a RetileResult and discarding it: it must
// go through retileAndSync like every other apply path.
func TestRetileActiveIssuesBackendCalls(t *testing.T) {
	r, fake, _, stop := newHarness(t)
	defer stop()

	fake.Windows[1] = platform.WindowInfo{Rect: geometry.Rect{X: 900, Y: 500, Width: 100, Height: 100}}
	fake.Push(platform.Event{Kind: platform.Shown, Hwnd: 1, Rect: fake.Windows[1].Rect})
	waitForCallMatching(t, fake, func(s string) bool { return s == "SetWindowPos(1,{X:0 Y:0 Width:1920 Height:1080})" })

	if err := r.RetileActive(); err != nil {
		t.Fatalf("RetileActive: %v", err)
	}

	calls := fake.CallsSnapshot()
	found := 0
	for _, c := range calls {
		if c == "SetWindowPos(1,{X:0 Y:0 Width:1920 Height:1080})" {
			found++
		}
	}
	if found == 0 {
		t.Fatalf("RetileActive issued no SetWindowPos calls")
	}
}

// TestSetWorkspaceMinimizesAndRestores guards against set_workspace only
// flipping the active index in memory: the old workspace's tiling
// windows must be minimized and the new one's restored (spec §3
// invariant 5).
func TestSetWorkspaceMinimizesAndRestores(t *testing.T) {
	r, fake, _, stop := newHarness(t)
	defer stop()

	fake.Windows[1] = platform.WindowInfo{Rect: geometry.Rect{X: 900, Y: 500, Width: 100, Height: 100}}
	fake.Push(platform.Event{Kind: platform.Shown, Hwnd: 1, Rect: fake.Windows[1].Rect})
	waitForCallMatching(t, fake, func(s string) bool { return s == "SetWindowPos(1,{X:0 Y:0 Width:1920 Height:1080})" })

	if err := r.SetWorkspace(1); err != nil {
		t.Fatalf("SetWorkspace: %v", err)
	}

	waitForCallMatching(t, fake, func(s string) bool { return s == "Minimize(1)" })
}
