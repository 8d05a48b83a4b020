// Package reconciler is the single-threaded loop that owns every call
// into the OS backend (spec §4.5, §5). It serializes three input
// streams — OS events, client commands, and topology changes — onto one
// goroutine so a command and an in-flight OS event can never race, diffs
// each retile's result against last-known OS state before issuing calls,
// and suppresses the echo its own SetWindowPos calls produce.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LGUG2Z/yatta/internal/geometry"
	"github.com/LGUG2Z/yatta/internal/layout"
	"github.com/LGUG2Z/yatta/internal/model"
	"github.com/LGUG2Z/yatta/internal/platform"
	"github.com/LGUG2Z/yatta/internal/window"
)

// suppressionWindow is how long a SetWindowPos echo is expected to take
// to round-trip back as a LocationChanged event (spec §4.5).
const suppressionWindow = 150 * time.Millisecond

// retileDebounce coalesces bursts of events that each independently
// request a retile of the same workspace (spec §4.5).
const retileDebounce = 10 * time.Millisecond

type retileKey struct {
	monitor   int
	workspace int
}

type suppression struct {
	rect     geometry.Rect
	deadline time.Time
}

// Reconciler drives model.World from a platform.Backend's event stream
// and a queue of client commands.
type Reconciler struct {
	backend platform.Backend
	world   *model.World
	logger  *slog.Logger

	commands chan func()
	retiles  chan retileKey

	suppress map[window.Hwnd]suppression
	hidden   map[window.Hwnd]bool
	pending  map[retileKey]bool
}

// New builds a Reconciler. Call Run to start it.
func New(backend platform.Backend, world *model.World, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		backend:  backend,
		world:    world,
		logger:   logger,
		commands: make(chan func(), 64),
		retiles:  make(chan retileKey, 64),
		suppress: make(map[window.Hwnd]suppression),
		hidden:   make(map[window.Hwnd]bool),
		pending:  make(map[retileKey]bool),
	}
}

// Submit enqueues fn to run on the reconciler's loop goroutine and
// blocks until it has run. Client commands and topology changes both go
// through here so they never interleave with OS-event handling.
func (r *Reconciler) Submit(fn func() error) error {
	done := make(chan error, 1)
	r.commands <- func() {
		done <- fn()
	}
	return <-done
}

// Run consumes OS events and submitted commands until ctx is cancelled.
// A panic during either is logged and re-raised: the daemon is expected
// to crash rather than continue on a World it no longer trusts (spec §7).
func (r *Reconciler) Run(ctx context.Context) error {
	events, err := r.backend.Subscribe()
	if err != nil {
		return fmt.Errorf("reconciler: subscribe: %w", err)
	}

	r.logger.Info("reconciler started")
	defer r.logger.Info("reconciler stopped")

	for {
		select {
		case <-ctx.Done():
			return r.backend.Close()

		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("reconciler: event stream closed")
			}
			r.guard(func() { r.handleEvent(ev) })

		case cmd := <-r.commands:
			r.guard(cmd)

		case key := <-r.retiles:
			r.guard(func() { r.retileAndSync(key) })
		}
	}
}

func (r *Reconciler) guard(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("reconciler panic", "recovered", rec)
			panic(rec)
		}
	}()
	fn()
}

func (r *Reconciler) handleEvent(ev platform.Event) {
	r.world.Lock()
	paused := r.world.Paused
	r.world.Unlock()
	if paused {
		r.logger.Debug("event ignored while paused", "kind", ev.Kind, "hwnd", ev.Hwnd)
		return
	}
	switch ev.Kind {
	case platform.Shown:
		r.handleShown(ev)
	case platform.Destroyed:
		r.handleDestroyed(ev)
	case platform.Minimized:
		if err := r.world.MarkMinimized(ev.Hwnd); err != nil {
			r.logger.Warn("mark minimized", "hwnd", ev.Hwnd, "err", err)
			return
		}
		r.scheduleRetileFor(ev.Hwnd)
	case platform.Restored:
		if err := r.world.MarkRestored(ev.Hwnd); err != nil {
			r.logger.Warn("mark restored", "hwnd", ev.Hwnd, "err", err)
			return
		}
		r.scheduleRetileFor(ev.Hwnd)
	case platform.LocationChanged:
		r.handleLocationChanged(ev)
	case platform.FocusChanged, platform.ForegroundChanged:
		r.world.SetFocusedWindow(ev.Hwnd)
	default:
		r.logger.Warn("unhandled event kind", "kind", ev.Kind)
	}
}

func (r *Reconciler) handleShown(ev platform.Event) {
	if !r.backend.IsManageable(ev.Hwnd) {
		return
	}
	info, err := r.backend.GetWindowInfo(ev.Hwnd)
	if err != nil {
		r.logger.Warn("get window info", "hwnd", ev.Hwnd, "err", err)
		return
	}
	r.world.AddWindow(window.Window{
		Handle: ev.Hwnd,
		Title:  info.Title,
		Class:  info.Class,
		Exe:    info.Exe,
		OSRect: info.Rect,
		Flags:  window.Flags{Manageable: true},
	})
	r.scheduleRetileFor(ev.Hwnd)
}

func (r *Reconciler) handleDestroyed(ev platform.Event) {
	monIdx, wsIdx, ok := r.world.Locate(ev.Hwnd)
	r.world.RemoveWindow(ev.Hwnd)
	delete(r.suppress, ev.Hwnd)
	delete(r.hidden, ev.Hwnd)
	if ok {
		r.scheduleRetile(retileKey{monIdx, wsIdx})
	}
}

// handleLocationChanged distinguishes an echo of our own SetWindowPos
// from a genuine user-initiated drag using the suppression table (spec
// §4.5): a LocationChanged within the expected rect and before the
// deadline is consumed silently.
func (r *Reconciler) handleLocationChanged(ev platform.Event) {
	if s, ok := r.suppress[ev.Hwnd]; ok {
		delete(r.suppress, ev.Hwnd)
		if time.Now().Before(s.deadline) && s.rect.Equal(ev.Rect, 1) {
			return
		}
	}

	floating, tracked := r.world.IsFloating(ev.Hwnd)
	if !tracked {
		return
	}
	if floating {
		r.world.UpdateFloatingGeometry(ev.Hwnd, ev.Rect)
		return
	}
	if err := r.world.ConvertToFloating(ev.Hwnd, ev.Rect); err != nil {
		r.logger.Warn("convert to floating", "hwnd", ev.Hwnd, "err", err)
		return
	}
	r.scheduleRetileFor(ev.Hwnd)
}

func (r *Reconciler) scheduleRetileFor(handle window.Hwnd) {
	monIdx, wsIdx, ok := r.world.Locate(handle)
	if !ok {
		return
	}
	r.scheduleRetile(retileKey{monIdx, wsIdx})
}

func (r *Reconciler) scheduleRetile(key retileKey) {
	if r.pending[key] {
		return
	}
	r.pending[key] = true
	time.AfterFunc(retileDebounce, func() {
		r.retiles <- key
	})
}

// retileAndSync recomputes key's layout and issues the minimal set of OS
// calls to make reality match it (spec §4.5, §5). A retile that needs no
// OS calls — everything already matches — is a no-op, which breaks the
// feedback loop a SetWindowPos echo could otherwise start.
func (r *Reconciler) retileAndSync(key retileKey) {
	delete(r.pending, key)

	result, err := r.world.Retile(key.monitor, key.workspace)
	if err != nil {
		r.logger.Warn("retile", "monitor", key.monitor, "workspace", key.workspace, "err", err)
		return
	}

	r.world.Lock()
	defer r.world.Unlock()

	for handle, target := range result.Targets {
		win := r.world.Windows[handle]
		if win == nil {
			continue
		}
		if r.hidden[handle] {
			r.hidden[handle] = false
			if err := r.backend.Show(handle); err != nil {
				r.logger.Warn("show", "hwnd", handle, "err", err)
			}
		}
		if win.OSRect == target {
			continue
		}
		r.suppress[handle] = suppression{rect: target, deadline: time.Now().Add(suppressionWindow)}
		if err := r.backend.SetWindowPos(handle, target); err != nil {
			r.logger.Warn("set window pos", "hwnd", handle, "err", err)
			continue
		}
		win.OSRect = target
	}

	for _, handle := range result.Hide {
		if r.hidden[handle] {
			continue
		}
		r.hidden[handle] = true
		if err := r.backend.Hide(handle); err != nil {
			r.logger.Warn("hide", "hwnd", handle, "err", err)
		}
	}

	if result.Focused != 0 {
		if err := r.backend.Focus(result.Focused); err != nil {
			r.logger.Warn("focus", "hwnd", result.Focused, "err", err)
		}
	}
}

// ---- §4.4 command dispatch ----
//
// internal/ipc and internal/mcp call these instead of Submit directly:
// every command that can change what's on screen must also schedule a
// retile-and-sync afterward, or the model drifts from the real window
// positions (spec §4.4, invariant 4).

// focusedWorkspaceLocked reads the focused monitor and its active
// workspace index together, under World's own lock (independent of the
// reconciler's command serialization).
func (r *Reconciler) focusedWorkspaceLocked() (monIdx, wsIdx int) {
	r.world.Lock()
	defer r.world.Unlock()
	monIdx = r.world.FocusedMonitor
	return monIdx, r.world.Monitors[monIdx].Active
}

func (r *Reconciler) workspaceIndexLocked(monIdx int) int {
	r.world.Lock()
	defer r.world.Unlock()
	return r.world.Monitors[monIdx].Active
}

// submitAndRetileActive runs fn through Submit, and on success schedules
// a retile of the focused monitor's active workspace — the common case
// for commands that operate on activeWorkspace() and don't relocate a
// window to a different workspace or monitor.
func (r *Reconciler) submitAndRetileActive(fn func() error) error {
	return r.Submit(func() error {
		if err := fn(); err != nil {
			return err
		}
		monIdx, wsIdx := r.focusedWorkspaceLocked()
		r.scheduleRetile(retileKey{monitor: monIdx, workspace: wsIdx})
		return nil
	})
}

// Focus moves focus in dir and re-syncs OS focus to match.
func (r *Reconciler) Focus(dir geometry.Direction) error {
	return r.submitAndRetileActive(func() error { return r.world.Focus(dir) })
}

// Move swaps the focused slot toward dir and retiles.
func (r *Reconciler) Move(dir geometry.Direction) error {
	return r.submitAndRetileActive(func() error { return r.world.Move(dir) })
}

// Promote swaps the focused slot with the master slot and retiles.
func (r *Reconciler) Promote() error {
	return r.submitAndRetileActive(func() error { return r.world.Promote() })
}

// Resize records a resize adjustment and retiles to apply it.
func (r *Reconciler) Resize(edge geometry.Edge, dir model.ResizeDirection) error {
	return r.submitAndRetileActive(func() error { return r.world.Resize(edge, dir) })
}

// SetLayout sets the active workspace's layout kind and retiles.
func (r *Reconciler) SetLayout(kind layout.Kind) error {
	return r.submitAndRetileActive(func() error { return r.world.SetLayout(kind) })
}

// ToggleMonocle flips monocle on the active workspace and retiles.
func (r *Reconciler) ToggleMonocle() error {
	return r.submitAndRetileActive(func() error { return r.world.ToggleMonocle() })
}

// ToggleFloat moves the focused window between tiling and floating and
// retiles the workspace it stays on either way. A window that becomes
// floating is not moved: the Applied rect the model records for it is
// not sent to the backend, and the window keeps its current OS position.
func (r *Reconciler) ToggleFloat() error {
	return r.submitAndRetileActive(func() error { return r.world.ToggleFloat() })
}

// FloatClass, FloatTitle, and FloatExe insert a float-rule and retile the
// active workspace, since the rule can apply retroactively to nothing but
// future windows — the retile is what picks up any other knock-on focus
// change from the command committing.
func (r *Reconciler) FloatClass(pattern string) error {
	return r.submitAndRetileActive(func() error { return r.world.FloatClass(pattern) })
}

func (r *Reconciler) FloatTitle(pattern string) error {
	return r.submitAndRetileActive(func() error { return r.world.FloatTitle(pattern) })
}

func (r *Reconciler) FloatExe(pattern string) error {
	return r.submitAndRetileActive(func() error { return r.world.FloatExe(pattern) })
}

// TogglePause flips the paused flag. No retile: pausing/unpausing changes
// nothing about the current geometry by itself.
func (r *Reconciler) TogglePause() error {
	return r.Submit(func() error { return r.world.TogglePause() })
}

// RetileActive forces an immediate retile-and-sync of the focused
// monitor's active workspace (the explicit §4.4 "retile" command) rather
// than scheduling one behind the debounce, since it's already the
// client's explicit request for one.
func (r *Reconciler) RetileActive() error {
	return r.Submit(func() error {
		if _, err := r.world.RetileActive(); err != nil {
			return err
		}
		monIdx, wsIdx := r.focusedWorkspaceLocked()
		r.retileAndSync(retileKey{monitor: monIdx, workspace: wsIdx})
		return nil
	})
}

// minimizeWorkspace puts every tiling window of (monIdx, wsIdx) into the
// OS "minimized" state (spec §3 invariant 5: hidden workspaces keep their
// tiling windows minimized).
func (r *Reconciler) minimizeWorkspace(monIdx, wsIdx int) {
	r.world.Lock()
	handles := append([]window.Hwnd(nil), r.world.Monitors[monIdx].Workspaces[wsIdx].Tiling...)
	r.world.Unlock()
	for _, h := range handles {
		if err := r.backend.Minimize(h); err != nil {
			r.logger.Warn("minimize", "hwnd", h, "err", err)
		}
	}
}

// restoreWorkspace restores every tiling window of (monIdx, wsIdx) from
// the OS "minimized" state (spec §3 invariant 5).
func (r *Reconciler) restoreWorkspace(monIdx, wsIdx int) {
	r.world.Lock()
	handles := append([]window.Hwnd(nil), r.world.Monitors[monIdx].Workspaces[wsIdx].Tiling...)
	r.world.Unlock()
	for _, h := range handles {
		if err := r.backend.Restore(h); err != nil {
			r.logger.Warn("restore", "hwnd", h, "err", err)
		}
	}
}

// SetWorkspace switches the focused monitor's active workspace: the
// previous workspace's tiling windows are minimized, the new one's are
// restored, and it is retiled (spec §4.4 "set_workspace").
func (r *Reconciler) SetWorkspace(index int) error {
	return r.Submit(func() error {
		monIdx, _ := r.focusedWorkspaceLocked()
		prevIdx, nextIdx, err := r.world.SetWorkspace(index)
		if err != nil {
			return err
		}
		r.minimizeWorkspace(monIdx, prevIdx)
		r.restoreWorkspace(monIdx, nextIdx)
		r.scheduleRetile(retileKey{monitor: monIdx, workspace: nextIdx})
		return nil
	})
}

// MoveWindowToWorkspace moves the focused window to workspace index on
// the same monitor and retiles both the source (so the hole it left is
// re-laid-out) and the destination (so it's ready the moment that
// workspace becomes visible) (spec §4.4).
func (r *Reconciler) MoveWindowToWorkspace(index int) error {
	return r.Submit(func() error {
		monIdx, srcIdx := r.focusedWorkspaceLocked()
		if err := r.world.MoveWindowToWorkspace(index); err != nil {
			return err
		}
		r.scheduleRetile(retileKey{monitor: monIdx, workspace: srcIdx})
		r.scheduleRetile(retileKey{monitor: monIdx, workspace: index})
		return nil
	})
}

// MoveToDisplay moves the focused window to the previous/next monitor's
// visible workspace and retiles both the source and destination (spec
// §4.4).
func (r *Reconciler) MoveToDisplay(next bool) error {
	return r.Submit(func() error {
		monIdx, srcIdx := r.focusedWorkspaceLocked()
		if err := r.world.MoveToDisplay(next); err != nil {
			return err
		}
		destMonIdx, _ := r.focusedWorkspaceLocked() // MoveToDisplay updates FocusedMonitor to the destination
		destIdx := r.workspaceIndexLocked(destMonIdx)
		r.scheduleRetile(retileKey{monitor: monIdx, workspace: srcIdx})
		r.scheduleRetile(retileKey{monitor: destMonIdx, workspace: destIdx})
		return nil
	})
}

// ApplyTopology runs a topology change (spec §4.5) through the same
// serialized loop as any other command, then retiles every monitor the
// change affected.
func (r *Reconciler) ApplyTopology(specs []model.MonitorSpec) error {
	return r.Submit(func() error {
		affected := r.world.ApplyTopologyChange(specs)
		r.world.Lock()
		keys := make([]retileKey, len(affected))
		for i, monIdx := range affected {
			keys[i] = retileKey{monitor: monIdx, workspace: r.world.Monitors[monIdx].Active}
		}
		r.world.Unlock()
		for _, key := range keys {
			r.scheduleRetile(key)
		}
		return nil
	})
}
