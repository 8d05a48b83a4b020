package model

import (
	"github.com/LGUG2Z/yatta/internal/geometry"
	"github.com/LGUG2Z/yatta/internal/layout"
	"github.com/LGUG2Z/yatta/internal/window"
)

// activeWorkspace resolves the monitor/workspace that commands without an
// explicit target operate against: the active workspace of the currently
// focused monitor.
func (w *World) activeWorkspace() (monIdx int, mon *Monitor, ws *Workspace, err error) {
	mon, err = w.monitorAt(w.FocusedMonitor)
	if err != nil {
		return 0, nil, nil, err
	}
	return w.FocusedMonitor, mon, mon.Workspaces[mon.Active], nil
}

func (w *World) guardUnpaused() error {
	if w.Paused {
		return ErrPaused
	}
	return nil
}

// Focus moves focus to the tiling slot whose rectangle center is nearest
// in dir; a no-op at the edge (spec §4.4).
func (w *World) Focus(dir geometry.Direction) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardUnpaused(); err != nil {
		return err
	}
	_, mon, ws, err := w.activeWorkspace()
	if err != nil {
		return err
	}
	if idx, ok := focusDirectionTarget(ws, mon.WorkArea, dir); ok {
		ws.Focus.Index = idx
	}
	return nil
}

// Move swaps the focused slot with the slot focus(dir) would target;
// focus follows the window (spec §4.4).
func (w *World) Move(dir geometry.Direction) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardUnpaused(); err != nil {
		return err
	}
	_, mon, ws, err := w.activeWorkspace()
	if err != nil {
		return err
	}
	if ws.Focus.Floating || ws.Focus.Index < 0 {
		return ErrNoFocusedWindow
	}
	idx, ok := focusDirectionTarget(ws, mon.WorkArea, dir)
	if !ok {
		return nil
	}
	cur := ws.Focus.Index
	ws.Tiling[cur], ws.Tiling[idx] = ws.Tiling[idx], ws.Tiling[cur]
	ws.Focus.Index = idx
	return nil
}

// Promote swaps the focused slot with slot 0; if already at 0, swaps 0
// with 1 (spec §4.4). Focus follows the window in both cases.
func (w *World) Promote() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardUnpaused(); err != nil {
		return err
	}
	_, _, ws, err := w.activeWorkspace()
	if err != nil {
		return err
	}
	if ws.Focus.Floating || ws.Focus.Index < 0 {
		return ErrNoFocusedWindow
	}
	if len(ws.Tiling) < 2 {
		return nil
	}
	if ws.Focus.Index != 0 {
		ws.Tiling[ws.Focus.Index], ws.Tiling[0] = ws.Tiling[0], ws.Tiling[ws.Focus.Index]
		ws.Focus.Index = 0
	} else {
		ws.Tiling[0], ws.Tiling[1] = ws.Tiling[1], ws.Tiling[0]
		ws.Focus.Index = 1
	}
	return nil
}

// ResizeDirection selects whether a resize grows or shrinks the focused
// slot along the named edge.
type ResizeDirection int

const (
	Increase ResizeDirection = iota
	Decrease
)

// Resize appends/merges a resize adjustment of ±ResizeStepPx on the
// focused slot's named edge (spec §4.4). Clamping happens inside the
// layout engine at retile time, not here.
func (w *World) Resize(edge geometry.Edge, dir ResizeDirection) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardUnpaused(); err != nil {
		return err
	}
	_, _, ws, err := w.activeWorkspace()
	if err != nil {
		return err
	}
	if ws.Focus.Floating || ws.Focus.Index < 0 {
		return ErrNoFocusedWindow
	}

	delta := w.ResizeStepPx
	if dir == Decrease {
		delta = -delta
	}
	for i := range ws.Adjustments {
		if ws.Adjustments[i].SlotIndex == ws.Focus.Index && ws.Adjustments[i].Edge == edge {
			ws.Adjustments[i].DeltaPx += delta
			return nil
		}
	}
	ws.Adjustments = append(ws.Adjustments, layout.Adjustment{
		SlotIndex: ws.Focus.Index,
		Edge:      edge,
		DeltaPx:   delta,
	})
	return nil
}

// SetLayout sets the active workspace's layout kind and clears its
// resize adjustments (spec §4.3, §4.4).
func (w *World) SetLayout(kind layout.Kind) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardUnpaused(); err != nil {
		return err
	}
	_, _, ws, err := w.activeWorkspace()
	if err != nil {
		return err
	}
	ws.Layout = kind
	ws.Adjustments = nil
	return nil
}

// ToggleMonocle flips the active workspace's monocle flag (spec §4.4).
func (w *World) ToggleMonocle() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardUnpaused(); err != nil {
		return err
	}
	_, _, ws, err := w.activeWorkspace()
	if err != nil {
		return err
	}
	ws.Monocle = !ws.Monocle
	return nil
}

// centeredDefault returns a rectangle centered in area at 60% of its
// width and height, used when a window has no recorded pre-tile
// rectangle (spec §4.4).
func centeredDefault(area geometry.Rect) geometry.Rect {
	w := area.Width * 6 / 10
	h := area.Height * 6 / 10
	return geometry.Rect{
		X:      area.X + (area.Width-w)/2,
		Y:      area.Y + (area.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// ToggleFloat moves the focused window between the tiling list and the
// floating set (spec §4.4). Tiling-to-floating records the slot for a
// later round-trip and records its pre-tile rectangle (or a centered
// default) as the window's Applied rect; floating-to-tiling reinserts at
// that slot index,
// clamped.
func (w *World) ToggleFloat() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardUnpaused(); err != nil {
		return err
	}
	_, mon, ws, err := w.activeWorkspace()
	if err != nil {
		return err
	}

	if ws.Focus.Floating {
		handle := ws.Focus.Hwnd
		idx := indexOf(ws.Floating, handle)
		if idx < 0 {
			return ErrNoFocusedWindow
		}
		ws.Floating = removeHwndAt(ws.Floating, idx)

		target := ws.FormerSlot[handle]
		delete(ws.FormerSlot, handle)
		if target > len(ws.Tiling) {
			target = len(ws.Tiling)
		}
		ws.Tiling = insertHwnd(ws.Tiling, target, handle)
		ws.Focus = FocusCursor{Index: target}
		ws.Adjustments = nil

		if win, ok := w.Windows[handle]; ok {
			win.Flags.Floating = false
		}
		return nil
	}

	if ws.Focus.Index < 0 {
		return ErrNoFocusedWindow
	}
	idx := ws.Focus.Index
	handle := ws.Tiling[idx]
	ws.Tiling = removeHwndAt(ws.Tiling, idx)
	w.clampFocusAfterTilingRemoval(ws, idx)
	ws.FormerSlot[handle] = idx
	ws.Floating = append(ws.Floating, handle)
	ws.Focus = FocusCursor{Floating: true, Hwnd: handle}
	ws.Adjustments = nil

	if win, ok := w.Windows[handle]; ok {
		win.Flags.Floating = true
		rect := win.PreTileRect
		if rect == (geometry.Rect{}) {
			rect = centeredDefault(mon.WorkArea)
		}
		win.Applied = rect
		win.HasApplied = true
	}
	return nil
}

// SetWorkspace hides the current workspace's tiling windows and shows
// workspace i's (spec §4.4). The reconciler performs the actual
// show/hide/retile from the returned indices.
func (w *World) SetWorkspace(i int) (prevIdx, nextIdx int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardUnpaused(); err != nil {
		return 0, 0, err
	}
	mon, err := w.monitorAt(w.FocusedMonitor)
	if err != nil {
		return 0, 0, err
	}
	if i < 0 || i >= WorkspacesPerMonitor {
		return 0, 0, newError(InvalidArgument, "workspace index %d out of range", i)
	}
	prevIdx = mon.Active
	mon.Active = i
	return prevIdx, i, nil
}

// MoveWindowToWorkspace removes the focused window from the active
// workspace and appends it to workspace i's matching set (tiling or
// floating), on the same monitor (spec §4.4).
func (w *World) MoveWindowToWorkspace(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardUnpaused(); err != nil {
		return err
	}
	monIdx, mon, ws, err := w.activeWorkspace()
	if err != nil {
		return err
	}
	if i < 0 || i >= WorkspacesPerMonitor {
		return newError(InvalidArgument, "workspace index %d out of range", i)
	}
	if ws.Focus.Index < 0 && !ws.Focus.Floating {
		return ErrNoFocusedWindow
	}

	dest := mon.Workspaces[i]
	if ws.Focus.Floating {
		handle := ws.Focus.Hwnd
		idx := indexOf(ws.Floating, handle)
		if idx < 0 {
			return ErrNoFocusedWindow
		}
		ws.Floating = removeHwndAt(ws.Floating, idx)
		w.refocusAfterFloatingRemoval(ws)
		dest.Floating = append(dest.Floating, handle)
		w.locations[handle] = location{monitor: monIdx, workspace: i}
		return nil
	}

	idx := ws.Focus.Index
	handle := ws.Tiling[idx]
	ws.Tiling = removeHwndAt(ws.Tiling, idx)
	w.clampFocusAfterTilingRemoval(ws, idx)
	delete(ws.FormerSlot, handle)
	ws.Adjustments = nil

	insertAt := len(dest.Tiling)
	dest.Tiling = insertHwnd(dest.Tiling, insertAt, handle)
	dest.Adjustments = nil
	if dest.Focus.Index < 0 && !dest.Focus.Floating {
		dest.Focus = FocusCursor{Index: insertAt}
	}
	w.locations[handle] = location{monitor: monIdx, workspace: i}
	return nil
}

// MoveToDisplay moves the focused window to the visible workspace of the
// previous/next monitor in World.Monitors order, wrapping cyclically
// (spec §4.4, open question resolved in DESIGN.md).
func (w *World) MoveToDisplay(next bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardUnpaused(); err != nil {
		return err
	}
	if len(w.Monitors) < 2 {
		return newError(NoSuchMonitor, "only one monitor")
	}
	monIdx, _, ws, err := w.activeWorkspace()
	if err != nil {
		return err
	}
	if ws.Focus.Index < 0 && !ws.Focus.Floating {
		return ErrNoFocusedWindow
	}

	destMonIdx := monIdx + 1
	if !next {
		destMonIdx = monIdx - 1
	}
	destMonIdx = ((destMonIdx % len(w.Monitors)) + len(w.Monitors)) % len(w.Monitors)
	destMon := w.Monitors[destMonIdx]
	dest := destMon.Workspaces[destMon.Active]

	if ws.Focus.Floating {
		handle := ws.Focus.Hwnd
		idx := indexOf(ws.Floating, handle)
		if idx < 0 {
			return ErrNoFocusedWindow
		}
		ws.Floating = removeHwndAt(ws.Floating, idx)
		w.refocusAfterFloatingRemoval(ws)
		dest.Floating = append(dest.Floating, handle)
		w.locations[handle] = location{monitor: destMonIdx, workspace: destMon.Active}
		w.FocusedMonitor = destMonIdx
		return nil
	}

	idx := ws.Focus.Index
	handle := ws.Tiling[idx]
	ws.Tiling = removeHwndAt(ws.Tiling, idx)
	w.clampFocusAfterTilingRemoval(ws, idx)
	delete(ws.FormerSlot, handle)
	ws.Adjustments = nil

	insertAt := len(dest.Tiling)
	dest.Tiling = insertHwnd(dest.Tiling, insertAt, handle)
	dest.Adjustments = nil
	if dest.Focus.Index < 0 && !dest.Focus.Floating {
		dest.Focus = FocusCursor{Index: insertAt}
	}
	w.locations[handle] = location{monitor: destMonIdx, workspace: destMon.Active}
	w.FocusedMonitor = destMonIdx
	return nil
}

// FloatClass, FloatTitle, and FloatExe insert a float-rule into the
// world's ignored-rules table (spec §4.4).
func (w *World) FloatClass(pattern string) error { return w.addRule(window.RuleClass, pattern) }
func (w *World) FloatTitle(pattern string) error { return w.addRule(window.RuleTitle, pattern) }
func (w *World) FloatExe(pattern string) error   { return w.addRule(window.RuleExe, pattern) }

func (w *World) addRule(kind window.RuleKind, pattern string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardUnpaused(); err != nil {
		return err
	}
	if pattern == "" {
		return newError(InvalidArgument, "empty pattern")
	}
	w.Rules = append(w.Rules, window.Rule{Kind: kind, Pattern: pattern})
	return nil
}

// RetileActive forces a geometry recompute and reapply for the currently
// focused monitor's active workspace (spec §4.4 "retile").
func (w *World) RetileActive() (RetileResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guardUnpaused(); err != nil {
		return RetileResult{}, err
	}
	return w.retileLocked(w.FocusedMonitor, w.Monitors[w.FocusedMonitor].Active)
}

// TogglePause flips the world's paused flag. It is the only command
// accepted while paused (spec §4.4).
func (w *World) TogglePause() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Paused = !w.Paused
	return nil
}
