package model

import (
	"github.com/LGUG2Z/yatta/internal/geometry"
	"github.com/LGUG2Z/yatta/internal/window"
)

// MarkMinimized removes handle from its workspace's tiling list but keeps
// it as a tracked member under the minimized set, remembering its former
// slot for Restored (spec §4.5 "Minimized").
func (w *World) MarkMinimized(handle window.Hwnd) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	loc, ok := w.locations[handle]
	if !ok {
		return nil
	}
	ws := w.Monitors[loc.monitor].Workspaces[loc.workspace]
	idx := indexOf(ws.Tiling, handle)
	if idx < 0 {
		return nil
	}
	ws.Tiling = removeHwndAt(ws.Tiling, idx)
	w.clampFocusAfterTilingRemoval(ws, idx)
	ws.Adjustments = nil
	ws.Minimized[handle] = idx
	if win, ok := w.Windows[handle]; ok {
		win.Flags.Minimized = true
	}
	return nil
}

// MarkRestored reinserts handle at its former slot index (clamped) and
// clears its minimized flag (spec §4.5 "Restored").
func (w *World) MarkRestored(handle window.Hwnd) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	loc, ok := w.locations[handle]
	if !ok {
		return nil
	}
	ws := w.Monitors[loc.monitor].Workspaces[loc.workspace]
	slot, ok := ws.Minimized[handle]
	if !ok {
		return nil
	}
	delete(ws.Minimized, handle)
	if slot > len(ws.Tiling) {
		slot = len(ws.Tiling)
	}
	ws.Tiling = insertHwnd(ws.Tiling, slot, handle)
	ws.Adjustments = nil
	if ws.Focus.Index < 0 && !ws.Focus.Floating {
		ws.Focus = FocusCursor{Index: slot}
	} else if !ws.Focus.Floating && ws.Focus.Index >= slot {
		ws.Focus.Index++
	}
	if win, ok := w.Windows[handle]; ok {
		win.Flags.Minimized = false
	}
	return nil
}

// ConvertToFloating handles an unsuppressed LocationChanged on a tiling
// window: treat it as a user-initiated drag, moving the window to the
// floating set at its newly observed rectangle (spec §4.5
// "LocationChanged").
func (w *World) ConvertToFloating(handle window.Hwnd, rect geometry.Rect) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	loc, ok := w.locations[handle]
	if !ok {
		return nil
	}
	ws := w.Monitors[loc.monitor].Workspaces[loc.workspace]
	idx := indexOf(ws.Tiling, handle)
	if idx < 0 {
		return nil
	}
	ws.Tiling = removeHwndAt(ws.Tiling, idx)
	w.clampFocusAfterTilingRemoval(ws, idx)
	ws.FormerSlot[handle] = idx
	ws.Floating = append(ws.Floating, handle)
	ws.Focus = FocusCursor{Floating: true, Hwnd: handle}
	ws.Adjustments = nil

	if win, ok := w.Windows[handle]; ok {
		win.Flags.Floating = true
		win.OSRect = rect
		win.Applied = rect
		win.HasApplied = true
	}
	return nil
}

// UpdateFloatingGeometry records a new observed rectangle for a window
// that is already floating; no retile follows (spec §4.5: floating
// geometry is user-controlled).
func (w *World) UpdateFloatingGeometry(handle window.Hwnd, rect geometry.Rect) {
	w.mu.Lock()
	defer w.mu.Unlock()
	win, ok := w.Windows[handle]
	if !ok {
		return
	}
	win.OSRect = rect
	win.Applied = rect
	win.HasApplied = true
}

// SetFocusedWindow updates the focus cursor of whichever workspace
// tracks handle, and moves World.FocusedMonitor to match, in response to
// a FocusChanged/ForegroundChanged event (spec §4.5). Untracked handles
// are ignored.
func (w *World) SetFocusedWindow(handle window.Hwnd) {
	w.mu.Lock()
	defer w.mu.Unlock()
	loc, ok := w.locations[handle]
	if !ok {
		return
	}
	w.FocusedMonitor = loc.monitor
	ws := w.Monitors[loc.monitor].Workspaces[loc.workspace]
	if idx := indexOf(ws.Tiling, handle); idx >= 0 {
		ws.Focus = FocusCursor{Index: idx}
		return
	}
	if idx := indexOf(ws.Floating, handle); idx >= 0 {
		ws.Focus = FocusCursor{Floating: true, Hwnd: handle}
	}
}

// ApplyTopologyChange remaps workspaces to the new monitor list by
// stable monitor id; monitors that disappeared have their current
// workspace's windows merged into monitor 0's current workspace (spec
// §4.5 "Topology change"). It returns the indices of monitors whose
// active workspace changed contents and therefore needs a retile.
func (w *World) ApplyTopologyChange(specs []MonitorSpec) []int {
	w.mu.Lock()
	defer w.mu.Unlock()

	byID := make(map[string]*Monitor, len(w.Monitors))
	for _, m := range w.Monitors {
		byID[m.ID] = m
	}

	var kept []*Monitor
	var vanished []*Monitor
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		seen[spec.ID] = true
	}
	for _, m := range w.Monitors {
		if !seen[m.ID] {
			vanished = append(vanished, m)
		}
	}

	affected := make(map[int]bool)

	newMonitors := make([]*Monitor, 0, len(specs))
	newIndexByID := make(map[string]int, len(specs))
	for _, spec := range specs {
		m, ok := byID[spec.ID]
		if !ok {
			m = &Monitor{ID: spec.ID}
			for i := range m.Workspaces {
				m.Workspaces[i] = newWorkspace()
			}
		}
		m.WorkArea = spec.WorkArea
		newIndexByID[spec.ID] = len(newMonitors)
		newMonitors = append(newMonitors, m)
	}
	kept = newMonitors

	var fallback *Monitor
	var fallbackIdx int
	if len(kept) > 0 {
		fallback = kept[0]
		fallbackIdx = 0
	}

	for _, gone := range vanished {
		if fallback == nil {
			continue
		}
		goneWS := gone.Workspaces[gone.Active]
		fallbackWS := fallback.Workspaces[fallback.Active]
		for _, h := range goneWS.Tiling {
			fallbackWS.Tiling = append(fallbackWS.Tiling, h)
			w.locations[h] = location{monitor: fallbackIdx, workspace: fallback.Active}
		}
		if len(goneWS.Tiling) > 0 {
			fallbackWS.Adjustments = nil
		}
		for _, h := range goneWS.Floating {
			fallbackWS.Floating = append(fallbackWS.Floating, h)
			w.locations[h] = location{monitor: fallbackIdx, workspace: fallback.Active}
		}
		if len(goneWS.Tiling) > 0 || len(goneWS.Floating) > 0 {
			affected[fallbackIdx] = true
		}
		if fallbackWS.Focus.Index < 0 && !fallbackWS.Focus.Floating {
			if len(fallbackWS.Tiling) > 0 {
				fallbackWS.Focus = FocusCursor{Index: 0}
			} else if len(fallbackWS.Floating) > 0 {
				fallbackWS.Focus = FocusCursor{Floating: true, Hwnd: fallbackWS.Floating[0]}
			}
		}
	}

	w.Monitors = kept
	if w.FocusedMonitor >= len(w.Monitors) {
		w.FocusedMonitor = 0
	}

	// Refresh locations for everything still present, in case monitor
	// order shifted (locations store indices, not ids).
	for id, idx := range newIndexByID {
		m := byID[id]
		if m == nil {
			continue
		}
		for wsIdx, ws := range m.Workspaces {
			for _, h := range ws.Tiling {
				w.locations[h] = location{monitor: idx, workspace: wsIdx}
			}
			for _, h := range ws.Floating {
				w.locations[h] = location{monitor: idx, workspace: wsIdx}
			}
		}
	}

	result := make([]int, 0, len(affected))
	for idx := range affected {
		result = append(result, idx)
	}
	return result
}
