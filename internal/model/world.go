// Package model holds the mutable tree of monitors, workspaces, and
// managed windows (spec §3), and the command set that mutates it (spec
// §4.4). It knows nothing about the OS: lifecycle and commands only ever
// read or write in-memory state and the layout engine. Applying the
// result to the real screen is the event reconciler's job.
package model

import (
	"sync"

	"github.com/LGUG2Z/yatta/internal/geometry"
	"github.com/LGUG2Z/yatta/internal/layout"
	"github.com/LGUG2Z/yatta/internal/window"
)

// WorkspacesPerMonitor is the fixed workspace array size (spec §3).
const WorkspacesPerMonitor = 9

// DefaultResizeStepPx is the default per-resize-command delta (spec §4.4).
const DefaultResizeStepPx = 50

// FocusCursor identifies what currently has focus in a workspace: either
// a tiling slot by index, a specific floating window, or nothing at all
// (an empty workspace).
type FocusCursor struct {
	Floating bool
	Index    int // valid tiling-list index when !Floating && Index >= 0
	Hwnd     window.Hwnd // valid floating handle when Floating
}

func emptyFocus() FocusCursor {
	return FocusCursor{Index: -1}
}

// Workspace is an ordered tiling list, a floating set, a minimized set
// (slot index remembered for reinsertion), resize adjustments, and a
// layout kind (spec §3).
type Workspace struct {
	Tiling      []window.Hwnd
	Floating    []window.Hwnd
	Minimized   map[window.Hwnd]int // hwnd -> former tiling slot index
	FormerSlot  map[window.Hwnd]int // hwnd -> slot index before last float
	Focus       FocusCursor
	Layout      layout.Kind
	Monocle     bool
	Adjustments []layout.Adjustment
}

func newWorkspace() *Workspace {
	return &Workspace{
		Minimized:  make(map[window.Hwnd]int),
		FormerSlot: make(map[window.Hwnd]int),
		Focus:      emptyFocus(),
		Layout:     layout.BSPV,
	}
}

// Monitor is a work area plus its fixed array of workspaces (spec §3).
type Monitor struct {
	ID         string
	WorkArea   geometry.Rect
	Workspaces [WorkspacesPerMonitor]*Workspace
	Active     int
}

// MonitorSpec is what the OS shim reports for enumerate_monitors (spec §6).
type MonitorSpec struct {
	ID       string
	WorkArea geometry.Rect
}

type location struct {
	monitor   int
	workspace int
}

// World is the root of the model: the ordered monitor list, the window
// arena (windows are stored only here; everywhere else refers to them by
// Hwnd, per the arena-key discipline in spec §9), the paused flag, and
// the float-rule table.
type World struct {
	mu           sync.Mutex
	Monitors     []*Monitor
	Windows      map[window.Hwnd]*window.Window
	Paused       bool
	Rules        []window.Rule
	ResizeStepPx int

	// FocusedMonitor is the monitor whose active workspace the §4.4
	// commands operate against. Updated by FocusChanged/ForegroundChanged
	// handling in the reconciler.
	FocusedMonitor int

	locations map[window.Hwnd]location
}

// NewWorld builds a World from the OS-reported monitor list, in the order
// given (spec §3's "OS-reported order").
func NewWorld(specs []MonitorSpec) *World {
	w := &World{
		Windows:      make(map[window.Hwnd]*window.Window),
		ResizeStepPx: DefaultResizeStepPx,
		locations:    make(map[window.Hwnd]location),
	}
	for _, spec := range specs {
		mon := &Monitor{ID: spec.ID, WorkArea: spec.WorkArea}
		for i := range mon.Workspaces {
			mon.Workspaces[i] = newWorkspace()
		}
		w.Monitors = append(w.Monitors, mon)
	}
	return w
}

// Lock/Unlock expose the World's mutex so the reconciler can bracket a
// full read-modify-apply cycle (model mutation plus the OS calls it
// produces) without another command interleaving (spec §5).
func (w *World) Lock()   { w.mu.Lock() }
func (w *World) Unlock() { w.mu.Unlock() }

func (w *World) monitorByID(id string) (int, bool) {
	for i, m := range w.Monitors {
		if m.ID == id {
			return i, true
		}
	}
	return 0, false
}

// monitorContaining returns the index of the monitor whose work area
// contains rect's center, or false if none does.
func (w *World) monitorContaining(rect geometry.Rect) (int, bool) {
	cx, cy := rect.Center()
	for i, m := range w.Monitors {
		if m.WorkArea.ContainsPoint(cx, cy) {
			return i, true
		}
	}
	return 0, false
}

func insertHwnd(list []window.Hwnd, at int, h window.Hwnd) []window.Hwnd {
	if at < 0 {
		at = 0
	}
	if at > len(list) {
		at = len(list)
	}
	list = append(list, 0)
	copy(list[at+1:], list[at:])
	list[at] = h
	return list
}

func removeHwndAt(list []window.Hwnd, idx int) []window.Hwnd {
	return append(list[:idx], list[idx+1:]...)
}

func indexOf(list []window.Hwnd, h window.Hwnd) int {
	for i, v := range list {
		if v == h {
			return i
		}
	}
	return -1
}

// AddWindow is the "window shown" lifecycle step (spec §3 Lifecycle,
// §4.5 Shown): the window is inserted into the currently visible
// workspace of the monitor containing its rectangle's center, float
// rules are applied, and it is tracked in the arena.
func (w *World) AddWindow(win window.Window) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.Monitors) == 0 {
		return
	}

	win.PreTileRect = win.OSRect
	window.ApplyFloatRules(&win, w.Rules)

	monIdx, ok := w.monitorContaining(win.OSRect)
	if !ok {
		monIdx = 0
	}
	mon := w.Monitors[monIdx]
	wsIdx := mon.Active
	ws := mon.Workspaces[wsIdx]

	handle := win.Handle
	w.Windows[handle] = &win
	w.locations[handle] = location{monitor: monIdx, workspace: wsIdx}

	wasEmpty := len(ws.Tiling) == 0 && len(ws.Floating) == 0

	if win.Flags.Floating {
		ws.Floating = append(ws.Floating, handle)
		if wasEmpty {
			ws.Focus = FocusCursor{Floating: true, Hwnd: handle}
		}
		return
	}

	insertAt := len(ws.Tiling)
	if !ws.Focus.Floating && ws.Focus.Index >= 0 {
		insertAt = ws.Focus.Index + 1
	}
	ws.Tiling = insertHwnd(ws.Tiling, insertAt, handle)
	ws.Adjustments = nil

	if wasEmpty || (ws.Focus.Index < 0 && !ws.Focus.Floating) {
		ws.Focus = FocusCursor{Index: insertAt}
	}
}

// RemoveWindow is the "window destroyed" / "became non-manageable"
// lifecycle step (spec §3 Lifecycle, §4.5 Destroyed): the window is
// dropped from wherever it's tracked and the focus cursor is clamped.
func (w *World) RemoveWindow(handle window.Hwnd) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removeWindowLocked(handle)
}

func (w *World) removeWindowLocked(handle window.Hwnd) {
	loc, ok := w.locations[handle]
	if !ok {
		return
	}
	ws := w.Monitors[loc.monitor].Workspaces[loc.workspace]

	if idx := indexOf(ws.Tiling, handle); idx >= 0 {
		ws.Tiling = removeHwndAt(ws.Tiling, idx)
		w.clampFocusAfterTilingRemoval(ws, idx)
		ws.Adjustments = nil
	} else if idx := indexOf(ws.Floating, handle); idx >= 0 {
		ws.Floating = removeHwndAt(ws.Floating, idx)
		if ws.Focus.Floating && ws.Focus.Hwnd == handle {
			w.refocusAfterFloatingRemoval(ws)
		}
	} else {
		delete(ws.Minimized, handle)
	}

	delete(ws.FormerSlot, handle)
	delete(w.Windows, handle)
	delete(w.locations, handle)
}

func (w *World) clampFocusAfterTilingRemoval(ws *Workspace, removedIdx int) {
	if ws.Focus.Floating {
		return
	}
	switch {
	case len(ws.Tiling) == 0:
		if len(ws.Floating) > 0 {
			ws.Focus = FocusCursor{Floating: true, Hwnd: ws.Floating[0]}
		} else {
			ws.Focus = emptyFocus()
		}
	case ws.Focus.Index > removedIdx:
		ws.Focus.Index--
	case ws.Focus.Index >= len(ws.Tiling):
		ws.Focus.Index = len(ws.Tiling) - 1
	}
}

func (w *World) refocusAfterFloatingRemoval(ws *Workspace) {
	if len(ws.Floating) > 0 {
		ws.Focus = FocusCursor{Floating: true, Hwnd: ws.Floating[0]}
		return
	}
	if len(ws.Tiling) > 0 {
		ws.Focus = FocusCursor{Index: 0}
		return
	}
	ws.Focus = emptyFocus()
}

// candidateRects returns the current layout's computed rectangles for
// ws's tiling list, parallel to ws.Tiling, honouring its adjustments.
func candidateRects(ws *Workspace, workArea geometry.Rect) []geometry.Rect {
	return layout.Compute(ws.Layout, workArea, len(ws.Tiling), ws.Adjustments)
}

// focusDirectionTarget resolves the tiling slot that focus(dir)/move(dir)
// would target: nearest rectangle center in dir from the focused slot,
// ties broken by Manhattan distance then slot index (spec §4.4).
func focusDirectionTarget(ws *Workspace, workArea geometry.Rect, dir geometry.Direction) (int, bool) {
	if ws.Focus.Floating || ws.Focus.Index < 0 || len(ws.Tiling) < 2 {
		return -1, false
	}
	rects := candidateRects(ws, workArea)
	origin := rects[ws.Focus.Index]

	best := -1
	bestDist := 0
	for i, r := range rects {
		if i == ws.Focus.Index {
			continue
		}
		if !geometry.DirectionBetween(origin, r, dir) {
			continue
		}
		d := geometry.ManhattanDistance(origin, r)
		if best == -1 || d < bestDist || (d == bestDist && i < best) {
			best, bestDist = i, d
		}
	}
	return best, best != -1
}

// RetileResult is what a retile computes for the reconciler to apply: the
// target rectangle for every tiling window that should currently be
// visible, and the tiling windows that monocle requires hidden.
type RetileResult struct {
	Targets map[window.Hwnd]geometry.Rect
	Hide    []window.Hwnd
	Focused window.Hwnd // zero value if nothing tiling is focused
}

// Retile recomputes geometry for monitor monIdx's workspace wsIdx: pure
// layout computation plus monocle handling. It writes the result into
// each tracked tiling Window's Applied field (floating windows get theirs
// from ToggleFloat, ConvertToFloating and UpdateFloatingGeometry) and
// returns it for the reconciler to diff against OS-observed state.
func (w *World) Retile(monIdx, wsIdx int) (RetileResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.retileLocked(monIdx, wsIdx)
}

func (w *World) retileLocked(monIdx, wsIdx int) (RetileResult, error) {
	mon, err := w.monitorAt(monIdx)
	if err != nil {
		return RetileResult{}, err
	}
	ws, err := workspaceAt(mon, wsIdx)
	if err != nil {
		return RetileResult{}, err
	}

	result := RetileResult{Targets: make(map[window.Hwnd]geometry.Rect)}
	if len(ws.Tiling) == 0 {
		return result, nil
	}

	rects := candidateRects(ws, mon.WorkArea)

	if !ws.Focus.Floating && ws.Focus.Index >= 0 && ws.Focus.Index < len(ws.Tiling) {
		result.Focused = ws.Tiling[ws.Focus.Index]
	}

	if ws.Monocle && result.Focused != 0 {
		target := mon.WorkArea
		result.Targets[result.Focused] = target
		if win, ok := w.Windows[result.Focused]; ok {
			win.Applied = target
			win.HasApplied = true
		}
		for i, h := range ws.Tiling {
			if i == ws.Focus.Index {
				continue
			}
			result.Hide = append(result.Hide, h)
		}
		return result, nil
	}

	for i, h := range ws.Tiling {
		result.Targets[h] = rects[i]
		if win, ok := w.Windows[h]; ok {
			win.Applied = rects[i]
			win.HasApplied = true
		}
	}
	return result, nil
}

func (w *World) monitorAt(idx int) (*Monitor, error) {
	if idx < 0 || idx >= len(w.Monitors) {
		return nil, newError(NoSuchMonitor, "index %d", idx)
	}
	return w.Monitors[idx], nil
}

func workspaceAt(mon *Monitor, idx int) (*Workspace, error) {
	if idx < 0 || idx >= WorkspacesPerMonitor {
		return nil, newError(NoSuchWorkspace, "index %d", idx)
	}
	return mon.Workspaces[idx], nil
}

// Locate returns the monitor/workspace indices holding handle.
func (w *World) Locate(handle window.Hwnd) (monIdx, wsIdx int, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	loc, ok := w.locations[handle]
	return loc.monitor, loc.workspace, ok
}

// IsFloating reports whether handle is currently in its workspace's
// floating set (as opposed to tiling or untracked) — used by the
// reconciler to decide whether an unsuppressed LocationChanged should
// start a float (ConvertToFloating) or just update geometry
// (UpdateFloatingGeometry).
func (w *World) IsFloating(handle window.Hwnd) (floating bool, tracked bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	loc, ok := w.locations[handle]
	if !ok {
		return false, false
	}
	ws := w.Monitors[loc.monitor].Workspaces[loc.workspace]
	return indexOf(ws.Floating, handle) >= 0, true
}
