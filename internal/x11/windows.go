package x11

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/LGUG2Z/yatta/internal/geometry"
	"github.com/LGUG2Z/yatta/internal/platform"
	"github.com/LGUG2Z/yatta/internal/window"
)

// IsManageable reports whether hwnd is a top-level, non-transient,
// non-tool window the engine should tile or float (spec §3). Dock,
// desktop, splash and notification windows, and anything with a
// WM_TRANSIENT_FOR set, are excluded.
func (c *Connection) IsManageable(hwnd window.Hwnd) bool {
	win := xproto.Window(hwnd)

	if _, err := icccm.WmTransientForGet(c.XUtil, win); err == nil {
		return false
	}

	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil || len(types) == 0 {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NOTIFICATION",
			"_NET_WM_WINDOW_TYPE_TOOLBAR", "_NET_WM_WINDOW_TYPE_UTILITY":
			return false
		}
	}
	return true
}

// GetWindowInfo reads title, class, executable name, geometry and
// iconic state for hwnd (spec §6).
func (c *Connection) GetWindowInfo(hwnd window.Hwnd) (platform.WindowInfo, error) {
	win := xproto.Window(hwnd)

	rect, err := c.windowRect(win)
	if err != nil {
		return platform.WindowInfo{}, fmt.Errorf("failed to read geometry for %d: %w", hwnd, err)
	}

	return platform.WindowInfo{
		Title:     windowTitle(c.XUtil, win),
		Class:     windowClass(c.XUtil, win),
		Exe:       windowExe(c.XUtil, win),
		Rect:      rect,
		Minimized: isIconic(c.XUtil, win),
	}, nil
}

func (c *Connection) windowRect(win xproto.Window) (geometry.Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return geometry.Rect{}, err
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

func windowTitle(xu *xgbutil.XUtil, win xproto.Window) string {
	if title, err := ewmh.WmNameGet(xu, win); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(xu, win); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

func windowClass(xu *xgbutil.XUtil, win xproto.Window) string {
	class, err := icccm.WmClassGet(xu, win)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(class.Class)
}

func windowExe(xu *xgbutil.XUtil, win xproto.Window) string {
	pid, err := ewmh.WmPidGet(xu, win)
	if err != nil {
		return ""
	}
	path, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))
	if err != nil {
		return ""
	}
	return filepath.Base(path)
}

func isIconic(xu *xgbutil.XUtil, win xproto.Window) bool {
	state, err := icccm.WmStateGet(xu, win)
	if err == nil && state.State == icccm.StateIconic {
		return true
	}
	states, err := ewmh.WmStateGet(xu, win)
	if err != nil {
		return false
	}
	for _, s := range states {
		if s == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

// SetWindowPos applies rect to hwnd, clearing any maximized state first so
// the request isn't ignored by the window's own constraints (spec §4.5
// retile).
func (c *Connection) SetWindowPos(hwnd window.Hwnd, rect geometry.Rect) error {
	win := xproto.Window(hwnd)
	c.unmaximize(win)

	if err := ewmh.MoveresizeWindow(c.XUtil, win, rect.X, rect.Y, rect.Width, rect.Height); err != nil {
		xwindow.New(c.XUtil, win).MoveResize(rect.X, rect.Y, rect.Width, rect.Height)
	}
	return nil
}

func (c *Connection) unmaximize(win xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return
	}
	for _, s := range states {
		if s == "_NET_WM_STATE_MAXIMIZED_HORZ" {
			ewmh.WmStateReq(c.XUtil, win, 0, "_NET_WM_STATE_MAXIMIZED_HORZ")
		}
		if s == "_NET_WM_STATE_MAXIMIZED_VERT" {
			ewmh.WmStateReq(c.XUtil, win, 0, "_NET_WM_STATE_MAXIMIZED_VERT")
		}
	}
}

// Show maps hwnd (spec §4.5 retile: a tiling window that re-enters the
// visible set after a monocle toggle or workspace switch).
func (c *Connection) Show(hwnd window.Hwnd) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), xproto.Window(hwnd)).Check()
}

// Hide unmaps hwnd without destroying its state, used for workspace
// switches and monocle (spec §4.5 retile).
func (c *Connection) Hide(hwnd window.Hwnd) error {
	return xproto.UnmapWindowChecked(c.XUtil.Conn(), xproto.Window(hwnd)).Check()
}

// Minimize requests iconic state via a WM_CHANGE_STATE client message
// (ICCCM 4.1.4). Built manually rather than via xgbutil's icccm helpers,
// which panic on this library version for non-UTF8 titles.
func (c *Connection) Minimize(hwnd window.Hwnd) error {
	atom, err := internAtom(c.XUtil, "WM_CHANGE_STATE")
	if err != nil {
		return err
	}
	const iconicState = 3
	return c.sendClientMessage(xproto.Window(hwnd), atom, []uint32{iconicState, 0, 0, 0, 0})
}

// Restore clears iconic state by mapping the window and asking it to go
// to normal state (ICCCM 4.1.4).
func (c *Connection) Restore(hwnd window.Hwnd) error {
	atom, err := internAtom(c.XUtil, "WM_CHANGE_STATE")
	if err != nil {
		return err
	}
	const normalState = 1
	if err := c.sendClientMessage(xproto.Window(hwnd), atom, []uint32{normalState, 0, 0, 0, 0}); err != nil {
		return err
	}
	return xproto.MapWindowChecked(c.XUtil.Conn(), xproto.Window(hwnd)).Check()
}

// Focus activates and raises hwnd via _NET_ACTIVE_WINDOW (EWMH).
func (c *Connection) Focus(hwnd window.Hwnd) error {
	atom, err := internAtom(c.XUtil, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return err
	}
	const sourceIndication = 2
	return c.sendClientMessage(xproto.Window(hwnd), atom, []uint32{sourceIndication, 0, 0, 0, 0})
}

func internAtom(xu *xgbutil.XUtil, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(xu.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	return reply.Atom, nil
}

func (c *Connection) sendClientMessage(win xproto.Window, msgType xproto.Atom, data []uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   msgType,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
