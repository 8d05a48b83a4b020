package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/LGUG2Z/yatta/internal/platform"
	"github.com/LGUG2Z/yatta/internal/window"
)

// Subscribe registers substructure and property watches on the root
// window and starts delivering translated platform.Events on the
// returned channel until Close (spec §4.5). Each notification kind is
// registered with xevent's Fun(...).Connect(xu, win) idiom on the root
// window.
func (c *Connection) Subscribe() (<-chan platform.Event, error) {
	mask := xproto.EventMaskSubstructureNotify | xproto.EventMaskPropertyChange
	if err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root, xproto.CwEventMask, []uint32{uint32(mask)}).Check(); err != nil {
		return nil, err
	}

	c.events = make(chan platform.Event, 64)
	c.done = make(chan struct{})

	xevent.MapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		c.onMap(ev.Window)
	}).Connect(c.XUtil, c.Root)

	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		c.onUnmap(ev.Window)
	}).Connect(c.XUtil, c.Root)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		c.emit(platform.Event{Kind: platform.Destroyed, Hwnd: window.Hwnd(ev.Window)})
	}).Connect(c.XUtil, c.Root)

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		c.onConfigure(ev.Window)
	}).Connect(c.XUtil, c.Root)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		c.onPropertyChange(ev)
	}).Connect(c.XUtil, c.Root)

	go func() {
		defer close(c.done)
		defer close(c.events)
		c.EventLoop()
	}()

	return c.events, nil
}

func (c *Connection) emit(ev platform.Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Connection) onMap(win xproto.Window) {
	if !c.IsManageable(window.Hwnd(win)) {
		return
	}
	rect, err := c.windowRect(win)
	if err != nil {
		return
	}
	c.emit(platform.Event{Kind: platform.Shown, Hwnd: window.Hwnd(win), Rect: rect})
}

// onUnmap is ambiguous under plain ICCCM: a window unmaps both when the
// client iconifies itself and when we ourselves hide it on a workspace
// switch or monocle toggle. We disambiguate via WM_STATE: iconic state
// means the reconciler should treat it as a client-initiated Minimized;
// anything else is a hide we already know about and don't re-report.
func (c *Connection) onUnmap(win xproto.Window) {
	if isIconic(c.XUtil, win) {
		c.emit(platform.Event{Kind: platform.Minimized, Hwnd: window.Hwnd(win)})
	}
}

func (c *Connection) onConfigure(win xproto.Window) {
	rect, err := c.windowRect(win)
	if err != nil {
		return
	}
	c.emit(platform.Event{Kind: platform.LocationChanged, Hwnd: window.Hwnd(win), Rect: rect})
}

// onPropertyChange collapses _NET_ACTIVE_WINDOW changes on root into
// ForegroundChanged, and WM_STATE changes on a client into
// Minimized/Restored. EWMH window managers don't distinguish keyboard
// focus from foreground-window activation at the root-property level, so
// FocusChanged is never emitted by this backend; the reconciler treats
// both kinds identically in model.SetFocusedWindow.
func (c *Connection) onPropertyChange(ev xevent.PropertyNotifyEvent) {
	if activeWindowAtom, err := internAtom(c.XUtil, "_NET_ACTIVE_WINDOW"); err == nil && ev.Atom == activeWindowAtom && ev.Window == c.Root {
		if active, err := ewmh.ActiveWindowGet(c.XUtil); err == nil {
			c.emit(platform.Event{Kind: platform.ForegroundChanged, Hwnd: window.Hwnd(active)})
		}
		return
	}

	if wmStateAtom, err := internAtom(c.XUtil, "WM_STATE"); err == nil && ev.Atom == wmStateAtom {
		if isIconic(c.XUtil, ev.Window) {
			c.emit(platform.Event{Kind: platform.Minimized, Hwnd: window.Hwnd(ev.Window)})
		} else {
			c.emit(platform.Event{Kind: platform.Restored, Hwnd: window.Hwnd(ev.Window)})
		}
	}
}
