package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/LGUG2Z/yatta/internal/geometry"
	"github.com/LGUG2Z/yatta/internal/platform"
)

type crtcRect struct {
	id   int
	name string
	geometry.Rect
}

// EnumerateMonitors reports every active CRTC via XRandR, each work area
// adjusted for reserved dock/panel struts (spec §6 "enumerate_monitors").
func (c *Connection) EnumerateMonitors() ([]platform.Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var crtcs []crtcRect
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("monitor-%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		crtcs = append(crtcs, crtcRect{
			id:   i,
			name: name,
			Rect: geometry.Rect{X: int(info.X), Y: int(info.Y), Width: int(info.Width), Height: int(info.Height)},
		})
	}

	structs, rootW, rootH := c.dockStruts()

	monitors := make([]platform.Monitor, 0, len(crtcs))
	for _, crtc := range crtcs {
		workArea := applyStruts(crtc.Rect, rootW, rootH, structs)
		monitors = append(monitors, platform.Monitor{
			ID:       fmt.Sprintf("%s-%d", crtc.name, crtc.id),
			WorkArea: workArea,
		})
	}
	return monitors, nil
}

type strut struct {
	left, right, top, bottom int
}

// dockStruts returns the root-relative reserved regions claimed by
// _NET_WM_WINDOW_TYPE_DOCK windows (panels, taskbars), plus the root
// window dimensions they're expressed against.
func (c *Connection) dockStruts() (strut, int, int) {
	var s strut

	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return s, 0, 0
	}
	rootW, rootH := int(rootGeom.Width), int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return s, rootW, rootH
	}

	for _, win := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
		if err != nil {
			continue
		}
		isDock := false
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				isDock = true
				break
			}
		}
		if !isDock {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
			s.left = max(s.left, int(sp.Left))
			s.right = max(s.right, int(sp.Right))
			s.top = max(s.top, int(sp.Top))
			s.bottom = max(s.bottom, int(sp.Bottom))
			continue
		}
		if st, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
			s.left = max(s.left, int(st.Left))
			s.right = max(s.right, int(st.Right))
			s.top = max(s.top, int(st.Top))
			s.bottom = max(s.bottom, int(st.Bottom))
		}
	}
	return s, rootW, rootH
}

// applyStruts shrinks rect by whichever portion of the root-relative
// struts it overlaps. A strut claimed against the full screen width
// (e.g. a top panel spanning both monitors) reduces every monitor's work
// area it overlaps, not just the one it visually sits on.
func applyStruts(rect geometry.Rect, rootW, rootH int, s strut) geometry.Rect {
	if s.top > 0 && rect.Y < s.top {
		overlap := s.top - rect.Y
		rect.Y += overlap
		rect.Height -= overlap
	}
	if s.bottom > 0 && rect.Y+rect.Height > rootH-s.bottom {
		overlap := rect.Y + rect.Height - (rootH - s.bottom)
		rect.Height -= overlap
	}
	if s.left > 0 && rect.X < s.left {
		overlap := s.left - rect.X
		rect.X += overlap
		rect.Width -= overlap
	}
	if s.right > 0 && rect.X+rect.Width > rootW-s.right {
		overlap := rect.X + rect.Width - (rootW - s.right)
		rect.Width -= overlap
	}
	if rect.Width < 1 {
		rect.Width = 1
	}
	if rect.Height < 1 {
		rect.Height = 1
	}
	return rect
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
