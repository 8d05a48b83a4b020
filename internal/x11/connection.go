// Package x11 implements platform.Backend against a live X11 connection
// using xgb/xgbutil: RandR for monitor enumeration, EWMH/ICCCM for window
// metadata and state changes, and substructure events for the reconciler's
// event stream.
package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/LGUG2Z/yatta/internal/platform"
)

// Connection is the live X11 connection and implements platform.Backend.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	events chan platform.Event
	done   chan struct{}
}

var _ platform.Backend = (*Connection)(nil)

// NewConnection establishes a connection to the X11 server.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// EventLoop runs the xgbutil event dispatcher (blocking). Subscribe starts
// it on a background goroutine; callers that want EventLoop's errors or
// lifetime under their own control can call it directly instead.
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Close stops the event dispatcher started by Subscribe (if any), waits
// for it to exit, then disconnects from the X11 server.
func (c *Connection) Close() error {
	if c.done != nil {
		xevent.Quit(c.XUtil)
		<-c.done
	}
	c.XUtil.Conn().Close()
	return nil
}
