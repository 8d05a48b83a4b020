package platform

import (
	"fmt"
	"sync"

	"github.com/LGUG2Z/yatta/internal/geometry"
	"github.com/LGUG2Z/yatta/internal/window"
)

// Fake is an in-memory Backend for reconciler tests: it records every
// call instead of touching a real window system, and lets tests inject
// Events on demand.
type Fake struct {
	mu sync.Mutex

	Monitors []Monitor
	Windows  map[window.Hwnd]WindowInfo
	Managed  map[window.Hwnd]bool

	Calls []string

	events chan Event
	closed bool
}

var _ Backend = (*Fake)(nil)

// NewFake returns an empty Fake backend.
func NewFake() *Fake {
	return &Fake{
		Windows: make(map[window.Hwnd]WindowInfo),
		Managed: make(map[window.Hwnd]bool),
		events:  make(chan Event, 256),
	}
}

// Push delivers ev to whatever is reading the Subscribe channel, as if
// the OS had reported it.
func (f *Fake) Push(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.events <- ev
}

func (f *Fake) record(call string) {
	f.Calls = append(f.Calls, call)
}

// CallsSnapshot returns a copy of the calls recorded so far, safe to
// read concurrently with the backend being driven by another goroutine.
func (f *Fake) CallsSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	copy(out, f.Calls)
	return out
}

func (f *Fake) EnumerateMonitors() ([]Monitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("EnumerateMonitors")
	out := make([]Monitor, len(f.Monitors))
	copy(out, f.Monitors)
	return out, nil
}

func (f *Fake) IsManageable(hwnd window.Hwnd) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	manageable, ok := f.Managed[hwnd]
	return !ok || manageable
}

func (f *Fake) GetWindowInfo(hwnd window.Hwnd) (WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.Windows[hwnd]
	if !ok {
		return WindowInfo{}, fmt.Errorf("fake: no such window %d", hwnd)
	}
	return info, nil
}

func (f *Fake) SetWindowPos(hwnd window.Hwnd, rect geometry.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("SetWindowPos(%d,%+v)", hwnd, rect))
	info := f.Windows[hwnd]
	info.Rect = rect
	f.Windows[hwnd] = info
	return nil
}

func (f *Fake) Show(hwnd window.Hwnd) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("Show(%d)", hwnd))
	return nil
}

func (f *Fake) Hide(hwnd window.Hwnd) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("Hide(%d)", hwnd))
	return nil
}

func (f *Fake) Minimize(hwnd window.Hwnd) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("Minimize(%d)", hwnd))
	info := f.Windows[hwnd]
	info.Minimized = true
	f.Windows[hwnd] = info
	return nil
}

func (f *Fake) Restore(hwnd window.Hwnd) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("Restore(%d)", hwnd))
	info := f.Windows[hwnd]
	info.Minimized = false
	f.Windows[hwnd] = info
	return nil
}

func (f *Fake) Focus(hwnd window.Hwnd) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("Focus(%d)", hwnd))
	return nil
}

func (f *Fake) Subscribe() (<-chan Event, error) {
	return f.events, nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}
