package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/LGUG2Z/yatta/internal/runtimepath"
)

// Client speaks the yatta wire protocol (spec §6) over the runtime
// socket on behalf of cmd/yattac and internal/tui.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a Client bound to the runtime socket path.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// CommandError wraps a failed Response for callers that want the typed
// ErrorKind rather than a formatted string (spec §7).
type CommandError struct {
	Kind string
	Msg  string
}

func (e *CommandError) Error() string {
	if e.Msg == "" {
		return e.Kind
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (c *Client) send(cmd string, args any) (*Response, error) {
	req := &Request{Cmd: cmd}
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal args: %w", err)
		}
		req.Args = b
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to agent: %w (is it running?)", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !resp.Ok {
		return nil, &CommandError{Kind: resp.Error, Msg: resp.Msg}
	}
	return &resp, nil
}

// Ping checks whether the agent is running and responding.
func (c *Client) Ping() error {
	_, err := c.send(CmdPing, nil)
	return err
}

// Status retrieves a snapshot of the agent's world state.
func (c *Client) Status() (*StatusData, error) {
	resp, err := c.send(CmdStatus, nil)
	if err != nil {
		return nil, err
	}
	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// Focus moves focus in the given direction ("left"|"right"|"up"|"down").
func (c *Client) Focus(direction string) error {
	_, err := c.send(CmdFocus, DirectionArgs{Direction: direction})
	return err
}

// Move swaps the focused slot toward direction.
func (c *Client) Move(direction string) error {
	_, err := c.send(CmdMove, DirectionArgs{Direction: direction})
	return err
}

// Promote swaps the focused slot with the master slot.
func (c *Client) Promote() error {
	_, err := c.send(CmdPromote, nil)
	return err
}

// Resize grows or shrinks the focused slot's named edge.
func (c *Client) Resize(edge, dir string) error {
	_, err := c.send(CmdResize, ResizeArgs{Edge: edge, Dir: dir})
	return err
}

// Layout sets the active workspace's layout kind.
func (c *Client) Layout(kind string) error {
	_, err := c.send(CmdLayout, LayoutArgs{Kind: kind})
	return err
}

// ToggleMonocle flips the active workspace's monocle flag.
func (c *Client) ToggleMonocle() error {
	_, err := c.send(CmdToggleMonocle, nil)
	return err
}

// ToggleFloat moves the focused window between tiling and floating.
func (c *Client) ToggleFloat() error {
	_, err := c.send(CmdToggleFloat, nil)
	return err
}

// Retile forces a geometry recompute and reapply.
func (c *Client) Retile() error {
	_, err := c.send(CmdRetile, nil)
	return err
}

// SetWorkspace switches the focused monitor's active workspace.
func (c *Client) SetWorkspace(index int) error {
	_, err := c.send(CmdSetWorkspace, WorkspaceArgs{Index: index})
	return err
}

// MoveWindowToWorkspace moves the focused window to workspace index.
func (c *Client) MoveWindowToWorkspace(index int) error {
	_, err := c.send(CmdMoveWindowToWorkspace, WorkspaceArgs{Index: index})
	return err
}

// MoveToDisplay moves the focused window to the previous/next monitor.
func (c *Client) MoveToDisplay(next bool) error {
	_, err := c.send(CmdMoveToDisplay, MoveToDisplayArgs{Next: next})
	return err
}

// FloatClass, FloatTitle, and FloatExe insert a float-rule.
func (c *Client) FloatClass(pattern string) error {
	_, err := c.send(CmdFloatClass, PatternArgs{Pattern: pattern})
	return err
}

func (c *Client) FloatTitle(pattern string) error {
	_, err := c.send(CmdFloatTitle, PatternArgs{Pattern: pattern})
	return err
}

func (c *Client) FloatExe(pattern string) error {
	_, err := c.send(CmdFloatExe, PatternArgs{Pattern: pattern})
	return err
}

// TogglePause flips the agent's paused flag.
func (c *Client) TogglePause() error {
	_, err := c.send(CmdTogglePause, nil)
	return err
}

// Shutdown asks a running agent to exit cleanly.
func (c *Client) Shutdown() error {
	_, err := c.send(CmdShutdown, nil)
	return err
}
