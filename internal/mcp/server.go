// Package mcp exposes yatta's §4.4 command surface as MCP tools, so an
// AI agent can drive the tiling engine directly instead of shelling out
// to yattac. Grounded on the teacher's internal/mcp package (tool
// registration against mcpsdk.Server, typed input/output structs) with
// its tmux-orchestration domain (spawn/read/kill agent, artifacts,
// hooks) dropped entirely — there is no SPEC_FULL.md component that
// manages coding-agent sessions. What is kept is the registration
// pattern itself, retargeted to the same command set internal/ipc
// serves.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/LGUG2Z/yatta/internal/geometry"
	"github.com/LGUG2Z/yatta/internal/layout"
	"github.com/LGUG2Z/yatta/internal/model"
	"github.com/LGUG2Z/yatta/internal/reconciler"
	"github.com/LGUG2Z/yatta/internal/window"
)

const (
	ServerName    = "yatta"
	ServerVersion = "0.1.0"
)

// Server is the MCP tool surface over a running world/reconciler pair.
type Server struct {
	mcpServer *mcpsdk.Server
	world     *model.World
	rec       *reconciler.Reconciler
}

// NewServer creates an MCP server backed by world and rec.
func NewServer(world *model.World, rec *reconciler.Reconciler) *Server {
	s := &Server{
		world: world,
		rec:   rec,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: ServerName, Version: ServerVersion},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus",
		Description: "Move input focus to the window in the given direction from the currently focused window.",
	}, s.handleFocus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move",
		Description: "Move the focused window in the given direction, swapping it with the nearest window in that direction.",
	}, s.handleMove)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "promote",
		Description: "Swap the focused window with the first (master) slot on its workspace; if it is already there, swap the first two slots.",
	}, s.handlePromote)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize",
		Description: "Move the given edge of the focused window by one resize step in pixels, increasing or decreasing its size; the neighbouring window absorbs the change.",
	}, s.handleResize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "layout",
		Description: "Set the active workspace's layout algorithm: bspv, bsph, columns, or rows.",
	}, s.handleLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_monocle",
		Description: "Toggle monocle mode on the active workspace (one window fills the work area at a time).",
	}, s.handleToggleMonocle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_float",
		Description: "Toggle the focused window between tiled and floating.",
	}, s.handleToggleFloat)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "retile",
		Description: "Recompute and reapply tiled window geometry on the active workspace.",
	}, s.handleRetile)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_workspace",
		Description: "Switch the focused monitor's active workspace to the given index (0-8).",
	}, s.handleSetWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window_to_workspace",
		Description: "Move the focused window to the workspace at the given index (0-8), on the same monitor.",
	}, s.handleMoveWindowToWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_to_display",
		Description: "Move the focused window to the next or previous monitor.",
	}, s.handleMoveToDisplay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "float_class",
		Description: "Add a startup/runtime rule floating any window whose class matches the pattern.",
	}, s.handleFloatClass)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "float_title",
		Description: "Add a startup/runtime rule floating any window whose title matches the pattern.",
	}, s.handleFloatTitle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "float_exe",
		Description: "Add a startup/runtime rule floating any window whose executable name matches the pattern.",
	}, s.handleFloatExe)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_pause",
		Description: "Toggle whether the engine accepts mutating commands. Status remains readable while paused.",
	}, s.handleTogglePause)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "status",
		Description: "Read a snapshot of every monitor, workspace, and window, including focus and pause state.",
	}, s.handleStatus)
}

// respond translates a reconciler command's result into the MCP tool
// return shape, turning a *model.CommandError into a Go error an MCP
// client can surface.
func respond(err error) (*mcpsdk.CallToolResult, OkOutput, error) {
	if err != nil {
		return nil, OkOutput{}, commandError(err)
	}
	return nil, OkOutput{Ok: true}, nil
}

func commandError(err error) error {
	var cmdErr *model.CommandError
	if ce, ok := err.(*model.CommandError); ok {
		cmdErr = ce
	}
	if cmdErr != nil {
		return fmt.Errorf("%s: %s", cmdErr.Kind, cmdErr.Msg)
	}
	return fmt.Errorf("%s: %w", model.OsCallFailed, err)
}

func (s *Server) handleFocus(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	dir, ok := parseDirection(args.Direction)
	if !ok {
		return nil, OkOutput{}, fmt.Errorf("unknown direction: %s", args.Direction)
	}
	return respond(s.rec.Focus(dir))
}

func (s *Server) handleMove(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	dir, ok := parseDirection(args.Direction)
	if !ok {
		return nil, OkOutput{}, fmt.Errorf("unknown direction: %s", args.Direction)
	}
	return respond(s.rec.Move(dir))
}

func (s *Server) handlePromote(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	return respond(s.rec.Promote())
}

func (s *Server) handleResize(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	edge, ok := parseEdge(args.Edge)
	if !ok {
		return nil, OkOutput{}, fmt.Errorf("unknown edge: %s", args.Edge)
	}
	dir, ok := parseResizeDir(args.Direction)
	if !ok {
		return nil, OkOutput{}, fmt.Errorf("unknown resize direction: %s", args.Direction)
	}
	return respond(s.rec.Resize(edge, dir))
}

func (s *Server) handleLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args LayoutInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	kind, ok := layout.ParseKind(args.Kind)
	if !ok {
		return nil, OkOutput{}, fmt.Errorf("unknown layout: %s", args.Kind)
	}
	return respond(s.rec.SetLayout(kind))
}

func (s *Server) handleToggleMonocle(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	return respond(s.rec.ToggleMonocle())
}

func (s *Server) handleToggleFloat(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	return respond(s.rec.ToggleFloat())
}

func (s *Server) handleRetile(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	return respond(s.rec.RetileActive())
}

func (s *Server) handleSetWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args WorkspaceInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	return respond(s.rec.SetWorkspace(args.Index))
}

func (s *Server) handleMoveWindowToWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args WorkspaceInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	return respond(s.rec.MoveWindowToWorkspace(args.Index))
}

func (s *Server) handleMoveToDisplay(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveToDisplayInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	return respond(s.rec.MoveToDisplay(args.Next))
}

func (s *Server) handleFloatClass(_ context.Context, _ *mcpsdk.CallToolRequest, args PatternInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	return respond(s.rec.FloatClass(args.Pattern))
}

func (s *Server) handleFloatTitle(_ context.Context, _ *mcpsdk.CallToolRequest, args PatternInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	return respond(s.rec.FloatTitle(args.Pattern))
}

func (s *Server) handleFloatExe(_ context.Context, _ *mcpsdk.CallToolRequest, args PatternInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	return respond(s.rec.FloatExe(args.Pattern))
}

func (s *Server) handleTogglePause(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, OkOutput, error) {
	return respond(s.rec.TogglePause())
}

// handleStatus reads a snapshot directly, the same way ipc.Server's
// handleStatus does: it only reads, so it takes the world's lock
// without going through the reconciler.
func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	s.world.Lock()
	defer s.world.Unlock()

	out := StatusOutput{Paused: s.world.Paused}
	for monIdx, mon := range s.world.Monitors {
		sm := StatusMonitor{ID: mon.ID, Focused: monIdx == s.world.FocusedMonitor}
		for wsIdx, ws := range mon.Workspaces {
			sw := StatusWorkspace{
				Index:   wsIdx,
				Active:  wsIdx == mon.Active,
				Layout:  ws.Layout.String(),
				Monocle: ws.Monocle,
			}
			for i, handle := range ws.Tiling {
				sw.Windows = append(sw.Windows, s.statusWindow(handle, !ws.Focus.Floating && ws.Focus.Index == i, false))
			}
			for _, handle := range ws.Floating {
				sw.Windows = append(sw.Windows, s.statusWindow(handle, ws.Focus.Floating && ws.Focus.Hwnd == handle, true))
			}
			sm.Workspaces = append(sm.Workspaces, sw)
		}
		out.Monitors = append(out.Monitors, sm)
	}
	return nil, out, nil
}

func (s *Server) statusWindow(handle window.Hwnd, focused, floating bool) StatusWindow {
	win := s.world.Windows[handle]
	sw := StatusWindow{Hwnd: uint32(handle), Floating: floating, Focused: focused}
	if win != nil {
		sw.Title = win.Title
		sw.Class = win.Class
	}
	return sw
}

func parseDirection(s string) (geometry.Direction, bool) {
	switch s {
	case "left":
		return geometry.DirLeft, true
	case "right":
		return geometry.DirRight, true
	case "up":
		return geometry.DirUp, true
	case "down":
		return geometry.DirDown, true
	default:
		return 0, false
	}
}

func parseEdge(s string) (geometry.Edge, bool) {
	switch s {
	case "left":
		return geometry.Left, true
	case "right":
		return geometry.Right, true
	case "top":
		return geometry.Top, true
	case "bottom":
		return geometry.Bottom, true
	default:
		return 0, false
	}
}

func parseResizeDir(s string) (model.ResizeDirection, bool) {
	switch s {
	case "increase":
		return model.Increase, true
	case "decrease":
		return model.Decrease, true
	default:
		return 0, false
	}
}
