package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/LGUG2Z/yatta/internal/geometry"
	"github.com/LGUG2Z/yatta/internal/layout"
	"github.com/LGUG2Z/yatta/internal/model"
	"github.com/LGUG2Z/yatta/internal/reconciler"
	"github.com/LGUG2Z/yatta/internal/runtimepath"
	"github.com/LGUG2Z/yatta/internal/window"
)

// Server accepts client connections and dispatches commands onto the
// reconciler's serialized loop (spec §6, §5).
type Server struct {
	socketPath string
	listener   net.Listener
	world      *model.World
	rec        *reconciler.Reconciler
	logger     *slog.Logger

	shuttingDown bool
	shutdownMu   sync.Mutex

	shutdownRequested chan struct{}
	shutdownOnce      sync.Once
}

// NewServer creates an IPC server bound to the runtime socket path.
func NewServer(world *model.World, rec *reconciler.Reconciler, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	os.Remove(socketPath)

	return &Server{
		socketPath:        socketPath,
		world:             world,
		rec:               rec,
		logger:            logger,
		shutdownRequested: make(chan struct{}),
	}, nil
}

// ShutdownRequested is closed when a client sends the shutdown command,
// so main can fold it into its own signal-handling select loop (spec §6
// "start"/"stop": stop asks the running daemon to exit cleanly, rather
// than the client supervising its process directly).
func (s *Server) ShutdownRequested() <-chan struct{} {
	return s.shutdownRequested
}

// Start begins listening for IPC connections.
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("ipc server listening", "socket", s.socketPath)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			down := s.shuttingDown
			s.shutdownMu.Unlock()
			if down {
				return
			}
			s.logger.Warn("ipc accept error", "err", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("ipc read error", "err", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.reply(conn, Fail(string(model.InvalidArgument), err.Error()))
		return
	}

	s.reply(conn, s.handleCommand(req))
}

func (s *Server) reply(conn net.Conn, resp Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("ipc marshal response", "err", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("ipc write response", "err", err)
	}
}

// handleCommand dispatches one request to the model, by way of the
// reconciler's Submit so it never interleaves with OS-event handling
// (spec §5).
func (s *Server) handleCommand(req *Request) Response {
	switch req.Cmd {
	case CmdPing:
		return OK(nil)
	case CmdStatus:
		return s.handleStatus()

	case CmdFocus:
		var args DirectionArgs
		if bad, ok := decodeArgs(req.Args, &args); !ok {
			return bad
		}
		dir, ok := parseDirection(args.Direction)
		if !ok {
			return Fail(string(model.InvalidArgument), "unknown direction: "+args.Direction)
		}
		return respond(s.rec.Focus(dir))

	case CmdMove:
		var args DirectionArgs
		if bad, ok := decodeArgs(req.Args, &args); !ok {
			return bad
		}
		dir, ok := parseDirection(args.Direction)
		if !ok {
			return Fail(string(model.InvalidArgument), "unknown direction: "+args.Direction)
		}
		return respond(s.rec.Move(dir))

	case CmdPromote:
		return respond(s.rec.Promote())

	case CmdResize:
		var args ResizeArgs
		if bad, ok := decodeArgs(req.Args, &args); !ok {
			return bad
		}
		edge, ok := parseEdge(args.Edge)
		if !ok {
			return Fail(string(model.InvalidArgument), "unknown edge: "+args.Edge)
		}
		resizeDir, ok := parseResizeDir(args.Dir)
		if !ok {
			return Fail(string(model.InvalidArgument), "unknown resize direction: "+args.Dir)
		}
		return respond(s.rec.Resize(edge, resizeDir))

	case CmdLayout:
		var args LayoutArgs
		if bad, ok := decodeArgs(req.Args, &args); !ok {
			return bad
		}
		kind, ok := layout.ParseKind(args.Kind)
		if !ok {
			return Fail(string(model.InvalidArgument), "unknown layout: "+args.Kind)
		}
		return respond(s.rec.SetLayout(kind))

	case CmdToggleMonocle:
		return respond(s.rec.ToggleMonocle())

	case CmdToggleFloat:
		return respond(s.rec.ToggleFloat())

	case CmdRetile:
		return respond(s.rec.RetileActive())

	case CmdSetWorkspace:
		var args WorkspaceArgs
		if bad, ok := decodeArgs(req.Args, &args); !ok {
			return bad
		}
		return respond(s.rec.SetWorkspace(args.Index))

	case CmdMoveWindowToWorkspace:
		var args WorkspaceArgs
		if bad, ok := decodeArgs(req.Args, &args); !ok {
			return bad
		}
		return respond(s.rec.MoveWindowToWorkspace(args.Index))

	case CmdMoveToDisplay:
		var args MoveToDisplayArgs
		if bad, ok := decodeArgs(req.Args, &args); !ok {
			return bad
		}
		return respond(s.rec.MoveToDisplay(args.Next))

	case CmdFloatClass:
		var args PatternArgs
		if bad, ok := decodeArgs(req.Args, &args); !ok {
			return bad
		}
		return respond(s.rec.FloatClass(args.Pattern))

	case CmdFloatTitle:
		var args PatternArgs
		if bad, ok := decodeArgs(req.Args, &args); !ok {
			return bad
		}
		return respond(s.rec.FloatTitle(args.Pattern))

	case CmdFloatExe:
		var args PatternArgs
		if bad, ok := decodeArgs(req.Args, &args); !ok {
			return bad
		}
		return respond(s.rec.FloatExe(args.Pattern))

	case CmdTogglePause:
		return respond(s.rec.TogglePause())

	case CmdShutdown:
		s.shutdownOnce.Do(func() { close(s.shutdownRequested) })
		return OK(nil)

	default:
		return Fail(string(model.InvalidArgument), "unknown command: "+req.Cmd)
	}
}

// respond translates a reconciler command's result into a wire Response.
func respond(err error) Response {
	if err != nil {
		return responseForErr(err)
	}
	return OK(nil)
}

func responseForErr(err error) Response {
	var cmdErr *model.CommandError
	if ce, ok := err.(*model.CommandError); ok {
		cmdErr = ce
	}
	if cmdErr != nil {
		return Fail(string(cmdErr.Kind), cmdErr.Msg)
	}
	return Fail(string(model.OsCallFailed), err.Error())
}

// handleStatus reads a snapshot of the world without going through the
// reconciler: it only reads, never mutates, so it is safe to take the
// world's lock directly instead of queueing behind pending commands.
func (s *Server) handleStatus() Response {
	s.world.Lock()
	defer s.world.Unlock()

	data := StatusData{Paused: s.world.Paused}
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
		data.Monitors = append(data.Monitors, sm)
	}
	return OK(data)
}

// statusWindow builds a StatusWindow for handle, assuming the caller
// already holds s.world's lock.
func (s *Server) statusWindow(handle window.Hwnd, focused, floating bool) StatusWindow {
	win := s.world.Windows[handle]
	sw := StatusWindow{Hwnd: uint32(handle), Floating: floating, Focused: focused}
	if win != nil {
		sw.Title = win.Title
		sw.Class = win.Class
	}
	return sw
}

// Stop gracefully shuts down the IPC server.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// decodeArgs unmarshals raw into dst. On failure it returns the Response
// to send back and false; callers return immediately on !ok.
func decodeArgs(raw json.RawMessage, dst any) (Response, bool) {
	if err := json.Unmarshal(raw, dst); err != nil {
		return Fail(string(model.InvalidArgument), "invalid args: "+err.Error()), false
	}
	return Response{}, true
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
