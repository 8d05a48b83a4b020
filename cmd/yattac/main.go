// Command yattac is yatta's control client: one subcommand per spec §6
// CLI verb, dispatched over the IPC socket. Grounded on the teacher's
// cmd/termtile/main.go (hand-rolled os.Args[1] switch to run<Verb>(args)
// functions returning a process exit code) trimmed to this spec's much
// smaller, mostly-positional-argument command set — no flag.NewFlagSet
// is needed since no subcommand here takes optional flags.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/LGUG2Z/yatta/internal/ipc"
)

const (
	exitSuccess         = 0
	exitInvalidUsage    = 1
	exitAgentNotRunning = 2
	exitRejected        = 3
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(exitInvalidUsage)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "start":
		os.Exit(runStart(args))
	case "stop":
		os.Exit(runStop(args))
	case "focus":
		os.Exit(runDirectionCmd(args, "focus", func(c *ipc.Client, dir string) error { return c.Focus(dir) }))
	case "move":
		os.Exit(runDirectionCmd(args, "move", func(c *ipc.Client, dir string) error { return c.Move(dir) }))
	case "move-to-display":
		os.Exit(runMoveToDisplay(args))
	case "resize":
		os.Exit(runResize(args))
	case "promote":
		os.Exit(runNoArgCmd(args, "promote", func(c *ipc.Client) error { return c.Promote() }))
	case "layout":
		os.Exit(runLayout(args))
	case "toggle-monocle":
		os.Exit(runNoArgCmd(args, "toggle-monocle", func(c *ipc.Client) error { return c.ToggleMonocle() }))
	case "toggle-float":
		os.Exit(runNoArgCmd(args, "toggle-float", func(c *ipc.Client) error { return c.ToggleFloat() }))
	case "toggle-pause":
		os.Exit(runNoArgCmd(args, "toggle-pause", func(c *ipc.Client) error { return c.TogglePause() }))
	case "retile":
		os.Exit(runNoArgCmd(args, "retile", func(c *ipc.Client) error { return c.Retile() }))
	case "set-workspace":
		os.Exit(runWorkspaceCmd(args, "set-workspace", func(c *ipc.Client, i int) error { return c.SetWorkspace(i) }))
	case "move-window-to-workspace":
		os.Exit(runWorkspaceCmd(args, "move-window-to-workspace", func(c *ipc.Client, i int) error { return c.MoveWindowToWorkspace(i) }))
	case "float-class":
		os.Exit(runPatternCmd(args, "float-class", func(c *ipc.Client, p string) error { return c.FloatClass(p) }))
	case "float-title":
		os.Exit(runPatternCmd(args, "float-title", func(c *ipc.Client, p string) error { return c.FloatTitle(p) }))
	case "float-exe":
		os.Exit(runPatternCmd(args, "float-exe", func(c *ipc.Client, p string) error { return c.FloatExe(p) }))
	case "status":
		os.Exit(runStatus(args))
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		os.Exit(exitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage(os.Stderr)
		os.Exit(exitInvalidUsage)
	}
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, "Usage: yattac <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  start                                Start the daemon if it is not already running")
	fmt.Fprintln(w, "  stop                                 Ask a running daemon to exit cleanly")
	fmt.Fprintln(w, "  status                               Print a snapshot of monitors/workspaces/windows")
	fmt.Fprintln(w, "  focus <left|right|up|down>           Move focus")
	fmt.Fprintln(w, "  move <left|right|up|down>            Move the focused window")
	fmt.Fprintln(w, "  move-to-display <previous|next>      Move the focused window to another monitor")
	fmt.Fprintln(w, "  resize <edge> <increase|decrease>     Resize the focused window")
	fmt.Fprintln(w, "  promote                              Promote the focused window")
	fmt.Fprintln(w, "  layout <bspv|bsph|columns|rows>       Set the active workspace's layout")
	fmt.Fprintln(w, "  toggle-monocle                       Toggle monocle mode")
	fmt.Fprintln(w, "  toggle-float                         Toggle the focused window's floating state")
	fmt.Fprintln(w, "  toggle-pause                         Toggle whether commands are accepted")
	fmt.Fprintln(w, "  retile                               Force a retile of the active workspace")
	fmt.Fprintln(w, "  set-workspace <0-8>                   Switch the active workspace")
	fmt.Fprintln(w, "  move-window-to-workspace <0-8>        Move the focused window to a workspace")
	fmt.Fprintln(w, "  float-class <pattern>                 Always float windows matching a class")
	fmt.Fprintln(w, "  float-title <pattern>                 Always float windows matching a title")
	fmt.Fprintln(w, "  float-exe <pattern>                   Always float windows matching an executable")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Exit codes: 0 success, 1 invalid usage, 2 agent not running, 3 command rejected.")
}

// exitForErr maps a Client error to spec §6's exit codes: a
// *ipc.CommandError means the daemon rejected the command (3); anything
// else means the socket could not be reached (2).
func exitForErr(err error) int {
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(os.Stderr, err)
	if _, ok := err.(*ipc.CommandError); ok {
		return exitRejected
	}
	return exitAgentNotRunning
}

func runNoArgCmd(args []string, name string, fn func(*ipc.Client) error) int {
	if len(args) != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		return exitInvalidUsage
	}
	return exitForErr(fn(ipc.NewClient()))
}

func runDirectionCmd(args []string, name string, fn func(*ipc.Client, string) error) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: yattac %s <left|right|up|down>\n", name)
		return exitInvalidUsage
	}
	return exitForErr(fn(ipc.NewClient(), args[0]))
}

func runPatternCmd(args []string, name string, fn func(*ipc.Client, string) error) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: yattac %s <pattern>\n", name)
		return exitInvalidUsage
	}
	return exitForErr(fn(ipc.NewClient(), args[0]))
}

func runWorkspaceCmd(args []string, name string, fn func(*ipc.Client, int) error) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: yattac %s <0-8>\n", name)
		return exitInvalidUsage
	}
	index, err := parseWorkspaceIndex(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInvalidUsage
	}
	return exitForErr(fn(ipc.NewClient(), index))
}

func parseWorkspaceIndex(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid workspace index: %s", s)
	}
	return n, nil
}

func runResize(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: yattac resize <left|right|top|bottom> <increase|decrease>")
		return exitInvalidUsage
	}
	return exitForErr(ipc.NewClient().Resize(args[0], args[1]))
}

func runLayout(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: yattac layout <bspv|bsph|columns|rows>")
		return exitInvalidUsage
	}
	return exitForErr(ipc.NewClient().Layout(args[0]))
}

func runMoveToDisplay(args []string) int {
	if len(args) != 1 || (args[0] != "previous" && args[0] != "next") {
		fmt.Fprintln(os.Stderr, "usage: yattac move-to-display <previous|next>")
		return exitInvalidUsage
	}
	return exitForErr(ipc.NewClient().MoveToDisplay(args[0] == "next"))
}

func runStatus(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		return exitInvalidUsage
	}
	status, err := ipc.NewClient().Status()
	if err != nil {
		return exitForErr(err)
	}
	fmt.Printf("paused: %v\n", status.Paused)
	for _, mon := range status.Monitors {
		fmt.Printf("monitor %s (focused=%v)\n", mon.ID, mon.Focused)
		for _, ws := range mon.Workspaces {
			fmt.Printf("  workspace %d layout=%s active=%v monocle=%v windows=%d\n",
				ws.Index, ws.Layout, ws.Active, ws.Monocle, len(ws.Windows))
		}
	}
	return exitSuccess
}

// runStart launches the daemon if it is not already reachable over IPC.
// Spawning the process once is not the process supervision spec §1
// scopes out to an external collaborator (restart policy, crash
// monitoring); it is a convenience for interactive use.
func runStart(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "start takes no arguments")
		return exitInvalidUsage
	}

	if err := ipc.NewClient().Ping(); err == nil {
		fmt.Println("yatta is already running")
		return exitSuccess
	}

	daemonPath, err := daemonBinaryPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitAgentNotRunning
	}

	proc := exec.Command(daemonPath)
	proc.Stdout = nil
	proc.Stderr = nil
	if err := proc.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start daemon: %v\n", err)
		return exitAgentNotRunning
	}

	client := ipc.NewClient()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if client.Ping() == nil {
			fmt.Println("yatta started")
			return exitSuccess
		}
		time.Sleep(100 * time.Millisecond)
	}
	fmt.Fprintln(os.Stderr, "daemon did not become reachable in time")
	return exitAgentNotRunning
}

func runStop(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "stop takes no arguments")
		return exitInvalidUsage
	}

	client := ipc.NewClient()
	if err := client.Ping(); err != nil {
		fmt.Println("yatta is not running")
		return exitAgentNotRunning
	}
	if err := client.Shutdown(); err != nil {
		return exitForErr(err)
	}
	fmt.Println("yatta stopping")
	return exitSuccess
}

// daemonBinaryPath looks for a "yatta" binary alongside yattac.
func daemonBinaryPath() (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate yattac's own path: %w", err)
	}
	candidate := filepath.Join(filepath.Dir(self), "yatta")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	if path, err := exec.LookPath("yatta"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("could not find the yatta daemon binary")
}
