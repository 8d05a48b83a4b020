package mcp

// FocusInput is the input for the focus tool.
type FocusInput struct {
	Direction string `json:"direction" jsonschema:"required,One of left right up down"`
}

// MoveInput is the input for the move tool.
type MoveInput struct {
	Direction string `json:"direction" jsonschema:"required,One of left right up down"`
}

// ResizeInput is the input for the resize tool.
type ResizeInput struct {
	Edge      string `json:"edge" jsonschema:"required,One of left right top bottom"`
	Direction string `json:"direction" jsonschema:"required,One of increase decrease"`
}

// LayoutInput is the input for the layout tool.
type LayoutInput struct {
	Kind string `json:"kind" jsonschema:"required,One of bspv bsph columns rows"`
}

// WorkspaceInput is the input for set-workspace and move-window-to-workspace.
type WorkspaceInput struct {
	Index int `json:"index" jsonschema:"required,Workspace index 0-8"`
}

// MoveToDisplayInput is the input for the move-to-display tool.
type MoveToDisplayInput struct {
	Next bool `json:"next" jsonschema:"When true move to the next display, otherwise the previous one"`
}

// PatternInput is the input for float-class, float-title, and float-exe.
type PatternInput struct {
	Pattern string `json:"pattern" jsonschema:"required,Pattern to match: exact case-insensitive for class and exe, substring for title"`
}

// EmptyInput is used by tools that take no arguments.
type EmptyInput struct{}

// OkOutput is the result of a command that only reports success.
type OkOutput struct {
	Ok bool `json:"ok"`
}

// StatusOutput mirrors ipc.StatusData for the status tool.
type StatusOutput struct {
	Paused   bool            `json:"paused"`
	Monitors []StatusMonitor `json:"monitors"`
}

// StatusMonitor mirrors ipc.StatusMonitor.
type StatusMonitor struct {
	ID         string            `json:"id"`
	Focused    bool              `json:"focused"`
	Workspaces []StatusWorkspace `json:"workspaces"`
}

// StatusWorkspace mirrors ipc.StatusWorkspace.
type StatusWorkspace struct {
	Index   int            `json:"index"`
	Active  bool           `json:"active"`
	Layout  string         `json:"layout"`
	Monocle bool           `json:"monocle"`
	Windows []StatusWindow `json:"windows"`
}

// StatusWindow mirrors ipc.StatusWindow.
type StatusWindow struct {
	Hwnd     uint32 `json:"hwnd"`
	Title    string `json:"title"`
	Class    string `json:"class"`
	Floating bool   `json:"floating"`
	Focused  bool   `json:"focused"`
}
