package mcp

// BoxInfo is a window rectangle.
type BoxInfo struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CanvasStatusInput is the input for the canvas_status tool.
type CanvasStatusInput struct{}

// CanvasStatusOutput is the output for the canvas_status tool.
type CanvasStatusOutput struct {
	Display      string  `json:"display"`
	Mode         string  `json:"mode"`
	Phase        string  `json:"phase"`
	Window       uint32  `json:"window"`
	Mapped       bool    `json:"mapped"`
	Closed       bool    `json:"closed"`
	Box          BoxInfo `json:"box"`
	ScreenWidth  int     `json:"screen_width"`
	ScreenHeight int     `json:"screen_height"`
	Children     int     `json:"children"`
}

// DrawTextInput is the input for the draw_text tool.
type DrawTextInput struct {
	Text string `json:"text" jsonschema:"Text to draw. Core fonts take at most 255 bytes per string."`
	X    int    `json:"x,omitempty" jsonschema:"Baseline origin x in window pixels (default: 0)"`
	Y    int    `json:"y,omitempty" jsonschema:"Baseline origin y in window pixels (default: 0)"`
}

// DrawTextOutput is the output for the draw_text tool.
type DrawTextOutput struct {
	Drawn    bool `json:"drawn"`
	Children int  `json:"children"`
}

// SetTitleInput is the input for the set_title tool.
type SetTitleInput struct {
	Title string `json:"title" jsonschema:"New window title (WM_NAME and _NET_WM_NAME)"`
}

// SetTitleOutput is the output for the set_title tool.
type SetTitleOutput struct {
	Title string `json:"title"`
}

// VisibilityInput is the input for the show_window and hide_window tools.
type VisibilityInput struct{}

// VisibilityOutput reports the window's mapped state after the call.
type VisibilityOutput struct {
	Mapped bool `json:"mapped"`
}

// CloseCanvasInput is the input for the close_canvas tool.
type CloseCanvasInput struct{}

// CloseCanvasOutput is the output for the close_canvas tool.
type CloseCanvasOutput struct {
	Requested bool `json:"requested"`
}

// ScreenCenterInput is the input for the screen_center tool.
type ScreenCenterInput struct {
	Display string `json:"display,omitempty" jsonschema:"X display to query (default: the canvas display)"`
}

// ScreenCenterOutput is the output for the screen_center tool.
type ScreenCenterOutput struct {
	Display string `json:"display"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}
