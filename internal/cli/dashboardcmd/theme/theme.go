package theme

import "github.com/charmbracelet/lipgloss"

// Foreground colors
var (
	FgBase      = lipgloss.Color("#C8D3F5")
	FgHalfMuted = lipgloss.Color("#828BB8")
	FgMuted     = lipgloss.Color("#444A73")
	FgSubtle    = lipgloss.Color("#313657")
	FgSelected  = lipgloss.Color("#F1EFEF")
)

// Background colors
var (
	BgBase    = lipgloss.Color("#222436")
	BgOverlay = lipgloss.Color("#2F334D")
)

// Status colors
var (
	Success = lipgloss.Color("#12C78F")
	Error   = lipgloss.Color("#EB4268")
	Warning = lipgloss.Color("#E8FE96")
	Info    = lipgloss.Color("#00A4FF")
)

// Colors
var (
	Primary   = lipgloss.Color("#4776FF")
	Secondary = lipgloss.Color("#FF60FF")
	Accent    = lipgloss.Color("#E8FE96")
)

// Gradient endpoints used for the app title.
const (
	GradientStart = "#5EC6F6"
	GradientEnd   = "#376FE9"
)
