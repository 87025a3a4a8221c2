package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorAccent    = lipgloss.Color("78")  // Green
)

// HeaderStyle renders the year and month fields.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// ArrowStyle renders an enabled prev/next control.
var ArrowStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorAccent)

// DisabledArrowStyle renders a prev/next control with nowhere to go.
var DisabledArrowStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

// SelectedItem highlights the cursor row in either pane.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary)

// NormalItem renders unselected rows.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// MutedItem renders secondary text such as counts and dates.
var MutedItem = lipgloss.NewStyle().
	Foreground(colorSecondary)

// EditingField marks a field that is being typed into.
var EditingField = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236"))

// PaneStyle frames an unfocused pane.
var PaneStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted)

// FocusedPaneStyle frames the pane that receives navigation keys.
var FocusedPaneStyle = PaneStyle.
	BorderForeground(colorPrimary)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// ErrorStyle for reload failures.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true)
