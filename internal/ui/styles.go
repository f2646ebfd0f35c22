package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
// - Default (white/black): Primary text
// - Accent (soft purple #A78BFA): Highlights, paths, interactive elements
// - Muted (gray): Secondary info, counts
// - No colored success/error/warning - use unicode symbols only

// AccentHex is the accent color shared with the markdown renderer.
const AccentHex = "#A78BFA"

var (
	// Accent style for file paths, identifiers, highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(AccentHex))

	// Muted style for secondary info, hints, counts
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(AccentHex)).Bold(true)
)
