package styles

import "github.com/charmbracelet/lipgloss"

// Slate Emerald -- Dark Palette
// Near-black slate backgrounds with emerald accents.

var (
	// Backgrounds (darkest to lightest)
	BgDeep    = lipgloss.Color("#020617") // slate-950 -- main background
	BgPanel   = lipgloss.Color("#0f172a") // slate-900 -- panel/card background
	BgSurface = lipgloss.Color("#1e293b") // slate-800 -- elevated surface

	// Accents
	AccentPrimary   = lipgloss.Color("#34d399") // Emerald -- titles, focused borders
	AccentSecondary = lipgloss.Color("#10b981") // Deep emerald -- secondary info
	AccentBlue      = lipgloss.Color("#3b82f6") // Oracle contract
	AccentOrange    = lipgloss.Color("#f97316") // Data feed

	// Status
	StatusOK    = lipgloss.Color("#10b981") // Emerald
	StatusWarn  = lipgloss.Color("#eab308") // Yellow
	StatusError = lipgloss.Color("#ef4444") // Red
	StatusInfo  = lipgloss.Color("#60a5fa") // Blue

	// Text
	TextPrimary   = lipgloss.Color("#e2e8f0") // slate-200
	TextSecondary = lipgloss.Color("#94a3b8") // slate-400
	TextMuted     = lipgloss.Color("#64748b") // slate-500
	TextFaint     = lipgloss.Color("#475569") // slate-600

	// Borders
	BorderNormal  = lipgloss.Color("#1e293b") // slate-800
	BorderFocused = lipgloss.Color("#10b981") // Emerald focus ring
)
