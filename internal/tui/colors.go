package tui

// Color constants for the slate TUI theme
const (
	// Base Colors
	ColorCardBackground = "#1B1530" // Dark purple
	ColorBorder         = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Field labels, user input, titles
	ColorSecondaryText = "#B1B8C7" // Subtle purple-tinted grey
	ColorDisabledText  = "#6D7383" // Locked fields while rolling
	ColorPlaceholder   = "#B1B8C7"
	ColorHelpText      = "240" // Dark grey for help text

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Borders, active field
	ColorAccentBright = "#A78BFA" // Idle timecode, highlights

	// State Colors
	ColorError   = "#EF4444" // Validation errors, rolling timecode
	ColorSuccess = "#22C55E" // Logged takes
	ColorWarning = "#F59E0B" // Logging failures
)
