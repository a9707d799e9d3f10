package tui

import (
	"github.com/charmbracelet/lipgloss"

	"cipherstudio-cli/internal/model"
	"cipherstudio-cli/internal/theme"
)

// Colours adapt to the background, so switching the theme only has to flip
// lipgloss's notion of a dark background.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      = ac("240", "243")
	colorSurfaceFg  = ac("235", "252")
	colorChromeBg   = ac("254", "236")
	colorControlBg  = ac("252", "235")
	colorInputBg    = ac("254", "234")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorAccent     = ac("27", "62")
	colorAccentFg   = ac("255", "235")
	colorWarn       = ac("160", "203")
	colorBorder     = ac("250", "240")
	colorBorderOn   = ac("232", "255")
)

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// applyTheme points lipgloss at the chosen palette and the terminal's colour
// profile.
func applyTheme(env theme.Environment, t model.Theme) {
	lipgloss.SetColorProfile(env.Profile)
	lipgloss.SetHasDarkBackground(t == model.ThemeDark)
}
