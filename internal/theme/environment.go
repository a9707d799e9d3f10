// Package theme resolves the light/dark preference and remembers the user's
// choice across sessions.
package theme

import (
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"cipherstudio-cli/internal/model"
)

const EnvTheme = "CIPHERSTUDIO_THEME"

// Environment describes the terminal the program runs in. It is resolved once
// at startup and passed to whatever needs it.
type Environment struct {
	PrefersDark bool
	Profile     termenv.Profile
	// Source names where PrefersDark came from: "env", "colorfgbg", "terminal"
	// or "default".
	Source string
}

// Preferred is the theme the environment asks for when nothing was saved.
func (e Environment) Preferred() model.Theme {
	if e.PrefersDark {
		return model.ThemeDark
	}
	return model.ThemeLight
}

// DetectEnvironment inspects the process environment. Terminal background
// queries only happen when probe is set and stdout is a terminal, since they
// can block on terminals that never answer.
func DetectEnvironment(probe bool) Environment {
	env := detect(os.Getenv)
	if env.Source == "default" && probe && isatty.IsTerminal(os.Stdout.Fd()) {
		env.PrefersDark = termenv.NewOutput(os.Stdout).HasDarkBackground()
		env.Source = "terminal"
	}
	return env
}

func detect(getenv func(string) string) Environment {
	env := Environment{Profile: profile(getenv), Source: "default"}

	switch model.Theme(strings.ToLower(strings.TrimSpace(getenv(EnvTheme)))) {
	case model.ThemeDark:
		env.PrefersDark, env.Source = true, "env"
		return env
	case model.ThemeLight:
		env.PrefersDark, env.Source = false, "env"
		return env
	}

	// COLORFGBG is "fg;bg" (sometimes more segments); the last one is the
	// background. xterm palette 0-6 are dark colours.
	if v := strings.TrimSpace(getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil && bg >= 0 {
			env.PrefersDark, env.Source = bg < 7, "colorfgbg"
			return env
		}
	}
	return env
}

// profile honours NO_COLOR and otherwise trusts COLORTERM/TERM over termenv's
// own probe, which under-reports on some terminals.
func profile(getenv func(string) string) termenv.Profile {
	if strings.TrimSpace(getenv("NO_COLOR")) != "" {
		return termenv.Ascii
	}
	p := termenv.ColorProfile()
	colorterm := strings.ToLower(getenv("COLORTERM"))
	term := strings.ToLower(getenv("TERM"))
	switch {
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		if p != termenv.Ascii {
			p = termenv.TrueColor
		}
	case strings.Contains(term, "256color"):
		if p == termenv.Ascii || p == termenv.ANSI {
			p = termenv.ANSI256
		}
	}
	return p
}
