package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cipherstudio-cli/internal/model"
	"cipherstudio-cli/internal/theme"
)

func newThemeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the light/dark theme",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheme(cmd, app, func(p *theme.Preferences) model.Theme { return p.Load() })
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current theme",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheme(cmd, app, func(p *theme.Preferences) model.Theme { return p.Load() })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <light|dark>",
		Short: "Set the theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := model.Theme(strings.ToLower(strings.TrimSpace(args[0])))
			if !t.Valid() {
				return writeErr(cmd, fmt.Errorf("invalid theme %q (want light|dark)", args[0]))
			}
			return runTheme(cmd, app, func(p *theme.Preferences) model.Theme {
				p.Load()
				return p.Set(t)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Flip between light and dark",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheme(cmd, app, func(p *theme.Preferences) model.Theme {
				p.Load()
				return p.Toggle()
			})
		},
	})
	return cmd
}

func runTheme(cmd *cobra.Command, app *App, fn func(*theme.Preferences) model.Theme) error {
	s, err := openSession(app, false)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.close()

	env := theme.DetectEnvironment(false)
	t := fn(s.preferences(env))
	return writeOut(cmd, app, map[string]any{"data": map[string]any{
		"theme":       t,
		"prefersDark": env.PrefersDark,
		"source":      env.Source,
	}})
}
