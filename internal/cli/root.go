package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cipherstudio-cli/internal/config"
	"cipherstudio-cli/internal/format"
	"cipherstudio-cli/internal/logging"
	"cipherstudio-cli/internal/project"
	"cipherstudio-cli/internal/store"
	"cipherstudio-cli/internal/theme"
)

type App struct {
	ConfigPath string
	DataDir    string
	Backend    string
	ProjectID  string
	LogLevel   string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "cipherstudio",
		Short:        "CipherStudio: edit a React project tree from the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  cipherstudio

  # Open (or create) a project and look at it
  cipherstudio open p1
  cipherstudio tree --plain

  # Edit files from scripts
  cipherstudio add src Button.js
  echo 'export default () => null' | cipherstudio write <node-id>

  # Serve the live preview bundle
  cipherstudio serve --addr 127.0.0.1:5173
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !format.Valid(app.Format) {
			return writeErr(cmd, fmt.Errorf("unknown format: %s (want json|edn)", app.Format))
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to config.yaml (default: $CIPHERSTUDIO_CONFIG_DIR/config.yaml or ~/.cipherstudio/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.DataDir, "data-dir", "", "Directory holding persisted projects (overrides data_dir)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Storage backend (sqlite|files|memory)")
	cmd.PersistentFlags().StringVar(&app.ProjectID, "project", "", "Project id (default: last opened, then default_project)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "json", "Output format (json|edn)")

	cmd.AddCommand(newOpenCmd(app, "open"))
	cmd.AddCommand(newOpenCmd(app, "switch"))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newTreeCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newSelectCmd(app))
	cmd.AddCommand(newActivateCmd(app))
	cmd.AddCommand(newWriteCmd(app))
	cmd.AddCommand(newCatCmd(app))
	cmd.AddCommand(newPathsCmd(app))
	cmd.AddCommand(newInspectCmd(app))
	cmd.AddCommand(newThemeCmd(app))
	cmd.AddCommand(newServeCmd(app))

	return cmd
}

// session is everything one command invocation needs, opened from config and
// flags and released by close.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	kv      store.KV
	project *project.Store
	closers []func()
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func loadConfig(app *App) (*config.Config, error) {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(app.DataDir); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(app.Backend); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(app.LogLevel); v != "" {
		cfg.Log.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession loads config, builds the logger, opens the backend and the
// project. quiet keeps logs off the terminal unless a log file is configured.
func openSession(app *App, quiet bool) (*session, error) {
	cfg, err := loadConfig(app)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg}

	if quiet && cfg.Log.File == "" {
		s.logger = zap.NewNop()
	} else {
		logger, closeLog, err := logging.New(cfg.Log)
		if err != nil {
			return nil, err
		}
		s.logger = logger
		s.closers = append(s.closers, closeLog)
	}

	kv, closeKV, err := store.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		s.close()
		return nil, err
	}
	s.kv = kv
	s.closers = append(s.closers, func() {
		if err := closeKV(); err != nil {
			s.logger.Warn("close storage failed", zap.Error(err))
		}
	})

	s.project = project.New(kv,
		project.WithLogger(s.logger),
		project.WithNamespace(cfg.Namespace),
	)
	s.project.Open(resolveProjectID(app, cfg, kv))
	return s, nil
}

func resolveProjectID(app *App, cfg *config.Config, kv store.KV) string {
	if v := strings.TrimSpace(app.ProjectID); v != "" {
		return v
	}
	if v := project.LastOpened(kv, cfg.Namespace); v != "" {
		return v
	}
	return cfg.DefaultProject
}

func (s *session) preferences(env theme.Environment) *theme.Preferences {
	return theme.NewPreferences(s.kv, s.cfg.Namespace, env, s.logger)
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
