package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"cipherstudio-cli/internal/model"
	"cipherstudio-cli/internal/project"
	"cipherstudio-cli/internal/store"
)

func projectSummary(st *project.Store) map[string]any {
	p := st.Snapshot()
	files := 0
	for _, n := range p.Nodes {
		if n.IsFile() {
			files++
		}
	}
	return map[string]any{
		"projectId":      p.ProjectID,
		"name":           p.Name,
		"activeFileId":   p.ActiveFileID,
		"selectedNodeId": p.SelectedNodeID,
		"nodes":          len(p.Nodes),
		"files":          files,
	}
}

func newOpenCmd(app *App, use string) *cobra.Command {
	short := "Open a project (seeding the starter template if it is new)"
	if use == "switch" {
		short = "Switch to another project"
	}
	cmd := &cobra.Command{
		Use:   use + " <project-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return writeErr(cmd, errNotFound("project", args[0]))
			}
			app.ProjectID = id
			s, err := openSession(app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()
			return writeOut(cmd, app, map[string]any{"data": projectSummary(s.project)})
		},
	}
	return cmd
}

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			kv, closeKV, err := store.Open(cfg.Backend, cfg.DataDir)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeKV()

			ids, err := store.ProjectIDs(kv, cfg.Namespace)
			if err != nil {
				return writeErr(cmd, err)
			}
			current := project.LastOpened(kv, cfg.Namespace)
			out := make([]map[string]any, 0, len(ids))
			for _, id := range ids {
				out = append(out, map[string]any{"projectId": id, "current": id == current})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the full project record",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()
			return writeOut(cmd, app, map[string]any{"data": s.project.Snapshot()})
		},
	}
	return cmd
}

// nodeView is the CLI's rendering of a node: the stored fields plus its path.
func nodeView(st *project.Store, n model.Node) map[string]any {
	path, _ := st.Path(n.ID)
	v := map[string]any{
		"id":       n.ID,
		"name":     n.Name,
		"type":     n.Kind,
		"parentId": n.ParentID,
		"path":     path,
	}
	if st.IsProtectedNode(n.ID) {
		v["protected"] = true
	}
	return v
}
