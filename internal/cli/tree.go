package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"cipherstudio-cli/internal/model"
)

func newTreeCmd(app *App) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "List the project tree (sorted by name, depth-first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()

			rows := s.project.Rows(nil)
			if plain {
				active := s.project.ActiveFileID()
				var b strings.Builder
				for _, r := range rows {
					marker := "  "
					if r.Node.ID == active {
						marker = "* "
					}
					name := r.Node.Name
					if r.Node.IsFolder() {
						name += "/"
					}
					fmt.Fprintf(&b, "%s%s%s  [%s]\n", marker, strings.Repeat("  ", r.Depth), name, r.Node.ID)
				}
				_, err := fmt.Fprint(cmd.OutOrStdout(), b.String())
				return err
			}

			out := make([]map[string]any, 0, len(rows))
			for _, r := range rows {
				v := nodeView(s.project, r.Node)
				v["depth"] = r.Depth
				out = append(out, v)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print an indented text tree instead of structured output")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var folder bool
	cmd := &cobra.Command{
		Use:   "add <parent-id> <name>",
		Short: "Create a file (or folder with --folder) under a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()

			parentID := strings.TrimSpace(args[0])
			name := strings.TrimSpace(args[1])
			if name == "" {
				return writeErr(cmd, fmt.Errorf("name must not be empty"))
			}
			parent, ok := s.project.Node(parentID)
			if !ok {
				return writeErr(cmd, errNotFound("node", parentID))
			}
			if !parent.IsFolder() {
				return writeErr(cmd, errNotFolder(parentID))
			}
			kind := model.KindFile
			if folder {
				kind = model.KindFolder
			}
			id := s.project.AddNode(parentID, name, kind)
			n, ok := s.project.Node(id)
			if id == "" || !ok {
				return writeErr(cmd, fmt.Errorf("could not add %q under %s", name, parentID))
			}
			return writeOut(cmd, app, map[string]any{"data": nodeView(s.project, n)})
		},
	}
	cmd.Flags().BoolVar(&folder, "folder", false, "Create a folder instead of a file")
	return cmd
}

func newRenameCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()

			id := strings.TrimSpace(args[0])
			name := strings.TrimSpace(args[1])
			if s.project.IsProtectedNode(id) {
				return writeErr(cmd, errProtected(id))
			}
			if _, ok := s.project.Node(id); !ok {
				return writeErr(cmd, errNotFound("node", id))
			}
			if name == "" {
				return writeErr(cmd, fmt.Errorf("name must not be empty"))
			}
			s.project.RenameNode(id, name)
			n, _ := s.project.Node(id)
			return writeOut(cmd, app, map[string]any{"data": nodeView(s.project, n)})
		},
	}
	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a node and everything below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()

			id := strings.TrimSpace(args[0])
			if s.project.IsProtectedNode(id) {
				return writeErr(cmd, errProtected(id))
			}
			if _, ok := s.project.Node(id); !ok {
				return writeErr(cmd, errNotFound("node", id))
			}

			before := s.project.NodeByID()
			s.project.RemoveNode(id)
			after := s.project.NodeByID()
			if _, still := after[id]; still {
				return writeErr(cmd, fmt.Errorf("protected: %s contains template files and cannot be deleted", id))
			}

			removed := make([]string, 0)
			for nid := range before {
				if _, ok := after[nid]; !ok {
					removed = append(removed, nid)
				}
			}
			sort.Strings(removed)
			var created []map[string]any
			for nid, n := range after {
				if _, ok := before[nid]; !ok {
					created = append(created, nodeView(s.project, n))
				}
			}
			out := map[string]any{
				"removed":        removed,
				"activeFileId":   nullable(s.project.ActiveFileID()),
				"selectedNodeId": nullable(s.project.SelectedNodeID()),
			}
			if len(created) > 0 {
				out["created"] = created
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	return cmd
}

func newSelectCmd(app *App) *cobra.Command {
	var activate bool
	cmd := &cobra.Command{
		Use:   "select <id>",
		Short: "Mark a node as selected (files are also opened unless --activate=false)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()

			id := strings.TrimSpace(args[0])
			n, ok := s.project.Node(id)
			if !ok {
				return writeErr(cmd, errNotFound("node", id))
			}
			s.project.SetSelectedNode(id)
			if activate && n.IsFile() {
				s.project.SetActiveFile(id)
			}
			return writeOut(cmd, app, map[string]any{"data": projectSummary(s.project)})
		},
	}
	cmd.Flags().BoolVar(&activate, "activate", true, "Also make a selected file the active file")
	return cmd
}

func newActivateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activate <id>",
		Short: "Make a file the active (edited) file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()

			id := strings.TrimSpace(args[0])
			n, ok := s.project.Node(id)
			if !ok {
				return writeErr(cmd, errNotFound("node", id))
			}
			if !n.IsFile() {
				return writeErr(cmd, errNotFile(id))
			}
			s.project.SetActiveFile(id)
			return writeOut(cmd, app, map[string]any{"data": projectSummary(s.project)})
		},
	}
	return cmd
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
