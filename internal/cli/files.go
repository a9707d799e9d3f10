package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cipherstudio-cli/internal/editor"
	"cipherstudio-cli/internal/preview"
	"cipherstudio-cli/internal/theme"
)

func newWriteCmd(app *App) *cobra.Command {
	var content string
	cmd := &cobra.Command{
		Use:   "write <id>",
		Short: "Replace a file's content (from --content or stdin)",
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

			text := content
			if !cmd.Flags().Changed("content") {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return writeErr(cmd, err)
				}
				text = string(b)
			}
			s.project.UpdateFileContent(id, text)

			path, _ := s.project.Path(id)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"id":    id,
				"path":  path,
				"bytes": len(text),
			}})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "New content (reads stdin when omitted)")
	return cmd
}

func newCatCmd(app *App) *cobra.Command {
	var (
		render bool
		raw    bool
		width  int
	)
	cmd := &cobra.Command{
		Use:   "cat [id]",
		Short: "Print a file (default: the active file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()

			id := s.project.ActiveFileID()
			if len(args) == 1 {
				id = strings.TrimSpace(args[0])
			}
			if id == "" {
				return writeErr(cmd, errors.New(editor.EmptyMessage))
			}
			n, ok := s.project.Node(id)
			if !ok {
				return writeErr(cmd, errNotFound("node", id))
			}
			if !n.IsFile() {
				return writeErr(cmd, errNotFile(id))
			}
			lang := editor.Language(n.Name)

			switch {
			case render:
				t := s.preferences(theme.DetectEnvironment(false)).Load()
				_, err := fmt.Fprintln(cmd.OutOrStdout(), editor.Highlight(n.Content, lang, width, t))
				return err
			case raw:
				_, err := io.WriteString(cmd.OutOrStdout(), n.Content)
				return err
			}

			path, _ := s.project.Path(id)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"id":       n.ID,
				"name":     n.Name,
				"path":     path,
				"language": lang,
				"content":  n.Content,
			}})
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Print with syntax highlighting")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the content only")
	cmd.Flags().IntVar(&width, "width", 100, "Wrap width for --render")
	return cmd
}

func newPathsCmd(app *App) *cobra.Command {
	var bundle bool
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the path map (path -> node id, or path -> content with --bundle)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.close()

			if bundle {
				return writeOut(cmd, app, map[string]any{"data": preview.Bundle(s.project.SourceFiles())})
			}
			pm := s.project.PathMap()
			out := make(map[string]string, len(pm))
			for _, path := range sortedKeys(pm) {
				out[path] = pm[path].ID
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().BoolVar(&bundle, "bundle", false, "Print the preview bundle (contents plus template fallbacks)")
	return cmd
}

func newInspectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <id>",
		Short: "Show one node with its path, children and flags",
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
			v := nodeView(s.project, n)
			v["protected"] = s.project.IsProtectedNode(id)
			v["active"] = s.project.ActiveFileID() == id
			v["selected"] = s.project.SelectedNodeID() == id
			if n.IsFile() {
				v["language"] = editor.Language(n.Name)
				v["bytes"] = len(n.Content)
			} else {
				children := make([]string, 0)
				for _, ch := range s.project.Children(id) {
					children = append(children, ch.ID)
				}
				v["children"] = children
			}
			return writeOut(cmd, app, map[string]any{"data": v})
		},
	}
	return cmd
}
