package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cipherstudio-cli/internal/model"
	"cipherstudio-cli/internal/project"
)

func (m *appModel) refreshRows() {
	m.rows = m.st.Rows(m.collapsed)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *appModel) cursorNode() (model.Node, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return model.Node{}, false
	}
	return m.rows[m.cursor].Node, true
}

func (m *appModel) moveCursorTo(id string) {
	for i, r := range m.rows {
		if r.Node.ID == id {
			m.cursor = i
			return
		}
	}
}

// targetFolder is where n/N create nodes: the row under the cursor when it is
// a folder, else that row's parent.
func (m *appModel) targetFolder() string {
	n, ok := m.cursorNode()
	if !ok {
		return project.DefaultFolderID
	}
	if n.IsFolder() {
		return n.ID
	}
	return n.Parent()
}

func (m *appModel) renderExplorer(width, height int) string {
	active := m.st.ActiveFileID()
	selected := m.st.SelectedNodeID()

	header := lipgloss.NewStyle().Bold(true).Foreground(colorMuted).Render("FILES")
	lines := []string{header}

	// Keep the cursor visible.
	visible := height - 1
	start := 0
	if visible > 0 && m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	for i := start; i < len(m.rows); i++ {
		r := m.rows[i]
		n := r.Node

		icon := "  "
		if n.IsFolder() {
			icon = "▾ "
			if r.Collapsed && r.HasChildren {
				icon = "▸ "
			}
		}
		marker := " "
		if n.ID == active {
			marker = "●"
		}
		name := n.Name
		if n.IsFolder() {
			name += "/"
		}
		line := marker + strings.Repeat("  ", r.Depth) + icon + name

		st := lipgloss.NewStyle().Foreground(colorSurfaceFg)
		if n.ID == selected {
			st = st.Bold(true)
		}
		if i == m.cursor {
			st = st.Background(colorSelectedBg).Foreground(colorSelectedFg).Width(width)
			if m.focus == focusExplorer {
				st = st.Bold(true)
			}
		}
		lines = append(lines, st.Render(line))
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}
