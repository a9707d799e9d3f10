package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/lipgloss"

	"cipherstudio-cli/internal/editor"
)

func newTextarea() textarea.Model {
	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Placeholder = editor.EmptyMessage
	return ta
}

// syncSession rebinds the editor when the store's active file changed under
// it (delete, switch, rename, heal).
func (m *appModel) syncSession() {
	if m.session != nil && !m.session.Stale() {
		return
	}
	m.session = editor.Open(m.st)
	m.loadEditor(m.session.Text)
	m.viewing = false
}

// loadEditor puts text into the textarea and records the baseline edits are
// compared against. The textarea expands tabs and splits on '\r', so text it
// cannot hand back unchanged is locked: editing it in place would rewrite
// the whole file.
func (m *appModel) loadEditor(text string) {
	m.textarea.SetValue(text)
	m.textarea.CursorStart()
	m.editBase = m.textarea.Value()
	m.editLocked = m.editBase != text
}

// afterEdit forwards textarea changes to the store.
func (m *appModel) afterEdit() {
	if m.session.Empty() || m.editLocked {
		return
	}
	if v := m.textarea.Value(); v != m.editBase {
		m.editBase = v
		m.session.OnChange(v)
	}
}

func (m *appModel) renderEditor(width, height int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
	if m.session.Empty() {
		body := styleMuted().Render(editor.EmptyMessage)
		return normalizePane(title.Render("EDITOR")+"\n\n"+body, width, height)
	}

	path, _ := m.st.Path(m.session.FileID)
	head := title.Render(path) + "  " + styleMuted().Render(m.session.Language)
	if m.viewing {
		head += "  " + styleMuted().Render("(view)")
	} else if m.editLocked {
		head += "  " + styleMuted().Render("(read-only, e: external editor)")
	}

	bodyH := max(height-1, 1)
	var body string
	if m.viewing {
		body = editor.Highlight(m.session.Text, m.session.Language, width, m.themeName)
	} else {
		m.textarea.SetWidth(width)
		m.textarea.SetHeight(bodyH)
		body = m.textarea.View()
	}
	return normalizePane(head+"\n"+body, width, height)
}
