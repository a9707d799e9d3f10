package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"cipherstudio-cli/internal/editor"
	"cipherstudio-cli/internal/logging"
	"cipherstudio-cli/internal/model"
	"cipherstudio-cli/internal/project"
	"cipherstudio-cli/internal/theme"
)

type focusArea int

const (
	focusExplorer focusArea = iota
	focusEditor
)

type appModel struct {
	st     *project.Store
	prefs  *theme.Preferences
	env    theme.Environment
	logger *zap.Logger

	width  int
	height int
	focus  focusArea

	rows      []project.Row
	cursor    int
	collapsed map[string]bool

	session    *editor.Session
	textarea   textarea.Model
	editBase   string
	editLocked bool
	viewing    bool

	modal        modalKind
	modalTarget  string
	input        textinput.Model
	confirmFocus confirmFocus

	minibuffer string
	themeName  model.Theme

	externalEditorPath   string
	externalEditorBefore string
	externalEditorFileID string
}

func newModel(opts Options) appModel {
	m := appModel{
		st:        opts.Project,
		prefs:     opts.Theme,
		env:       opts.Env,
		logger:    logging.OrNop(opts.Logger).Named("tui"),
		collapsed: map[string]bool{},
		textarea:  newTextarea(),
		width:     100,
		height:    30,
	}
	m.themeName = m.env.Preferred()
	if m.prefs != nil {
		m.themeName = m.prefs.Load()
	}
	applyTheme(m.env, m.themeName)

	m.refreshRows()
	m.moveCursorTo(m.st.SelectedNodeID())
	m.syncSession()
	m.resize()
	return m
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case externalEditorDoneMsg:
		m.applyExternalEditorResult(msg)
		m.refreshRows()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		if m.focus == focusEditor {
			return m.updateEditor(msg)
		}
		return m.updateExplorer(msg)
	}

	if m.focus == focusEditor && m.modal == modalNone {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateExplorer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.minibuffer = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		return m, m.focusEditorPane()
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(len(m.rows)-1, 0)
	case "enter", " ":
		m.selectCursor()
	case "left", "h":
		if n, ok := m.cursorNode(); ok && n.IsFolder() && !m.collapsed[n.ID] {
			m.collapsed[n.ID] = true
			m.refreshRows()
		}
	case "right", "l":
		if n, ok := m.cursorNode(); ok && m.collapsed[n.ID] {
			delete(m.collapsed, n.ID)
			m.refreshRows()
		}
	case "n":
		m.openModal(modalNewFile, m.targetFolder(), "", "name.js")
	case "N":
		m.openModal(modalNewFolder, m.targetFolder(), "", "folder")
	case "r":
		if n, ok := m.cursorNode(); ok {
			if m.st.IsProtectedNode(n.ID) {
				m.showMinibuffer(n.Name + " is protected and cannot be renamed")
				break
			}
			m.openModal(modalRename, n.ID, n.Name, "")
		}
	case "d", "delete":
		if n, ok := m.cursorNode(); ok {
			if m.st.IsProtectedNode(n.ID) {
				m.showMinibuffer(n.Name + " is protected and cannot be deleted")
				break
			}
			m.modal = modalConfirmDelete
			m.modalTarget = n.ID
			m.confirmFocus = confirmFocusCancel
		}
	case "p":
		m.openModal(modalSwitchProject, "", m.st.ProjectID(), "project id")
	case "t":
		m.toggleTheme()
	case "v":
		if m.session.Empty() {
			m.showMinibuffer(editor.EmptyMessage)
			break
		}
		m.viewing = !m.viewing
	case "e":
		if m.session.Empty() {
			m.showMinibuffer(editor.EmptyMessage)
			break
		}
		cmd, err := m.openExternalEditor()
		if err != nil {
			m.showMinibuffer("Editor failed: " + err.Error())
			break
		}
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "esc":
		m.focus = focusExplorer
		m.textarea.Blur()
		return m, nil
	}
	if m.session.Empty() {
		return m, nil
	}
	if m.editLocked {
		m.showMinibuffer(m.session.Name + " has tabs or CR line endings; press esc, then e to edit it externally")
		return m, nil
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.afterEdit()
	return m, cmd
}

func (m *appModel) focusEditorPane() tea.Cmd {
	m.focus = focusEditor
	m.viewing = false
	return m.textarea.Focus()
}

// selectCursor mirrors clicking a row: select it, open files, and fold or
// unfold folders.
func (m *appModel) selectCursor() {
	n, ok := m.cursorNode()
	if !ok {
		return
	}
	m.st.SetSelectedNode(n.ID)
	if n.IsFile() {
		m.st.SetActiveFile(n.ID)
	} else if len(m.st.Children(n.ID)) > 0 {
		if m.collapsed[n.ID] {
			delete(m.collapsed, n.ID)
		} else {
			m.collapsed[n.ID] = true
		}
	}
	m.afterMutation()
}

func (m *appModel) openModal(kind modalKind, target, value, placeholder string) {
	m.modal = kind
	m.modalTarget = target
	m.input = newInput(value, placeholder)
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.modalTarget = ""
	m.input.Blur()
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal == modalConfirmDelete {
		switch msg.String() {
		case "esc", "ctrl+g", "n", "q":
			m.closeModal()
		case "tab", "shift+tab", "left", "right", "h", "l":
			if m.confirmFocus == confirmFocusConfirm {
				m.confirmFocus = confirmFocusCancel
			} else {
				m.confirmFocus = confirmFocusConfirm
			}
		case "y":
			m.deleteTarget()
		case "enter":
			if m.confirmFocus == confirmFocusConfirm {
				m.deleteTarget()
			} else {
				m.closeModal()
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "esc", "ctrl+g":
		m.closeModal()
		return m, nil
	case "enter":
		m.submitModal()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *appModel) submitModal() {
	kind, target := m.modal, m.modalTarget
	value := strings.TrimSpace(m.input.Value())
	m.closeModal()
	if value == "" {
		return
	}

	switch kind {
	case modalNewFile, modalNewFolder:
		k := model.KindFile
		if kind == modalNewFolder {
			k = model.KindFolder
		}
		id := m.st.AddNode(target, value, k)
		if id == "" {
			m.showMinibuffer("Cannot create " + value + " here")
			return
		}
		m.st.SetSelectedNode(id)
		if k == model.KindFile {
			m.st.SetActiveFile(id)
		}
		delete(m.collapsed, target)
		m.afterMutation()
		m.moveCursorTo(id)
	case modalRename:
		m.st.RenameNode(target, value)
		m.afterMutation()
		m.moveCursorTo(target)
	case modalSwitchProject:
		m.st.SwitchProject(value)
		// Scaffold ids repeat across projects, so always rebind the editor.
		m.session = nil
		m.collapsed = map[string]bool{}
		m.cursor = 0
		m.afterMutation()
		m.moveCursorTo(m.st.SelectedNodeID())
		m.showMinibuffer("Opened project " + m.st.ProjectID())
	}
}

func (m *appModel) deleteTarget() {
	id := m.modalTarget
	m.closeModal()
	path, _ := m.st.Path(id)
	before := len(m.rows)
	m.st.RemoveNode(id)
	if _, still := m.st.Node(id); still {
		m.showMinibuffer(path + " contains protected files and cannot be deleted")
		return
	}
	m.afterMutation()
	m.moveCursorTo(m.st.SelectedNodeID())
	m.logger.Debug("removed", zap.String("id", id), zap.Int("rowsBefore", before), zap.Int("rowsAfter", len(m.rows)))
	m.showMinibuffer("Deleted " + path)
}

func (m *appModel) afterMutation() {
	m.refreshRows()
	m.syncSession()
}

func (m *appModel) toggleTheme() {
	if m.prefs != nil {
		m.themeName = m.prefs.Toggle()
	} else if m.themeName == model.ThemeDark {
		m.themeName = model.ThemeLight
	} else {
		m.themeName = model.ThemeDark
	}
	applyTheme(m.env, m.themeName)
	m.showMinibuffer("Theme: " + string(m.themeName))
}

func (m *appModel) showMinibuffer(s string) {
	m.minibuffer = s
}

func (m *appModel) explorerWidth() int {
	w := m.width / 3
	if w > 36 {
		w = 36
	}
	if w < 18 {
		w = 18
	}
	return w
}

func (m *appModel) resize() {
	editorW := max(m.width-m.explorerWidth()-1, 10)
	bodyH := max(m.height-2, 3)
	m.textarea.SetWidth(editorW)
	m.textarea.SetHeight(max(bodyH-1, 1))
}

func (m appModel) View() string {
	header := m.renderHeader()
	status := m.renderStatus()
	bodyH := max(m.height-2, 3)

	var body string
	if m.modal != modalNone {
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.renderModal())
		body = normalizePane(body, m.width, bodyH)
	} else {
		explorerW := m.explorerWidth()
		editorW := max(m.width-explorerW-1, 10)
		sep := lipgloss.NewStyle().Foreground(colorBorder).Render(strings.TrimSuffix(strings.Repeat("│\n", bodyH), "\n"))
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderExplorer(explorerW, bodyH),
			sep,
			m.renderEditor(editorW, bodyH),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m appModel) renderModal() string {
	switch m.modal {
	case modalConfirmDelete:
		path, _ := m.st.Path(m.modalTarget)
		body := fmt.Sprintf("Delete %s? Folders are deleted with everything inside.", path)
		return renderConfirmModal(m.width, m.modal.title(), body, "Delete", "Cancel", m.confirmFocus)
	case modalRename:
		return renderPromptModal(m.width, m.modal.title(), "New name:", m.input)
	case modalSwitchProject:
		return renderPromptModal(m.width, m.modal.title(), "Project id (created if new):", m.input)
	default:
		path, _ := m.st.Path(m.modalTarget)
		if path == "" {
			path = "/"
		}
		return renderPromptModal(m.width, m.modal.title(), "Name (in "+path+"):", m.input)
	}
}

func (m appModel) renderHeader() string {
	p := m.st.Snapshot()
	brand := lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1).Render("CipherStudio")
	info := styleMuted().Render(fmt.Sprintf(" %s · id=%s", p.Name, p.ProjectID))
	return normalizePane(brand+info, m.width, 1)
}

func (m appModel) renderStatus() string {
	p := m.st.Snapshot()
	active := "No file selected"
	lang := ""
	if !m.session.Empty() {
		active, _ = m.st.Path(m.session.FileID)
		lang = m.session.Language
	}
	right := "Ready"
	style := lipgloss.NewStyle().Foreground(colorSurfaceFg).Background(colorChromeBg)
	if m.minibuffer != "" {
		right = m.minibuffer
		style = style.Foreground(colorWarn)
	}
	parts := []string{p.Name, active}
	if lang != "" {
		parts = append(parts, lang)
	}
	parts = append(parts, string(m.themeName), right)
	line := " " + strings.Join(parts, "  │  ")
	return style.Width(m.width).Render(normalizePane(line, m.width, 1))
}
