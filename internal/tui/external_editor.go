package tui

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type externalEditorDoneMsg struct {
	err error
}

func externalEditorName() string {
	if v := strings.TrimSpace(os.Getenv("VISUAL")); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("EDITOR")); v != "" {
		return v
	}
	return "vi"
}

// openExternalEditor hands the active file to $VISUAL/$EDITOR. The temp file
// keeps the file's extension so the editor picks the right syntax.
func (m *appModel) openExternalEditor() (tea.Cmd, error) {
	args := splitShellWords(externalEditorName())
	if len(args) == 0 {
		args = []string{"vi"}
	}

	f, err := os.CreateTemp("", "cipherstudio-*"+filepath.Ext(m.session.Name))
	if err != nil {
		return nil, err
	}
	path := f.Name()
	if _, err := f.WriteString(m.session.Text); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	_ = f.Close()

	m.externalEditorPath = path
	m.externalEditorBefore = m.session.Text
	m.externalEditorFileID = m.session.FileID

	cmd := exec.Command(args[0], append(args[1:], path)...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return externalEditorDoneMsg{err: err}
	}), nil
}

func (m *appModel) applyExternalEditorResult(msg externalEditorDoneMsg) {
	path := m.externalEditorPath
	before := m.externalEditorBefore
	fileID := m.externalEditorFileID

	m.externalEditorPath = ""
	m.externalEditorBefore = ""
	m.externalEditorFileID = ""
	if strings.TrimSpace(path) == "" {
		return
	}
	defer func() { _ = os.Remove(path) }()

	if msg.err != nil {
		m.showMinibuffer("Editor failed: " + msg.err.Error())
		return
	}
	b, err := os.ReadFile(path)
	if err != nil {
		m.showMinibuffer("Editor read failed: " + err.Error())
		return
	}
	after := string(b)
	if after == before {
		m.showMinibuffer(fmt.Sprintf("No changes from %s", externalEditorName()))
		return
	}

	// The file may have been deleted or switched away from meanwhile.
	m.st.UpdateFileContent(fileID, after)
	m.syncSession()
	if m.session.FileID == fileID {
		m.session.Text = after
		m.loadEditor(after)
	}
	m.showMinibuffer(fmt.Sprintf("Updated from %s", externalEditorName()))
}
