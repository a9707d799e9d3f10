package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalNewFile
	modalNewFolder
	modalRename
	modalSwitchProject
	modalConfirmDelete
)

func (k modalKind) title() string {
	switch k {
	case modalNewFile:
		return "New file"
	case modalNewFolder:
		return "New folder"
	case modalRename:
		return "Rename"
	case modalSwitchProject:
		return "Open project"
	case modalConfirmDelete:
		return "Delete"
	}
	return ""
}

type confirmFocus int

const (
	confirmFocusCancel confirmFocus = iota
	confirmFocusConfirm
)

func newInput(value, placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 256
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()
	return in
}

func renderPromptModal(width int, title, label string, in textinput.Model) string {
	bodyW := modalBodyWidth(width)
	in.Width = bodyW - 3
	content := strings.Join([]string{
		label,
		renderInputLine(bodyW, in.View()),
		"",
		styleMuted().Width(bodyW).Render("enter: ok   esc: cancel"),
	}, "\n")
	return renderModalBox(width, title, content)
}

func renderConfirmModal(width int, title, body, confirmLabel, cancelLabel string, focus confirmFocus) string {
	// No borders on the buttons; nested borders inside a coloured modal leave
	// artifacts on some terminals.
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(confirmLabel)
	cancel := btnBase.Render(cancelLabel)
	if focus == confirmFocusConfirm {
		confirm = btnActive.Render(confirmLabel)
	} else {
		cancel = btnActive.Render(cancelLabel)
	}
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, " ", cancel)

	bodyW := modalBodyWidth(width)
	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		controls,
		"",
		styleMuted().Width(bodyW).Render("y: delete   n/esc: cancel   tab: focus   enter: select"),
	}, "\n")
	return renderModalBox(width, title, content)
}
