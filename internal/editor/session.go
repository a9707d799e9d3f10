package editor

import "cipherstudio-cli/internal/model"

const EmptyMessage = "Select a file to edit"

// Source is the slice of the project store a session needs.
type Source interface {
	ActiveFile() (model.Node, bool)
	UpdateFileContent(id string, content string)
}

// Session binds an editor to the active file. Every change is forwarded to the
// store as-is; there is no debouncing.
type Session struct {
	FileID   string
	Name     string
	Text     string
	Language string

	src Source
}

// Open starts a session on src's active file. With no active file the session
// is empty and OnChange does nothing.
func Open(src Source) *Session {
	s := &Session{src: src}
	if src == nil {
		return s
	}
	if n, ok := src.ActiveFile(); ok {
		s.FileID = n.ID
		s.Name = n.Name
		s.Text = n.Content
		s.Language = Language(n.Name)
	}
	return s
}

func (s *Session) Empty() bool { return s == nil || s.FileID == "" }

// OnChange records text as the file's new content.
func (s *Session) OnChange(text string) {
	if s.Empty() {
		return
	}
	s.Text = text
	if s.src != nil {
		s.src.UpdateFileContent(s.FileID, text)
	}
}

// Stale reports whether the store's active file moved away from this session,
// either to another file or to a different name.
func (s *Session) Stale() bool {
	if s == nil || s.src == nil {
		return false
	}
	n, ok := s.src.ActiveFile()
	if !ok {
		return !s.Empty()
	}
	return n.ID != s.FileID || n.Name != s.Name
}
