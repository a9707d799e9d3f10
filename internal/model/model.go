package model

type NodeKind string

const (
	KindFile   NodeKind = "file"
	KindFolder NodeKind = "folder"
)

// Node is one file or folder of a project tree. The tree is stored flat: every
// node except the root points at its containing folder through ParentID.
type Node struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     NodeKind `json:"type"`
	ParentID *string  `json:"parentId"`

	// Content is only meaningful for files.
	Content string `json:"content,omitempty"`
}

func (n Node) IsFile() bool   { return n.Kind == KindFile }
func (n Node) IsFolder() bool { return n.Kind == KindFolder }
func (n Node) IsRoot() bool   { return n.ParentID == nil }

// Parent returns the parent id, or "" for the root.
func (n Node) Parent() string {
	if n.ParentID == nil {
		return ""
	}
	return *n.ParentID
}

type Project struct {
	ProjectID      string  `json:"projectId"`
	Name           string  `json:"name"`
	Nodes          []Node  `json:"nodes"`
	ActiveFileID   *string `json:"activeFileId"`
	SelectedNodeID *string `json:"selectedNodeId"`
}

// Clone returns a deep copy so callers can hold on to a snapshot while the
// store keeps mutating its own state.
func (p Project) Clone() Project {
	out := p
	out.Nodes = make([]Node, len(p.Nodes))
	for i, n := range p.Nodes {
		if n.ParentID != nil {
			n.ParentID = StrPtr(*n.ParentID)
		}
		out.Nodes[i] = n
	}
	if p.ActiveFileID != nil {
		out.ActiveFileID = StrPtr(*p.ActiveFileID)
	}
	if p.SelectedNodeID != nil {
		out.SelectedNodeID = StrPtr(*p.SelectedNodeID)
	}
	return out
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

func StrPtr(s string) *string { return &s }

// Deref returns "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
