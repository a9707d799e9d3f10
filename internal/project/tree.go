package project

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"cipherstudio-cli/internal/model"
)

// AddNode creates a node under parentID and returns its id. Files start empty.
//
// The parent must be an existing folder; otherwise nothing is created and ""
// is returned, so the tree never gains orphans.
func (s *Store) AddNode(parentID string, name string, kind model.NodeKind) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind != model.KindFile && kind != model.KindFolder {
		return ""
	}
	i := s.indexOf(parentID)
	if i < 0 || !s.state.Nodes[i].IsFolder() {
		s.logger.Debug("add ignored: parent is not a folder", zap.String("parentId", parentID))
		return ""
	}

	id := s.freshID()
	s.state.Nodes = append(s.state.Nodes, model.Node{
		ID:       id,
		Name:     name,
		Kind:     kind,
		ParentID: model.StrPtr(parentID),
	})
	s.commit(true)
	return id
}

func (s *Store) freshID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 && !protectedIDs[id] {
			return id
		}
	}
}

// RenameNode changes only the name. Protected and unknown ids are ignored.
func (s *Store) RenameNode(id string, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if protectedIDs[id] {
		return
	}
	i := s.indexOf(id)
	if i < 0 || s.state.Nodes[i].Name == name {
		return
	}
	s.state.Nodes[i].Name = name
	s.commit(true)
}

// UpdateFileContent replaces the content of a file. Anything that is not a
// file is ignored.
func (s *Store) UpdateFileContent(id string, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 || !s.state.Nodes[i].IsFile() || s.state.Nodes[i].Content == content {
		return
	}
	s.state.Nodes[i].Content = content
	s.commit(true)
}

// RemoveNode deletes id and its whole subtree in one step.
//
// Afterwards the active file falls back to the first remaining file, a default
// file is synthesized when no file is left, and a removed selection follows the
// active file. Protected ids, unknown ids, the root, and subtrees that contain a
// protected node are ignored.
func (s *Store) RemoveNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if protectedIDs[id] || i < 0 || s.state.Nodes[i].IsRoot() {
		return
	}

	removed := s.subtree(id)
	for rid := range removed {
		if protectedIDs[rid] {
			s.logger.Debug("remove ignored: subtree holds a protected node",
				zap.String("id", id), zap.String("protected", rid))
			return
		}
	}

	next := make([]model.Node, 0, len(s.state.Nodes)-len(removed))
	for _, n := range s.state.Nodes {
		if !removed[n.ID] {
			next = append(next, n)
		}
	}

	active := s.state.ActiveFileID
	if active != nil && removed[*active] {
		active = nil
		for _, n := range next {
			if n.IsFile() {
				active = model.StrPtr(n.ID)
				break
			}
		}
	}

	hasFile := false
	for _, n := range next {
		if n.IsFile() {
			hasFile = true
			break
		}
	}
	if !hasFile {
		f := model.Node{
			ID:       s.freshID(),
			Name:     DefaultNewFileName,
			Kind:     model.KindFile,
			Content:  defaultNewFileContent,
		}
		if parent := defaultFolder(next); parent != "" {
			f.ParentID = model.StrPtr(parent)
		}
		next = append(next, f)
		active = model.StrPtr(f.ID)
	}

	selected := s.state.SelectedNodeID
	if selected != nil && removed[*selected] {
		selected = nil
		if active != nil {
			selected = model.StrPtr(*active)
		}
	}

	s.state.Nodes = next
	s.state.ActiveFileID = active
	s.state.SelectedNodeID = selected
	s.commit(true)
}

// subtree marks id and every transitive descendant, using a parent->children
// index built for this call.
func (s *Store) subtree(id string) map[string]bool {
	children := childrenIndex(s.state.Nodes)
	marked := map[string]bool{}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if marked[cur] {
			continue
		}
		marked[cur] = true
		for _, ch := range children[cur] {
			stack = append(stack, ch.ID)
		}
	}
	return marked
}

func childrenIndex(nodes []model.Node) map[string][]model.Node {
	out := map[string][]model.Node{}
	for _, n := range nodes {
		if n.ParentID == nil {
			continue
		}
		out[*n.ParentID] = append(out[*n.ParentID], n)
	}
	return out
}

// defaultFolder is the src folder when present, else the root folder, else any
// folder. It only returns ids present in nodes; "" means there is no folder.
func defaultFolder(nodes []model.Node) string {
	var root, first string
	for _, n := range nodes {
		if !n.IsFolder() {
			continue
		}
		if n.ID == DefaultFolderID {
			return n.ID
		}
		if n.IsRoot() && root == "" {
			root = n.ID
		}
		if first == "" {
			first = n.ID
		}
	}
	if root != "" {
		return root
	}
	return first
}

// Children returns the direct children of parentID sorted by name.
func (s *Store) Children(parentID string) []model.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]model.Node(nil), s.projection().children[parentID]...)
	SortByName(out)
	return out
}

// Root returns the root folder.
func (s *Store) Root() (model.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.state.Nodes {
		if n.IsRoot() {
			return n, true
		}
	}
	return model.Node{}, false
}

// SortByName orders siblings case-insensitively, ties broken by raw name then id.
func SortByName(nodes []model.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := strings.ToLower(nodes[i].Name), strings.ToLower(nodes[j].Name)
		if a != b {
			return a < b
		}
		if nodes[i].Name != nodes[j].Name {
			return nodes[i].Name < nodes[j].Name
		}
		return nodes[i].ID < nodes[j].ID
	})
}
