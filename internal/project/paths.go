package project

import (
	"strings"

	"cipherstudio-cli/internal/model"
)

type projection struct {
	rev      uint64
	byID     map[string]model.Node
	children map[string][]model.Node
	// paths maps each file's path to the file; sources maps it to content.
	paths   map[string]model.Node
	sources map[string]string
	pathOf  map[string]string
}

// projection returns the derived views for the current node set, rebuilding
// them only when the node set changed. Callers hold s.mu.
func (s *Store) projection() *projection {
	if s.cache != nil && s.cache.rev == s.rev {
		return s.cache
	}
	nodes := s.state.Nodes
	p := &projection{
		rev:      s.rev,
		byID:     make(map[string]model.Node, len(nodes)),
		children: childrenIndex(nodes),
		paths:    map[string]model.Node{},
		sources:  map[string]string{},
		pathOf:   map[string]string{},
	}
	for _, n := range nodes {
		p.byID[n.ID] = n
	}
	// Enumeration order is insertion order, so on a path collision the file
	// added last wins, every time.
	for _, n := range nodes {
		if !n.IsFile() {
			continue
		}
		path := pathFor(n, p.byID)
		p.paths[path] = n
		p.sources[path] = n.Content
		p.pathOf[n.ID] = path
	}
	s.cache = p
	return p
}

// pathFor joins folder names from just below the root down to n. Walking stops
// at a missing parent or a cycle.
func pathFor(n model.Node, byID map[string]model.Node) string {
	parts := []string{n.Name}
	seen := map[string]bool{n.ID: true}
	cur := n
	for cur.ParentID != nil {
		parent, ok := byID[*cur.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		if !parent.IsRoot() {
			parts = append(parts, parent.Name)
		}
		cur = parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// NodeByID returns an id -> node index of the current tree.
func (s *Store) NodeByID() map[string]model.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.projection().byID
	out := make(map[string]model.Node, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func (s *Store) Node(id string) (model.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.projection().byID[id]
	return n, ok
}

// PathMap maps every file path to its node.
func (s *Store) PathMap() map[string]model.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.projection().paths
	out := make(map[string]model.Node, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// SourceFiles maps every file path to its content. This is what the preview
// consumes.
func (s *Store) SourceFiles() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.projection().sources
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Path returns the path of any node: files and folders alike. The root's path
// is "".
func (s *Store) Path(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.projection()
	if path, ok := p.pathOf[id]; ok {
		return path, true
	}
	n, ok := p.byID[id]
	if !ok {
		return "", false
	}
	if n.IsRoot() {
		return "", true
	}
	return pathFor(n, p.byID), true
}
