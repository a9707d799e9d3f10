package project

import "cipherstudio-cli/internal/model"

// Row is one line of a flattened tree walk.
type Row struct {
	Node        model.Node
	Depth       int
	HasChildren bool
	Collapsed   bool
}

// Flatten walks nodes depth-first with siblings sorted by name. Nodes whose
// parent is missing are shown as extra roots so no subtree disappears from
// view. Children of collapsed folders are skipped.
func Flatten(nodes []model.Node, collapsed map[string]bool) []Row {
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}
	children := map[string][]model.Node{}
	var roots []model.Node
	for _, n := range nodes {
		if n.ParentID == nil || !present[*n.ParentID] || *n.ParentID == n.ID {
			roots = append(roots, n)
			continue
		}
		children[*n.ParentID] = append(children[*n.ParentID], n)
	}
	SortByName(roots)
	for pid := range children {
		SortByName(children[pid])
	}

	out := make([]Row, 0, len(nodes))
	visited := map[string]bool{}
	var walk func(n model.Node, depth int)
	walk = func(n model.Node, depth int) {
		if visited[n.ID] {
			return
		}
		visited[n.ID] = true
		out = append(out, Row{
			Node:        n,
			Depth:       depth,
			HasChildren: len(children[n.ID]) > 0,
			Collapsed:   collapsed[n.ID],
		})
		if collapsed[n.ID] {
			return
		}
		for _, ch := range children[n.ID] {
			walk(ch, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return out
}

// Rows flattens the current tree.
func (s *Store) Rows(collapsed map[string]bool) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Flatten(s.state.Nodes, collapsed)
}
