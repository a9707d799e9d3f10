package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cipherstudio-cli/internal/model"
	"cipherstudio-cli/internal/store"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
}

func newTestStore(t *testing.T, kv store.KV, projectID string) *Store {
	t.Helper()
	s := New(kv, WithIDGenerator(seqIDs()))
	s.Open(projectID)
	return s
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func seedProject(t *testing.T, kv store.KV, p model.Project) {
	t.Helper()
	if err := kv.Save(store.ProjectKey(store.DefaultNamespace, p.ProjectID), []byte(mustJSON(t, p))); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestOpen_UnseenProjectSeedsScaffold(t *testing.T) {
	kv := store.NewMemory()
	s := newTestStore(t, kv, "p1")

	p := s.Snapshot()
	if got := len(p.Nodes); got != 7 {
		t.Fatalf("expected 7 scaffold nodes, got %d", got)
	}
	if got := model.Deref(p.ActiveFileID); got != SrcAppID {
		t.Fatalf("expected active %q, got %q", SrcAppID, got)
	}
	if n, ok := s.Node(SrcAppID); !ok || n.Name != "App.js" || !n.IsFile() {
		t.Fatalf("expected active node App.js file, got %#v ok=%v", n, ok)
	}
	wantPaths := []string{"public/index.html", "src/index.js", "src/App.js", "package.json"}
	files := s.SourceFiles()
	if len(files) != len(wantPaths) {
		t.Fatalf("expected %d files, got %v", len(wantPaths), files)
	}
	for _, path := range wantPaths {
		if _, ok := files[path]; !ok {
			t.Fatalf("expected scaffold file %q; got %v", path, files)
		}
	}

	// Persisted immediately.
	b, ok, err := kv.Load("cipherstudio:project:p1")
	if err != nil || !ok {
		t.Fatalf("expected scaffold to be persisted; ok=%v err=%v", ok, err)
	}
	var stored model.Project
	if err := json.Unmarshal(b, &stored); err != nil {
		t.Fatalf("stored record not json: %v", err)
	}
	if stored.ProjectID != "p1" || len(stored.Nodes) != 7 {
		t.Fatalf("unexpected stored record: %#v", stored)
	}
	if got := LastOpened(kv, store.DefaultNamespace); got != "p1" {
		t.Fatalf("expected last opened p1, got %q", got)
	}
}

func TestOpen_BlankIDUsesDefaultProject(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "  ")
	if got := s.ProjectID(); got != DefaultProjectID {
		t.Fatalf("expected %q, got %q", DefaultProjectID, got)
	}
}

func TestProtectedNodes_RenameAndRemoveAreNoOps(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")
	s.SetSelectedNode(PublicID)
	before := mustJSON(t, s.Snapshot())
	rev := s.Revision()

	for _, id := range ProtectedIDs() {
		if !s.IsProtectedNode(id) {
			t.Fatalf("expected %q to be protected", id)
		}
		s.RenameNode(id, "renamed")
		s.RemoveNode(id)
	}

	if after := mustJSON(t, s.Snapshot()); after != before {
		t.Fatalf("protected operations changed state:\nbefore: %s\nafter:  %s", before, after)
	}
	if s.Revision() != rev {
		t.Fatalf("expected revision to stay %d, got %d", rev, s.Revision())
	}
	if s.IsProtectedNode("n1") {
		t.Fatalf("fresh ids must not be protected")
	}
}

func TestAddNode_RequiresExistingFolderParent(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")
	before := len(s.Snapshot().Nodes)

	if id := s.AddNode("missing", "x.js", model.KindFile); id != "" {
		t.Fatalf("expected no id for missing parent, got %q", id)
	}
	if id := s.AddNode(SrcAppID, "x.js", model.KindFile); id != "" {
		t.Fatalf("expected no id for file parent, got %q", id)
	}
	if id := s.AddNode(SrcID, "x.js", model.NodeKind("link")); id != "" {
		t.Fatalf("expected no id for unknown kind, got %q", id)
	}
	if got := len(s.Snapshot().Nodes); got != before {
		t.Fatalf("expected node count %d, got %d", before, got)
	}

	id := s.AddNode(SrcID, "util.js", model.KindFile)
	if id == "" {
		t.Fatalf("expected id")
	}
	n, ok := s.Node(id)
	if !ok || n.Parent() != SrcID || n.Kind != model.KindFile || n.Content != "" {
		t.Fatalf("unexpected node %#v ok=%v", n, ok)
	}
	if path, _ := s.Path(id); path != "src/util.js" {
		t.Fatalf("expected path src/util.js, got %q", path)
	}
}

func TestRemoveNode_RemovesExactlyTheSubtree(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")
	lib := s.AddNode(SrcID, "lib", model.KindFolder)
	a := s.AddNode(lib, "a.js", model.KindFile)
	deep := s.AddNode(lib, "deep", model.KindFolder)
	b := s.AddNode(deep, "b.js", model.KindFile)
	other := s.AddNode(SrcID, "other.js", model.KindFile)

	before := s.NodeByID()
	s.RemoveNode(lib)
	after := s.NodeByID()

	if got, want := len(before)-len(after), 4; got != want {
		t.Fatalf("expected %d nodes removed, got %d", want, got)
	}
	for _, id := range []string{lib, a, deep, b} {
		if _, ok := after[id]; ok {
			t.Fatalf("expected %q to be removed", id)
		}
	}
	for id := range before {
		if id == lib || id == a || id == deep || id == b {
			continue
		}
		if _, ok := after[id]; !ok {
			t.Fatalf("expected %q to survive", id)
		}
	}
	if _, ok := after[other]; !ok {
		t.Fatalf("sibling removed")
	}
}

func TestRemoveNode_ReassignsActiveAndSelection(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")
	id := s.AddNode(SrcID, "scratch.js", model.KindFile)
	s.SetActiveFile(id)
	s.SetSelectedNode(id)

	s.RemoveNode(id)

	// First remaining file in enumeration order.
	if got := s.ActiveFileID(); got != PublicIndexID {
		t.Fatalf("expected active %q, got %q", PublicIndexID, got)
	}
	if got := s.SelectedNodeID(); got != PublicIndexID {
		t.Fatalf("expected selection to follow active, got %q", got)
	}
}

func TestRemoveNode_KeepsUnrelatedSelection(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")
	id := s.AddNode(SrcID, "scratch.js", model.KindFile)
	s.SetSelectedNode(PublicID)
	s.RemoveNode(id)
	if got := s.SelectedNodeID(); got != PublicID {
		t.Fatalf("expected selection %q to be kept, got %q", PublicID, got)
	}
	if got := s.ActiveFileID(); got != SrcAppID {
		t.Fatalf("expected active %q to be kept, got %q", SrcAppID, got)
	}
}

func TestRemoveNode_LastFilesSynthesizeDefault(t *testing.T) {
	kv := store.NewMemory()
	seedProject(t, kv, model.Project{
		ProjectID: "p2",
		Name:      "Custom",
		Nodes: []model.Node{
			{ID: RootID, Name: "Custom", Kind: model.KindFolder},
			{ID: SrcID, Name: "src", Kind: model.KindFolder, ParentID: model.StrPtr(RootID)},
			{ID: "lib", Name: "lib", Kind: model.KindFolder, ParentID: model.StrPtr(RootID)},
			{ID: "a", Name: "a.js", Kind: model.KindFile, ParentID: model.StrPtr("lib")},
			{ID: "b", Name: "b.js", Kind: model.KindFile, ParentID: model.StrPtr("lib")},
		},
		ActiveFileID:   model.StrPtr("a"),
		SelectedNodeID: model.StrPtr("lib"),
	})
	s := newTestStore(t, kv, "p2")

	s.RemoveNode("lib")

	p := s.Snapshot()
	var files []model.Node
	for _, n := range p.Nodes {
		if n.IsFile() {
			files = append(files, n)
		}
	}
	if len(files) != 1 {
		t.Fatalf("expected exactly one synthesized file, got %#v", files)
	}
	f := files[0]
	if f.Name != DefaultNewFileName || f.Parent() != SrcID {
		t.Fatalf("unexpected synthesized file %#v", f)
	}
	if model.Deref(p.ActiveFileID) != f.ID || model.Deref(p.SelectedNodeID) != f.ID {
		t.Fatalf("expected synthesized file to be active and selected; got active=%q selected=%q",
			model.Deref(p.ActiveFileID), model.Deref(p.SelectedNodeID))
	}
	if len(p.Nodes) != 3 {
		t.Fatalf("expected root, src and the new file; got %d nodes", len(p.Nodes))
	}
}

func TestRemoveNode_SynthesizesUnderRootWithoutSrc(t *testing.T) {
	kv := store.NewMemory()
	seedProject(t, kv, model.Project{
		ProjectID: "p3",
		Nodes: []model.Node{
			{ID: "top", Name: "Top", Kind: model.KindFolder},
			{ID: "only", Name: "only.txt", Kind: model.KindFile, ParentID: model.StrPtr("top")},
		},
	})
	s := newTestStore(t, kv, "p3")
	s.RemoveNode("only")

	active, ok := s.ActiveFile()
	if !ok {
		t.Fatalf("expected an active file")
	}
	if active.Parent() != "top" {
		t.Fatalf("expected synthesized file under the root, got parent %q", active.Parent())
	}
}

func TestOpen_RecordWithoutNodesIsReseeded(t *testing.T) {
	kv := store.NewMemory()
	seedProject(t, kv, model.Project{ProjectID: "empty", Name: "Empty", Nodes: []model.Node{}})

	s := newTestStore(t, kv, "empty")

	if got := len(s.Snapshot().Nodes); got != 7 {
		t.Fatalf("expected scaffold after empty record, got %d nodes", got)
	}
	b, _, _ := kv.Load(store.ProjectKey(store.DefaultNamespace, "empty"))
	var stored model.Project
	if err := json.Unmarshal(b, &stored); err != nil || len(stored.Nodes) != 7 {
		t.Fatalf("expected scaffold persisted over empty record, err=%v nodes=%d", err, len(stored.Nodes))
	}
	checkInvariants(t, s)
}

func TestRemoveNode_RootWithCustomIDIsNoOp(t *testing.T) {
	kv := store.NewMemory()
	seedProject(t, kv, model.Project{
		ProjectID: "p4",
		Nodes: []model.Node{
			{ID: "top", Name: "Top", Kind: model.KindFolder},
			{ID: "only", Name: "only.txt", Kind: model.KindFile, ParentID: model.StrPtr("top")},
		},
	})
	s := newTestStore(t, kv, "p4")
	before := mustJSON(t, s.Snapshot())

	s.RemoveNode("top")

	if after := mustJSON(t, s.Snapshot()); after != before {
		t.Fatalf("expected root removal to be ignored\nbefore=%s\nafter=%s", before, after)
	}
	checkInvariants(t, s)
}

func TestDefaultFolder_OnlyReturnsPresentFolders(t *testing.T) {
	cases := []struct {
		name  string
		nodes []model.Node
		want  string
	}{
		{name: "src wins", nodes: []model.Node{
			{ID: "top", Kind: model.KindFolder},
			{ID: SrcID, Kind: model.KindFolder, ParentID: model.StrPtr("top")},
		}, want: SrcID},
		{name: "custom root", nodes: []model.Node{
			{ID: "top", Kind: model.KindFolder},
		}, want: "top"},
		{name: "orphan folder when root is gone", nodes: []model.Node{
			{ID: "lib", Kind: model.KindFolder, ParentID: model.StrPtr("gone")},
		}, want: "lib"},
		{name: "no folders", nodes: []model.Node{
			{ID: "f", Kind: model.KindFile},
		}, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := defaultFolder(tc.nodes); got != tc.want {
				t.Fatalf("defaultFolder=%q, want %q", got, tc.want)
			}
		})
	}
}

func TestRemoveNode_UnknownIDIsNoOp(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")
	before := mustJSON(t, s.Snapshot())
	s.RemoveNode("nope")
	if after := mustJSON(t, s.Snapshot()); after != before {
		t.Fatalf("state changed on unknown id")
	}
}

func TestSetActiveFile_HealsInvalidTargets(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")

	s.SetActiveFile(SrcIndexID)
	if got := s.ActiveFileID(); got != SrcIndexID {
		t.Fatalf("expected %q, got %q", SrcIndexID, got)
	}

	s.SetActiveFile(SrcID) // folder
	if got := s.ActiveFileID(); got != PublicIndexID {
		t.Fatalf("expected folder target to heal to first file, got %q", got)
	}

	s.SetActiveFile("missing")
	if got := s.ActiveFileID(); got != PublicIndexID {
		t.Fatalf("expected missing target to heal to first file, got %q", got)
	}
}

func TestSetSelectedNode_IsUnconditional(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")
	s.SetSelectedNode("whatever")
	if got := s.SelectedNodeID(); got != "whatever" {
		t.Fatalf("expected selection to be stored as given, got %q", got)
	}
}

func TestUpdateFileContent(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")

	s.UpdateFileContent(SrcAppID, "export default () => null\n")
	if got := s.SourceFiles()["src/App.js"]; got != "export default () => null\n" {
		t.Fatalf("expected updated content, got %q", got)
	}

	before := mustJSON(t, s.Snapshot())
	s.UpdateFileContent(SrcID, "folders have no content")
	s.UpdateFileContent("missing", "x")
	if after := mustJSON(t, s.Snapshot()); after != before {
		t.Fatalf("expected non-file updates to be ignored")
	}
}

func TestPathMap_ExcludesRootName(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")
	pm := s.PathMap()
	n, ok := pm["public/index.html"]
	if !ok || n.ID != PublicIndexID {
		t.Fatalf("expected public/index.html -> %q, got %#v (map %v)", PublicIndexID, n, pm)
	}
	if _, ok := pm["MyProject/public/index.html"]; ok {
		t.Fatalf("root name must not appear in paths")
	}
	if path, ok := s.Path(RootID); !ok || path != "" {
		t.Fatalf("expected empty root path, got %q ok=%v", path, ok)
	}
	if path, ok := s.Path(PublicID); !ok || path != "public" {
		t.Fatalf("expected folder path public, got %q ok=%v", path, ok)
	}
}

func TestRenameNode_TwiceLeavesOnlyFinalPath(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")
	id := s.AddNode(SrcID, "a.js", model.KindFile)
	s.UpdateFileContent(id, "a")

	s.RenameNode(id, "b.js")
	s.RenameNode(id, "c.js")

	files := s.SourceFiles()
	if _, ok := files["src/a.js"]; ok {
		t.Fatalf("stale path src/a.js left behind: %v", files)
	}
	if _, ok := files["src/b.js"]; ok {
		t.Fatalf("stale path src/b.js left behind: %v", files)
	}
	if got, ok := files["src/c.js"]; !ok || got != "a" {
		t.Fatalf("expected src/c.js with content, got %q ok=%v", got, ok)
	}
}

func TestRenameFolder_MovesDescendantPaths(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")
	dir := s.AddNode(SrcID, "components", model.KindFolder)
	s.AddNode(dir, "Button.js", model.KindFile)
	s.RenameNode(dir, "ui")
	if _, ok := s.SourceFiles()["src/ui/Button.js"]; !ok {
		t.Fatalf("expected renamed folder in path; got %v", s.SourceFiles())
	}
}

func TestPathCollision_LastInsertedWins(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")
	first := s.AddNode(SrcID, "dup.js", model.KindFile)
	second := s.AddNode(SrcID, "dup.js", model.KindFile)
	s.UpdateFileContent(first, "first")
	s.UpdateFileContent(second, "second")

	for i := 0; i < 5; i++ {
		if got := s.SourceFiles()["src/dup.js"]; got != "second" {
			t.Fatalf("expected the later node to win, got %q", got)
		}
		if got := s.PathMap()["src/dup.js"].ID; got != second {
			t.Fatalf("expected path map to point at %q, got %q", second, got)
		}
	}
}

func TestSwitchProject_PersistenceRoundTrip(t *testing.T) {
	kv := store.NewMemory()
	s := newTestStore(t, kv, "A")
	id := s.AddNode(SrcID, "extra.js", model.KindFile)
	s.UpdateFileContent(id, "// A only")
	s.SetActiveFile(id)
	s.SetSelectedNode(SrcID)
	want := s.Snapshot()

	s.SwitchProject("B")
	if got := s.ProjectID(); got != "B" {
		t.Fatalf("expected current project B, got %q", got)
	}
	if _, ok := s.SourceFiles()["src/extra.js"]; ok {
		t.Fatalf("project B must start from the scaffold")
	}
	s.UpdateFileContent(SrcAppID, "// B edit")

	s.SwitchProject("A")
	if got := s.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("project A not restored:\nwant: %s\ngot:  %s", mustJSON(t, want), mustJSON(t, got))
	}

	// A second store on the same backend sees the same state.
	other := New(kv)
	other.Open("A")
	if got := other.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("fresh store did not load A:\nwant: %s\ngot:  %s", mustJSON(t, want), mustJSON(t, got))
	}
}

func TestOpen_CorruptRecordReseeds(t *testing.T) {
	kv := store.NewMemory()
	if err := kv.Save(store.ProjectKey(store.DefaultNamespace, "bad"), []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := newTestStore(t, kv, "bad")
	if got := len(s.Snapshot().Nodes); got != 7 {
		t.Fatalf("expected scaffold after corrupt record, got %d nodes", got)
	}
}

func TestOpen_HealsStoredDanglingActive(t *testing.T) {
	kv := store.NewMemory()
	p := Scaffold("p4")
	p.ActiveFileID = model.StrPtr(SrcID)
	seedProject(t, kv, p)

	s := newTestStore(t, kv, "p4")
	if got := s.ActiveFileID(); got != PublicIndexID {
		t.Fatalf("expected healed active %q, got %q", PublicIndexID, got)
	}
}

type failingKV struct {
	store.KV
	saves int
}

func (f *failingKV) Save(key string, value []byte) error {
	f.saves++
	return errors.New("quota exceeded")
}

func TestPersistFailure_IsSwallowedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	kv := &failingKV{KV: store.NewMemory()}
	s := New(kv, WithLogger(zap.New(core)), WithIDGenerator(seqIDs()))

	s.Open("p1")
	id := s.AddNode(SrcID, "kept.js", model.KindFile)
	if id == "" {
		t.Fatalf("expected add to succeed in memory")
	}
	if _, ok := s.Node(id); !ok {
		t.Fatalf("in-memory state must survive a failed save")
	}
	if kv.saves == 0 {
		t.Fatalf("expected save attempts")
	}
	if n := logs.FilterMessage("persist project failed").Len(); n == 0 {
		t.Fatalf("expected persist failures to be logged; got %v", logs.All())
	}
}

func TestLoadFailure_FallsBackToScaffold(t *testing.T) {
	s := New(loadErrKV{}, WithIDGenerator(seqIDs()))
	s.Open("p1")
	if got := len(s.Snapshot().Nodes); got != 7 {
		t.Fatalf("expected scaffold, got %d nodes", got)
	}
}

type loadErrKV struct{}

func (loadErrKV) Load(string) ([]byte, bool, error) { return nil, false, errors.New("disk gone") }
func (loadErrKV) Save(string, []byte) error         { return errors.New("disk gone") }

func TestProjectionCache_TracksNodeChanges(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")
	first := s.SourceFiles()
	rev := s.Revision()

	s.SetSelectedNode(SrcID) // does not touch nodes
	if s.Revision() != rev {
		t.Fatalf("selection must not bump the node revision")
	}

	id := s.AddNode(PublicID, "style.css", model.KindFile)
	if s.Revision() == rev {
		t.Fatalf("expected revision bump after add")
	}
	second := s.SourceFiles()
	if _, ok := second["public/style.css"]; !ok {
		t.Fatalf("projection not refreshed: %v", second)
	}
	if _, ok := first["public/style.css"]; ok {
		t.Fatalf("earlier projection copy was mutated")
	}
	if _, ok := s.NodeByID()[id]; !ok {
		t.Fatalf("index missing new node")
	}
}

func TestChildren_SortedByName(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "p1")
	s.AddNode(SrcID, "zeta.js", model.KindFile)
	s.AddNode(SrcID, "Alpha.js", model.KindFile)

	var names []string
	for _, n := range s.Children(SrcID) {
		names = append(names, n.Name)
	}
	want := []string{"Alpha.js", "App.js", "index.js", "zeta.js"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
}

// checkInvariants asserts tree integrity, at least one file and active soundness.
func checkInvariants(t *testing.T, s *Store) {
	t.Helper()
	p := s.Snapshot()
	byID := map[string]model.Node{}
	roots := 0
	files := 0
	for _, n := range p.Nodes {
		if _, dup := byID[n.ID]; dup {
			t.Fatalf("duplicate id %q", n.ID)
		}
		byID[n.ID] = n
		if n.IsRoot() {
			roots++
		}
		if n.IsFile() {
			files++
		}
	}
	if roots != 1 {
		t.Fatalf("expected exactly one root, got %d", roots)
	}
	if files == 0 {
		t.Fatalf("tree has no files")
	}
	for _, n := range p.Nodes {
		seen := map[string]bool{n.ID: true}
		cur := n
		for cur.ParentID != nil {
			parent, ok := byID[*cur.ParentID]
			if !ok {
				t.Fatalf("node %q has dangling parent %q", cur.ID, *cur.ParentID)
			}
			if !parent.IsFolder() {
				t.Fatalf("node %q has non-folder parent %q", cur.ID, parent.ID)
			}
			if seen[parent.ID] {
				t.Fatalf("cycle through %q", parent.ID)
			}
			seen[parent.ID] = true
			cur = parent
		}
	}
	if p.ActiveFileID != nil {
		n, ok := byID[*p.ActiveFileID]
		if !ok || !n.IsFile() {
			t.Fatalf("active %q is not an existing file", *p.ActiveFileID)
		}
	}
}

func TestRandomOperations_PreserveInvariants(t *testing.T) {
	s := newTestStore(t, store.NewMemory(), "fuzz")
	rng := rand.New(rand.NewSource(42))

	for step := 0; step < 500; step++ {
		nodes := s.Snapshot().Nodes
		pick := nodes[rng.Intn(len(nodes))].ID
		switch rng.Intn(6) {
		case 0, 1:
			kind := model.KindFile
			if rng.Intn(2) == 0 {
				kind = model.KindFolder
			}
			s.AddNode(pick, fmt.Sprintf("f%d", step), kind)
		case 2:
			before := len(nodes)
			size := len(s.subtreeOf(pick))
			protected := s.subtreeHasProtected(pick)
			s.RemoveNode(pick)
			after := len(s.Snapshot().Nodes)
			if !protected {
				// A synthesized default file may add one back.
				if d := before - after; d != size && d != size-1 {
					t.Fatalf("step %d: removing %q (subtree %d) changed count by %d", step, pick, size, d)
				}
			} else if after != before {
				t.Fatalf("step %d: protected subtree %q was modified", step, pick)
			}
		case 3:
			s.RenameNode(pick, fmt.Sprintf("r%d", step))
		case 4:
			s.SetActiveFile(pick)
		case 5:
			s.UpdateFileContent(pick, fmt.Sprintf("content %d", step))
		}
		checkInvariants(t, s)
	}
}

func (s *Store) subtreeOf(id string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtree(id)
}

func (s *Store) subtreeHasProtected(id string) bool {
	for rid := range s.subtreeOf(id) {
		if IsProtected(rid) {
			return true
		}
	}
	return false
}
