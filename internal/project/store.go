// Package project owns the canonical file/folder tree of the open project.
//
// All operations are total: misuse (unknown id, wrong kind, protected node) is a
// silent no-op, dangling pointers are healed, and persistence failures are logged
// and otherwise ignored. The in-memory state stays authoritative for the session.
package project

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cipherstudio-cli/internal/logging"
	"cipherstudio-cli/internal/model"
	"cipherstudio-cli/internal/store"
)

const DefaultProjectID = "demo"

type Store struct {
	mu        sync.Mutex
	kv        store.KV
	namespace string
	logger    *zap.Logger
	newID     func() string

	state model.Project
	// rev increments whenever Nodes changes; projections are cached per rev.
	rev uint64

	cache *projection
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = logging.OrNop(l).Named("project") }
}

func WithNamespace(namespace string) Option {
	return func(s *Store) { s.namespace = namespace }
}

// WithIDGenerator replaces the uuid-based id source (tests use sequential ids).
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New returns a store bound to kv. Call Open before using it; until then the
// store holds an empty project.
func New(kv store.KV, opts ...Option) *Store {
	s := &Store{
		kv:        kv,
		namespace: store.DefaultNamespace,
		logger:    zap.NewNop(),
		newID:     uuid.NewString,
		state:     model.Project{Nodes: []model.Node{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open makes projectID the current project, loading it from storage or seeding
// and persisting the scaffold when it has never been saved.
func (s *Store) Open(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open(projectID, true)
}

// SwitchProject is Open for an already running session. The project being left
// remains stored as it was last persisted.
func (s *Store) SwitchProject(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open(projectID, true)
}

// Reload re-reads the current project from storage, picking up writes made by
// another process.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open(s.state.ProjectID, false)
}

// open replaces the in-memory project. remember records projectID as the last
// opened project.
func (s *Store) open(projectID string, remember bool) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		projectID = DefaultProjectID
	}
	key := store.ProjectKey(s.namespace, projectID)

	next, ok := s.load(key)
	if !ok {
		next = Scaffold(projectID)
	}
	if next.ProjectID == "" {
		next.ProjectID = projectID
	}
	if next.Nodes == nil {
		next.Nodes = []model.Node{}
	}

	s.state = next
	s.rev++
	s.cache = nil
	s.healActive()

	if !ok {
		s.persist()
	}
	if remember {
		s.saveCurrent(projectID)
	}
}

func (s *Store) load(key string) (model.Project, bool) {
	if s.kv == nil {
		return model.Project{}, false
	}
	b, ok, err := s.kv.Load(key)
	if err != nil {
		s.logger.Warn("load project failed", zap.String("key", key), zap.Error(err))
		return model.Project{}, false
	}
	if !ok || len(b) == 0 {
		return model.Project{}, false
	}
	var p model.Project
	if err := json.Unmarshal(b, &p); err != nil {
		s.logger.Warn("decode project failed; reseeding", zap.String("key", key), zap.Error(err))
		return model.Project{}, false
	}
	// An empty tree has no root to heal around; treat it as absent.
	if len(p.Nodes) == 0 {
		return model.Project{}, false
	}
	return p, true
}

// persist writes the current project. Failures never roll back the in-memory
// state.
func (s *Store) persist() {
	if s.kv == nil {
		return
	}
	key := store.ProjectKey(s.namespace, s.state.ProjectID)
	b, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Warn("encode project failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.Save(key, b); err != nil {
		s.logger.Warn("persist project failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) saveCurrent(projectID string) {
	if s.kv == nil {
		return
	}
	key := store.CurrentProjectKey(s.namespace)
	if err := s.kv.Save(key, []byte(projectID)); err != nil {
		s.logger.Warn("persist current project failed", zap.String("key", key), zap.Error(err))
	}
}

// LastOpened returns the id of the project opened most recently under
// namespace, or "" when none was recorded.
func LastOpened(kv store.KV, namespace string) string {
	if kv == nil {
		return ""
	}
	b, ok, err := kv.Load(store.CurrentProjectKey(namespace))
	if err != nil || !ok {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// commit finishes a state transition: heal pointers, drop projections, persist.
func (s *Store) commit(nodesChanged bool) {
	if nodesChanged {
		s.rev++
		s.cache = nil
	}
	s.healActive()
	s.persist()
}

// healActive resets a dangling or non-file active pointer to the first file in
// enumeration order (or nil).
func (s *Store) healActive() {
	if id := s.state.ActiveFileID; id != nil {
		if i := s.indexOf(*id); i >= 0 && s.state.Nodes[i].IsFile() {
			return
		}
	}
	s.state.ActiveFileID = nil
	for _, n := range s.state.Nodes {
		if n.IsFile() {
			s.state.ActiveFileID = model.StrPtr(n.ID)
			return
		}
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.state.Nodes {
		if s.state.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// IsProtectedNode reports whether id belongs to the fixed scaffold set.
func (s *Store) IsProtectedNode(id string) bool {
	return IsProtected(id)
}

func IsProtected(id string) bool { return protectedIDs[id] }

func (s *Store) SetActiveFile(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ActiveFileID = model.StrPtr(id)
	s.commit(false)
}

func (s *Store) SetSelectedNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedNodeID = model.StrPtr(id)
	s.commit(false)
}

// Snapshot returns a deep copy of the current project.
func (s *Store) Snapshot() model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ProjectID
}

func (s *Store) ActiveFileID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Deref(s.state.ActiveFileID)
}

func (s *Store) SelectedNodeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Deref(s.state.SelectedNodeID)
}

// ActiveFile returns the node currently shown in the editor.
func (s *Store) ActiveFile() (model.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.ActiveFileID == nil {
		return model.Node{}, false
	}
	n, ok := s.projection().byID[*s.state.ActiveFileID]
	if !ok || !n.IsFile() {
		return model.Node{}, false
	}
	return n, true
}

// Revision changes whenever the node set changes.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}
