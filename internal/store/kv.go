package store

import (
	"errors"
	"fmt"
	"strings"
)

// KV is the durable persistence port used by the project tree store.
//
// Load reports ok=false (and no error) when the key has never been saved.
type KV interface {
	Load(key string) (value []byte, ok bool, err error)
	Save(key string, value []byte) error
}

// Lister is implemented by backends that can enumerate their keys.
type Lister interface {
	Keys(prefix string) ([]string, error)
}

const (
	BackendSQLite = "sqlite"
	BackendFiles  = "files"
	BackendMemory = "memory"

	DefaultNamespace = "cipherstudio"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Open returns the backend selected by name. dir is ignored by the memory backend.
// The returned close func is always non-nil.
func Open(backend string, dir string) (KV, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSQLite:
		s, err := OpenSQLite(dir)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case BackendFiles:
		f, err := NewFiles(dir)
		if err != nil {
			return nil, noop, err
		}
		return f, noop, nil
	case BackendMemory:
		return NewMemory(), noop, nil
	default:
		return nil, noop, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}

func ProjectKey(namespace, projectID string) string {
	return ns(namespace) + ":project:" + projectID
}

func ThemeKey(namespace string) string {
	return ns(namespace) + ":theme"
}

// CurrentProjectKey stores the id of the last opened project.
func CurrentProjectKey(namespace string) string {
	return ns(namespace) + ":current"
}

// ProjectIDs lists persisted project ids under namespace, sorted.
// Backends without key enumeration return an empty list.
func ProjectIDs(kv KV, namespace string) ([]string, error) {
	l, ok := kv.(Lister)
	if !ok {
		return []string{}, nil
	}
	prefix := ProjectKey(namespace, "")
	keys, err := l.Keys(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if id := strings.TrimPrefix(k, prefix); id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

func ns(namespace string) string {
	if strings.TrimSpace(namespace) == "" {
		return DefaultNamespace
	}
	return namespace
}
