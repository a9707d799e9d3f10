package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	filesKVExt    = ".json"
	filesKVKeyExt = ".key"

	// Escaped keys longer than this are stored under a hashed name, keeping
	// file names well inside the usual 255-byte limit.
	maxEscapedKey = 200
	// QueryEscape never emits '%' followed by '~', so hashed names cannot
	// collide with escaped ones.
	hashedPrefix = "%~"
)

// Files stores one file per key inside Dir. Writes go through a temp file and
// a rename so a crash never leaves a half-written project behind.
type Files struct {
	Dir string
}

func NewFiles(dir string) (*Files, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("files: missing data dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Files{Dir: dir}, nil
}

func (f *Files) pathFor(key string) string {
	return filepath.Join(f.Dir, baseName(key)+filesKVExt)
}

// baseName is the escaped key, or a hash of it when the escaped form is too
// long for a file name. Hashed keys keep the raw key in a .key file beside
// the value so Keys can still report them.
func baseName(key string) string {
	escaped := url.QueryEscape(key)
	if len(escaped) <= maxEscapedKey {
		return escaped
	}
	sum := sha256.Sum256([]byte(key))
	return hashedPrefix + hex.EncodeToString(sum[:])
}

func (f *Files) Load(key string) ([]byte, bool, error) {
	b, err := os.ReadFile(f.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (f *Files) Save(key string, value []byte) error {
	if base := baseName(key); strings.HasPrefix(base, hashedPrefix) {
		keyPath := filepath.Join(f.Dir, base+filesKVKeyExt)
		if _, err := os.Stat(keyPath); errors.Is(err, os.ErrNotExist) {
			if err := atomicWriteFile(f.Dir, ".kv-*.tmp", keyPath, []byte(key), 0o644); err != nil {
				return err
			}
		}
	}
	return atomicWriteFile(f.Dir, ".kv-*.tmp", f.pathFor(key), value, 0o644)
}

func (f *Files) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, filesKVExt) {
			continue
		}
		base := strings.TrimSuffix(name, filesKVExt)
		var key string
		if strings.HasPrefix(base, hashedPrefix) {
			b, err := os.ReadFile(filepath.Join(f.Dir, base+filesKVKeyExt))
			if err != nil {
				continue
			}
			key = string(b)
		} else {
			k, err := url.QueryUnescape(base)
			if err != nil {
				continue
			}
			key = k
		}
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
