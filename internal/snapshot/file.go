package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apperrors "github.com/lueurxax/fakenews-web/internal/core/errors"
)

const (
	fileDirPerm  = 0o700
	fileMode     = 0o600
	fileSuffix   = ".json"
	tempFileGlob = ".slot-*"
)

var fileKeyReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")

// FileStore keeps one file per slot in a directory. It backs the terminal
// client, where there is no server process to hold the slot.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates dir when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, fileDirPerm); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

// DefaultFileDir returns the per-user cache directory for snapshots.
func DefaultFileDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}

	return filepath.Join(base, "fakenews"), nil
}

// Save replaces the slot file atomically.
func (f *FileStore) Save(_ context.Context, key string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, tempFileGlob)
	if err != nil {
		return fmt.Errorf("create temp slot: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("write slot: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("close slot: %w", err)
	}

	if err := os.Chmod(tmpName, fileMode); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("chmod slot: %w", err)
	}

	if err := os.Rename(tmpName, f.path(key)); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("replace slot: %w", err)
	}

	return nil
}

// Load reads the slot file.
func (f *FileStore) Load(_ context.Context, key string) ([]byte, error) {
	payload, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.ErrSnapshotNotFound
		}

		return nil, fmt.Errorf("read slot: %w", err)
	}

	return payload, nil
}

// Ping checks that the directory is still there.
func (f *FileStore) Ping(_ context.Context) error {
	if _, err := os.Stat(f.dir); err != nil {
		return fmt.Errorf("stat snapshot dir: %w", err)
	}

	return nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, fileKeyReplacer.Replace(key)+fileSuffix)
}
