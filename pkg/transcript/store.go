package transcript

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	rerrors "github.com/vango-dev/reflow/internal/errors"
)

// ErrNotFound is returned when a transcript doesn't exist.
var ErrNotFound = errors.New("transcript: not found")

// ErrInvalidID is returned for IDs that cannot name a transcript.
var ErrInvalidID = errors.New("transcript: invalid id")

// Store is the interface for transcript storage backends.
type Store interface {
	// Put stores a complete transcript under id, replacing any previous
	// one.
	Put(ctx context.Context, id string, data []byte) error

	// Get returns the transcript stored under id.
	// It returns an error wrapping ErrNotFound if there is none.
	Get(ctx context.Context, id string) ([]byte, error)

	// List returns the stored IDs in ascending order.
	List(ctx context.Context) ([]string, error)
}

// Extension is the file extension of stored transcripts.
const Extension = ".rft"

// ValidID reports whether id can name a transcript: non-empty, at most 128
// bytes of letters, digits, '-', '_' and '.', and not starting with '.'.
func ValidID(id string) bool {
	if id == "" || len(id) > 128 || id[0] == '.' {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return false
		}
	}
	return true
}

func checkID(id string) error {
	if !ValidID(id) {
		return rerrors.New("E161").WithDetail("invalid id " + strconv.Quote(id)).Wrap(ErrInvalidID)
	}
	return nil
}

func notFound(id string) error {
	return rerrors.New("E160").WithDetail("id " + strconv.Quote(id)).Wrap(ErrNotFound)
}

func storeError(op string, err error) error {
	return rerrors.New("E161").WithDetail(op).Wrap(err)
}

// FileStore stores transcripts as files in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore, creating dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, storeError("create directory", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the transcripts.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+Extension)
}

// Put writes the transcript to a temporary file and renames it into place,
// so readers never see a partial transcript.
func (s *FileStore) Put(ctx context.Context, id string, data []byte) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.CreateTemp(s.dir, "."+id+"-*")
	if err != nil {
		return storeError("create", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return storeError("write", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return storeError("close", err)
	}
	if err := os.Rename(tmp, s.path(id)); err != nil {
		os.Remove(tmp)
		return storeError("rename", err)
	}
	return nil
}

// Get reads the transcript stored under id.
func (s *FileStore) Get(ctx context.Context, id string) ([]byte, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, storeError("read", err)
	}
	return data, nil
}

// List returns the IDs of the transcripts in the directory.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, storeError("list", err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := strings.CutSuffix(entry.Name(), Extension)
		if ok && ValidID(id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
