package kvstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/salespulse/backend/internal/utils"
)

// File stores one value per file under Dir. Keys carry arbitrary characters
// (prompt hashes, dataset ids), so file names are derived from an FNV hash
// of the key instead of the key itself.
type File struct {
	Dir string
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &File{Dir: dir}, nil
}

func (s *File) path(key string) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%016x.cache", utils.HashStringToUint64(key)))
}

func (s *File) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (s *File) Set(key, value string) error {
	return os.WriteFile(s.path(key), []byte(value), 0o600)
}

func (s *File) Delete(key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
