package checkpoint

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FileStore keeps the checkpoint as a single decimal value in a text file.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path. The file is created on
// the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (float64, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("checkpoint: read %s: %w", f.path, err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		// Unreadable content counts as no checkpoint.
		return 0, false, nil
	}
	return v, true, nil
}

func (f *FileStore) Save(ts float64) error {
	data := []byte(strconv.FormatFloat(ts, 'f', -1, 64))
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: write %s: %w", f.path, err)
	}
	return nil
}
