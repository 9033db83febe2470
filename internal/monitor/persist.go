package monitor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// SaveHistory writes the registry history to path. The history is
// serialized under the registry lock, the file is written outside it and
// replaced atomically.
func SaveHistory(r *Registry, path string) error {
	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".history-*")
	if err != nil {
		return fmt.Errorf("failed to create history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// LoadHistory reads the history file at path into the registry. A missing
// file is reported with an error wrapping os.ErrNotExist.
func LoadHistory(r *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read history file: %w", err)
	}
	return r.Load(bytes.NewReader(data))
}
