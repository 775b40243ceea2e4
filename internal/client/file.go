package client

import (
	"os"
	"path/filepath"
)

// OpenFile reads path into a File. An empty path means no file was selected
// and yields a nil File.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &File{Name: filepath.Base(path), Data: data}, nil
}
