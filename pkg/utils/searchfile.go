package utils

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrSearchFile = errors.New("could not search file")

// SearchFileUpward looks for a regular file with name in dir and its ancestors.
//
// It returns the path of the nearest one, or ErrSearchFile if none.
func SearchFileUpward(dir string, name string) (string, error) {
	for {
		candidate := filepath.Join(dir, name)
		if s, err := os.Stat(candidate); err == nil && s.Mode().IsRegular() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrSearchFile
		}
		dir = parent
	}
}
