package testutils

import (
	"os"
	"path/filepath"
	"testing"

	prof "github.com/fnndsc/chrisctl/cmd/chris/config/profiles"
	"gopkg.in/yaml.v3"
)

// TempProfile writes a profile store having just one profile, and returns its path.
//
// The file is removed when the test ends.
func TempProfile(t *testing.T, name string, profile *prof.ChrisProfile) (string, error) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "profile")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := yaml.NewEncoder(f).Encode(prof.ProfileStore{name: profile}); err != nil {
		return "", err
	}
	return path, nil
}
