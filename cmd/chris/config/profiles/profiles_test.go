package profiles_test

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	prof "github.com/fnndsc/chrisctl/cmd/chris/config/profiles"
	"github.com/fnndsc/chrisctl/cmd/chris/config/profiles/testutils"
	"github.com/fnndsc/chrisctl/pkg/utils/try"
	"github.com/google/go-cmp/cmp"
)

// not a real certificate. it is enough to be a PEM block.
const dummyCA = `-----BEGIN CERTIFICATE-----
MIIBszCCAVmgAwIBAgIUZHVtbXkgY2VydGlmaWNhdGUgZm9yIHRlc3QwCgYIKoZI
-----END CERTIFICATE-----
`

func TestUnmarshall(t *testing.T) {
	conf, err := prof.Unmarshall([]byte(`
profname:
    apiRoot: "https://cube.example.com/api/v1/"
    username: chris
    token: 0123abcd
    cert:
        ca: BASE64_ENCODED_CERT
`))
	if err != nil {
		t.Fatalf("failed to unmarshal.: %+v", err)
	}

	expected := prof.ProfileStore{
		"profname": {
			ApiRoot:  "https://cube.example.com/api/v1/",
			Username: "chris",
			Token:    "0123abcd",
			Cert:     prof.ChrisCert{CA: "BASE64_ENCODED_CERT"},
		},
	}
	if diff := cmp.Diff(expected, conf); diff != "" {
		t.Errorf("(-expected, +actual):\n%s", diff)
	}
}

func TestChrisProfile_Verify(t *testing.T) {
	for name, testcase := range map[string]struct {
		prof      *prof.ChrisProfile
		toBeValid error
	}{
		"all value is valid, it is valid": {
			prof: &prof.ChrisProfile{
				ApiRoot:  "https://cube.example.com/api/v1/",
				Username: "chris",
				Token:    "0123abcd",
				Cert:     prof.ChrisCert{CA: base64.StdEncoding.EncodeToString([]byte(dummyCA))},
			},
			toBeValid: nil,
		},
		"no CA and no token is ok": {
			prof:      &prof.ChrisProfile{ApiRoot: "http://localhost:8000/api/v1/"},
			toBeValid: nil,
		},
		"when api root is broken, it is not valid": {
			prof:      &prof.ChrisProfile{ApiRoot: "not url"},
			toBeValid: prof.ErrProfileInvalid,
		},
		"when api root is not http(s), it is not valid": {
			prof:      &prof.ChrisProfile{ApiRoot: "ftp://cube.example.com/"},
			toBeValid: prof.ErrProfileInvalid,
		},
		"when CA is not PEM, it is not valid": {
			prof: &prof.ChrisProfile{
				ApiRoot: "https://cube.example.com/api/v1/",
				Cert:    prof.ChrisCert{CA: base64.StdEncoding.EncodeToString([]byte("broken cert"))},
			},
			toBeValid: prof.ErrProfileInvalid,
		},
		"when token is set without username, it is not valid": {
			prof: &prof.ChrisProfile{
				ApiRoot: "https://cube.example.com/api/v1/",
				Token:   "0123abcd",
			},
			toBeValid: prof.ErrProfileInvalid,
		},
	} {
		t.Run(name, func(t *testing.T) {
			if err := testcase.prof.Verify(); !errors.Is(err, testcase.toBeValid) {
				t.Errorf(
					"profile verification wrong. (actual, expected) = (%v, %v) content = %+v",
					err, testcase.toBeValid, testcase.prof,
				)
			}
		})
	}
}

func TestProfileStore_Save(t *testing.T) {
	t.Run("it creates a new profile store which only the owner can access", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".chris", "profile")
		store := prof.ProfileStore{
			"local": {ApiRoot: "http://localhost:8000/api/v1/", Username: "chris", Token: "t"},
		}
		if err := store.Save(path); err != nil {
			t.Fatal(err)
		}

		stat := try.To(os.Stat(path)).OrFatal(t)
		if perm := stat.Mode().Perm(); perm != 0600 {
			t.Errorf("permission: %o", perm)
		}

		actual := try.To(prof.LoadProfileStore(path)).OrFatal(t)
		if diff := cmp.Diff(store, actual); diff != "" {
			t.Errorf("(-expected, +actual):\n%s", diff)
		}
	})

	t.Run("it overwrites an existing store, and removes the backup after writing", func(t *testing.T) {
		path := try.To(testutils.TempProfile(
			t, "old", &prof.ChrisProfile{ApiRoot: "http://old.example.com/api/v1/"},
		)).OrFatal(t)

		store := prof.ProfileStore{
			"new": {ApiRoot: "http://new.example.com/api/v1/"},
		}
		if err := store.Save(path); err != nil {
			t.Fatal(err)
		}

		actual := try.To(prof.LoadProfileStore(path)).OrFatal(t)
		if diff := cmp.Diff(store, actual); diff != "" {
			t.Errorf("(-expected, +actual):\n%s", diff)
		}

		if _, err := os.Stat(path + ".backup"); !os.IsNotExist(err) {
			t.Errorf("backup is left: %v", err)
		}
	})
}

func TestLoadProfileStore(t *testing.T) {
	t.Run("when the store is missing, it returns ErrProfileStoreNotFound", func(t *testing.T) {
		_, err := prof.LoadProfileStore(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, prof.ErrProfileStoreNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("it does not wrap os.ErrNotExist: %v", err)
		}
	})
}
