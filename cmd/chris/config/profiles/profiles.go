package profiles

import (
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/fnndsc/chrisctl/cmd/chris/config/open"
	"github.com/hectane/go-acl"
	yaml "gopkg.in/yaml.v3"
)

var ErrProfileStoreNotFound = errors.New("profile store is not found")
var ErrCannotCreateConfig = errors.New("cannot create profile store")
var ErrCannotUpdateConfig = errors.New("cannot update profile store")
var ErrProfileInvalid = errors.New("chris profile is invalid")

// ProfileStore is a map from profile name to ChrisProfile.
type ProfileStore map[string]*ChrisProfile

type ChrisCert struct {
	// base64 encoded CA certificate in PEM
	CA string `yaml:"ca,omitempty"`
}

// ChrisProfile is a profile to access a ChRIS backend (CUBE).
type ChrisProfile struct {
	// API root of CUBE, like "https://cube.example.com/api/v1/"
	ApiRoot string `yaml:"apiRoot"`

	// user who owns Token
	Username string `yaml:"username,omitempty"`

	// token issued by CUBE for Username
	Token string `yaml:"token,omitempty"`

	Cert ChrisCert `yaml:"cert"`
}

func verifyUrl(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs() && (u.Scheme == "http" || u.Scheme == "https")
}

func verifyPEM(b64cert string) bool {
	bin, err := base64.StdEncoding.DecodeString(b64cert)
	if err != nil {
		return false
	}
	blk, _ := pem.Decode(bin)
	return blk != nil
}

// Verify ChrisProfile
//
// # Return
//
// nil if it is valid. Otherwise, ErrProfileInvalid error.
func (p *ChrisProfile) Verify() error {
	if !verifyUrl(p.ApiRoot) {
		return fmt.Errorf("%w: apiRoot is not URL: %s", ErrProfileInvalid, p.ApiRoot)
	}
	if p.Cert.CA != "" && !verifyPEM(p.Cert.CA) {
		return fmt.Errorf("%w: cert.ca is not PEM", ErrProfileInvalid)
	}
	if p.Token != "" && p.Username == "" {
		return fmt.Errorf("%w: token is set without username", ErrProfileInvalid)
	}
	return nil
}

// Authenticated reports whether the profile has a token.
func (p *ChrisProfile) Authenticated() bool {
	return p.Token != ""
}

// LoadProfileStore loads profile store from file.
func LoadProfileStore(filepath string) (ProfileStore, error) {
	buf, err := os.ReadFile(filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s: %w", ErrProfileStoreNotFound, filepath, err)
		}
		return nil, err
	}
	return Unmarshall(buf)
}

// Unmarshall profile store from yaml in byte array.
func Unmarshall(buf []byte) (ProfileStore, error) {
	ret := ProfileStore{}
	if err := yaml.Unmarshal(buf, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Save profile store to file.
//
// The previous content is copied into a ".backup" file beside.
// The backup is left only when writing the new content fails.
func (ps *ProfileStore) Save(path string) error {
	saving := false

	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0700)); err != nil {
		return err
	}

	bkpath := path + ".backup"
	bk, err := open.NewSafeFile(bkpath)
	if err != nil {
		return err
	}
	defer func() {
		if !saving {
			os.Remove(bkpath)
		}
	}()
	defer bk.Close()

	f, err := os.OpenFile(path, os.O_RDWR, os.FileMode(0600))
	switch {
	case err == nil:
		// existing file may have loose permissions.
		if err := acl.Chmod(path, os.FileMode(0600)); err != nil {
			f.Close()
			return err
		}
	case os.IsPermission(err):
		return fmt.Errorf(
			"%w, because no permission to write file at %s",
			ErrCannotUpdateConfig, path,
		)
	case os.IsNotExist(err):
		f, err = open.NewSafeFile(path)
		if err != nil {
			return fmt.Errorf("%w: cannot create a file at %s", ErrCannotCreateConfig, path)
		}
	default:
		return err
	}
	defer f.Close()

	if _, err := io.Copy(bk, f); err != nil {
		return err
	}

	saving = true
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	buf, err := yaml.Marshal(ps)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		return err
	}
	saving = false
	return nil
}
