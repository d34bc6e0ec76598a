package rest_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	prof "github.com/fnndsc/chrisctl/cmd/chris/config/profiles"
	"github.com/fnndsc/chrisctl/cmd/chris/rest"
	"github.com/fnndsc/chrisctl/pkg/utils/try"
)

// recorded is a request received by a fake CUBE.
type recorded struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   []byte
}

// fakeCube starts a server which responds with status and body for any request.
//
// It returns a client for the server, and a function to get requests received.
func fakeCube(t *testing.T, token string, status int, body any) (rest.ChrisClient, func() []recorded) {
	t.Helper()

	reqs := []recorded{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err)
		}
		reqs = append(reqs, recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   b,
		})

		if body == nil {
			w.WriteHeader(status)
			return
		}
		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(status)
		switch b := body.(type) {
		case string:
			w.Write([]byte(b))
		default:
			if err := json.NewEncoder(w).Encode(b); err != nil {
				t.Fatal(err)
			}
		}
	}))
	t.Cleanup(server.Close)

	profile := &prof.ChrisProfile{ApiRoot: server.URL + "/api/v1/", Token: token}
	if token != "" {
		profile.Username = "chris"
	}
	client := try.To(rest.NewClient(profile)).OrFatal(t)
	return client, func() []recorded { return reqs }
}

func TestNewClient(t *testing.T) {
	t.Run("when the profile is invalid, it returns ErrProfileInvalid", func(t *testing.T) {
		_, err := rest.NewClient(&prof.ChrisProfile{ApiRoot: "not url"})
		if err == nil {
			t.Errorf("no error")
		}
	})

	t.Run("when the CA is not a certificate, it returns error", func(t *testing.T) {
		_, err := rest.NewClient(&prof.ChrisProfile{
			ApiRoot: "https://cube.example.com/api/v1/",
			Cert:    prof.ChrisCert{CA: "not base64!"},
		})
		if err == nil {
			t.Errorf("no error")
		}
	})
}
