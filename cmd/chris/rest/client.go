package rest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	prof "github.com/fnndsc/chrisctl/cmd/chris/config/profiles"
	"github.com/fnndsc/chrisctl/pkg/api/types/feeds"
	"github.com/fnndsc/chrisctl/pkg/api/types/instances"
	"github.com/fnndsc/chrisctl/pkg/api/types/pages"
	"github.com/fnndsc/chrisctl/pkg/api/types/plugins"
)

// ChrisClient talks to the ChRIS backend (CUBE).
type ChrisClient interface {
	// AuthToken asks a token for the user.
	//
	// Args
	//
	// - context.Context
	//
	// - string: username
	//
	// - string: password
	//
	// Returns
	//
	// - string: token, to be set in profiles.
	//
	// - error: ErrUnauthorized when the user is rejected.
	AuthToken(ctx context.Context, username string, password string) (string, error)

	// FindFeeds lists feeds visible for the user.
	//
	// Args
	//
	// - context.Context
	//
	// - FindFeedParameter: conditions and the window of the listing.
	//
	// Returns
	//
	// - pages.Collection[feeds.Detail]: a page of found feeds.
	//
	// - error
	FindFeeds(ctx context.Context, query FindFeedParameter) (pages.Collection[feeds.Detail], error)

	// GetFeed gets a feed.
	GetFeed(ctx context.Context, feedId int) (feeds.Detail, error)

	// ListFeedPluginInstances lists plugin instances in a feed.
	//
	// Args
	//
	// - context.Context
	//
	// - int: id of the feed
	//
	// - int: offset of the page
	//
	// - int: limit of the page
	//
	// Returns
	//
	// - pages.Collection[instances.Detail]: a page of plugin instances.
	// Its Count is the number of plugin instances in the whole feed.
	//
	// - error
	ListFeedPluginInstances(ctx context.Context, feedId int, offset int, limit int) (pages.Collection[instances.Detail], error)

	// GetPluginInstance gets a plugin instance.
	GetPluginInstance(ctx context.Context, instanceId int) (instances.Detail, error)

	// CreatePluginInstance runs a plugin.
	//
	// Args
	//
	// - context.Context
	//
	// - int: id of the plugin to be run
	//
	// - instances.Spec: the previous instance, title and parameters.
	//
	// Returns
	//
	// - instances.Detail: the created plugin instance.
	//
	// - error
	CreatePluginInstance(ctx context.Context, pluginId int, spec instances.Spec) (instances.Detail, error)

	// DeletePluginInstance deletes a plugin instance and its descendants.
	DeletePluginInstance(ctx context.Context, instanceId int) error

	// FindPlugins lists plugins.
	FindPlugins(ctx context.Context, query FindPluginParameter) (pages.Collection[plugins.Detail], error)
}

type client struct {
	httpclient *http.Client
	api        string
}

// create new ChRIS client for ChrisProfile
//
// Requests are sent with the token in the profile, if any.
//
// # Args
//
// - *prof.ChrisProfile
//
// # Return
//
// - ChrisClient: created client
//
// - error: If given profile is invalid, ErrProfileInvalid is returned.
func NewClient(profile *prof.ChrisProfile) (ChrisClient, error) {
	if err := profile.Verify(); err != nil {
		return nil, err
	}
	httpclient := new(http.Client)

	if profile.Cert.CA != "" {
		hc, err := trustCa(httpclient, []string{profile.Cert.CA})
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}

	base := httpclient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpclient.Transport = &tokenTransport{token: profile.Token, base: base}

	return &client{
		httpclient: httpclient,
		api:        strings.TrimSuffix(profile.ApiRoot, "/"),
	}, nil
}

// tokenTransport sets headers which CUBE requires on each request.
type tokenTransport struct {
	token string
	base  http.RoundTripper
}

func (tt *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", "application/json")

	// an empty Authorization header asks to send no credentials.
	if v, ok := req.Header["Authorization"]; ok {
		if len(v) == 0 || v[0] == "" {
			req.Header.Del("Authorization")
		}
	} else if tt.token != "" {
		req.Header.Set("Authorization", "Token "+tt.token)
	}
	return tt.base.RoundTrip(req)
}

// build URL with path.
//
// CUBE requires the trailing slash.
func (c *client) apipath(path ...string) string {
	elems := []string{c.api}
	for _, p := range path {
		elems = append(elems, strings.Trim(p, "/"))
	}
	return strings.Join(elems, "/") + "/"
}

func (c *client) get(ctx context.Context, q url.Values, path ...string) (*http.Response, error) {
	u := c.apipath(path...)
	if 0 < len(q) {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.httpclient.Do(req)
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if len(cacerts) <= 0 {
		return hc, nil
	}

	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}

	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to add ca cert")
	}
	tran = tran.Clone()

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}
		rootcas = pool
		tcc.RootCAs = rootcas
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}

		if !rootcas.AppendCertsFromPEM(bin) {
			return nil, fmt.Errorf("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}
