package oauth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauth2-twitter/pkg/oauth"
)

// twitterRewriteTransport intercepts requests to Twitter endpoints and routes them
// to a local handler instead.
type twitterRewriteTransport struct {
	base    http.RoundTripper
	handler http.Handler
}

func (t *twitterRewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.Contains(req.URL.Host, "twitter.com") {
		recorder := httptest.NewRecorder()
		t.handler.ServeHTTP(recorder, req)
		return recorder.Result(), nil
	}
	return t.base.RoundTrip(req)
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func testTwitterConfig() oauth.TwitterConfig {
	return oauth.TwitterConfig{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		RedirectURL:  "https://example.com/callback",
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*oauth.Client, *oauth.TwitterProvider) {
	t.Helper()

	p, err := oauth.NewTwitterProvider(testTwitterConfig())
	require.NoError(t, err)

	transport := &twitterRewriteTransport{base: http.DefaultTransport, handler: handler}
	c, err := oauth.NewClient(p, testTwitterConfig().ClientConfig(),
		oauth.WithHTTPClient(&http.Client{Transport: transport}),
	)
	require.NoError(t, err)

	return c, p
}
