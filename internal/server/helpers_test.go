package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauth2-twitter/internal/server"
	"github.com/dmitrymomot/oauth2-twitter/pkg/oauth"
)

// twitterRewriteTransport routes requests for Twitter hosts to a local handler.
type twitterRewriteTransport struct {
	handler http.Handler
}

func (t *twitterRewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !strings.Contains(req.URL.Host, "twitter.com") {
		return http.DefaultTransport.RoundTrip(req)
	}
	recorder := httptest.NewRecorder()
	t.handler.ServeHTTP(recorder, req)
	return recorder.Result(), nil
}

// twitterStub answers the token and profile endpoints.
type twitterStub struct {
	mu          sync.Mutex
	verifier    string
	tokenStatus int
}

func (s *twitterStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/2/oauth2/token":
		s.mu.Lock()
		s.verifier = r.FormValue("code_verifier")
		status := s.tokenStatus
		s.mu.Unlock()

		if status != 0 && status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"invalid_request","error_description":"Value passed for the authorization code was invalid."}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access",
			"refresh_token": "refresh",
			"token_type":    "bearer",
			"expires_in":    7200,
			"scope":         "tweet.read users.read offline.access",
		})
	case "/2/users/me":
		if r.Header.Get("Authorization") != "Bearer access" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"title":"Unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":"42","name":"Ada Lovelace","username":"ada","profile_image_url":"https://pbs.twimg.com/ada.png"}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *twitterStub) lastVerifier() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifier
}

type testEnv struct {
	stub    *twitterStub
	handler http.Handler
}

func newTestEnv(t *testing.T, wrap func(http.RoundTripper) http.RoundTripper, opts ...server.Option) *testEnv {
	t.Helper()

	stub := &twitterStub{}
	var transport http.RoundTripper = &twitterRewriteTransport{handler: stub}
	if wrap != nil {
		transport = wrap(transport)
	}

	cfg := oauth.TwitterConfig{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		RedirectURL:  "https://example.com/auth/twitter/callback",
	}
	client, err := oauth.NewTwitterClient(cfg, oauth.WithHTTPClient(&http.Client{Transport: transport}))
	require.NoError(t, err)

	store := oauth.NewMemoryVerifierStore()
	t.Cleanup(func() { _ = store.Close() })

	srv := server.New(oauth.NewFlow(client, store), opts...)
	return &testEnv{stub: stub, handler: srv.Handler()}
}

func (e *testEnv) do(t *testing.T, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// login starts a login and returns the authorization URL and the state cookie.
func (e *testEnv) login(t *testing.T) (*url.URL, *http.Cookie) {
	t.Helper()

	rec := e.do(t, server.LoginPath)
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)

	for _, c := range rec.Result().Cookies() {
		if c.Name == server.StateCookie {
			return loc, c
		}
	}
	t.Fatal("state cookie not set")
	return nil, nil
}

func callbackURL(state, code string) string {
	q := url.Values{}
	q.Set("state", state)
	q.Set("code", code)
	return server.CallbackPath + "?" + q.Encode()
}
