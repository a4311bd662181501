package oauth

import (
	"net/http"

	"golang.org/x/oauth2"
)

// AttachBearerAuth sets the Authorization header of req from tok and returns req.
// A nil token leaves the request untouched.
func AttachBearerAuth(req *http.Request, tok *oauth2.Token) *http.Request {
	if tok != nil && tok.AccessToken != "" {
		tok.SetAuthHeader(req)
	}
	return req
}
