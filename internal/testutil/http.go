package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// NewFormRequest builds a POST request with an urlencoded body.
func NewFormRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// CarryCookies copies the Set-Cookie headers from a recorded response onto
// the next request, the way a browser would across a redirect.
func CarryCookies(from *httptest.ResponseRecorder, to *http.Request) *http.Request {
	for _, c := range from.Result().Cookies() {
		to.AddCookie(c)
	}
	return to
}
