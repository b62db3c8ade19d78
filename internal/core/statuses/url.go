package statuses

import (
	"fmt"
	"net/url"
	"strings"
)

// URLBuilder composes public links from the deployment's base URL
type URLBuilder struct {
	base *url.URL
}

// NewURLBuilder parses base, which must be an absolute http(s) URL
func NewURLBuilder(base string) (*URLBuilder, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBaseURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidBaseURL)
	}

	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""

	return &URLBuilder{base: u}, nil
}

// Path resolves a relative path against the base URL
func (b *URLBuilder) Path(path string) string {
	ref := &url.URL{Path: strings.TrimPrefix(path, "/")}
	return b.base.ResolveReference(ref).String()
}

// Status returns the canonical link for a status
func (b *URLBuilder) Status(id string) string {
	return b.Path("statuses/" + id)
}
