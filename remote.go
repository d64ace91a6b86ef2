package nltkdata

import (
	"fmt"
	"io"
	"net/http"
)

// Opener fetches a resource from a URL scheme this package does not handle
// itself. Remote retrieval is a collaborator concern; the Loader only
// dispatches to the Opener registered for the scheme.
type Opener interface {
	Open(url string) (io.ReadCloser, error)
}

// HTTPOpenerOption configures an HTTPOpener.
type HTTPOpenerOption func(*HTTPOpener)

// WithClient sets the HTTP client used for requests.
func WithClient(client *http.Client) HTTPOpenerOption {
	return func(o *HTTPOpener) {
		o.client = client
	}
}

// WithHeader sets a header on each request.
func WithHeader(key, value string) HTTPOpenerOption {
	return func(o *HTTPOpener) {
		if o.headers == nil {
			o.headers = make(http.Header)
		}
		o.headers.Set(key, value)
	}
}

// HTTPOpener opens http and https resource URLs with a plain GET.
type HTTPOpener struct {
	client  *http.Client
	headers http.Header
}

var _ Opener = (*HTTPOpener)(nil)

// NewHTTPOpener returns an HTTPOpener using http.DefaultClient unless
// configured otherwise.
func NewHTTPOpener(opts ...HTTPOpenerOption) *HTTPOpener {
	o := &HTTPOpener{client: http.DefaultClient}
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		o.client = http.DefaultClient
	}
	return o
}

// Open issues a GET for the URL and returns the response body. The caller
// closes it.
func (o *HTTPOpener) Open(url string) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("nltkdata: open %q: %w", url, err)
	}
	for key, values := range o.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nltkdata: open %q: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("nltkdata: open %q: unexpected status %s", url, resp.Status)
	}
	return resp.Body, nil
}
