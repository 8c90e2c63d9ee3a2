package chttp

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/cenkalti/backoff/v4"
)

type customTransport func(*http.Request) (*http.Response, error)

var _ http.RoundTripper = customTransport(nil)

func (c customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return c(req)
}

// newCustomTransport returns an HTTPTransport whose round trips are served by
// fn, with no delay between retries.
func newCustomTransport(t *testing.T, fn func(*http.Request) (*http.Response, error), opts ...HTTPOption) *HTTPTransport {
	t.Helper()
	opts = append([]HTTPOption{
		WithHTTPClient(&http.Client{Transport: customTransport(fn)}),
		WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	}, opts...)
	tr, err := NewHTTPTransport(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func newTestTransport(t *testing.T, resp *http.Response, err error) *HTTPTransport {
	t.Helper()
	return newCustomTransport(t, func(*http.Request) (*http.Response, error) {
		return resp, err
	})
}

func newTestRequest(t *testing.T, b *RequestBuilder) *Request {
	t.Helper()
	req, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func Body(str string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(str))
}
