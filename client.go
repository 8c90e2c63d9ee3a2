// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package futon

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/go-kivik/futon/chttp"
)

// Client is a connection to a server. A Client holds no mutable state, and
// is safe for concurrent use.
type Client struct {
	url         string
	credentials chttp.Credentials
	transport   chttp.Transport
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets the credentials sent with every request. It takes
// precedence over any user info in the URL.
func WithCredentials(c chttp.Credentials) Option {
	return func(cl *Client) {
		cl.credentials = c
	}
}

// WithTransport replaces the default HTTP transport.
func WithTransport(t chttp.Transport) Option {
	return func(cl *Client) {
		cl.transport = t
	}
}

// WithLogger sets the logger. Requests and responses are logged at debug
// level, with credentials redacted. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New returns a client for the server at rawURL. If the URL contains user
// info, it is removed from the URL and used as Basic Auth credentials.
func New(rawURL string, opts ...Option) (*Client, error) {
	u, err := parseDSN(rawURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		credentials: chttp.NoCredentials(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if u.User != nil {
		password, _ := u.User.Password()
		c.credentials = chttp.BasicAuth(u.User.Username(), password)
		u.User = nil
	}
	c.url = u.String()
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		t, err := chttp.NewHTTPTransport(chttp.WithUserAgent(userAgent))
		if err != nil {
			return nil, err
		}
		c.transport = t
	}
	return c, nil
}

func parseDSN(dsn string) (*url.URL, error) {
	if dsn == "" {
		return nil, &chttp.RequestError{Op: "parse url", Err: errors.New("no URL specified")}
	}
	if !strings.HasPrefix(dsn, "http://") && !strings.HasPrefix(dsn, "https://") {
		dsn = "http://" + dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, &chttp.RequestError{Op: "parse url", Err: err}
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

// URL returns the server URL, without credentials.
func (c *Client) URL() string {
	return c.url
}

// Meta returns the server-level operations.
func (c *Client) Meta() *Meta {
	return &Meta{client: c}
}

// DB returns a handle to the named database. No request is made; the name is
// only checked against the server's naming rules.
func (c *Client) DB(name string) (*Database, error) {
	if err := validateDBName(name); err != nil {
		return nil, err
	}
	return &Database{client: c, name: name}, nil
}

func (c *Client) newRequest() *chttp.RequestBuilder {
	return chttp.NewRequest(c.url).WithCredentials(c.credentials)
}

// send builds and sends the request, returning the raw response. Transport
// failures are returned as *chttp.TransportError.
func (c *Client) send(ctx context.Context, b *chttp.RequestBuilder) (*chttp.Response, error) {
	req, err := b.Build()
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "sending request", "request", req)
	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		c.logger.DebugContext(ctx, "transport failed", "request", req, "error", err)
		return nil, transportError(err)
	}
	if resp == nil {
		return nil, &chttp.TransportError{Err: errNoResponse}
	}
	c.logger.DebugContext(ctx, "received response", "request", req, "response", resp)
	return resp, nil
}

func transportError(err error) error {
	var reqErr *chttp.RequestError
	var tErr *chttp.TransportError
	if errors.As(err, &reqErr) || errors.As(err, &tErr) {
		return err
	}
	return &chttp.TransportError{Err: err}
}

// do sends the request and classifies the response.
func (c *Client) do(ctx context.Context, b *chttp.RequestBuilder) (*chttp.Response, error) {
	resp, err := c.send(ctx, b)
	if err != nil {
		return nil, err
	}
	return chttp.Classify(resp)
}

func (c *Client) doJSON(ctx context.Context, b *chttp.RequestBuilder, i interface{}) error {
	resp, err := c.do(ctx, b)
	if err != nil {
		return err
	}
	return resp.DecodeJSON(i)
}

// exists sends a HEAD request. Any status but 404 means the resource exists;
// only request and transport failures are errors.
func (c *Client) exists(ctx context.Context, b *chttp.RequestBuilder) (bool, error) {
	resp, err := c.send(ctx, b.WithMethod(http.MethodHead))
	if err != nil {
		return false, err
	}
	return resp.Status != http.StatusNotFound, nil
}
