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

package chttp

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/ajg/form"
	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"
)

const typeJSON = "application/json"

// MethodCopy is CouchDB's non-standard COPY method.
const MethodCopy = "COPY"

// Request is a fully formed request, ready to hand to a Transport. Body is
// nil when the request has no body.
type Request struct {
	Method      string
	URL         *url.URL
	Header      http.Header
	Credentials Credentials
	Body        []byte
}

// HTTPHeader returns a copy of the request headers with the credentials
// rendered in.
func (r *Request) HTTPHeader() http.Header {
	h := r.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	if name, value, ok := r.Credentials.Header(); ok {
		h.Set(name, value)
	}
	return h
}

// String renders the request for diagnostics, with any credentials redacted.
func (r *Request) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", r.Method, r.URL)
	if !r.Credentials.IsNone() {
		fmt.Fprintf(&b, "\nauthorization: %s", r.Credentials)
	}
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range r.Header[name] {
			if strings.EqualFold(name, "Authorization") {
				value = redacted
			}
			fmt.Fprintf(&b, "\n%s: %s", strings.ToLower(name), value)
		}
	}
	if r.Body != nil {
		fmt.Fprintf(&b, "\n\n%s", r.Body)
	}
	return b.String()
}

// LogValue implements slog.LogValuer. The body is omitted, as it may carry
// arbitrary document content.
func (r *Request) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("method", r.Method),
		slog.String("url", r.URL.String()),
		slog.Any("auth", r.Credentials),
	)
}

// RequestBuilder assembles a Request. Failures are accumulated, and the first
// one is returned by Build as a *RequestError.
type RequestBuilder struct {
	method      string
	base        *url.URL
	segments    []string
	dbSet       bool
	query       url.Values
	header      http.Header
	credentials Credentials
	body        []byte
	err         error
}

// NewRequest starts a new request against baseURL. The method defaults to
// GET.
func NewRequest(baseURL string) *RequestBuilder {
	b := &RequestBuilder{
		method: http.MethodGet,
		query:  url.Values{},
		header: http.Header{"Accept": {typeJSON}},
	}
	u, err := url.Parse(baseURL)
	switch {
	case err != nil:
		b.fail("parse url", err)
	case u.Scheme == "" || u.Host == "":
		b.fail("parse url", errors.Errorf("%q is not an absolute URL", baseURL))
	default:
		b.base = u
		for k, v := range u.Query() {
			b.query[k] = v
		}
	}
	return b
}

func (b *RequestBuilder) fail(op string, err error) {
	if b.err == nil {
		b.err = requestError(op, err)
	}
}

// WithMethod sets the request method. Any valid token is accepted, including
// COPY.
func (b *RequestBuilder) WithMethod(method string) *RequestBuilder {
	if method == "" || !httpguts.ValidHeaderFieldName(method) {
		b.fail("method", errors.Errorf("invalid method %q", method))
		return b
	}
	b.method = method
	return b
}

// WithCredentials sets the credentials rendered into the Authorization
// header when the request is sent.
func (b *RequestBuilder) WithCredentials(c Credentials) *RequestBuilder {
	b.credentials = c
	return b
}

// WithHeader appends a header value. Repeated calls with the same name keep
// every value in order.
func (b *RequestBuilder) WithHeader(name, value string) *RequestBuilder {
	if !httpguts.ValidHeaderFieldName(name) {
		b.fail("header", errors.Errorf("invalid header name %q", name))
		return b
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		b.fail("header", errors.Errorf("invalid value for header %s", name))
		return b
	}
	b.header.Add(name, value)
	return b
}

// WithQueryParam appends a query parameter.
func (b *RequestBuilder) WithQueryParam(key, value string) *RequestBuilder {
	b.query.Add(key, value)
	return b
}

// WithQueryParams appends every value in params.
func (b *RequestBuilder) WithQueryParams(params url.Values) *RequestBuilder {
	for k, v := range params {
		for _, value := range v {
			b.query.Add(k, value)
		}
	}
	return b
}

// WithQueryString encodes a struct (or map) as query parameters. Parameter
// names come from `form` struct tags.
func (b *RequestBuilder) WithQueryString(q interface{}) *RequestBuilder {
	values, err := form.EncodeToValues(q)
	if err != nil {
		b.fail("query string", err)
		return b
	}
	return b.WithQueryParams(values)
}

// WithJSONBody marshals v as the request body, and sets the Content-Type.
func (b *RequestBuilder) WithJSONBody(v interface{}) *RequestBuilder {
	body, err := json.Marshal(v)
	if err != nil {
		b.fail("json body", err)
		return b
	}
	b.body = body
	b.header.Set("Content-Type", typeJSON)
	return b
}

// WithBody sets a raw body. A nil body means no body.
func (b *RequestBuilder) WithBody(body []byte) *RequestBuilder {
	b.body = body
	return b
}

// WithDatabase appends the database name as the first path segment.
func (b *RequestBuilder) WithDatabase(name string) *RequestBuilder {
	b.segments = append(b.segments, url.PathEscape(name))
	b.dbSet = true
	return b
}

// WithPartition scopes the request to a partition of the database.
func (b *RequestBuilder) WithPartition(partition string) *RequestBuilder {
	b.segments = append(b.segments, "_partition", url.PathEscape(partition))
	return b
}

// WithPathSegment appends a raw path segment, escaping it.
func (b *RequestBuilder) WithPathSegment(segment string) *RequestBuilder {
	b.segments = append(b.segments, url.PathEscape(segment))
	return b
}

// WithDocument appends the document path, and the rev query parameter if rev
// is non-empty. It panics if no database has been set, as a document URL is
// meaningless without one.
func (b *RequestBuilder) WithDocument(id, rev string) *RequestBuilder {
	if !b.dbSet {
		panic("cannot construct a document URL without a database prefix")
	}
	b.segments = append(b.segments, EncodeDocID(id))
	if rev != "" {
		b.query.Add("rev", rev)
	}
	return b
}

// Build returns the assembled request, or the first construction failure.
func (b *RequestBuilder) Build() (*Request, error) {
	if b.err != nil {
		return nil, b.err
	}
	u := *b.base
	rawPath := strings.TrimSuffix(b.base.EscapedPath(), "/") + "/" + strings.Join(b.segments, "/")
	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return nil, requestError("path", err)
	}
	u.Path = path
	u.RawPath = rawPath
	u.RawQuery = b.query.Encode()
	u.User = nil
	return &Request{
		Method:      b.method,
		URL:         &u,
		Header:      b.header.Clone(),
		Credentials: b.credentials,
		Body:        b.body,
	}, nil
}
