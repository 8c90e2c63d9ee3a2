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
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

// Transport sends a fully formed request, and returns the fully materialized
// response. Implementations must be safe for concurrent use. Any connection
// pooling, retries and timeouts are the implementation's concern.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(context.Context, *Request) (*Response, error)

var _ Transport = TransportFunc(nil)

// Send calls f(ctx, req).
func (f TransportFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPTransport is the default Transport, backed by an *http.Client.
type HTTPTransport struct {
	client     *http.Client
	userAgent  string
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

var _ Transport = &HTTPTransport{}

var errRetryableStatus = errors.New("retryable status")

// NewHTTPTransport returns a new HTTPTransport. With no options it uses a
// clone of http.DefaultTransport and makes no retries.
func NewHTTPTransport(opts ...HTTPOption) (*HTTPTransport, error) {
	o := &httpOptions{
		userAgent: defaultUserAgent,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	client, err := o.httpClient()
	if err != nil {
		return nil, err
	}
	return &HTTPTransport{
		client:     client,
		userAgent:  o.userAgent,
		maxRetries: o.maxRetries,
		newBackOff: o.newBackOff,
	}, nil
}

// Send executes req. Idempotent requests (GET and HEAD) are retried on
// network errors and on 502, 503 and 504 responses, up to the configured
// retry count. Failures are returned as *TransportError, with the cause
// unchanged.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	trace := ContextClientTrace(ctx)
	retry := idempotent(req.Method)
	var resp *Response
	op := func() error {
		resp = nil
		trace.request(req)
		r, err := t.roundTrip(ctx, req)
		if err != nil {
			var reqErr *RequestError
			if !retry || ctx.Err() != nil || errors.As(err, &reqErr) {
				return backoff.Permanent(err)
			}
			return err
		}
		trace.response(r)
		resp = r
		if retry && retryableStatus(r.Status) {
			return errRetryableStatus
		}
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(t.newBackOff(), t.maxRetries), ctx)
	err := backoff.Retry(op, policy)
	if resp != nil && (err == nil || errors.Is(err, errRetryableStatus)) {
		return resp, nil
	}
	if err == nil {
		err = errors.New("no response")
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return nil, err
	}
	return nil, &TransportError{Err: err}
}

func (t *HTTPTransport) roundTrip(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader = http.NoBody
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), body)
	if err != nil {
		return nil, requestError("new request", err)
	}
	httpReq.Header = req.HTTPHeader()
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}
	res, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		Status: res.StatusCode,
		Header: res.Header,
		Body:   data,
	}, nil
}

func idempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
