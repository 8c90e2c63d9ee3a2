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
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
)

const defaultUserAgent = "futon"

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*httpOptions)

type httpOptions struct {
	client     *http.Client
	userAgent  string
	maxRetries uint64
	newBackOff func() backoff.BackOff
	http2      bool
	tracing    bool
	otelOpts   []otelhttp.Option
}

// WithHTTPClient sets the underlying *http.Client. The client is copied, not
// modified.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(o *httpOptions) {
		o.client = c
	}
}

// WithUserAgent sets the User-Agent header sent when the request does not
// set one itself.
func WithUserAgent(ua string) HTTPOption {
	return func(o *httpOptions) {
		o.userAgent = ua
	}
}

// WithRetries sets the number of times an idempotent request is retried.
func WithRetries(n uint64) HTTPOption {
	return func(o *httpOptions) {
		o.maxRetries = n
	}
}

// WithBackOff sets the delay policy between retries. The function is called
// once per request. The default is an exponential back-off.
func WithBackOff(fn func() backoff.BackOff) HTTPOption {
	return func(o *httpOptions) {
		o.newBackOff = fn
	}
}

// WithHTTP2 enables HTTP/2 on the underlying *http.Transport.
func WithHTTP2() HTTPOption {
	return func(o *httpOptions) {
		o.http2 = true
	}
}

// WithTracing wraps the underlying transport to emit OpenTelemetry client
// spans.
func WithTracing(opts ...otelhttp.Option) HTTPOption {
	return func(o *httpOptions) {
		o.tracing = true
		o.otelOpts = opts
	}
}

func (o *httpOptions) httpClient() (*http.Client, error) {
	client := &http.Client{}
	if o.client != nil {
		*client = *o.client
	}
	rt := client.Transport
	if rt == nil {
		rt = http.DefaultTransport.(*http.Transport).Clone()
	}
	if o.http2 {
		t1, ok := rt.(*http.Transport)
		if !ok {
			return nil, errors.Errorf("http2 requires an *http.Transport, got %T", rt)
		}
		t1 = t1.Clone()
		// A clone of a used transport may carry h2 bound to the original.
		t1.TLSNextProto = nil
		if _, err := http2.ConfigureTransports(t1); err != nil {
			return nil, errors.Wrap(err, "configure http2")
		}
		rt = t1
	}
	if o.tracing {
		rt = otelhttp.NewTransport(rt, o.otelOpts...)
	}
	client.Transport = rt
	return client, nil
}
