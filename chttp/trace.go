package chttp

import (
	"context"
	"net/http"
)

type clientTraceContextKey struct{}

// ContextClientTrace returns the ClientTrace associated with the
// provided context. If none, it returns nil.
func ContextClientTrace(ctx context.Context) *ClientTrace {
	trace, _ := ctx.Value(clientTraceContextKey{}).(*ClientTrace)
	return trace
}

// ClientTrace is a set of hooks to run at various stages of an outgoing
// request. Any particular hook may be nil. Functions may be called
// concurrently from different goroutines.
type ClientTrace struct {
	// Request is called with each request before it is sent, once per
	// attempt. Credentials are carried separately from the headers, so
	// rendering the request with String does not leak them.
	Request func(*Request)

	// Response is called with a clone of each received response, with the
	// body set to nil. If you need the body, use the more expensive
	// ResponseBody.
	Response func(*Response)

	// ResponseBody is called with a clone of each received response,
	// including a copy of the body.
	ResponseBody func(*Response)
}

// WithClientTrace returns a new context based on the provided parent
// ctx. Requests sent with the returned context will use the provided trace
// hooks.
func WithClientTrace(ctx context.Context, trace *ClientTrace) context.Context {
	if trace == nil {
		panic("nil trace")
	}
	return context.WithValue(ctx, clientTraceContextKey{}, trace)
}

func (t *ClientTrace) request(r *Request) {
	if t == nil || t.Request == nil {
		return
	}
	t.Request(r)
}

func (t *ClientTrace) response(r *Response) {
	if t == nil {
		return
	}
	if t.Response != nil {
		t.Response(&Response{
			Status: r.Status,
			Header: cloneHeader(r.Header),
		})
	}
	if t.ResponseBody != nil {
		var body []byte
		if r.Body != nil {
			body = append([]byte{}, r.Body...)
		}
		t.ResponseBody(&Response{
			Status: r.Status,
			Header: cloneHeader(r.Header),
			Body:   body,
		})
	}
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return http.Header{}
	}
	return h.Clone()
}
