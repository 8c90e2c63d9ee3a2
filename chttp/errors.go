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
	"mime"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies an error response from the server.
type Kind int

// The error kinds produced by Classify.
const (
	KindUnknownError Kind = iota
	KindNotFound
	KindUnauthorized
	KindConflict
	KindInvalidRevFormat
	KindUnknownBadRequest
)

var kindNames = map[Kind]string{
	KindUnknownError:      "unknown error",
	KindNotFound:          "not found",
	KindUnauthorized:      "unauthorized",
	KindConflict:          "conflict",
	KindInvalidRevFormat:  "invalid rev format",
	KindUnknownBadRequest: "unknown bad request",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Synthesized ErrorPayload.Error values, used when the server sent no
// decodable payload.
const (
	ErrUnsupportedContentType = "unsupported content type"
	ErrUnknown                = "unknown error"
)

const reasonInvalidRevFormat = "invalid rev format"

// ErrorPayload is the JSON error body returned by the server.
type ErrorPayload struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// HTTPError is a classified non-2xx response.
type HTTPError struct {
	Kind    Kind
	Status  int
	Payload ErrorPayload
}

var _ error = &HTTPError{}

func (e *HTTPError) Error() string {
	reason := e.Payload.Reason
	if reason == "" {
		reason = e.Payload.Error
	}
	statusText := http.StatusText(e.Status)
	switch {
	case reason == "":
		return statusText
	case statusText == "":
		return reason
	}
	return fmt.Sprintf("%s: %s", statusText, reason)
}

// HTTPStatus returns the status code of the response.
func (e *HTTPError) HTTPStatus() int {
	return e.Status
}

// Classify passes 2xx responses through unchanged, and turns anything else
// into an *HTTPError carrying the server's payload. It does no I/O.
func Classify(resp *Response) (*Response, error) {
	if resp.Status >= 200 && resp.Status < 300 {
		return resp, nil
	}
	payload := errorPayload(resp)
	return nil, &HTTPError{
		Kind:    classifyStatus(resp.Status, payload.Reason),
		Status:  resp.Status,
		Payload: payload,
	}
}

func errorPayload(resp *Response) ErrorPayload {
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		return ErrorPayload{Error: ErrUnknown}
	}
	if ct, _, _ := mime.ParseMediaType(contentType); ct != typeJSON {
		return ErrorPayload{Error: ErrUnsupportedContentType}
	}
	var payload ErrorPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return ErrorPayload{Error: ErrUnknown}
	}
	return payload
}

func classifyStatus(status int, reason string) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusConflict:
		return KindConflict
	case http.StatusBadRequest:
		if strings.ToLower(strings.TrimSpace(reason)) == reasonInvalidRevFormat {
			return KindInvalidRevFormat
		}
		return KindUnknownBadRequest
	}
	return KindUnknownError
}

// KindOf returns the Kind of a classified error anywhere in err's chain. ok is
// false if err does not wrap an *HTTPError.
func KindOf(err error) (kind Kind, ok bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Kind, true
	}
	return KindUnknownError, false
}

// RequestError reports a request that could not be constructed. It is always
// a caller fault, and is never sent over the wire.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return "futon: " + e.Op + ": " + e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns 400.
func (e *RequestError) HTTPStatus() int {
	return http.StatusBadRequest
}

func requestError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RequestError{Op: op, Err: err}
}

// TransportError reports a failure of the underlying transport. The cause is
// kept unchanged, so context cancellation is still visible to errors.Is.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns 502, as no usable response was received.
func (e *TransportError) HTTPStatus() int {
	return http.StatusBadGateway
}

// DecodeError reports a response body that could not be decoded into the
// expected type.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "malformed response body: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns 502, as the server's response was not usable.
func (e *DecodeError) HTTPStatus() int {
	return http.StatusBadGateway
}
