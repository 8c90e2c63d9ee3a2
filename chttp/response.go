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
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Response is a fully materialized server response. It is read-only once
// received.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// DecodeJSON unmarshals the response body into i. Failures are returned as
// *DecodeError.
func (r *Response) DecodeJSON(i interface{}) error {
	if err := json.Unmarshal(r.Body, i); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// ETag returns the unquoted ETag header, if present.
func (r *Response) ETag() (string, bool) {
	if r == nil {
		return "", false
	}
	etag, ok := r.Header["Etag"]
	if !ok {
		etag, ok = r.Header["ETag"] // nolint: staticcheck
	}
	if !ok || len(etag) == 0 {
		return "", false
	}
	return strings.Trim(etag[0], `"`), true
}

var errNoRev = errors.New("unable to determine document revision")

// Rev extracts the document revision from the ETag header, falling back to
// the _rev field of the body.
func (r *Response) Rev() (string, error) {
	if rev, ok := r.ETag(); ok {
		return rev, nil
	}
	if len(r.Body) == 0 {
		return "", &DecodeError{Err: errNoRev}
	}
	var doc struct {
		Rev string `json:"_rev"`
	}
	if err := json.Unmarshal(r.Body, &doc); err != nil {
		return "", &DecodeError{Err: errors.Wrap(err, errNoRev.Error())}
	}
	if doc.Rev == "" {
		return "", &DecodeError{Err: errNoRev}
	}
	return doc.Rev, nil
}

// LogValue implements slog.LogValuer.
func (r *Response) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("status", r.Status),
		slog.Int("bytes", len(r.Body)),
	)
}
