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

package cmd

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/go-kivik/futon"
	"github.com/go-kivik/futon/chttp"
)

// Exit status codes
//
// See https://man.openbsd.org/sysexits.3
const (
	// ExitUsage indicates an incorrect command, option, or configuration.
	ExitUsage = 2
	// ExitUnknown indicates that the server responded with a status > 500.
	ExitUnknown = 3
	// ExitInternalServerError indicates that the server responded with a 500.
	ExitInternalServerError = 4

	ExitBadRequest         = 10
	ExitUnauthorized       = 11
	ExitForbidden          = 13
	ExitNotFound           = 14
	ExitConflict           = 19
	ExitPreconditionFailed = 22

	// ExitData indicates invalid input, such as a malformed document.
	ExitData = 65
	// ExitUnavailable indicates that the server could not be reached, or
	// reported itself down.
	ExitUnavailable = 69
	// ExitProtocol indicates a response that could not be understood.
	ExitProtocol = 76
)

type exitError struct {
	error
	code int
}

func (e *exitError) Unwrap() error {
	return e.error
}

func withCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &exitError{error: err, code: code}
}

var statusCodes = map[int]int{
	http.StatusBadRequest:          ExitBadRequest,
	http.StatusUnauthorized:        ExitUnauthorized,
	http.StatusForbidden:           ExitForbidden,
	http.StatusNotFound:            ExitNotFound,
	http.StatusConflict:            ExitConflict,
	http.StatusPreconditionFailed:  ExitPreconditionFailed,
	http.StatusInternalServerError: ExitInternalServerError,
}

// exitCode maps err to a process exit status. Unrecognized errors are
// assumed to come from cobra's flag parsing.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var (
		reqErr       *chttp.RequestError
		nameErr      *futon.InvalidDatabaseNameError
		transportErr *chttp.TransportError
		decodeErr    *chttp.DecodeError
		httpErr      *chttp.HTTPError
	)
	switch {
	case errors.As(err, &reqErr), errors.As(err, &nameErr):
		return ExitUsage
	case errors.As(err, &transportErr):
		return ExitUnavailable
	case errors.As(err, &decodeErr):
		return ExitProtocol
	case errors.As(err, &httpErr):
		if code, ok := statusCodes[httpErr.Status]; ok {
			return code
		}
		if httpErr.Status > http.StatusInternalServerError {
			return ExitUnknown
		}
		return ExitBadRequest
	}
	return ExitUsage
}
