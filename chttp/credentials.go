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
	"encoding/base64"
	"log/slog"
)

const redacted = "[REDACTED]"

type authScheme int

const (
	schemeNone authScheme = iota
	schemeBasic
)

// Credentials holds zero or one authentication scheme. The zero value carries
// no credentials. Credentials are immutable once constructed, and never render
// the secret in String, GoString or log output.
type Credentials struct {
	scheme   authScheme
	username string
	password string
}

// NoCredentials returns empty credentials. Requests built with them carry no
// Authorization header.
func NoCredentials() Credentials {
	return Credentials{}
}

// BasicAuth returns credentials for HTTP Basic Auth.
func BasicAuth(username, password string) Credentials {
	return Credentials{
		scheme:   schemeBasic,
		username: username,
		password: password,
	}
}

// IsNone returns true if c carries no authentication scheme.
func (c Credentials) IsNone() bool {
	return c.scheme == schemeNone
}

// Username returns the configured username, if any.
func (c Credentials) Username() string {
	return c.username
}

// Header renders the credentials as a header. ok is false when there is
// nothing to send.
func (c Credentials) Header() (name, value string, ok bool) {
	switch c.scheme {
	case schemeBasic:
		token := base64.StdEncoding.EncodeToString([]byte(c.username + ":" + c.password))
		return "Authorization", "Basic " + token, true
	}
	return "", "", false
}

func (c Credentials) String() string {
	switch c.scheme {
	case schemeBasic:
		return "Basic " + redacted
	}
	return "None"
}

// GoString keeps %#v from printing the secret.
func (c Credentials) GoString() string {
	return "chttp.Credentials{" + c.String() + "}"
}

// LogValue implements slog.LogValuer.
func (c Credentials) LogValue() slog.Value {
	return slog.StringValue(c.String())
}
