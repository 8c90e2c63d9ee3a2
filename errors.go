package futon

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/pkg/errors"

	"github.com/go-kivik/futon/chttp"
)

const dbNameDocs = "https://docs.couchdb.org/en/stable/api/database/common.html#put--db"

var validDBName = regexp.MustCompile(`^[a-z][a-z0-9_$()+/-]*$`)

var (
	errNoRev      = errors.New("response carries no revision")
	errNoResponse = errors.New("transport returned no response")
)

// InvalidDatabaseNameError is returned for a database name the server would
// reject. It is detected locally, and never reaches the network.
type InvalidDatabaseNameError struct {
	Name string
}

func (e *InvalidDatabaseNameError) Error() string {
	return fmt.Sprintf("futon: invalid database name %q: must begin with a lowercase letter, and contain only a-z, 0-9, _, $, (, ), +, - and /. See %s", e.Name, dbNameDocs)
}

// HTTPStatus returns 400.
func (e *InvalidDatabaseNameError) HTTPStatus() int {
	return http.StatusBadRequest
}

func validateDBName(name string) error {
	if !validDBName.MatchString(name) {
		return &InvalidDatabaseNameError{Name: name}
	}
	return nil
}

func missingArg(arg string) error {
	return &chttp.RequestError{Op: "validate", Err: errors.Errorf("%s required", arg)}
}

func isKind(err error, kind chttp.Kind) bool {
	k, ok := chttp.KindOf(err)
	return ok && k == kind
}

// IsNotFound returns true if err is a classified 404 response.
func IsNotFound(err error) bool {
	return isKind(err, chttp.KindNotFound)
}

// IsConflict returns true if err is a classified 409 response.
func IsConflict(err error) bool {
	return isKind(err, chttp.KindConflict)
}

// IsUnauthorized returns true if err is a classified 401 response.
func IsUnauthorized(err error) bool {
	return isKind(err, chttp.KindUnauthorized)
}

// HTTPStatus returns the HTTP status associated with err, or 0 if there is
// none. Every error returned by this package carries a status: 400 for local
// validation failures, 502 for transport failures, and the server's status
// for classified responses.
func HTTPStatus(err error) int {
	var statuser interface {
		HTTPStatus() int
	}
	if errors.As(err, &statuser) {
		return statuser.HTTPStatus()
	}
	return 0
}
