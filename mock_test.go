package futon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-kivik/futon/chttp"
	"github.com/go-kivik/futon/internal/mock"
)

// note is a typical user document.
type note struct {
	DocID  string `json:"_id,omitempty"`
	DocRev string `json:"_rev,omitempty"`
	Text   string `json:"text"`
}

var _ Document = &note{}

func (n *note) ID() string        { return n.DocID }
func (n *note) Rev() string       { return n.DocRev }
func (n *note) SetID(id string)   { n.DocID = id }
func (n *note) SetRev(rev string) { n.DocRev = rev }

func newCustomClient(t *testing.T, fn func(*chttp.Request) (*chttp.Response, error)) *Client {
	t.Helper()
	c, err := New("http://example.com/", WithTransport(chttp.TransportFunc(
		func(_ context.Context, req *chttp.Request) (*chttp.Response, error) {
			return fn(req)
		})))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func newTestClient(t *testing.T, resp *chttp.Response, err error) *Client {
	t.Helper()
	return newCustomClient(t, func(*chttp.Request) (*chttp.Response, error) {
		return resp, err
	})
}

func newTestDB(t *testing.T, resp *chttp.Response, err error) *Database {
	t.Helper()
	db, dbErr := newTestClient(t, resp, err).DB("testdb")
	if dbErr != nil {
		t.Fatal(dbErr)
	}
	return db
}

func jsonResponse(status int, body string) *chttp.Response {
	return &chttp.Response{
		Status: status,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   []byte(body),
	}
}

// newMockClient returns a client connected to a fresh in-memory server.
func newMockClient(t *testing.T, opts ...mock.Option) (*Client, *mock.Server) {
	t.Helper()
	srv := mock.New(opts...)
	s := httptest.NewServer(srv)
	t.Cleanup(s.Close)
	c, err := New(s.URL)
	if err != nil {
		t.Fatal(err)
	}
	return c, srv
}

// newMockDB returns a handle to a database that already exists on a fresh
// in-memory server.
func newMockDB(t *testing.T, partitioned bool) *Database {
	t.Helper()
	c, srv := newMockClient(t)
	srv.CreateDB("testdb", partitioned)
	db, err := c.DB("testdb")
	if err != nil {
		t.Fatal(err)
	}
	return db
}
