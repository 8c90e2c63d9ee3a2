package futon

import (
	"context"
	"net/http"
)

// Meta provides server-level operations.
type Meta struct {
	client *Client
}

// ServerInfo describes the server, as returned by GET /.
type ServerInfo struct {
	CouchDB  string       `json:"couchdb"`
	UUID     string       `json:"uuid"`
	GitSHA   string       `json:"git_sha"`
	Version  string       `json:"version"`
	Vendor   ServerVendor `json:"vendor"`
	Features []string     `json:"features"`
}

// ServerVendor identifies the vendor of the server.
type ServerVendor struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// IsUp returns true if the server answers HEAD /_up with a 2xx status. Only
// transport failures are returned as errors.
func (m *Meta) IsUp(ctx context.Context) (bool, error) {
	resp, err := m.client.send(ctx, m.client.newRequest().
		WithMethod(http.MethodHead).
		WithPathSegment("_up"))
	if err != nil {
		return false, err
	}
	return resp.Status >= 200 && resp.Status < 300, nil
}

// ServerInfo returns the server's identity and version.
func (m *Meta) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	info := &ServerInfo{}
	if err := m.client.doJSON(ctx, m.client.newRequest(), info); err != nil {
		return nil, err
	}
	return info, nil
}
