package futon

import (
	"context"
	"net/http"

	"github.com/go-kivik/futon/chttp"
)

// Database is a handle to a single database. It is safe for concurrent use.
type Database struct {
	client *Client
	name   string
}

// Name returns the database name.
func (d *Database) Name() string {
	return d.name
}

func (d *Database) request() *chttp.RequestBuilder {
	return d.client.newRequest().WithDatabase(d.name)
}

// Exists reports whether the server answers anything but 404 for the
// database.
func (d *Database) Exists(ctx context.Context) (bool, error) {
	return d.client.exists(ctx, d.request())
}

// Info returns the database metadata.
func (d *Database) Info(ctx context.Context) (*DatabaseInfo, error) {
	info := &DatabaseInfo{}
	if err := d.client.doJSON(ctx, d.request(), info); err != nil {
		return nil, err
	}
	return info, nil
}

// Create creates the database.
func (d *Database) Create(ctx context.Context, params DatabaseCreationParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	_, err := d.client.do(ctx, d.request().
		WithMethod(http.MethodPut).
		WithQueryString(params))
	return err
}

// Delete deletes the database.
func (d *Database) Delete(ctx context.Context) error {
	_, err := d.client.do(ctx, d.request().WithMethod(http.MethodDelete))
	return err
}

// AllDocs queries the _all_docs view. Each row's value decodes to a RevInfo.
// A nil params uses the defaults.
func (d *Database) AllDocs(ctx context.Context, params *ViewQueryParameters) (*ViewResults, error) {
	return d.DesignDocs("").ExecuteBuiltinView(ctx, ViewAllDocs, params)
}

// AllDocsInPartition queries the _all_docs view of a single partition.
func (d *Database) AllDocsInPartition(ctx context.Context, partition string, params *ViewQueryParameters) (*ViewResults, error) {
	if partition == "" {
		return nil, missingArg("partition")
	}
	return d.DesignDocs(partition).ExecuteBuiltinView(ctx, ViewAllDocs, params)
}

// Documents returns the document operations of the database.
func (d *Database) Documents() *Documents {
	return &Documents{db: d}
}

// DesignDocs returns the design document and view operations of the
// database. A non-empty partition scopes view queries to that partition.
func (d *Database) DesignDocs(partition string) *DesignDocuments {
	return &DesignDocuments{db: d, partition: partition}
}
