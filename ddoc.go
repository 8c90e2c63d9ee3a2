package futon

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-kivik/futon/chttp"
)

// QueryServer is the language of a design document's functions.
type QueryServer string

// Query servers shipped with CouchDB. Any other name refers to a custom query
// server.
const (
	JavaScript QueryServer = "javascript"
	Erlang     QueryServer = "erlang"
)

// ParseQueryServer parses a language name, case-insensitively. An empty name
// is JavaScript, the server default.
func ParseQueryServer(s string) QueryServer {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return JavaScript
	}
	return QueryServer(s)
}

// UnmarshalJSON parses the language case-insensitively.
func (q *QueryServer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*q = ParseQueryServer(s)
	return nil
}

// ViewDefinition is a map/reduce view in a design document.
type ViewDefinition struct {
	Map    string `json:"map"`
	Reduce string `json:"reduce,omitempty"`
}

// DesignDocument is a design document. DocID always carries the _design/
// prefix.
type DesignDocument struct {
	DocID    string                    `json:"_id"`
	DocRev   string                    `json:"_rev,omitempty"`
	Language QueryServer               `json:"language"`
	Views    map[string]ViewDefinition `json:"views,omitempty"`
}

var _ Document = &DesignDocument{}

// NewDesignDocument returns a new design document. The _design/ prefix is
// added to name if it is missing.
func NewDesignDocument(name string, language QueryServer) *DesignDocument {
	if language == "" {
		language = JavaScript
	}
	return &DesignDocument{
		DocID:    chttp.DesignDocID(name),
		Language: language,
	}
}

// ID returns the document ID, including the _design/ prefix.
func (d *DesignDocument) ID() string { return d.DocID }

// Rev returns the revision.
func (d *DesignDocument) Rev() string { return d.DocRev }

// SetID sets the document ID.
func (d *DesignDocument) SetID(id string) { d.DocID = id }

// SetRev sets the revision.
func (d *DesignDocument) SetRev(rev string) { d.DocRev = rev }

// Name returns the document ID without the _design/ prefix.
func (d *DesignDocument) Name() string {
	return strings.TrimPrefix(d.DocID, "_design/")
}

// DesignDocuments provides design document and view operations. When
// partition is set, view queries are scoped to it.
type DesignDocuments struct {
	db        *Database
	partition string
}

// Create stores a new design document.
func (d *DesignDocuments) Create(ctx context.Context, ddoc *DesignDocument) error {
	return d.db.Documents().Create(ctx, ddoc)
}

// CreateOrUpdate stores a design document at its current revision.
func (d *DesignDocuments) CreateOrUpdate(ctx context.Context, ddoc *DesignDocument) error {
	return d.db.Documents().CreateOrUpdate(ctx, ddoc)
}

// Get fetches a design document by name. It returns nil, and a nil error, if
// there is no such design document.
func (d *DesignDocuments) Get(ctx context.Context, name string) (*DesignDocument, error) {
	ddoc := &DesignDocument{}
	found, err := d.db.Documents().Get(ctx, chttp.DesignDocID(name), ddoc)
	if !found {
		return nil, err
	}
	return ddoc, nil
}

func (d *DesignDocuments) viewRequest() *chttp.RequestBuilder {
	b := d.db.request()
	if d.partition != "" {
		b = b.WithPartition(d.partition)
	}
	return b.WithMethod(http.MethodPost)
}

// ExecuteView queries a view defined in the named design document.
func (d *DesignDocuments) ExecuteView(ctx context.Context, ddoc, view string, params *ViewQueryParameters) (*ViewResults, error) {
	if ddoc == "" {
		return nil, missingArg("design document")
	}
	if view == "" {
		return nil, missingArg("view")
	}
	return d.query(ctx, d.viewRequest().
		WithPathSegment("_design").
		WithPathSegment(strings.TrimPrefix(ddoc, "_design/")).
		WithPathSegment("_view").
		WithPathSegment(view), params)
}

// ExecuteBuiltinView queries a view served by the server itself, such as
// _all_docs.
func (d *DesignDocuments) ExecuteBuiltinView(ctx context.Context, view string, params *ViewQueryParameters) (*ViewResults, error) {
	if view == "" {
		return nil, missingArg("view")
	}
	return d.query(ctx, d.viewRequest().WithPathSegment(view), params)
}

func (d *DesignDocuments) query(ctx context.Context, b *chttp.RequestBuilder, params *ViewQueryParameters) (*ViewResults, error) {
	params, err := viewParams(params)
	if err != nil {
		return nil, err
	}
	results := &ViewResults{}
	if err := d.db.client.doJSON(ctx, b.WithJSONBody(params), results); err != nil {
		return nil, err
	}
	return results, nil
}
