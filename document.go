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

package futon

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/go-kivik/futon/chttp"
)

// Document is implemented by any value stored as a document. Rev returns ""
// when the document has no revision. The revision is an opaque token, and is
// only ever set from a server response.
//
// A typical implementation marshals the ID as "_id" and the revision as
// "_rev" with omitempty:
//
//	type Note struct {
//		DocID  string `json:"_id"`
//		DocRev string `json:"_rev,omitempty"`
//		Text   string `json:"text"`
//	}
type Document interface {
	ID() string
	Rev() string
	SetID(id string)
	SetRev(rev string)
}

// DocumentOperationResult is the server's acknowledgment of a write.
type DocumentOperationResult struct {
	ID  string `json:"id"`
	Rev string `json:"rev"`
	OK  bool   `json:"ok"`
}

// Tombstone is what remains of a deleted document. It can be fetched by the
// revision returned from the deletion.
type Tombstone struct {
	DocID   string `json:"_id"`
	DocRev  string `json:"_rev,omitempty"`
	Deleted bool   `json:"_deleted"`
}

var _ Document = &Tombstone{}

// ID returns the document ID.
func (t *Tombstone) ID() string { return t.DocID }

// Rev returns the revision of the deletion.
func (t *Tombstone) Rev() string { return t.DocRev }

// SetID sets the document ID.
func (t *Tombstone) SetID(id string) { t.DocID = id }

// SetRev sets the revision.
func (t *Tombstone) SetRev(rev string) { t.DocRev = rev }

// CopyDestination is the target of a copy. Rev must be the current revision
// when the target already exists, and empty otherwise.
type CopyDestination struct {
	ID  string
	Rev string
}

// NewCopyDestination returns a destination for a new document.
func NewCopyDestination(id string) CopyDestination {
	return CopyDestination{ID: id}
}

// CopyDestinationFromDoc returns a destination that overwrites doc at its
// current revision.
func CopyDestinationFromDoc(doc Document) CopyDestination {
	return CopyDestination{ID: doc.ID(), Rev: doc.Rev()}
}

// String renders the Destination header value.
func (d CopyDestination) String() string {
	if d.Rev == "" {
		return d.ID
	}
	return d.ID + "?" + url.Values{"rev": {d.Rev}}.Encode()
}

// Documents provides the revision-aware document operations of a database.
type Documents struct {
	db *Database
}

func (d *Documents) client() *Client {
	return d.db.client
}

func (d *Documents) write(ctx context.Context, doc Document, b *chttp.RequestBuilder) error {
	result := &DocumentOperationResult{}
	if err := d.client().doJSON(ctx, b, result); err != nil {
		return err
	}
	if result.Rev == "" {
		return &chttp.DecodeError{Err: errNoRev}
	}
	if result.ID != "" {
		doc.SetID(result.ID)
	}
	doc.SetRev(result.Rev)
	return nil
}

// Create stores a new document, and sets its ID and revision from the
// response. The server assigns an ID if doc has none. doc must not have a
// revision; use CreateOrUpdate for existing documents. A document with the
// same ID yields a Conflict.
func (d *Documents) Create(ctx context.Context, doc Document) error {
	if doc.Rev() != "" {
		return &chttp.RequestError{
			Op:  "create",
			Err: errors.Errorf("document %q already has revision %q; use CreateOrUpdate", doc.ID(), doc.Rev()),
		}
	}
	return d.write(ctx, doc, d.db.request().
		WithMethod(http.MethodPost).
		WithJSONBody(doc))
}

// CreateOrUpdate stores doc at its ID, and sets its new revision. If doc has a
// revision, it must be the current one, or the server responds with a
// Conflict. Conflicts are never resolved here.
func (d *Documents) CreateOrUpdate(ctx context.Context, doc Document) error {
	if doc.ID() == "" {
		return missingArg("document ID")
	}
	return d.write(ctx, doc, d.db.request().
		WithMethod(http.MethodPut).
		WithDocument(doc.ID(), doc.Rev()).
		WithJSONBody(doc))
}

// Get fetches the current revision of a document into dest. found is false,
// with a nil error, if the document does not exist.
func (d *Documents) Get(ctx context.Context, id string, dest interface{}) (found bool, err error) {
	return d.Find(ctx, id, "", dest)
}

// GetRev fetches a specific revision of a document into dest. Revisions of
// deleted documents decode as a Tombstone.
func (d *Documents) GetRev(ctx context.Context, id, rev string, dest interface{}) (found bool, err error) {
	if rev == "" {
		return false, missingArg("rev")
	}
	return d.Find(ctx, id, rev, dest)
}

// Find fetches a document into dest, at rev if it is non-empty.
func (d *Documents) Find(ctx context.Context, id, rev string, dest interface{}) (found bool, err error) {
	if id == "" {
		return false, missingArg("document ID")
	}
	err = d.client().doJSON(ctx, d.db.request().WithDocument(id, rev), dest)
	if IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// Exists reports whether the server answers anything but 404 for the given
// document ID.
func (d *Documents) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, missingArg("document ID")
	}
	return d.client().exists(ctx, d.db.request().WithDocument(id, ""))
}

// Rev returns the current revision of a document, read from the ETag of a
// HEAD request.
func (d *Documents) Rev(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", missingArg("document ID")
	}
	resp, err := d.client().do(ctx, d.db.request().
		WithMethod(http.MethodHead).
		WithDocument(id, ""))
	if err != nil {
		return "", err
	}
	return resp.Rev()
}

// Delete deletes doc, and sets its revision to that of the tombstone. If doc
// has no revision, the current one is fetched first; a document that does
// not exist yields NotFound.
func (d *Documents) Delete(ctx context.Context, doc Document) error {
	if doc.ID() == "" {
		return missingArg("document ID")
	}
	rev := doc.Rev()
	if rev == "" {
		var err error
		if rev, err = d.Rev(ctx, doc.ID()); err != nil {
			return err
		}
	}
	return d.write(ctx, doc, d.db.request().
		WithMethod(http.MethodDelete).
		WithDocument(doc.ID(), rev))
}

// Copy copies doc, at its current revision if it has one, to dest. On
// success doc's ID and revision are replaced with those of the copy, so doc
// then refers to the destination document.
func (d *Documents) Copy(ctx context.Context, doc Document, dest CopyDestination) error {
	if doc.ID() == "" {
		return missingArg("document ID")
	}
	if dest.ID == "" {
		return missingArg("destination ID")
	}
	return d.write(ctx, doc, d.db.request().
		WithMethod(chttp.MethodCopy).
		WithDocument(doc.ID(), doc.Rev()).
		WithHeader("Destination", dest.String()))
}
