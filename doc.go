/*
Package futon is a typed client for CouchDB and compatible HTTP document
databases.

Documents

Any type implementing Document can be stored. Every successful mutation
(Create, CreateOrUpdate, Delete and Copy) writes the revision returned by the
server back onto the document, so the same value can be passed straight to
the next write:

    doc := &Note{DocID: "n1", Text: "hello"}
    err := db.Documents().CreateOrUpdate(ctx, doc)
    // doc.Rev() is now "1-..."
    doc.Text = "hello, world"
    err = db.Documents().CreateOrUpdate(ctx, doc)

Create never sends a revision; a document that already has one is rejected
before any request is made. Delete without a revision removes the current one.

Authentication

Credentials may be included in the URL passed to New, or given explicitly:

    client, _ := futon.New("http://localhost:5984/",
        futon.WithCredentials(chttp.BasicAuth("bob", "abc123")))

Credentials are sent as HTTP Basic authentication on every request, and are
redacted whenever a request is printed or logged.

Errors

Server errors are returned as *chttp.HTTPError, classified by Kind. IsNotFound,
IsConflict and IsUnauthorized test for the common kinds. Every error returned
by this package reports an HTTP-style status with HTTPStatus.
*/
package futon
