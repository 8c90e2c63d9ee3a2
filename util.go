package futon

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/go-kivik/futon/chttp"
)

// RawDocument is a Document for schemaless content, keyed by JSON field.
type RawDocument map[string]interface{}

var _ Document = RawDocument{}

// ParseRawDocument unmarshals a JSON object. Invalid JSON is a
// *chttp.RequestError, as it can never be sent.
func ParseRawDocument(data []byte) (RawDocument, error) {
	doc := RawDocument{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, &chttp.RequestError{Op: "parse document", Err: errors.Wrap(err, "invalid JSON object")}
	}
	return doc, nil
}

// ID returns the _id field.
func (d RawDocument) ID() string {
	id, _ := d["_id"].(string)
	return id
}

// Rev returns the _rev field.
func (d RawDocument) Rev() string {
	rev, _ := d["_rev"].(string)
	return rev
}

// SetID sets the _id field.
func (d RawDocument) SetID(id string) {
	d["_id"] = id
}

// SetRev sets the _rev field.
func (d RawDocument) SetRev(rev string) {
	d["_rev"] = rev
}
