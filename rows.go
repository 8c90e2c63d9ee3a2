package futon

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ViewResults is the decoded result of a view query.
type ViewResults struct {
	Offset    int64     `json:"offset"`
	TotalRows int64     `json:"total_rows"`
	UpdateSeq string    `json:"update_seq,omitempty"`
	Rows      []ViewRow `json:"rows"`
}

// UnmarshalJSON accepts update_seq as a string or a number.
func (r *ViewResults) UnmarshalJSON(data []byte) error {
	type alias ViewResults
	result := struct {
		*alias
		UpdateSeq json.RawMessage `json:"update_seq"`
	}{
		alias: (*alias)(r),
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}
	r.UpdateSeq = seqString(result.UpdateSeq)
	return nil
}

// ViewRow is a single row of a view result. Key, Value and Doc are left
// undecoded; use the Scan methods to decode them.
type ViewRow struct {
	ID    string          `json:"id,omitempty"`
	Key   json.RawMessage `json:"key"`
	Value json.RawMessage `json:"value,omitempty"`
	Doc   json.RawMessage `json:"doc,omitempty"`
	// Error is set for rows requested by key that do not exist.
	Error string `json:"error,omitempty"`
}

// RevInfo is the value of an _all_docs row.
type RevInfo struct {
	Rev     string `json:"rev"`
	Deleted bool   `json:"deleted,omitempty"`
}

// ScanKey decodes the row key into dest.
func (r *ViewRow) ScanKey(dest interface{}) error {
	return scan(r.Key, dest, "key")
}

// ScanValue decodes the row value into dest.
func (r *ViewRow) ScanValue(dest interface{}) error {
	return scan(r.Value, dest, "value")
}

// ScanDoc decodes the included document into dest. The query must have set
// IncludeDocs.
func (r *ViewRow) ScanDoc(dest interface{}) error {
	if len(r.Doc) == 0 || string(r.Doc) == "null" {
		return errors.Errorf("row %q has no document", r.ID)
	}
	return scan(r.Doc, dest, "doc")
}

func scan(raw json.RawMessage, dest interface{}, field string) error {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	return errors.Wrapf(json.Unmarshal(raw, dest), "scan %s", field)
}
