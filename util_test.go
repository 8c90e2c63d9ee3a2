package futon

import (
	"encoding/json"
	"net/http"
	"testing"

	"gitlab.com/flimzy/testy"
)

func TestParseRawDocument(t *testing.T) {
	type tt struct {
		input  string
		id     string
		rev    string
		status int
		err    string
	}

	tests := testy.NewTable()
	tests.Add("full", tt{
		input: `{"_id":"foo","_rev":"1-abc","n":12345678901234567890}`,
		id:    "foo",
		rev:   "1-abc",
	})
	tests.Add("no id", tt{
		input: `{"foo":"bar"}`,
	})
	tests.Add("invalid JSON", tt{
		input:  `{"foo":`,
		status: http.StatusBadRequest,
		err:    "futon: parse document: invalid JSON object: unexpected EOF",
	})
	tests.Add("not an object", tt{
		input:  `[1,2,3]`,
		status: http.StatusBadRequest,
		err:    "futon: parse document: invalid JSON object: json: cannot unmarshal array into Go value of type futon.RawDocument",
	})

	tests.Run(t, func(t *testing.T, test tt) {
		doc, err := ParseRawDocument([]byte(test.input))
		testy.StatusError(t, test.err, test.status, err)
		if doc.ID() != test.id {
			t.Errorf("Unexpected ID: %s", doc.ID())
		}
		if doc.Rev() != test.rev {
			t.Errorf("Unexpected rev: %s", doc.Rev())
		}
	})
}

func TestRawDocumentKeepsNumbers(t *testing.T) {
	doc, err := ParseRawDocument([]byte(`{"n":12345678901234567890}`))
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"n":12345678901234567890}` {
		t.Errorf("Unexpected JSON: %s", data)
	}
}

func TestRawDocumentSetters(t *testing.T) {
	doc := RawDocument{}
	doc.SetID("foo")
	doc.SetRev("2-xyz")
	if d := testy.DiffInterface(RawDocument{"_id": "foo", "_rev": "2-xyz"}, doc); d != nil {
		t.Error(d)
	}
}
