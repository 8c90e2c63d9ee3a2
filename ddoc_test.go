package futon

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"gitlab.com/flimzy/testy"

	"github.com/go-kivik/futon/chttp"
)

func TestParseQueryServer(t *testing.T) {
	tests := map[string]QueryServer{
		"":           JavaScript,
		"javascript": JavaScript,
		"JavaScript": JavaScript,
		" erlang ":   Erlang,
		"python":     QueryServer("python"),
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			if got := ParseQueryServer(input); got != want {
				t.Errorf("Unexpected query server: %s", got)
			}
		})
	}
}

func TestDesignDocumentJSON(t *testing.T) {
	ddoc := NewDesignDocument("stats", "")
	ddoc.Views = map[string]ViewDefinition{
		"by_value": {Map: "function(doc) { emit(doc.value, null); }", Reduce: "_count"},
	}
	data, err := json.Marshal(ddoc)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"_id":"_design/stats","language":"javascript","views":{"by_value":{"map":"function(doc) { emit(doc.value, null); }","reduce":"_count"}}}`
	if d := testy.DiffJSON([]byte(want), data); d != nil {
		t.Error(d)
	}

	var decoded DesignDocument
	if err := json.Unmarshal([]byte(`{"_id":"_design/x","_rev":"1-a","language":"Erlang"}`), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Language != Erlang {
		t.Errorf("Unexpected language: %s", decoded.Language)
	}
	if decoded.Name() != "x" {
		t.Errorf("Unexpected name: %s", decoded.Name())
	}
}

func TestNewDesignDocumentPrefix(t *testing.T) {
	for _, name := range []string{"foo", "_design/foo"} {
		if id := NewDesignDocument(name, Erlang).ID(); id != "_design/foo" {
			t.Errorf("Unexpected ID for %s: %s", name, id)
		}
	}
}

func TestDesignDocuments(t *testing.T) {
	db := newMockDB(t, false)
	ctx := context.Background()
	ddocs := db.DesignDocs("")

	got, err := ddocs.Get(ctx, "stats")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("Unexpected design document: %+v", got)
	}

	ddoc := NewDesignDocument("stats", JavaScript)
	ddoc.Views = map[string]ViewDefinition{
		"all": {Map: "function(doc) { emit(doc._id, null); }"},
	}
	if err := ddocs.Create(ctx, ddoc); err != nil {
		t.Fatal(err)
	}
	if ddoc.Rev() == "" {
		t.Fatal("rev not set")
	}

	got, err = ddocs.Get(ctx, "stats")
	if err != nil {
		t.Fatal(err)
	}
	if d := testy.DiffInterface(ddoc, got); d != nil {
		t.Error(d)
	}

	ddoc.Views["other"] = ViewDefinition{Map: "function(doc) {}"}
	if err := ddocs.CreateOrUpdate(ctx, ddoc); err != nil {
		t.Fatal(err)
	}

	docs := db.Documents()
	for _, id := range []string{"b", "a"} {
		if err := docs.CreateOrUpdate(ctx, &note{DocID: id, Text: id}); err != nil {
			t.Fatal(err)
		}
	}

	results, err := ddocs.ExecuteView(ctx, "stats", "all", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results.Rows) != 2 {
		t.Fatalf("Unexpected rows: %d", len(results.Rows))
	}
	var key string
	if err := results.Rows[0].ScanKey(&key); err != nil {
		t.Fatal(err)
	}
	if key != "a" {
		t.Errorf("Unexpected first key: %s", key)
	}

	_, err = ddocs.ExecuteView(ctx, "stats", "nope", nil)
	testy.StatusError(t, "Not Found: missing_named_view", http.StatusNotFound, err)

	_, err = ddocs.ExecuteView(ctx, "", "all", nil)
	testy.StatusError(t, "futon: validate: design document required", http.StatusBadRequest, err)

	_, err = ddocs.ExecuteView(ctx, "stats", "", nil)
	testy.StatusError(t, "futon: validate: view required", http.StatusBadRequest, err)

	_, err = ddocs.ExecuteBuiltinView(ctx, "", nil)
	testy.StatusError(t, "futon: validate: view required", http.StatusBadRequest, err)
}

func TestDesignDocumentsPartitionedView(t *testing.T) {
	db := newMockDB(t, true)
	ctx := context.Background()
	ddoc := NewDesignDocument("sensors", JavaScript)
	ddoc.Views = map[string]ViewDefinition{
		"readings": {Map: "function(doc) { emit(doc._id, null); }"},
	}
	if err := db.DesignDocs("").Create(ctx, ddoc); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"sensor-a:1", "sensor-b:1", "sensor-b:2"} {
		if err := db.Documents().CreateOrUpdate(ctx, &note{DocID: id}); err != nil {
			t.Fatal(err)
		}
	}
	results, err := db.DesignDocs("sensor-b").ExecuteView(ctx, "_design/sensors", "readings", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results.Rows) != 2 {
		t.Errorf("Unexpected rows: %d", len(results.Rows))
	}
}

func TestExecuteViewRequest(t *testing.T) {
	c := newCustomClient(t, func(req *chttp.Request) (*chttp.Response, error) {
		if req.Method != http.MethodPost {
			t.Errorf("Unexpected method: %s", req.Method)
		}
		if got := req.URL.Path; got != "/testdb/_partition/p1/_design/foo/_view/bar" {
			t.Errorf("Unexpected path: %s", got)
		}
		if got := req.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Unexpected Content-Type: %s", got)
		}
		var body map[string]interface{}
		if err := json.Unmarshal(req.Body, &body); err != nil {
			t.Fatal(err)
		}
		if body["key"] != "k" || body["update"] != "lazy" {
			t.Errorf("Unexpected body: %s", req.Body)
		}
		return jsonResponse(http.StatusOK, `{"total_rows":1,"offset":0,"update_seq":42,"rows":[{"id":"p1:x","key":"k","value":1}]}`), nil
	})
	db, err := c.DB("testdb")
	if err != nil {
		t.Fatal(err)
	}
	params := NewViewQueryParameters()
	params.Key = "k"
	params.Update = UpdateLazy
	results, err := db.DesignDocs("p1").ExecuteView(context.Background(), "foo", "bar", params)
	if err != nil {
		t.Fatal(err)
	}
	if results.UpdateSeq != "42" {
		t.Errorf("Unexpected update seq: %s", results.UpdateSeq)
	}
	var value int
	if err := results.Rows[0].ScanValue(&value); err != nil {
		t.Fatal(err)
	}
	if value != 1 {
		t.Errorf("Unexpected value: %d", value)
	}
}

func TestExecuteViewInvalidParams(t *testing.T) {
	db := newTestDB(t, nil, nil)
	params := NewViewQueryParameters()
	params.Update = "sometimes"
	_, err := db.DesignDocs("").ExecuteView(context.Background(), "foo", "bar", params)
	testy.StatusErrorRE(t, `futon: validate: .*'Update' failed on the 'oneof' tag`, http.StatusBadRequest, err)
}
