package futon

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"gitlab.com/flimzy/testy"

	"github.com/go-kivik/futon/chttp"
)

func intPtr(i int) *int { return &i }

func TestDatabaseExists(t *testing.T) {
	tests := []struct {
		name   string
		db     *Database
		exists bool
		status int
		err    string
	}{
		{
			name:   "network error",
			db:     newTestDB(t, nil, errors.New("net error")),
			status: http.StatusBadGateway,
			err:    "net error",
		},
		{
			name:   "not found",
			db:     newTestDB(t, jsonResponse(http.StatusNotFound, ""), nil),
			exists: false,
		},
		{
			name:   "exists",
			db:     newTestDB(t, jsonResponse(http.StatusOK, ""), nil),
			exists: true,
		},
		{
			name:   "unauthorized",
			db:     newTestDB(t, jsonResponse(http.StatusUnauthorized, ""), nil),
			exists: true,
		},
		{
			name:   "server error",
			db:     newTestDB(t, jsonResponse(http.StatusInternalServerError, ""), nil),
			exists: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			exists, err := test.db.Exists(context.Background())
			testy.StatusError(t, test.err, test.status, err)
			if exists != test.exists {
				t.Errorf("Unexpected result: %t", exists)
			}
		})
	}
}

func TestDatabaseCreateRequest(t *testing.T) {
	type tt struct {
		params  DatabaseCreationParams
		wantURL string
		status  int
		err     string
	}

	tests := testy.NewTable()
	tests.Add("defaults", tt{
		wantURL: "http://example.com/testdb?partitioned=false",
	})
	tests.Add("partitioned", tt{
		params:  PartitionedDatabase(),
		wantURL: "http://example.com/testdb?partitioned=true",
	})
	tests.Add("shards and replicas", tt{
		params:  DatabaseCreationParams{Q: intPtr(8), N: intPtr(3)},
		wantURL: "http://example.com/testdb?n=3&partitioned=false&q=8",
	})
	tests.Add("invalid shard count", tt{
		params: DatabaseCreationParams{Q: intPtr(0)},
		status: http.StatusBadRequest,
		err:    `futon: validate: .*'Q' failed on the 'min' tag`,
	})

	tests.Run(t, func(t *testing.T, test tt) {
		c := newCustomClient(t, func(req *chttp.Request) (*chttp.Response, error) {
			if req.Method != http.MethodPut {
				t.Errorf("Unexpected method: %s", req.Method)
			}
			if got := req.URL.String(); got != test.wantURL {
				t.Errorf("Unexpected URL: %s", got)
			}
			if req.Body != nil {
				t.Errorf("Unexpected body: %s", req.Body)
			}
			return jsonResponse(http.StatusCreated, `{"ok":true}`), nil
		})
		db, err := c.DB("testdb")
		if err != nil {
			t.Fatal(err)
		}
		err = db.Create(context.Background(), test.params)
		testy.StatusErrorRE(t, test.err, test.status, err)
	})
}

func TestDatabaseLifecycle(t *testing.T) {
	c, _ := newMockClient(t)
	ctx := context.Background()
	db, err := c.DB("lifecycle")
	if err != nil {
		t.Fatal(err)
	}

	if exists, err := db.Exists(ctx); err != nil || exists {
		t.Fatalf("Unexpected existence before create: %t, %v", exists, err)
	}
	if err := db.Create(ctx, DatabaseCreationParams{Q: intPtr(4)}); err != nil {
		t.Fatal(err)
	}
	if exists, err := db.Exists(ctx); err != nil || !exists {
		t.Fatalf("Unexpected existence after create: %t, %v", exists, err)
	}
	err = db.Create(ctx, DatabaseCreationParams{})
	testy.StatusError(t, "Precondition Failed: The database could not be created, the file already exists.", http.StatusPreconditionFailed, err)
}

func TestDatabaseInfoAgainstMock(t *testing.T) {
	c, _ := newMockClient(t)
	ctx := context.Background()
	db, err := c.DB("info")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Create(ctx, PartitionedDatabase()); err != nil {
		t.Fatal(err)
	}
	info, err := db.Info(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "info" {
		t.Errorf("Unexpected name: %s", info.Name)
	}
	if !info.Props.Partitioned {
		t.Error("expected a partitioned database")
	}
	if info.Cluster == nil || info.Cluster.Q != 2 {
		t.Errorf("Unexpected cluster config: %+v", info.Cluster)
	}
	if err := db.Delete(ctx); err != nil {
		t.Fatal(err)
	}
	_, err = db.Info(ctx)
	if !IsNotFound(err) {
		t.Errorf("Unexpected error after delete: %v", err)
	}
	err = db.Delete(ctx)
	testy.StatusError(t, "Not Found: Database does not exist.", http.StatusNotFound, err)
}

func TestDatabaseInfoDecode(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected *DatabaseInfo
	}{
		{
			name: "string seqs",
			body: `{"db_name":"receipts","update_seq":"13-g1AAAAB","purge_seq":"0-g1AAAAB","doc_count":6,"doc_del_count":1,"disk_format_version":8,"compact_running":false,"instance_start_time":"0","sizes":{"file":16692,"external":1059,"active":5612},"props":{},"cluster":{"q":2,"n":1,"w":1,"r":1}}`,
			expected: &DatabaseInfo{
				Name:              "receipts",
				UpdateSeq:         "13-g1AAAAB",
				PurgeSeq:          "0-g1AAAAB",
				DocCount:          6,
				DeletedCount:      1,
				DiskFormatVersion: 8,
				InstanceStartTime: "0",
				Sizes:             DatabaseSizes{File: 16692, External: 1059, Active: 5612},
				Cluster:           &ClusterConfig{Q: 2, N: 1, W: 1, R: 1},
			},
		},
		{
			name: "numeric seqs",
			body: `{"db_name":"old","update_seq":292786,"purge_seq":0,"doc_count":2}`,
			expected: &DatabaseInfo{
				Name:      "old",
				UpdateSeq: "292786",
				PurgeSeq:  "0",
				DocCount:  2,
			},
		},
		{
			name: "null seqs",
			body: `{"db_name":"fresh","update_seq":null,"purge_seq":null}`,
			expected: &DatabaseInfo{
				Name: "fresh",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			db := newTestDB(t, jsonResponse(http.StatusOK, test.body), nil)
			info, err := db.Info(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if d := testy.DiffInterface(test.expected, info); d != nil {
				t.Error(d)
			}
		})
	}
}

func TestDatabaseAllDocs(t *testing.T) {
	db := newMockDB(t, false)
	ctx := context.Background()
	docs := db.Documents()
	for _, id := range []string{"c", "a", "b"} {
		if err := docs.CreateOrUpdate(ctx, &note{DocID: id, Text: id}); err != nil {
			t.Fatal(err)
		}
	}

	results, err := db.AllDocs(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if results.TotalRows != 3 {
		t.Errorf("Unexpected total: %d", results.TotalRows)
	}
	ids := make([]string, 0, len(results.Rows))
	for _, row := range results.Rows {
		ids = append(ids, row.ID)
		var rev RevInfo
		if err := row.ScanValue(&rev); err != nil {
			t.Fatal(err)
		}
		if rev.Rev == "" {
			t.Errorf("row %s has no rev", row.ID)
		}
	}
	if d := testy.DiffInterface([]string{"a", "b", "c"}, ids); d != nil {
		t.Error(d)
	}

	params := NewViewQueryParameters()
	params.IncludeDocs = true
	params.Descending = true
	params.Limit = intPtr(1)
	params.UpdateSeq = true
	results, err = db.AllDocs(ctx, params)
	if err != nil {
		t.Fatal(err)
	}
	if len(results.Rows) != 1 {
		t.Fatalf("Unexpected rows: %d", len(results.Rows))
	}
	var doc note
	if err := results.Rows[0].ScanDoc(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.DocID != "c" || doc.Text != "c" {
		t.Errorf("Unexpected doc: %+v", doc)
	}
	if results.UpdateSeq == "" {
		t.Error("expected an update seq")
	}
}

func TestDatabaseAllDocsInPartition(t *testing.T) {
	db := newMockDB(t, true)
	ctx := context.Background()
	docs := db.Documents()
	for _, id := range []string{"sensor-a:1", "sensor-a:2", "sensor-b:1"} {
		if err := docs.CreateOrUpdate(ctx, &note{DocID: id}); err != nil {
			t.Fatal(err)
		}
	}
	results, err := db.AllDocsInPartition(ctx, "sensor-a", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results.Rows) != 2 {
		t.Errorf("Unexpected rows: %d", len(results.Rows))
	}

	_, err = db.AllDocsInPartition(ctx, "", nil)
	testy.StatusError(t, "futon: validate: partition required", http.StatusBadRequest, err)
}

func TestDatabaseAllDocsNotPartitioned(t *testing.T) {
	db := newMockDB(t, false)
	_, err := db.AllDocsInPartition(context.Background(), "sensor-a", nil)
	testy.StatusError(t, "Bad Request: database is not partitioned", http.StatusBadRequest, err)
	if kind, _ := chttp.KindOf(err); kind != chttp.KindUnknownBadRequest {
		t.Errorf("Unexpected kind: %s", kind)
	}
}

func TestDatabaseAllDocsRequest(t *testing.T) {
	db := newTestDB(t, nil, nil)
	db.client.transport = chttp.TransportFunc(func(_ context.Context, req *chttp.Request) (*chttp.Response, error) {
		if req.Method != http.MethodPost {
			t.Errorf("Unexpected method: %s", req.Method)
		}
		if req.URL.Path != "/testdb/_all_docs" {
			t.Errorf("Unexpected path: %s", req.URL.Path)
		}
		var body map[string]interface{}
		if err := json.Unmarshal(req.Body, &body); err != nil {
			t.Fatal(err)
		}
		if body["sorted"] != true || body["update"] != "true" || body["stable"] != false {
			t.Errorf("Unexpected defaults: %v", body)
		}
		if _, ok := body["limit"]; ok {
			t.Error("unset limit was sent")
		}
		return jsonResponse(http.StatusOK, `{"total_rows":0,"offset":0,"rows":[]}`), nil
	})
	if _, err := db.AllDocs(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
}

func TestViewRowScan(t *testing.T) {
	row := ViewRow{ID: "foo", Key: json.RawMessage(`["a",1]`), Value: json.RawMessage(`{"rev":"1-x"}`)}
	var key []interface{}
	if err := row.ScanKey(&key); err != nil {
		t.Fatal(err)
	}
	if d := testy.DiffInterface([]interface{}{"a", float64(1)}, key); d != nil {
		t.Error(d)
	}
	testy.Error(t, `row "foo" has no document`, row.ScanDoc(&struct{}{}))
}

func TestViewRowScanBadValue(t *testing.T) {
	row := ViewRow{ID: "foo", Value: json.RawMessage(`"string"`)}
	var rev RevInfo
	err := row.ScanValue(&rev)
	testy.Error(t, "scan value: json: cannot unmarshal string into Go value of type futon.RevInfo", err)
}
