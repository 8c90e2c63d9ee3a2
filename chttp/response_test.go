package chttp

import (
	"net/http"
	"testing"

	"gitlab.com/flimzy/testy"
)

func TestResponseRev(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
		rev  string
		err  string
	}{
		{
			name: "etag",
			resp: &Response{Header: http.Header{"Etag": {`"1-xxx"`}}},
			rev:  "1-xxx",
		},
		{
			name: "non-canonical etag",
			resp: &Response{Header: http.Header{"ETag": {`"2-yyy"`}}},
			rev:  "2-yyy",
		},
		{
			name: "body",
			resp: &Response{Header: http.Header{}, Body: []byte(`{"_id":"foo","_rev":"3-zzz"}`)},
			rev:  "3-zzz",
		},
		{
			name: "no etag, no body",
			resp: &Response{Header: http.Header{}},
			err:  "malformed response body: unable to determine document revision",
		},
		{
			name: "body without rev",
			resp: &Response{Header: http.Header{}, Body: []byte(`{"_id":"foo"}`)},
			err:  "malformed response body: unable to determine document revision",
		},
		{
			name: "malformed body",
			resp: &Response{Header: http.Header{}, Body: []byte(`{"_id":`)},
			err:  "malformed response body: unable to determine document revision: unexpected end of JSON input",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rev, err := test.resp.Rev()
			testy.Error(t, test.err, err)
			if rev != test.rev {
				t.Errorf("Unexpected rev: %s", rev)
			}
		})
	}
}

func TestResponseDecodeJSON(t *testing.T) {
	resp := &Response{Body: []byte(`{"ok":true}`)}
	var result struct {
		OK bool `json:"ok"`
	}
	if err := resp.DecodeJSON(&result); err != nil {
		t.Fatal(err)
	}
	if !result.OK {
		t.Error("expected ok")
	}
	err := (&Response{Body: []byte("<html>")}).DecodeJSON(&result)
	testy.Error(t, "malformed response body: invalid character '<' looking for beginning of value", err)
}

func TestResponseETagNil(t *testing.T) {
	var resp *Response
	if _, ok := resp.ETag(); ok {
		t.Error("nil response reported an ETag")
	}
}
