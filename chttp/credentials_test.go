package chttp

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCredentialsHeader(t *testing.T) {
	tests := []struct {
		name      string
		creds     Credentials
		wantName  string
		wantValue string
		wantOK    bool
	}{
		{
			name:  "none",
			creds: NoCredentials(),
		},
		{
			name:  "zero value",
			creds: Credentials{},
		},
		{
			name:      "basic",
			creds:     BasicAuth("hello", "world"),
			wantName:  "Authorization",
			wantValue: "Basic aGVsbG86d29ybGQ=",
			wantOK:    true,
		},
		{
			name:      "empty password",
			creds:     BasicAuth("admin", ""),
			wantName:  "Authorization",
			wantValue: "Basic YWRtaW46",
			wantOK:    true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			name, value, ok := test.creds.Header()
			if ok != test.wantOK {
				t.Errorf("Unexpected ok: %t", ok)
			}
			if name != test.wantName {
				t.Errorf("Unexpected name: %s", name)
			}
			if value != test.wantValue {
				t.Errorf("Unexpected value: %s", value)
			}
		})
	}
}

func TestCredentialsRedacted(t *testing.T) {
	creds := BasicAuth("hello", "s3cr3t")
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, nil))
	logger.Info("test", "creds", creds)
	for _, rendered := range []string{
		creds.String(),
		fmt.Sprintf("%v", creds),
		fmt.Sprintf("%+v", creds),
		fmt.Sprintf("%#v", creds),
		buf.String(),
	} {
		if strings.Contains(rendered, "s3cr3t") {
			t.Errorf("secret leaked: %s", rendered)
		}
		if !strings.Contains(rendered, "[REDACTED]") {
			t.Errorf("no redaction marker: %s", rendered)
		}
	}
	if NoCredentials().String() != "None" {
		t.Errorf("Unexpected rendering: %s", NoCredentials())
	}
}
