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

// Package test runs the client against a real CouchDB server.
package test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DSNEnv names the environment variable holding the URL of an existing
// server, including admin credentials.
const DSNEnv = "FUTON_TEST_DSN"

const image = "couchdb:3.3"

var (
	startOnce sync.Once
	sharedDSN string
	startErr  error
)

// DSN returns the URL of a server to test against. FUTON_TEST_DSN wins;
// otherwise, when USETC is set, a CouchDB container is started and shared by
// every test in the package. The test is skipped if neither is set.
func DSN(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv(DSNEnv); dsn != "" {
		return dsn
	}
	if os.Getenv("USETC") == "" {
		t.Skip(DSNEnv + " and USETC not set, skipping live tests")
	}
	startOnce.Do(func() {
		sharedDSN, startErr = startCouchDB(context.Background())
	})
	if startErr != nil {
		t.Fatal(startErr)
	}
	return sharedDSN
}

func startCouchDB(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{"5984/tcp"},
		WaitingFor:   wait.ForHTTP("/").WithPort("5984/tcp").WithStartupTimeout(120 * time.Second),
		Env: map[string]string{
			"COUCHDB_USER":     "admin",
			"COUCHDB_PASSWORD": "abc123",
		},
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", err
	}
	ip, err := container.Host(ctx)
	if err != nil {
		return "", err
	}
	mappedPort, err := container.MappedPort(ctx, "5984/tcp")
	if err != nil {
		return "", err
	}
	dsn := fmt.Sprintf("http://admin:abc123@%s:%s", ip, mappedPort.Port())
	for _, db := range []string{"_users", "_replicator"} {
		if err := put(ctx, dsn+"/"+db, nil); err != nil {
			return "", err
		}
	}
	return dsn, nil
}

func put(ctx context.Context, path string, body io.Reader) error {
	rq, err := http.NewRequestWithContext(ctx, http.MethodPut, path, body)
	if err != nil {
		return err
	}
	rq.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(rq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusPreconditionFailed:
		return nil
	}
	return errors.Errorf("failed to create %s: %s", path, resp.Status)
}

// DBName returns a database name unique to this run.
func DBName(t *testing.T) string {
	t.Helper()
	return "futon_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
