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

// Package mock provides an in-memory server speaking enough of the CouchDB
// HTTP API to exercise the client end to end.
package mock

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const methodCopy = "COPY"

func init() {
	chi.RegisterMethod(methodCopy)
}

var validDBName = regexp.MustCompile(`^[a-z][a-z0-9_$()+/-]*$`)

// Server is an in-memory CouchDB look-alike. The zero value is not usable;
// create one with New.
type Server struct {
	mu       sync.Mutex
	dbs      map[string]*database
	username string
	password string
	uuid     string
	router   chi.Router
}

var _ http.Handler = &Server{}

// Option configures a Server.
type Option func(*Server)

// WithBasicAuth requires every request to carry these credentials.
func WithBasicAuth(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// New returns a new, empty server.
func New(opts ...Option) *Server {
	s := &Server{
		dbs:  map[string]*database{},
		uuid: strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	for _, opt := range opts {
		opt(s)
	}
	r := chi.NewRouter()
	r.Use(s.authenticate)
	r.Get("/", s.serverInfo)
	r.Head("/_up", s.up)
	r.Get("/_up", s.up)
	r.Route("/{db}", func(r chi.Router) {
		r.Put("/", s.createDB)
		r.Get("/", s.dbInfo)
		r.Head("/", s.dbExists)
		r.Delete("/", s.deleteDB)
		r.Post("/", s.postDoc)
		r.Post("/_all_docs", s.allDocs)
		r.Route("/_partition/{partition}", func(r chi.Router) {
			r.Post("/_all_docs", s.allDocs)
			r.Post("/_design/{ddoc}/_view/{view}", s.view)
		})
		r.Route("/_design/{ddoc}", func(r chi.Router) {
			s.docRoutes(r)
			r.Post("/_view/{view}", s.view)
		})
		r.Route("/{docid}", s.docRoutes)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "missing")
	})
	s.router = r
	return s
}

func (s *Server) docRoutes(r chi.Router) {
	r.Put("/", s.putDoc)
	r.Get("/", s.getDoc)
	r.Head("/", s.getDoc)
	r.Delete("/", s.deleteDoc)
	r.MethodFunc(methodCopy, "/", s.copyDoc)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// CreateDB creates a database directly, bypassing HTTP.
func (s *Server) CreateDB(name string, partitioned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbs[name] = newDatabase(name, partitioned)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.username != "" {
			user, pass, ok := r.BasicAuth()
			if !ok || user != s.username || pass != s.password {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Name or password is incorrect.")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) serverInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"couchdb":  "Welcome",
		"version":  "3.3.3",
		"git_sha":  "40afbcfc7",
		"uuid":     s.uuid,
		"features": []string{"access-ready", "partitioned", "pluggable-storage-engines", "reshard", "scheduler"},
		"vendor":   map[string]string{"name": "The Apache Software Foundation"},
	})
}

func (s *Server) up(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func param(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func docID(r *http.Request) string {
	if ddoc := chi.URLParam(r, "ddoc"); ddoc != "" {
		return "_design/" + param(r, "ddoc")
	}
	return param(r, "docid")
}

// lookupDB returns the named database, writing a 404 if it does not exist.
// The caller must hold s.mu.
func (s *Server) lookupDB(w http.ResponseWriter, r *http.Request) *database {
	db, ok := s.dbs[param(r, "db")]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "Database does not exist.")
		return nil
	}
	return db
}

func (s *Server) createDB(w http.ResponseWriter, r *http.Request) {
	name := param(r, "db")
	if !validDBName.MatchString(name) {
		writeError(w, http.StatusBadRequest, "illegal_database_name",
			fmt.Sprintf("Name: '%s'. Only lowercase characters (a-z), digits (0-9), and any of the characters _, $, (, ), +, -, and / are allowed. Must begin with a letter.", name))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dbs[name]; ok {
		writeError(w, http.StatusPreconditionFailed, "file_exists", "The database could not be created, the file already exists.")
		return
	}
	db := newDatabase(name, r.URL.Query().Get("partitioned") == "true")
	if q := r.URL.Query().Get("q"); q != "" {
		_, _ = fmt.Sscan(q, &db.q)
	}
	if n := r.URL.Query().Get("n"); n != "" {
		_, _ = fmt.Sscan(n, &db.n)
	}
	s.dbs[name] = db
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (s *Server) dbInfo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db := s.lookupDB(w, r)
	if db == nil {
		return
	}
	writeJSON(w, http.StatusOK, db.info())
}

func (s *Server) dbExists(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if db := s.lookupDB(w, r); db != nil {
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) deleteDB(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if db := s.lookupDB(w, r); db == nil {
		return
	}
	delete(s.dbs, param(r, "db"))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func readDoc(r *http.Request) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Server) postDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := readDoc(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid UTF-8 JSON")
		return
	}
	id, _ := doc["_id"].(string)
	if id == "" {
		id = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	rev, _ := doc["_rev"].(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	db := s.lookupDB(w, r)
	if db == nil {
		return
	}
	s.write(w, db, id, rev, doc)
}

func (s *Server) putDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := readDoc(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid UTF-8 JSON")
		return
	}
	rev := r.URL.Query().Get("rev")
	if rev == "" {
		rev, _ = doc["_rev"].(string)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	db := s.lookupDB(w, r)
	if db == nil {
		return
	}
	s.write(w, db, docID(r), rev, doc)
}

// write stores body as the next revision of id. The caller must hold s.mu.
func (s *Server) write(w http.ResponseWriter, db *database, id, rev string, body map[string]interface{}) {
	if rev != "" && !validRev(rev) {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid rev format")
		return
	}
	if db.partitioned && !strings.HasPrefix(id, "_design/") && !strings.Contains(id, ":") {
		writeError(w, http.StatusBadRequest, "illegal_docid", "Doc id must be of form partition:id")
		return
	}
	newRev, ok := db.put(id, rev, body, false)
	if !ok {
		writeError(w, http.StatusConflict, "conflict", "Document update conflict.")
		return
	}
	w.Header().Set("ETag", `"`+newRev+`"`)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "id": id, "rev": newRev})
}

func (s *Server) getDoc(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db := s.lookupDB(w, r)
	if db == nil {
		return
	}
	id := docID(r)
	rev := r.URL.Query().Get("rev")
	if rev != "" && !validRev(rev) {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid rev format")
		return
	}
	body, rev, found := db.get(id, rev)
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "missing")
		return
	}
	w.Header().Set("ETag", `"`+rev+`"`)
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) deleteDoc(w http.ResponseWriter, r *http.Request) {
	rev := r.URL.Query().Get("rev")
	s.mu.Lock()
	defer s.mu.Unlock()
	db := s.lookupDB(w, r)
	if db == nil {
		return
	}
	id := docID(r)
	if _, _, found := db.get(id, ""); !found {
		writeError(w, http.StatusNotFound, "not_found", "missing")
		return
	}
	if rev != "" && !validRev(rev) {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid rev format")
		return
	}
	newRev, ok := db.put(id, rev, map[string]interface{}{}, true)
	if !ok {
		writeError(w, http.StatusConflict, "conflict", "Document update conflict.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "id": id, "rev": newRev})
}

func (s *Server) copyDoc(w http.ResponseWriter, r *http.Request) {
	dest := r.Header.Get("Destination")
	if dest == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "Destination header is mandatory for COPY.")
		return
	}
	destID, destRev := dest, ""
	if i := strings.Index(dest, "?"); i >= 0 {
		destID = dest[:i]
		q, _ := url.ParseQuery(dest[i+1:])
		destRev = q.Get("rev")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	db := s.lookupDB(w, r)
	if db == nil {
		return
	}
	body, _, found := db.get(docID(r), r.URL.Query().Get("rev"))
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "missing")
		return
	}
	newRev, ok := db.put(destID, destRev, body, false)
	if !ok {
		writeError(w, http.StatusConflict, "conflict", "Document update conflict.")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "id": destID, "rev": newRev})
}

type viewParams struct {
	Descending  bool     `json:"descending"`
	IncludeDocs bool     `json:"include_docs"`
	Keys        []string `json:"keys"`
	Limit       *int     `json:"limit"`
	Skip        int      `json:"skip"`
	UpdateSeq   bool     `json:"update_seq"`
}

func (s *Server) allDocs(w http.ResponseWriter, r *http.Request) {
	s.query(w, r, func(id string, rev string, _ map[string]interface{}) (interface{}, interface{}) {
		return id, map[string]string{"rev": rev}
	})
}

// view runs a design document view. Map functions are not evaluated; every
// non-design document is emitted with its ID as key and a null value.
func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	db := s.lookupDB(w, r)
	if db == nil {
		s.mu.Unlock()
		return
	}
	ddoc, _, found := db.get("_design/"+param(r, "ddoc"), "")
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "missing")
		return
	}
	views, _ := ddoc["views"].(map[string]interface{})
	if _, ok := views[param(r, "view")]; !ok {
		writeError(w, http.StatusNotFound, "not_found", "missing_named_view")
		return
	}
	s.query(w, r, func(id string, _ string, _ map[string]interface{}) (interface{}, interface{}) {
		if strings.HasPrefix(id, "_design/") {
			return nil, nil
		}
		return id, nil
	})
}

type emitFunc func(id, rev string, doc map[string]interface{}) (key, value interface{})

func (s *Server) query(w http.ResponseWriter, r *http.Request, emit emitFunc) {
	var params viewParams
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid UTF-8 JSON")
			return
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	db := s.lookupDB(w, r)
	if db == nil {
		return
	}
	partition := param(r, "partition")
	if partition != "" && !db.partitioned {
		writeError(w, http.StatusBadRequest, "bad_request", "database is not partitioned")
		return
	}
	ids := params.Keys
	if ids == nil {
		ids = db.ids()
	}
	if params.Descending {
		sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	}
	rows := []map[string]interface{}{}
	for _, id := range ids {
		if partition != "" && !strings.HasPrefix(id, partition+":") {
			continue
		}
		body, rev, found := db.get(id, "")
		if !found {
			continue
		}
		key, value := emit(id, rev, body)
		if key == nil {
			continue
		}
		row := map[string]interface{}{"id": id, "key": key, "value": value}
		if params.IncludeDocs {
			row["doc"] = body
		}
		rows = append(rows, row)
	}
	total := len(rows)
	if params.Skip > len(rows) {
		params.Skip = len(rows)
	}
	rows = rows[params.Skip:]
	if params.Limit != nil && *params.Limit < len(rows) {
		rows = rows[:*params.Limit]
	}
	result := map[string]interface{}{
		"offset":     params.Skip,
		"total_rows": total,
		"rows":       rows,
	}
	if params.UpdateSeq {
		result["update_seq"] = db.updateSeq()
	}
	writeJSON(w, http.StatusOK, result)
}

func validRev(rev string) bool {
	var gen int
	parts := strings.SplitN(rev, "-", 2)
	if len(parts) != 2 || parts[1] == "" {
		return false
	}
	_, err := fmt.Sscanf(parts[0], "%d", &gen)
	return err == nil && gen > 0
}

// nextRev derives the next revision from the previous one and the content,
// so identical writes on identical history yield identical revisions.
func nextRev(prev string, body map[string]interface{}, deleted bool) string {
	gen := 0
	if prev != "" {
		_, _ = fmt.Sscanf(prev, "%d-", &gen)
	}
	content := map[string]interface{}{}
	for k, v := range body {
		if k != "_id" && k != "_rev" {
			content[k] = v
		}
	}
	data, _ := json.Marshal(content)
	sum := md5.Sum(append([]byte(fmt.Sprintf("%s:%t:", prev, deleted)), data...))
	return fmt.Sprintf("%d-%s", gen+1, hex.EncodeToString(sum[:]))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, reason string) {
	writeJSON(w, status, map[string]string{"error": code, "reason": reason})
}
