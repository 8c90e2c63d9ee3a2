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

package mock

import (
	"fmt"
	"sort"
	"time"
)

type revision struct {
	body    map[string]interface{}
	deleted bool
}

type document struct {
	current string
	revs    map[string]revision
}

type database struct {
	name        string
	partitioned bool
	q, n        int
	seq         int
	created     time.Time
	docs        map[string]*document
}

func newDatabase(name string, partitioned bool) *database {
	return &database{
		name:        name,
		partitioned: partitioned,
		q:           2,
		n:           1,
		created:     time.Now(),
		docs:        map[string]*document{},
	}
}

// put writes a new revision of id. rev must match the current revision of a
// live document, and must be empty for a new or deleted one. ok is false on
// a conflict.
func (db *database) put(id, rev string, body map[string]interface{}, deleted bool) (newRev string, ok bool) {
	doc, exists := db.docs[id]
	live := exists && !doc.revs[doc.current].deleted
	switch {
	case live && rev != doc.current:
		return "", false
	case !live && rev != "" && (!exists || rev != doc.current):
		return "", false
	}
	if !exists {
		doc = &document{revs: map[string]revision{}}
		db.docs[id] = doc
	}
	prev := ""
	if exists {
		prev = doc.current
	}
	newRev = nextRev(prev, body, deleted)
	stored := map[string]interface{}{}
	for k, v := range body {
		stored[k] = v
	}
	stored["_id"] = id
	stored["_rev"] = newRev
	if deleted {
		stored = map[string]interface{}{"_id": id, "_rev": newRev, "_deleted": true}
	}
	doc.revs[newRev] = revision{body: stored, deleted: deleted}
	doc.current = newRev
	db.seq++
	return newRev, true
}

// get returns the body at rev, or the current live revision when rev is
// empty. Deleted documents are found only by explicit rev.
func (db *database) get(id, rev string) (map[string]interface{}, string, bool) {
	doc, ok := db.docs[id]
	if !ok {
		return nil, "", false
	}
	if rev == "" {
		r := doc.revs[doc.current]
		if r.deleted {
			return nil, "", false
		}
		return r.body, doc.current, true
	}
	r, ok := doc.revs[rev]
	if !ok {
		return nil, "", false
	}
	return r.body, rev, true
}

func (db *database) ids() []string {
	ids := make([]string, 0, len(db.docs))
	for id := range db.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (db *database) updateSeq() string {
	return fmt.Sprintf("%d-g1AAAAB", db.seq)
}

func (db *database) info() map[string]interface{} {
	var live, deleted int
	for _, doc := range db.docs {
		if doc.revs[doc.current].deleted {
			deleted++
		} else {
			live++
		}
	}
	return map[string]interface{}{
		"db_name":             db.name,
		"update_seq":          db.updateSeq(),
		"purge_seq":           "0-g1AAAAB",
		"doc_count":           live,
		"doc_del_count":       deleted,
		"disk_format_version": 8,
		"compact_running":     false,
		"instance_start_time": "0",
		"sizes": map[string]int{
			"file":     16692,
			"external": 0,
			"active":   0,
		},
		"props": map[string]interface{}{
			"partitioned": db.partitioned,
		},
		"cluster": map[string]int{
			"q": db.q,
			"n": db.n,
			"w": 1,
			"r": 1,
		},
	}
}
