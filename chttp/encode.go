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

package chttp

import (
	"net/url"
	"strings"
)

const (
	prefixDesign = "_design/"
	prefixLocal  = "_local/"
)

// EncodeDocID escapes a document ID for use as a path segment.
//
// The '_design/' and '_local/' prefixes are kept as-is. The remainder is
// query-escaped, with spaces as %20 rather than '+', since CouchDB would
// otherwise read a literal plus.
func EncodeDocID(docID string) string {
	for _, prefix := range []string{prefixDesign, prefixLocal} {
		if strings.HasPrefix(docID, prefix) {
			return prefix + encodeSegment(strings.TrimPrefix(docID, prefix))
		}
	}
	return encodeSegment(docID)
}

func encodeSegment(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// DesignDocID returns the full ID of the named design document, adding the
// _design/ prefix if it is missing.
func DesignDocID(name string) string {
	return prefixDesign + strings.TrimPrefix(name, prefixDesign)
}
