// Copyright 2026 The Vista Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/vista-vcs/vista/hash"
)

// EncodeTree produces the canonical byte encoding of a Tree, used to derive
// its content address. Entries are already iterated in name order, so the
// encoding is stable regardless of insertion order.
func EncodeTree(t Tree) []byte {
	var buf bytes.Buffer
	buf.WriteString("tree\x00")
	for _, e := range t.Entries() {
		fmt.Fprintf(&buf, "%d %s\x00", e.Kind, e.Name)
		buf.Write(e.ID[:])
	}
	return buf.Bytes()
}

// EncodeCommit produces the canonical byte encoding of a Commit (minus its
// own id, which is derived from this encoding).
func EncodeCommit(c Commit) []byte {
	var buf bytes.Buffer
	buf.WriteString("commit\x00")
	buf.Write(c.TreeID[:])
	var nParents [8]byte
	binary.BigEndian.PutUint64(nParents[:], uint64(len(c.Parents)))
	buf.Write(nParents[:])
	for _, p := range c.Parents {
		buf.Write(p[:])
	}
	fmt.Fprintf(&buf, "%s\x00%s\x00%s\x00%d", c.Metadata.AuthorName, c.Metadata.AuthorEmail, c.Metadata.Message, c.Metadata.UnixSeconds)
	buf.Write(c.Provenance.FilterID[:])
	buf.Write(c.Provenance.SourceID[:])
	return buf.Bytes()
}

// TreeID computes the id a Tree would have without writing it to a store.
func TreeID(t Tree) hash.Hash {
	if t.IsEmpty() {
		return hash.Empty
	}
	return hash.Of(EncodeTree(t))
}

// CommitID computes the id a Commit would have without writing it to a
// store.
func CommitID(c Commit) hash.Hash {
	return hash.Of(EncodeCommit(c))
}
