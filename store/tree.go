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
	"strings"

	"github.com/google/btree"

	"github.com/vista-vcs/vista/hash"
)

const treeDegree = 16

// Tree is an ordered, immutable mapping of name to Entry. It is backed by a
// google/btree.BTreeG, whose Clone is copy-on-write: deriving a new Tree
// from an existing one (the common case in apply/unapply) never mutates the
// original and never pays a full-copy cost up front.
type Tree struct {
	entries *btree.BTreeG[Entry]
}

func less(a, b Entry) bool { return a.Name < b.Name }

// EmptyTree is the canonical empty Tree value.
var EmptyTree = Tree{entries: btree.NewG(treeDegree, less)}

// NewTree builds a Tree from the given entries. Later entries with a
// duplicate name overwrite earlier ones, matching ReplaceOrInsert semantics.
func NewTree(entries ...Entry) Tree {
	t := EmptyTree.entries.Clone()
	for _, e := range entries {
		t.ReplaceOrInsert(e)
	}
	return Tree{entries: t}
}

// IsEmpty reports whether the tree has no entries.
func (t Tree) IsEmpty() bool {
	return t.entries == nil || t.entries.Len() == 0
}

// Len returns the number of direct entries.
func (t Tree) Len() int {
	if t.entries == nil {
		return 0
	}
	return t.entries.Len()
}

// Get looks up a direct child entry by name.
func (t Tree) Get(name string) (Entry, bool) {
	if t.entries == nil {
		return Entry{}, false
	}
	return t.entries.Get(Entry{Name: name})
}

// With returns a new Tree with e inserted or replacing any entry of the
// same name. The receiver is never mutated.
func (t Tree) With(e Entry) Tree {
	base := t.entries
	if base == nil {
		base = EmptyTree.entries
	}
	clone := base.Clone()
	clone.ReplaceOrInsert(e)
	return Tree{entries: clone}
}

// Without returns a new Tree with any entry named name removed.
func (t Tree) Without(name string) Tree {
	if t.entries == nil {
		return t
	}
	clone := t.entries.Clone()
	clone.Delete(Entry{Name: name})
	return Tree{entries: clone}
}

// Entries returns the direct entries in canonical (name-sorted) order.
func (t Tree) Entries() []Entry {
	if t.entries == nil {
		return nil
	}
	out := make([]Entry, 0, t.entries.Len())
	t.entries.Ascend(func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// SplitPath splits a slash-separated path into its components, ignoring
// leading/trailing/duplicate separators.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	raw := strings.Split(path, "/")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinPath is the inverse of SplitPath.
func JoinPath(parts []string) string {
	return strings.Join(parts, "/")
}

// Equal reports whether two trees address the same entries. Callers that
// have Store access and want identity comparison should instead compare
// the ids the trees hash to; Equal is a structural fallback for in-memory
// comparisons such as tests.
func (t Tree) Equal(o Tree) bool {
	a, b := t.Entries(), o.Entries()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
