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

package treeengine

import (
	"context"

	"github.com/vista-vcs/vista/hash"
	"github.com/vista-vcs/vista/store"
)

// dirMarkerName is the synthetic blob Dirtree leaves in every non-empty
// directory of its output, since a pure directory-index tree would
// otherwise have no way to represent "this directory exists but all its
// children are blobs".
const dirMarkerName = ".dir"

var dirMarkerContent = []byte{}

// resolveSubtree follows entry to the Tree it addresses, reading through
// Store. A KindBlob or KindGitLink entry, or the empty id, resolves to
// EmptyTree: callers that meant to descend into a real subtree get "nothing
// there" instead of a type error, matching apply's total-function contract.
func (e *Engine) resolveSubtree(ctx context.Context, entry store.Entry) (store.Tree, error) {
	if entry.Kind != store.KindTree || entry.ID.IsEmpty() {
		return store.EmptyTree, nil
	}
	t, ok, err := e.Store.GetTree(ctx, entry.ID)
	if err != nil {
		return store.Tree{}, err
	}
	if !ok {
		return store.EmptyTree, nil
	}
	return t, nil
}

func (e *Engine) putTree(ctx context.Context, t store.Tree) (hash.Hash, error) {
	return e.Store.PutTree(ctx, t)
}

// descend walks parts from t, resolving each KindTree entry through Store.
// A missing or non-tree entry at any step yields EmptyTree, never an error:
// "path not found" is a legitimate total result for Subdir.
func (e *Engine) descend(ctx context.Context, t store.Tree, parts []string) (store.Tree, error) {
	cur := t
	for _, p := range parts {
		entry, ok := cur.Get(p)
		if !ok {
			return store.EmptyTree, nil
		}
		sub, err := e.resolveSubtree(ctx, entry)
		if err != nil {
			return store.Tree{}, err
		}
		cur = sub
	}
	return cur, nil
}

// mount wraps t under the nested path parts, innermost first, persisting
// each intermediate level through Store so the entries it hands back are
// resolvable by descend. An empty parts returns t unchanged.
func (e *Engine) mount(ctx context.Context, t store.Tree, parts []string) (store.Tree, error) {
	cur := t
	for i := len(parts) - 1; i >= 0; i-- {
		id, err := e.putTree(ctx, cur)
		if err != nil {
			return store.Tree{}, err
		}
		cur = store.NewTree(store.Entry{Name: parts[i], Kind: store.KindTree, ID: id})
	}
	return cur, nil
}

// Overlay merges b onto a: every entry of b wins at its path, recursing
// into matching tree-vs-tree entries instead of replacing them wholesale,
// and a's untouched entries pass through. This is the primitive behind
// Compose (§4.7: "overlay, later item wins").
func (e *Engine) Overlay(ctx context.Context, a, b store.Tree) (store.Tree, error) {
	result := a
	for _, be := range b.Entries() {
		ae, ok := a.Get(be.Name)
		if ok && ae.Kind == store.KindTree && be.Kind == store.KindTree {
			aSub, err := e.resolveSubtree(ctx, ae)
			if err != nil {
				return store.Tree{}, err
			}
			bSub, err := e.resolveSubtree(ctx, be)
			if err != nil {
				return store.Tree{}, err
			}
			merged, err := e.Overlay(ctx, aSub, bSub)
			if err != nil {
				return store.Tree{}, err
			}
			mergedID, err := e.putTree(ctx, merged)
			if err != nil {
				return store.Tree{}, err
			}
			result = result.With(store.Entry{Name: be.Name, Kind: store.KindTree, ID: mergedID})
			continue
		}
		result = result.With(be)
	}
	return result, nil
}

// SubtractFast removes from a every entry that is byte-for-byte identical
// (same kind and id) to its counterpart in b, and recurses into tree-vs-tree
// entries that differ so a partial match still strips what it can. It is
// "fast" because it never opens a blob's content -- only entry identity
// (name, kind, id) is ever compared.
func (e *Engine) SubtractFast(ctx context.Context, a, b store.Tree) (store.Tree, error) {
	result := a
	for _, be := range b.Entries() {
		ae, ok := a.Get(be.Name)
		if !ok {
			continue
		}
		if ae == be {
			result = result.Without(be.Name)
			continue
		}
		if ae.Kind == store.KindTree && be.Kind == store.KindTree {
			aSub, err := e.resolveSubtree(ctx, ae)
			if err != nil {
				return store.Tree{}, err
			}
			bSub, err := e.resolveSubtree(ctx, be)
			if err != nil {
				return store.Tree{}, err
			}
			sub, err := e.SubtractFast(ctx, aSub, bSub)
			if err != nil {
				return store.Tree{}, err
			}
			if sub.IsEmpty() {
				result = result.Without(be.Name)
				continue
			}
			subID, err := e.putTree(ctx, sub)
			if err != nil {
				return store.Tree{}, err
			}
			result = result.With(store.Entry{Name: be.Name, Kind: store.KindTree, ID: subID})
		}
	}
	return result, nil
}

// SubtractTree removes every blob whose full path (relative to root)
// satisfies keep==false, recursing through directories and dropping any
// that become empty as a result.
func (e *Engine) SubtractTree(ctx context.Context, root store.Tree, keep func(path string) bool) (store.Tree, error) {
	return e.subtractTree(ctx, root, "", keep)
}

func (e *Engine) subtractTree(ctx context.Context, t store.Tree, prefix string, keep func(path string) bool) (store.Tree, error) {
	result := t
	for _, entry := range t.Entries() {
		path := entry.Name
		if prefix != "" {
			path = prefix + "/" + entry.Name
		}
		switch entry.Kind {
		case store.KindBlob:
			if !keep(path) {
				result = result.Without(entry.Name)
			}
		case store.KindTree:
			sub, err := e.resolveSubtree(ctx, entry)
			if err != nil {
				return store.Tree{}, err
			}
			filtered, err := e.subtractTree(ctx, sub, path, keep)
			if err != nil {
				return store.Tree{}, err
			}
			if filtered.IsEmpty() {
				result = result.Without(entry.Name)
				continue
			}
			id, err := e.putTree(ctx, filtered)
			if err != nil {
				return store.Tree{}, err
			}
			result = result.With(store.Entry{Name: entry.Name, Kind: store.KindTree, ID: id})
		}
	}
	return result, nil
}

// kindOf determines whether id addresses a tree or a blob by probing Store,
// tree first. Nothing in this module calls it at present: ReplaceSubtree
// takes the entry kind from its caller instead of probing.
func (e *Engine) kindOf(ctx context.Context, id hash.Hash) (store.EntryKind, error) {
	if id.IsEmpty() {
		return store.KindTree, nil
	}
	if _, ok, err := e.Store.GetTree(ctx, id); err != nil {
		return 0, err
	} else if ok {
		return store.KindTree, nil
	}
	if _, ok, err := e.Store.GetBlob(ctx, id); err != nil {
		return 0, err
	} else if ok {
		return store.KindBlob, nil
	}
	return 0, store.ErrUnknownObject(id)
}

// ReplaceSubtree returns base with the entry at path replaced by (kind, id),
// creating or pruning intermediate directories as needed. id == hash.Empty
// with kind KindTree deletes whatever is at path; an empty id with any other
// kind is inserted as an ordinary entry. This is the primitive the File and
// Glob transforms and Subdir's unapply are built from (§4.7).
func (e *Engine) ReplaceSubtree(ctx context.Context, base store.Tree, path string, kind store.EntryKind, id hash.Hash) (store.Tree, error) {
	parts := store.SplitPath(path)
	if len(parts) == 0 {
		return base, nil
	}
	return e.replaceAt(ctx, base, parts, kind, id)
}

// ReplaceSubtreeTree is ReplaceSubtree for callers that already hold the
// replacement as a materialized Tree rather than a bare id: it persists sub
// and then swaps it in, or prunes path entirely if sub is empty.
func (e *Engine) ReplaceSubtreeTree(ctx context.Context, base store.Tree, path string, sub store.Tree) (store.Tree, error) {
	if sub.IsEmpty() {
		return e.ReplaceSubtree(ctx, base, path, store.KindTree, hash.Empty)
	}
	id, err := e.putTree(ctx, sub)
	if err != nil {
		return store.Tree{}, err
	}
	return e.ReplaceSubtree(ctx, base, path, store.KindTree, id)
}

func (e *Engine) replaceAt(ctx context.Context, cur store.Tree, parts []string, kind store.EntryKind, id hash.Hash) (store.Tree, error) {
	name := parts[0]
	if len(parts) == 1 {
		if id.IsEmpty() && kind == store.KindTree {
			return cur.Without(name), nil
		}
		return cur.With(store.Entry{Name: name, Kind: kind, ID: id}), nil
	}
	var child store.Tree
	if entry, ok := cur.Get(name); ok {
		sub, err := e.resolveSubtree(ctx, entry)
		if err != nil {
			return store.Tree{}, err
		}
		child = sub
	} else {
		child = store.EmptyTree
	}
	newChild, err := e.replaceAt(ctx, child, parts[1:], kind, id)
	if err != nil {
		return store.Tree{}, err
	}
	if newChild.IsEmpty() {
		return cur.Without(name), nil
	}
	childID, err := e.putTree(ctx, newChild)
	if err != nil {
		return store.Tree{}, err
	}
	return cur.With(store.Entry{Name: name, Kind: store.KindTree, ID: childID}), nil
}

// Dirtree synthesizes a directory-index tree mirroring every non-empty
// directory reachable from root: each such directory gets a dirMarkerName
// marker blob (so its presence survives even if every one of its children
// is a plain blob, which a pure directory-only view would otherwise erase),
// plus recursively-synthesized entries for its subdirectories.
func (e *Engine) Dirtree(ctx context.Context, root store.Tree) (store.Tree, error) {
	if root.IsEmpty() {
		return store.EmptyTree, nil
	}
	result := store.EmptyTree
	for _, entry := range root.Entries() {
		if entry.Kind != store.KindTree {
			continue
		}
		sub, err := e.resolveSubtree(ctx, entry)
		if err != nil {
			return store.Tree{}, err
		}
		dirSub, err := e.Dirtree(ctx, sub)
		if err != nil {
			return store.Tree{}, err
		}
		if dirSub.IsEmpty() {
			continue
		}
		id, err := e.putTree(ctx, dirSub)
		if err != nil {
			return store.Tree{}, err
		}
		result = result.With(store.Entry{Name: entry.Name, Kind: store.KindTree, ID: id})
	}
	markerID, err := e.Store.PutBlob(ctx, dirMarkerContent)
	if err != nil {
		return store.Tree{}, err
	}
	result = result.With(store.Entry{Name: dirMarkerName, Kind: store.KindBlob, ID: markerID})
	return result, nil
}
