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

package history

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vista-vcs/vista/filter"
	"github.com/vista-vcs/vista/hash"
	"github.com/vista-vcs/vista/store"
	"github.com/vista-vcs/vista/verrors"
	"github.com/vista-vcs/vista/workspace"
)

// ApplyToCommit lifts filterID from trees to the commit DAG, rooted at
// commitID (§4.5). It returns hash.Empty when the commit filters to
// nothing. Any panic raised by the registry's Lookup (an unknown filter id,
// §7) is recovered and surfaced as a verrors StoreError rather than
// crashing the caller.
func (t *Transaction) ApplyToCommit(ctx context.Context, filterID filter.ID, commitID hash.Hash) (result hash.Hash, err error) {
	defer verrors.Recover(&err, func(r interface{}) {
		t.Logger.WithField("panic", r).Error("recovered panic in ApplyToCommit")
	})
	return t.applyToCommit(ctx, filter.Optimize(t.Reg, filterID), commitID)
}

func (t *Transaction) applyToCommit(ctx context.Context, filterID filter.ID, commitID hash.Hash) (hash.Hash, error) {
	if commitID.IsEmpty() {
		return hash.Empty, nil
	}

	op := t.Reg.Lookup(filterID)

	switch op.Kind {
	case filter.KindNop:
		return commitID, nil
	case filter.KindEmpty:
		return hash.Empty, nil
	case filter.KindChain:
		mid, err := t.applyToCommit(ctx, op.A, commitID)
		if err != nil || mid.IsEmpty() {
			return hash.Empty, err
		}
		return t.applyToCommit(ctx, op.B, mid)
	case filter.KindSquash:
		return t.writeDerived(ctx, filterID, commitID, nil, squashMetadata)
	}

	if cached, ok := t.lookupMemo(filterID, commitID); ok {
		return cached, nil
	}

	commit, ok, err := t.Store.GetCommit(ctx, commitID)
	if err != nil {
		return hash.Empty, err
	}
	if !ok {
		return hash.Empty, errors.Errorf("history: unknown commit %s", commitID)
	}

	var tree store.Tree
	var parents []hash.Hash

	switch op.Kind {
	case filter.KindCompose:
		tree, err = t.deriveCompose(ctx, op.Items, commit)
		if err != nil {
			return hash.Empty, err
		}
		parents, err = t.walk2(ctx, filterID, commit.Parents)
		if err != nil {
			return hash.Empty, err
		}

	case filter.KindWorkspace:
		tree, parents, err = t.deriveWorkspace(ctx, filterID, op.Path, commit)
		if err != nil {
			return hash.Empty, err
		}

	case filter.KindFold:
		tree, parents, err = t.deriveFold(ctx, filterID, commit)
		if err != nil {
			return hash.Empty, err
		}

	case filter.KindSubtract:
		tree, err = t.deriveSubtract(ctx, op.A, op.B, commit)
		if err != nil {
			return hash.Empty, err
		}
		parents, err = t.walk2(ctx, filterID, commit.Parents)
		if err != nil {
			return hash.Empty, err
		}

	default:
		srcTree, err2 := t.treeOf(ctx, commit.TreeID)
		if err2 != nil {
			return hash.Empty, err2
		}
		tree, err = t.Engine.Apply(ctx, srcTree, filterID)
		if err != nil {
			return hash.Empty, err
		}
		parents, err = t.walk2(ctx, filterID, commit.Parents)
		if err != nil {
			return hash.Empty, err
		}
	}

	treeID, err := t.Store.PutTree(ctx, tree)
	if err != nil {
		return hash.Empty, err
	}

	derived := store.Commit{
		TreeID:   treeID,
		Parents:  parents,
		Metadata: commit.Metadata,
		Provenance: store.Provenance{
			FilterID: filterID,
			SourceID: commitID,
		},
	}
	id, err := t.Store.PutCommit(ctx, derived)
	if err != nil {
		return hash.Empty, err
	}
	t.storeMemo(filterID, commitID, id)
	return id, nil
}

// treeOf resolves a tree id through the store, treating an unresolvable id
// (including the zero id of a commit with no tree) as the empty tree.
func (t *Transaction) treeOf(ctx context.Context, treeID hash.Hash) (store.Tree, error) {
	if treeID.IsEmpty() {
		return store.EmptyTree, nil
	}
	tr, ok, err := t.Store.GetTree(ctx, treeID)
	if err != nil {
		return store.Tree{}, err
	}
	if !ok {
		return store.EmptyTree, nil
	}
	return tr, nil
}

// squashMetadata copies a source commit's metadata verbatim onto its
// squashed derivative; Squash changes history shape, never authorship.
func squashMetadata(c store.Commit) store.Metadata {
	return c.Metadata
}

// writeDerived builds and writes a derived commit whose tree equals the
// source commit's own tree (Squash's short-circuit, §4.5 step 1): same
// content, no parents.
func (t *Transaction) writeDerived(ctx context.Context, filterID, commitID hash.Hash, parents []hash.Hash, metaFn func(store.Commit) store.Metadata) (hash.Hash, error) {
	commit, ok, err := t.Store.GetCommit(ctx, commitID)
	if err != nil {
		return hash.Empty, err
	}
	if !ok {
		return hash.Empty, errors.Errorf("history: unknown commit %s", commitID)
	}
	derived := store.Commit{
		TreeID:   commit.TreeID,
		Parents:  parents,
		Metadata: metaFn(commit),
		Provenance: store.Provenance{
			FilterID: filterID,
			SourceID: commitID,
		},
	}
	return t.Store.PutCommit(ctx, derived)
}

// deriveCompose applies each branch to commit, dropping null results, and
// overlays the survivors in declared order (§4.5 step 2, Compose).
func (t *Transaction) deriveCompose(ctx context.Context, items []filter.ID, commit store.Commit) (store.Tree, error) {
	result := store.EmptyTree
	for _, item := range items {
		derivedID, err := t.applyToCommit(ctx, item, commit.ID)
		if err != nil {
			return store.Tree{}, err
		}
		if derivedID.IsEmpty() {
			continue
		}
		dc, ok, err := t.Store.GetCommit(ctx, derivedID)
		if err != nil {
			return store.Tree{}, err
		}
		if !ok {
			return store.Tree{}, errors.Errorf("history: unknown derived commit %s", derivedID)
		}
		branchTree, ok, err := t.Store.GetTree(ctx, dc.TreeID)
		if err != nil {
			return store.Tree{}, err
		}
		if !ok {
			branchTree = store.EmptyTree
		}
		result, err = t.Engine.Overlay(ctx, result, branchTree)
		if err != nil {
			return store.Tree{}, err
		}
	}
	return result, nil
}

// deriveSubtract implements the Subtract(a, b) tree derivation of §4.5
// step 2: Af = apply_to_commit(a), Bf = apply_to_commit(b), then
// Bu = unapply(Bf, b, ∅), Ba = apply(Bu, a), output = Af − Ba.
func (t *Transaction) deriveSubtract(ctx context.Context, a, b filter.ID, commit store.Commit) (store.Tree, error) {
	aTree, err := t.treeOfApplyToCommit(ctx, a, commit.ID)
	if err != nil {
		return store.Tree{}, err
	}
	bTree, err := t.treeOfApplyToCommit(ctx, b, commit.ID)
	if err != nil {
		return store.Tree{}, err
	}
	bu, err := t.Engine.Unapply(ctx, bTree, b, store.EmptyTree)
	if err != nil {
		return store.Tree{}, err
	}
	ba, err := t.Engine.Apply(ctx, bu, a)
	if err != nil {
		return store.Tree{}, err
	}
	return t.Engine.SubtractFast(ctx, aTree, ba)
}

// treeOfApplyToCommit runs apply_to_commit(filterID, commitID) and resolves
// its tree, defaulting to the empty tree for a null result.
func (t *Transaction) treeOfApplyToCommit(ctx context.Context, filterID, commitID hash.Hash) (store.Tree, error) {
	id, err := t.applyToCommit(ctx, filterID, commitID)
	if err != nil {
		return store.Tree{}, err
	}
	if id.IsEmpty() {
		return store.EmptyTree, nil
	}
	c, ok, err := t.Store.GetCommit(ctx, id)
	if err != nil {
		return store.Tree{}, err
	}
	if !ok {
		return store.Tree{}, errors.Errorf("history: unknown commit %s", id)
	}
	return t.treeOf(ctx, c.TreeID)
}

// deriveFold overlays the commit's filtered parents' trees onto the
// commit's own tree (§4.5 step 2, Fold). A parent that filters to the null
// id is dropped from both the overlay and the returned parent list -- the
// resolved Open Question in §9: Fold never substitutes the pre-filter
// commit tree in a dropped parent's place.
func (t *Transaction) deriveFold(ctx context.Context, filterID hash.Hash, commit store.Commit) (store.Tree, []hash.Hash, error) {
	result, err := t.treeOf(ctx, commit.TreeID)
	if err != nil {
		return store.Tree{}, nil, err
	}
	var parents []hash.Hash
	for _, p := range commit.Parents {
		derivedID, err := t.applyToCommit(ctx, filterID, p)
		if err != nil {
			return store.Tree{}, nil, err
		}
		if derivedID.IsEmpty() {
			continue
		}
		parents = append(parents, derivedID)
		dc, ok, err := t.Store.GetCommit(ctx, derivedID)
		if err != nil {
			return store.Tree{}, nil, err
		}
		if !ok {
			continue
		}
		pTree, ok, err := t.Store.GetTree(ctx, dc.TreeID)
		if err != nil {
			return store.Tree{}, nil, err
		}
		if !ok {
			pTree = store.EmptyTree
		}
		result, err = t.Engine.Overlay(ctx, result, pTree)
		if err != nil {
			return store.Tree{}, nil, err
		}
	}
	return result, parents, nil
}

// deriveWorkspace implements §4.5's Workspace(p) derivation: the output
// tree is apply(commit.tree, filter) (which internally resolves the
// workspace file via the engine's ResolveWorkspace hook); the parent list
// is the union of the normal filtered parents and, per parent, an "extra
// parent" reconstructing history for paths the workspace file newly
// included at this commit.
func (t *Transaction) deriveWorkspace(ctx context.Context, filterID hash.Hash, path string, commit store.Commit) (store.Tree, []hash.Hash, error) {
	srcTree, err := t.treeOf(ctx, commit.TreeID)
	if err != nil {
		return store.Tree{}, nil, err
	}
	tree, err := t.Engine.Apply(ctx, srcTree, filterID)
	if err != nil {
		return store.Tree{}, nil, err
	}

	seen := map[hash.Hash]struct{}{}
	var parents []hash.Hash
	addParent := func(id hash.Hash) {
		if id.IsEmpty() {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		parents = append(parents, id)
	}

	normal, err := t.walk2(ctx, filterID, commit.Parents)
	if err != nil {
		return store.Tree{}, nil, err
	}
	for _, id := range normal {
		addParent(id)
	}

	cw, err := workspace.Compose(ctx, t.Reg, t.Store, srcTree, path)
	if err != nil {
		return store.Tree{}, nil, err
	}
	for _, p := range commit.Parents {
		pc, ok, err := t.Store.GetCommit(ctx, p)
		if err != nil {
			return store.Tree{}, nil, err
		}
		if !ok {
			continue
		}
		pTree, err := t.treeOf(ctx, pc.TreeID)
		if err != nil {
			return store.Tree{}, nil, err
		}
		pcw, err := workspace.Compose(ctx, t.Reg, t.Store, pTree, path)
		if err != nil {
			return store.Tree{}, nil, err
		}
		extraFilter := filter.Optimize(t.Reg, t.Reg.Intern(filter.Subtract(cw, pcw)))
		extraID, err := t.applyToCommit(ctx, extraFilter, p)
		if err != nil {
			return store.Tree{}, nil, err
		}
		addParent(extraID)
	}

	return tree, parents, nil
}

// walk2 is the parent-walk helper of §4.5: applies filterID to each parent
// id, dropping null results, memoizing through the same transaction as
// applyToCommit so repeated ancestors are only ever computed once.
func (t *Transaction) walk2(ctx context.Context, filterID hash.Hash, parents []hash.Hash) ([]hash.Hash, error) {
	var out []hash.Hash
	for _, p := range parents {
		id, err := t.applyToCommit(ctx, filterID, p)
		if err != nil {
			return nil, err
		}
		if id.IsEmpty() {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}
