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
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vista-vcs/vista/filter"
	"github.com/vista-vcs/vista/store"
	"github.com/vista-vcs/vista/verrors"
)

// WorkspaceFunc resolves the filter a Workspace(path) op evaluates to for a
// given tree, by reading path/workspace.josh out of t and parsing it (§4.6).
// It is a free function type rather than an interface so that the package
// implementing it (workspace) can depend on treeengine without treeengine
// depending back on it.
type WorkspaceFunc func(ctx context.Context, reg *filter.Registry, st store.Store, t store.Tree, path string) (filter.ID, error)

// Engine applies and unapplies filters against store.Tree values. It reads
// subtrees on demand through Store (an Entry only carries a hash, never the
// tree it addresses) and writes every tree it newly constructs back through
// Store immediately, so any id it hands out is resolvable by a later
// GetTree call -- including its own, on the next recursive step.
type Engine struct {
	Reg    *filter.Registry
	Store  store.Store
	Logger *logrus.Entry

	// ResolveWorkspace evaluates Workspace(path) ops. Nil means the engine
	// was built without workspace support; encountering a Workspace op then
	// fails rather than silently treating it as Nop.
	ResolveWorkspace WorkspaceFunc
}

// New builds an Engine. logger may be nil, in which case a disabled entry is
// used so call sites never need a nil check.
func New(reg *filter.Registry, st store.Store, logger *logrus.Entry, resolveWS WorkspaceFunc) *Engine {
	if logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		logger = logrus.NewEntry(l)
	}
	return &Engine{Reg: reg, Store: st, Logger: logger, ResolveWorkspace: resolveWS}
}

type wsGuardKey struct{}

func (e *Engine) checkWSGuard(ctx context.Context, path string) (context.Context, bool) {
	seen, _ := ctx.Value(wsGuardKey{}).(map[string]bool)
	if seen == nil {
		seen = map[string]bool{}
	}
	if seen[path] {
		return ctx, false
	}
	next := make(map[string]bool, len(seen)+1)
	for k := range seen {
		next[k] = true
	}
	next[path] = true
	return context.WithValue(ctx, wsGuardKey{}, next), true
}

// Apply is the total, forward tree transform of §4.3: apply(t, id) never
// fails to produce a tree (every op has a defined result for every input),
// but I/O against Store can still error.
func (e *Engine) Apply(ctx context.Context, t store.Tree, id filter.ID) (store.Tree, error) {
	op := e.Reg.Lookup(id)
	switch op.Kind {
	case filter.KindNop, filter.KindFold, filter.KindSquash:
		return t, nil

	case filter.KindEmpty:
		return store.EmptyTree, nil

	case filter.KindSubdir:
		return e.descend(ctx, t, store.SplitPath(op.Path))

	case filter.KindPrefix:
		return e.mount(ctx, t, store.SplitPath(op.Path))

	case filter.KindFile:
		return e.applyFile(ctx, t, op.Path)

	case filter.KindGlob:
		return e.applyGlob(ctx, t, op.Pattern)

	case filter.KindDirs:
		return e.Dirtree(ctx, t)

	case filter.KindCompose:
		return e.applyCompose(ctx, t, op.Items)

	case filter.KindChain:
		mid, err := e.Apply(ctx, t, op.A)
		if err != nil {
			return store.Tree{}, err
		}
		return e.Apply(ctx, mid, op.B)

	case filter.KindSubtract:
		return e.applySubtract(ctx, t, op.A, op.B)

	case filter.KindWorkspace:
		return e.applyWorkspace(ctx, t, op.Path)

	default:
		return store.Tree{}, errors.Errorf("treeengine: apply: unhandled op kind %v", op.Kind)
	}
}

// ErrIrreversible is returned by Unapply when asked to invert an operator
// outside the reversible subset (Empty, Fold, Squash, Dirs, and any
// Subtract whose left operand is not Nop). It is verrors' IrreversibleFilter
// kind (§7).
var ErrIrreversible = verrors.ErrIrreversibleFilter

// Unapply is the partial, inverse tree transform of §4.3: it asks "what
// input tree, when merged under parent, could apply(_, id) have produced
// u?". It is defined only on the reversible subset of operators (Nop,
// Subdir, Prefix, File, Glob, Chain/Compose of reversible parts,
// Subtract(Nop, _), Workspace) and returns ErrIrreversible otherwise.
func (e *Engine) Unapply(ctx context.Context, u store.Tree, id filter.ID, parent store.Tree) (store.Tree, error) {
	op := e.Reg.Lookup(id)
	switch op.Kind {
	case filter.KindNop:
		return u, nil

	case filter.KindEmpty, filter.KindFold, filter.KindSquash, filter.KindDirs:
		return store.Tree{}, errors.Wrapf(ErrIrreversible, "kind %v", op.Kind)

	case filter.KindSubdir:
		return e.ReplaceSubtreeTree(ctx, parent, op.Path, u)

	case filter.KindPrefix:
		inner, err := e.descend(ctx, u, store.SplitPath(op.Path))
		if err != nil {
			return store.Tree{}, err
		}
		return inner, nil

	case filter.KindFile:
		return e.unapplyFile(ctx, u, op.Path, parent)

	case filter.KindGlob:
		matched, err := e.applyGlob(ctx, u, op.Pattern)
		if err != nil {
			return store.Tree{}, err
		}
		return e.Overlay(ctx, parent, matched)

	case filter.KindCompose:
		return e.unapplyCompose(ctx, u, op.Items, parent)

	case filter.KindChain:
		mid, err := e.Apply(ctx, parent, op.A)
		if err != nil {
			return store.Tree{}, err
		}
		newMid, err := e.Unapply(ctx, u, op.B, mid)
		if err != nil {
			return store.Tree{}, err
		}
		return e.Unapply(ctx, newMid, op.A, parent)

	case filter.KindSubtract:
		if !e.Reg.IsNop(op.A) {
			return store.Tree{}, errors.Wrap(ErrIrreversible, "subtract with non-nop left operand")
		}
		unB, err := e.Unapply(ctx, u, op.B, store.EmptyTree)
		if err != nil {
			return store.Tree{}, err
		}
		diff, err := e.SubtractFast(ctx, u, unB)
		if err != nil {
			return store.Tree{}, err
		}
		return e.Overlay(ctx, parent, diff)

	case filter.KindWorkspace:
		return e.unapplyWorkspace(ctx, u, op.Path, parent)

	default:
		return store.Tree{}, errors.Errorf("treeengine: unapply: unhandled op kind %v", op.Kind)
	}
}

func (e *Engine) applyFile(ctx context.Context, t store.Tree, path string) (store.Tree, error) {
	parts := store.SplitPath(path)
	if len(parts) == 0 {
		return store.EmptyTree, nil
	}
	dir, err := e.descend(ctx, t, parts[:len(parts)-1])
	if err != nil {
		return store.Tree{}, err
	}
	entry, ok := dir.Get(parts[len(parts)-1])
	if !ok || entry.Kind != store.KindBlob {
		return store.EmptyTree, nil
	}
	return e.mount(ctx, store.NewTree(entry), parts[:len(parts)-1])
}

func (e *Engine) unapplyFile(ctx context.Context, u store.Tree, path string, parent store.Tree) (store.Tree, error) {
	parts := store.SplitPath(path)
	if len(parts) == 0 {
		return parent, nil
	}
	dir, err := e.descend(ctx, u, parts[:len(parts)-1])
	if err != nil {
		return store.Tree{}, err
	}
	entry, ok := dir.Get(parts[len(parts)-1])
	if !ok || entry.Kind != store.KindBlob {
		return store.EmptyTree, nil
	}
	return e.ReplaceSubtree(ctx, parent, path, store.KindBlob, entry.ID)
}

func (e *Engine) applyGlob(ctx context.Context, t store.Tree, pattern string) (store.Tree, error) {
	result := store.EmptyTree
	err := e.walkBlobs(ctx, t, "", func(path string, entry store.Entry) error {
		if !matchGlob(pattern, path) {
			return nil
		}
		var putErr error
		result, putErr = e.ReplaceSubtree(ctx, result, path, store.KindBlob, entry.ID)
		return putErr
	})
	if err != nil {
		return store.Tree{}, err
	}
	return result, nil
}

func (e *Engine) applyCompose(ctx context.Context, t store.Tree, items []filter.ID) (store.Tree, error) {
	result := store.EmptyTree
	for _, item := range items {
		branch, err := e.Apply(ctx, t, item)
		if err != nil {
			return store.Tree{}, err
		}
		result, err = e.Overlay(ctx, result, branch)
		if err != nil {
			return store.Tree{}, err
		}
	}
	return result, nil
}

// unapplyCompose implements the §4.3 Compose inverse algorithm: items are
// visited in reverse order, partitioning u across branches so overlapping
// paths are never double-counted.
func (e *Engine) unapplyCompose(ctx context.Context, u store.Tree, items []filter.ID, parent store.Tree) (store.Tree, error) {
	remaining := u
	result := parent
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		fromEmpty, err := e.Unapply(ctx, remaining, item, store.EmptyTree)
		if err != nil {
			return store.Tree{}, err
		}
		if fromEmpty.IsEmpty() {
			continue
		}
		result, err = e.Unapply(ctx, remaining, item, result)
		if err != nil {
			return store.Tree{}, err
		}
		roundTrip, err := e.Apply(ctx, fromEmpty, item)
		if err != nil {
			return store.Tree{}, err
		}
		remaining, err = e.SubtractFast(ctx, remaining, roundTrip)
		if err != nil {
			return store.Tree{}, err
		}
	}
	return result, nil
}

func (e *Engine) applySubtract(ctx context.Context, t store.Tree, a, b filter.ID) (store.Tree, error) {
	forwardA, err := e.Apply(ctx, t, a)
	if err != nil {
		return store.Tree{}, err
	}
	forwardB, err := e.Apply(ctx, t, b)
	if err != nil {
		return store.Tree{}, err
	}
	unB, err := e.Unapply(ctx, forwardB, b, store.EmptyTree)
	if err != nil {
		return store.Tree{}, err
	}
	roundTripB, err := e.Apply(ctx, unB, a)
	if err != nil {
		return store.Tree{}, err
	}
	return e.SubtractFast(ctx, forwardA, roundTripB)
}

func (e *Engine) applyWorkspace(ctx context.Context, t store.Tree, path string) (store.Tree, error) {
	if e.ResolveWorkspace == nil {
		return store.Tree{}, errors.Errorf("treeengine: workspace op encountered at %q but no workspace resolver is configured", path)
	}
	guardedCtx, ok := e.checkWSGuard(ctx, path)
	if !ok {
		e.Logger.WithField("path", path).Warn("workspace recursion guard: workspace references itself, treating as nop")
		return t, nil
	}
	wsFilter, err := e.ResolveWorkspace(guardedCtx, e.Reg, e.Store, t, path)
	if err != nil {
		return store.Tree{}, err
	}
	return e.Apply(guardedCtx, t, wsFilter)
}

func (e *Engine) unapplyWorkspace(ctx context.Context, u store.Tree, path string, parent store.Tree) (store.Tree, error) {
	if e.ResolveWorkspace == nil {
		return store.Tree{}, errors.Errorf("treeengine: workspace op encountered at %q but no workspace resolver is configured", path)
	}
	guardedCtx, ok := e.checkWSGuard(ctx, path)
	if !ok {
		e.Logger.WithField("path", path).Warn("workspace recursion guard: workspace references itself, treating as nop")
		return u, nil
	}
	wsFilter, err := e.ResolveWorkspace(guardedCtx, e.Reg, e.Store, u, path)
	if err != nil {
		return store.Tree{}, err
	}
	return e.Unapply(guardedCtx, u, wsFilter, parent)
}

// walkBlobs visits every blob entry reachable from t, depth-first, calling
// fn with its slash-joined path relative to t.
func (e *Engine) walkBlobs(ctx context.Context, t store.Tree, prefix string, fn func(path string, entry store.Entry) error) error {
	for _, entry := range t.Entries() {
		path := entry.Name
		if prefix != "" {
			path = prefix + "/" + entry.Name
		}
		switch entry.Kind {
		case store.KindBlob:
			if err := fn(path, entry); err != nil {
				return err
			}
		case store.KindTree:
			sub, err := e.resolveSubtree(ctx, entry)
			if err != nil {
				return err
			}
			if err := e.walkBlobs(ctx, sub, path, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
