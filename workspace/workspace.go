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

// Package workspace implements the self-describing workspace evaluator of
// §4.6: reading a workspace.josh blob out of a tree and turning it into the
// filter a Workspace(path) op should evaluate to. It is consumed by
// treeengine (via the treeengine.WorkspaceFunc hook, wired at construction
// time to avoid an import cycle) and by the history engine (to compute the
// cw/pcw compose filters a Workspace commit needs).
package workspace

import (
	"context"
	"unicode/utf8"

	"github.com/vista-vcs/vista/filter"
	"github.com/vista-vcs/vista/store"
	"github.com/vista-vcs/vista/treeengine"
)

// fileName is the well-known workspace file read from the root of a
// Workspace(path) filter's path (§6.3).
const fileName = "workspace.josh"

// ComposeFromWorkspace implements treeengine.WorkspaceFunc: it reads
// path/workspace.josh out of t, parses it as a workspace file, and returns
// the id of Chain(Subdir(path), Compose(items)) -- "operate within path,
// then assemble as described" (§4.6). A missing file or non-UTF-8 content
// yields an empty Compose, per §7's documented recovery, not an error.
func ComposeFromWorkspace(ctx context.Context, reg *filter.Registry, st store.Store, t store.Tree, path string) (filter.ID, error) {
	items, err := Items(ctx, reg, st, t, path)
	if err != nil {
		return filter.ID{}, err
	}
	subdirID := reg.Intern(filter.Subdir(path))
	composeID := reg.Intern(filter.Compose(items...))
	return filter.Optimize(reg, reg.Intern(filter.Chain(subdirID, composeID))), nil
}

// Compose builds the bare Compose(items) filter id for the workspace file at
// path/workspace.josh relative to t, WITHOUT the leading Subdir(path) that
// ComposeFromWorkspace prepends. This is what the history engine's Workspace
// handling (§4.5) calls "cw" (built from a commit's own tree) and "pcw"
// (built from a parent's tree): both need the bare compose so they can be
// combined with Subtract before being applied to a specific commit.
func Compose(ctx context.Context, reg *filter.Registry, st store.Store, t store.Tree, path string) (filter.ID, error) {
	items, err := Items(ctx, reg, st, t, path)
	if err != nil {
		return filter.ID{}, err
	}
	return reg.Intern(filter.Compose(items...)), nil
}

// Items resolves the (unwrapped) list of compose branches a workspace file
// at path/workspace.josh describes, relative to t.
func Items(ctx context.Context, reg *filter.Registry, st store.Store, t store.Tree, path string) ([]filter.ID, error) {
	eng := treeengine.New(reg, st, nil, nil)
	dir, err := eng.Apply(ctx, t, reg.Intern(filter.Subdir(path)))
	if err != nil {
		return nil, err
	}
	entry, ok := dir.Get(fileName)
	if !ok || entry.Kind != store.KindBlob {
		return nil, nil
	}
	blob, ok, err := st.GetBlob(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	if !ok || !utf8.Valid(blob.Data) {
		return nil, nil
	}
	return filter.ParseWorkspaceFile(reg, string(blob.Data))
}
