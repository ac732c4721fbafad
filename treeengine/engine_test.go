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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vista-vcs/vista/filter"
	"github.com/vista-vcs/vista/store"
	"github.com/vista-vcs/vista/store/memstore"
)

func newEngine(t *testing.T) (*Engine, *filter.Registry, context.Context) {
	t.Helper()
	reg := filter.NewRegistry()
	st := memstore.New()
	return New(reg, st, nil, nil), reg, context.Background()
}

// putBlob stores data and returns the entry a tree would carry for it.
func putBlob(t *testing.T, ctx context.Context, st store.Store, name string, data string) store.Entry {
	t.Helper()
	id, err := st.PutBlob(ctx, []byte(data))
	require.NoError(t, err)
	return store.Entry{Name: name, Kind: store.KindBlob, ID: id}
}

func putTree(t *testing.T, ctx context.Context, st store.Store, tr store.Tree) store.Entry {
	t.Helper()
	id, err := st.PutTree(ctx, tr)
	require.NoError(t, err)
	return store.Entry{Kind: store.KindTree, ID: id}
}

// TestApplySubdir covers scenario 1: :/sub applied to {a:blob1, sub:{b:blob2}} -> {b:blob2}.
func TestApplySubdir(t *testing.T) {
	eng, reg, ctx := newEngine(t)

	b2 := putBlob(t, ctx, eng.Store, "b", "blob2")
	sub := store.NewTree(b2)
	subEntry := putTree(t, ctx, eng.Store, sub)
	subEntry.Name = "sub"

	a1 := putBlob(t, ctx, eng.Store, "a", "blob1")
	root := store.NewTree(a1, subEntry)

	id := reg.Intern(filter.Subdir("sub"))
	got, err := eng.Apply(ctx, root, id)
	require.NoError(t, err)

	want := store.NewTree(b2)
	require.True(t, want.Equal(got))
}

// TestApplyMountRoundTrip covers scenario 2: ::src/ applied to {src:{x:blob}, other:blob} -> {src:{x:blob}}.
func TestApplyMountRoundTrip(t *testing.T) {
	eng, reg, ctx := newEngine(t)

	x := putBlob(t, ctx, eng.Store, "x", "xblob")
	srcTree := store.NewTree(x)
	srcEntry := putTree(t, ctx, eng.Store, srcTree)
	srcEntry.Name = "src"

	other := putBlob(t, ctx, eng.Store, "other", "otherblob")
	root := store.NewTree(srcEntry, other)

	id := filter.MustParse(reg, "::src/")
	got, err := eng.Apply(ctx, root, id)
	require.NoError(t, err)

	want := store.NewTree(srcEntry)
	require.True(t, want.Equal(got))
}

// TestApplyCompose covers scenario 3: :[::foo/,::bar/] applied to
// {foo:{f:b1}, bar:{g:b2}, zz:b3} -> {foo:{f:b1}, bar:{g:b2}}.
func TestApplyCompose(t *testing.T) {
	eng, reg, ctx := newEngine(t)

	f1 := putBlob(t, ctx, eng.Store, "f", "b1")
	fooTree := store.NewTree(f1)
	fooEntry := putTree(t, ctx, eng.Store, fooTree)
	fooEntry.Name = "foo"

	g2 := putBlob(t, ctx, eng.Store, "g", "b2")
	barTree := store.NewTree(g2)
	barEntry := putTree(t, ctx, eng.Store, barTree)
	barEntry.Name = "bar"

	zz := putBlob(t, ctx, eng.Store, "zz", "b3")
	root := store.NewTree(fooEntry, barEntry, zz)

	id := filter.MustParse(reg, ":[::foo/,::bar/]")
	got, err := eng.Apply(ctx, root, id)
	require.NoError(t, err)

	want := store.NewTree(fooEntry, barEntry)
	require.True(t, want.Equal(got))
}

// TestApplyExclude covers scenario 4: :exclude[::secret] applied to
// {secret:blob, ok:blob} -> {ok:blob}.
func TestApplyExclude(t *testing.T) {
	eng, reg, ctx := newEngine(t)

	secret := putBlob(t, ctx, eng.Store, "secret", "s")
	ok := putBlob(t, ctx, eng.Store, "ok", "o")
	root := store.NewTree(secret, ok)

	id := filter.MustParse(reg, ":exclude[::secret]")
	got, err := eng.Apply(ctx, root, id)
	require.NoError(t, err)

	want := store.NewTree(ok)
	require.True(t, want.Equal(got))
}

func TestApplyNopIdentity(t *testing.T) {
	eng, reg, ctx := newEngine(t)
	a := putBlob(t, ctx, eng.Store, "a", "x")
	root := store.NewTree(a)

	got, err := eng.Apply(ctx, root, reg.NopID())
	require.NoError(t, err)
	require.True(t, root.Equal(got))
}

func TestApplyEmptyAbsorbs(t *testing.T) {
	eng, reg, ctx := newEngine(t)
	a := putBlob(t, ctx, eng.Store, "a", "x")
	root := store.NewTree(a)

	id := reg.Intern(filter.Empty())
	got, err := eng.Apply(ctx, root, id)
	require.NoError(t, err)
	require.True(t, got.IsEmpty())
}

func TestApplyGlob(t *testing.T) {
	eng, reg, ctx := newEngine(t)
	goFile := putBlob(t, ctx, eng.Store, "main.go", "package main")
	txtFile := putBlob(t, ctx, eng.Store, "readme.txt", "hi")
	root := store.NewTree(goFile, txtFile)

	id := reg.Intern(filter.Glob("*.go"))
	got, err := eng.Apply(ctx, root, id)
	require.NoError(t, err)

	want := store.NewTree(goFile)
	require.True(t, want.Equal(got))
}

func TestApplyGlobLiteralLeadingDot(t *testing.T) {
	eng, reg, ctx := newEngine(t)
	hidden := putBlob(t, ctx, eng.Store, ".hidden.go", "x")
	visible := putBlob(t, ctx, eng.Store, "main.go", "package main")
	root := store.NewTree(hidden, visible)

	id := reg.Intern(filter.Glob("*.go"))
	got, err := eng.Apply(ctx, root, id)
	require.NoError(t, err)

	want := store.NewTree(visible)
	require.True(t, want.Equal(got))
}

// TestSubdirPrefixRoundTrip checks the §8 property: applying Subdir(p) then
// Prefix(p) back embeds exactly the subtree at p under p again.
func TestSubdirPrefixRoundTrip(t *testing.T) {
	eng, reg, ctx := newEngine(t)

	x := putBlob(t, ctx, eng.Store, "x", "data")
	subTree := store.NewTree(x)
	subEntry := putTree(t, ctx, eng.Store, subTree)
	subEntry.Name = "p"
	root := store.NewTree(subEntry)

	subID := reg.Intern(filter.Subdir("p"))
	prefixID := reg.Intern(filter.Prefix("p"))
	chainID := reg.Intern(filter.Chain(subID, prefixID))

	got, err := eng.Apply(ctx, root, chainID)
	require.NoError(t, err)
	require.True(t, root.Equal(got))
}

func TestUnapplySubdirReplacesInParent(t *testing.T) {
	eng, reg, ctx := newEngine(t)

	x := putBlob(t, ctx, eng.Store, "x", "data")
	subTree := store.NewTree(x)
	newX := putBlob(t, ctx, eng.Store, "x", "new-data")
	newSub := store.NewTree(newX)

	subEntry := putTree(t, ctx, eng.Store, subTree)
	subEntry.Name = "p"
	other := putBlob(t, ctx, eng.Store, "other", "unchanged")
	parent := store.NewTree(subEntry, other)

	id := reg.Intern(filter.Subdir("p"))
	got, err := eng.Unapply(ctx, newSub, id, parent)
	require.NoError(t, err)

	newSubEntry := putTree(t, ctx, eng.Store, newSub)
	newSubEntry.Name = "p"
	want := store.NewTree(newSubEntry, other)
	require.True(t, want.Equal(got))
}

func TestUnapplyEmptyIsIrreversible(t *testing.T) {
	eng, reg, ctx := newEngine(t)
	id := reg.Intern(filter.Empty())
	_, err := eng.Unapply(ctx, store.EmptyTree, id, store.EmptyTree)
	require.ErrorIs(t, err, ErrIrreversible)
}

func TestOverlayRecursesIntoMatchingSubtrees(t *testing.T) {
	eng, _, ctx := newEngine(t)

	x := putBlob(t, ctx, eng.Store, "x", "1")
	y := putBlob(t, ctx, eng.Store, "y", "2")
	aSub := store.NewTree(x)
	aEntry := putTree(t, ctx, eng.Store, aSub)
	aEntry.Name = "dir"
	a := store.NewTree(aEntry)

	bSub := store.NewTree(y)
	bEntry := putTree(t, ctx, eng.Store, bSub)
	bEntry.Name = "dir"
	b := store.NewTree(bEntry)

	got, err := eng.Overlay(ctx, a, b)
	require.NoError(t, err)

	mergedSub, ok := got.Get("dir")
	require.True(t, ok)
	resolved, ok, err := eng.Store.GetTree(ctx, mergedSub.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, resolved.Len())
}

func TestDirtreeMarksNonEmptyDirectories(t *testing.T) {
	eng, _, ctx := newEngine(t)

	x := putBlob(t, ctx, eng.Store, "x", "1")
	innerTree := store.NewTree(x)
	innerEntry := putTree(t, ctx, eng.Store, innerTree)
	innerEntry.Name = "inner"
	outerTree := store.NewTree(innerEntry)
	outerEntry := putTree(t, ctx, eng.Store, outerTree)
	outerEntry.Name = "outer"
	root := store.NewTree(outerEntry)

	got, err := eng.Dirtree(ctx, root)
	require.NoError(t, err)

	_, ok := got.Get(dirMarkerName)
	require.True(t, ok)

	outerGot, ok := got.Get("outer")
	require.True(t, ok)
	resolvedOuter, ok, err := eng.Store.GetTree(ctx, outerGot.ID)
	require.NoError(t, err)
	require.True(t, ok)
	_, ok = resolvedOuter.Get(dirMarkerName)
	require.True(t, ok)
	_, ok = resolvedOuter.Get("inner")
	require.True(t, ok)
}

func TestSubtractFastRemovesIdenticalEntries(t *testing.T) {
	eng, _, ctx := newEngine(t)

	shared := putBlob(t, ctx, eng.Store, "shared", "same")
	onlyA := putBlob(t, ctx, eng.Store, "onlyA", "a")
	a := store.NewTree(shared, onlyA)
	b := store.NewTree(shared)

	got, err := eng.SubtractFast(ctx, a, b)
	require.NoError(t, err)

	want := store.NewTree(onlyA)
	require.True(t, want.Equal(got))
}

func TestReplaceSubtreeDeletesOnEmptyID(t *testing.T) {
	eng, _, ctx := newEngine(t)
	x := putBlob(t, ctx, eng.Store, "x", "1")
	root := store.NewTree(x)

	var zero store.Entry
	got, err := eng.ReplaceSubtree(ctx, root, "x", store.KindTree, zero.ID)
	require.NoError(t, err)
	require.True(t, got.IsEmpty())
}
