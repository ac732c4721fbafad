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

package cachedstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vista-vcs/vista/hash"
	"github.com/vista-vcs/vista/store"
	"github.com/vista-vcs/vista/store/memstore"
)

// countingStore wraps a store.Store and counts calls into the inner Get
// methods, so tests can assert a cache hit never reaches the backend.
type countingStore struct {
	store.Store
	treeGets   int
	commitGets int
}

func (c *countingStore) GetTree(ctx context.Context, id hash.Hash) (store.Tree, bool, error) {
	c.treeGets++
	return c.Store.GetTree(ctx, id)
}

func (c *countingStore) GetCommit(ctx context.Context, id hash.Hash) (store.Commit, bool, error) {
	c.commitGets++
	return c.Store.GetCommit(ctx, id)
}

func TestGetTreeHitsCacheBeforeInner(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: memstore.New()}
	s, err := New(inner, 64, 64)
	require.NoError(t, err)

	blobID, err := inner.PutBlob(ctx, []byte("x"))
	require.NoError(t, err)
	tr := store.NewTree(store.Entry{Name: "a", Kind: store.KindBlob, ID: blobID})
	treeID, err := s.PutTree(ctx, tr)
	require.NoError(t, err)

	// PutTree already primed the cache, so the first Get should not reach
	// the inner store at all.
	_, ok, err := s.GetTree(ctx, treeID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, inner.treeGets)

	_, ok, err = s.GetTree(ctx, treeID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, inner.treeGets)
}

func TestGetCommitCachesAfterFirstMiss(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: memstore.New()}
	s, err := New(inner, 64, 64)
	require.NoError(t, err)

	treeID, err := inner.PutTree(ctx, store.EmptyTree)
	require.NoError(t, err)
	commitID, err := inner.PutCommit(ctx, store.Commit{TreeID: treeID, Metadata: store.Metadata{Message: "m"}})
	require.NoError(t, err)

	_, ok, err := s.GetCommit(ctx, commitID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, inner.commitGets)

	_, ok, err = s.GetCommit(ctx, commitID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, inner.commitGets, "second get should be served from the cache")
}

func TestBlobsAlwaysPassThrough(t *testing.T) {
	ctx := context.Background()
	inner := memstore.New()
	s, err := New(inner, 64, 64)
	require.NoError(t, err)

	id, err := s.PutBlob(ctx, []byte("payload"))
	require.NoError(t, err)

	got, ok, err := s.GetBlob(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got.Data)
}

func TestZeroCapacityDisablesCaching(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: memstore.New()}
	s, err := New(inner, 0, 0)
	require.NoError(t, err)

	treeID, err := inner.PutTree(ctx, store.EmptyTree)
	require.NoError(t, err)
	commitID, err := inner.PutCommit(ctx, store.Commit{TreeID: treeID, Metadata: store.Metadata{Message: "m"}})
	require.NoError(t, err)

	_, _, err = s.GetCommit(ctx, commitID)
	require.NoError(t, err)
	_, _, err = s.GetCommit(ctx, commitID)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.commitGets)
}

var _ store.Store = (*Store)(nil)
