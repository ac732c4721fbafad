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

// Package cachedstore decorates a store.Store with a bounded LRU of
// recently read trees and commits, so a backend with real read latency
// (gitstore, chiefly) doesn't pay it twice for the hot working set a
// filter evaluation revisits constantly (the same ancestor trees, the same
// already-derived commits). Blobs are deliberately not cached: file
// content is typically the largest and least-reused object class during a
// history walk, and caching it would mostly evict the small, hot
// tree/commit entries that actually earn their keep.
package cachedstore

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vista-vcs/vista/hash"
	"github.com/vista-vcs/vista/store"
)

// Store wraps an inner store.Store, caching GetTree/PutTree and
// GetCommit/PutCommit results. Objects are immutable and content-addressed,
// so a cache entry never needs invalidation -- only eviction.
type Store struct {
	inner   store.Store
	trees   *lru.Cache[hash.Hash, store.Tree]
	commits *lru.Cache[hash.Hash, store.Commit]
}

// New wraps inner with LRUs of the given sizes. A size <= 0 disables
// caching for that object class (reads and writes simply pass through).
func New(inner store.Store, treeCapacity, commitCapacity int) (*Store, error) {
	s := &Store{inner: inner}
	if treeCapacity > 0 {
		c, err := lru.New[hash.Hash, store.Tree](treeCapacity)
		if err != nil {
			return nil, err
		}
		s.trees = c
	}
	if commitCapacity > 0 {
		c, err := lru.New[hash.Hash, store.Commit](commitCapacity)
		if err != nil {
			return nil, err
		}
		s.commits = c
	}
	return s, nil
}

func (s *Store) GetTree(ctx context.Context, id hash.Hash) (store.Tree, bool, error) {
	if id.IsEmpty() {
		return store.EmptyTree, true, nil
	}
	if s.trees != nil {
		if t, ok := s.trees.Get(id); ok {
			return t, true, nil
		}
	}
	t, ok, err := s.inner.GetTree(ctx, id)
	if err != nil || !ok {
		return t, ok, err
	}
	if s.trees != nil {
		s.trees.Add(id, t)
	}
	return t, true, nil
}

func (s *Store) PutTree(ctx context.Context, t store.Tree) (hash.Hash, error) {
	id, err := s.inner.PutTree(ctx, t)
	if err != nil {
		return id, err
	}
	if s.trees != nil && !id.IsEmpty() {
		s.trees.Add(id, t)
	}
	return id, nil
}

func (s *Store) GetBlob(ctx context.Context, id hash.Hash) (store.Blob, bool, error) {
	return s.inner.GetBlob(ctx, id)
}

func (s *Store) PutBlob(ctx context.Context, data []byte) (hash.Hash, error) {
	return s.inner.PutBlob(ctx, data)
}

func (s *Store) GetCommit(ctx context.Context, id hash.Hash) (store.Commit, bool, error) {
	if s.commits != nil {
		if c, ok := s.commits.Get(id); ok {
			return c, true, nil
		}
	}
	c, ok, err := s.inner.GetCommit(ctx, id)
	if err != nil || !ok {
		return c, ok, err
	}
	if s.commits != nil {
		s.commits.Add(id, c)
	}
	return c, true, nil
}

func (s *Store) PutCommit(ctx context.Context, c store.Commit) (hash.Hash, error) {
	id, err := s.inner.PutCommit(ctx, c)
	if err != nil {
		return id, err
	}
	if s.commits != nil {
		c.ID = id
		s.commits.Add(id, c)
	}
	return id, nil
}

var _ store.Store = (*Store)(nil)
