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

// Package memstore is the in-memory reference implementation of
// store.Store: every write is a map insert, every read a map lookup. It is
// the backend used by the engine's own tests and by small, ephemeral
// evaluations that don't need a real git repository on disk.
package memstore

import (
	"context"
	"sync"

	"github.com/vista-vcs/vista/hash"
	"github.com/vista-vcs/vista/store"
)

// Store is a concurrency-safe, in-memory store.Store.
type Store struct {
	mu      sync.RWMutex
	trees   map[hash.Hash]store.Tree
	blobs   map[hash.Hash]store.Blob
	commits map[hash.Hash]store.Commit
}

// New returns an empty in-memory Store.
func New() *Store {
	return &Store{
		trees:   map[hash.Hash]store.Tree{},
		blobs:   map[hash.Hash]store.Blob{},
		commits: map[hash.Hash]store.Commit{},
	}
}

func (s *Store) GetTree(_ context.Context, id hash.Hash) (store.Tree, bool, error) {
	if id.IsEmpty() {
		return store.EmptyTree, true, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trees[id]
	return t, ok, nil
}

func (s *Store) PutTree(_ context.Context, t store.Tree) (hash.Hash, error) {
	id := store.TreeID(t)
	if id.IsEmpty() {
		return id, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees[id] = t
	return id, nil
}

func (s *Store) GetBlob(_ context.Context, id hash.Hash) (store.Blob, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[id]
	return b, ok, nil
}

func (s *Store) PutBlob(_ context.Context, data []byte) (hash.Hash, error) {
	id := hash.Of(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id] = store.Blob{ID: id, Data: data}
	return id, nil
}

func (s *Store) GetCommit(_ context.Context, id hash.Hash) (store.Commit, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.commits[id]
	return c, ok, nil
}

func (s *Store) PutCommit(_ context.Context, c store.Commit) (hash.Hash, error) {
	id := store.CommitID(c)
	c.ID = id
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits[id] = c
	return id, nil
}

var _ store.Store = (*Store)(nil)
