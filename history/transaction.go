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

// Package history implements the history engine of §4.5:
// apply_to_commit, the per-request Transaction that memoizes it, and the
// workspace-aware commit-level parent reconciliation of §4.5/§4.6.
package history

import (
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vista-vcs/vista/filter"
	"github.com/vista-vcs/vista/hash"
	"github.com/vista-vcs/vista/store"
	"github.com/vista-vcs/vista/treeengine"
)

// memoKey is the (FilterId, CommitId) memoization key of §3.4.
type memoKey struct {
	Filter hash.Hash
	Commit hash.Hash
}

// WarmCache is the process-wide, opportunistic cache layered outside a
// Transaction's exact memo map (§4.9). It is safe to share across
// concurrent Transactions: results are pure functions of (filter, commit)
// and objects are immutable, so a stale or evicted entry is simply
// recomputed, never wrong.
type WarmCache struct {
	cache *lru.Cache[memoKey, hash.Hash]
}

// NewWarmCache builds a WarmCache holding up to capacity entries. capacity
// <= 0 disables it (Get always misses, Add is a no-op).
func NewWarmCache(capacity int) *WarmCache {
	if capacity <= 0 {
		return &WarmCache{}
	}
	c, _ := lru.New[memoKey, hash.Hash](capacity)
	return &WarmCache{cache: c}
}

func (w *WarmCache) get(k memoKey) (hash.Hash, bool) {
	if w == nil || w.cache == nil {
		return hash.Hash{}, false
	}
	return w.cache.Get(k)
}

func (w *WarmCache) add(k memoKey, v hash.Hash) {
	if w == nil || w.cache == nil {
		return
	}
	w.cache.Add(k, v)
}

// Transaction bundles a Store, the exact per-request memo map, a
// *logrus.Entry tagged with a request id, and an optional reference to a
// process-wide warm cache (§4.9 / §3.4).
type Transaction struct {
	Reg    *filter.Registry
	Store  store.Store
	Engine *treeengine.Engine
	Warm   *WarmCache
	Logger *logrus.Entry

	memo map[memoKey]hash.Hash
}

// New builds a Transaction, generating a google/uuid request id and
// attaching it to logger as the "txn" field (§4.9). logger may be nil.
func New(reg *filter.Registry, st store.Store, eng *treeengine.Engine, warm *WarmCache, logger *logrus.Entry) *Transaction {
	if logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		logger = logrus.NewEntry(l)
	}
	txnID := uuid.New().String()
	return &Transaction{
		Reg:    reg,
		Store:  st,
		Engine: eng,
		Warm:   warm,
		Logger: logger.WithField("txn", txnID),
		memo:   map[memoKey]hash.Hash{},
	}
}

func (t *Transaction) lookupMemo(f, c hash.Hash) (hash.Hash, bool) {
	k := memoKey{Filter: f, Commit: c}
	if v, ok := t.memo[k]; ok {
		return v, true
	}
	if v, ok := t.Warm.get(k); ok {
		t.memo[k] = v
		return v, true
	}
	return hash.Hash{}, false
}

func (t *Transaction) storeMemo(f, c, result hash.Hash) {
	k := memoKey{Filter: f, Commit: c}
	t.memo[k] = result
	t.Warm.add(k, result)
}
