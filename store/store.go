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

// Package store defines the content-addressed object model (Tree, Commit,
// Blob) that the filter algebra operates over, and the Store contract a
// backend must satisfy. This module ships two backends: memstore (an
// in-memory reference implementation) and gitstore (a real backend over an
// on-disk git repository).
package store

import (
	"context"

	"github.com/vista-vcs/vista/hash"
)

// EntryKind distinguishes the three things a Tree entry can point at.
type EntryKind uint8

const (
	// KindBlob marks an entry that addresses file content.
	KindBlob EntryKind = iota
	// KindTree marks an entry that addresses a nested Tree.
	KindTree
	// KindGitLink marks an entry that addresses a foreign (submodule-like)
	// commit id, carried through structurally but never descended into.
	KindGitLink
)

// Entry is one named child of a Tree.
type Entry struct {
	Name string
	Kind EntryKind
	ID   hash.Hash
}

// Less orders entries by name, giving Tree its canonical iteration order.
func (e Entry) Less(o Entry) bool {
	return e.Name < o.Name
}

// Metadata is the non-structural payload carried by a Commit: author,
// message and timestamp. The core never interprets these fields beyond
// copying them verbatim from a source commit to a derived one.
type Metadata struct {
	AuthorName  string
	AuthorEmail string
	Message     string
	// UnixSeconds is the commit time; kept as an int64 rather than
	// time.Time so derived commits can round-trip through a Store without
	// a timezone dependency.
	UnixSeconds int64
}

// Provenance records which filter, applied to which source commit, derived
// a Commit. It is the zero value for a directly authored commit. Carrying
// it as part of a derived commit's own encoding (see EncodeCommit) is what
// makes two different (filter, source) pairs that happen to produce the
// same tree/parents/metadata still address distinct commits -- without it,
// an unrelated coincidental collision could corrupt the memoization table's
// (filter, source) -> derived-id mapping.
type Provenance struct {
	FilterID hash.Hash
	SourceID hash.Hash
}

// IsZero reports whether p carries no provenance (a directly authored
// commit, never the output of apply_to_commit).
func (p Provenance) IsZero() bool {
	return p.FilterID.IsEmpty() && p.SourceID.IsEmpty()
}

// Commit is an immutable, content-addressed history node.
type Commit struct {
	ID         hash.Hash
	TreeID     hash.Hash
	Parents    []hash.Hash
	Metadata   Metadata
	Provenance Provenance
}

// Blob is opaque file content addressed by the hash of its bytes.
type Blob struct {
	ID   hash.Hash
	Data []byte
}

// Store is the object-store contract the filter algebra consumes. It is
// never implemented by the algebra itself: memstore and gitstore are the
// two backends this module ships, and a host may supply its own.
type Store interface {
	// GetTree returns the tree addressed by id, or ok=false if absent.
	GetTree(ctx context.Context, id hash.Hash) (Tree, bool, error)
	// PutTree stores t and returns its id.
	PutTree(ctx context.Context, t Tree) (hash.Hash, error)

	// GetBlob returns the blob addressed by id, or ok=false if absent.
	GetBlob(ctx context.Context, id hash.Hash) (Blob, bool, error)
	// PutBlob stores data and returns its id.
	PutBlob(ctx context.Context, data []byte) (hash.Hash, error)

	// GetCommit returns the commit addressed by id, or ok=false if absent.
	GetCommit(ctx context.Context, id hash.Hash) (Commit, bool, error)
	// PutCommit stores c (whose ID field is ignored and recomputed) and
	// returns its id.
	PutCommit(ctx context.Context, c Commit) (hash.Hash, error)
}

// HashBlob computes the id a blob with the given bytes would have, without
// requiring a Store round-trip. gitstore derives blob ids with it; memstore
// and the filter registry call hash.Of directly, which gives the same id.
func HashBlob(data []byte) hash.Hash {
	return hash.Of(data)
}
