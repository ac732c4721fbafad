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

// Package gitstore is the on-disk store.Store backend: it opens a git
// object database through go-git/go-billy and translates the engine's
// Tree/Commit/Blob model to and from go-git's plumbing/object types, so the
// filter algebra runs directly against real git objects (loose objects,
// packfiles via go-git's own packing) instead of a bespoke wire format.
package gitstore

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/pkg/errors"

	"github.com/vista-vcs/vista/hash"
	"github.com/vista-vcs/vista/store"
)

// Store wraps a git object database opened through go-git/go-billy. It
// satisfies store.Store, but the identity it hands out is always a vista
// hash.Hash (§3.3's content address over our own canonical encodings), not
// git's native object id: the two hashing schemes differ (vista hashes
// truncated SHA-256 over its own tree/commit encodings; git hashes SHA-1
// over its own "<type> <len>\0<payload>" framing), so Store keeps a small
// bidirectional index translating between them. The index is populated as
// objects are written and is process-lifetime only; it is not persisted
// alongside the repository, so a Store must be the sole writer of the ids
// it later expects to resolve (true of every object this module's engine
// ever writes, since every subtree/parent is always Put before the object
// referencing it, per treeengine's write-immediately discipline).
type Store struct {
	storer storer.EncodedObjectStorer

	mu      sync.Mutex
	toGit   map[hash.Hash]plumbing.Hash
	toVista map[plumbing.Hash]hash.Hash

	emptyTreeOnce sync.Once
	emptyTreeGit  plumbing.Hash
	emptyTreeErr  error
}

// Open opens (creating if absent) a git object database rooted at dir,
// using go-billy's OS filesystem and go-git's filesystem-backed object
// storage with its default object cache.
func Open(dir string) (*Store, error) {
	fs := osfs.New(dir)
	st := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	return &Store{
		storer:  st,
		toGit:   map[hash.Hash]plumbing.Hash{},
		toVista: map[plumbing.Hash]hash.Hash{},
	}, nil
}

func (s *Store) record(id hash.Hash, gh plumbing.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toGit[id] = gh
	s.toVista[gh] = id
}

func (s *Store) gitHash(id hash.Hash) (plumbing.Hash, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gh, ok := s.toGit[id]
	return gh, ok
}

func (s *Store) vistaID(gh plumbing.Hash) (hash.Hash, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.toVista[gh]
	return id, ok
}

// ensureEmptyTree writes (once) the canonical empty git tree object, so a
// store.Commit whose TreeID is hash.Empty still has a real git tree to
// point at -- git, unlike this module's model, has no implicit null tree.
func (s *Store) ensureEmptyTree() (plumbing.Hash, error) {
	s.emptyTreeOnce.Do(func() {
		obj := s.storer.NewEncodedObject()
		tree := &object.Tree{}
		if err := tree.Encode(obj); err != nil {
			s.emptyTreeErr = err
			return
		}
		gh, err := s.storer.SetEncodedObject(obj)
		if err != nil {
			s.emptyTreeErr = err
			return
		}
		s.emptyTreeGit = gh
		s.record(hash.Empty, gh)
	})
	return s.emptyTreeGit, s.emptyTreeErr
}

func gitFileMode(k store.EntryKind) (filemode.FileMode, error) {
	switch k {
	case store.KindBlob:
		return filemode.Regular, nil
	case store.KindTree:
		return filemode.Dir, nil
	case store.KindGitLink:
		return filemode.Submodule, nil
	default:
		return 0, errors.Errorf("gitstore: unknown entry kind %d", k)
	}
}

func vistaEntryKind(m filemode.FileMode) (store.EntryKind, error) {
	switch m {
	case filemode.Regular, filemode.Executable, filemode.Symlink, filemode.Deprecated:
		return store.KindBlob, nil
	case filemode.Dir:
		return store.KindTree, nil
	case filemode.Submodule:
		return store.KindGitLink, nil
	default:
		return 0, errors.Errorf("gitstore: unknown git file mode %v", m)
	}
}

// provenanceTrailer marks the git-trailer line gitstore appends to a
// commit's message to round-trip store.Provenance, which has no native git
// equivalent. Stripped back out by splitProvenance on read.
const provenanceTrailer = "Vista-Provenance: "

func appendProvenance(message string, p store.Provenance) string {
	if p.IsZero() {
		return message
	}
	trailer := provenanceTrailer + p.FilterID.String() + " " + p.SourceID.String() + "\n"
	if message == "" || strings.HasSuffix(message, "\n") {
		return message + trailer
	}
	return message + "\n" + trailer
}

// splitProvenance separates a gitstore-authored trailer line back off the
// end of message, returning the original message and the Provenance it
// encoded (zero if none is present).
func splitProvenance(message string) (string, store.Provenance) {
	trimmed := strings.TrimSuffix(message, "\n")
	idx := strings.LastIndex(trimmed, "\n"+provenanceTrailer)
	var rest string
	if idx < 0 {
		if !strings.HasPrefix(trimmed, provenanceTrailer) {
			return message, store.Provenance{}
		}
		rest = trimmed[len(provenanceTrailer):]
		trimmed = ""
	} else {
		rest = trimmed[idx+1+len(provenanceTrailer):]
		trimmed = trimmed[:idx]
	}
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return message, store.Provenance{}
	}
	filterID, ok1 := hash.MaybeParse(fields[0])
	sourceID, ok2 := hash.MaybeParse(fields[1])
	if !ok1 || !ok2 {
		return message, store.Provenance{}
	}
	return trimmed, store.Provenance{FilterID: filterID, SourceID: sourceID}
}

// treeEntryLess orders entries the way git requires on disk: compared as
// if a directory's name carried a trailing "/", so a directory named "foo"
// sorts after a file "foo.txt" ('/' > '.'), while a file named "foo" sorts
// before "foo.txt".
func treeEntryLess(a, b object.TreeEntry) bool {
	an, bn := a.Name, b.Name
	if a.Mode == filemode.Dir {
		an += "/"
	}
	if b.Mode == filemode.Dir {
		bn += "/"
	}
	return an < bn
}

func (s *Store) GetTree(_ context.Context, id hash.Hash) (store.Tree, bool, error) {
	if id.IsEmpty() {
		return store.EmptyTree, true, nil
	}
	gh, ok := s.gitHash(id)
	if !ok {
		return store.Tree{}, false, nil
	}
	obj, err := s.storer.EncodedObject(plumbing.TreeObject, gh)
	if err == plumbing.ErrObjectNotFound {
		return store.Tree{}, false, nil
	}
	if err != nil {
		return store.Tree{}, false, err
	}
	tree, err := object.DecodeTree(s.storer, obj)
	if err != nil {
		return store.Tree{}, false, errors.Wrapf(err, "gitstore: decoding tree %s", id)
	}
	entries := make([]store.Entry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		kind, err := vistaEntryKind(e.Mode)
		if err != nil {
			return store.Tree{}, false, err
		}
		childID, ok := s.vistaID(e.Hash)
		if !ok {
			return store.Tree{}, false, errors.Errorf("gitstore: tree %s entry %q (git %s) was never written through this store", id, e.Name, e.Hash)
		}
		entries = append(entries, store.Entry{Name: e.Name, Kind: kind, ID: childID})
	}
	return store.NewTree(entries...), true, nil
}

func (s *Store) PutTree(_ context.Context, t store.Tree) (hash.Hash, error) {
	id := store.TreeID(t)
	if id.IsEmpty() {
		_, err := s.ensureEmptyTree()
		return id, err
	}
	if _, ok := s.gitHash(id); ok {
		return id, nil
	}

	srcEntries := t.Entries()
	entries := make([]object.TreeEntry, 0, len(srcEntries))
	for _, e := range srcEntries {
		mode, err := gitFileMode(e.Kind)
		if err != nil {
			return hash.Empty, err
		}
		gh, ok := s.gitHash(e.ID)
		if !ok {
			return hash.Empty, errors.Errorf("gitstore: tree entry %q (%s) was not written to this store before its parent tree", e.Name, e.ID)
		}
		entries = append(entries, object.TreeEntry{Name: e.Name, Mode: mode, Hash: gh})
	}
	sort.Slice(entries, func(i, j int) bool { return treeEntryLess(entries[i], entries[j]) })

	tree := &object.Tree{Entries: entries}
	obj := s.storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return hash.Empty, errors.Wrapf(err, "gitstore: encoding tree %s", id)
	}
	gh, err := s.storer.SetEncodedObject(obj)
	if err != nil {
		return hash.Empty, err
	}
	s.record(id, gh)
	return id, nil
}

func (s *Store) GetBlob(_ context.Context, id hash.Hash) (store.Blob, bool, error) {
	gh, ok := s.gitHash(id)
	if !ok {
		return store.Blob{}, false, nil
	}
	obj, err := s.storer.EncodedObject(plumbing.BlobObject, gh)
	if err == plumbing.ErrObjectNotFound {
		return store.Blob{}, false, nil
	}
	if err != nil {
		return store.Blob{}, false, err
	}
	blob := &object.Blob{}
	if err := blob.Decode(obj); err != nil {
		return store.Blob{}, false, errors.Wrapf(err, "gitstore: decoding blob %s", id)
	}
	r, err := blob.Reader()
	if err != nil {
		return store.Blob{}, false, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return store.Blob{}, false, err
	}
	return store.Blob{ID: id, Data: data}, true, nil
}

func (s *Store) PutBlob(_ context.Context, data []byte) (hash.Hash, error) {
	id := store.HashBlob(data)
	if _, ok := s.gitHash(id); ok {
		return id, nil
	}
	obj := s.storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		return hash.Empty, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return hash.Empty, err
	}
	if err := w.Close(); err != nil {
		return hash.Empty, err
	}
	gh, err := s.storer.SetEncodedObject(obj)
	if err != nil {
		return hash.Empty, err
	}
	s.record(id, gh)
	return id, nil
}

func (s *Store) GetCommit(_ context.Context, id hash.Hash) (store.Commit, bool, error) {
	gh, ok := s.gitHash(id)
	if !ok {
		return store.Commit{}, false, nil
	}
	obj, err := s.storer.EncodedObject(plumbing.CommitObject, gh)
	if err == plumbing.ErrObjectNotFound {
		return store.Commit{}, false, nil
	}
	if err != nil {
		return store.Commit{}, false, err
	}
	commit, err := object.DecodeCommit(s.storer, obj)
	if err != nil {
		return store.Commit{}, false, errors.Wrapf(err, "gitstore: decoding commit %s", id)
	}

	treeID, ok := s.vistaID(commit.TreeHash)
	if !ok {
		return store.Commit{}, false, errors.Errorf("gitstore: commit %s tree %s was never written through this store", id, commit.TreeHash)
	}
	parents := make([]hash.Hash, 0, len(commit.ParentHashes))
	for _, ph := range commit.ParentHashes {
		pid, ok := s.vistaID(ph)
		if !ok {
			return store.Commit{}, false, errors.Errorf("gitstore: commit %s parent %s was never written through this store", id, ph)
		}
		parents = append(parents, pid)
	}

	message, provenance := splitProvenance(commit.Message)
	return store.Commit{
		ID:      id,
		TreeID:  treeID,
		Parents: parents,
		Metadata: store.Metadata{
			AuthorName:  commit.Author.Name,
			AuthorEmail: commit.Author.Email,
			Message:     message,
			UnixSeconds: commit.Author.When.Unix(),
		},
		Provenance: provenance,
	}, true, nil
}

func (s *Store) PutCommit(_ context.Context, c store.Commit) (hash.Hash, error) {
	id := store.CommitID(c)
	if _, ok := s.gitHash(id); ok {
		return id, nil
	}

	treeGH, ok := s.gitHash(c.TreeID)
	if !ok {
		var err error
		treeGH, err = s.ensureEmptyTree()
		if err != nil {
			return hash.Empty, err
		}
		if !c.TreeID.IsEmpty() {
			return hash.Empty, errors.Errorf("gitstore: commit tree %s was not written to this store before the commit", c.TreeID)
		}
	}
	parents := make([]plumbing.Hash, 0, len(c.Parents))
	for _, p := range c.Parents {
		pgh, ok := s.gitHash(p)
		if !ok {
			return hash.Empty, errors.Errorf("gitstore: commit parent %s was not written to this store before the commit", p)
		}
		parents = append(parents, pgh)
	}

	when := time.Unix(c.Metadata.UnixSeconds, 0).UTC()
	sig := object.Signature{Name: c.Metadata.AuthorName, Email: c.Metadata.AuthorEmail, When: when}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      appendProvenance(c.Metadata.Message, c.Provenance),
		TreeHash:     treeGH,
		ParentHashes: parents,
	}
	obj := s.storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return hash.Empty, errors.Wrapf(err, "gitstore: encoding commit %s", id)
	}
	gh, err := s.storer.SetEncodedObject(obj)
	if err != nil {
		return hash.Empty, err
	}
	s.record(id, gh)
	return id, nil
}

var _ store.Store = (*Store)(nil)
