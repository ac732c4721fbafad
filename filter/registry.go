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

package filter

import (
	"fmt"
	"sync"

	"github.com/vista-vcs/vista/hash"
	"github.com/vista-vcs/vista/verrors"
)

// ErrUnknownFilter is the error wrapped by Lookup when asked for an id the
// registry never interned. Outside of data corruption this is a programmer
// error: ids only ever come from a prior Intern call. It is verrors'
// MissingFilter kind (§7): recovered at the transaction boundary, not meant
// to propagate as an ordinary error.
var ErrUnknownFilter = verrors.ErrMissingFilter

// Registry is the process-wide intern pool of §4.1: a mutex-guarded map
// from FilterId to Op. Insertion is idempotent and entries are never
// removed, so a Registry only ever grows for the lifetime of the process.
type Registry struct {
	mu  sync.Mutex
	ops map[ID]Op
	nop ID
}

// NewRegistry returns an empty Registry, with the well-known Nop id
// precomputed so IsNop never needs to hash anything.
func NewRegistry() *Registry {
	r := &Registry{ops: map[ID]Op{}}
	r.nop = r.Intern(Nop())
	return r
}

// Intern canonicalizes op's textual form, hashes it, inserts it if absent,
// and returns its id. The lock is only held across the map mutation, never
// across any tree/commit I/O (there is none here, but the discipline
// matters if a future Op grows a validating constructor that touches a
// Store).
func (r *Registry) Intern(op Op) ID {
	text := SpecOp(r, op)
	id := hash.Of([]byte(text))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ops[id]; !ok {
		r.ops[id] = op
	}
	return id
}

// Lookup returns the Op registered under id. A miss is a programmer error:
// every id in circulation was produced by Intern.
func (r *Registry) Lookup(id ID) Op {
	r.mu.Lock()
	op, ok := r.ops[id]
	r.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("filter: MissingFilter: %s: %v", id, ErrUnknownFilter))
	}
	return op
}

// TryLookup is the non-panicking form of Lookup, for callers (such as
// workspace re-evaluation) that want to treat an unknown id as a recoverable
// condition instead of an invariant violation.
func (r *Registry) TryLookup(id ID) (Op, bool) {
	r.mu.Lock()
	op, ok := r.ops[id]
	r.mu.Unlock()
	return op, ok
}

// NopID returns the well-known id of Op{Kind: KindNop}.
func (r *Registry) NopID() ID {
	return r.nop
}

// IsNop reports whether id is the well-known Nop id.
func (r *Registry) IsNop(id ID) bool {
	return id == r.nop
}
