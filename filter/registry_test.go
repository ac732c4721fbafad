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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	id1 := reg.Intern(Subdir("a/b"))
	id2 := reg.Intern(Subdir("a/b"))
	assert.Equal(t, id1, id2)
}

func TestInternNeverRemoves(t *testing.T) {
	reg := NewRegistry()
	id := reg.Intern(Subdir("x"))
	_ = reg.Intern(Subdir("y"))
	op, ok := reg.TryLookup(id)
	assert.True(t, ok)
	assert.Equal(t, "x", op.Path)
}

func TestIsNop(t *testing.T) {
	reg := NewRegistry()
	nopID := reg.Intern(Nop())
	assert.True(t, reg.IsNop(nopID))
	otherID := reg.Intern(Empty())
	assert.False(t, reg.IsNop(otherID))
}

func TestLookupUnknownPanics(t *testing.T) {
	reg := NewRegistry()
	var bogus ID
	assert.Panics(t, func() {
		reg.Lookup(bogus)
	})
}

func TestDistinctTermsGetDistinctIds(t *testing.T) {
	reg := NewRegistry()
	a := reg.Intern(Subdir("a"))
	b := reg.Intern(Subdir("b"))
	assert.NotEqual(t, a, b)
}
