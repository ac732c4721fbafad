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

func TestOptimizeIdempotent(t *testing.T) {
	reg := NewRegistry()
	raw := reg.Intern(Chain(reg.Intern(Subdir("a")), reg.Intern(Chain(reg.Intern(Subdir("b")), reg.Intern(Prefix("c"))))))
	once := Optimize(reg, raw)
	twice := Optimize(reg, once)
	assert.Equal(t, once, twice)
}

func TestOptimizeChainNopIdentity(t *testing.T) {
	reg := NewRegistry()
	sub := reg.Intern(Subdir("a"))
	nop := reg.Intern(Nop())

	assert.Equal(t, sub, Optimize(reg, reg.Intern(Chain(nop, sub))))
	assert.Equal(t, sub, Optimize(reg, reg.Intern(Chain(sub, nop))))
}

func TestOptimizeChainEmptyAbsorbs(t *testing.T) {
	reg := NewRegistry()
	sub := reg.Intern(Subdir("a"))
	empty := reg.Intern(Empty())
	emptyOptimized := Optimize(reg, empty)

	assert.Equal(t, emptyOptimized, Optimize(reg, reg.Intern(Chain(empty, sub))))
	assert.Equal(t, emptyOptimized, Optimize(reg, reg.Intern(Chain(sub, empty))))
}

func TestOptimizeChainReassociatesRight(t *testing.T) {
	reg := NewRegistry()
	a := reg.Intern(Subdir("a"))
	b := reg.Intern(Subdir("b"))
	c := reg.Intern(Subdir("c"))

	rightNested := reg.Intern(Chain(a, reg.Intern(Chain(b, c))))
	got := Optimize(reg, rightNested)
	op := reg.Lookup(got)
	assert := assert.New(t)
	assert.Equal(KindChain, op.Kind)

	left := reg.Lookup(op.A)
	assert.Equal(KindChain, left.Kind)
	assert.Equal(a, left.A)
	assert.Equal(b, left.B)
	assert.Equal(c, op.B)
}

func TestOptimizeComposeSingleton(t *testing.T) {
	reg := NewRegistry()
	sub := reg.Intern(Subdir("a"))
	composed := reg.Intern(Compose(sub))
	assert.Equal(t, sub, Optimize(reg, composed))
}

func TestOptimizeComposeKeepsNopBranch(t *testing.T) {
	reg := NewRegistry()
	nop := reg.Intern(Nop())
	sub := reg.Intern(Subdir("a"))
	composed := reg.Intern(Compose(nop, sub))
	got := Optimize(reg, composed)
	op := reg.Lookup(got)
	assert.Equal(t, KindCompose, op.Kind)
	assert.Len(t, op.Items, 2)
}

func TestOptimizeDoesNotCollapseMountRoundTrip(t *testing.T) {
	reg := NewRegistry()
	id := MustParse(reg, "::p/")
	got := Optimize(reg, id)
	op := reg.Lookup(got)
	assert.Equal(t, KindChain, op.Kind)
	assert.Equal(t, KindSubdir, reg.Lookup(op.A).Kind)
	assert.Equal(t, KindPrefix, reg.Lookup(op.B).Kind)
}
