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
	"github.com/stretchr/testify/require"
)

func TestParseEmptyIsNop(t *testing.T) {
	reg := NewRegistry()
	id, err := Parse(reg, "")
	require.NoError(t, err)
	assert.True(t, reg.IsNop(id))
}

func TestParseSimpleKeywords(t *testing.T) {
	reg := NewRegistry()
	cases := map[string]Kind{
		":nop":    KindNop,
		":empty":  KindEmpty,
		":SQUASH": KindSquash,
		":DIRS":   KindDirs,
		":FOLD":   KindFold,
	}
	for spec, want := range cases {
		id, err := Parse(reg, spec)
		require.NoError(t, err, spec)
		assert.Equal(t, want, reg.Lookup(id).Kind, spec)
	}
}

func TestParseSubdir(t *testing.T) {
	reg := NewRegistry()
	id, err := Parse(reg, ":/sub")
	require.NoError(t, err)
	op := reg.Lookup(id)
	assert.Equal(t, KindSubdir, op.Kind)
	assert.Equal(t, "sub", op.Path)
}

func TestParseMountRoundTrip(t *testing.T) {
	reg := NewRegistry()
	id, err := Parse(reg, "::src/")
	require.NoError(t, err)
	op := reg.Lookup(id)
	require.Equal(t, KindChain, op.Kind)
	a, b := reg.Lookup(op.A), reg.Lookup(op.B)
	assert.Equal(t, KindSubdir, a.Kind)
	assert.Equal(t, KindPrefix, b.Kind)
	assert.Equal(t, "src", a.Path)
	assert.Equal(t, "src", b.Path)
	assert.Equal(t, "::src/", Spec(reg, id))
}

func TestParseFileAndGlob(t *testing.T) {
	reg := NewRegistry()

	fileID, err := Parse(reg, "::README.md")
	require.NoError(t, err)
	assert.Equal(t, KindFile, reg.Lookup(fileID).Kind)

	globID, err := Parse(reg, "::*.go")
	require.NoError(t, err)
	op := reg.Lookup(globID)
	assert.Equal(t, KindGlob, op.Kind)
	assert.Equal(t, "*.go", op.Pattern)
}

func TestParseCompose(t *testing.T) {
	reg := NewRegistry()
	id, err := Parse(reg, ":[::foo/,::bar/]")
	require.NoError(t, err)
	op := reg.Lookup(id)
	require.Equal(t, KindCompose, op.Kind)
	require.Len(t, op.Items, 2)
	assert.Equal(t, "::foo/", Spec(reg, op.Items[0]))
	assert.Equal(t, "::bar/", Spec(reg, op.Items[1]))
}

func TestParseExclude(t *testing.T) {
	reg := NewRegistry()
	id, err := Parse(reg, ":exclude[::secret]")
	require.NoError(t, err)
	op := reg.Lookup(id)
	require.Equal(t, KindSubtract, op.Kind)
	assert.True(t, reg.IsNop(op.A))
	assert.Equal(t, ":exclude[::secret]", Spec(reg, id))
}

func TestParseWorkspaceFileFallback(t *testing.T) {
	reg := NewRegistry()
	id, err := Parse(reg, "lib = :/src/lib\nother = :/src/other")
	require.NoError(t, err)
	op := reg.Lookup(id)
	require.Equal(t, KindCompose, op.Kind)
	require.Len(t, op.Items, 2)

	first := reg.Lookup(op.Items[0])
	require.Equal(t, KindChain, first.Kind)
	assert.Equal(t, "lib", reg.Lookup(first.B).Path)
}

func TestParseWorkspaceBareLine(t *testing.T) {
	reg := NewRegistry()
	id, err := Parse(reg, ":/src/lib\n:/src/other")
	require.NoError(t, err)
	op := reg.Lookup(id)
	require.Equal(t, KindCompose, op.Kind)
	assert.Len(t, op.Items, 2)
}

func TestParseChainConcatenation(t *testing.T) {
	reg := NewRegistry()
	id, err := Parse(reg, ":/a:prefix=b")
	require.NoError(t, err)
	op := reg.Lookup(id)
	require.Equal(t, KindChain, op.Kind)
	assert.Equal(t, KindSubdir, reg.Lookup(op.A).Kind)
	assert.Equal(t, KindPrefix, reg.Lookup(op.B).Kind)
}

func TestParseInvalid(t *testing.T) {
	reg := NewRegistry()
	_, err := Parse(reg, ":[unterminated")
	assert.Error(t, err)
}

func TestSpecRoundTrip(t *testing.T) {
	reg := NewRegistry()
	specs := []string{":nop", ":empty", ":SQUASH", ":DIRS", ":FOLD", ":/a/b", ":prefix=a/b", "::file.txt", "::*.go", "::a/", ":[::a/,::b/]", ":exclude[::a,::b]"}
	for _, s := range specs {
		id, err := Parse(reg, s)
		require.NoError(t, err, s)
		assert.Equal(t, s, Spec(reg, id), s)
	}
}
