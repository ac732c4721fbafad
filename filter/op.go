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

// Package filter implements the filter algebra: the closed set of operator
// variants (§3.2), the process-wide interning registry that gives each
// operator term a stable content-addressed identity (§4.1), the textual
// parser/pretty-printer (§4.2, §6.1), and the algebraic simplifier (§4.4).
package filter

import "github.com/vista-vcs/vista/hash"

// ID is a Filter's identity: the content hash of its canonical textual
// form. Equal terms hash equal.
type ID = hash.Hash

// Kind enumerates the operator variants of §3.2. An Op carries exactly the
// fields its Kind needs; the rest are zero.
type Kind uint8

const (
	KindNop Kind = iota
	KindEmpty
	KindFold
	KindSquash
	KindDirs
	KindFile
	KindPrefix
	KindSubdir
	KindWorkspace
	KindGlob
	KindCompose
	KindChain
	KindSubtract
)

func (k Kind) String() string {
	switch k {
	case KindNop:
		return "nop"
	case KindEmpty:
		return "empty"
	case KindFold:
		return "fold"
	case KindSquash:
		return "squash"
	case KindDirs:
		return "dirs"
	case KindFile:
		return "file"
	case KindPrefix:
		return "prefix"
	case KindSubdir:
		return "subdir"
	case KindWorkspace:
		return "workspace"
	case KindGlob:
		return "glob"
	case KindCompose:
		return "compose"
	case KindChain:
		return "chain"
	case KindSubtract:
		return "subtract"
	default:
		return "unknown"
	}
}

// Op is one operator term of the filter algebra. Compose/Chain/Subtract
// reference their children by ID rather than embedding them directly: the
// registry is the single owner of operator values, and children are
// resolved through Lookup. This is what lets structurally identical
// subterms (e.g. two branches that both reduce to ":nop") collapse to one
// registry entry.
type Op struct {
	Kind Kind

	// Path holds the argument for File, Prefix, Subdir and Workspace.
	Path string

	// Pattern holds the glob text for Glob.
	Pattern string

	// Items holds the branches of Compose, in declared order.
	Items []ID

	// A and B hold the operands of Chain (A then B) and Subtract (A minus B).
	A, B ID
}

// Nop is the identity operator.
func Nop() Op { return Op{Kind: KindNop} }

// Empty maps every tree to the empty tree and every commit to the null id.
func Empty() Op { return Op{Kind: KindEmpty} }

// Fold is tree-identity; at the commit level it overlays filtered parents.
func Fold() Op { return Op{Kind: KindFold} }

// Squash is tree-identity; at the commit level it drops all parents.
func Squash() Op { return Op{Kind: KindSquash} }

// Dirs synthesizes a directory-index tree.
func Dirs() Op { return Op{Kind: KindDirs} }

// File extracts a single blob at path.
func File(path string) Op { return Op{Kind: KindFile, Path: path} }

// Prefix mounts the input tree under path.
func Prefix(path string) Op { return Op{Kind: KindPrefix, Path: path} }

// Subdir descends into path.
func Subdir(path string) Op { return Op{Kind: KindSubdir, Path: path} }

// Workspace reads path/workspace.josh and evaluates it as a compose filter.
func Workspace(path string) Op { return Op{Kind: KindWorkspace, Path: path} }

// Glob keeps blobs whose path matches pattern.
func Glob(pattern string) Op { return Op{Kind: KindGlob, Pattern: pattern} }

// Compose overlays the outputs of each of items, later winning on conflict.
func Compose(items ...ID) Op { return Op{Kind: KindCompose, Items: items} }

// Chain is functional composition: b after a.
func Chain(a, b ID) Op { return Op{Kind: KindChain, A: a, B: b} }

// Subtract is apply(a) minus round_trip(b).
func Subtract(a, b ID) Op { return Op{Kind: KindSubtract, A: a, B: b} }
