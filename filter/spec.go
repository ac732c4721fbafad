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

import "strings"

// Spec renders the filter registered under id in the canonical textual
// form of §6.1. It is the inverse of Parse on every grammar-expressible
// term, and is also what Intern hashes to derive identity, so structurally
// equal terms always print (and therefore hash) identically.
func Spec(reg *Registry, id ID) string {
	return SpecOp(reg, reg.Lookup(id))
}

// SpecOp renders op directly, resolving any child ids through reg. Used by
// Intern before op itself has been assigned an id.
func SpecOp(reg *Registry, op Op) string {
	switch op.Kind {
	case KindNop:
		return ":nop"
	case KindEmpty:
		return ":empty"
	case KindFold:
		return ":FOLD"
	case KindSquash:
		return ":SQUASH"
	case KindDirs:
		return ":DIRS"
	case KindFile:
		return "::" + op.Path
	case KindPrefix:
		return ":prefix=" + op.Path
	case KindSubdir:
		return ":/" + op.Path
	case KindWorkspace:
		return ":workspace=" + op.Path
	case KindGlob:
		return "::" + op.Pattern
	case KindCompose:
		parts := make([]string, len(op.Items))
		for i, item := range op.Items {
			parts[i] = Spec(reg, item)
		}
		return ":[" + strings.Join(parts, ",") + "]"
	case KindChain:
		return specChain(reg, op.A, op.B)
	case KindSubtract:
		return specSubtract(reg, op.A, op.B)
	default:
		return ":nop"
	}
}

// specChain prints a two-element chain, recognizing the Subdir(p)+Prefix(p)
// round-trip mount (§4.4) as the special ::p/ form. Any other pair simply
// concatenates, since the grammar's chain production is item{item}.
func specChain(reg *Registry, a, b ID) string {
	opA, opB := reg.Lookup(a), reg.Lookup(b)
	if opA.Kind == KindSubdir && opB.Kind == KindPrefix && opA.Path == opB.Path {
		return "::" + opA.Path + "/"
	}
	return Spec(reg, a) + Spec(reg, b)
}

// specSubtract prints the exclusion sugar when the left side is Nop and the
// right side is a Compose (the only shape the grammar's :exclude[...] can
// parse to); otherwise it falls back to a non-grammar but still canonical
// and reparseable-by-nothing-but-stable encoding, since general Subtract
// terms can only arise from direct API construction, not from text.
func specSubtract(reg *Registry, a, b ID) string {
	opA := reg.Lookup(a)
	if opA.Kind == KindNop {
		opB := reg.Lookup(b)
		var items []ID
		if opB.Kind == KindCompose {
			items = opB.Items
		} else {
			items = []ID{b}
		}
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = Spec(reg, item)
		}
		return ":exclude[" + strings.Join(parts, ",") + "]"
	}
	return ":subtract[" + Spec(reg, a) + "," + Spec(reg, b) + "]"
}
