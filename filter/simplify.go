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

// Optimize rewrites the filter rooted at id into the canonical form of
// §4.4, recursively normalizing every subterm, and returns the (possibly
// identical) id of the result. Optimize is idempotent:
// Optimize(reg, Optimize(reg, id)) == Optimize(reg, id).
//
// Rules applied:
//   - Compose of exactly one element collapses to that element.
//   - Chain(Empty, _) and Chain(_, Empty) collapse to Empty.
//   - Chain(Nop, b) collapses to b; Chain(a, Nop) collapses to a.
//   - Chain(a, Chain(b, c)) re-associates to Chain(Chain(a, b), c).
//
// Two things Optimize deliberately does NOT do, both called out in §4.4:
// it never drops a Nop branch out of a multi-element Compose (overlaying
// the untouched input tree is observable), and it never collapses
// Chain(Subdir(p), Prefix(p)) any further -- that specific shape is the
// "mount round-trip" and has its own pretty-printed identity (::p/).
func Optimize(reg *Registry, id ID) ID {
	op := reg.Lookup(id)
	switch op.Kind {
	case KindChain:
		a := Optimize(reg, op.A)
		b := Optimize(reg, op.B)
		return optimizeChain(reg, a, b)
	case KindSubtract:
		a := Optimize(reg, op.A)
		b := Optimize(reg, op.B)
		return reg.Intern(Subtract(a, b))
	case KindCompose:
		items := make([]ID, len(op.Items))
		for i, it := range op.Items {
			items[i] = Optimize(reg, it)
		}
		if len(items) == 1 {
			return items[0]
		}
		return reg.Intern(Compose(items...))
	default:
		return id
	}
}

func optimizeChain(reg *Registry, a, b ID) ID {
	opA, opB := reg.Lookup(a), reg.Lookup(b)

	if opA.Kind == KindEmpty || opB.Kind == KindEmpty {
		return reg.Intern(Empty())
	}
	if opA.Kind == KindNop {
		return b
	}
	if opB.Kind == KindNop {
		return a
	}
	if opB.Kind == KindChain {
		newLeft := optimizeChain(reg, a, opB.A)
		return optimizeChain(reg, newLeft, opB.B)
	}
	return reg.Intern(Chain(a, b))
}
