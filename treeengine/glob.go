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

// Package treeengine implements the tree engine (§4.3): apply and unapply
// of a filter against a single store.Tree, plus the auxiliary tree
// primitives of §4.7 (overlay, subtract, replace, dirtree) that apply and
// unapply are built from.
package treeengine

import "strings"

// matchGlob reports whether path matches pattern under the rules of §3.2's
// Glob variant: case-sensitive, '*' and '?' never cross a '/' (literal
// separator), and a leading '.' in a path segment must be matched by a
// literal '.' in the pattern, never by a wildcard (literal leading dot,
// the traditional shell/fnmatch convention).
func matchGlob(pattern, path string) bool {
	patSegs := strings.Split(pattern, "/")
	pathSegs := strings.Split(path, "/")
	if len(patSegs) != len(pathSegs) {
		return false
	}
	for i := range patSegs {
		if !matchSegment(patSegs[i], pathSegs[i]) {
			return false
		}
	}
	return true
}

func matchSegment(pattern, segment string) bool {
	if strings.HasPrefix(segment, ".") && !strings.HasPrefix(pattern, ".") {
		return false
	}
	return fnmatch(pattern, segment)
}

// fnmatch is a small recursive glob matcher over a single path segment:
// '*' matches zero or more characters, '?' matches exactly one, everything
// else matches literally.
func fnmatch(pattern, s string) bool {
	if pattern == "" {
		return s == ""
	}
	switch pattern[0] {
	case '*':
		if fnmatch(pattern[1:], s) {
			return true
		}
		for i := 0; i < len(s); i++ {
			if fnmatch(pattern[1:], s[i+1:]) {
				return true
			}
		}
		return false
	case '?':
		if s == "" {
			return false
		}
		return fnmatch(pattern[1:], s[1:])
	default:
		if s == "" || s[0] != pattern[0] {
			return false
		}
		return fnmatch(pattern[1:], s[1:])
	}
}
