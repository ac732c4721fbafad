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
	"strings"

	"github.com/pkg/errors"

	"github.com/vista-vcs/vista/verrors"
)

// ErrParse is wrapped by every error this package returns for malformed
// input; it is verrors' ParseError kind (§7).
var ErrParse = verrors.ErrParse

func parseErrf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrParse, format, args...)
}

// Parse parses a filter spec (§6.1) or, failing that, a workspace file
// (§4.2), simplifies the result (§4.4) and interns it. Empty input parses
// as Nop.
func Parse(reg *Registry, spec string) (ID, error) {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return Optimize(reg, reg.Intern(Nop())), nil
	}

	if id, rest, err := parseChain(reg, trimmed); err == nil && rest == "" {
		return Optimize(reg, id), nil
	}

	items, err := ParseWorkspaceFile(reg, spec)
	if err != nil {
		return ID{}, parseErrf("neither a filter chain nor a workspace file: %s", spec)
	}
	return Optimize(reg, reg.Intern(Compose(items...))), nil
}

// MustParse is Parse, panicking on error; used by tests and call sites that
// construct filters from trusted literals.
func MustParse(reg *Registry, spec string) ID {
	id, err := Parse(reg, spec)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseWorkspaceFile parses the newline-separated workspace-file grammar of
// §4.2 into the list of (already interned, but not yet simplified as a
// whole) item ids that a Compose should wrap.
func ParseWorkspaceFile(reg *Registry, text string) ([]ID, error) {
	var items []ID
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, err := parseWorkspaceLine(reg, line)
		if err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	return items, nil
}

func parseWorkspaceLine(reg *Registry, line string) (ID, error) {
	if eq := strings.IndexByte(line, '='); eq >= 0 {
		path := strings.TrimSpace(line[:eq])
		spec := strings.TrimSpace(line[eq+1:])
		if path != "" && !strings.Contains(path, ":") {
			inner, rest, err := parseChain(reg, spec)
			if err != nil || rest != "" {
				return ID{}, parseErrf("invalid workspace entry %q", line)
			}
			prefixID := reg.Intern(Prefix(path))
			return reg.Intern(Chain(inner, prefixID)), nil
		}
	}
	id, rest, err := parseChain(reg, line)
	if err != nil || rest != "" {
		return ID{}, parseErrf("invalid workspace entry %q", line)
	}
	return id, nil
}

// parseChain parses a maximal run of items from the front of s, returning
// the left-associated Chain id and whatever text (if any) it could not
// consume.
func parseChain(reg *Registry, s string) (ID, string, error) {
	id, rest, err := parseItem(reg, s)
	if err != nil {
		return ID{}, "", err
	}
	for rest != "" && strings.HasPrefix(rest, ":") {
		nextID, nextRest, err := parseItem(reg, rest)
		if err != nil {
			break
		}
		id = reg.Intern(Chain(id, nextID))
		rest = nextRest
	}
	return id, rest, nil
}

// parseItem parses exactly one grammar item from the front of s.
func parseItem(reg *Registry, s string) (ID, string, error) {
	if !strings.HasPrefix(s, ":") {
		return ID{}, "", parseErrf("expected ':' at %q", s)
	}

	switch {
	case matchKeyword(s, ":nop"):
		return reg.Intern(Nop()), s[len(":nop"):], nil
	case matchKeyword(s, ":empty"):
		return reg.Intern(Empty()), s[len(":empty"):], nil
	case matchKeyword(s, ":SQUASH"):
		return reg.Intern(Squash()), s[len(":SQUASH"):], nil
	case matchKeyword(s, ":DIRS"):
		return reg.Intern(Dirs()), s[len(":DIRS"):], nil
	case matchKeyword(s, ":FOLD"):
		return reg.Intern(Fold()), s[len(":FOLD"):], nil
	case strings.HasPrefix(s, ":prefix="):
		path, rest := scanPath(s[len(":prefix="):])
		return reg.Intern(Prefix(path)), rest, nil
	case strings.HasPrefix(s, ":workspace="):
		path, rest := scanPath(s[len(":workspace="):])
		return reg.Intern(Workspace(path)), rest, nil
	case strings.HasPrefix(s, ":exclude["):
		inner, rest, err := scanBracketed(s[len(":exclude"):])
		if err != nil {
			return ID{}, "", err
		}
		items, err := parseCSV(reg, inner)
		if err != nil {
			return ID{}, "", err
		}
		nopID := reg.Intern(Nop())
		composeID := reg.Intern(Compose(items...))
		return reg.Intern(Subtract(nopID, composeID)), rest, nil
	case strings.HasPrefix(s, ":["):
		inner, rest, err := scanBracketed(s[1:])
		if err != nil {
			return ID{}, "", err
		}
		items, err := parseCSV(reg, inner)
		if err != nil {
			return ID{}, "", err
		}
		return reg.Intern(Compose(items...)), rest, nil
	case strings.HasPrefix(s, "::"):
		raw, rest := scanPath(s[len("::"):])
		if raw == "" {
			return ID{}, "", parseErrf("empty path in %q", s)
		}
		if strings.HasSuffix(raw, "/") && len(raw) > 1 {
			path := strings.TrimSuffix(raw, "/")
			subID := reg.Intern(Subdir(path))
			prefixID := reg.Intern(Prefix(path))
			return reg.Intern(Chain(subID, prefixID)), rest, nil
		}
		if strings.Contains(raw, "*") {
			return reg.Intern(Glob(raw)), rest, nil
		}
		return reg.Intern(File(raw)), rest, nil
	case strings.HasPrefix(s, ":/"):
		path, rest := scanPath(s[len(":/"):])
		return reg.Intern(Subdir(path)), rest, nil
	default:
		return ID{}, "", parseErrf("unrecognized item at %q", s)
	}
}

// matchKeyword reports whether s begins with keyword immediately followed
// by another item (':'), a bracket terminator, a comma, or the end of
// input -- i.e. the keyword isn't actually a prefix of a longer token like
// ":empty=foo".
func matchKeyword(s, keyword string) bool {
	if !strings.HasPrefix(s, keyword) {
		return false
	}
	rest := s[len(keyword):]
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ':', ',', ']':
		return true
	default:
		return false
	}
}

// scanPath reads a PATH token: everything up to (but not including) the
// next item separator, comma, closing bracket or newline.
func scanPath(s string) (path, rest string) {
	i := strings.IndexAny(s, ":,]\n")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// scanBracketed expects s to start with '[' and returns the text strictly
// between it and its matching ']', plus whatever trails the closing
// bracket.
func scanBracketed(s string) (inner, rest string, err error) {
	if !strings.HasPrefix(s, "[") {
		return "", "", parseErrf("expected '[' at %q", s)
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], nil
			}
		}
	}
	return "", "", parseErrf("unbalanced '[' in %q", s)
}

// parseCSV splits s on top-level commas (respecting bracket nesting) and
// parses each piece as a full chain.
func parseCSV(reg *Registry, s string) ([]ID, error) {
	pieces := splitTopLevel(s)
	ids := make([]ID, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, rest, err := parseChain(reg, p)
		if err != nil || rest != "" {
			return nil, parseErrf("invalid compose element %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitTopLevel(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}
