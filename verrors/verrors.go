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

// Package verrors defines the error kinds of §7: distinct sentinel errors,
// each wrapped with github.com/pkg/errors stack context at the point of
// creation, so every error that crosses a package boundary in this module
// carries both a kind (for errors.Is) and a stack (for diagnosis).
package verrors

import "github.com/pkg/errors"

// Sentinel kinds. Test and call-site code matches on these with errors.Is;
// the wrapped stack context is attached by the constructors below, not
// by comparing the sentinel directly.
var (
	// ErrParse marks a malformed filter spec or workspace file.
	ErrParse = errors.New("verrors: parse error")
	// ErrIrreversibleFilter marks an Unapply call on an operator outside
	// the invertible subset.
	ErrIrreversibleFilter = errors.New("verrors: filter not reversible")
	// ErrStore marks a failed underlying object read/write.
	ErrStore = errors.New("verrors: store error")
	// ErrInvalidPattern marks a malformed glob pattern.
	ErrInvalidPattern = errors.New("verrors: invalid pattern")
	// ErrMissingFilter marks a registry lookup miss: a programmer error,
	// never user-triggerable, recovered at the transaction boundary (see
	// history.Transaction.ApplyToCommit) and re-surfaced through StoreError
	// with ErrMissingFilter as its cause.
	ErrMissingFilter = errors.New("verrors: missing filter")
)

// ParseError wraps ErrParse with context describing what failed to parse.
func ParseError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrParse, format, args...)
}

// IrreversibleFilter wraps ErrIrreversibleFilter with the offending kind.
func IrreversibleFilter(format string, args ...interface{}) error {
	return errors.Wrapf(ErrIrreversibleFilter, format, args...)
}

// StoreError wraps cause with a "verrors: store error" message and stack
// context. errors.Is matches cause only; callers mark an error as the
// StoreError kind by passing ErrStore as cause (as store.ErrUnknownObject
// does).
func StoreError(cause error, format string, args ...interface{}) error {
	return errors.Wrapf(cause, "verrors: store error: "+format, args...)
}

// InvalidPattern wraps ErrInvalidPattern with the offending pattern text.
func InvalidPattern(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidPattern, format, args...)
}

// MissingFilter wraps ErrMissingFilter with the offending id's text form.
func MissingFilter(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMissingFilter, format, args...)
}

// Recover turns a panic value produced by filter.Registry.Lookup (or any
// other MissingFilter-shaped invariant violation) into a StoreError-shaped
// error, per §7's documented panic/recover convention. logFatal, when
// non-nil, is called with the recovered value before the panic is
// translated -- history.Transaction.ApplyToCommit passes a function that
// logs it at Error level; tests pass nil.
func Recover(err *error, logFatal func(recovered interface{})) {
	if r := recover(); r != nil {
		if logFatal != nil {
			logFatal(r)
		}
		*err = StoreError(ErrMissingFilter, "recovered panic: %v", r)
	}
}
