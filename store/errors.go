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

package store

import (
	"github.com/vista-vcs/vista/hash"
	"github.com/vista-vcs/vista/verrors"
)

// ErrUnknownObject reports that id does not address any tree or blob known
// to the Store a caller probed. Unlike MissingFilter (a registry panic:
// every filter id in circulation was minted locally by Intern), an unknown
// object id can legitimately arrive from outside the process -- a stale
// reference, a partially-replicated store -- so it is verrors' StoreError
// kind, a plain propagated error.
func ErrUnknownObject(id hash.Hash) error {
	return verrors.StoreError(verrors.ErrStore, "unknown object id %s", id)
}
