// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package xv6build

import (
	"bytes"
	"io"
	"sort"

	"github.com/rogpeppe/go-internal/dirhash"

	"github.com/kolesa-team/xv6fsck/fsimage"
)

// DirHash returns a deterministic hash over the set of regular-file
// paths this builder has linked (via Link or NamedFile) into a
// directory reachable from the root; a file linked more than once
// contributes only its most recent path. It works in the style of a
// mounted fs.FS tree hash; here it hashes the in-memory fixture
// directly, before Build ever serializes it to bytes, so a test can
// assert the intended fixture shape independent of the byte encoding.
func (b *Builder) DirHash() (string, error) {
	type entry struct {
		path string
		data []byte
	}

	var entries []entry
	for inum, path := range b.pathOf {
		spec := b.inodes[inum]
		if spec == nil || spec.Type != fsimage.TypeFile {
			continue
		}
		entries = append(entries, entry{path: path, data: b.content[inum]})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })

	files := make([]string, len(entries))
	byPath := make(map[string][]byte, len(entries))
	for i, e := range entries {
		files[i] = e.path
		byPath[e.path] = e.data
	}

	return dirhash.Hash1(files, func(name string) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(byPath[name])), nil
	})
}
