// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package fsck runs the twelve cross-referential consistency checks
// over an fsimage.Image, in a fixed order, stopping at the first
// violation.
package fsck

// Rule identifies one of the twelve invariants.
type Rule int

const (
	BadInode Rule = iota + 1
	BadDirectAddress
	BadIndirectAddress
	RootDirMissing
	DirectoryMalformed
	BitmapUsedButFree
	BitmapFreeButUsed
	DirectAddressReused
	IndirectAddressReused
	InodeReferencedButFree
	InodeMarkedButUnreferenced
	BadFileRefCount
	DirectoryLinkedTwice
)

// messages is the fixed rule-identifier to canonical diagnostic
// mapping. Every string here is exactly what the checker writes to
// stderr, with no trailing period added or removed.
var messages = map[Rule]string{
	BadInode:                   "ERROR: bad inode.",
	BadDirectAddress:           "ERROR: bad direct address in inode.",
	BadIndirectAddress:         "ERROR: bad indirect address in inode.",
	RootDirMissing:             "ERROR: root directory does not exist.",
	DirectoryMalformed:         "ERROR: directory not properly formatted.",
	BitmapUsedButFree:          "ERROR: address used by inode but marked free in bitmap.",
	BitmapFreeButUsed:          "ERROR: bitmap marks block in use but it is not inuse.",
	DirectAddressReused:        "ERROR: direct address used more than once.",
	IndirectAddressReused:      "ERROR: indirect address used more than once.",
	InodeReferencedButFree:     "ERROR: inode referred to in directory but marked free.",
	InodeMarkedButUnreferenced: "ERROR: inode marked use but not found in directory.",
	BadFileRefCount:            "ERROR: bad reference count for file.",
	DirectoryLinkedTwice:       "ERROR: directory appears more than once in filesystem.",
}

// Violation reports that an image failed rule Rule. Its Error()
// method is the exact canonical diagnostic string for that rule.
type Violation struct {
	Rule Rule
}

func (v *Violation) Error() string {
	msg, ok := messages[v.Rule]
	if !ok {
		return "ERROR: unknown violation."
	}
	return msg
}

func violation(r Rule) error {
	return &Violation{Rule: r}
}
