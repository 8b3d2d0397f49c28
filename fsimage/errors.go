// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package fsimage

import "fmt"

// OutOfRangeError is returned when an inumber falls outside the
// bounds the image's own superblock declares. Block numbers are not
// checked against the superblock; Image.Block reports a
// ShortBufferError instead.
type OutOfRangeError struct {
	Kind string // "inode"
	Want int
	Max  int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("fsimage: %s index %d out of range (max %d)", e.Kind, e.Want, e.Max)
}

// ShortBufferError is returned when the backing buffer is too small
// to hold a region the superblock claims exists.
type ShortBufferError struct {
	Offset, Need, Have int
}

func (e *ShortBufferError) Error() string {
	return fmt.Sprintf("fsimage: short buffer: need %d bytes at offset %d, have %d", e.Need, e.Offset, e.Have)
}
