// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package fsimage provides a read-only, typed view over an xv6-layout
// filesystem image held entirely in memory.
//
// The on-disk geometry (block size, inode table density, indirect
// fanout, root inumber) is not hardcoded: it is supplied by the caller
// as a Layout value, so the package can be pointed at any image that
// follows the xv6 on-disk conventions rather than one fixed revision
// of them.
package fsimage

// Layout describes the source-format constants a particular xv6 image
// was built with. These are inputs to the package, not something it
// derives on its own.
type Layout struct {
	// BSize is the size in bytes of every block in the image.
	BSize int
	// IPB is the number of inodes that fit in one block.
	IPB int
	// BPB is the number of bitmap bits (i.e. blocks tracked) per
	// bitmap block.
	BPB int
	// NDirect is the number of direct block addresses stored inline
	// in an inode.
	NDirect int
	// NIndirect is the number of block addresses held in one
	// indirect block.
	NIndirect int
	// DirSiz is the number of name bytes in a directory entry,
	// including NUL padding.
	DirSiz int
	// ROOTINO is the inumber of the root directory.
	ROOTINO int
}

// DefaultLayout returns the reference xv6 geometry: 512 byte blocks,
// 64 byte inodes (8 per block), 12 direct addresses plus one
// indirect, and 14 byte directory names.
func DefaultLayout() Layout {
	return Layout{
		BSize:     512,
		IPB:       8,
		BPB:       512 * 8,
		NDirect:   12,
		NIndirect: 512 / 4,
		DirSiz:    14,
		ROOTINO:   1,
	}
}

// inodeSize returns the on-disk size of a dinode record: two shorts
// (type, nlink) packed around major/minor, a size field, and
// NDirect+1 block addresses.
func (l Layout) inodeSize() int {
	return 2 + 2 + 2 + 2 + 4 + 4*(l.NDirect+1)
}

// direntSize returns the on-disk size of one directory entry.
func (l Layout) direntSize() int {
	return 2 + l.DirSiz
}

// direntsPerBlock returns the number of directory entry slots in one
// full data block (see the walk package, which iterates by slot
// count rather than by the inode's declared size).
func (l Layout) direntsPerBlock() int {
	return l.BSize / l.direntSize()
}

const superBlockSize = 4 * 7 // size, nblocks, ninodes, nlog, logstart, inodestart, bmapstart
