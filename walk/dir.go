// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package walk

import (
	"bytes"

	"github.com/kolesa-team/xv6fsck/fsimage"
)

// DirEntry is one non-empty directory entry.
type DirEntry struct {
	Inum uint32
	Name string
}

// IsDot reports whether e is the structural "." entry.
func (e DirEntry) IsDot() bool {
	return e.Name == "."
}

// IsDotDot reports whether e is the structural ".." entry.
func (e DirEntry) IsDotDot() bool {
	return e.Name == ".."
}

// Structural reports whether e is "." or ".." — entries excluded
// from every reference-count and link tally.
func (e DirEntry) Structural() bool {
	return e.IsDot() || e.IsDotDot()
}

// DirEntries iterates every directory entry reachable from the
// directory inode ino, across all of its data blocks (direct and,
// via the indirect block, single-indirect). Entries with inum == 0
// are skipped.
//
// It iterates a full BSIZE/sizeof(dirent) slots per referenced data
// block, not dip.size/sizeof(dirent), so it does not depend on size
// being maintained precisely by the filesystem that produced the
// image.
func DirEntries(img *fsimage.Image, ino fsimage.Inode) ([]DirEntry, error) {
	addrs, err := InodeAddrs(img, ino)
	if err != nil {
		return nil, err
	}

	perBlock := img.DirentsPerBlock()
	direntSize := img.DirentSize()
	nameLen := img.Layout().DirSiz

	var entries []DirEntry
	for _, a := range addrs {
		if a.Kind == IndirectBlock {
			// Holds an array of block numbers, not directory entries.
			continue
		}

		block, err := img.Block(int(a.Block))
		if err != nil {
			return nil, err
		}

		for slot := 0; slot < perBlock; slot++ {
			off := slot * direntSize
			inum := uint16FromLE(block[off : off+2])
			if inum == 0 {
				continue
			}

			nameBytes := block[off+2 : off+2+nameLen]
			if nul := bytes.IndexByte(nameBytes, 0); nul >= 0 {
				nameBytes = nameBytes[:nul]
			}

			entries = append(entries, DirEntry{
				Inum: uint32(inum),
				Name: string(nameBytes),
			})
		}
	}

	return entries, nil
}

func uint16FromLE(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
