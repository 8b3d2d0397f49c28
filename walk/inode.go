// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package walk iterates the block addresses and directory entries
// reachable from an inode, without itself judging whether any of them
// are valid — that is the fsck package's job.
package walk

import "github.com/kolesa-team/xv6fsck/fsimage"

// AddrKind classifies how a block address was referenced by an
// inode.
type AddrKind int

const (
	// Direct is a direct block address stored inline in the inode.
	Direct AddrKind = iota
	// IndirectBlock is the address of the indirect block itself (the
	// block holding the array of indirect pointers).
	IndirectBlock
	// IndirectSlot is one non-zero entry found inside the indirect
	// block.
	IndirectSlot
)

// Addr pairs a referenced block number with the reason it was
// referenced.
type Addr struct {
	Block uint32
	Kind  AddrKind
}

// InodeAddrs yields every non-zero block address referenced by ino,
// in the order: direct addresses, then (if present) the indirect
// block itself, then each non-zero indirect slot.
//
// If the indirect block's own address is out of range, IndirectSlot
// entries are not produced for it (there is nothing valid to read),
// but the IndirectBlock entry for the out-of-range address is still
// yielded so callers validating address ranges still see it.
func InodeAddrs(img *fsimage.Image, ino fsimage.Inode) ([]Addr, error) {
	layout := img.Layout()

	var out []Addr
	for k := 0; k < layout.NDirect; k++ {
		if ino.Addrs[k] != 0 {
			out = append(out, Addr{Block: ino.Addrs[k], Kind: Direct})
		}
	}

	indirect := ino.Addrs[layout.NDirect]
	if indirect == 0 {
		return out, nil
	}

	out = append(out, Addr{Block: indirect, Kind: IndirectBlock})

	geom := img.Geometry()
	if int(indirect) < geom.FirstDataBlock || int(indirect) >= geom.Size {
		// Out of range: the indirect block cannot be safely read.
		return out, nil
	}

	entries, err := img.IndirectEntries(int(indirect))
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e != 0 {
			out = append(out, Addr{Block: e, Kind: IndirectSlot})
		}
	}

	return out, nil
}
