// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package fsck

import (
	"github.com/kolesa-team/xv6fsck/fsimage"
	"github.com/kolesa-team/xv6fsck/walk"
)

// ValidBitmap checks that a data block is marked in the bitmap if and
// only if some non-free inode references it (direct, indirect
// pointer, or indirect slot — the indirect block itself counts as
// referenced here).
func ValidBitmap(img *fsimage.Image) error {
	geom := img.Geometry()
	n := geom.Size - geom.FirstDataBlock

	marked := make([]bool, n)
	for b := geom.FirstDataBlock; b < geom.Size; b++ {
		bit, err := img.BitmapBit(b)
		if err != nil {
			return err
		}
		marked[b-geom.FirstDataBlock] = bit
	}

	inUse := make([]bool, n)
	for i := img.Layout().ROOTINO; i < img.NInodes(); i++ {
		ino, err := img.Inode(i)
		if err != nil {
			return err
		}
		if ino.Free() {
			continue
		}

		addrs, err := walk.InodeAddrs(img, ino)
		if err != nil {
			return err
		}

		for _, a := range addrs {
			if int(a.Block) >= geom.FirstDataBlock && int(a.Block) < geom.Size {
				inUse[int(a.Block)-geom.FirstDataBlock] = true
			}
		}
	}

	for idx := 0; idx < n; idx++ {
		if inUse[idx] && !marked[idx] {
			return violation(BitmapUsedButFree)
		}
		if marked[idx] && !inUse[idx] {
			return violation(BitmapFreeButUsed)
		}
	}

	return nil
}
