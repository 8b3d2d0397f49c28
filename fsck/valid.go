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

// ValidInode checks that every non-free inode has a recognized type.
func ValidInode(img *fsimage.Image) error {
	for i := img.Layout().ROOTINO; i < img.NInodes(); i++ {
		ino, err := img.Inode(i)
		if err != nil {
			return err
		}
		if ino.Free() {
			continue
		}
		switch ino.Type {
		case fsimage.TypeDir, fsimage.TypeFile, fsimage.TypeDev:
		default:
			return violation(BadInode)
		}
	}
	return nil
}

// ValidInodeBlocks checks that every block address referenced by a
// non-free inode — direct, the indirect pointer itself, or an
// indirect slot — falls within [first_data_block, size).
func ValidInodeBlocks(img *fsimage.Image) error {
	geom := img.Geometry()

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
			inRange := int(a.Block) >= geom.FirstDataBlock && int(a.Block) < geom.Size
			if inRange {
				continue
			}
			switch a.Kind {
			case walk.Direct:
				return violation(BadDirectAddress)
			case walk.IndirectBlock, walk.IndirectSlot:
				return violation(BadIndirectAddress)
			}
		}
	}
	return nil
}
