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

// directoryReferenceCounts scans every directory inode and tallies,
// per inumber, the number of non-structural ("." and ".." excluded)
// directory entries naming it. It is shared by ValidInodeReachability,
// ValidFileLinkCount and ValidDirectoryLinks, since all three need the
// same per-inode reference tally.
func directoryReferenceCounts(img *fsimage.Image) ([]int, error) {
	refs := make([]int, img.NInodes())

	for i := img.Layout().ROOTINO; i < img.NInodes(); i++ {
		ino, err := img.Inode(i)
		if err != nil {
			return nil, err
		}
		if ino.Free() || ino.Type != fsimage.TypeDir {
			continue
		}

		entries, err := walk.DirEntries(img, ino)
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			if e.Structural() {
				continue
			}
			if int(e.Inum) < len(refs) {
				refs[e.Inum]++
			}
		}
	}

	return refs, nil
}

// ValidInodeReachability checks that an inode is non-free if and only
// if it is referenced by at least one directory entry. The root is
// considered referenced unconditionally.
func ValidInodeReachability(img *fsimage.Image) error {
	refs, err := directoryReferenceCounts(img)
	if err != nil {
		return err
	}

	rootino := img.Layout().ROOTINO
	for i := rootino; i < img.NInodes(); i++ {
		ino, err := img.Inode(i)
		if err != nil {
			return err
		}

		allocated := !ino.Free()
		referenced := refs[i] > 0 || i == rootino

		if referenced && !allocated {
			return violation(InodeReferencedButFree)
		}
		if allocated && !referenced {
			return violation(InodeMarkedButUnreferenced)
		}
	}

	return nil
}
