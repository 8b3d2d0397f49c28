// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package fsck

import "github.com/kolesa-team/xv6fsck/fsimage"

// ValidFileLinkCount checks that for each T_FILE inode, nlink equals
// the number of non-structural directory entries referencing it.
func ValidFileLinkCount(img *fsimage.Image) error {
	refs, err := directoryReferenceCounts(img)
	if err != nil {
		return err
	}

	for i := img.Layout().ROOTINO; i < img.NInodes(); i++ {
		ino, err := img.Inode(i)
		if err != nil {
			return err
		}
		if ino.Free() || ino.Type != fsimage.TypeFile {
			continue
		}

		if refs[i] != int(ino.Nlink) {
			return violation(BadFileRefCount)
		}
	}

	return nil
}

// ValidDirectoryLinks checks that for each T_DIR inode other than
// root, exactly one directory entry references it.
func ValidDirectoryLinks(img *fsimage.Image) error {
	refs, err := directoryReferenceCounts(img)
	if err != nil {
		return err
	}

	rootino := img.Layout().ROOTINO
	for i := rootino; i < img.NInodes(); i++ {
		if i == rootino {
			continue
		}

		ino, err := img.Inode(i)
		if err != nil {
			return err
		}
		if ino.Free() || ino.Type != fsimage.TypeDir {
			continue
		}

		if refs[i] != 1 {
			return violation(DirectoryLinkedTwice)
		}
	}

	return nil
}
