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

// ValidRoot checks that the root inode exists and is a directory, and
// that every ".." entry within it points back at the root.
func ValidRoot(img *fsimage.Image) error {
	rootino := img.Layout().ROOTINO

	if rootino >= img.NInodes() {
		return violation(RootDirMissing)
	}

	ino, err := img.Inode(rootino)
	if err != nil {
		return err
	}
	if ino.Free() || ino.Type != fsimage.TypeDir {
		return violation(RootDirMissing)
	}

	entries, err := walk.DirEntries(img, ino)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.IsDotDot() && int(e.Inum) != rootino {
			return violation(RootDirMissing)
		}
	}

	return nil
}

// ValidDirectory checks that every directory contains exactly one "."
// entry pointing at itself, and exactly one ".." entry.
func ValidDirectory(img *fsimage.Image) error {
	for i := img.Layout().ROOTINO; i < img.NInodes(); i++ {
		ino, err := img.Inode(i)
		if err != nil {
			return err
		}
		if ino.Free() || ino.Type != fsimage.TypeDir {
			continue
		}

		entries, err := walk.DirEntries(img, ino)
		if err != nil {
			return err
		}

		var dots, dotdots int
		for _, e := range entries {
			switch {
			case e.IsDot():
				dots++
				if int(e.Inum) != i {
					return violation(DirectoryMalformed)
				}
			case e.IsDotDot():
				dotdots++
			}
		}

		if dots != 1 || dotdots != 1 {
			return violation(DirectoryMalformed)
		}
	}
	return nil
}
