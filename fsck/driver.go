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

// validator is one of the twelve checks, taking the shared image view
// and returning either nil or a *Violation.
type validator func(*fsimage.Image) error

// order is the fixed validator sequence. It is observable: an image
// violating more than one rule must report whichever rule appears
// first here.
var order = []validator{
	ValidInode,
	ValidInodeBlocks,
	ValidRoot,
	ValidDirectory,
	ValidBitmap,
	ValidDirectAddresses,
	ValidIndirectAddresses,
	ValidInodeReachability,
	ValidFileLinkCount,
	ValidDirectoryLinks,
}

// Run executes every validator in order against img, stopping and
// returning the first violation encountered. A nil return means every
// invariant held.
func Run(img *fsimage.Image) error {
	for _, v := range order {
		if err := v(img); err != nil {
			return err
		}
	}
	return nil
}
