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
	"github.com/google/btree"

	"github.com/kolesa-team/xv6fsck/fsimage"
	"github.com/kolesa-team/xv6fsck/walk"
)

// blockCount keys a reference count by block number. Block numbers
// range over [first_data_block, size), which can be large relative to
// the handful of blocks an actual image references; an ordered tree
// keeps the tally's size proportional to the number of blocks
// actually seen rather than to the address space.
type blockCount struct {
	block uint32
	count int
}

func (b *blockCount) Less(than btree.Item) bool {
	return b.block < than.(*blockCount).block
}

// tally is a sparse block-number -> reference-count map backed by a
// btree.BTree.
type tally struct {
	t *btree.BTree
}

func newTally() *tally {
	return &tally{t: btree.New(32)}
}

// incr records one more reference to block and returns the resulting
// count.
func (tl *tally) incr(block uint32) int {
	if item := tl.t.Get(&blockCount{block: block}); item != nil {
		bc := item.(*blockCount)
		bc.count++
		return bc.count
	}
	tl.t.ReplaceOrInsert(&blockCount{block: block, count: 1})
	return 1
}

// ValidDirectAddresses checks that each data block is referenced at
// most once across all direct pointers.
func ValidDirectAddresses(img *fsimage.Image) error {
	counts := newTally()

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
			if a.Kind != walk.Direct {
				continue
			}
			if counts.incr(a.Block) > 1 {
				return violation(DirectAddressReused)
			}
		}
	}
	return nil
}

// ValidIndirectAddresses checks that each data block is referenced at
// most once across all indirect-slot pointers.
func ValidIndirectAddresses(img *fsimage.Image) error {
	counts := newTally()

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
			if a.Kind != walk.IndirectSlot {
				continue
			}
			if counts.incr(a.Block) > 1 {
				return violation(IndirectAddressReused)
			}
		}
	}
	return nil
}
