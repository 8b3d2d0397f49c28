// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package fsimage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolesa-team/xv6fsck/fsimage"
	"github.com/kolesa-team/xv6fsck/internal/xv6build"
)

func TestOpenValidatesGeometry(t *testing.T) {
	b := xv6build.New(16, 4)
	b.Root()
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	geom := img.Geometry()
	require.Equal(t, geom.Size, geom.FirstDataBlock+int(img.SuperBlock().NBlocks))
	require.Equal(t, 1, img.NInodes()-15) // sanity: ninodes round-trips
}

func TestOpenRejectsInconsistentSuperblock(t *testing.T) {
	b := xv6build.New(16, 4)
	b.Root()
	buf, layout := b.Build()

	// Corrupt the declared size field directly.
	sbOff := layout.BSize
	buf[sbOff] ^= 0xFF

	_, err := fsimage.Open(buf, layout)
	require.Error(t, err)
}

func TestOpenRejectsShortBuffer(t *testing.T) {
	b := xv6build.New(16, 4)
	b.Root()
	buf, layout := b.Build()

	_, err := fsimage.Open(buf[:len(buf)/2], layout)
	require.Error(t, err)
}

func TestInodeOutOfRange(t *testing.T) {
	b := xv6build.New(16, 4)
	b.Root()
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	_, err = img.Inode(16)
	require.Error(t, err)
	var oor *fsimage.OutOfRangeError
	require.ErrorAs(t, err, &oor)
}

func TestBitmapBitRoundTrip(t *testing.T) {
	b := xv6build.New(16, 4)
	rootino := b.Root()
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	root, err := img.Inode(rootino)
	require.NoError(t, err)

	bit, err := img.BitmapBit(int(root.Addrs[0]))
	require.NoError(t, err)
	require.True(t, bit)

	unalloc := b.UnallocatedBlock()
	bit, err = img.BitmapBit(unalloc)
	require.NoError(t, err)
	require.False(t, bit)
}
