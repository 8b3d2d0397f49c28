// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package fsck_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolesa-team/xv6fsck/fsck"
	"github.com/kolesa-team/xv6fsck/fsimage"
	"github.com/kolesa-team/xv6fsck/internal/xv6build"
)

func TestRunCleanImagePasses(t *testing.T) {
	b := xv6build.New(16, 8)
	rootino := b.Root()
	b.NamedFile(rootino, "hello.txt", []byte("hello, xv6"))
	b.NamedDir(rootino, "sub")
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	require.NoError(t, fsck.Run(img))
}

func TestRunBadInodeType(t *testing.T) {
	b := xv6build.New(16, 8)
	rootino := b.Root()
	fileInum := b.NamedFile(rootino, "x", []byte("data"))
	spec := b.Inode(fileInum)
	spec.Type = fsimage.InodeType(9)
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: bad inode.")
}

func TestRunBadDirectAddress(t *testing.T) {
	b := xv6build.New(16, 8)
	rootino := b.Root()
	fileInum := b.NamedFile(rootino, "x", []byte("data"))
	spec := b.Inode(fileInum)
	spec.Addrs[0] = 9999
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: bad direct address in inode.")
}

func TestRunBadIndirectAddress(t *testing.T) {
	b := xv6build.New(16, 8)
	rootino := b.Root()
	fileInum := b.File(1, nil)
	b.Link(rootino, "big", fileInum)
	spec := b.Inode(fileInum)
	spec.Addrs[len(spec.Addrs)-1] = 9999
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: bad indirect address in inode.")
}

func TestRunRootMissingDotDot(t *testing.T) {
	b := xv6build.New(16, 8)
	rootino := b.Root()
	root := b.Inode(rootino)
	rootBlock := root.Addrs[0]
	b.SetDirBlock(int(rootBlock), []xv6build.DirEntrySpec{
		{Inum: uint32(rootino), Name: "."},
		{Inum: 99, Name: ".."},
	})
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: root directory does not exist.")
}

func TestRunDirectoryMalformedMissingDot(t *testing.T) {
	b := xv6build.New(16, 8)
	rootino := b.Root()
	subInum := b.Dir(rootino)
	b.Link(rootino, "sub", subInum)

	sub := b.Inode(subInum)
	subBlock := sub.Addrs[0]
	b.SetDirBlock(int(subBlock), []xv6build.DirEntrySpec{
		{Inum: uint32(rootino), Name: ".."},
	})
	sub.Size = uint32(1 * (2 + 14))
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: directory not properly formatted.")
}

func TestRunBitmapUsedButFree(t *testing.T) {
	b := xv6build.New(16, 8)
	rootino := b.Root()
	fileInum := b.NamedFile(rootino, "x", []byte("data"))
	spec := b.Inode(fileInum)
	b.SetBitmap(int(spec.Addrs[0]), false)
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: address used by inode but marked free in bitmap.")
}

func TestRunBitmapFreeButUsed(t *testing.T) {
	b := xv6build.New(16, 8)
	rootino := b.Root()
	b.NamedFile(rootino, "x", []byte("data"))
	unused := b.UnallocatedBlock()
	b.SetBitmap(unused, true)
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: bitmap marks block in use but it is not inuse.")
}

func TestRunDirectAddressReused(t *testing.T) {
	b := xv6build.New(16, 8)
	rootino := b.Root()
	fileA := b.NamedFile(rootino, "a", []byte("data-a"))

	// fileB is built with no content of its own (no block allocated
	// for it), then pointed at fileA's block, so there is no orphaned
	// bitmap bit left dangling for the bitmap check to trip on first.
	fileB := b.File(1, nil)
	b.Link(rootino, "b", fileB)

	specA := b.Inode(fileA)
	specB := b.Inode(fileB)
	specB.Addrs[0] = specA.Addrs[0]
	specB.Size = specA.Size
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: direct address used more than once.")
}

func TestRunInodeMarkedButUnreferenced(t *testing.T) {
	b := xv6build.New(16, 8)
	rootino := b.Root()
	b.NamedFile(rootino, "x", []byte("data"))

	orphan := b.File(1, []byte("orphan"))
	_ = orphan
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: inode marked use but not found in directory.")
}

func TestRunBadFileRefCount(t *testing.T) {
	b := xv6build.New(16, 8)
	rootino := b.Root()
	fileInum := b.NamedFile(rootino, "x", []byte("data"))
	spec := b.Inode(fileInum)
	spec.Nlink = 2
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: bad reference count for file.")
}

func TestRunDirectoryLinkedTwice(t *testing.T) {
	b := xv6build.New(16, 8)
	rootino := b.Root()
	subInum := b.NamedDir(rootino, "sub")
	b.Link(rootino, "sub-again", subInum)
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: directory appears more than once in filesystem.")
}

func TestRunIndirectAddressReused(t *testing.T) {
	b := xv6build.New(16, 10)
	rootino := b.Root()

	fileA := b.File(1, nil)
	b.Link(rootino, "a", fileA)
	fileB := b.File(1, nil)
	b.Link(rootino, "b", fileB)

	indirectA := b.AllocBlock()
	indirectB := b.AllocBlock()
	shared := b.AllocBlock()
	b.SetIndirect(indirectA, []uint32{uint32(shared)})
	b.SetIndirect(indirectB, []uint32{uint32(shared)})

	specA := b.Inode(fileA)
	specA.Addrs[len(specA.Addrs)-1] = uint32(indirectA)
	specB := b.Inode(fileB)
	specB.Addrs[len(specB.Addrs)-1] = uint32(indirectB)
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: indirect address used more than once.")
}

func TestRunInodeReferencedButFree(t *testing.T) {
	b := xv6build.New(16, 4)
	rootino := b.Root()
	b.Link(rootino, "ghost", 5) // inumber 5 is never allocated
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: inode referred to in directory but marked free.")
}

func TestRunStopsAtFirstViolationInOrder(t *testing.T) {
	b := xv6build.New(16, 8)
	rootino := b.Root()
	fileInum := b.NamedFile(rootino, "x", []byte("data"))

	spec := b.Inode(fileInum)
	spec.Type = fsimage.InodeType(9) // ValidInode fires first
	spec.Addrs[0] = 9999             // would also fail ValidInodeBlocks
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	err = fsck.Run(img)
	require.EqualError(t, err, "ERROR: bad inode.")
}
