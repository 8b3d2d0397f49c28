// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package walk_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolesa-team/xv6fsck/fsimage"
	"github.com/kolesa-team/xv6fsck/internal/xv6build"
	"github.com/kolesa-team/xv6fsck/walk"
)

func TestInodeAddrsDirectOnly(t *testing.T) {
	b := xv6build.New(16, 4)
	rootino := b.Root()
	fileInum := b.NamedFile(rootino, "hello", []byte("hi there"))
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	ino, err := img.Inode(fileInum)
	require.NoError(t, err)

	addrs, err := walk.InodeAddrs(img, ino)
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	require.Equal(t, walk.Direct, addrs[0].Kind)
}

func TestInodeAddrsWithIndirect(t *testing.T) {
	b := xv6build.New(16, 20)
	rootino := b.Root()
	fileInum := b.File(1, nil)
	b.Link(rootino, "big", fileInum)

	indirectBlock := b.AllocBlock()
	dataBlocks := []uint32{uint32(b.AllocBlock()), uint32(b.AllocBlock())}
	b.SetIndirect(indirectBlock, dataBlocks)

	spec := b.Inode(fileInum)
	spec.Addrs[len(spec.Addrs)-1] = uint32(indirectBlock)

	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	ino, err := img.Inode(fileInum)
	require.NoError(t, err)

	addrs, err := walk.InodeAddrs(img, ino)
	require.NoError(t, err)

	var kinds []walk.AddrKind
	for _, a := range addrs {
		kinds = append(kinds, a.Kind)
	}
	require.Contains(t, kinds, walk.IndirectBlock)
	require.Contains(t, kinds, walk.IndirectSlot)
}

func TestDirEntriesSkipsEmptySlots(t *testing.T) {
	b := xv6build.New(16, 4)
	rootino := b.Root()
	b.NamedFile(rootino, "a", []byte("x"))
	b.NamedFile(rootino, "b", []byte("y"))
	buf, layout := b.Build()

	img, err := fsimage.Open(buf, layout)
	require.NoError(t, err)

	ino, err := img.Inode(rootino)
	require.NoError(t, err)

	entries, err := walk.DirEntries(img, ino)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	require.ElementsMatch(t, []string{".", "..", "a", "b"}, names)
}

func TestDirEntryStructural(t *testing.T) {
	dot := walk.DirEntry{Name: "."}
	dotdot := walk.DirEntry{Name: ".."}
	other := walk.DirEntry{Name: "file"}

	require.True(t, dot.Structural())
	require.True(t, dotdot.Structural())
	require.False(t, other.Structural())
}
