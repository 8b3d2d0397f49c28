// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package xv6build synthesizes in-memory xv6 filesystem images for
// tests, across the fsimage, walk and fsck packages. It deliberately
// does not reuse fsimage's decoder: it writes the on-disk byte layout
// directly so that a bug shared between the encoder and decoder
// cannot hide a test failure.
package xv6build

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/kolesa-team/xv6fsck/fsimage"
)

// InodeSpec is the in-memory description of one inode slot, kept
// until Build serializes it to bytes. Tests may mutate the pointer
// returned by Builder.Inode to corrupt a single field in isolation.
type InodeSpec struct {
	Type  fsimage.InodeType
	Nlink uint16
	Size  uint32
	Addrs []uint32 // length layout.NDirect+1
}

// DirEntrySpec is one directory entry to be written into a data
// block.
type DirEntrySpec struct {
	Inum uint32
	Name string
}

// Builder accumulates an in-memory xv6 image. Blocks are handed out
// sequentially starting at the first data block; the total data
// block capacity is fixed at construction.
type Builder struct {
	layout fsimage.Layout

	inodeBlocks    int
	bitmapBlocks   int
	firstDataBlock int
	size           int

	ninodes   int
	nextInode int
	nextBlock int
	blockCap  int // exclusive upper bound on block numbers

	inodes map[int]*InodeSpec
	blocks map[int][]byte
	bitmap map[int]bool

	pathOf  map[int]string
	content map[int][]byte
}

// New returns a Builder for an image with ninodes inode slots and
// room for up to ndatablocks data blocks, using the reference xv6
// layout (fsimage.DefaultLayout).
//
// ndatablocks must be small enough that the bitmap fits in a single
// bitmap block (true for every fixture this package is used to
// build); New panics otherwise, since that would require the builder
// to reason about multi-block bitmaps it has no test need for.
func New(ninodes, ndatablocks int) *Builder {
	layout := fsimage.DefaultLayout()

	inodeBlocks := ceilDiv(ninodes, layout.IPB)
	bitmapBlocks := 1
	size := 2 + inodeBlocks + bitmapBlocks + ndatablocks
	if ceilDiv(size, layout.BPB) != bitmapBlocks {
		panic(fmt.Sprintf("xv6build: %d data blocks need more than one bitmap block", ndatablocks))
	}

	firstDataBlock := 2 + inodeBlocks + bitmapBlocks

	return &Builder{
		layout:         layout,
		inodeBlocks:    inodeBlocks,
		bitmapBlocks:   bitmapBlocks,
		firstDataBlock: firstDataBlock,
		size:           size,
		ninodes:        ninodes,
		nextInode:      layout.ROOTINO + 1,
		nextBlock:      firstDataBlock,
		blockCap:       firstDataBlock + ndatablocks,
		inodes:         make(map[int]*InodeSpec),
		blocks:         make(map[int][]byte),
		bitmap:         make(map[int]bool),
		pathOf:         make(map[int]string),
		content:        make(map[int][]byte),
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func zeroAddrs(layout fsimage.Layout) []uint32 {
	return make([]uint32, layout.NDirect+1)
}

// AllocBlock hands out the next unused data block number, marks it
// used in the bitmap, and returns it.
func (b *Builder) AllocBlock() int {
	if b.nextBlock >= b.blockCap {
		panic("xv6build: out of data blocks, construct with a larger ndatablocks")
	}
	block := b.nextBlock
	b.nextBlock++
	b.bitmap[block] = true
	return block
}

// UnallocatedBlock returns a valid in-range data block number that
// has not been handed out by AllocBlock and is referenced by no
// inode. Useful for building a fixture where the bitmap marks a block
// used that no inode actually references.
func (b *Builder) UnallocatedBlock() int {
	if b.nextBlock >= b.blockCap {
		panic("xv6build: no unallocated block left, construct with a larger ndatablocks")
	}
	return b.nextBlock
}

// SetBitmap overrides the bitmap bit for block, independent of
// whether it was actually allocated. Used to construct bitmap
// mismatch fixtures.
func (b *Builder) SetBitmap(block int, used bool) {
	b.bitmap[block] = used
}

// SetBlockBytes overrides the raw content of a data block.
func (b *Builder) SetBlockBytes(block int, data []byte) {
	buf := make([]byte, b.layout.BSize)
	copy(buf, data)
	b.blocks[block] = buf
}

// SetIndirect writes entries as a little-endian uint32 array into
// block, zero-padding the remainder of the indirect block.
func (b *Builder) SetIndirect(block int, entries []uint32) {
	buf := make([]byte, b.layout.BSize)
	for i, e := range entries {
		off := 4 * i
		if off+4 > len(buf) {
			break
		}
		binary.LittleEndian.PutUint32(buf[off:off+4], e)
	}
	b.blocks[block] = buf
}

// SetDirBlock writes entries into block as directory entries,
// zero-filling the remaining slots (inum == 0, i.e. empty).
func (b *Builder) SetDirBlock(block int, entries []DirEntrySpec) {
	buf := make([]byte, b.layout.BSize)
	direntSize := 2 + b.layout.DirSiz

	for i, e := range entries {
		off := i * direntSize
		if off+direntSize > len(buf) {
			panic("xv6build: too many directory entries for one block")
		}
		binary.LittleEndian.PutUint16(buf[off:off+2], uint16(e.Inum))
		copy(buf[off+2:off+2+b.layout.DirSiz], e.Name)
	}

	b.blocks[block] = buf
}

// SetInode installs spec at inumber inum, replacing whatever was
// there.
func (b *Builder) SetInode(inum int, spec InodeSpec) {
	if spec.Addrs == nil {
		spec.Addrs = zeroAddrs(b.layout)
	}
	cp := spec
	cp.Addrs = append([]uint32(nil), spec.Addrs...)
	b.inodes[inum] = &cp
}

// Inode returns a pointer to the installed spec for inum, or nil if
// none was installed. Tests may mutate the returned fields directly
// to build a single-field mutation fixture.
func (b *Builder) Inode(inum int) *InodeSpec {
	return b.inodes[inum]
}

// freeInum returns and reserves the next unused inumber.
func (b *Builder) freeInum() int {
	inum := b.nextInode
	if inum >= b.ninodes {
		panic("xv6build: out of inodes, construct with a larger ninodes count")
	}
	b.nextInode++
	return inum
}

func (b *Builder) direntsPerBlock() int {
	return b.layout.BSize / (2 + b.layout.DirSiz)
}

// Root creates (if not already created) the root directory inode and
// returns its inumber.
func (b *Builder) Root() int {
	rootino := b.layout.ROOTINO
	if b.inodes[rootino] != nil {
		return rootino
	}

	block := b.AllocBlock()
	b.SetDirBlock(block, []DirEntrySpec{
		{Inum: uint32(rootino), Name: "."},
		{Inum: uint32(rootino), Name: ".."},
	})

	addrs := zeroAddrs(b.layout)
	addrs[0] = uint32(block)
	b.inodes[rootino] = &InodeSpec{
		Type:  fsimage.TypeDir,
		Addrs: addrs,
		Size:  uint32(2 * (2 + b.layout.DirSiz)),
	}
	b.pathOf[rootino] = "."

	return rootino
}

// Dir creates a new, as yet unlinked, directory inode whose ".."
// points at parent, and returns its inumber. Use Link to attach it
// under a name in some directory.
func (b *Builder) Dir(parent int) int {
	inum := b.freeInum()

	block := b.AllocBlock()
	b.SetDirBlock(block, []DirEntrySpec{
		{Inum: uint32(inum), Name: "."},
		{Inum: uint32(parent), Name: ".."},
	})

	addrs := zeroAddrs(b.layout)
	addrs[0] = uint32(block)
	b.inodes[inum] = &InodeSpec{
		Type:  fsimage.TypeDir,
		Addrs: addrs,
		Size:  uint32(2 * (2 + b.layout.DirSiz)),
	}

	return inum
}

// File creates a new, as yet unlinked, regular file inode holding
// data and with the given link count, and returns its inumber. data
// must fit within NDirect direct blocks; this builder does not
// allocate indirect blocks for file content, since no test fixture
// built with it needs a file larger than a handful of blocks.
func (b *Builder) File(nlink uint16, data []byte) int {
	inum := b.freeInum()

	addrs := zeroAddrs(b.layout)
	nblocks := ceilDiv(max(len(data), 1), b.layout.BSize)
	if len(data) == 0 {
		nblocks = 0
	}
	if nblocks > b.layout.NDirect {
		panic("xv6build: File content too large for direct-only fixture")
	}

	for i := 0; i < nblocks; i++ {
		block := b.AllocBlock()
		lo := i * b.layout.BSize
		hi := lo + b.layout.BSize
		if hi > len(data) {
			hi = len(data)
		}
		b.SetBlockBytes(block, data[lo:hi])
		addrs[i] = uint32(block)
	}

	b.inodes[inum] = &InodeSpec{
		Type:  fsimage.TypeFile,
		Nlink: nlink,
		Size:  uint32(len(data)),
		Addrs: addrs,
	}
	b.content[inum] = append([]byte(nil), data...)

	return inum
}

// Link appends a directory entry named name -> child into the
// directory inode dirInum's data, allocating a new direct block when
// the current one is full. It returns the entry's index within the
// directory, counted across all of its blocks.
func (b *Builder) Link(dirInum int, name string, child int) int {
	spec := b.inodes[dirInum]
	if spec == nil || spec.Type != fsimage.TypeDir {
		panic("xv6build: Link target is not a directory")
	}

	perBlock := b.direntsPerBlock()
	idx := int(spec.Size) / (2 + b.layout.DirSiz)
	blockIdx := idx / perBlock
	slot := idx % perBlock

	if blockIdx >= b.layout.NDirect {
		panic("xv6build: directory fixture grew past direct-only capacity")
	}

	if spec.Addrs[blockIdx] == 0 {
		spec.Addrs[blockIdx] = uint32(b.AllocBlock())
	}

	block := int(spec.Addrs[blockIdx])
	buf, ok := b.blocks[block]
	if !ok {
		buf = make([]byte, b.layout.BSize)
	}

	direntSize := 2 + b.layout.DirSiz
	off := slot * direntSize
	binary.LittleEndian.PutUint16(buf[off:off+2], uint16(child))
	copy(buf[off+2:off+2+b.layout.DirSiz], name)
	b.blocks[block] = buf

	spec.Size += uint32(direntSize)

	if parentPath, ok := b.pathOf[dirInum]; ok {
		if parentPath == "." {
			b.pathOf[child] = name
		} else {
			b.pathOf[child] = parentPath + "/" + name
		}
	}

	return idx
}

// NamedFile is a convenience wrapper that creates a file with data
// and nlink 1 and links it into dirInum under name, returning its
// inumber.
func (b *Builder) NamedFile(dirInum int, name string, data []byte) int {
	inum := b.File(1, data)
	b.Link(dirInum, name, inum)
	return inum
}

// NamedDir is a convenience wrapper that creates a directory under
// dirInum named name and returns its inumber.
func (b *Builder) NamedDir(dirInum int, name string) int {
	inum := b.Dir(dirInum)
	b.Link(dirInum, name, inum)
	return inum
}

// Build serializes the accumulated fixture into a byte buffer
// consumable by fsimage.Open, along with the layout it was built
// with.
func (b *Builder) Build() ([]byte, fsimage.Layout) {
	buf := make([]byte, b.size*b.layout.BSize)

	writeSuperBlock(buf, b.layout, superBlockFields{
		Size:       uint32(b.size),
		NBlocks:    uint32(b.size - b.firstDataBlock),
		NInodes:    uint32(b.ninodes),
		InodeStart: 2,
		BmapStart:  uint32(2 + b.inodeBlocks),
	})

	inodeSize := inodeByteSize(b.layout)
	var inums []int
	for inum := range b.inodes {
		inums = append(inums, inum)
	}
	sort.Ints(inums)
	for _, inum := range inums {
		writeInode(buf, b.layout, inum, inodeSize, b.inodes[inum])
	}

	for block, data := range b.blocks {
		off := block * b.layout.BSize
		copy(buf[off:off+b.layout.BSize], data)
	}

	for block, used := range b.bitmap {
		if !used {
			continue
		}
		setBit(buf, b.layout, b.firstDataBlock, b.bitmapBlocks, block)
	}

	return buf, b.layout
}
