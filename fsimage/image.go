// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package fsimage

import (
	"encoding/binary"
	"fmt"
)

// InodeType enumerates the on-disk inode type tag.
type InodeType uint16

const (
	TypeFree InodeType = 0
	TypeDir  InodeType = 1
	TypeFile InodeType = 2
	TypeDev  InodeType = 3
)

func (t InodeType) String() string {
	switch t {
	case TypeFree:
		return "free"
	case TypeDir:
		return "dir"
	case TypeFile:
		return "file"
	case TypeDev:
		return "dev"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(t))
	}
}

// SuperBlock mirrors the fields xv6 stores at the start of block 1.
// NLog/LogStart/InodeStart/BmapStart are carried for a faithful
// on-disk reading but are never cross-checked: the checker does not
// interpret the journal/log area.
type SuperBlock struct {
	Size       uint32
	NBlocks    uint32
	NInodes    uint32
	NLog       uint32
	LogStart   uint32
	InodeStart uint32
	BmapStart  uint32
}

func readSuperBlock(b []byte) SuperBlock {
	return SuperBlock{
		Size:       binary.LittleEndian.Uint32(b[0:4]),
		NBlocks:    binary.LittleEndian.Uint32(b[4:8]),
		NInodes:    binary.LittleEndian.Uint32(b[8:12]),
		NLog:       binary.LittleEndian.Uint32(b[12:16]),
		LogStart:   binary.LittleEndian.Uint32(b[16:20]),
		InodeStart: binary.LittleEndian.Uint32(b[20:24]),
		BmapStart:  binary.LittleEndian.Uint32(b[24:28]),
	}
}

// Inode is a decoded, read-only view of one dinode record.
type Inode struct {
	Type  InodeType
	Nlink uint16
	Size  uint32
	// Addrs holds NDirect direct block numbers followed by the single
	// indirect block number at index NDirect. A value of 0 means
	// absent.
	Addrs []uint32
}

// Free reports whether the inode slot is unallocated.
func (i Inode) Free() bool {
	return i.Type == TypeFree
}

// Geometry holds the region boundaries derived once from the
// superblock.
type Geometry struct {
	InodeBlocks    int
	BitmapBlocks   int
	FirstDataBlock int
	Size           int
}

// Image is an immutable, read-only view over an in-memory xv6
// filesystem image. No method on Image ever mutates the backing
// buffer.
type Image struct {
	buf    []byte
	layout Layout
	sb     SuperBlock
	geom   Geometry
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Open validates the superblock's internal consistency and returns an
// Image backed by buf. buf is not copied; the caller must not mutate
// it afterwards.
//
// Open only checks acquisition-level consistency (does the declared
// geometry fit inside the declared total size, does the buffer hold
// at least that much data). It never checks any of the twelve
// cross-referential invariants; those belong to the fsck package.
func Open(buf []byte, layout Layout) (*Image, error) {
	sbOff := layout.BSize
	if len(buf) < sbOff+superBlockSize {
		return nil, &ShortBufferError{Offset: sbOff, Need: superBlockSize, Have: len(buf) - sbOff}
	}

	sb := readSuperBlock(buf[sbOff : sbOff+superBlockSize])

	inodeBlocks := ceilDiv(int(sb.NInodes), layout.IPB)
	bitmapBlocks := ceilDiv(int(sb.Size), layout.BPB)
	firstDataBlock := 2 + inodeBlocks + bitmapBlocks

	if int(sb.Size) != firstDataBlock+int(sb.NBlocks) {
		return nil, fmt.Errorf("fsimage: inconsistent superblock: size=%d, nblocks=%d, ninodes=%d (expected size %d)",
			sb.Size, sb.NBlocks, sb.NInodes, firstDataBlock+int(sb.NBlocks))
	}

	need := int(sb.Size) * layout.BSize
	if len(buf) < need {
		return nil, &ShortBufferError{Offset: 0, Need: need, Have: len(buf)}
	}

	return &Image{
		buf:    buf,
		layout: layout,
		sb:     sb,
		geom: Geometry{
			InodeBlocks:    inodeBlocks,
			BitmapBlocks:   bitmapBlocks,
			FirstDataBlock: firstDataBlock,
			Size:           int(sb.Size),
		},
	}, nil
}

// Layout returns the geometry constants the image was opened with.
func (img *Image) Layout() Layout {
	return img.layout
}

// SuperBlock returns a copy of the image's superblock.
func (img *Image) SuperBlock() SuperBlock {
	return img.sb
}

// Geometry returns the derived region boundaries.
func (img *Image) Geometry() Geometry {
	return img.geom
}

// NInodes returns the number of inode slots, including the reserved
// inumber 0.
func (img *Image) NInodes() int {
	return int(img.sb.NInodes)
}

// Block returns the BSize-byte slice for block n. It fails if the
// slice would run past the end of the backing buffer; it does not
// check n against the image's declared geometry.
func (img *Image) Block(n int) ([]byte, error) {
	bsize := img.layout.BSize
	off := n * bsize
	if n < 0 || off+bsize > len(img.buf) {
		return nil, &ShortBufferError{Offset: off, Need: bsize, Have: len(img.buf) - off}
	}
	return img.buf[off : off+bsize], nil
}

// iblock returns the block number holding inode i, per xv6's
// IBLOCK(i) macro: the inode table starts at block 2.
func (img *Image) iblock(i int) int {
	return 2 + i/img.layout.IPB
}

// bblock returns the bitmap block number holding the bit for block b,
// per xv6's BBLOCK(b) macro.
func (img *Image) bblock(b int) int {
	return img.geom.FirstDataBlock - img.geom.BitmapBlocks + b/img.layout.BPB
}

// Inode returns the inode at inumber i.
func (img *Image) Inode(i int) (Inode, error) {
	if i < 0 || i >= int(img.sb.NInodes) {
		return Inode{}, &OutOfRangeError{Kind: "inode", Want: i, Max: int(img.sb.NInodes) - 1}
	}

	block, err := img.Block(img.iblock(i))
	if err != nil {
		return Inode{}, err
	}

	size := img.layout.inodeSize()
	off := (i % img.layout.IPB) * size
	if off+size > len(block) {
		return Inode{}, &ShortBufferError{Offset: off, Need: size, Have: len(block) - off}
	}

	rec := block[off : off+size]

	typ := InodeType(binary.LittleEndian.Uint16(rec[0:2]))
	nlink := binary.LittleEndian.Uint16(rec[6:8])
	isize := binary.LittleEndian.Uint32(rec[8:12])

	n := img.layout.NDirect + 1
	addrs := make([]uint32, n)
	base := 12
	for k := 0; k < n; k++ {
		addrs[k] = binary.LittleEndian.Uint32(rec[base+4*k : base+4*k+4])
	}

	return Inode{Type: typ, Nlink: nlink, Size: isize, Addrs: addrs}, nil
}

// IndirectEntries reads the block at blockAddr as an array of
// NIndirect little-endian uint32 block numbers.
func (img *Image) IndirectEntries(blockAddr int) ([]uint32, error) {
	block, err := img.Block(blockAddr)
	if err != nil {
		return nil, err
	}

	n := img.layout.NIndirect
	entries := make([]uint32, n)
	for k := 0; k < n; k++ {
		off := 4 * k
		if off+4 > len(block) {
			break
		}
		entries[k] = binary.LittleEndian.Uint32(block[off : off+4])
	}
	return entries, nil
}

// BitmapBit returns the allocation bit for block b.
func (img *Image) BitmapBit(b int) (bool, error) {
	block, err := img.Block(img.bblock(b))
	if err != nil {
		return false, err
	}

	within := b % img.layout.BPB
	byteOff := within / 8
	bit := uint(within % 8)
	if byteOff >= len(block) {
		return false, &ShortBufferError{Offset: byteOff, Need: 1, Have: len(block) - byteOff}
	}

	return block[byteOff]&(1<<bit) != 0, nil
}

// DirentsPerBlock returns the number of directory entry slots in one
// full data block under this image's layout.
func (img *Image) DirentsPerBlock() int {
	return img.layout.direntsPerBlock()
}

// DirentSize returns the on-disk size of one directory entry.
func (img *Image) DirentSize() int {
	return img.layout.direntSize()
}
