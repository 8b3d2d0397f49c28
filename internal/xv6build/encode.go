// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package xv6build

import (
	"encoding/binary"

	"github.com/kolesa-team/xv6fsck/fsimage"
)

type superBlockFields struct {
	Size       uint32
	NBlocks    uint32
	NInodes    uint32
	InodeStart uint32
	BmapStart  uint32
}

func writeSuperBlock(buf []byte, layout fsimage.Layout, f superBlockFields) {
	off := layout.BSize
	binary.LittleEndian.PutUint32(buf[off+0:off+4], f.Size)
	binary.LittleEndian.PutUint32(buf[off+4:off+8], f.NBlocks)
	binary.LittleEndian.PutUint32(buf[off+8:off+12], f.NInodes)
	binary.LittleEndian.PutUint32(buf[off+12:off+16], 0) // nlog
	binary.LittleEndian.PutUint32(buf[off+16:off+20], 0) // logstart
	binary.LittleEndian.PutUint32(buf[off+20:off+24], f.InodeStart)
	binary.LittleEndian.PutUint32(buf[off+24:off+28], f.BmapStart)
}

func inodeByteSize(layout fsimage.Layout) int {
	return 2 + 2 + 2 + 2 + 4 + 4*(layout.NDirect+1)
}

func writeInode(buf []byte, layout fsimage.Layout, inum int, inodeSize int, spec *InodeSpec) {
	iblock := 2 + inum/layout.IPB
	blockOff := iblock * layout.BSize
	off := blockOff + (inum%layout.IPB)*inodeSize

	rec := buf[off : off+inodeSize]
	binary.LittleEndian.PutUint16(rec[0:2], uint16(spec.Type))
	binary.LittleEndian.PutUint16(rec[2:4], 0) // major
	binary.LittleEndian.PutUint16(rec[4:6], 0) // minor
	binary.LittleEndian.PutUint16(rec[6:8], spec.Nlink)
	binary.LittleEndian.PutUint32(rec[8:12], spec.Size)

	base := 12
	for k := 0; k < layout.NDirect+1; k++ {
		var a uint32
		if k < len(spec.Addrs) {
			a = spec.Addrs[k]
		}
		binary.LittleEndian.PutUint32(rec[base+4*k:base+4*k+4], a)
	}
}

func setBit(buf []byte, layout fsimage.Layout, firstDataBlock, bitmapBlocks, block int) {
	bblock := firstDataBlock - bitmapBlocks + block/layout.BPB
	within := block % layout.BPB
	byteOff := bblock*layout.BSize + within/8
	bit := uint(within % 8)
	buf[byteOff] |= 1 << bit
}
