// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 Kolesa Group.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Command fcheck is an offline consistency checker for an xv6-layout
// filesystem image. See the fsck package for the twelve invariants it
// enforces.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/exp/mmap"

	"github.com/kolesa-team/xv6fsck/fsck"
	"github.com/kolesa-team/xv6fsck/fsimage"
)

const (
	exitOK          = 0
	exitViolation   = 1
	exitAcquisition = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr *os.File) int {
	fs := flag.NewFlagSet("fcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)

	layout := fsimage.DefaultLayout()
	fs.IntVar(&layout.BSize, "bsize", layout.BSize, "block size in bytes")
	fs.IntVar(&layout.IPB, "ipb", layout.IPB, "inodes per block")
	fs.IntVar(&layout.BPB, "bpb", layout.BPB, "bitmap bits per block")
	fs.IntVar(&layout.NDirect, "ndirect", layout.NDirect, "direct block addresses per inode")
	fs.IntVar(&layout.NIndirect, "nindirect", layout.NIndirect, "block addresses per indirect block")
	fs.IntVar(&layout.DirSiz, "dirsiz", layout.DirSiz, "directory entry name length")
	fs.IntVar(&layout.ROOTINO, "rootino", layout.ROOTINO, "inumber of the root directory")

	if err := fs.Parse(args); err != nil {
		return exitAcquisition
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "image not found.")
		return exitAcquisition
	}
	path := fs.Arg(0)

	buf, err := readImage(path)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", path, err)
		return exitAcquisition
	}

	img, err := fsimage.Open(buf, layout)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", path, err)
		return exitAcquisition
	}

	if err := fsck.Run(img); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitViolation
	}

	return exitOK
}

// readImage maps path into memory read-only and materializes it into
// a flat byte slice, the input contract fsimage.Open requires.
// How the image is brought into memory (mmap vs. a plain read) is not
// part of the checker's core; this mirrors distri's install path,
// which mmaps squashfs images via the same package before handing a
// io.ReaderAt to its reader.
func readImage(path string) ([]byte, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer ra.Close()

	buf := make([]byte, ra.Len())
	if _, err := ra.ReadAt(buf, 0); err != nil {
		return nil, err
	}
	return buf, nil
}
