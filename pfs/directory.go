// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pfs

import (
	"encoding/binary"
	"fmt"
)

const (
	// magic is the PFS header signature, the little-endian bytes of
	// "PFS ".
	magic uint32 = 0x20534650

	// Version is the only archive version this package understands.
	Version uint32 = 0x00020000

	// headerLen is the size in bytes of the fixed archive header.
	headerLen = 12

	// entryLen is the size in bytes of one directory entry
	// (crc32, offset, size).
	entryLen = 12
)

// dirEntry is one footer directory entry: (crc32, offset, size).
type dirEntry struct {
	crc    uint32
	offset uint32
	size   uint32
}

// parseHeader reads and validates the fixed 12-byte archive header,
// returning the absolute offset of the directory footer.
func parseHeader(data []byte) (uint32, error) {
	if len(data) < headerLen {
		return 0, parseErr(fmt.Errorf("header: truncated, want %d bytes, got %d", headerLen, len(data)))
	}

	dirOffset := binary.LittleEndian.Uint32(data[0:4])
	gotMagic := binary.LittleEndian.Uint32(data[4:8])
	if gotMagic != magic {
		return 0, parseErr(fmt.Errorf("header: bad magic: %#x", gotMagic))
	}

	version := binary.LittleEndian.Uint32(data[8:12])
	if version != Version {
		return 0, wrongVersionErr(version)
	}

	return dirOffset, nil
}

// parseDirectory reads the entry count and the entries themselves,
// starting at dirOffset.
func parseDirectory(data []byte, dirOffset uint32) ([]dirEntry, error) {
	if uint64(dirOffset)+4 > uint64(len(data)) {
		return nil, parseErr(fmt.Errorf("directory: offset %d out of range", dirOffset))
	}
	cur := data[dirOffset:]

	count := binary.LittleEndian.Uint32(cur[0:4])
	cur = cur[4:]

	need := uint64(count) * entryLen
	if uint64(len(cur)) < need {
		return nil, parseErr(fmt.Errorf("directory: truncated entries, want %d have %d", need, len(cur)))
	}

	entries := make([]dirEntry, count)
	for i := range entries {
		off := i * entryLen
		entries[i] = dirEntry{
			crc:    binary.LittleEndian.Uint32(cur[off : off+4]),
			offset: binary.LittleEndian.Uint32(cur[off+4 : off+8]),
			size:   binary.LittleEndian.Uint32(cur[off+8 : off+12]),
		}
	}
	return entries, nil
}

// blockOffset describes one block's location within a backing buffer,
// used by ReadableArchive so it never copies compressed bytes out of its
// owned buffer.
type blockOffset struct {
	offset     uint32
	deflateLen int
	inflateLen int
}

// walkBlockOffsets walks the block stream starting at offset within
// data, stopping once the cumulative inflate length reaches size, and
// returns each block's location without copying its compressed bytes.
func walkBlockOffsets(data []byte, offset, size uint32) ([]blockOffset, error) {
	var blocks []blockOffset
	pos := offset
	var inflated uint32

	for inflated < size {
		if uint64(pos)+8 > uint64(len(data)) {
			return nil, parseErr(fmt.Errorf("block stream: truncated header at offset %d", pos))
		}
		deflateLen := binary.LittleEndian.Uint32(data[pos : pos+4])
		inflateLen := binary.LittleEndian.Uint32(data[pos+4 : pos+8])
		dataStart := pos + 8

		if uint64(dataStart)+uint64(deflateLen) > uint64(len(data)) {
			return nil, parseErr(fmt.Errorf("block stream: truncated block at offset %d", pos))
		}

		blocks = append(blocks, blockOffset{
			offset:     dataStart,
			deflateLen: int(deflateLen),
			inflateLen: int(inflateLen),
		})

		inflated += inflateLen
		pos = dataStart + deflateLen
	}

	return blocks, nil
}

// walkBlocks is like walkBlockOffsets but copies each block's compressed
// bytes out of data, for archive modes that need to retain them
// independent of the source buffer's lifetime.
func walkBlocks(data []byte, offset, size uint32) ([]block, error) {
	offsets, err := walkBlockOffsets(data, offset, size)
	if err != nil {
		return nil, err
	}

	blocks := make([]block, len(offsets))
	for i, bo := range offsets {
		deflated := make([]byte, bo.deflateLen)
		copy(deflated, data[bo.offset:int(bo.offset)+bo.deflateLen])
		blocks[i] = block{deflated: deflated, inflateLen: bo.inflateLen}
	}
	return blocks, nil
}

// namedBlocks pairs a lowercased archive name with its already-deflated
// block sequence, the common currency emitArchive accepts regardless of
// whether the caller deflated the blocks just now (WritableArchive) or
// is replaying cached ones (ReadWriteArchive).
type namedBlocks struct {
	name   string
	blocks []block
}

// emitArchive serialises files plus a synthesized filename table into a
// complete archive byte stream: header(12) || data || directory.
func emitArchive(files []namedBlocks) []byte {
	var data []byte
	directory := make([]byte, 4, 4+(len(files)+1)*entryLen)
	binary.LittleEndian.PutUint32(directory, uint32(len(files)+1))

	names := make([]string, 0, len(files))
	for _, f := range files {
		offset := uint32(len(data) + headerLen)
		size := totalInflateLen(f.blocks)

		data = appendBlockStream(data, f.blocks)
		directory = appendDirEntry(directory, FilenameCRC(f.name), offset, uint32(size))
		names = append(names, f.name)
	}

	tableBlocks, err := deflateBlocks(encodeFilenames(names))
	if err != nil {
		// encodeFilenames never produces data zlib can't compress;
		// deflateChunk only fails on writer errors, which do not occur
		// against an in-memory bytes.Buffer.
		panic(fmt.Sprintf("pfs: deflating filename table: %v", err))
	}
	tableOffset := uint32(len(data) + headerLen)
	tableSize := totalInflateLen(tableBlocks)
	data = appendBlockStream(data, tableBlocks)
	directory = appendDirEntry(directory, filenamesCRC, tableOffset, uint32(tableSize))

	out := make([]byte, headerLen, headerLen+len(data)+len(directory))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(data)+headerLen))
	binary.LittleEndian.PutUint32(out[4:8], magic)
	binary.LittleEndian.PutUint32(out[8:12], Version)
	out = append(out, data...)
	out = append(out, directory...)
	return out
}

func appendBlockStream(data []byte, blocks []block) []byte {
	for _, b := range blocks {
		var lenBuf [8]byte
		binary.LittleEndian.PutUint32(lenBuf[0:4], uint32(b.deflateLen()))
		binary.LittleEndian.PutUint32(lenBuf[4:8], uint32(b.inflateLen))
		data = append(data, lenBuf[:]...)
		data = append(data, b.deflated...)
	}
	return data
}

func appendDirEntry(directory []byte, crc, offset, size uint32) []byte {
	var buf [entryLen]byte
	binary.LittleEndian.PutUint32(buf[0:4], crc)
	binary.LittleEndian.PutUint32(buf[4:8], offset)
	binary.LittleEndian.PutUint32(buf[8:12], size)
	return append(directory, buf[:]...)
}
