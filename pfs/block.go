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
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// MaxBlockSize is the maximum number of uncompressed bytes carried by a
// single block. All blocks in a blob have exactly this many inflated
// bytes except (optionally) the last.
const MaxBlockSize = 8192

// block is one zlib-compressed chunk of a blob. deflated holds the
// compressed bytes; inflateLen is the number of bytes it decompresses to.
type block struct {
	deflated   []byte
	inflateLen int
}

// deflateLen returns the compressed byte count of the block.
func (b block) deflateLen() int {
	return len(b.deflated)
}

// deflateBlocks splits data into MaxBlockSize-byte chunks (the last chunk
// may be shorter) and zlib-compresses each independently, preserving
// chunk order. An empty input produces zero blocks, matching a directory
// entry whose size is 0 and whose block stream is correspondingly empty.
func deflateBlocks(data []byte) ([]block, error) {
	if len(data) == 0 {
		return nil, nil
	}

	blocks := make([]block, 0, (len(data)+MaxBlockSize-1)/MaxBlockSize)
	for offset := 0; offset < len(data); offset += MaxBlockSize {
		end := offset + MaxBlockSize
		if end > len(data) {
			end = len(data)
		}
		b, err := deflateChunk(data[offset:end])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func deflateChunk(chunk []byte) (block, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(chunk); err != nil {
		return block{}, wrapErr(KindCompression, err)
	}
	if err := w.Close(); err != nil {
		return block{}, wrapErr(KindCompression, err)
	}
	return block{
		deflated:   buf.Bytes(),
		inflateLen: len(chunk),
	}, nil
}

// inflateBlocks decompresses and concatenates the given blocks in order.
// Each block is truncated to its declared inflateLen, tolerating
// decoders that produce more data than requested for a buffer sized
// inflateLen+1.
func inflateBlocks(blocks []block) ([]byte, error) {
	out := make([]byte, 0, totalInflateLen(blocks))
	for _, b := range blocks {
		data, err := inflateChunk(b)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

func inflateChunk(b block) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(b.deflated))
	if err != nil {
		return nil, wrapErr(KindDecompression, err)
	}
	defer r.Close()

	buf := make([]byte, b.inflateLen+1)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, wrapErr(KindDecompression, err)
	}
	if n < b.inflateLen {
		return nil, wrapErr(KindDecompression, fmt.Errorf("short block: want %d bytes, got %d", b.inflateLen, n))
	}
	return buf[:b.inflateLen], nil
}

func totalInflateLen(blocks []block) int {
	var n int
	for _, b := range blocks {
		n += b.inflateLen
	}
	return n
}
