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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestDeflateBlocksChunking(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		size       int
		wantLens   []int
		wantBlocks int
	}{
		{name: "empty", size: 0, wantBlocks: 0},
		{name: "under one block", size: 100, wantBlocks: 1, wantLens: []int{100}},
		{name: "exactly one block", size: MaxBlockSize, wantBlocks: 1, wantLens: []int{MaxBlockSize}},
		{name: "one block plus one byte", size: MaxBlockSize + 1, wantBlocks: 2, wantLens: []int{MaxBlockSize, 1}},
		{
			name:       "two full blocks plus a remainder",
			size:       20000,
			wantBlocks: 3,
			wantLens:   []int{MaxBlockSize, MaxBlockSize, 20000 - 2*MaxBlockSize},
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data := bytes.Repeat([]byte{0x5a}, tc.size)
			blocks, err := deflateBlocks(data)
			if err != nil {
				t.Fatalf("deflateBlocks: %v", err)
			}

			if diff := cmp.Diff(tc.wantBlocks, len(blocks)); diff != "" {
				t.Fatalf("block count (-want, +got):\n%s", diff)
			}

			gotLens := make([]int, len(blocks))
			for i, b := range blocks {
				gotLens[i] = b.inflateLen
			}
			if diff := cmp.Diff(tc.wantLens, gotLens, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("inflate lengths (-want, +got):\n%s", diff)
			}

			// All but the last block must be exactly MaxBlockSize.
			for i, l := range gotLens {
				if i == len(gotLens)-1 {
					continue
				}
				if l != MaxBlockSize {
					t.Errorf("block %d: inflate length = %d, want %d", i, l, MaxBlockSize)
				}
			}

			got, err := inflateBlocks(blocks)
			if err != nil {
				t.Fatalf("inflateBlocks: %v", err)
			}
			if diff := cmp.Diff(data, got); diff != "" {
				t.Errorf("round-trip (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestInflateBlocksBadData(t *testing.T) {
	t.Parallel()

	_, err := inflateBlocks([]block{{deflated: []byte{0x00, 0x01, 0x02}, inflateLen: 4}})
	if diff := cmp.Diff(ErrDecompression, err, cmpopts.EquateErrors()); diff != "" {
		t.Errorf("inflateBlocks (-want, +got):\n%s", diff)
	}
}

func TestDeflateBlocksRoundTripRandom(t *testing.T) {
	t.Parallel()

	// A payload with easily-compressible and incompressible regions, to
	// exercise both small and pathological zlib outputs across a chunk
	// boundary.
	var data []byte
	data = append(data, bytes.Repeat([]byte{0x00}, MaxBlockSize)...)
	data = append(data, []byte("the quick brown fox jumps over the lazy dog")...)
	data = append(data, bytes.Repeat([]byte{0xff, 0x00}, 5000)...)

	blocks, err := deflateBlocks(data)
	if err != nil {
		t.Fatalf("deflateBlocks: %v", err)
	}

	got, err := inflateBlocks(blocks)
	if err != nil {
		t.Fatalf("inflateBlocks: %v", err)
	}

	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("round-trip (-want, +got):\n%s", diff)
	}
}
