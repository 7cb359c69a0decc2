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
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func buildArchive(t *testing.T, files map[string][]byte) []byte {
	t.Helper()

	entries := make([]namedBlocks, 0, len(files))
	for name, data := range files {
		blocks, err := deflateBlocks(data)
		if err != nil {
			t.Fatalf("deflateBlocks(%q): %v", name, err)
		}
		entries = append(entries, namedBlocks{name: name, blocks: blocks})
	}
	return emitArchive(entries)
}

func TestReadableArchiveOpenAndGet(t *testing.T) {
	t.Parallel()

	archiveBytes := buildArchive(t, map[string][]byte{
		"foo.txt": []byte("hello world"),
		"Bar.txt": []byte("goodbye"),
	})

	a := NewReadableArchive()
	if err := a.OpenFromBytes(archiveBytes); err != nil {
		t.Fatalf("OpenFromBytes: %v", err)
	}

	got, err := a.Get("foo.txt")
	if err != nil {
		t.Fatalf("Get(foo.txt): %v", err)
	}
	if diff := cmp.Diff([]byte("hello world"), got); diff != "" {
		t.Errorf("Get(foo.txt) (-want, +got):\n%s", diff)
	}

	// Case-insensitive lookup, both at set time (mixed case "Bar.txt")
	// and at get time (all upper-case "BAR.TXT").
	got, err = a.Get("BAR.TXT")
	if err != nil {
		t.Fatalf("Get(BAR.TXT): %v", err)
	}
	if diff := cmp.Diff([]byte("goodbye"), got); diff != "" {
		t.Errorf("Get(BAR.TXT) (-want, +got):\n%s", diff)
	}

	if !a.Exists("foo.txt") {
		t.Errorf("Exists(foo.txt) = false, want true")
	}
	if a.Exists("missing.txt") {
		t.Errorf("Exists(missing.txt) = true, want false")
	}

	_, err = a.Get("missing.txt")
	if diff := cmp.Diff(ErrSrcFileNotFound, err, cmpopts.EquateErrors()); diff != "" {
		t.Errorf("Get(missing.txt) (-want, +got):\n%s", diff)
	}
}

func TestReadableArchiveSearch(t *testing.T) {
	t.Parallel()

	archiveBytes := buildArchive(t, map[string][]byte{
		"foo.bmp": []byte("a"),
		"bar.bmp": []byte("b"),
		"baz.txt": []byte("c"),
	})

	a := NewReadableArchive()
	if err := a.OpenFromBytes(archiveBytes); err != nil {
		t.Fatalf("OpenFromBytes: %v", err)
	}

	got, err := a.Search(`\.bmp$`)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	sort.Strings(got)

	want := []string{"bar.bmp", "foo.bmp"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Search (-want, +got):\n%s", diff)
	}
}

func TestReadableArchiveBadRegex(t *testing.T) {
	t.Parallel()

	a := NewReadableArchive()
	_, err := a.Search("(unterminated")
	if diff := cmp.Diff(ErrBadRegex, err, cmpopts.EquateErrors()); diff != "" {
		t.Errorf("Search (-want, +got):\n%s", diff)
	}
}

func TestReadableArchiveWrongVersion(t *testing.T) {
	t.Parallel()

	data := []byte{
		0x0c, 0x0, 0x0, 0x0,
		'P', 'F', 'S', ' ',
		0x0, 0x0, 0x1, 0x0, // version 65536
	}

	a := NewReadableArchive()
	err := a.OpenFromBytes(data)
	if diff := cmp.Diff(ErrWrongVersion, err, cmpopts.EquateErrors()); diff != "" {
		t.Errorf("OpenFromBytes (-want, +got):\n%s", diff)
	}
}

func TestReadableArchiveCloseResets(t *testing.T) {
	t.Parallel()

	archiveBytes := buildArchive(t, map[string][]byte{"a.txt": []byte("x")})

	a := NewReadableArchive()
	if err := a.OpenFromBytes(archiveBytes); err != nil {
		t.Fatalf("OpenFromBytes: %v", err)
	}
	a.Close()

	if a.Exists("a.txt") {
		t.Errorf("Exists(a.txt) = true after Close, want false")
	}
	if _, err := a.Get("a.txt"); err == nil {
		t.Errorf("Get(a.txt) succeeded after Close, want error")
	}
}

func TestReadableArchiveOrphanEntriesDropped(t *testing.T) {
	t.Parallel()

	// An archive whose directory carries an extra entry with a CRC that
	// matches no name in the filename table. Per the format's tolerance
	// policy, that entry must be silently dropped rather than surfaced,
	// even though it points at a structurally valid block stream.
	blocks, err := deflateBlocks([]byte("data"))
	if err != nil {
		t.Fatalf("deflateBlocks: %v", err)
	}
	archiveBytes := emitArchive([]namedBlocks{{name: "real.txt", blocks: blocks}})

	dirOffset, err := parseHeader(archiveBytes)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	entries, err := parseDirectory(archiveBytes, dirOffset)
	if err != nil {
		t.Fatalf("parseDirectory: %v", err)
	}

	// Reuse the filename table's own entry (a valid block stream) under
	// a bogus CRC that no name will ever hash to.
	var tableEntry dirEntry
	for _, e := range entries {
		if e.crc == filenamesCRC {
			tableEntry = e
		}
	}

	patched := append([]byte{}, archiveBytes[:dirOffset]...)
	directory := make([]byte, 4, 4+(len(entries)+1)*entryLen)
	binary.LittleEndian.PutUint32(directory, uint32(len(entries)+1))
	for _, e := range entries {
		directory = appendDirEntry(directory, e.crc, e.offset, e.size)
	}
	directory = appendDirEntry(directory, 0xdeadbeef, tableEntry.offset, tableEntry.size)
	patched = append(patched, directory...)

	a := NewReadableArchive()
	if err := a.OpenFromBytes(patched); err != nil {
		t.Fatalf("OpenFromBytes: %v", err)
	}

	if diff := cmp.Diff(1, len(a.files)); diff != "" {
		t.Errorf("file count (-want, +got):\n%s", diff)
	}
}
