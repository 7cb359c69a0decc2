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
	"os"
	"regexp"
	"strings"
)

// readableFile is the index entry for one blob in a ReadableArchive: its
// uncompressed size and the location of each of its blocks within the
// archive's owned buffer.
type readableFile struct {
	size   uint32
	blocks []blockOffset
}

// ReadableArchive is a read-only PFS archive. It is optimised for cheap
// opens: it parses only the directory up front and inflates a blob's
// blocks on demand in [ReadableArchive.Get]. It retains no decompressed
// data and no copies of compressed bytes; the owned buffer from
// [ReadableArchive.OpenFromBytes] is itself the compressed cache.
type ReadableArchive struct {
	data  []byte
	files map[string]readableFile
}

// NewReadableArchive returns an empty ReadableArchive.
func NewReadableArchive() *ReadableArchive {
	return &ReadableArchive{
		files: make(map[string]readableFile),
	}
}

// Close resets the archive to the empty state.
func (a *ReadableArchive) Close() {
	a.data = nil
	a.files = make(map[string]readableFile)
}

// OpenFromBytes parses data as a PFS archive, replacing any prior
// contents of a.
func (a *ReadableArchive) OpenFromBytes(data []byte) error {
	a.Close()

	buf := make([]byte, len(data))
	copy(buf, data)

	files, err := parseReadable(buf)
	if err != nil {
		return err
	}

	a.data = buf
	a.files = files
	return nil
}

// OpenFile reads filename from disk and parses it as a PFS archive,
// replacing any prior contents of a.
func (a *ReadableArchive) OpenFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return ioErr(err)
	}
	return a.OpenFromBytes(data)
}

// Get inflates and returns the named blob. Lookups are case-insensitive.
func (a *ReadableArchive) Get(name string) ([]byte, error) {
	f, ok := a.files[strings.ToLower(name)]
	if !ok {
		return nil, ErrSrcFileNotFound
	}
	return inflateOffsetBlocks(a.data, f.blocks)
}

// Exists reports whether name is present in the archive. Lookups are
// case-insensitive.
func (a *ReadableArchive) Exists(name string) bool {
	_, ok := a.files[strings.ToLower(name)]
	return ok
}

// Search returns the names of every blob whose name matches the given
// regular expression, in unspecified order.
func (a *ReadableArchive) Search(pattern string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, wrapErr(KindBadRegex, err)
	}

	var matches []string
	for name := range a.files {
		if re.MatchString(name) {
			matches = append(matches, name)
		}
	}
	return matches, nil
}

// parseReadable parses a complete archive buffer into a name->file index
// whose blocks reference offsets in data rather than copies of it.
func parseReadable(data []byte) (map[string]readableFile, error) {
	dirOffset, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	entries, err := parseDirectory(data, dirOffset)
	if err != nil {
		return nil, err
	}

	parsed := make(map[uint32]readableFile, len(entries))
	for _, e := range entries {
		blocks, err := walkBlockOffsets(data, e.offset, e.size)
		if err != nil {
			return nil, err
		}
		parsed[e.crc] = readableFile{size: e.size, blocks: blocks}
	}

	names := filenamesFromOffsetIndex(data, parsed)

	files := make(map[string]readableFile, len(names))
	for _, name := range names {
		if f, ok := parsed[FilenameCRC(name)]; ok {
			files[strings.ToLower(name)] = f
			delete(parsed, FilenameCRC(name))
		}
	}
	return files, nil
}

// filenamesFromOffsetIndex locates the sentinel filename-table entry in
// parsed, inflates it, and decodes it. A parse failure in the table
// itself yields an empty name list rather than aborting the open,
// matching the format's documented leniency toward partially corrupt
// archives.
func filenamesFromOffsetIndex(data []byte, parsed map[uint32]readableFile) []string {
	f, ok := parsed[filenamesCRC]
	if !ok {
		return nil
	}

	raw, err := inflateOffsetBlocks(data, f.blocks)
	if err != nil {
		return nil
	}

	names, err := decodeFilenames(raw)
	if err != nil {
		return nil
	}
	return names
}

// inflateOffsetBlocks inflates the blob described by blocks, reading
// compressed bytes directly out of data.
func inflateOffsetBlocks(data []byte, blocks []blockOffset) ([]byte, error) {
	converted := make([]block, len(blocks))
	for i, bo := range blocks {
		converted[i] = block{
			deflated:   data[bo.offset : int(bo.offset)+bo.deflateLen],
			inflateLen: bo.inflateLen,
		}
	}
	return inflateBlocks(converted)
}
