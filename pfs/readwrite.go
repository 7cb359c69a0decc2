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

// ReadWriteArchive is a read-write PFS archive. It keeps every blob as
// its already-deflated block sequence, so a save that doesn't touch a
// given blob re-emits its compressed bytes verbatim instead of
// recompressing them. This makes it more expensive to hold open than
// [ReadableArchive] but able to round-trip cheaply and deterministically.
//
// Unlike [WritableArchive.Set], [ReadWriteArchive.Set] replaces an
// existing entry rather than failing.
type ReadWriteArchive struct {
	files map[string][]block
}

// NewReadWriteArchive returns an empty ReadWriteArchive.
func NewReadWriteArchive() *ReadWriteArchive {
	return &ReadWriteArchive{
		files: make(map[string][]block),
	}
}

// Close resets the archive to the empty state.
func (a *ReadWriteArchive) Close() {
	a.files = make(map[string][]block)
}

// OpenFromBytes parses data as a PFS archive, replacing any prior
// contents of a.
func (a *ReadWriteArchive) OpenFromBytes(data []byte) error {
	a.Close()

	files, err := parseReadWrite(data)
	if err != nil {
		return err
	}
	a.files = files
	return nil
}

// OpenFile reads filename from disk and parses it as a PFS archive,
// replacing any prior contents of a.
func (a *ReadWriteArchive) OpenFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return ioErr(err)
	}
	return a.OpenFromBytes(data)
}

// Get inflates and returns the named blob without retaining the
// decompressed output. Lookups are case-insensitive.
func (a *ReadWriteArchive) Get(name string) ([]byte, error) {
	blocks, ok := a.files[strings.ToLower(name)]
	if !ok {
		return nil, ErrSrcFileNotFound
	}
	return inflateBlocks(blocks)
}

// Exists reports whether name is present in the archive. Lookups are
// case-insensitive.
func (a *ReadWriteArchive) Exists(name string) bool {
	_, ok := a.files[strings.ToLower(name)]
	return ok
}

// Search returns the names of every blob whose name matches the given
// regular expression, in unspecified order.
func (a *ReadWriteArchive) Search(pattern string) ([]string, error) {
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

// Set deflates data and stores it under name, replacing any existing
// entry. Lookups and storage are case-insensitive.
func (a *ReadWriteArchive) Set(name string, data []byte) error {
	blocks, err := deflateBlocks(data)
	if err != nil {
		return err
	}
	a.files[strings.ToLower(name)] = blocks
	return nil
}

// Remove deletes name from the archive. Fails with [ErrSrcFileNotFound]
// if name is absent.
func (a *ReadWriteArchive) Remove(name string) error {
	lower := strings.ToLower(name)
	if _, ok := a.files[lower]; !ok {
		return ErrSrcFileNotFound
	}
	delete(a.files, lower)
	return nil
}

// Rename moves the blob stored at from to to. Fails with
// [ErrDestFileAlreadyExists] if to exists, or [ErrSrcFileNotFound] if
// from doesn't.
func (a *ReadWriteArchive) Rename(from, to string) error {
	fromLower := strings.ToLower(from)
	toLower := strings.ToLower(to)

	if _, ok := a.files[toLower]; ok {
		return ErrDestFileAlreadyExists
	}
	blocks, ok := a.files[fromLower]
	if !ok {
		return ErrSrcFileNotFound
	}

	delete(a.files, fromLower)
	a.files[toLower] = blocks
	return nil
}

// Copy duplicates the blob stored at from under to, cloning its block
// list. Fails with [ErrDestFileAlreadyExists] if to exists, or
// [ErrSrcFileNotFound] if from doesn't; on either failure a is left
// unchanged.
func (a *ReadWriteArchive) Copy(from, to string) error {
	fromLower := strings.ToLower(from)
	toLower := strings.ToLower(to)

	if _, ok := a.files[toLower]; ok {
		return ErrDestFileAlreadyExists
	}
	blocks, ok := a.files[fromLower]
	if !ok {
		return ErrSrcFileNotFound
	}

	cloned := make([]block, len(blocks))
	copy(cloned, blocks)
	a.files[toLower] = cloned
	return nil
}

// SaveToBytes serialises the archive, reusing each blob's cached
// deflated blocks verbatim rather than recompressing them.
func (a *ReadWriteArchive) SaveToBytes() ([]byte, error) {
	entries := make([]namedBlocks, 0, len(a.files))
	for name, blocks := range a.files {
		entries = append(entries, namedBlocks{name: name, blocks: blocks})
	}
	return emitArchive(entries), nil
}

// SaveToFile serialises the archive, writing the result to filename.
func (a *ReadWriteArchive) SaveToFile(filename string) error {
	data, err := a.SaveToBytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return ioErr(err)
	}
	return nil
}

// parseReadWrite parses a complete archive buffer into a name->blocks
// index, copying each blob's compressed bytes so the archive is
// independent of the source buffer.
func parseReadWrite(data []byte) (map[string][]block, error) {
	dirOffset, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	entries, err := parseDirectory(data, dirOffset)
	if err != nil {
		return nil, err
	}

	parsed := make(map[uint32][]block, len(entries))
	for _, e := range entries {
		blocks, err := walkBlocks(data, e.offset, e.size)
		if err != nil {
			return nil, err
		}
		parsed[e.crc] = blocks
	}

	var names []string
	if table, ok := parsed[filenamesCRC]; ok {
		if raw, err := inflateBlocks(table); err == nil {
			if decoded, err := decodeFilenames(raw); err == nil {
				names = decoded
			}
		}
	}

	files := make(map[string][]block, len(names))
	for _, name := range names {
		crc := FilenameCRC(name)
		if blocks, ok := parsed[crc]; ok {
			files[strings.ToLower(name)] = blocks
			delete(parsed, crc)
		}
	}
	return files, nil
}
