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
	"strings"
)

// WritableArchive is a write-only PFS archive. It keeps blobs as raw
// uncompressed bytes and only deflates them when saved, which makes it
// cheaper than [ReadWriteArchive] for archives that are built once and
// never read back.
//
// Unlike [ReadWriteArchive.Set], [WritableArchive.Set] refuses to
// overwrite an existing entry.
type WritableArchive struct {
	files map[string][]byte
}

// NewWritableArchive returns an empty WritableArchive.
func NewWritableArchive() *WritableArchive {
	return &WritableArchive{
		files: make(map[string][]byte),
	}
}

// Close resets the archive to the empty state.
func (a *WritableArchive) Close() {
	a.files = make(map[string][]byte)
}

// Set stores data under name. Lookups and storage are case-insensitive.
// Set fails with [ErrDestFileAlreadyExists] if name is already present;
// use [WritableArchive.Remove] first to replace an entry.
func (a *WritableArchive) Set(name string, data []byte) error {
	lower := strings.ToLower(name)
	if _, ok := a.files[lower]; ok {
		return ErrDestFileAlreadyExists
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	a.files[lower] = buf
	return nil
}

// Remove deletes name from the archive. Fails with [ErrSrcFileNotFound]
// if name is absent.
func (a *WritableArchive) Remove(name string) error {
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
func (a *WritableArchive) Rename(from, to string) error {
	fromLower := strings.ToLower(from)
	toLower := strings.ToLower(to)

	if _, ok := a.files[toLower]; ok {
		return ErrDestFileAlreadyExists
	}
	data, ok := a.files[fromLower]
	if !ok {
		return ErrSrcFileNotFound
	}

	delete(a.files, fromLower)
	a.files[toLower] = data
	return nil
}

// Copy duplicates the blob stored at from under to. Fails with
// [ErrDestFileAlreadyExists] if to exists, or [ErrSrcFileNotFound] if
// from doesn't; on either failure a is left unchanged.
func (a *WritableArchive) Copy(from, to string) error {
	fromLower := strings.ToLower(from)
	toLower := strings.ToLower(to)

	if _, ok := a.files[toLower]; ok {
		return ErrDestFileAlreadyExists
	}
	data, ok := a.files[fromLower]
	if !ok {
		return ErrSrcFileNotFound
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	a.files[toLower] = buf
	return nil
}

// SaveToBytes deflates every blob in fixed-size blocks and serialises the
// archive to a complete byte stream.
func (a *WritableArchive) SaveToBytes() ([]byte, error) {
	entries := make([]namedBlocks, 0, len(a.files))
	for name, data := range a.files {
		blocks, err := deflateBlocks(data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, namedBlocks{name: name, blocks: blocks})
	}
	return emitArchive(entries), nil
}

// SaveToFile deflates and serialises the archive, writing the result to
// filename.
func (a *WritableArchive) SaveToFile(filename string) error {
	data, err := a.SaveToBytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return ioErr(err)
	}
	return nil
}
