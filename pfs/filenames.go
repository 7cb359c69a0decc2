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
	"unicode/utf8"
)

// filenamesCRC is the sentinel directory entry CRC reserved for the
// synthetic blob holding the archive's filename table.
const filenamesCRC uint32 = 0x61580AC9

// encodeFilenames encodes names as the PFS filename table blob: a
// little-endian u32 count, then for each name a little-endian u32 of
// len(name)+1 followed by the name bytes and a single NUL.
func encodeFilenames(names []string) []byte {
	buf := make([]byte, 4, 4+len(names)*8)
	binary.LittleEndian.PutUint32(buf, uint32(len(names)))

	for _, name := range names {
		n := len(name)
		lenBuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(lenBuf, uint32(n+1))
		buf = append(buf, lenBuf...)
		buf = append(buf, name...)
		buf = append(buf, 0)
	}
	return buf
}

// decodeFilenames decodes a filename table blob as produced by
// encodeFilenames. Truncation and non-UTF-8 name bytes are reported as
// errors to the caller; callers that want the "empty list on truncation"
// leniency from the format's parse policy handle that at the call site.
func decodeFilenames(data []byte) ([]string, error) {
	if len(data) < 4 {
		return nil, parseErr(fmt.Errorf("filename table: truncated count"))
	}
	count := binary.LittleEndian.Uint32(data)
	pos := 4

	names := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if pos+4 > len(data) {
			return nil, parseErr(fmt.Errorf("filename table: truncated length at entry %d", i))
		}
		length := binary.LittleEndian.Uint32(data[pos : pos+4])
		pos += 4

		if length == 0 {
			return nil, parseErr(fmt.Errorf("filename table: zero-length entry %d", i))
		}
		if pos+int(length) > len(data) {
			return nil, parseErr(fmt.Errorf("filename table: truncated name at entry %d", i))
		}

		nameBytes := data[pos : pos+int(length)-1]
		pos += int(length)

		if !utf8.Valid(nameBytes) {
			return nil, wrapErr(KindUTF8, fmt.Errorf("filename table: invalid UTF-8 at entry %d", i))
		}
		names = append(names, string(nameBytes))
	}

	return names, nil
}
