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

import "strings"

// crcPolynomial is the PFS format's CRC-32 polynomial. This is not the
// IEEE 802.3 polynomial used by hash/crc32.IEEE, nor the Castagnoli
// polynomial; it must not be substituted for either.
const crcPolynomial uint32 = 0x04C11DB7

// crcTable is built once at init time the same way hash/crc32.MakeTable
// builds its reflected tables internally, except this table is built for
// an unreflected, non-XORed CRC-32 variant: no input/output reflection
// and no final XOR, matching the PFS format's parameters.
var crcTable = buildCRCTable()

func buildCRCTable() [256]uint32 {
	var table [256]uint32
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for bit := 0; bit < 8; bit++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// crc32 computes the PFS format's custom CRC-32 over data: polynomial
// 0x04C11DB7, init 0, no input reflection, no output reflection, no
// final XOR.
func crc32(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

// FilenameCRC computes the directory entry CRC for name: the format's
// CRC-32 over the lowercased name bytes followed by a single NUL byte.
// This is the value stored in a directory entry's crc32 field and the
// key used to look files up by name.
func FilenameCRC(name string) uint32 {
	lower := strings.ToLower(name)
	buf := make([]byte, 0, len(lower)+1)
	buf = append(buf, lower...)
	buf = append(buf, 0)
	return crc32(buf)
}
