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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilenameCRC(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		crc  uint32
	}{
		{name: "innch0003.bmp", crc: 0xD32DA54A},
		{name: "innhe0004.bmp", crc: 0xD33312A3},
		{name: "beahe0204.bmp", crc: 0xD46B03A5},
		// Upper-case input must hash the same as its lowercased form
		// since directory lookups are always by lowercased name.
		{name: "INNCH0003.BMP", crc: 0xD32DA54A},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := FilenameCRC(tc.name)
			if diff := cmp.Diff(tc.crc, got); diff != "" {
				t.Errorf("FilenameCRC(%q) (-want, +got):\n%s", tc.name, diff)
			}
		})
	}
}

func TestFilenamesCRCSentinel(t *testing.T) {
	t.Parallel()

	if diff := cmp.Diff(uint32(0x61580AC9), filenamesCRC); diff != "" {
		t.Errorf("filenamesCRC (-want, +got):\n%s", diff)
	}
}
