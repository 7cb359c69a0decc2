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

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// unpack is extract with no names given: every entry in the archive is
// written to dir. It is kept as a distinct, non-abbreviatable verb since
// that's how the original archive tooling exposed it.
func unpackCommand() *cli.Command {
	return &cli.Command{
		Name:      "unpack",
		Usage:     "extract every entry in an archive to a directory",
		ArgsUsage: "ARCHIVE DIR",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return fmt.Errorf("%w: unpack requires an archive and a target directory", ErrFlagParse)
			}
			e := extract{
				archive: c.Args().Get(0),
				dir:     c.Args().Get(1),
			}
			return e.Run()
		},
	}
}
