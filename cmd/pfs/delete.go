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

	"github.com/ianlewis/go-pfs/pfs"
)

type del struct {
	archive string
	names   []string
}

// Run removes each named entry from the archive.
func (d *del) Run() error {
	ar := pfs.NewReadWriteArchive()
	if err := ar.OpenFile(d.archive); err != nil {
		return fmt.Errorf("%w: opening archive: %w", ErrPFS, err)
	}

	for _, name := range d.names {
		if err := ar.Remove(name); err != nil {
			return fmt.Errorf("%w: removing %q: %w", ErrPFS, name, err)
		}
	}

	if err := ar.SaveToFile(d.archive); err != nil {
		return fmt.Errorf("%w: saving archive: %w", ErrPFS, err)
	}
	return nil
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "delete named entries from an archive",
		ArgsUsage: "ARCHIVE NAME...",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 2 {
				return fmt.Errorf("%w: delete requires an archive and at least one entry name", ErrFlagParse)
			}
			d := del{
				archive: c.Args().First(),
				names:   c.Args().Tail(),
			}
			return d.Run()
		},
	}
}
