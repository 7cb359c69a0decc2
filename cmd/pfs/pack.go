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
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-pfs/pfs"
)

type pack struct {
	dir     string
	archive string
}

// Run builds a new archive from every entry directly inside dir that is
// not a directory. Subdirectories are skipped, not descended into.
func (p *pack) Run() error {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return fmt.Errorf("%w: reading %q: %w", ErrPFS, p.dir, err)
	}

	ar := pfs.NewWritableArchive()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(p.dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("%w: reading %q: %w", ErrPFS, entry.Name(), err)
		}
		if err := ar.Set(entry.Name(), data); err != nil {
			return fmt.Errorf("%w: adding %q: %w", ErrPFS, entry.Name(), err)
		}
	}

	if err := ar.SaveToFile(p.archive); err != nil {
		return fmt.Errorf("%w: saving archive: %w", ErrPFS, err)
	}
	return nil
}

func packCommand() *cli.Command {
	return &cli.Command{
		Name:      "pack",
		Usage:     "pack a directory's files into a new archive",
		ArgsUsage: "DIR ARCHIVE",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return fmt.Errorf("%w: pack requires a directory and an archive path", ErrFlagParse)
			}
			p := pack{
				dir:     c.Args().Get(0),
				archive: c.Args().Get(1),
			}
			return p.Run()
		},
	}
}
