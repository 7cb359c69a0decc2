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
	"sort"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-pfs/pfs"
)

type list struct {
	archive string
}

// Run prints a table of every entry in the archive and its size.
func (l *list) Run() error {
	ar := pfs.NewReadableArchive()
	if err := ar.OpenFile(l.archive); err != nil {
		return fmt.Errorf("%w: opening archive: %w", ErrPFS, err)
	}

	names, err := ar.Search(".*")
	if err != nil {
		return fmt.Errorf("%w: listing archive: %w", ErrPFS, err)
	}
	sort.Strings(names)

	tbl := table.New("name", "size")
	for _, name := range names {
		data, err := ar.Get(name)
		if err != nil {
			return fmt.Errorf("%w: reading %q: %w", ErrPFS, name, err)
		}
		tbl.AddRow(name, len(data))
	}
	tbl.Print()

	return nil
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "list the entries in an archive",
		ArgsUsage: "ARCHIVE",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("%w: list requires exactly one archive", ErrFlagParse)
			}
			l := list{archive: c.Args().First()}
			return l.Run()
		},
	}
}
