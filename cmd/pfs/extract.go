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

type extract struct {
	archive string
	dir     string
	names   []string
}

// Run writes the named entries (or every entry, if none are named) to dir.
// A failure extracting one entry is reported on stderr; extraction
// continues with the remaining entries rather than aborting.
func (e *extract) Run() error {
	ar := pfs.NewReadableArchive()
	if err := ar.OpenFile(e.archive); err != nil {
		return fmt.Errorf("%w: opening archive: %w", ErrPFS, err)
	}

	names := e.names
	if len(names) == 0 {
		matched, err := ar.Search(".*")
		if err != nil {
			return fmt.Errorf("%w: listing archive: %w", ErrPFS, err)
		}
		names = matched
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %q: %w", ErrPFS, e.dir, err)
	}

	failed := false
	for _, name := range names {
		if err := e.extractOne(ar, name); err != nil {
			_ = must(fmt.Fprintf(os.Stderr, "%s: extracting %q: %v\n", ErrPFS, name, err))
			failed = true
			continue
		}
	}

	if failed {
		return fmt.Errorf("%w: one or more entries failed to extract", ErrPFS)
	}
	return nil
}

func (e *extract) extractOne(ar *pfs.ReadableArchive, name string) error {
	data, err := ar.Get(name)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(e.dir, name), data, 0o644)
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "extract entries from an archive",
		ArgsUsage: "ARCHIVE [NAME...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Usage:   "directory to extract into",
				Aliases: []string{"C"},
				Value:   ".",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 1 {
				return fmt.Errorf("%w: extract requires an archive", ErrFlagParse)
			}
			e := extract{
				archive: c.Args().First(),
				dir:     c.String("dir"),
				names:   c.Args().Tail(),
			}
			return e.Run()
		},
	}
}
