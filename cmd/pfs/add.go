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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-pfs/pfs"
)

type add struct {
	archive string
	paths   []string
}

// Run adds each of the given files to the archive under its base name,
// creating the archive if it doesn't already exist.
func (a *add) Run() error {
	ar := pfs.NewReadWriteArchive()
	if err := ar.OpenFile(a.archive); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: opening archive: %w", ErrPFS, err)
	}

	for _, path := range a.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: reading %q: %w", ErrPFS, path, err)
		}
		if err := ar.Set(filepath.Base(path), data); err != nil {
			return fmt.Errorf("%w: adding %q: %w", ErrPFS, path, err)
		}
	}

	if err := ar.SaveToFile(a.archive); err != nil {
		return fmt.Errorf("%w: saving archive: %w", ErrPFS, err)
	}
	return nil
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "add files to an archive, creating it if necessary",
		ArgsUsage: "ARCHIVE FILE...",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 2 {
				return fmt.Errorf("%w: add requires an archive and at least one file", ErrFlagParse)
			}
			a := add{
				archive: c.Args().First(),
				paths:   c.Args().Tail(),
			}
			return a.Run()
		},
	}
}
