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

// Command pfs reads and writes PFS archives from the command line.
package main

import (
	"os"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler has already reported err and set the exit code;
		// nothing further to do here.
		return
	}
}
