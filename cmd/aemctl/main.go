// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// aemctl manages local AEM development environments: discovered Java
// and Node runtimes, Maven settings, licenses, quickstart instances,
// and the profiles that bundle them. Run `aemctl --help` for the
// command tree, or `aemctl serve` for the HTTP API.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(CLIExitError)
	}
}
