/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

package main

import (
	"os"

	"github.com/testudo-ai/Testudo/cmd/testudo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
