//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

// Binary names.
const (
	binGo   = "go"
	binLint = "golangci-lint"
)

// Paths.
const (
	binaryName = "kitbox"
	binaryDir  = "bin"
	cmdDir     = "./cmd/kitbox"
	coverFile  = "coverage.out"
)
