//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the kitbox project using Mage.
//
// Usage:
//
//	mage build          Compile the kitbox binary to bin/
//	mage serve          Build and run the HTTP API on :5000
//	mage test:all       Run all tests
//	mage test:unit      Run tests in short mode with the race detector
//	mage test:cover     Run all tests and write coverage.out
//	mage test:mysql     Run the MySQL dialect tests against a throwaway container
//	mage docker:image   Build the kitbox container image
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install kitbox to GOPATH/bin
//	mage stats          Print Go LOC per package
package main

// Default target when mage is run without arguments.
var Default = Build
