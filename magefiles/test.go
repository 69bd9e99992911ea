//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets.
type Test mg.Namespace

// All runs every test.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs the tests in short mode with the race detector.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "-short", "-race", "./...")
}

// Cover runs every test and writes a coverage profile.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverFile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverFile)
}

// MySQL starts a throwaway MySQL container and runs the storage tests
// against it. An existing KITBOX_TEST_MYSQL_DSN is used as is.
func (Test) MySQL() error {
	if os.Getenv(envMySQLDSN) != "" {
		return runMySQLTests(os.Getenv(envMySQLDSN))
	}

	rt := containerRuntime()
	if rt == "" {
		return fmt.Errorf("no container runtime found (tried podman, docker)")
	}
	if err := startMySQL(rt); err != nil {
		return err
	}
	defer stopMySQL(rt)

	if err := waitForMySQL(rt, 60*time.Second); err != nil {
		return err
	}
	return runMySQLTests(mysqlDSN)
}

func runMySQLTests(dsn string) error {
	env := map[string]string{envMySQLDSN: dsn}
	return sh.RunWithV(env, binGo, "test", "-v", "-run", "MySQL", "./internal/sqlstore/...")
}
