//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/magefile/mage/mg"
)

// Container constants.
const (
	dockerImageName = "kitbox"
	dockerImageTag  = "latest"
	dockerfileDir   = "magefiles"

	mysqlImage     = "mysql:8.4"
	mysqlContainer = "kitbox-test-mysql"
	mysqlPort      = "33306"
	mysqlPassword  = "kitbox"
	mysqlDatabase  = "kitbox"
	envMySQLDSN    = "KITBOX_TEST_MYSQL_DSN"
)

var mysqlDSN = "root:" + mysqlPassword + "@tcp(127.0.0.1:" + mysqlPort + ")/" + mysqlDatabase

// Docker groups container targets.
type Docker mg.Namespace

// Image builds the kitbox container image from magefiles/Dockerfile.
func (Docker) Image() error {
	rt := containerRuntime()
	if rt == "" {
		return fmt.Errorf("no container runtime found (tried podman, docker)")
	}
	fmt.Fprintln(os.Stderr, "Building container image...")
	cmd := exec.Command(rt, "build",
		"-t", imageRef(),
		"-f", filepath.Join(dockerfileDir, "Dockerfile"),
		".")
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Clean removes the kitbox image and any leftover test database.
func (Docker) Clean() {
	rt := containerRuntime()
	if rt == "" {
		return
	}
	stopMySQL(rt)
	fmt.Fprintln(os.Stderr, "Removing container image...")
	_ = exec.Command(rt, "rmi", imageRef()).Run()
}

// containerRuntime returns "podman" or "docker" if a working runtime
// is available, or "" if neither is usable. It checks both that the
// binary exists on PATH and that it can connect to its daemon/machine.
func containerRuntime() string {
	for _, name := range []string{"podman", "docker"} {
		if _, err := exec.LookPath(name); err != nil {
			continue
		}
		if exec.Command(name, "info").Run() != nil {
			fmt.Fprintf(os.Stderr, "WARNING: %s found on PATH but not usable (is the daemon/machine running?)\n", name)
			continue
		}
		return name
	}
	return ""
}

// imageRef returns the full image reference (name:tag).
func imageRef() string {
	return dockerImageName + ":" + dockerImageTag
}

func startMySQL(rt string) error {
	stopMySQL(rt)
	fmt.Fprintln(os.Stderr, "Starting MySQL container...")
	cmd := exec.Command(rt, "run", "-d", "--rm",
		"--name", mysqlContainer,
		"-p", mysqlPort+":3306",
		"-e", "MYSQL_ROOT_PASSWORD="+mysqlPassword,
		"-e", "MYSQL_DATABASE="+mysqlDatabase,
		mysqlImage)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// stopMySQL removes the test container. Errors are ignored because the
// container may not exist.
func stopMySQL(rt string) {
	_ = exec.Command(rt, "rm", "-f", mysqlContainer).Run()
}

// waitForMySQL polls mysqladmin inside the container until the server
// answers or timeout passes.
func waitForMySQL(rt string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		err := exec.Command(rt, "exec", mysqlContainer,
			"mysqladmin", "ping", "-h", "127.0.0.1", "-uroot", "-p"+mysqlPassword, "--silent").Run()
		if err == nil {
			return nil
		}
		time.Sleep(time.Second)
	}
	return fmt.Errorf("mysql did not become ready within %s", timeout)
}
