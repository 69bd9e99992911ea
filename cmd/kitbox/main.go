// Command kitbox tracks electronic components across storage boxes.
package main

import "github.com/mesh-intelligence/kitbox/internal/cli"

func main() {
	cli.Execute()
}
