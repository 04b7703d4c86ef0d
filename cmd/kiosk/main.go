// Package main provides the kiosk CLI.
package main

import "github.com/mesh-intelligence/kiosk/internal/cli"

func main() {
	cli.Execute()
}
