// Package main is the entry point for the evomut CLI.
package main

import "gooze.dev/pkg/evomut/cmd"

func main() {
	cmd.Execute()
}
