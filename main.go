// The main package for the sitemapper executable.
package main

import (
	"github.com/mpetrov/sitemapper/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
