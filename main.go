// The main package for the crawlclient executable.
package main

import (
	"github.com/JakeFAU/crawl4ai-client/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
