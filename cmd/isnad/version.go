package main

import "fmt"

// Run prints the CLI version.
func (c *VersionCmd) Run() error {
	fmt.Printf("isnad version %s (commit: %s)\n", version, commit)
	return nil
}
