// Package main provides the entry point for the rekon CLI tool.
package main

import "github.com/hrmigrate/rekon/cmd/rekon/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
