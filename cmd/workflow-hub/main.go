/*
Package main is the entry point for the workflow-hub CLI.

workflow-hub stores shared workflow documents and answers natural-language
searches with relevance-ranked, explained results.

Usage:
  workflow-hub [command]

Available Commands:
  search      Search workflows by relevance
  add         Add workflow(s) - paste YAML or use flags
  import      Import workflows from a YAML catalog
  list        List stored workflows
  remove      Remove a workflow
  serve       Run the MCP server (stdio transport)
  serve-http  Run the HTTP search API
  verify      Verify configuration and storage
  benchmark   Measure search latency and throughput
  analytics   Inspect and prune search history
  config      Create or inspect configuration
  version     Show version information

Examples:
  # Load a catalog and search it
  workflow-hub import catalog.yaml
  workflow-hub search "slack alerts"

  # Run as MCP server
  workflow-hub serve
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/workflow-hub/internal/cli"
)

// Build information is injected into internal/version via ldflags:
//
//	go build -ldflags "-X github.com/khanglvm/workflow-hub/internal/version.Version=v1.0.0"
func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
