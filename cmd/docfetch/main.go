// Command docfetch acquires documents from the budstandart portal through an
// already running Chrome and manages file-search stores over the results.
//
// Usage:
//
//	docfetch search "ДБН" --limit 5
//	docfetch document 12345
//	docfetch download 12345 --output ./docs/
//	docfetch recent
//	docfetch credentials set --email user@example.com
//	docfetch store create dbn
//	docfetch store upload ./docs/ДБН.pdf --store dbn
//	docfetch store search "висота поверху" --store dbn
//	docfetch mcp
//
// Chrome must expose its remote debugging port (default localhost:9222).
// Results go to stdout as JSON, progress to stderr as JSON log lines.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "docfetch:", err)
		os.Exit(1)
	}
}
