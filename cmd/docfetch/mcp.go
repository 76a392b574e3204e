package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var version = "dev"

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the portal and file-search tools over MCP on stdio.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			acq, err := a.acquirer()
			if err != nil {
				return err
			}

			// search needs Vertex; listing works with the manifest alone
			need := backends{answerer: a.cfg.FileSearch.Project != ""}
			svc, cleanup, err := a.fileSearch(ctx, need)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := mcp.NewServer(&mcp.Implementation{Name: "docfetch", Version: version}, nil)
			acq.RegisterMCP(srv)
			svc.RegisterMCP(srv)

			a.logger.Info("docfetch: mcp serving on stdio")
			return srv.Run(ctx, &mcp.StdioTransport{})
		},
	}
}
