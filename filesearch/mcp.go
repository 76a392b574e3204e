package filesearch

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/docfetch/kit"
)

// RegisterMCP registers the read-side store tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	mw := kit.Chain(kit.RequestID(), kit.Logging(s.logger))

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "filesearch_list_stores",
		Description: "List file-search stores with their file count and total size.",
		InputSchema: kit.InputSchema(map[string]any{}),
	}, mw(func(ctx context.Context, _ any) (any, error) {
		return s.ListStores(ctx)
	}), kit.DecodeJSON[struct{}]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "filesearch_search",
		Description: "Answer a question using every document uploaded to a store.",
		InputSchema: kit.InputSchema(map[string]any{
			"query": map[string]any{"type": "string", "description": "Question to answer"},
			"store": map[string]any{"type": "string", "description": "Store name"},
		}, "query", "store"),
	}, mw(func(ctx context.Context, req any) (any, error) {
		r := req.(*searchReq)
		if r.Query == "" || r.Store == "" {
			return nil, errors.New("query and store are required")
		}
		return s.Search(ctx, r.Query, r.Store)
	}), kit.DecodeJSON[searchReq]())
}

type searchReq struct {
	Query string `json:"query"`
	Store string `json:"store"`
}
