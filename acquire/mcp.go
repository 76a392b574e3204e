package acquire

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/docfetch/kit"
)

// RegisterMCP registers the portal tools on an MCP server.
func (a *Acquirer) RegisterMCP(srv *mcp.Server) {
	mw := kit.Chain(kit.RequestID(), kit.Logging(a.logger))
	a.registerSearchTool(srv, mw)
	a.registerRecentTool(srv, mw)
	a.registerDocumentTool(srv, mw)
	a.registerDownloadTool(srv, mw)
}

var errIDRequired = errors.New("id_doc is required")

// defaultToolLimit applies when a listing tool is called without a limit.
const defaultToolLimit = 20

func toolLimit(n *int) int {
	if n == nil {
		return defaultToolLimit
	}
	return *n
}

// --- search ---

type searchReq struct {
	Query string `json:"query"`
	Limit *int   `json:"limit"`
}

func (a *Acquirer) registerSearchTool(srv *mcp.Server, mw kit.Middleware) {
	tool := &mcp.Tool{
		Name:        "docfetch_search",
		Description: "Search the document portal and return matching document references (id_doc, title, url).",
		InputSchema: kit.InputSchema(map[string]any{
			"query": map[string]any{"type": "string", "description": "Search text, e.g. a standard code like ДБН"},
			"limit": map[string]any{"type": "integer", "description": "Maximum results (default 20)"},
		}, "query"),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*searchReq)
		if r.Query == "" {
			return nil, errors.New("query is required")
		}
		return a.Search(ctx, r.Query, toolLimit(r.Limit))
	}

	kit.RegisterMCPTool(srv, tool, mw(endpoint), kit.DecodeJSON[searchReq]())
}

// --- recent ---

type recentReq struct {
	Limit *int `json:"limit"`
}

func (a *Acquirer) registerRecentTool(srv *mcp.Server, mw kit.Middleware) {
	tool := &mcp.Tool{
		Name:        "docfetch_recent",
		Description: "List the newest documents published on the portal.",
		InputSchema: kit.InputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Maximum results (default 20)"},
		}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return a.Recent(ctx, toolLimit(req.(*recentReq).Limit))
	}

	kit.RegisterMCPTool(srv, tool, mw(endpoint), kit.DecodeJSON[recentReq]())
}

// --- document ---

type documentReq struct {
	ID string `json:"id_doc"`
}

func (a *Acquirer) registerDocumentTool(srv *mcp.Server, mw kit.Middleware) {
	tool := &mcp.Tool{
		Name:        "docfetch_document",
		Description: "Return a document's title, metadata table and direct PDF link if any.",
		InputSchema: kit.InputSchema(map[string]any{
			"id_doc": map[string]any{"type": "string", "description": "Portal document id"},
		}, "id_doc"),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*documentReq)
		if r.ID == "" {
			return nil, errIDRequired
		}
		return a.Document(ctx, r.ID)
	}

	kit.RegisterMCPTool(srv, tool, mw(endpoint), kit.DecodeJSON[documentReq]())
}

// --- download ---

type downloadReq struct {
	ID     string `json:"id_doc"`
	Output string `json:"output"`
}

func (a *Acquirer) registerDownloadTool(srv *mcp.Server, mw kit.Middleware) {
	tool := &mcp.Tool{
		Name:        "docfetch_download",
		Description: "Download a document as PDF, or as standalone HTML when no PDF can be produced. Returns the local path.",
		InputSchema: kit.InputSchema(map[string]any{
			"id_doc": map[string]any{"type": "string", "description": "Portal document id"},
			"output": map[string]any{"type": "string", "description": "Target file or directory (optional)"},
		}, "id_doc"),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*downloadReq)
		if r.ID == "" {
			return nil, errIDRequired
		}
		res, err := a.Download(ctx, r.ID, r.Output)
		if err != nil {
			return nil, err
		}
		a.logger.Info("acquire: mcp download", slog.String("path", res.Path), slog.String("strategy", string(res.Strategy)))
		return res, nil
	}

	kit.RegisterMCPTool(srv, tool, mw(endpoint), kit.DecodeJSON[downloadReq]())
}
