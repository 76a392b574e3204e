package acquire

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/docfetch/acquire/model"
)

var testMCPImpl = &mcp.Implementation{Name: "docfetch-test", Version: "0.1.0"}

func mcpSession(t *testing.T, a *Acquirer) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testMCPImpl, nil)
	a.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	session, err := mcp.NewClient(testMCPImpl, nil).Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCall(t *testing.T, session *mcp.ClientSession, name string, args any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return result
}

func mcpText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if err := result.GetError(); err != nil {
		t.Fatalf("tool error: %v", err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatal("expected TextContent")
	}
	return tc.Text
}

func TestMCP_Search(t *testing.T) {
	h := newHarness(t)
	session := mcpSession(t, h.acquirer(t, Config{}))

	text := mcpText(t, mcpCall(t, session, "docfetch_search", map[string]any{"query": "ДБН", "limit": 2}))

	var refs []model.Reference
	if err := json.Unmarshal([]byte(text), &refs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(refs) != 2 || refs[0].ExternalID != "1" {
		t.Errorf("got %+v", refs)
	}
}

func TestMCP_SearchDefaultLimit(t *testing.T) {
	// WHAT: an omitted limit falls back to the tool default; an explicit
	// zero still lists nothing.
	h := newHarness(t)
	session := mcpSession(t, h.acquirer(t, Config{}))

	var refs []model.Reference
	text := mcpText(t, mcpCall(t, session, "docfetch_search", map[string]any{"query": "ДБН"}))
	if err := json.Unmarshal([]byte(text), &refs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(refs) != 3 {
		t.Errorf("default limit: got %d refs, want 3", len(refs))
	}

	refs = nil
	text = mcpText(t, mcpCall(t, session, "docfetch_search", map[string]any{"query": "ДБН", "limit": 0}))
	if err := json.Unmarshal([]byte(text), &refs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("zero limit: got %+v", refs)
	}
}

func TestMCP_Document(t *testing.T) {
	h := newHarness(t)
	session := mcpSession(t, h.acquirer(t, Config{}))

	text := mcpText(t, mcpCall(t, session, "docfetch_document", map[string]any{"id_doc": "1"}))

	var d model.Detail
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Title == "" || len(d.Metadata) != 1 {
		t.Errorf("got %+v", d)
	}
}

func TestMCP_Download(t *testing.T) {
	h := newHarness(t)
	h.page.PDF = []byte("%PDF-1.4\n%%EOF\n")
	session := mcpSession(t, h.acquirer(t, Config{DownloadDir: t.TempDir()}))

	text := mcpText(t, mcpCall(t, session, "docfetch_download", map[string]any{"id_doc": "1"}))

	var res model.Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Strategy != model.StrategyRenderedPDF || res.Path == "" {
		t.Errorf("got %+v", res)
	}
}

func TestMCP_Errors(t *testing.T) {
	h := newHarness(t)
	session := mcpSession(t, h.acquirer(t, Config{}))

	if res := mcpCall(t, session, "docfetch_document", map[string]any{}); !res.IsError {
		t.Error("missing id should be a tool error")
	}
	if res := mcpCall(t, session, "docfetch_document", map[string]any{"id_doc": "404"}); !res.IsError {
		t.Error("unknown document should be a tool error")
	}
	if res := mcpCall(t, session, "docfetch_search", map[string]any{"query": ""}); !res.IsError {
		t.Error("empty query should be a tool error")
	}
}

func TestMCP_Recent(t *testing.T) {
	h := newHarness(t)
	session := mcpSession(t, h.acquirer(t, Config{}))

	text := mcpText(t, mcpCall(t, session, "docfetch_recent", map[string]any{}))
	var refs []model.Reference
	if err := json.Unmarshal([]byte(text), &refs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("got %+v", refs)
	}
}
