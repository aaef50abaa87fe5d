package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strings"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080/mcp/stream", "MCP streamable HTTP endpoint")
	keywords := flag.String("keywords", "golang developer", "job_search keywords")
	sources := flag.String("sources", "", "comma-separated explicit sources")
	spreadsheet := flag.String("spreadsheet", "", "spreadsheet id for sheets_export, skipped when empty")
	flag.Parse()

	ctx := context.Background()

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "job-hunter-test-client",
		Version: "0.2.0",
	}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: *endpoint}, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = session.Close() }()

	log.Printf("Connected to server (session ID: %s)\n", session.ID())

	testListTools(ctx, session)
	testSourceStatus(ctx, session)
	jobIDs := testJobSearch(ctx, session, *keywords, *sources)
	testSessionHistory(ctx, session)
	if *spreadsheet != "" && len(jobIDs) > 0 {
		testSheetsExport(ctx, session, *spreadsheet, jobIDs)
	}

	fmt.Println("\nAll tests completed")
}

func testListTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: list tools")
	res, err := session.ListTools(ctx, nil)
	if err != nil {
		log.Printf("list tools failed: %v", err)
		return
	}
	for _, tool := range res.Tools {
		fmt.Printf("  %s: %s\n", tool.Name, tool.Description)
	}
}

func testSourceStatus(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: source_status")
	call(ctx, session, "source_status", map[string]any{"report": true})
}

func testJobSearch(ctx context.Context, session *mcp.ClientSession, keywords, sources string) []string {
	fmt.Println("\nTEST: job_search")

	args := map[string]any{
		"keywords":    keywords,
		"categories":  []string{"it"},
		"date_posted": "month",
	}
	if sources != "" {
		args["sources"] = strings.Split(sources, ",")
	}

	res := call(ctx, session, "job_search", args)
	if res == nil || res.IsError {
		return nil
	}

	var out struct {
		Jobs []struct {
			ID string `json:"id"`
		} `json:"jobs"`
	}
	raw, _ := json.Marshal(res.StructuredContent)
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Printf("decode job_search output: %v", err)
		return nil
	}

	ids := make([]string, 0, len(out.Jobs))
	for _, j := range out.Jobs {
		ids = append(ids, j.ID)
	}
	return ids
}

func testSessionHistory(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: session_history")
	call(ctx, session, "session_history", map[string]any{"limit": 5})
}

func testSheetsExport(ctx context.Context, session *mcp.ClientSession, spreadsheet string, ids []string) {
	fmt.Println("\nTEST: sheets_export")
	call(ctx, session, "sheets_export", map[string]any{
		"job_ids": ids,
		"sheet":   map[string]any{"spreadsheet_id": spreadsheet, "tab": "Jobs"},
	})
}

func call(ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		log.Printf("%s failed: %v", name, err)
		return nil
	}
	printResult(res)
	if res.IsError {
		fmt.Printf("%s returned an error\n", name)
	} else {
		fmt.Printf("%s passed\n", name)
	}
	return res
}

func printResult(res *mcp.CallToolResult) {
	for _, c := range res.Content {
		if txt, ok := c.(*mcp.TextContent); ok {
			fmt.Println(txt.Text)
		}
	}
}
