package main

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fantasylab/fantasy-lab/internal/category"
	"github.com/fantasylab/fantasy-lab/internal/model"
)

type NoArgs struct{}

type RankingsArgs struct {
	Punt  []string `json:"punt,omitempty" jsonschema:"Category keys to punt (fg_pct, ft_pct, tpm, pts, reb, ast, stl, blk, to)"`
	Limit int      `json:"limit,omitempty" jsonschema:"Max players to return (0 = all)"`
}

type TeamSummaryArgs struct {
	Punt      []string `json:"punt,omitempty" jsonschema:"Category keys to punt"`
	Roster    []string `json:"roster" jsonschema:"Player ids on the roster"`
	PreviewID string   `json:"preview_id,omitempty" jsonschema:"Optional player id to preview adding"`
}

type PlayerLookupArgs struct {
	ID   string   `json:"id" jsonschema:"Player id (required)"`
	Punt []string `json:"punt,omitempty" jsonschema:"Category keys to punt"`
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func newMCPServer(a *app) (*mcp.Server, []toolInfo) {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fantasy-lab",
			Version: "0.1.0",
		},
		nil,
	)

	registry := make([]toolInfo, 0, 8)

	addTool(server, &registry, &mcp.Tool{
		Name:        "categories",
		Description: "Scoring categories with labels and direction (turnovers: lower is better)",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NoArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(a.categories())
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "rankings",
		Description: "Players ranked by total z-score value, excluding punted categories",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args RankingsArgs) (*mcp.CallToolResult, any, error) {
		punts, err := category.ParsePuntSet(args.Punt)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(a.rankings(ctx, punts, args.Limit))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "team_summary",
		Description: "Roster members in ranked order with mean z-score per category, plus optional add preview",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args TeamSummaryArgs) (*mcp.CallToolResult, any, error) {
		ids := make([]model.PlayerID, 0, len(args.Roster))
		for _, id := range args.Roster {
			ids = append(ids, model.PlayerID(id))
		}
		return toolJSON(a.team(teamRequest{
			Punt:      args.Punt,
			Roster:    ids,
			PreviewID: model.PlayerID(args.PreviewID),
		}))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "player_lookup",
		Description: "One player's z-scores, total value and overall rank",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args PlayerLookupArgs) (*mcp.CallToolResult, any, error) {
		punts, err := category.ParsePuntSet(args.Punt)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(a.player(model.PlayerID(args.ID), punts))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "league_averages",
		Description: "Dataset season, last update and league mean/std per category",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NoArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(a.leagueAverages())
	})

	return server, registry
}

func addTool[T any](server *mcp.Server, registry *[]toolInfo, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, handler)
}

func toolJSON(res []byte, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSONBytes(res), nil, nil
}

func toolJSONBytes(res []byte) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(res)},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
