package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/raidstone/wgevents/guard/config"
	"github.com/raidstone/wgevents/guard/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"WorldGuard Region Events",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`WorldGuard Region Events - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Regions are named cuboids in a world. An actor (player) stands in every
region whose cuboid contains its position, plus the world's __global__
region if one is defined. Region names are compared without regard to case.

AVAILABLE TOOLS:
- list_worlds: List loaded worlds and their region counts
- regions_at: Regions at a coordinate
- list_actors: List online actors with their regions
- join_actor: Bring an actor online at a position
- move_actor: Move an actor; moves into entry=deny regions are refused
- leave_actor: Take an actor offline
- actor_regions: Regions an actor currently stands in
- check_membership: Check an actor against a list of regions (mode all or any)`),
	)

	c.registerTools()
}

func positionProperties() map[string]interface{} {
	return map[string]interface{}{
		"world": map[string]interface{}{
			"type":        "string",
			"description": "World name",
		},
		"x": map[string]interface{}{"type": "number", "description": "X coordinate"},
		"y": map[string]interface{}{"type": "number", "description": "Y coordinate"},
		"z": map[string]interface{}{"type": "number", "description": "Z coordinate"},
	}
}

func actorIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Actor UUID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_worlds",
		Description: "List loaded worlds and their region counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListWorlds)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "regions_at",
		Description: "List the regions applicable at a coordinate",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: positionProperties(),
			Required:   []string{"world", "x", "y", "z"},
		},
	}, c.handleRegionsAt)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_actors",
		Description: "List online actors with their positions and regions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListActors)

	joinProps := positionProperties()
	joinProps["name"] = map[string]interface{}{
		"type":        "string",
		"description": "Actor name, unique ignoring case",
	}
	joinProps["actor_id"] = map[string]interface{}{
		"type":        "string",
		"description": "Actor UUID (optional, generated if omitted)",
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_actor",
		Description: "Bring an actor online at a position",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: joinProps,
			Required:   []string{"name", "world", "x", "y", "z"},
		},
	}, c.handleJoinActor)

	moveProps := positionProperties()
	moveProps["actor_id"] = actorIDProperty()
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_actor",
		Description: "Move an online actor. Region flags may deny the move.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: moveProps,
			Required:   []string{"actor_id", "world", "x", "y", "z"},
		},
	}, c.handleMoveActor)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leave_actor",
		Description: "Take an actor offline",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"actor_id": actorIDProperty(),
			},
			Required: []string{"actor_id"},
		},
	}, c.handleLeaveActor)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "actor_regions",
		Description: "List the regions an actor currently stands in. Offline actors are in no regions.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"actor_id": actorIDProperty(),
			},
			Required: []string{"actor_id"},
		},
	}, c.handleActorRegions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "check_membership",
		Description: "Check whether an actor is in all or any of the given regions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"actor_id": actorIDProperty(),
				"regions": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Region names to check, at least one",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"all", "any"},
					"description": "all: in every region; any: in at least one (default all)",
				},
			},
			Required: []string{"actor_id", "regions"},
		},
	}, c.handleCheckMembership)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func numberArg(args map[string]interface{}, key string) (float64, error) {
	switch v := args[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

type position struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

func positionArg(args map[string]interface{}) (position, error) {
	p := position{World: stringArg(args, "world")}
	if p.World == "" {
		return p, fmt.Errorf("world is required")
	}
	var err error
	if p.X, err = numberArg(args, "x"); err != nil {
		return p, err
	}
	if p.Y, err = numberArg(args, "y"); err != nil {
		return p, err
	}
	if p.Z, err = numberArg(args, "z"); err != nil {
		return p, err
	}
	return p, nil
}

func stringsArg(args map[string]interface{}, key string) []string {
	var out []string
	switch v := args[key].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case []string:
		out = append(out, v...)
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Tool handlers

func (c *Client) handleListWorlds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Count  int                 `json:"count"`
		Worlds []*config.WorldInfo `json:"worlds"`
	}
	if err := c.apiCall(ctx, "GET", "/api/worlds", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(resp.Worlds) == 0 {
		return mcp.NewToolResultText("No worlds loaded"), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Worlds (%d):\n", resp.Count))
	for _, w := range resp.Worlds {
		global := ""
		if w.HasGlobal {
			global = ", __global__"
		}
		sb.WriteString(fmt.Sprintf("- %s: %d regions%s", w.World, w.RegionCount, global))
		if w.Description != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", w.Description))
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleRegionsAt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := positionArg(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	query.Set("x", fmt.Sprint(p.X))
	query.Set("y", fmt.Sprint(p.Y))
	query.Set("z", fmt.Sprint(p.Z))
	path := fmt.Sprintf("/api/worlds/%s/regions?%s", url.PathEscape(p.World), query.Encode())

	var result service.RegionsResult
	if err := c.apiCall(ctx, "GET", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRegions(fmt.Sprintf("%s(%g,%g,%g)", p.World, p.X, p.Y, p.Z), &result)), nil
}

func (c *Client) handleListActors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Count  int                  `json:"count"`
		Actors []*service.ActorInfo `json:"actors"`
	}
	if err := c.apiCall(ctx, "GET", "/api/actors", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(resp.Actors) == 0 {
		return mcp.NewToolResultText("No actors online"), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Online actors (%d):\n", resp.Count))
	for _, a := range resp.Actors {
		sb.WriteString("- " + formatActor(a) + "\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleJoinActor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	p, err := positionArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"id":       stringArg(args, "actor_id"),
		"name":     stringArg(args, "name"),
		"position": p,
	}

	var info service.ActorInfo
	if err := c.apiCall(ctx, "POST", "/api/actors", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Joined: " + formatActor(&info)), nil
}

func (c *Client) handleMoveActor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id := stringArg(args, "actor_id")
	p, err := positionArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/actors/%s/position", url.PathEscape(id)), p, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleLeaveActor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringArg(arguments(request), "actor_id")

	if err := c.apiCall(ctx, "DELETE", fmt.Sprintf("/api/actors/%s", url.PathEscape(id)), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Actor %s left", id)), nil
}

func (c *Client) handleActorRegions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringArg(arguments(request), "actor_id")

	var result service.RegionsResult
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/actors/%s/regions", url.PathEscape(id)), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	label := "Actor " + id
	if !result.Online {
		label += " (offline)"
	}
	return mcp.NewToolResultText(formatRegions(label, &result)), nil
}

func (c *Client) handleCheckMembership(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id := stringArg(args, "actor_id")

	body := map[string]interface{}{
		"regions": stringsArg(args, "regions"),
		"mode":    stringArg(args, "mode"),
	}

	var result service.MembershipResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/actors/%s/check", url.PathEscape(id)), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMembership(&result)), nil
}
