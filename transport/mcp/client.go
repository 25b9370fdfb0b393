package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dfreire/gridmaze/game/engine"
	"github.com/dfreire/gridmaze/game/service"
)

// Client is a thin MCP client that proxies to the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Maze",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Maze - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Guide the explorer (P) to the exit (E) without being caught. After every
explorer move the pursuers take their turn: fast pursuers (H, V) move
twice, slow pursuers (S) once. Traps (T) end the game; keys (K) toggle
every gate in the maze at once.

AVAILABLE TOOLS:
- game_state: Get current game state with a rendered maze
- step: Apply one action (UP/DOWN/LEFT/RIGHT/WAIT/UNDO/RESET) as a full turn
- microstep: Advance a single phase to watch pursuers move one at a time
- create_session: Create new game session
- get_session: Get session details
- list_sessions: List all active sessions
- delete_session: Delete a session
- list_levels: List available levels
- solve_level: Run the solver against a level
- game_instructions: Get comprehensive game rules

TIP: WAIT is a real move. Standing still for a turn can bait pursuers
into walls or onto traps.`),
	)

	c.registerTools()
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional level selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "string",
					"description": "Name of the level to play (optional, defaults to the default level)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a game session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to delete",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleDeleteSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with a rendered maze",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Apply one action as a full turn: the explorer acts, then all pursuer phases resolve",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"action": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"UP", "DOWN", "LEFT", "RIGHT", "WAIT", "UNDO", "RESET"},
					"description": "Action to apply",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "action"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "microstep",
		Description: "Advance a single phase. During the explorer phase pass an action; during pursuer phases no action is needed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"action": map[string]interface{}{
					"type":        "string",
					"description": "Action for the explorer phase (ignored during pursuer phases)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMicroStep)

	// Levels and solver
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_level",
		Description: "Run the solver against a level and return a winning action sequence if one exists",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "string",
					"description": "Level name",
				},
				"budget": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of state expansions (optional)",
				},
			},
			Required: []string{"level"},
		},
	}, c.handleSolveLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
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
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// board fetches and builds the static board for a level so states can be
// rendered client-side.
func (c *Client) board(levelName string) (*engine.Board, error) {
	var cfg engine.LevelConfig
	if err := c.apiCall("GET", fmt.Sprintf("/api/levels/%s", levelName), nil, &cfg); err != nil {
		return nil, err
	}
	b, _, err := cfg.Build()
	return b, err
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	level, _ := args["level"].(string)

	body := map[string]string{}
	if level != "" {
		body["level"] = level
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s",
		session.ID, session.LevelName, c.formatSession(&session))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "playing"
		if s.Done {
			status = "lost"
			if s.Won {
				status = "won"
			}
		}
		result += fmt.Sprintf("- %s (Level: %s, Turn: %d, %s, Created: %s)\n",
			s.ID, s.LevelName, s.Turns, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(c.formatSession(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response map[string]string
	if err := c.apiCall("DELETE", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response["message"]), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(c.formatSession(&session)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	action, _ := args["action"].(string)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"action": action,
	}

	var outcome service.StepOutcome
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/step", sessionID), body, &outcome); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := c.formatStep(sessionID, &outcome)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleMicroStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	action, _ := args["action"].(string)

	body := map[string]interface{}{
		"action": action,
	}

	var outcome service.PhaseOutcome
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/microstep", sessionID), body, &outcome); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := outcome.Result
	var b strings.Builder
	if res.OK {
		b.WriteString(fmt.Sprintf("Phase resolved: %s\n", res.Phase))
	} else {
		b.WriteString(fmt.Sprintf("✗ Rejected (%s)\n", res.Reason))
	}
	writeEvents(&b, res.Events)
	if res.Done {
		if res.Won {
			b.WriteString("\n🎉 ESCAPED!\n")
		} else {
			b.WriteString("\n💀 GAME OVER\n")
		}
	}
	c.appendMaze(&b, sessionID, outcome.State)
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	if err := c.apiCall("GET", "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Levels:\n\n"
	for _, l := range levels {
		result += fmt.Sprintf("• %s\n  Grid: %dx%d, Pursuers: %d, Traps: %d, Keys: %d, Gates: %d\n\n",
			l.Name, l.Rows, l.Cols, l.Pursuers, l.Traps, l.Keys, l.Gates)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSolveLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	level, _ := args["level"].(string)

	body := map[string]interface{}{}
	if budget, ok := args["budget"].(float64); ok {
		body["budget"] = int(budget)
	}

	var outcome service.SolveOutcome
	if err := c.apiCall("POST", fmt.Sprintf("/api/levels/%s/solve", level), body, &outcome); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !outcome.Solvable {
		return mcp.NewToolResultText(fmt.Sprintf("Level %s: not solved (%s)\n", level, outcome.FailReason)), nil
	}

	result := fmt.Sprintf("Level %s: solvable in %d moves (%d states expanded)\n\n%s\n",
		level, len(outcome.Actions), outcome.Expanded, strings.Join(outcome.Actions, ", "))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🏛 Grid Maze - Complete Instructions

GAME OBJECTIVE:
Guide the explorer to the exit of a walled maze without being caught by
the pursuers patrolling it.

TURN STRUCTURE:
Every turn runs the same fixed phases, in order:
1. Explorer phase - you act (a move into a wall wastes the turn)
2. Fast pursuer sub-step 1 - every fast pursuer moves one cell
3. Fast pursuer sub-step 2 - every fast pursuer moves again
4. Slow pursuer step - every slow pursuer moves one cell
Capture is checked after each pursuer phase. WAIT skips your move but the
pursuers still take all of theirs.

PURSUER BEHAVIOR (deterministic, exploit it):
• H - fast pursuer, prefers closing the horizontal distance first
• V - fast pursuer, prefers closing the vertical distance first
• S - slow pursuer, horizontal-first but only one step per turn
A pursuer whose preferred axis is blocked tries the other axis; if both
are blocked it stands still. Pursuers chase your position after your
move. When two pursuers land on the same cell, the later mover survives.

MAZE LEGEND:
• P - explorer (you)        • E - exit
• H / V / S - pursuers      • T - trap (stepping on it ends the game)
• K - key (toggles ALL gates at once, pursuers trigger it too)
• | and - are walls; : and = are closed gates (open gates show as gaps)

ACTIONS:
UP, DOWN, LEFT, RIGHT, WAIT - play a turn
UNDO - rewind one full turn    RESET - restart the level

STRATEGY NOTES:
• Pursuers are deterministic. Plan several turns ahead.
• Use walls: a pursuer directly across a wall from you cannot advance.
• WAIT can bait pursuers onto traps or into dead ends.
• Keys flip every gate in the maze, including behind pursuers. Watch for
  pursuers stepping on keys and undoing your toggle.
• A repetition counter in step results warns when a state has occurred
  before; cycling states means your plan is not making progress.
• The solve_level tool finds a shortest action sequence if one exists.

Good luck escaping! 🗝`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func (c *Client) formatSession(session *service.SessionInfo) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Session: %s\nLevel: %s\nTurn: %d | Phase: %s\n",
		session.ID, session.LevelName, session.Turns, session.Phase))
	if session.Done {
		if session.Won {
			b.WriteString("Status: 🎉 ESCAPED\n")
		} else {
			b.WriteString("Status: 💀 GAME OVER\n")
		}
	}
	c.appendMazeFor(&b, session.LevelName, session.State)
	return b.String()
}

func (c *Client) formatStep(sessionID string, outcome *service.StepOutcome) string {
	res := outcome.Result
	var b strings.Builder

	if res.OK {
		if res.Moved {
			b.WriteString(fmt.Sprintf("✓ %s -> (%d,%d)\n", res.Action, res.Pos.Row, res.Pos.Col))
		} else if res.Blocked {
			b.WriteString(fmt.Sprintf("✓ %s blocked by a wall, turn spent in place\n", res.Action))
		} else {
			b.WriteString(fmt.Sprintf("✓ %s\n", res.Action))
		}
		if res.Toggled {
			b.WriteString("🗝 All gates toggled!\n")
		}
		if res.Repetitions > 1 {
			b.WriteString(fmt.Sprintf("⟳ This position has now occurred %d times\n", res.Repetitions))
		}
	} else {
		b.WriteString(fmt.Sprintf("✗ Rejected (%s)\n", res.Reason))
	}

	writeEvents(&b, res.Events)

	if res.Done {
		if res.Won {
			b.WriteString("\n🎉 ESCAPED!\n")
		} else {
			b.WriteString("\n💀 GAME OVER\n")
		}
	}

	c.appendMaze(&b, sessionID, outcome.State)
	return b.String()
}

func writeEvents(b *strings.Builder, events []engine.Event) {
	if len(events) == 0 {
		return
	}
	b.WriteString("Events:\n")
	for _, ev := range events {
		switch {
		case ev.From != nil && ev.To != nil:
			b.WriteString(fmt.Sprintf("- %s %s (%d,%d)->(%d,%d)\n",
				ev.Actor, ev.Type, ev.From.Row, ev.From.Col, ev.To.Row, ev.To.Col))
		case ev.To != nil:
			b.WriteString(fmt.Sprintf("- %s %s at (%d,%d)\n", ev.Actor, ev.Type, ev.To.Row, ev.To.Col))
		default:
			b.WriteString(fmt.Sprintf("- %s %s\n", ev.Actor, ev.Type))
		}
	}
}

// appendMaze renders the maze for a session by looking up its level.
func (c *Client) appendMaze(b *strings.Builder, sessionID string, state *engine.WorldState) {
	var session service.SessionInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		return
	}
	c.appendMazeFor(b, session.LevelName, state)
}

func (c *Client) appendMazeFor(b *strings.Builder, levelName string, state *engine.WorldState) {
	if state == nil {
		return
	}
	board, err := c.board(levelName)
	if err != nil {
		b.WriteString(fmt.Sprintf("(maze unavailable: %v)\n", err))
		return
	}
	b.WriteString("\n")
	b.WriteString(engine.RenderText(board, state))
}
