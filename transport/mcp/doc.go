// Package mcp exposes the game over the Model Context Protocol as a thin
// client that proxies every tool call to the REST API. Running it against
// an already-listening HTTP server lets an MCP agent and browser clients
// share the same sessions.
package mcp
