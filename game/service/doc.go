// Package service provides the business logic layer for the grid-maze
// pursuit game.
//
// The service package implements:
//   - Multi-session game management
//   - Level catalog loading
//   - Step and micro-step processing
//   - Solver invocation against cataloged levels
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game
// operations. SessionManager handles session creation, retrieval, and
// lifecycle. LevelManager loads and lists level descriptions.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the simulation engine, providing session isolation and orchestration.
// Each session maintains its own engine.Game with independent state; the
// session registry is injected, never ambient.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	levelMgr, _ := config.NewManager("levels")
//	gameService := service.NewGameService(sessionMgr, levelMgr)
package service
