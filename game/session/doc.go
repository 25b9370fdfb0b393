// Package session manages the lifecycle of interactive game sessions.
//
// The Manager is a caller-owned registry mapping session identifiers to
// live engine.Game instances. It is injected into the service layer; the
// simulation core holds no process-wide state. Optional persistence stores
// the level name plus the accepted-input log and rebuilds a session by
// deterministic replay.
package session
