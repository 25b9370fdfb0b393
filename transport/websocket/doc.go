// Package websocket pushes live session updates to connected clients.
// Every step or micro-step applied through the API is broadcast to all
// clients watching that session, so spectators see pursuer phases as
// they resolve.
package websocket
