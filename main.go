// Command gridmaze runs the grid maze puzzle server and its companion
// tooling.
//
// Subcommands:
//
//	serve  - HTTP server exposing the REST API, WebSocket hub and an /mcp endpoint
//	mcp    - MCP stdio server backed by an internal HTTP API
//	solve  - run the solver against a level file and print the action sequence
//	run    - apply an action sequence to a level file and print each outcome
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/dfreire/gridmaze/api"
	"github.com/dfreire/gridmaze/game/config"
	"github.com/dfreire/gridmaze/game/engine"
	"github.com/dfreire/gridmaze/game/service"
	"github.com/dfreire/gridmaze/game/session"
	"github.com/dfreire/gridmaze/game/solver"
	"github.com/dfreire/gridmaze/transport/mcp"
	"github.com/dfreire/gridmaze/transport/websocket"
)

const (
	Version = "1.0.0"
	AppName = "gridmaze"
)

var log = logrus.New()

func main() {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("error loading .env file")
	}

	cmd := &cli.Command{
		Name:    AppName,
		Usage:   "grid maze puzzle simulator and solver",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "levels",
				Value:   defaultLevelDir(),
				Usage:   "directory containing level files",
				Sources: cli.EnvVars("LEVEL_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetLevel(logrus.DebugLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			solveCommand(),
			runCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func defaultLevelDir() string {
	if dir := os.Getenv("LEVEL_DIR"); dir != "" {
		return dir
	}
	return "levels"
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket hub and /mcp endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Value: "localhost",
				Usage: "HTTP server host",
			},
			&cli.IntFlag{
				Name:  "port",
				Value: 8080,
				Usage: "HTTP server port",
			},
			&cli.StringFlag{
				Name:  "sessions",
				Value: "sessions",
				Usage: "directory for persisted sessions",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			gameService, err := initializeServices(cmd.String("levels"), cmd.String("sessions"))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			return runHTTPServer(gameService, cmd.String("host"), int(cmd.Int("port")))
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "run an MCP stdio server backed by an internal HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sessions",
				Value: "sessions",
				Usage: "directory for persisted sessions",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			gameService, err := initializeServices(cmd.String("levels"), cmd.String("sessions"))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			return runStdioMCP(gameService)
		},
	}
}

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "run the solver against a level file",
		ArgsUsage: "<level-file>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "budget",
				Value: solver.DefaultBudget,
				Usage: "maximum number of state expansions",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one level file argument")
			}

			cfg, err := engine.LoadLevel(cmd.Args().First())
			if err != nil {
				return err
			}

			res, err := solver.SolveLevel(cfg, int(cmd.Int("budget")))
			if err != nil {
				return err
			}

			fmt.Printf("%s: solvable in %d moves (%d states expanded)\n",
				cfg.Name, len(res.Actions), res.Expanded)
			fmt.Println(strings.Join(res.Actions, " "))
			return nil
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "apply an action sequence to a level file and print each outcome",
		ArgsUsage: "<level-file> <action> [<action>...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "render",
				Usage: "render the maze after every step",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 2 {
				return fmt.Errorf("expected a level file and at least one action")
			}

			cfg, err := engine.LoadLevel(cmd.Args().First())
			if err != nil {
				return err
			}
			game, err := engine.NewGame(cfg)
			if err != nil {
				return err
			}

			fmt.Printf("%s (%dx%d)\n\n%s\n", cfg.Name, cfg.Rows, cfg.Cols,
				engine.RenderText(game.Board(), game.State()))

			for _, token := range cmd.Args().Slice()[1:] {
				res := game.Step(token)
				printStepResult(token, res)
				if cmd.Bool("render") {
					fmt.Println(engine.RenderText(game.Board(), game.State()))
				}
				if res.Done {
					break
				}
			}

			switch {
			case game.Won():
				fmt.Println("result: escaped")
			case game.Done():
				fmt.Println("result: lost")
			default:
				fmt.Printf("result: still playing after %d turns\n", game.Turns())
			}
			return nil
		},
	}
}

func printStepResult(token string, res *engine.StepResult) {
	if !res.OK {
		fmt.Printf("%-6s rejected (%s)\n", token, res.Reason)
		return
	}
	outcome := fmt.Sprintf("-> (%d,%d)", res.Pos.Row, res.Pos.Col)
	if res.Blocked {
		outcome = "blocked"
	}
	flags := ""
	if res.Toggled {
		flags += " [gates toggled]"
	}
	if res.Repetitions > 1 {
		flags += fmt.Sprintf(" [seen %dx]", res.Repetitions)
	}
	if res.Done {
		if res.Won {
			flags += " [escaped]"
		} else {
			flags += " [game over]"
		}
	}
	fmt.Printf("%-6s %s%s\n", res.Action, outcome, flags)
}

// initializeServices wires the level catalog, session persistence and the
// game service.
func initializeServices(levelDir, sessionsDir string) (service.GameService, error) {
	levelManager, err := config.NewManager(levelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create level manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(log, persistence)

	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.WithError(err).Warn("failed to load persisted sessions")
	}

	gameService := service.NewGameService(sessionManager, levelManager)

	go sessionCleanupRoutine(sessionManager)

	return gameService, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window.
func sessionCleanupRoutine(manager *session.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpired(24 * time.Hour)
		if removed > 0 {
			log.WithField("count", removed).Info("cleaned up expired sessions")
		}
	}
}

// runHTTPServer starts the HTTP server with the REST API, WebSocket hub
// and an /mcp proxy endpoint, and blocks until a shutdown signal.
func runHTTPServer(gameService service.GameService, host string, port int) error {
	hub := websocket.NewHub(log)
	go hub.Run()

	apiServer := api.NewServer(gameService, hub, log)

	addr := fmt.Sprintf("%s:%d", host, port)
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("HTTP server listening")
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case sig := <-stop:
		log.WithField("signal", sig).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// runStdioMCP runs an MCP stdio server. It reuses an external API at
// localhost:8080 when one is listening; otherwise it starts a minimal
// internal HTTP API on a random loopback port.
func runStdioMCP(gameService service.GameService) error {
	baseURL := "http://localhost:8080"

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.WithField("url", baseURL).Info("using external API server for MCP")
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.WithField("addr", internalAddr).Info("starting internal HTTP server for MCP stdio")

		hub := websocket.NewHub(log)
		go hub.Run()

		apiServer := api.NewServer(gameService, hub, log)
		httpServer := &http.Server{Handler: apiServer}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("internal HTTP server error")
			}
		}()

		// Give the listener a moment to come up
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	log.Info("MCP stdio server ready")
	if err := mcpserver.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}
