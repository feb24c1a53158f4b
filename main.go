// Command memory-puzzle plays the Memory tile-matching puzzle.
//
// It supports several commands:
//  1. "play" (default) - interactive game in the terminal
//  2. "serve" - HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  3. "mcp" - MCP stdio server; spins up an internal HTTP API if none is available
//  4. "board", "autoplay" and "validate" - debugging aids for boards, seeds and settings
//
// Flags control host/port, the settings directory, logging, and optional
// ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/memory-puzzle/api"
	"github.com/wricardo/memory-puzzle/game/config"
	"github.com/wricardo/memory-puzzle/game/engine"
	"github.com/wricardo/memory-puzzle/game/service"
	"github.com/wricardo/memory-puzzle/game/session"
	"github.com/wricardo/memory-puzzle/game/solver"
	"github.com/wricardo/memory-puzzle/transport/mcp"
	"github.com/wricardo/memory-puzzle/transport/terminal"
	"github.com/wricardo/memory-puzzle/transport/websocket"
	"github.com/wricardo/memory-puzzle/validate"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/term"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Memory Puzzle"
)

const (
	sessionCleanupInterval = time.Hour
	sessionMaxAge          = 24 * time.Hour
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("memory-puzzle failed")
	}
}

// newApp builds the command tree; command output goes to w
func newApp(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:           "memory-puzzle",
		Usage:          "Match every pair of hidden tiles",
		Version:        Version,
		DefaultCommand: "play",
		Writer:         w,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings-dir",
				Aliases: []string{"config-dir"},
				Usage:   "Directory containing settings profiles (empty for built-in defaults only)",
				Value:   "configs",
				Sources: cli.EnvVars("SETTINGS_DIR", "CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (trace, debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, setupLogging(cmd.String("log-level"), cmd.Bool("debug"), os.Stderr)
		},
		Commands: []*cli.Command{
			playCommand(),
			serveCommand(),
			mcpCommand(),
			boardCommand(),
			autoplayCommand(),
			validateCommand(),
		},
	}
}

// setupLogging configures the global zerolog logger. Output is human readable
// when w is a terminal and JSON otherwise.
func setupLogging(level string, debug bool, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}

func levelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "level",
		Usage: "Board size: easy, medium or hard (defaults to the profile's level)",
	}
}

func seedFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:  "seed",
		Usage: "Seed for a reproducible board (random when unset)",
	}
}

// levelAndSeed reads the --level and --seed flags, falling back to the profile and a random seed
func levelAndSeed(cmd *cli.Command, settings *engine.Settings) (engine.Level, int64, error) {
	level := settings.Level()
	if name := cmd.String("level"); name != "" {
		l, err := engine.ParseLevel(name)
		if err != nil {
			return 0, 0, cli.Exit(err.Error(), 2)
		}
		level = l
	}
	seed := engine.RandomSeed()
	if cmd.IsSet("seed") {
		seed = cmd.Int64("seed")
	}
	return level, seed, nil
}

// newConfigManager opens the settings directory. The default directory may be
// absent, in which case only the built-in profile is available.
func newConfigManager(cmd *cli.Command) (*config.Manager, error) {
	dir := cmd.String("settings-dir")
	if !cmd.IsSet("settings-dir") {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			log.Debug().Str("dir", dir).Msg("settings directory not found, using built-in defaults")
			dir = ""
		}
	}
	return config.NewManager(dir)
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play in the terminal",
		Flags: []cli.Flag{
			levelFlag(),
			seedFlag(),
			&cli.StringFlag{Name: "profile", Usage: "Settings profile to use"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			configs, err := newConfigManager(cmd)
			if err != nil {
				return err
			}
			settings := configs.GetDefault()
			if name := cmd.String("profile"); name != "" {
				if settings, err = configs.LoadSettings(name); err != nil {
					return err
				}
			}
			level, seed, err := levelAndSeed(cmd, settings)
			if err != nil {
				return err
			}

			log.Debug().Str("level", level.String()).Int64("seed", seed).Str("profile", settings.Name).Msg("starting terminal game")
			game, err := terminal.New(settings, level, seed, os.Stdin, cmd.Root().Writer)
			if err != nil {
				return err
			}
			if err := game.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			configs, err := newConfigManager(cmd)
			if err != nil {
				return err
			}
			opts := serverOptions{
				addr:        fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port")),
				ngrok:       cmd.Bool("ngrok"),
				ngrokAuth:   cmd.String("ngrok-auth"),
				ngrokDomain: cmd.String("ngrok-domain"),
			}
			return runHTTPServer(ctx, configs, opts)
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "Run an MCP stdio server against an external or internal HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "External API to use when reachable", Sources: cli.EnvVars("API_URL")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			configs, err := newConfigManager(cmd)
			if err != nil {
				return err
			}
			return runStdioMCP(ctx, configs, cmd.String("api-url"))
		},
	}
}

func boardCommand() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Print a generated board with every symbol visible",
		Flags: []cli.Flag{levelFlag(), seedFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level, seed, err := levelAndSeed(cmd, engine.DefaultSettings())
			if err != nil {
				return err
			}
			board, err := engine.GenerateBoard(level, seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "%s board, seed %d\n\n%s", level, seed, board.Render(true))
			return nil
		},
	}
}

func autoplayCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Solve a board with a perfect-memory player",
		Flags: []cli.Flag{
			levelFlag(),
			seedFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Print the result as JSON"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Only print the summary"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level, seed, err := levelAndSeed(cmd, engine.DefaultSettings())
			if err != nil {
				return err
			}
			return runAutoplay(ctx, cmd.Root().Writer, level, seed, cmd.Bool("json"), cmd.Bool("quiet"))
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate every settings profile in a directory",
		ArgsUsage: "[dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("settings-dir")
			if cmd.NArg() > 0 {
				dir = cmd.Args().First()
			}
			results, err := validate.Dir(dir)
			if err != nil {
				return err
			}
			if !validate.Report(cmd.Root().Writer, results) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// runAutoplay solves one board and prints each move, or only a summary
func runAutoplay(ctx context.Context, w io.Writer, level engine.Level, seed int64, asJSON, quiet bool) error {
	e, err := engine.NewEngine(level, seed)
	if err != nil {
		return err
	}

	var opts []solver.Option
	if !quiet && !asJSON {
		opts = append(opts, solver.WithObserver(func(step solver.Step, state *engine.GameState) {
			mark := "✗"
			if step.Matched {
				mark = "✓"
			}
			fmt.Fprintf(w, "%3d. %s %s + %s %s %s (%d/%d)\n",
				state.Moves, step.First, step.Symbols[0].Label(),
				step.Second, step.Symbols[1].Label(), mark,
				state.MatchedPairs, state.TotalPairs)
		}))
	}

	res, err := solver.Solve(ctx, e, opts...)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Level engine.Level `json:"level"`
			Seed  int64        `json:"seed"`
			solver.Result
		}{level, seed, res})
	}

	fmt.Fprintf(w, "%s board, seed %d: solved in %d moves with %d mismatches\n",
		level, seed, res.Moves, res.Mismatches)
	return nil
}

// initializeServices wires session/config managers and the game service.
// The returned session manager is used for background cleanup.
func initializeServices(configs *config.Manager, notifier service.Notifier) (service.GameService, *session.Manager) {
	sessions := session.NewManager()

	var opts []service.Option
	if notifier != nil {
		opts = append(opts, service.WithNotifier(notifier))
	}
	return service.NewGameService(sessions, configs, opts...), sessions
}

type serverOptions struct {
	addr        string
	ngrok       bool
	ngrokAuth   string
	ngrokDomain string
}

// newHandler combines the API server and the /mcp proxy endpoint
func newHandler(apiServer *api.Server, mcpClient *mcp.Client) http.Handler {
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
		_, _ = w.Write(responseData)
	})
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel. It returns when ctx is cancelled.
func runHTTPServer(ctx context.Context, configs *config.Manager, opts serverOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub()
	gameService, sessions := initializeServices(configs, hub)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		sessions.RunCleanup(ctx, sessionCleanupInterval, sessionMaxAge)
	}()

	apiServer := api.NewServer(gameService, hub)
	mcpClient := mcp.NewClient("http://" + opts.addr)
	handler := newHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         opts.addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", opts.addr).
			Str("api", "http://"+opts.addr+"/api").
			Str("websocket", "ws://"+opts.addr+"/ws?session=<session_id>").
			Str("mcp", "http://"+opts.addr+"/mcp").
			Msgf("%s v%s listening", AppName, Version)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	if opts.ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, opts, handler)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serverErr:
		runErr = fmt.Errorf("HTTP server failed: %w", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return runErr
}

// runNgrok serves handler through an ngrok tunnel until ctx is cancelled
func runNgrok(ctx context.Context, opts serverOptions, handler http.Handler) {
	if opts.ngrokAuth == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.Info().Str("domain", opts.ngrokDomain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	ngrokURL := tun.URL()
	log.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/api").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok tunnel established")

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// apiAvailable reports whether an API server answers health checks at baseURL
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the API on a random loopback port and returns its base URL
func startInternalAPI(ctx context.Context, configs *config.Manager) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)
	gameService, sessions := initializeServices(configs, hub)
	go sessions.RunCleanup(ctx, sessionCleanupInterval, sessionMaxAge)

	httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("internal HTTP server error")
		}
	}()

	return "http://" + listener.Addr().String(), nil
}

// runStdioMCP runs an MCP stdio server. It uses the external API when one
// answers at externalURL, otherwise it starts an internal API on a loopback port.
func runStdioMCP(ctx context.Context, configs *config.Manager, externalURL string) error {
	baseURL := externalURL
	if apiAvailable(ctx, externalURL) {
		log.Info().Str("url", externalURL).Msg("using external API server for MCP")
	} else {
		var err error
		if baseURL, err = startInternalAPI(ctx, configs); err != nil {
			return err
		}
		log.Info().Str("url", baseURL).Msg("started internal API server for MCP")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
