// Command dslgame runs the DSL game.
//
// Commands:
//  1. "server" (default) – HTTP server with REST API, WebSocket and an /mcp endpoint
//  2. "stdio-mcp" – MCP stdio server; spins up an internal HTTP API if none is available
//  3. "play" – terminal REPL against a local session
//  4. "check" – lex and parse a script file without running it
//  5. "version" – print version information
//
// Every flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "DSL Game Server"
)

// appOptions is the process configuration shared by every command
type appOptions struct {
	Host         string
	Port         int
	ConfigDir    string
	SessionsDir  string
	DatabaseURL  string
	Codec        string
	Debug        bool
	NgrokEnabled bool
	NgrokAuth    string
	NgrokDomain  string
}

func (o appOptions) addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

func optionsFrom(cmd *cli.Command) appOptions {
	return appOptions{
		Host:         cmd.String("host"),
		Port:         cmd.Int("port"),
		ConfigDir:    cmd.String("config-dir"),
		SessionsDir:  cmd.String("sessions-dir"),
		DatabaseURL:  cmd.String("database-url"),
		Codec:        cmd.String("codec"),
		Debug:        cmd.Bool("debug"),
		NgrokEnabled: cmd.Bool("ngrok"),
		NgrokAuth:    cmd.String("ngrok-auth"),
		NgrokDomain:  cmd.String("ngrok-domain"),
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "HTTP server port",
			Sources: cli.EnvVars("PORT"),
		},
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "HTTP server host",
			Sources: cli.EnvVars("HOST"),
		},
		&cli.StringFlag{
			Name:    "config-dir",
			Value:   "configs",
			Usage:   "Directory containing stage configurations",
			Sources: cli.EnvVars("CONFIG_DIR"),
		},
		&cli.StringFlag{
			Name:    "sessions-dir",
			Value:   "sessions",
			Usage:   "Directory for session save slots",
			Sources: cli.EnvVars("SESSIONS_DIR"),
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "Postgres connection string; replaces file save slots when set",
			Sources: cli.EnvVars("DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    "codec",
			Value:   "json",
			Usage:   "Snapshot encoding for file save slots (json or msgpack)",
			Sources: cli.EnvVars("SESSION_CODEC"),
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "Enable debug logging",
			Sources: cli.EnvVars("DEBUG"),
		},
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "Enable ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "Ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "Custom ngrok domain (optional)",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:           "dslgame",
		Usage:          AppName,
		Version:        Version,
		DefaultCommand: "server",
		Flags:          globalFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts := optionsFrom(cmd)
					log.Printf("Starting %s v%s (mode: server)", AppName, Version)
					gameService, err := initializeServices(opts)
					if err != nil {
						return fmt.Errorf("failed to initialize services: %w", err)
					}
					return runHTTPServer(ctx, opts, gameService)
				},
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts := optionsFrom(cmd)
					log.Printf("Starting %s v%s (mode: stdio-mcp)", AppName, Version)
					gameService, err := initializeServices(opts)
					if err != nil {
						return fmt.Errorf("failed to initialize services: %w", err)
					}
					return runStdioMCP(ctx, opts, gameService)
				},
			},
			{
				Name:  "play",
				Usage: "Play a stage in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "stage",
						Aliases: []string{"s"},
						Usage:   "Stage config id (default stage when empty)",
					},
					&cli.StringFlag{
						Name:  "resume",
						Usage: "Resume a saved session by id",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts := optionsFrom(cmd)
					gameService, sessions, err := newLocalServices(opts)
					if err != nil {
						return fmt.Errorf("failed to initialize services: %w", err)
					}
					repl := &REPL{
						Service:  gameService,
						Sessions: sessions,
						In:       os.Stdin,
						Out:      os.Stdout,
					}
					return repl.Start(ctx, cmd.String("stage"), cmd.String("resume"))
				},
			},
			{
				Name:      "check",
				Usage:     "Lex and parse a script without running it",
				ArgsUsage: "<file>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return cli.Exit("usage: dslgame check <file>", 2)
					}
					problems, err := checkFile(ctx, cmd.Args().First(), os.Stdout)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					if problems > 0 {
						return cli.Exit(fmt.Sprintf("%d problem(s)", problems), 1)
					}
					return nil
				},
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

// main loads .env, then runs the selected command
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}
