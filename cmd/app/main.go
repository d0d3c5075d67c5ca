package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/quire/internal"
	"github.com/starford/quire/internal/elements"
	"github.com/starford/quire/internal/stamp"
	pkgconfig "github.com/starford/quire/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, string, error) {
	configPath := cmd.String("config")
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, configPath, nil
}

// openApp wires the application for the one-shot commands, logging to
// stderr so stdout stays machine-readable.
func openApp(cmd *cli.Command) (*internal.App, error) {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return internal.Open(
		internal.WithConfig(cfg),
		internal.WithConfigPath(configPath),
		internal.WithLogOutput(os.Stderr),
		internal.WithVersion(version),
	)
}

func dirFlag() cli.Flag {
	return &cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Directory under the notes root", Value: "/"}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithConfigPath(configPath),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func stampNotes(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	changes, err := app.Service().Stamp(ctx, cmd.String("dir"), stamp.Options{
		Todos:     !cmd.Bool("no-todos"),
		Today:     !cmd.Bool("no-today"),
		Questions: !cmd.Bool("no-questions"),
		Answers:   !cmd.Bool("no-answers"),
	})
	if err != nil {
		return err
	}
	return printJSON(changes)
}

func listTodos(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	var suppress *bool
	if cmd.IsSet("suppress-future") {
		v := cmd.Bool("suppress-future")
		suppress = &v
	}
	todos, err := app.Service().Todos(ctx, elements.TodoQuery{
		Status:        cmd.String("status"),
		Dir:           cmd.String("dir"),
		Query:         cmd.String("query"),
		CaseSensitive: cmd.Bool("case-sensitive"),
		SortBy:        cmd.String("sort-by"),
		Tag:           cmd.String("tag"),
	}, suppress)
	if err != nil {
		return err
	}
	return printJSON(todos)
}

func serveMCP(_ context.Context, cmd *cli.Command) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.ServeMCP()
}

func main() {
	cmd := &cli.Command{
		Name:    "quire",
		Usage:   "Plain-text notes with to-dos, questions, definitions and edit history",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, SSE stream and file watcher",
				Action: serve,
			},
			{
				Name:  "stamp",
				Usage: "Date-stamp unstamped elements and print the changes",
				Flags: []cli.Flag{
					dirFlag(),
					&cli.BoolFlag{Name: "no-todos", Usage: "Leave to-dos alone"},
					&cli.BoolFlag{Name: "no-today", Usage: "Leave \\today placeholders alone"},
					&cli.BoolFlag{Name: "no-questions", Usage: "Leave questions alone"},
					&cli.BoolFlag{Name: "no-answers", Usage: "Leave answers alone"},
				},
				Action: stampNotes,
			},
			{
				Name:  "todos",
				Usage: "List to-dos as JSON",
				Flags: []cli.Flag{
					dirFlag(),
					&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "incomplete, complete, skipped or all"},
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Terms every line must contain"},
					&cli.BoolFlag{Name: "case-sensitive", Usage: "Match query terms case-sensitively"},
					&cli.StringFlag{Name: "sort-by", Usage: "Empty for file order, or start_date"},
					&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Only to-dos carrying this tag"},
					&cli.BoolFlag{Name: "suppress-future", Usage: "Hide to-dos starting after today (default from config)"},
				},
				Action: listTodos,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools on stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
