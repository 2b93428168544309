// Command scout is the ScoutDesk command-line client.
//
// Usage:
//
//	scout search "haaland"
//	scout fetch 28003 418560
//	scout fetch --refresh 28003
//	scout analyze 28003 418560 357565
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ferranmarti/scoutdesk/internal/analysis"
	"github.com/ferranmarti/scoutdesk/internal/config"
	"github.com/ferranmarti/scoutdesk/internal/fetch"
	"github.com/ferranmarti/scoutdesk/internal/player"
	"github.com/ferranmarti/scoutdesk/internal/provider/transfermarkt"
	"github.com/ferranmarti/scoutdesk/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "scout",
		Short: "ScoutDesk player data CLI",
	}

	root.AddCommand(searchCmd())
	root.AddCommand(fetchCmd())
	root.AddCommand(analyzeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// search command
// --------------------------------------------------------------------------

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Search players by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, _ *config.Config, client *transfermarkt.Client, _ *fetch.Orchestrator) error {
				candidates, err := client.Search(ctx, args[0])
				if err != nil {
					return fmt.Errorf("search: %w", err)
				}
				return printJSON(candidates)
			})
		},
	}
}

// --------------------------------------------------------------------------
// fetch command
// --------------------------------------------------------------------------

func fetchCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "fetch <id>...",
		Short: "Fetch full player records by identifier",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, _ *config.Config, _ *transfermarkt.Client, orch *fetch.Orchestrator) error {
				var results map[string]fetch.Result
				if refresh {
					results = orch.RefreshMany(ctx, args)
				} else {
					results = orch.FetchMany(ctx, args)
				}

				failed := 0
				out := make(map[string]interface{}, len(results))
				for id, res := range results {
					if res.Err != nil {
						failed++
						out[id] = map[string]string{"error": res.Err.Error()}
						continue
					}
					out[id] = res.Record
				}
				if err := printJSON(out); err != nil {
					return err
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d fetches failed", failed, len(results))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the record store and re-fetch")
	return cmd
}

// --------------------------------------------------------------------------
// analyze command
// --------------------------------------------------------------------------

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <id>...",
		Short: "Fetch a squad and print its balance analysis",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, _ *transfermarkt.Client, orch *fetch.Orchestrator) error {
				results := orch.FetchMany(ctx, args)
				squad := make([]player.Record, 0, len(results))
				for id, res := range results {
					if res.Err != nil {
						logger.Warn("player fetch failed", "player_id", id, "error", res.Err)
						continue
					}
					squad = append(squad, res.Record)
				}

				result, err := analysis.Analyze(squad, cfg.Analysis)
				if err != nil {
					return fmt.Errorf("analyze: %w", err)
				}
				return printJSON(map[string]interface{}{
					"squad_analysis":   result,
					"identified_needs": analysis.IdentifyNeeds(result, cfg.Analysis),
				})
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading, client wiring, and context cancellation.
func run(fn func(ctx context.Context, cfg *config.Config, client *transfermarkt.Client, orch *fetch.Orchestrator) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client := transfermarkt.NewClient(transfermarkt.Config{
		BaseURL:           cfg.GatewayURL,
		APIKey:            cfg.GatewayAPIKey,
		RequestsPerMinute: cfg.GatewayRPM,
		MaxRetries:        cfg.GatewayRetries,
		HTTPClient:        &http.Client{Timeout: cfg.GatewayTimeout},
		Logger:            logger,
	})
	st := store.New(client, store.WithLogger(logger))
	orch := fetch.New(st, fetch.Config{
		Workers: cfg.FetchWorkers,
		Timeout: cfg.FetchTimeout,
		Logger:  logger,
	})

	return fn(ctx, cfg, client, orch)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
