package main

import (
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/az-tools/protection-atlas/pkg/server"
	"github.com/az-tools/protection-atlas/pkg/services/audit"
	"github.com/az-tools/protection-atlas/pkg/services/audit/azure"
	"github.com/az-tools/protection-atlas/pkg/store/duckdb"
	"github.com/az-tools/protection-atlas/pkg/store/duckdb/findings"
)

var (
	profile string
	dbPath  string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Protection Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&profile, "profile", "p", azure.DefaultProfile,
		"Name of the Azure credentials profile")
	rootCmd.Flags().StringVar(&dbPath, "db", "protection-atlas.db",
		"Path to the findings history database")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	registry := audit.NewRegistry(map[string]audit.ProviderFactory{
		"azure": azure.ProviderFactory,
	})

	providers, err := registry.Create(ctx, "azure", profile)
	if err != nil {
		return fmt.Errorf("failed to create Azure providers: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: dbPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	findingStore, err := findings.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create finding store: %w", err)
	}

	logger.Info().Msgf("Using credentials profile `%s`.", profile)
	logger.Info().Msgf("Finding history stored at `%s`.", dbPath)

	mux := server.ConfigureRouter(server.Config{
		Dependencies: server.Dependencies{
			Audit:     audit.NewAuditor(providers),
			Findings:  findingStore,
			Platforms: registry.ListPlatforms(),
			Logger:    logger,
		},
	})

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	addr := net.JoinHostPort(host, port)
	logger.Info().Msgf("starting server on %s", addr)

	return http.ListenAndServe(addr, mux)
}
