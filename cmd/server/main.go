// Package main provides the stellar SED API HTTP server.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"go.ngs.io/sed-api/internal/adapter/store"
	"go.ngs.io/sed-api/internal/adapter/store/catalog"
	"go.ngs.io/sed-api/internal/config"
	httpHandler "go.ngs.io/sed-api/internal/http"
	"go.ngs.io/sed-api/internal/logging"
	"go.ngs.io/sed-api/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", os.Getenv("SED_CONFIG"), "Path to a TOML configuration file")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("sed-api version %s\n", version)
		return
	}

	// Load configuration from file and environment.
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	logging.Info("Starting SED API server",
		zap.String("version", version),
		zap.String("port", cfg.Server.Port),
		zap.String("catalog_root", cfg.Catalog.Root),
		zap.Int("cache_size", cfg.Catalog.CacheSize))

	// Initialize the grid catalog.
	opts := []catalog.Option{catalog.WithCacheSize(cfg.Catalog.CacheSize)}
	for libraryID, dir := range cfg.Catalog.LibraryOverrides() {
		opts = append(opts, catalog.WithLibraryDir(libraryID, dir))
		logging.Info("Library directory override",
			zap.String("library_id", libraryID),
			zap.String("dir", dir))
	}
	var gridCatalog store.GridCatalog = catalog.NewStore(cfg.Catalog.Root, opts...)

	// Initialize use cases.
	atmosphereUC := usecase.NewAtmosphereUseCase(gridCatalog)
	extinctionUC := usecase.NewExtinctionUseCase()

	// Setup router.
	router := httpHandler.SetupRouter(atmosphereUC, extinctionUC, cfg.Server.CORSAllowedOrigins)

	// Start server.
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logging.Info("Server listening",
		zap.String("addr", addr),
		zap.Strings("endpoints", []string{
			"GET /health",
			"GET /v1/atmospheres",
			"GET /v1/atmospheres/:family",
			"GET /v1/redlaws",
			"GET /v1/redlaws/:name/extinction",
			"GET /v1/redlaws/:name/curve",
		}))

	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", zap.Error(err))
	}
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("SED API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  sed-api [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println("  -config PATH   TOML configuration file (default: $SED_CONFIG)")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  CATALOG_ROOT            Grid catalog root directory (default: ./data/cdbs/grid)")
	fmt.Println("  CATALOG_CACHE_SIZE      Flux vectors kept in memory (default: 256)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  LOG_LEVEL               debug, info, warn or error (default: info)")
	fmt.Println("  LOG_FORMAT              json or console (default: json)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  sed-api")
	fmt.Println()
	fmt.Println("  # Start server on custom port with a config file")
	fmt.Println("  PORT=3000 sed-api -config sed.toml")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                          Health check")
	fmt.Println("  GET /v1/atmospheres                  List atmosphere model families")
	fmt.Println("  GET /v1/atmospheres/:family          Get a model spectrum (family or \"merged\")")
	fmt.Println("  GET /v1/redlaws                      List reddening laws")
	fmt.Println("  GET /v1/redlaws/:name/extinction     Evaluate A_lambda at given wavelengths")
	fmt.Println("  GET /v1/redlaws/:name/curve          Get the dense extinction curve")
	fmt.Println()
}
