package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Matrixuniverses/dt-service/internal/config"
	"github.com/Matrixuniverses/dt-service/internal/metrics"
	"github.com/Matrixuniverses/dt-service/internal/server"
)

const serviceName = "dt-service"

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-config file] [EN_port MI_port DE_port]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(*configPath, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("config_path", *configPath),
	)
	logger.Info("Configuration loaded",
		slog.String("bind_address", cfg.Server.BindAddress),
		slog.Int("english_port", cfg.Server.EnglishPort),
		slog.Int("maori_port", cfg.Server.MaoriPort),
		slog.Int("german_port", cfg.Server.GermanPort),
		slog.Int("buffer_size", cfg.Server.BufferSize),
		slog.String("log_level", cfg.Logging.Level),
	)

	appMetrics := metrics.NewMetrics()

	dispatcher := server.NewDispatcher(&cfg.Server, logger, appMetrics)
	if err := dispatcher.Start(); err != nil {
		logger.Error("Failed to start dispatcher", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var httpServer *server.HTTPServer
	if cfg.HTTP.Enabled {
		httpServer = server.NewHTTPServer(cfg.HTTP, logger, cfg, dispatcher, appMetrics)
		if err := httpServer.Start(); err != nil {
			logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for DT-Requests...")

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
		}
	}

	dispatcher.Stop()
	logger.Info("Service stopped")
}

// loadConfig builds the effective configuration from an optional config file
// and optional positional port arguments EN MI DE, which override the file.
func loadConfig(path string, args []string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	switch len(args) {
	case 0:
		// Ports come from the config file or defaults.
	case 3:
		ports := make([]int, 3)
		for i, arg := range args {
			port, err := strconv.Atoi(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid port %q: %w", arg, err)
			}
			ports[i] = port
		}
		cfg.Server.EnglishPort = ports[0]
		cfg.Server.MaoriPort = ports[1]
		cfg.Server.GermanPort = ports[2]
	default:
		return nil, fmt.Errorf("expected three port arguments (EN MI DE), got %d", len(args))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
