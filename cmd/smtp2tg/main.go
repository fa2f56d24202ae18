// Package main is the entry point for the SMTP-to-Telegram bridge.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/andros-ua/smtp2tg/internal/config"
	"github.com/andros-ua/smtp2tg/internal/notify"
	"github.com/andros-ua/smtp2tg/internal/notify/stdout"
	"github.com/andros-ua/smtp2tg/internal/notify/telegram"
	"github.com/andros-ua/smtp2tg/internal/smtp"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	setupLogger(cfg.Logging.Level)

	// Missing required values terminate the process before the listener starts.
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Select notification backend
	notifier := selectNotifier(cfg)

	// Create SMTP server
	server := smtp.New(smtp.ServerConfig{
		ListenAddr: cfg.SMTP.Listen,
		Hostname:   cfg.SMTP.Hostname,
		Notifier:   notifier,
	})

	slog.Info("starting smtp2tg",
		"listen", cfg.SMTP.Listen,
		"notifier", notifier.Name(),
		"parse_mode", cfg.Telegram.ParseMode,
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		slog.Info("received signal, initiating shutdown", "signal", sig)
		cancel()
	}()

	// Start the server (blocks until context is cancelled)
	if err := server.ListenAndServe(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("smtp2tg stopped")
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// selectNotifier chooses the notification backend based on configuration.
// If the NOTIFIER setting is empty, it falls back to auto-detection
// (telegram if credentials are configured, else stdout).
func selectNotifier(cfg *config.Config) notify.Notifier {
	switch cfg.Notifier {
	case "telegram":
		slog.Info("using telegram notifier", "chat_id", cfg.Telegram.ChatID)
		return newTelegram(cfg)

	case "stdout":
		slog.Info("using stdout notifier")
		return stdout.New()

	default:
		if cfg.TelegramConfigured() {
			slog.Info("using telegram notifier (auto-detected)", "chat_id", cfg.Telegram.ChatID)
			return newTelegram(cfg)
		}
		slog.Info("no telegram credentials configured, using stdout notifier")
		return stdout.New()
	}
}

func newTelegram(cfg *config.Config) notify.Notifier {
	return telegram.New(telegram.Config{
		Token:     cfg.Telegram.Token,
		ChatID:    cfg.Telegram.ChatID,
		ParseMode: cfg.Telegram.ParseMode,
		APIURL:    cfg.Telegram.APIURL,
	})
}
