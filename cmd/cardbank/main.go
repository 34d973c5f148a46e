package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/exp/slog"

	"github.com/alovak/cardbank-playground/cardbank"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout))

	app := cardbank.NewApp(logger, configFromEnv())
	if err := app.Start(); err != nil {
		logger.Error("starting app", "err", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	app.Shutdown()
}

func configFromEnv() *cardbank.Config {
	cfg := cardbank.DefaultConfig()
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("SPEND_DAY_TZ"); v != "" {
		cfg.SpendDayTZ = v
	}
	if v := os.Getenv("DEFAULT_DAILY_LIMIT"); v != "" {
		if limit, err := strconv.ParseInt(v, 10, 64); err == nil && limit > 0 {
			cfg.DefaultDailyLimit = limit
		}
	}
	if v := os.Getenv("CARD_NUMBER_PREFIX"); v != "" {
		cfg.CardNumberPrefix = v
	}
	return cfg
}
