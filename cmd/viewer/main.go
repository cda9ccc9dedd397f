package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"model-viewer/internal/api"
	"model-viewer/internal/app"
	"model-viewer/internal/asset"
	"model-viewer/internal/config"
	"model-viewer/internal/logger"
	"model-viewer/internal/viewer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := config.Flags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	cfg, err := config.Load(viper.New(), fs)
	if err != nil {
		return err
	}
	configDir, _ := fs.GetString("config-dir")

	log, err := logger.New(cfg.LogsDir, cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var backend app.Backend
	if cfg.Model.ID != 0 {
		creds := api.StaticCredentials{AccessToken: cfg.API.Token, Username: cfg.API.User}
		backend = api.New(cfg.API.ServerURL, cfg.API.Institution, creds).WithLogger(log.Logger)
	}

	fetcher := asset.NewHTTPFetcher(log.Logger)
	fetcher.CacheDir = cfg.CacheDir
	base := viewer.Options{Fetcher: fetcher, Log: log.Logger}
	prefs := config.LoadPrefs(configDir)

	if cfg.Headless.Enabled {
		opts, sched := app.HeadlessViewerOptions(cfg, base)
		a := app.New(cfg, prefs, backend, opts)
		defer a.Close()
		return app.RunHeadless(ctx, a, sched)
	}

	p := runWindow(ctx, cfg, prefs, backend, base, log)
	if err := config.SavePrefs(configDir, p); err != nil {
		log.Warn().Err(err).Msg("prefs not saved")
	}
	return nil
}
