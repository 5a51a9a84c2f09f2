package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	glog "github.com/labstack/gommon/log"

	"storybook/pkg/ids"
	"storybook/pkg/ingest"
	"storybook/pkg/server"
	"storybook/pkg/utils"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer done()

	cfg, err := server.ConfigFromEnv()
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn("unknown LOG_LEVEL, using info", "level", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	newID, err := ids.ByScheme(cfg.IDScheme)
	if err != nil {
		log.Fatal("invalid id scheme", "error", err)
	}

	pipeline := ingest.New(newID)
	pipeline.CountTokens = utils.NumTokens

	srv := server.NewServer(ctx, pipeline, cfg)
	srv.Echo.Logger.SetLevel(echoLevel(level))

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
		close(finishedShutDown)
	}()

	log.Info("starting", "service", server.ServiceName, "version", server.Version, "ids", cfg.IDScheme)
	if err := srv.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "error", err)
		done()
	}
	<-finishedShutDown
}

func echoLevel(l log.Level) glog.Lvl {
	switch {
	case l <= log.DebugLevel:
		return glog.DEBUG
	case l == log.InfoLevel:
		return glog.INFO
	case l == log.WarnLevel:
		return glog.WARN
	default:
		return glog.ERROR
	}
}
